package services

import (
	"context"

	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/feedbackdesk/feedback-backend/types"
	"go.uber.org/zap"
)

// Mailer sends the notification emails. *EmailService implements it.
type Mailer interface {
	SendSubmissionConfirmation(ctx context.Context, req types.SendEmailRequest) error
	SendNewFeedbackNotification(ctx context.Context, rec *types.FeedbackRecord) error
	SendFormLink(ctx context.Context, req types.NotifyOpenRequest) error
}

// FeedbackNotifier is told about new records after they are stored.
type FeedbackNotifier interface {
	QueueNewFeedback(rec *types.FeedbackRecord) bool
}

// NotificationDispatcher queues emails on the worker pool. Every method
// returns immediately; delivery failures are logged by the pool and never
// reach the caller.
type NotificationDispatcher struct {
	mailer Mailer
	jobs   JobSubmitter
	log    *zap.SugaredLogger
}

var _ FeedbackNotifier = (*NotificationDispatcher)(nil)

func NewNotificationDispatcher(mailer Mailer, jobs JobSubmitter) *NotificationDispatcher {
	return &NotificationDispatcher{
		mailer: mailer,
		jobs:   jobs,
		log:    logger.GetLogger().Named("notifications"),
	}
}

// QueueConfirmation queues the "feedback received" email for a submitter.
func (d *NotificationDispatcher) QueueConfirmation(req types.SendEmailRequest) bool {
	return d.submit("submission_confirmation", func(ctx context.Context) error {
		return d.mailer.SendSubmissionConfirmation(ctx, req)
	})
}

// QueueNewFeedback queues the admin notification for a stored record.
func (d *NotificationDispatcher) QueueNewFeedback(rec *types.FeedbackRecord) bool {
	snapshot := *rec
	return d.submit("new_feedback_notification", func(ctx context.Context) error {
		return d.mailer.SendNewFeedbackNotification(ctx, &snapshot)
	})
}

// QueueFormLink queues the "form link generated" email.
func (d *NotificationDispatcher) QueueFormLink(req types.NotifyOpenRequest) bool {
	return d.submit("form_link", func(ctx context.Context) error {
		return d.mailer.SendFormLink(ctx, req)
	})
}

func (d *NotificationDispatcher) submit(name string, fn func(ctx context.Context) error) bool {
	if d.jobs.Submit(Job{Name: name, Execute: fn}) {
		return true
	}
	d.log.Warnw("Notification dropped", "job", name)
	return false
}
