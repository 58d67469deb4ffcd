package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/feedbackdesk/feedback-backend/config"
	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/feedbackdesk/feedback-backend/models/feedback"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
)

// emailSender is the part of the Resend client the service uses.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

type EmailService struct {
	config    *config.EmailConfig
	sender    emailSender
	metrics   *EmailMetrics
	templates *template.Template
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return NewEmailServiceWithRegistry(cfg, prometheus.DefaultRegisterer)
}

func NewEmailServiceWithRegistry(cfg *config.EmailConfig, reg prometheus.Registerer) *EmailService {
	logger.GetLogger().Infow("Initializing email service",
		"enabled", cfg.Enabled,
		"from", cfg.FromAddress,
		"apikey", logger.MaskSensitiveString(cfg.ResendAPIKey, 3, 2),
		"adminRecipients", len(cfg.AdminRecipients))
	client := resend.NewClient(cfg.ResendAPIKey)
	metrics := &EmailMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedback_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedback_email_errors_total",
			Help: "Total number of email sending errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedback_emails_sent_total",
			Help: "Total number of emails sent",
		}),
	}

	reg.MustRegister(metrics.sendLatency)
	reg.MustRegister(metrics.errorCount)
	reg.MustRegister(metrics.sentCount)

	return &EmailService{
		config:    cfg,
		sender:    client.Emails,
		metrics:   metrics,
		templates: emailTemplates,
	}
}

// Enabled reports whether emails are actually sent.
func (s *EmailService) Enabled() bool {
	return s.config.Enabled
}

// SendSubmissionConfirmation thanks a submitter for their feedback.
func (s *EmailService) SendSubmissionConfirmation(ctx context.Context, req types.SendEmailRequest) error {
	name := strings.TrimSpace(req.FirstName + " " + req.LastName)
	if name == "" {
		name = "there"
	}
	return s.send(ctx, "confirmation", types.EmailData{
		To:      req.Email,
		Subject: "Thank you for your feedback",
		TemplateData: map[string]interface{}{
			"Name":       name,
			"FeedbackID": req.FeedbackID,
		},
	})
}

// SendNewFeedbackNotification tells the administrators about a new record.
func (s *EmailService) SendNewFeedbackNotification(ctx context.Context, rec *types.FeedbackRecord) error {
	if len(s.config.AdminRecipients) == 0 {
		logger.GetLogger().Debugw("No admin recipients configured, skipping notification", "feedbackId", rec.ID)
		return nil
	}
	data := map[string]interface{}{
		"Name":            rec.FullName(),
		"Organization":    rec.OrganizationName,
		"Email":           rec.Email,
		"Services":        strings.Join(rec.Services, ", "),
		"Professionalism": feedback.FormatRatingsForExport(rec.Professionalism),
		"ResponseTime":    feedback.FormatRatingsForExport(rec.ResponseTime),
		"OverallServices": feedback.FormatRatingsForExport(rec.OverallServices),
		"FeedbackEntries": feedback.UnflattenFeedbackText(rec.Individuals, rec.Feedback),
		"Recommend":       rec.Recommend,
		"FeedbackID":      rec.ID,
	}
	var firstErr error
	for _, to := range s.config.AdminRecipients {
		err := s.send(ctx, "new_feedback", types.EmailData{
			To:           to,
			Subject:      fmt.Sprintf("New feedback from %s", rec.FullName()),
			TemplateData: data,
		})
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SendFormLink delivers a generated form link to the recipient, or to the
// administrators when none is given.
func (s *EmailService) SendFormLink(ctx context.Context, req types.NotifyOpenRequest) error {
	recipients := s.config.AdminRecipients
	if req.Recipient != "" {
		recipients = []string{req.Recipient}
	}
	var firstErr error
	for _, to := range recipients {
		err := s.send(ctx, "form_link", types.EmailData{
			To:           to,
			Subject:      "Your feedback form link",
			TemplateData: map[string]interface{}{"Link": req.Link},
		})
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *EmailService) send(ctx context.Context, templateName string, data types.EmailData) error {
	log := logger.GetLogger()
	if !s.config.Enabled {
		log.Debugw("Email disabled, skipping", "template", templateName, "to", logger.MaskEmail(data.To))
		return nil
	}

	startTime := time.Now()
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	var htmlContent bytes.Buffer
	if err := s.templates.ExecuteTemplate(&htmlContent, templateName, data.TemplateData); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to execute email template", "template", templateName, "error", err)
		return fmt.Errorf("failed to execute template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      []string{data.To},
		Subject: data.Subject,
		Html:    htmlContent.String(),
	}

	if _, err := s.sender.SendWithContext(ctx, params); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to send email",
			"error", err,
			"template", templateName,
			"to", logger.MaskEmail(data.To),
			"subject", data.Subject)
		return fmt.Errorf("email send failed: %w", err)
	}

	s.metrics.sentCount.Inc()
	log.Infow("Email sent successfully",
		"template", templateName,
		"to", logger.MaskEmail(data.To),
		"subject", data.Subject)

	return nil
}

// missingkey=error turns a template/data mismatch into a send error.
var emailTemplates = template.Must(template.New("emails").Option("missingkey=error").Parse(`
{{define "layout_start"}}<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: sans-serif; background-color: #f7f7f7; color: #333333; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 20px auto; background-color: #ffffff; padding: 30px; border-radius: 12px; }
        h1 { color: #1F4E79; font-size: 24px; }
        td { padding: 4px 8px; vertical-align: top; }
        .button { display: inline-block; padding: 12px 24px; background-color: #1F4E79; color: #ffffff; border-radius: 8px; text-decoration: none; }
    </style>
</head>
<body><div class="container">{{end}}
{{define "layout_end"}}</div></body></html>{{end}}

{{define "confirmation"}}{{template "layout_start"}}
    <h1>Thank you, {{.Name}}!</h1>
    <p>We have received your feedback and appreciate you taking the time to share it with us.</p>
    {{if .FeedbackID}}<p>Reference: {{.FeedbackID}}</p>{{end}}
{{template "layout_end"}}{{end}}

{{define "new_feedback"}}{{template "layout_start"}}
    <h1>New feedback received</h1>
    <table>
        <tr><td>From</td><td>{{.Name}} ({{.Email}})</td></tr>
        <tr><td>Organization</td><td>{{.Organization}}</td></tr>
        <tr><td>Services</td><td>{{.Services}}</td></tr>
        <tr><td>Professionalism</td><td>{{.Professionalism}}</td></tr>
        <tr><td>Response time</td><td>{{.ResponseTime}}</td></tr>
        <tr><td>Overall services</td><td>{{.OverallServices}}</td></tr>
        {{range .FeedbackEntries}}<tr><td>Feedback{{if .Key}} for {{.Key}}{{end}}</td><td>{{.Value}}</td></tr>
        {{end}}        <tr><td>Would recommend</td><td>{{.Recommend}}</td></tr>
    </table>
    <p>Record ID: {{.FeedbackID}}</p>
{{template "layout_end"}}{{end}}

{{define "form_link"}}{{template "layout_start"}}
    <h1>Your feedback form is ready</h1>
    <p>Share this link with your clients:</p>
    <p><a href="{{.Link}}" class="button">Open feedback form</a></p>
    <p>{{.Link}}</p>
{{template "layout_end"}}{{end}}
`))
