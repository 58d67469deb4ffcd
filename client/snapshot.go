package client

import (
	"context"
	"time"

	"github.com/feedbackdesk/feedback-backend/models/feedback"
	"github.com/feedbackdesk/feedback-backend/types"
)

// MaxSuggestions caps Snapshot.SuggestEmails, matching the server.
const MaxSuggestions = 10

// Snapshot is every stored record fetched once, so repeated lookups and
// filters run without further requests.
type Snapshot struct {
	records  []types.FeedbackRecord
	location *time.Location
}

// Snapshot fetches all records. Date filters interpret days in loc, or UTC when nil.
func (c *Client) Snapshot(ctx context.Context, loc *time.Location) (*Snapshot, error) {
	records, err := c.ListFeedback(ctx)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Snapshot{records: records, location: loc}, nil
}

func (s *Snapshot) Records() []types.FeedbackRecord {
	return s.records
}

func (s *Snapshot) FindByEmail(email string) (*types.FeedbackRecord, bool) {
	return feedback.FilterByExactEmail(s.records, email)
}

func (s *Snapshot) SuggestEmails(partial string) []string {
	emails := feedback.FilterByEmailPrefix(s.records, partial)
	if len(emails) > MaxSuggestions {
		emails = emails[:MaxSuggestions]
	}
	return emails
}

// ByDateRange keeps the records created on any day from start to end inclusive.
func (s *Snapshot) ByDateRange(start, end string) ([]types.FeedbackRecord, error) {
	r, err := feedback.ParseDateRange(start, end, s.location)
	if err != nil {
		return nil, err
	}
	return feedback.FilterByDateRange(s.records, r), nil
}

// FeedbackByIndividual splits a record's flattened feedback text back into
// one entry per selected individual.
func FeedbackByIndividual(rec types.FeedbackRecord) types.TextMap {
	return feedback.UnflattenFeedbackText(rec.Individuals, rec.Feedback)
}
