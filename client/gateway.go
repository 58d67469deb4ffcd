package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/feedbackdesk/feedback-backend/models/feedback"
	"github.com/feedbackdesk/feedback-backend/types"
)

// SubmitResult reports a stored submission. EmailErr is the outcome of the
// follow-up confirmation email; it never affects Record.
type SubmitResult struct {
	Record   *types.FeedbackRecord
	EmailErr error
}

// SubmitFeedback validates draft against roster and caps, then stores it and
// requests the confirmation email. A draft that fails validation is returned
// as feedback.ValidationErrors without any request being made.
func (c *Client) SubmitFeedback(ctx context.Context, draft types.Draft, roster types.Roster, caps types.Capabilities) (*SubmitResult, error) {
	if errs := feedback.Validate(draft, roster, caps); !errs.Empty() {
		return nil, errs
	}

	rec, err := c.CreateFeedback(ctx, draft)
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{Record: rec}
	_, result.EmailErr = c.SendEmail(ctx, types.SendEmailRequest{
		Email:      rec.Email,
		FirstName:  rec.FirstName,
		LastName:   rec.LastName,
		FeedbackID: rec.ID,
	})
	return result, nil
}

// SettingsBundle is everything the admin settings screen saves at once.
type SettingsBundle struct {
	Individuals  []types.Individual `json:"individuals"`
	Services     []string           `json:"services"`
	FormDefaults types.FormDefaults `json:"formDefaults"`
}

// SaveOutcome is the result of one of the SaveAllSettings calls.
type SaveOutcome struct {
	Name string
	Err  error
}

func (o SaveOutcome) OK() bool {
	return o.Err == nil
}

// SaveAllResult holds the per-call outcomes of SaveAllSettings in a fixed
// order: individuals, services, form defaults.
type SaveAllResult struct {
	Outcomes []SaveOutcome
}

// Err is nil only if every call succeeded.
func (r *SaveAllResult) Err() error {
	var failed []string
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o.Name)
			errs = append(errs, o.Err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("failed to save %s: %w", strings.Join(failed, ", "), errors.Join(errs...))
}

const (
	SaveIndividuals  = "individuals"
	SaveServices     = "services"
	SaveFormDefaults = "formDefaults"
)

// SaveAllSettings saves the individuals list, the services list and the form
// defaults concurrently and waits for all three. Calls are independent: one
// failing does not stop or undo the others.
func (c *Client) SaveAllSettings(ctx context.Context, bundle SettingsBundle) *SaveAllResult {
	calls := []struct {
		name string
		fn   func() error
	}{
		{SaveIndividuals, func() error {
			_, err := c.UpdateIndividuals(ctx, bundle.Individuals)
			return err
		}},
		{SaveServices, func() error {
			_, err := c.UpdateServices(ctx, bundle.Services)
			return err
		}},
		{SaveFormDefaults, func() error {
			_, err := c.SaveFormDefaults(ctx, bundle.FormDefaults)
			return err
		}},
	}

	result := &SaveAllResult{Outcomes: make([]SaveOutcome, len(calls))}
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, name string, fn func() error) {
			defer wg.Done()
			result.Outcomes[i] = SaveOutcome{Name: name, Err: fn()}
		}(i, call.name, call.fn)
	}
	wg.Wait()
	return result
}
