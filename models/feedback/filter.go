package feedback

import (
	"strings"
	"time"

	"github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/types"
)

// DateLayout is the calendar-day format used by the date-range filter.
const DateLayout = "2006-01-02"

// FilterByEmailPrefix returns the distinct submitter emails containing
// partial, case-insensitively, in first-seen order. Blank input matches nothing.
func FilterByEmailPrefix(records []types.FeedbackRecord, partial string) []string {
	needle := strings.ToLower(strings.TrimSpace(partial))
	out := []string{}
	if needle == "" {
		return out
	}

	seen := map[string]struct{}{}
	for _, rec := range records {
		email := strings.TrimSpace(rec.Email)
		key := strings.ToLower(email)
		if !strings.Contains(key, needle) {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, email)
	}
	return out
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses two YYYY-MM-DD days in loc. Both are required and the
// end may not precede the start. Equal days select exactly that day.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return DateRange{}, errors.ValidationFailed("invalid_date_range", "startDate and endDate are both required")
	}

	from, err := time.ParseInLocation(DateLayout, start, loc)
	if err != nil {
		return DateRange{}, errors.ValidationFailed("invalid_date_range", "startDate must be formatted as YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(DateLayout, end, loc)
	if err != nil {
		return DateRange{}, errors.ValidationFailed("invalid_date_range", "endDate must be formatted as YYYY-MM-DD")
	}
	if to.Before(from) {
		return DateRange{}, errors.ValidationFailed("invalid_date_range", "endDate must not be before startDate")
	}
	return DateRange{Start: from, End: to}, nil
}

// Contains reports whether t falls on any day of the range, including the
// first instant of the start day and the last instant of the end day.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.upper())
}

// Bounds returns the half-open instant interval [from, to) covered by the range.
func (r DateRange) Bounds() (time.Time, time.Time) {
	return r.Start, r.upper()
}

func (r DateRange) upper() time.Time {
	return r.End.AddDate(0, 0, 1)
}

// FilterByDateRange keeps the records created within r, preserving order.
func FilterByDateRange(records []types.FeedbackRecord, r DateRange) []types.FeedbackRecord {
	out := []types.FeedbackRecord{}
	for _, rec := range records {
		if r.Contains(rec.CreatedAt) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterByExactEmail finds the first record submitted with email. The
// boolean is false when there is no such record.
func FilterByExactEmail(records []types.FeedbackRecord, email string) (*types.FeedbackRecord, bool) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false
	}
	for i := range records {
		if strings.EqualFold(strings.TrimSpace(records[i].Email), email) {
			rec := records[i]
			return &rec, true
		}
	}
	return nil, false
}
