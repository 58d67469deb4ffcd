package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/feedbackdesk/feedback-backend/models/feedback"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/jszwec/csvutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const exportTimeLayout = "2006-01-02 15:04:05"

// ExportStorage is where uploaded exports go. *storage.S3Storage implements it.
type ExportStorage interface {
	Key(name string) string
	Save(ctx context.Context, key, contentType string, body io.Reader) error
	GetURL(ctx context.Context, key string) (string, error)
	PresignTTL() time.Duration
}

// ExportRow is one spreadsheet row. Rating columns hold "Name: n, ..." and
// the averages are blank when nobody was rated.
type ExportRow struct {
	ID                  string `csv:"ID"`
	SubmittedAt         string `csv:"Submitted At"`
	Title               string `csv:"Title"`
	FirstName           string `csv:"First Name"`
	LastName            string `csv:"Last Name"`
	Email               string `csv:"Email"`
	OrganizationName    string `csv:"Organization"`
	PhoneNumber         string `csv:"Phone Number"`
	Services            string `csv:"Services"`
	Individuals         string `csv:"Individuals"`
	Professionalism     string `csv:"Professionalism"`
	ResponseTime        string `csv:"Response Time"`
	OverallServices     string `csv:"Overall Services"`
	AvgProfessionalism  string `csv:"Avg Professionalism"`
	AvgResponseTime     string `csv:"Avg Response Time"`
	AvgOverallServices  string `csv:"Avg Overall Services"`
	Feedback            string `csv:"Feedback"`
	CustomResponses     string `csv:"Custom Responses"`
	Recommend           string `csv:"Recommend"`
	SubscribeNewsletter string `csv:"Newsletter"`
	TermsAccepted       bool   `csv:"Terms Accepted"`
}

// FeedbackSource is the part of FeedbackService the exporter reads.
type FeedbackSource interface {
	List(ctx context.Context) ([]types.FeedbackRecord, error)
	ByDateRange(ctx context.Context, start, end string) ([]types.FeedbackRecord, error)
}

// ExportService renders records as CSV and optionally uploads them.
type ExportService struct {
	source   FeedbackSource
	storage  ExportStorage
	location *time.Location
	log      *zap.SugaredLogger
}

// NewExportService creates the exporter. storage may be nil, which disables uploads.
func NewExportService(source FeedbackSource, storage ExportStorage, location *time.Location) *ExportService {
	if location == nil {
		location = time.UTC
	}
	return &ExportService{
		source:   source,
		storage:  storage,
		location: location,
		log:      logger.GetLogger().Named("export"),
	}
}

// UploadsEnabled reports whether Upload can be used.
func (s *ExportService) UploadsEnabled() bool {
	return s.storage != nil
}

// Records returns every record, or the records of a day range when both
// bounds are given.
func (s *ExportService) Records(ctx context.Context, start, end string) ([]types.FeedbackRecord, error) {
	if start == "" && end == "" {
		return s.source.List(ctx)
	}
	return s.source.ByDateRange(ctx, start, end)
}

// RenderCSV writes records as CSV with a header row, newest first as given.
func (s *ExportService) RenderCSV(records []types.FeedbackRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(w)
	enc.AutoHeader = false
	if err := enc.EncodeHeader(ExportRow{}); err != nil {
		return nil, errors.Wrap(err, errors.ServerError, "Failed to render export")
	}
	for i := range records {
		if err := enc.Encode(s.toRow(&records[i])); err != nil {
			return nil, errors.Wrap(err, errors.ServerError, "Failed to render export")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, errors.ServerError, "Failed to render export")
	}
	return buf.Bytes(), nil
}

// Filename names an export of the given range.
func (s *ExportService) Filename(start, end string, now time.Time) string {
	if start != "" && end != "" {
		return fmt.Sprintf("feedback-%s_to_%s.csv", start, end)
	}
	return fmt.Sprintf("feedback-%s.csv", now.In(s.location).Format("2006-01-02"))
}

// Upload renders the selected records, stores them and returns a presigned URL.
func (s *ExportService) Upload(ctx context.Context, start, end string) (*types.ExportResponse, error) {
	if s.storage == nil {
		return nil, errors.ServiceUnavailable("Export storage is not configured", "")
	}
	records, err := s.Records(ctx, start, end)
	if err != nil {
		return nil, err
	}
	data, err := s.RenderCSV(records)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	name := strings.TrimSuffix(s.Filename(start, end, now), ".csv") + fmt.Sprintf("-%d.csv", now.Unix())
	key := s.storage.Key(name)
	if err := s.storage.Save(ctx, key, "text/csv", bytes.NewReader(data)); err != nil {
		s.log.Errorw("Export upload failed", "key", key, "error", err)
		return nil, errors.Wrap(err, errors.UnavailableError, "Failed to upload export")
	}
	url, err := s.storage.GetURL(ctx, key)
	if err != nil {
		return nil, errors.Wrap(err, errors.ServerError, "Failed to sign export URL")
	}
	s.log.Infow("Uploaded export", "key", key, "records", len(records))

	return &types.ExportResponse{
		Key:       key,
		URL:       url,
		Records:   len(records),
		ExpiresIn: int(s.storage.PresignTTL().Seconds()),
	}, nil
}

func (s *ExportService) toRow(rec *types.FeedbackRecord) ExportRow {
	return ExportRow{
		ID:                  rec.ID,
		SubmittedAt:         rec.CreatedAt.In(s.location).Format(exportTimeLayout),
		Title:               spreadsheetSafe(rec.Title),
		FirstName:           spreadsheetSafe(rec.FirstName),
		LastName:            spreadsheetSafe(rec.LastName),
		Email:               spreadsheetSafe(rec.Email),
		OrganizationName:    spreadsheetSafe(rec.OrganizationName),
		PhoneNumber:         spreadsheetSafe(rec.PhoneNumber),
		Services:            spreadsheetSafe(strings.Join(rec.Services, ", ")),
		Individuals:         spreadsheetSafe(strings.Join(rec.Individuals, ", ")),
		Professionalism:     spreadsheetSafe(feedback.FormatRatingsForExport(rec.Professionalism)),
		ResponseTime:        spreadsheetSafe(feedback.FormatRatingsForExport(rec.ResponseTime)),
		OverallServices:     spreadsheetSafe(feedback.FormatRatingsForExport(rec.OverallServices)),
		AvgProfessionalism:  formatAverage(rec.Professionalism),
		AvgResponseTime:     formatAverage(rec.ResponseTime),
		AvgOverallServices:  formatAverage(rec.OverallServices),
		Feedback:            spreadsheetSafe(rec.Feedback),
		CustomResponses:     spreadsheetSafe(formatResponses(rec.CustomResponses)),
		Recommend:           spreadsheetSafe(rec.Recommend),
		SubscribeNewsletter: spreadsheetSafe(rec.SubscribeNewsletter),
		TermsAccepted:       rec.TermsAccepted,
	}
}

// spreadsheetSafe quotes cells that a spreadsheet would evaluate as a formula.
func spreadsheetSafe(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}

func formatAverage(ratings types.RatingMap) string {
	avg, ok := feedback.RatingAverage(ratings)
	if !ok {
		return ""
	}
	return decimal.NewFromFloat(avg).StringFixed(2)
}

func formatResponses(responses types.TextMap) string {
	parts := make([]string, 0, len(responses))
	for _, key := range responses.Keys() {
		v, _ := responses.Get(key)
		parts = append(parts, key+": "+v)
	}
	return strings.Join(parts, " | ")
}
