package types

import (
	"encoding/json"
	"strings"
	"time"
)

// Recommendation is the answer to "would you recommend us".
type Recommendation string

const (
	RecommendYes   Recommendation = "Yes"
	RecommendNo    Recommendation = "No"
	RecommendMaybe Recommendation = "Maybe"
)

func (r Recommendation) Valid() bool {
	switch r {
	case RecommendYes, RecommendNo, RecommendMaybe:
		return true
	}
	return false
}

// NewsletterChoice is the answer to the newsletter opt-in question.
type NewsletterChoice string

const (
	NewsletterYes NewsletterChoice = "Yes"
	NewsletterNo  NewsletterChoice = "No"
)

func (n NewsletterChoice) Valid() bool {
	return n == NewsletterYes || n == NewsletterNo
}

// RatingDimension names one of the three per-individual rating maps.
type RatingDimension string

const (
	DimensionProfessionalism RatingDimension = "professionalism"
	DimensionResponseTime    RatingDimension = "responseTime"
	DimensionOverallServices RatingDimension = "overallServices"
)

// RatingDimensions lists the dimensions in form order.
var RatingDimensions = []RatingDimension{
	DimensionProfessionalism,
	DimensionResponseTime,
	DimensionOverallServices,
}

// Label is the human readable name used in messages and export headers.
func (d RatingDimension) Label() string {
	switch d {
	case DimensionProfessionalism:
		return "Professionalism"
	case DimensionResponseTime:
		return "Response time"
	case DimensionOverallServices:
		return "Overall services"
	}
	return string(d)
}

// Draft is an in-progress feedback submission. Drafts are values: every
// With* method returns a new Draft and never touches the receiver.
type Draft struct {
	Title               string           `json:"title"`
	Email               string           `json:"email"`
	OrganizationName    string           `json:"organizationName"`
	FirstName           string           `json:"firstName"`
	LastName            string           `json:"lastName"`
	PhoneNumber         string           `json:"phoneNumber"`
	Services            []string         `json:"services"`
	Individuals         []string         `json:"individuals"`
	Professionalism     RatingMap        `json:"professionalism"`
	ResponseTime        RatingMap        `json:"responseTime"`
	OverallServices     RatingMap        `json:"overallServices"`
	Feedback            string           `json:"feedback,omitempty"`
	Feedbacks           TextMap          `json:"feedbacks,omitempty"`
	CustomResponses     TextMap          `json:"customResponses"`
	Recommend           Recommendation   `json:"recommend"`
	SubscribeNewsletter NewsletterChoice `json:"subscribeNewsletter,omitempty"`
	TermsAccepted       bool             `json:"termsAccepted"`
}

// UnmarshalJSON decodes a draft without ever failing on a field of the wrong
// type; such fields are left empty so validation reports them as missing.
// Only malformed JSON is an error.
func (d *Draft) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Draft
	decodeString(raw["title"], &out.Title)
	decodeString(raw["email"], &out.Email)
	decodeString(raw["organizationName"], &out.OrganizationName)
	decodeString(raw["firstName"], &out.FirstName)
	decodeString(raw["lastName"], &out.LastName)
	decodeString(raw["phoneNumber"], &out.PhoneNumber)
	out.Services = decodeStrings(raw["services"])
	out.Individuals = decodeStrings(raw["individuals"])
	decodeLenient(raw["professionalism"], &out.Professionalism)
	decodeLenient(raw["responseTime"], &out.ResponseTime)
	decodeLenient(raw["overallServices"], &out.OverallServices)
	decodeString(raw["feedback"], &out.Feedback)
	decodeLenient(raw["feedbacks"], &out.Feedbacks)
	decodeLenient(raw["customResponses"], &out.CustomResponses)

	var s string
	decodeString(raw["recommend"], &s)
	out.Recommend = Recommendation(s)
	s = ""
	decodeString(raw["subscribeNewsletter"], &s)
	out.SubscribeNewsletter = NewsletterChoice(s)
	decodeLenient(raw["termsAccepted"], &out.TermsAccepted)

	*d = out
	return nil
}

func decodeLenient(raw json.RawMessage, dst any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, dst)
}

func decodeString(raw json.RawMessage, dst *string) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return
	}
	*dst = s
}

// decodeStrings keeps the string elements of a JSON array and drops the rest.
func decodeStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			out = append(out, s)
		}
	}
	return out
}

// Rating returns the map for dim.
func (d Draft) Rating(dim RatingDimension) RatingMap {
	switch dim {
	case DimensionProfessionalism:
		return d.Professionalism
	case DimensionResponseTime:
		return d.ResponseTime
	case DimensionOverallServices:
		return d.OverallServices
	}
	return nil
}

// Clone returns a deep copy.
func (d Draft) Clone() Draft {
	out := d
	out.Services = cloneStrings(d.Services)
	out.Individuals = cloneStrings(d.Individuals)
	out.Professionalism = d.Professionalism.Clone()
	out.ResponseTime = d.ResponseTime.Clone()
	out.OverallServices = d.OverallServices.Clone()
	out.Feedbacks = d.Feedbacks.Clone()
	out.CustomResponses = d.CustomResponses.Clone()
	return out
}

func (d Draft) WithTitle(v string) Draft {
	out := d.Clone()
	out.Title = v
	return out
}

func (d Draft) WithEmail(v string) Draft {
	out := d.Clone()
	out.Email = v
	return out
}

func (d Draft) WithOrganizationName(v string) Draft {
	out := d.Clone()
	out.OrganizationName = v
	return out
}

func (d Draft) WithName(first, last string) Draft {
	out := d.Clone()
	out.FirstName = first
	out.LastName = last
	return out
}

func (d Draft) WithPhoneNumber(v string) Draft {
	out := d.Clone()
	out.PhoneNumber = v
	return out
}

func (d Draft) WithServices(services ...string) Draft {
	out := d.Clone()
	out.Services = dedupe(services)
	return out
}

// WithIndividuals replaces the selection, dropping repeated names while
// keeping first-seen order.
func (d Draft) WithIndividuals(names ...string) Draft {
	out := d.Clone()
	out.Individuals = dedupe(names)
	return out
}

// WithRating sets one individual's score on one dimension.
func (d Draft) WithRating(dim RatingDimension, name string, v int) Draft {
	out := d.Clone()
	switch dim {
	case DimensionProfessionalism:
		out.Professionalism = out.Professionalism.Set(name, v)
	case DimensionResponseTime:
		out.ResponseTime = out.ResponseTime.Set(name, v)
	case DimensionOverallServices:
		out.OverallServices = out.OverallServices.Set(name, v)
	}
	return out
}

func (d Draft) WithFeedback(text string) Draft {
	out := d.Clone()
	out.Feedback = text
	return out
}

func (d Draft) WithFeedbackFor(name, text string) Draft {
	out := d.Clone()
	out.Feedbacks = out.Feedbacks.Set(name, text)
	return out
}

func (d Draft) WithCustomResponse(question, answer string) Draft {
	out := d.Clone()
	out.CustomResponses = out.CustomResponses.Set(question, answer)
	return out
}

func (d Draft) WithRecommend(r Recommendation) Draft {
	out := d.Clone()
	out.Recommend = r
	return out
}

func (d Draft) WithNewsletter(n NewsletterChoice) Draft {
	out := d.Clone()
	out.SubscribeNewsletter = n
	return out
}

func (d Draft) WithTerms(accepted bool) Draft {
	out := d.Clone()
	out.TermsAccepted = accepted
	return out
}

// FeedbackContent is the stored, transport shape of a submission: the
// per-individual feedback text has already been flattened into Feedback.
type FeedbackContent struct {
	Title               string    `json:"title"`
	Email               string    `json:"email"`
	OrganizationName    string    `json:"organizationName"`
	FirstName           string    `json:"firstName"`
	LastName            string    `json:"lastName"`
	PhoneNumber         string    `json:"phoneNumber"`
	Services            []string  `json:"services"`
	Individuals         []string  `json:"individuals"`
	Professionalism     RatingMap `json:"professionalism"`
	ResponseTime        RatingMap `json:"responseTime"`
	OverallServices     RatingMap `json:"overallServices"`
	Feedback            string    `json:"feedback"`
	CustomResponses     TextMap   `json:"customResponses"`
	Recommend           string    `json:"recommend"`
	SubscribeNewsletter string    `json:"subscribeNewsletter"`
	TermsAccepted       bool      `json:"termsAccepted"`
}

// Rating returns the map for dim.
func (c FeedbackContent) Rating(dim RatingDimension) RatingMap {
	switch dim {
	case DimensionProfessionalism:
		return c.Professionalism
	case DimensionResponseTime:
		return c.ResponseTime
	case DimensionOverallServices:
		return c.OverallServices
	}
	return nil
}

// FeedbackRecord is a persisted submission. ID and timestamps are assigned
// by the store.
type FeedbackRecord struct {
	ID string `json:"id"`
	FeedbackContent
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName joins first and last name.
func (r FeedbackRecord) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// IndividualSummary holds mean ratings for one individual across records.
// A nil average means no record rated that dimension.
type IndividualSummary struct {
	Name            string   `json:"name"`
	Records         int      `json:"records"`
	Professionalism *float64 `json:"professionalism"`
	ResponseTime    *float64 `json:"responseTime"`
	OverallServices *float64 `json:"overallServices"`
}

// FeedbackStats is returned by the admin statistics endpoint.
type FeedbackStats struct {
	TotalRecords int                 `json:"totalRecords"`
	Recommend    map[string]int      `json:"recommend"`
	Individuals  []IndividualSummary `json:"individuals"`
	GeneratedAt  time.Time           `json:"generatedAt"`
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
