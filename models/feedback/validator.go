// Package feedback holds the pure feedback model logic: draft validation,
// rating aggregation and record filtering. Nothing here performs I/O.
package feedback

import (
	"fmt"
	"sort"
	"strings"

	"github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/types"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Field keys reported by the validator. Per-individual keys are built as
// "<rule>-<name>", e.g. "professionalism-Akhila".
const (
	KeyTitle               = "title"
	KeyEmail               = "email"
	KeyFirstName           = "firstName"
	KeyLastName            = "lastName"
	KeyOrganizationName    = "organizationName"
	KeyPhoneNumber         = "phoneNumber"
	KeyServices            = "services"
	KeyIndividuals         = "individuals"
	KeyFeedback            = "feedback"
	KeyCustomResponses     = "customResponses"
	KeyRecommend           = "recommend"
	KeySubscribeNewsletter = "subscribeNewsletter"
	KeyTermsAccepted       = "termsAccepted"
)

// SubmitFailedMessage is the single user-facing message for a rejected draft.
const SubmitFailedMessage = "Please fill out all required fields"

// FieldKey builds a composite per-item key.
func FieldKey(rule, name string) string {
	return rule + "-" + name
}

// ValidationErrors maps a field key to a human readable message.
type ValidationErrors map[string]string

func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

// Keys returns the failing field keys in sorted order.
func (v ValidationErrors) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Error lets a non-empty result be returned as an error.
func (v ValidationErrors) Error() string {
	return fmt.Sprintf("%s: %s", SubmitFailedMessage, strings.Join(v.Keys(), ", "))
}

// Err converts the failures into a validation AppError, or nil when there are none.
func (v ValidationErrors) Err() error {
	if v.Empty() {
		return nil
	}
	return errors.ValidationFields(SubmitFailedMessage, v)
}

func (v ValidationErrors) add(key, msg string) {
	if _, exists := v[key]; !exists {
		v[key] = msg
	}
}

// Validate checks a draft against the current roster. Every violated rule is
// reported; the draft may be submitted only when the result is empty.
func Validate(d types.Draft, roster types.Roster, caps types.Capabilities) ValidationErrors {
	errs := ValidationErrors{}
	d = normalizeSelections(d)

	validateContact(errs, d, roster, caps)
	validateServices(errs, d.Services, roster)
	selected := validateIndividuals(errs, d.Individuals, roster)

	for _, name := range selected {
		for _, dim := range types.RatingDimensions {
			checkRating(errs, dim, name, d.Rating(dim))
		}
		if caps.PerIndividualFeedback {
			if text, _ := d.Feedbacks.Get(name); blank(text) {
				errs.add(FieldKey(KeyFeedback, name), fmt.Sprintf("Feedback for %s is required", name))
			}
		}
	}
	checkStrayRatings(errs, selected, d.Professionalism, d.ResponseTime, d.OverallServices)
	for _, name := range d.Feedbacks.Keys() {
		if !contains(selected, name) {
			errs.add(FieldKey(KeyFeedback, name), fmt.Sprintf("%s is not a selected individual", name))
		}
	}

	for _, q := range roster.FeedbackQuestions {
		if blank(q) {
			continue
		}
		if answer, _ := d.CustomResponses.Get(q); blank(answer) {
			errs.add(FieldKey(KeyCustomResponses, q), fmt.Sprintf("An answer to %q is required", q))
		}
	}

	switch {
	case d.Recommend == "":
		errs.add(KeyRecommend, "Recommendation is required")
	case !d.Recommend.Valid():
		errs.add(KeyRecommend, "Recommendation must be Yes, No or Maybe")
	}

	if caps.Newsletter && !d.SubscribeNewsletter.Valid() {
		errs.add(KeySubscribeNewsletter, "Please choose whether to subscribe to the newsletter")
	}
	if caps.TermsAcceptance && !d.TermsAccepted {
		errs.add(KeyTermsAccepted, "You must accept the terms and conditions")
	}

	return errs
}

func validateContact(errs ValidationErrors, d types.Draft, roster types.Roster, caps types.Capabilities) {
	if caps.Title {
		switch {
		case blank(d.Title):
			errs.add(KeyTitle, "Title is required")
		case len(roster.TitleOptions) > 0 && !roster.HasTitle(d.Title):
			errs.add(KeyTitle, "Title must be one of the available options")
		}
	}

	switch {
	case blank(d.Email):
		errs.add(KeyEmail, "Email is required")
	case !strings.Contains(d.Email, "@"):
		errs.add(KeyEmail, "Email must contain @")
	}

	if blank(d.FirstName) {
		errs.add(KeyFirstName, "First Name is required")
	}
	if blank(d.LastName) {
		errs.add(KeyLastName, "Last Name is required")
	}
	if blank(d.OrganizationName) {
		errs.add(KeyOrganizationName, "Organization Name is required")
	}
	if blank(d.PhoneNumber) {
		errs.add(KeyPhoneNumber, "Phone number is required")
	}
}

func validateServices(errs ValidationErrors, services []string, roster types.Roster) {
	count := 0
	for _, s := range services {
		if blank(s) {
			continue
		}
		count++
		if !roster.HasService(s) {
			errs.add(FieldKey(KeyServices, s), fmt.Sprintf("%s is not an available service", s))
		}
	}
	if count == 0 {
		errs.add(KeyServices, "At least one service must be selected")
	}
}

// validateIndividuals returns the distinct non-blank selections in order.
// Two selections are the same person when they resolve to the same roster
// entry, whether by label or by bare name. Unknown names are reported but
// still returned, so their ratings are checked too.
func validateIndividuals(errs ValidationErrors, individuals []string, roster types.Roster) []string {
	selected := make([]string, 0, len(individuals))
	seen := map[string]struct{}{}
	for _, name := range individuals {
		if blank(name) {
			continue
		}
		key := rosterKey(name, roster)
		if _, dup := seen[key]; dup {
			errs.add(FieldKey(KeyIndividuals, name), fmt.Sprintf("%s was selected more than once", name))
			continue
		}
		seen[key] = struct{}{}
		selected = append(selected, name)
		if !roster.HasIndividual(name) {
			errs.add(FieldKey(KeyIndividuals, name), fmt.Sprintf("%s is not in the current staff roster", name))
		}
	}
	if len(selected) == 0 {
		errs.add(KeyIndividuals, "At least one individual must be selected")
	}
	return selected
}

// rosterKey identifies the person a selection refers to: the label of the
// matching roster entry, or the selection itself when nobody matches.
func rosterKey(selected string, roster types.Roster) string {
	for _, ind := range roster.Individuals {
		if ind.Matches(selected) {
			return ind.Label()
		}
	}
	return selected
}

// normalizeSelections trims the individual selections and the names keying
// their ratings and feedback text, so " A " and "A" are one person.
func normalizeSelections(d types.Draft) types.Draft {
	d = d.Clone()
	for i, name := range d.Individuals {
		d.Individuals[i] = strings.TrimSpace(name)
	}
	d.Professionalism = trimRatingNames(d.Professionalism)
	d.ResponseTime = trimRatingNames(d.ResponseTime)
	d.OverallServices = trimRatingNames(d.OverallServices)
	if d.Feedbacks != nil {
		texts := types.TextMap{}
		for _, e := range d.Feedbacks {
			texts = texts.Set(strings.TrimSpace(e.Key), e.Value)
		}
		d.Feedbacks = texts
	}
	return d
}

func trimRatingNames(m types.RatingMap) types.RatingMap {
	if m == nil {
		return nil
	}
	out := types.RatingMap{}
	for _, r := range m {
		out = out.Set(strings.TrimSpace(r.Name), r.Value)
	}
	return out
}

func checkRating(errs ValidationErrors, dim types.RatingDimension, name string, ratings types.RatingMap) {
	key := FieldKey(string(dim), name)
	v, ok := ratings.Get(name)
	switch {
	case !ok:
		errs.add(key, fmt.Sprintf("%s rating for %s is required", dim.Label(), name))
	case v < MinRating || v > MaxRating:
		errs.add(key, fmt.Sprintf("%s rating for %s must be between %d and %d", dim.Label(), name, MinRating, MaxRating))
	}
}

// checkStrayRatings reports entries keyed by names that are not selected.
func checkStrayRatings(errs ValidationErrors, selected []string, maps ...types.RatingMap) {
	for i, m := range maps {
		dim := types.RatingDimensions[i]
		for _, name := range m.Names() {
			if !contains(selected, name) {
				errs.add(FieldKey(string(dim), name), fmt.Sprintf("%s is not a selected individual", name))
			}
		}
	}
}

// ValidateContent performs the structural checks applied to an admin edit of
// a stored record. Roster membership is not re-checked; a stored
// record may reference individuals or services that have since been removed.
func ValidateContent(c types.FeedbackContent) ValidationErrors {
	errs := ValidationErrors{}

	switch {
	case blank(c.Email):
		errs.add(KeyEmail, "Email is required")
	case !strings.Contains(c.Email, "@"):
		errs.add(KeyEmail, "Email must contain @")
	}

	selected := make([]string, 0, len(c.Individuals))
	for _, name := range c.Individuals {
		if blank(name) {
			errs.add(KeyIndividuals, "Individual names must not be blank")
			continue
		}
		if contains(selected, name) {
			errs.add(FieldKey(KeyIndividuals, name), fmt.Sprintf("%s was selected more than once", name))
			continue
		}
		selected = append(selected, name)
	}

	for _, dim := range types.RatingDimensions {
		for _, r := range c.Rating(dim) {
			if r.Value < MinRating || r.Value > MaxRating {
				errs.add(FieldKey(string(dim), r.Name),
					fmt.Sprintf("%s rating for %s must be between %d and %d", dim.Label(), r.Name, MinRating, MaxRating))
			}
		}
	}
	checkStrayRatings(errs, selected, c.Professionalism, c.ResponseTime, c.OverallServices)

	if c.Recommend != "" && !types.Recommendation(c.Recommend).Valid() {
		errs.add(KeyRecommend, "Recommendation must be Yes, No or Maybe")
	}
	if c.SubscribeNewsletter != "" && !types.NewsletterChoice(c.SubscribeNewsletter).Valid() {
		errs.add(KeySubscribeNewsletter, "Newsletter choice must be Yes or No")
	}

	return errs
}

// ToContent converts a validated draft into its stored shape. Scalar fields
// and individual selections are trimmed and per-individual feedback is flattened in selection order.
func ToContent(d types.Draft, caps types.Capabilities) types.FeedbackContent {
	d = normalizeSelections(d)
	individuals := make([]string, 0, len(d.Individuals))
	for _, name := range d.Individuals {
		if !blank(name) && !contains(individuals, name) {
			individuals = append(individuals, name)
		}
	}

	services := make([]string, 0, len(d.Services))
	for _, s := range d.Services {
		s = strings.TrimSpace(s)
		if s != "" && !contains(services, s) {
			services = append(services, s)
		}
	}

	text := strings.TrimSpace(d.Feedback)
	if caps.PerIndividualFeedback || len(d.Feedbacks) > 0 {
		text = FlattenFeedbackText(individuals, d.Feedbacks)
	}

	c := types.FeedbackContent{
		Email:            strings.TrimSpace(d.Email),
		OrganizationName: strings.TrimSpace(d.OrganizationName),
		FirstName:        strings.TrimSpace(d.FirstName),
		LastName:         strings.TrimSpace(d.LastName),
		PhoneNumber:      strings.TrimSpace(d.PhoneNumber),
		Services:         services,
		Individuals:      individuals,
		Professionalism:  d.Professionalism.Clone(),
		ResponseTime:     d.ResponseTime.Clone(),
		OverallServices:  d.OverallServices.Clone(),
		Feedback:         text,
		CustomResponses:  d.CustomResponses.Clone(),
		Recommend:        string(d.Recommend),
		TermsAccepted:    d.TermsAccepted,
	}
	if caps.Title {
		c.Title = strings.TrimSpace(d.Title)
	}
	if caps.Newsletter {
		c.SubscribeNewsletter = string(d.SubscribeNewsletter)
	}
	return c
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
