package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Individual is a staff member that can be rated. On the wire it is either a
// bare name or an object with a name and designation.
type Individual struct {
	Name        string `json:"name"`
	Designation string `json:"designation,omitempty"`
}

// Label is the selection value shown on the form: "Name (Designation)", or
// just the name when no designation is set.
func (i Individual) Label() string {
	name := strings.TrimSpace(i.Name)
	designation := strings.TrimSpace(i.Designation)
	if designation == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, designation)
}

// Matches reports whether a selected value refers to this individual, by
// label or by bare name.
func (i Individual) Matches(selected string) bool {
	selected = strings.TrimSpace(selected)
	if selected == "" {
		return false
	}
	return selected == i.Label() || selected == strings.TrimSpace(i.Name)
}

func (i Individual) MarshalJSON() ([]byte, error) {
	if i.Designation == "" {
		return json.Marshal(i.Name)
	}
	type plain Individual
	return json.Marshal(plain(i))
}

func (i *Individual) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*i = Individual{Name: name}
		return nil
	}
	type plain Individual
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("individual must be a string or an object with a name: %w", err)
	}
	*i = Individual(p)
	return nil
}

// Roster is the current set of selectable choices for the feedback form.
type Roster struct {
	Individuals       []Individual `json:"individualsList"`
	Services          []string     `json:"servicesList"`
	TitleOptions      []string     `json:"titleOptions"`
	FeedbackQuestions []string     `json:"feedbackQuestions"`
	NewsletterOptions []string     `json:"newsletterOptions"`
}

// IndividualLabels returns the selection label of every individual in roster order.
func (r Roster) IndividualLabels() []string {
	labels := make([]string, 0, len(r.Individuals))
	for _, ind := range r.Individuals {
		labels = append(labels, ind.Label())
	}
	return labels
}

// HasIndividual reports whether selected names a rostered individual.
func (r Roster) HasIndividual(selected string) bool {
	for _, ind := range r.Individuals {
		if ind.Matches(selected) {
			return true
		}
	}
	return false
}

func (r Roster) HasService(name string) bool {
	return containsTrimmed(r.Services, name)
}

func (r Roster) HasTitle(title string) bool {
	return containsTrimmed(r.TitleOptions, title)
}

func containsTrimmed(list []string, v string) bool {
	v = strings.TrimSpace(v)
	for _, item := range list {
		if strings.TrimSpace(item) == v {
			return true
		}
	}
	return false
}

// Capabilities switches optional form fields on or off for a deployment.
type Capabilities struct {
	Title                 bool `json:"title" mapstructure:"TITLE"`
	Newsletter            bool `json:"newsletter" mapstructure:"NEWSLETTER"`
	TermsAcceptance       bool `json:"termsAcceptance" mapstructure:"TERMS_ACCEPTANCE"`
	PerIndividualFeedback bool `json:"perIndividualFeedback" mapstructure:"PER_INDIVIDUAL_FEEDBACK"`
}

// AllCapabilities enables every optional field, matching the richest form.
func AllCapabilities() Capabilities {
	return Capabilities{Title: true, Newsletter: true, TermsAcceptance: true, PerIndividualFeedback: true}
}

// ListsResponse is returned by GET /api/lists.
type ListsResponse struct {
	IndividualsList []Individual `json:"individualsList"`
	ServicesList    []string     `json:"servicesList"`
}

// UpdateIndividualsRequest replaces the whole individuals list.
type UpdateIndividualsRequest struct {
	UpdatedList []Individual `json:"updatedList" binding:"required"`
}

// UpdateServicesRequest replaces the whole services list.
type UpdateServicesRequest struct {
	UpdatedList []string `json:"updatedList" binding:"required"`
}

// UpdateIndividualsResponse echoes the stored individuals list.
type UpdateIndividualsResponse struct {
	UpdatedList []Individual `json:"updatedList"`
}

// UpdateServicesResponse echoes the stored services list.
type UpdateServicesResponse struct {
	UpdatedList []string `json:"updatedList"`
}
