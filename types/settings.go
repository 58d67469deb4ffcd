package types

import "time"

// ContactDefaults pre-fill the submitter fields of a new draft.
type ContactDefaults struct {
	Email            string `json:"email"`
	OrganizationName string `json:"organizationName"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	PhoneNumber      string `json:"phoneNumber"`
}

// FormDefaults is the payload of /api/admin/form-defaults.
type FormDefaults struct {
	ContactDefaults
	FeedbackQuestions []string `json:"feedbackQuestions"`
	TitleOptions      []string `json:"titleOptions"`
	NewsletterOptions []string `json:"newsletterOptions"`
}

// FormSettings is the stored form configuration row.
type FormSettings struct {
	FormDefaults
	UpdatedAt time.Time `json:"updatedAt"`
}

// FormConfig is everything the public form needs to render and validate a draft.
type FormConfig struct {
	Roster       Roster          `json:"roster"`
	Capabilities Capabilities    `json:"capabilities"`
	Defaults     ContactDefaults `json:"defaults"`
}

// NewDraft seeds a draft from the contact defaults. The first title option is
// preselected, as on the form.
func (c FormConfig) NewDraft() Draft {
	d := Draft{
		Email:            c.Defaults.Email,
		OrganizationName: c.Defaults.OrganizationName,
		FirstName:        c.Defaults.FirstName,
		LastName:         c.Defaults.LastName,
		PhoneNumber:      c.Defaults.PhoneNumber,
	}
	if c.Capabilities.Title && len(c.Roster.TitleOptions) > 0 {
		d.Title = c.Roster.TitleOptions[0]
	}
	return d
}
