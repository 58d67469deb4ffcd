package types

// EmailData is a rendered-template email job.
type EmailData struct {
	To           string
	Subject      string
	TemplateData map[string]interface{}
}

// SendEmailRequest asks for the "feedback received" notification after a
// successful submission.
type SendEmailRequest struct {
	Email      string `json:"email" binding:"required,email,max=255"`
	FirstName  string `json:"firstName" binding:"max=100"`
	LastName   string `json:"lastName" binding:"max=100"`
	FeedbackID string `json:"feedbackId,omitempty"`
}

// NotifyOpenRequest reports that a shareable form link was generated.
type NotifyOpenRequest struct {
	Link      string `json:"link" binding:"required,url"`
	Recipient string `json:"recipient,omitempty" binding:"omitempty,email"`
}

// AcceptedResponse is returned for queued, fire-and-forget work.
type AcceptedResponse struct {
	Status string `json:"status"`
	Queued bool   `json:"queued"`
}
