package types

// ErrorResponse is the JSON body written by the error middleware.
type ErrorResponse struct {
	Type    string            `json:"type"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// ExportResponse points at an uploaded export.
type ExportResponse struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	Records   int    `json:"records"`
	ExpiresIn int    `json:"expiresInSeconds"`
}
