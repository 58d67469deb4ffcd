package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/stretchr/testify/assert"
)

func init() {
	logger.IsTest = true
}

func TestNew(t *testing.T) {
	err := New(ValidationError, "invalid input", "field required")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "field required", err.Detail)
	assert.Equal(t, 400, err.HTTPStatus)
}

func TestWrap(t *testing.T) {
	originalErr := fmt.Errorf("original error")
	wrappedErr := Wrap(originalErr, DatabaseError, "database operation failed")

	assert.Equal(t, DatabaseError, wrappedErr.Type)
	assert.Equal(t, "database operation failed", wrappedErr.Message)
	assert.Equal(t, originalErr.Error(), wrappedErr.Detail)
	assert.Equal(t, 500, wrappedErr.HTTPStatus)
	assert.True(t, stderrors.Is(wrappedErr, originalErr))
	assert.Nil(t, Wrap(nil, DatabaseError, "ignored"))
}

func TestNotFound(t *testing.T) {
	err := NotFound("Feedback", "abc")
	assert.Equal(t, NotFoundError, err.Type)
	assert.Equal(t, "Feedback not found", err.Message)
	assert.Equal(t, "ID: abc", err.Detail)
	assert.Equal(t, 404, err.GetHTTPStatus())
}

func TestValidationFields(t *testing.T) {
	fields := map[string]string{
		"email":                    "Email is required",
		"professionalism-Akhila":   "Professionalism rating for Akhila is required",
		"customResponses-Anything": "An answer is required",
	}
	err := ValidationFields("Please fill out all required fields", fields)

	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, 400, err.HTTPStatus)
	assert.Equal(t, fields, err.Fields)
	assert.Equal(t, "customResponses-Anything, email, professionalism-Akhila", err.Detail)

	// The error keeps its own copy of the map.
	fields["email"] = "changed"
	assert.Equal(t, "Email is required", err.Fields["email"])
}

func TestNewDatabaseError(t *testing.T) {
	originalErr := fmt.Errorf("connection failed")
	err := NewDatabaseError(originalErr)
	assert.Equal(t, DatabaseError, err.Type)
	assert.Equal(t, "Database operation failed", err.Message)
	assert.Equal(t, 500, err.HTTPStatus)
	assert.Equal(t, originalErr, err.Raw)
}

func TestRateLimitExceeded(t *testing.T) {
	err := RateLimitExceeded("Too many requests", 42)
	assert.Equal(t, 429, err.GetHTTPStatus())
	assert.Equal(t, 42, err.RetryAfter)
}

func TestGetHTTPStatusFallback(t *testing.T) {
	err := &AppError{Type: ForbiddenError, Message: "denied"}
	assert.Equal(t, 403, err.GetHTTPStatus())

	err = &AppError{Type: "SOMETHING_ELSE"}
	assert.Equal(t, 500, err.GetHTTPStatus())
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name: "with detail",
			err: &AppError{
				Type:    ValidationError,
				Message: "invalid input",
				Detail:  "field required",
			},
			expected: "VALIDATION_ERROR: invalid input (field required)",
		},
		{
			name: "without detail",
			err: &AppError{
				Type:    AuthError,
				Message: "unauthorized",
			},
			expected: "AUTHENTICATION_ERROR: unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}
