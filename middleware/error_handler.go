package middleware

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorHandler renders the last error pushed with c.Error as a JSON
// ErrorResponse. Handlers must not have written a body already.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		err := last.Err

		var appError *errors.AppError
		if stderrors.As(err, &appError) {
			writeAppError(c, appError)
			return
		}

		var validationErrs validator.ValidationErrors
		if stderrors.As(err, &validationErrs) {
			writeAppError(c, errors.ValidationFields("Invalid request payload", fieldErrors(validationErrs)))
			return
		}

		if last.Type == gin.ErrorTypeBind {
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Request binding error")
			response := types.ErrorResponse{
				Type:    string(errors.ValidationError),
				Message: "Failed to bind request",
				Code:    strconv.Itoa(http.StatusBadRequest),
			}
			if gin.IsDebugging() {
				response.Details = err.Error()
			}
			c.JSON(http.StatusBadRequest, response)
			return
		}

		logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unexpected server error")
		response := types.ErrorResponse{
			Type:    string(errors.ServerError),
			Message: "Internal Server Error",
			Code:    strconv.Itoa(http.StatusInternalServerError),
		}
		if gin.IsDebugging() {
			response.Details = err.Error()
		}
		c.JSON(http.StatusInternalServerError, response)
	}
}

func writeAppError(c *gin.Context, appError *errors.AppError) {
	statusCode := appError.GetHTTPStatus()
	logger.LogHTTPError(c, appError, statusCode, fmt.Sprintf("%s error", appError.Type))

	code := appError.Code
	if code == "" {
		code = strconv.Itoa(statusCode)
	}
	response := types.ErrorResponse{
		Type:    string(appError.Type),
		Message: appError.Message,
		Code:    code,
		Fields:  appError.Fields,
	}

	// Causes of server-side failures stay in the logs.
	if appError.Detail != "" && (gin.IsDebugging() ||
		appError.Type == errors.ValidationError ||
		appError.Type == errors.NotFoundError ||
		appError.Type == errors.ConflictError) {
		response.Details = appError.Detail
	}

	if appError.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(appError.RetryAfter))
	}

	c.JSON(statusCode, response)
}

// fieldErrors maps binding failures to field keys. Field names come from the
// json tags registered on the validator.
func fieldErrors(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		name := fe.Field()
		switch fe.Tag() {
		case "required", "notblank":
			fields[name] = fmt.Sprintf("%s is required", name)
		case "email":
			fields[name] = fmt.Sprintf("%s must be a valid email address", name)
		case "url":
			fields[name] = fmt.Sprintf("%s must be a valid URL", name)
		case "min":
			fields[name] = fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		case "max":
			fields[name] = fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		default:
			fields[name] = fmt.Sprintf("%s is invalid", name)
		}
	}
	return fields
}
