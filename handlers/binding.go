package handlers

import (
	stderrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding rules and makes validation
// errors report json field names. Call once before serving.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return stderrors.New("gin binding validator is not go-playground/validator")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return true
		}
		return strings.TrimSpace(field.String()) != ""
	})
}

// bindJSONOrError binds the JSON request body. On failure the error is pushed
// for the error middleware and false is returned; the caller should return.
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var validationErrs validator.ValidationErrors
		if stderrors.As(err, &validationErrs) {
			_ = c.Error(validationErrs)
			return false
		}
		_ = c.Error(apperrors.ValidationFailed("Invalid request payload", err.Error()))
		return false
	}
	return true
}

// getAdminIDFromContext returns the authenticated admin ID, or "" when the
// route is not behind AuthMiddleware.
func getAdminIDFromContext(c *gin.Context) string {
	return c.GetString(string(middleware.AdminIDKey))
}
