package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/spares/backend/internal/domain/reference"
	"github.com/spares/backend/internal/interfaces/http/dto"
)

var registerValidator sync.Once

// SetupValidator reports fields by their json (or form) name and registers
// the "slug" tag on gin's validator. Only the first call has an effect.
func SetupValidator() {
	registerValidator.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(wireName)
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return reference.ValidateSlug(fl.Field().String()) == nil
		})
	})
}

func wireName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return ""
}

// FormatValidationErrors turns a binding error into the VALIDATION_ERROR
// envelope. Errors that are not field validations (bad JSON, wrong types)
// get a generic message and no details.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return dto.InvalidRequest("Invalid request body", requestID, nil)
	}

	details := make([]dto.ValidationDetail, len(fieldErrs))
	for i, fe := range fieldErrs {
		details[i] = dto.ValidationDetail{Field: fe.Field(), Message: getValidationMessage(fe)}
	}
	return dto.InvalidRequest("Request validation failed", requestID, details)
}

// HandleValidationError writes FormatValidationErrors as a 400
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// comparisonMessages prefix the tag parameter
var comparisonMessages = map[string]string{
	"oneof": "Must be one of: ",
	"gt":    "Must be greater than ",
	"gte":   "Must be greater than or equal to ",
	"lt":    "Must be less than ",
	"lte":   "Must be less than or equal to ",
	"ne":    "Must not be ",
}

func getValidationMessage(fe validator.FieldError) string {
	if prefix, ok := comparisonMessages[fe.Tag()]; ok {
		return prefix + fe.Param()
	}

	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "slug":
		return "May only contain letters, numbers, hyphens and underscores"
	case "uuid":
		return "Invalid UUID format"
	case "min", "max":
		bound := "at least "
		if fe.Tag() == "max" {
			bound = "at most "
		}
		if fe.Kind() == reflect.String {
			return "Must be " + bound + fe.Param() + " characters"
		}
		return "Must be " + bound + fe.Param()
	}
	return "Invalid value"
}
