package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldIssue describes one failed validation rule on a request field.
type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

var registerTagNames sync.Once

// BindJSON decodes and validates the JSON request body into dst, translating failures into
// AppErrors that the responder understands.
func BindJSON(c *gin.Context, dst any) error {
	registerTagNames.Do(useJSONFieldNames)
	if err := c.ShouldBindJSON(dst); err != nil {
		return ToBindingError(err)
	}
	return nil
}

// ToBindingError maps a binding failure to a ValidationError, 413 or 400 AppError.
func ToBindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]any, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldIssue{Field: fieldPath(fe), Issue: issueOf(fe)})
		}
		return NewValidationError(details, WithCause(err))
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return NewAppError("Request body too large", http.StatusRequestEntityTooLarge, WithCause(err))
	}
	return NewAppError("Invalid JSON payload", http.StatusBadRequest, WithCause(err))
}

// useJSONFieldNames makes validation errors report json names instead of Go field names.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
}

// fieldPath drops the root struct name from the namespace (OrderRequest.billing.email -> billing.email).
func fieldPath(fe validator.FieldError) string {
	if _, path, ok := strings.Cut(fe.Namespace(), "."); ok {
		return path
	}
	return fe.Field()
}

func issueOf(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	default:
		return "failed on the '" + fe.Tag() + "' rule"
	}
}
