// Package validator decodes and shape-checks JSON request bodies. It is the
// lightweight pre-check in front of the domain validators: struct tags catch
// missing fields and obviously bad values before any business logic runs,
// and the authoritative field validation still happens in the domain layer.
package validator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domain "github.com/ghuser/catalog/services/catalog/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]

		// ignore unexported or explicitly ignored
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Validate runs struct-level validation using go-playground/validator tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// DecodeValid decodes the JSON request body into T and validates it against
// its struct tags. Failures come back as a domain ValidationError so they
// flow through the centralized error formatter like every other failure.
func DecodeValid[T any](r *http.Request) (*T, error) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "body", Message: "Invalid JSON"},
		}}
	}
	if err := Validate(&req); err != nil {
		return nil, toValidationError(err)
	}
	return &req, nil
}

// toValidationError converts validator.ValidationErrors into the domain's
// aggregated ValidationError, one entry per violated field.
func toValidationError(err error) error {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "body", Message: err.Error()},
		}}
	}
	fields := make([]domain.FieldError, 0, len(ve))
	for _, e := range ve {
		fields = append(fields, domain.FieldError{
			Field:   e.Field(),
			Message: formatFieldError(e),
			Value:   e.Value(),
		})
	}
	return &domain.ValidationError{Fields: fields}
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "uuid", "uuid4":
		return "Must be a valid UUID"
	case "min":
		return fmt.Sprintf("Minimum length is %s", e.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", e.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", e.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", e.Param())
	case "numeric":
		return "Must be a numeric value"
	default:
		return fmt.Sprintf("Validation failed on '%s'", e.Tag())
	}
}
