package usecase

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cablecom/leads-api/internal/entity"
)

// ValidationError names the offending input field. Message is shown to the
// caller as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

func missingField(field string) ValidationError {
	return ValidationError{Field: field, Message: "Missing required field: " + field}
}

// NewValidator returns a validator that reports fields by their JSON name and
// knows the service catalog.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("service_slug", func(fl validator.FieldLevel) bool {
		return entity.IsKnownService(fl.Field().String())
	})
	return v
}

// firstValidationError converts the first failing field into a ValidationError.
// Fields are checked in struct order.
func firstValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return missingField(fe.Field())
	case "service_slug":
		return ValidationError{Field: fe.Field(), Message: "Unknown service: " + fe.Value().(string)}
	}
	return ValidationError{Field: fe.Field(), Message: "Invalid value for field: " + fe.Field()}
}

func statusListMessage() string {
	names := make([]string, len(entity.LeadStatuses))
	for i, s := range entity.LeadStatuses {
		names[i] = string(s)
	}
	return "Invalid status value. Must be one of: " + strings.Join(names, ", ")
}
