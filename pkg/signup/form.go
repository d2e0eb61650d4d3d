package signup

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/neontemple/temple-site/pkg/coterie"
)

// Form is the membership application as submitted by a visitor.
type Form struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Message   string `json:"message,omitempty" validate:"omitempty,max=2000"`
}

func FormFromValues(values url.Values) Form {
	return Form{
		FirstName: values.Get("first_name"),
		LastName:  values.Get("last_name"),
		Email:     values.Get("email"),
		Phone:     values.Get("phone"),
		Message:   values.Get("message"),
	}.Trimmed()
}

func (f Form) Trimmed() Form {
	return Form{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
		Phone:     strings.TrimSpace(f.Phone),
		Message:   strings.TrimSpace(f.Message),
	}
}

func (f Form) Request() coterie.SignupRequest {
	return coterie.SignupRequest{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Phone:     f.Phone,
		Message:   f.Message,
	}
}

// FieldErrors maps form field names to a message for the visitor.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range fieldOrder {
		if msg, ok := e[field]; ok {
			parts = append(parts, field+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

var fieldOrder = []string{"first_name", "last_name", "email", "phone", "message"}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate returns FieldErrors when the form is incomplete or malformed.
func (v *Validator) Validate(f Form) error {
	err := v.validate.Struct(f)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate signup form: %w", err)
	}
	fields := make(FieldErrors, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	default:
		return "Invalid value"
	}
}
