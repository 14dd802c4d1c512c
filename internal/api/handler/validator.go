package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/99minutos/secure-blog/internal/core/domain"
)

// Form error messages shown next to the offending field.
const (
	msgInvalidUsername = "This is not a valid username."
	msgUserExists      = "This user already exists."
	msgInvalidPassword = "This is not a valid password."
	msgPasswordMatch   = "The passwords do not match."
	msgInvalidEmail    = "This is not a valid email address."
)

// FormErrors maps a form field name to the message rendered beside it.
type FormErrors map[string]string

func (fe FormErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// It knows the blog's username, password and simpleemail rules and reports
// fields by their form name.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return domain.ValidUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return domain.ValidPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
		return domain.ValidEmail(fl.Field().String())
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Field failures come back
// as FormErrors.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			out := make(FormErrors, len(ve))
			for _, fe := range ve {
				out[fe.Field()] = fieldError(fe)
			}
			return out
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into the message shown on the form.
func fieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "username":
		return msgInvalidUsername
	case "password":
		return msgInvalidPassword
	case "eqfield":
		return msgPasswordMatch
	case "simpleemail":
		return msgInvalidEmail
	default:
		return "This field is not valid."
	}
}
