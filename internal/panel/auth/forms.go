package auth

import (
	"errors"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps form field names to message keys. The empty key holds a
// form-level message.
type FieldErrors map[string]string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
	})
	return v
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Remember bool   `form:"remember"`
}

// RegisterForm is the seller registration form.
type RegisterForm struct {
	Name            string `form:"name" validate:"min=2"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"min=2"`
	ConfirmPassword string `form:"confirm_password" validate:"min=2"`
}

var loginMessages = map[string]string{
	"email":    "validation.emailInvalid",
	"password": "validation.passwordRequired",
}

var registerMessages = map[string]string{
	"name":             "validation.nameRequired",
	"email":            "validation.emailInvalid",
	"password":         "validation.passwordRequired",
	"confirm_password": "validation.confirmPasswordRequired",
}

// LoginFormFromValues reads a submitted login form.
func LoginFormFromValues(values url.Values) LoginForm {
	remember := strings.TrimSpace(values.Get("remember"))
	return LoginForm{
		Email:    strings.TrimSpace(values.Get("email")),
		Password: values.Get("password"),
		Remember: remember == "on" || remember == "true" || remember == "1",
	}
}

// Validate checks the login form.
func (f LoginForm) Validate() FieldErrors {
	return collect(validate.Struct(f), loginMessages)
}

// RegisterFormFromValues reads a submitted registration form.
func RegisterFormFromValues(values url.Values) RegisterForm {
	return RegisterForm{
		Name:            strings.TrimSpace(values.Get("name")),
		Email:           strings.TrimSpace(values.Get("email")),
		Password:        values.Get("password"),
		ConfirmPassword: values.Get("confirm_password"),
	}
}

// Validate checks the registration form. A password mismatch is reported on
// both password fields.
func (f RegisterForm) Validate() FieldErrors {
	if errs := collect(validate.Struct(f), registerMessages); errs != nil {
		return errs
	}
	if f.Password != f.ConfirmPassword {
		return FieldErrors{
			"password":         "validation.passwordMismatch",
			"confirm_password": "validation.passwordMismatch",
		}
	}
	return nil
}

// Registration converts a valid form to a Registration.
func (f RegisterForm) Registration() Registration {
	return Registration{Name: f.Name, Email: f.Email, Password: f.Password}
}

func collect(err error, messages map[string]string) FieldErrors {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": "errors.generic"}
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		if _, exists := out[fe.Field()]; !exists {
			out[fe.Field()] = messages[fe.Field()]
		}
	}
	return out
}
