package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/property-rental/internal/model"
	"github.com/iliyamo/property-rental/internal/response"
)

// MsgValidationFailed heads every 400 envelope produced by request checks.
const MsgValidationFailed = "Validation failed"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
)

// messages maps a failed rule to the text clients see. Keys are
// "<Struct>.<Field>.<tag>" for struct-specific wording and "<Field>.<tag>"
// otherwise.
var messages = map[string]string{
	"Email.notblank":     "Email is required",
	"Email.emailaddr":    "Invalid email format",
	"Password.required":  "Password is required",
	"Password.min":       "Password must be at least 8 characters long",
	"FirstName.notblank": "First name is required",
	"LastName.notblank":  "Last name is required",
	"Role.required":      "Role is required",
	"Role.oneof":         "Invalid role. Must be admin, owner, or tenant",
	"PhoneNumber.phone":  "Invalid phone number format",

	"ProfileUpdate.FirstName.notblank": "First name cannot be empty",
	"ProfileUpdate.LastName.notblank":  "Last name cannot be empty",
}

// ValidationError carries the client-facing message of every failed rule,
// in field order.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string { return strings.Join(e.Errors, "; ") }

// RequestValidator is installed as echo's Validator. Rules live in the
// validate tags of the request types.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator registers the custom rules used by request types.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "emailaddr", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		p := strings.TrimSpace(fl.Field().String())
		return p == "" || phonePattern.MatchString(p)
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		if sl.Current().Interface().(model.ProfileUpdate).Empty() {
			sl.ReportError(nil, "ProfileUpdate", "ProfileUpdate", "notempty", "")
		}
	}, model.ProfileUpdate{})
	return &RequestValidator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Validate implements echo.Validator. Rule failures come back as a
// *ValidationError; anything else means i is not a validatable struct.
func (rv *RequestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Errors: make([]string, 0, len(verrs))}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, messageFor(fe))
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	if fe.Tag() == "notempty" {
		return "No fields to update"
	}
	if msg, ok := messages[fe.StructNamespace()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := messages[fe.StructField()+"."+fe.Tag()]; ok {
		return msg
	}
	return fe.Field() + " is invalid"
}

// validate runs c.Validate and writes the 400 envelope on failure. It
// reports whether the handler may continue.
func validate(c echo.Context, req any) (bool, error) {
	err := c.Validate(req)
	if err == nil {
		return true, nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return false, response.Error(c, http.StatusBadRequest, MsgValidationFailed, ve.Errors...)
	}
	log.Ctx(c.Request().Context()).Error().Err(err).Msg("request validation could not run")
	return false, response.ServerError(c, "")
}
