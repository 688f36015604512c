package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrNotFoundOrNotOpen is returned when a conditional transition matched no row:
// the order is missing, owned by someone else, or already left the open state.
var ErrNotFoundOrNotOpen = errors.New("not found or not open")

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validationError converts validator output into a single ValidationError naming
// the first failing field.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid(err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return invalid(fe.Field() + " is required")
	case "oneof":
		return invalid(fe.Field() + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return invalid(fe.Field() + " is invalid")
	}
}

var errRepoUnavailable = errors.New("repo unavailable")

var errUpstreamUnavailable = errors.New("upstream unavailable")

var ErrUnauthenticated = errors.New("authentication required")
