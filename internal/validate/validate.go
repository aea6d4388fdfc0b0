package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Struct validation producing field-keyed, human-readable messages. Callers
// that render per-field errors rely on the map shape, keyed by the JSON field
// name of the offending field.

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	// Report errors under the json tag name, not the Go field name.
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return val
}

// FieldErrors maps offending field names to messages.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct validates s and returns FieldErrors on constraint violations.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = message(fe)
		}
	}
	return fields
}

// AsFieldErrors extracts the field map from a validation error, if any.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	ok := errors.As(err, &fe)
	return fe, ok
}

func message(fe validator.FieldError) string {
	label := labelFor(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is not allowed to be empty.", label)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Please provide at least %s %s.", fe.Param(), strings.ToLower(label))
		}
		return fmt.Sprintf("%s must be at least %s characters long.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be less than or equal to %s characters long.", label, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email.", label)
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}

func labelFor(field string) string {
	if field == "" {
		return "Field"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
