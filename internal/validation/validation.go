// Package validation runs go-playground/validator rules and reports the failures as
// field name to error keys, the shape the forms render ("required", "option", ...).
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

// keys maps validator tags to the error keys the client knows. Unlisted tags are
// reported as is.
var keys = map[string]string{
	"required": "required",
	"notblank": "required",
	"oneof":    "option",
	"email":    "email",
	"min":      "minlength",
	"max":      "maxlength",
}

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct checks the validate tags of s. With fields given only those struct fields
// are checked. Failures are keyed by the json name of the field.
func Struct(s any, fields ...string) map[string][]string {
	var err error
	if len(fields) > 0 {
		err = validate.StructPartial(s, fields...)
	} else {
		err = validate.Struct(s)
	}
	return collect(err, "")
}

// Map checks each rule against the value stored under its name. A missing value is
// checked as nil.
func Map(data map[string]any, rules map[string]string) map[string][]string {
	generic := make(map[string]any, len(rules))
	for name, rule := range rules {
		generic[name] = rule
	}
	failed := make(map[string][]string)
	for name, err := range validate.ValidateMap(data, generic) {
		if err, ok := err.(error); ok {
			for field, fieldKeys := range collect(err, name) {
				failed[field] = append(failed[field], fieldKeys...)
			}
		}
	}
	return failed
}

func collect(err error, name string) map[string][]string {
	failed := make(map[string][]string)
	if err == nil {
		return failed
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		failed[name] = append(failed[name], err.Error())
		return failed
	}
	for _, fe := range errs {
		field := name
		if field == "" {
			field = fe.Field()
		}
		key, ok := keys[fe.Tag()]
		if !ok {
			key = fe.Tag()
		}
		failed[field] = append(failed[field], key)
	}
	return failed
}
