package forms

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors maps a json field name to the message shown next to it
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + v[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// messages holds the text for a failed tag. A "field.tag" entry overrides "tag".
type messages map[string]string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return isDigits(fl.Field().String())
	})
	return v
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// check runs struct validation and translates failures into ValidationErrors.
// Only the first failure per field is kept.
func check(form interface{}, msgs messages) ValidationErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrors{"form": err.Error()}
	}

	out := ValidationErrors{}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = msgs.lookup(field, fe.Tag())
	}
	return out
}

func (m messages) lookup(field, tag string) string {
	if msg, ok := m[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := m[field]; ok {
		return msg
	}
	if msg, ok := m[tag]; ok {
		return msg
	}
	return "Invalid value"
}

// merge returns nil when there is nothing to report so callers can return it as an error
func merge(sets ...ValidationErrors) error {
	out := ValidationErrors{}
	for _, s := range sets {
		for k, v := range s {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func hasClass(s string, class func(rune) bool) bool {
	for _, r := range s {
		if class(r) {
			return true
		}
	}
	return false
}

// passwordStrength reports the first missing character class
func passwordStrength(p string) string {
	switch {
	case !hasClass(p, unicode.IsUpper):
		return "Password must contain at least one uppercase letter"
	case !hasClass(p, unicode.IsLower):
		return "Password must contain at least one lowercase letter"
	case !hasClass(p, unicode.IsDigit):
		return "Password must contain at least one number"
	}
	return ""
}
