// Package validation holds the small validator functions used for pre-submission
// checks on login and registration forms.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Validator is a function that validates a string value and returns an error message if invalid.
type Validator func(v string) string

// Required fails with msg when the trimmed value is empty.
func Required(msg string) Validator {
	return func(v string) string {
		if strings.TrimSpace(v) == "" {
			return msg
		}
		return ""
	}
}

// Present fails with msg only when the value is empty. Whitespace counts as content,
// which is what password fields need.
func Present(msg string) Validator {
	return func(v string) string {
		if v == "" {
			return msg
		}
		return ""
	}
}

// MinLength fails with msg when the value has fewer than n characters.
// Uses rune count for proper Unicode support.
func MinLength(n int, msg string) Validator {
	return func(v string) string {
		if utf8.RuneCountInString(v) < n {
			return msg
		}
		return ""
	}
}

// Equals fails with msg when the value differs from want.
func Equals(want, msg string) Validator {
	return func(v string) string {
		if v != want {
			return msg
		}
		return ""
	}
}

// IntRange validates that a field is a valid integer between minVal and maxVal.
func IntRange(minVal, maxVal int, msg string) Validator {
	return func(v string) string {
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || i < minVal || i > maxVal {
			return msg
		}
		return ""
	}
}

// OneOf validates that a field exactly matches one of the provided options.
func OneOf(options []string, msg string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		for _, opt := range options {
			if v == opt {
				return ""
			}
		}
		return msg
	}
}

// Pattern validates that a field matches the provided regular expression.
// Empty values pass; pair with Required when the field is mandatory.
func Pattern(re *regexp.Regexp, msg string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		if !re.MatchString(v) {
			return msg
		}
		return ""
	}
}

// FieldValidator provides a fluent API for validating multiple fields.
// Fields are remembered in the order they were validated so callers can report
// the first failure the way a multi-step form would.
type FieldValidator struct {
	errors map[string]string
	order  []string
}

// New creates a new FieldValidator instance.
func New() *FieldValidator {
	return &FieldValidator{errors: make(map[string]string)}
}

// Validate validates a field with one or more validators.
// It stops at the first error for each field.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	if _, seen := fv.errors[field]; seen {
		return fv
	}
	for _, v := range validators {
		if err := v(value); err != "" {
			fv.errors[field] = err
			fv.order = append(fv.order, field)
			break // Stop at first error per field
		}
	}
	return fv
}

// Errors returns the accumulated validation errors.
func (fv *FieldValidator) Errors() map[string]string {
	return fv.errors
}

// First returns the earliest failing field and its message.
func (fv *FieldValidator) First() (string, string, bool) {
	if len(fv.order) == 0 {
		return "", "", false
	}
	field := fv.order[0]
	return field, fv.errors[field], true
}
