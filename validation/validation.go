package validation

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Violations maps a form field to an i18n message code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func Email(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.Add(field, "invalid_email")
	}
}

func MinLength(field, value string, n int, v Violations) {
	if value != "" && utf8.RuneCountInString(value) < n {
		v.Add(field, "too_short")
	}
}

// Match flags field when value differs from other.
func Match(field, value, other string, v Violations) {
	if value != other {
		v.Add(field, "mismatch")
	}
}
