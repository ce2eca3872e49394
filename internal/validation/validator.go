// Package validation collects field constraint violations so a request can
// report every problem at once instead of failing on the first one.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/brenowss/foodiary/internal/apperror"
)

// DateLayout is the ISO calendar date format accepted by the API.
const DateLayout = "2006-01-02"

// Validator accumulates issues. The zero value is ready to use.
type Validator struct {
	issues []apperror.Issue
}

// Add records a violation for field.
func (v *Validator) Add(field, message string) {
	v.issues = append(v.issues, apperror.Issue{Field: field, Message: message})
}

// Check records message for field when ok is false.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

// Required fails when s is blank.
func (v *Validator) Required(field, s string) bool {
	if strings.TrimSpace(s) == "" {
		v.Add(field, field+" is required")
		return false
	}
	return true
}

// MinLen counts runes, not bytes.
func (v *Validator) MinLen(field, s string, n int) {
	v.Check(len([]rune(s)) >= n, field, fmt.Sprintf("%s must be at least %d characters", field, n))
}

// Between checks min <= n <= max.
func (v *Validator) Between(field string, n, min, max int) {
	v.Check(n >= min && n <= max, field, fmt.Sprintf("%s must be between %d and %d", field, min, max))
}

// OneOf checks s is one of the allowed values.
func (v *Validator) OneOf(field, s string, allowed ...string) {
	for _, a := range allowed {
		if s == a {
			return
		}
	}
	v.Add(field, fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")))
}

// Email checks s is a bare address ("a@b.c", no display name).
func (v *Validator) Email(field, s string) {
	addr, err := mail.ParseAddress(s)
	v.Check(err == nil && addr.Address == s, field, field+" must be a valid email address")
}

// Date parses s as an ISO calendar date in UTC, recording an issue on failure.
func (v *Validator) Date(field, s string) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		v.Add(field, field+" must be a valid date (YYYY-MM-DD)")
		return time.Time{}, false
	}
	return t, true
}

// Valid reports whether no issue was recorded.
func (v *Validator) Valid() bool {
	return len(v.issues) == 0
}

// Err returns nil when valid, otherwise one validation AppError carrying every issue.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return apperror.Invalid(v.issues...)
}
