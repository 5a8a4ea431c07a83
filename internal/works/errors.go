package works

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("you must log in to do that")
	ErrForbidden       = errors.New("you are not authorized to perform this action")
	ErrNotFound        = errors.New("work not found")
)

// ValidationError carries per-field messages, keyed by the request field name.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// FieldErrors extracts the field map from err, or nil when err is not a
// validation failure.
func FieldErrors(err error) map[string][]string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
