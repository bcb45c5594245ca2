package flora

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrAuthExpired signals that the stored credentials were rejected and
	// could not be refreshed. The caller must clear the session tokens and
	// send the operator back to the login screen.
	ErrAuthExpired = errors.New("flora: authentication expired")
	// ErrNotFound signals a 404 from the remote API.
	ErrNotFound = errors.New("flora: not found")
)

// APIError is a non-2xx response that is neither a 401 nor a field-level
// validation failure.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("flora: api responded %d", e.Status)
	}
	return fmt.Sprintf("flora: api responded %d: %s", e.Status, e.Detail)
}

// ValidationError carries DRF field errors from a 400 response, keyed by
// the API's field names.
type ValidationError struct {
	Fields map[string][]string
	Detail string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Detail != "" {
			return "flora: validation failed: " + e.Detail
		}
		return "flora: validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], "; "))
	}
	return "flora: validation failed: " + strings.Join(parts, ", ")
}

// FieldErrors flattens the per-field messages for form re-rendering.
func (e *ValidationError) FieldErrors() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for name, msgs := range e.Fields {
		out[name] = strings.Join(msgs, " ")
	}
	if e.Detail != "" {
		out["general"] = e.Detail
	}
	return out
}
