package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrTransport  = errors.New("transport failure")
	ErrNotFound   = errors.New("not found")
)

// ValidationError reports a request field outside its accepted set. It is
// raised before any network call is attempted.
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
	Reason  string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	case len(e.Allowed) > 0:
		return fmt.Sprintf("invalid %s %q: must be one of [%s]", e.Field, e.Value, strings.Join(e.Allowed, ", "))
	default:
		return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	}
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TransportError wraps network failures, timeouts and non-2xx responses from
// the remote service. Body holds a trimmed copy of the response payload when
// one was received.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString("fal: ")
	b.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Body != "" {
		b.WriteString(": ")
		b.WriteString(e.Body)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
