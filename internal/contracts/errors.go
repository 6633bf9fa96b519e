package contracts

import (
	"errors"
	"fmt"
)

// Error taxonomy for provider failures.
// Use errors.Is against these sentinels; *UpstreamError unwraps to them.
var (
	ErrTransientUpstream = errors.New("transient upstream error")
	ErrMalformedResponse = errors.New("malformed upstream response")
	ErrClientRequest     = errors.New("upstream rejected request")
	ErrConfiguration     = errors.New("invalid provider configuration")
)

// UpstreamError describes a failed upstream call
type UpstreamError struct {
	Kind       error  // one of the sentinels above
	StatusCode int    // 0 when no response was received
	URL        string // request URL with credentials stripped
	Err        error  // underlying cause, may be nil
}

func (e *UpstreamError) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.URL != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.URL)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As
func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsNotFoundStatus reports whether err is a client error with HTTP 404
func IsNotFoundStatus(err error) bool {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return errors.Is(upstream.Kind, ErrClientRequest) && upstream.StatusCode == 404
	}
	return false
}
