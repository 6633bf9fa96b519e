package massive

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// OutcomeKind classifies a single upstream attempt
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeNetwork
	OutcomeRateLimited
	OutcomeServerError
	OutcomeClientError
	OutcomeMalformed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeNetwork:
		return "network"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeServerError:
		return "server_error"
	case OutcomeClientError:
		return "client_error"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Transient reports whether the outcome is worth another attempt
func (k OutcomeKind) Transient() bool {
	return k == OutcomeNetwork || k == OutcomeRateLimited || k == OutcomeServerError
}

// Outcome is what one attempt produced
type Outcome struct {
	Kind       OutcomeKind
	RetryAfter time.Duration // only meaningful for OutcomeRateLimited
}

// ClassifyStatus maps an HTTP status to an outcome kind
func ClassifyStatus(status int) OutcomeKind {
	switch {
	case status == http.StatusTooManyRequests:
		return OutcomeRateLimited
	case status >= 500:
		return OutcomeServerError
	case status >= 200 && status < 300:
		return OutcomeOK
	default:
		return OutcomeClientError
	}
}

// defaultRetryAfter applies when a 429 carries no usable Retry-After header
const defaultRetryAfter = 500 * time.Millisecond

// ParseRetryAfter reads a Retry-After header given in (possibly fractional) seconds
func ParseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return defaultRetryAfter
	}

	secs, err := strconv.ParseFloat(header, 64)
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}

	return time.Duration(secs * float64(time.Second))
}

// Action is the decision taken after an attempt
type Action int

const (
	ActionAccept Action = iota
	ActionRetry
	ActionFail
)

// Decision tells the fetch loop what to do next
type Decision struct {
	Action Action
	Delay  time.Duration
}

// RetryPolicy is the pure backoff policy for one logical fetch
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration // multiplied by the attempt number
	MinInterval time.Duration // floor for rate-limited waits
}

// DefaultRetryPolicy returns the policy used by the adapter
func DefaultRetryPolicy(minInterval time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     200 * time.Millisecond,
		MinInterval: minInterval,
	}
}

// Decide returns the action for the given 1-based attempt number.
// No delay is scheduled once the attempt budget is spent.
func (p RetryPolicy) Decide(attempt int, o Outcome) Decision {
	if o.Kind == OutcomeOK {
		return Decision{Action: ActionAccept}
	}

	if !o.Kind.Transient() || attempt >= p.MaxAttempts {
		return Decision{Action: ActionFail}
	}

	if o.Kind == OutcomeRateLimited {
		delay := o.RetryAfter
		if delay < p.MinInterval {
			delay = p.MinInterval
		}
		return Decision{Action: ActionRetry, Delay: delay}
	}

	return Decision{Action: ActionRetry, Delay: p.Backoff * time.Duration(attempt)}
}
