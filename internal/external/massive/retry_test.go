package massive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   OutcomeKind
	}{
		{200, OutcomeOK},
		{204, OutcomeOK},
		{301, OutcomeClientError},
		{400, OutcomeClientError},
		{403, OutcomeClientError},
		{404, OutcomeClientError},
		{429, OutcomeRateLimited},
		{500, OutcomeServerError},
		{502, OutcomeServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyStatus(tt.status), "status %d", tt.status)
	}
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, ParseRetryAfter(""))
	assert.Equal(t, 2*time.Second, ParseRetryAfter("2"))
	assert.Equal(t, 1500*time.Millisecond, ParseRetryAfter(" 1.5 "))
	assert.Equal(t, 500*time.Millisecond, ParseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Equal(t, 500*time.Millisecond, ParseRetryAfter("-1"))
}

func TestRetryPolicy_Decide(t *testing.T) {
	p := DefaultRetryPolicy(250 * time.Millisecond)

	tests := []struct {
		name    string
		attempt int
		outcome Outcome
		want    Decision
	}{
		{"ok accepts", 1, Outcome{Kind: OutcomeOK}, Decision{Action: ActionAccept}},
		{"network linear 1", 1, Outcome{Kind: OutcomeNetwork}, Decision{Action: ActionRetry, Delay: 200 * time.Millisecond}},
		{"network linear 2", 2, Outcome{Kind: OutcomeNetwork}, Decision{Action: ActionRetry, Delay: 400 * time.Millisecond}},
		{"server linear 2", 2, Outcome{Kind: OutcomeServerError}, Decision{Action: ActionRetry, Delay: 400 * time.Millisecond}},
		{"429 uses header", 1, Outcome{Kind: OutcomeRateLimited, RetryAfter: 2 * time.Second}, Decision{Action: ActionRetry, Delay: 2 * time.Second}},
		{"429 floors at interval", 2, Outcome{Kind: OutcomeRateLimited, RetryAfter: 100 * time.Millisecond}, Decision{Action: ActionRetry, Delay: 250 * time.Millisecond}},
		{"client fails", 1, Outcome{Kind: OutcomeClientError}, Decision{Action: ActionFail}},
		{"malformed fails", 1, Outcome{Kind: OutcomeMalformed}, Decision{Action: ActionFail}},
		{"exhausted server", 3, Outcome{Kind: OutcomeServerError}, Decision{Action: ActionFail}},
		{"exhausted 429", 3, Outcome{Kind: OutcomeRateLimited, RetryAfter: time.Second}, Decision{Action: ActionFail}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Decide(tt.attempt, tt.outcome))
		})
	}
}

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "server_error", OutcomeServerError.String())
	assert.True(t, OutcomeNetwork.Transient())
	assert.False(t, OutcomeMalformed.Transient())
}
