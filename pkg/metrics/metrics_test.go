package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusClass(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{101, "1xx"},
		{200, "2xx"},
		{304, "3xx"},
		{404, "4xx"},
		{503, "5xx"},
		{0, "5xx"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusClass(tt.code))
	}
}

func TestRecordUpstreamAttempt(t *testing.T) {
	before := testutil.ToFloat64(upstreamAttempts.WithLabelValues("snapshot", OutcomeServer))

	RecordUpstreamAttempt("snapshot", OutcomeServer, 30*time.Millisecond)
	RecordUpstreamAttempt("snapshot", OutcomeServer, 30*time.Millisecond)

	after := testutil.ToFloat64(upstreamAttempts.WithLabelValues("snapshot", OutcomeServer))
	assert.Equal(t, before+2, after)
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(cacheLookups.WithLabelValues("quote", "hit"))
	misses := testutil.ToFloat64(cacheLookups.WithLabelValues("quote", "miss"))

	RecordCacheLookup("quote", true)
	RecordCacheLookup("quote", false)
	RecordCacheLookup("quote", false)

	assert.Equal(t, hits+1, testutil.ToFloat64(cacheLookups.WithLabelValues("quote", "hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(cacheLookups.WithLabelValues("quote", "miss")))
}

func TestHandler(t *testing.T) {
	RecordJobRun("universe_warm", true)
	RecordHTTPRequest("/v1/rankings", http.MethodGet, 200, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "aktietipset_scheduler_job_runs_total"))
	assert.True(t, strings.Contains(body, "aktietipset_api_requests_total"))
}
