package massive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/pkg/metrics"
)

// maxBodyBytes caps how much of a response body is read
const maxBodyBytes = 16 << 20

// fetchJSON performs one logical fetch: paced attempts with retry/backoff,
// decoding a JSON object body into out.
func (c *Client) fetchJSON(ctx context.Context, endpoint, pathOrURL string, params url.Values, out interface{}) error {
	target, err := c.buildURL(pathOrURL, params)
	if err != nil {
		return err
	}

	var lastTransient error
	for attempt := 1; ; attempt++ {
		outcome, err := c.attempt(ctx, endpoint, target, out)
		if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
			return fmt.Errorf("massive %s: %w", endpoint, ctxErr)
		}
		if outcome.Kind.Transient() {
			lastTransient = err
		}

		decision := c.policy.Decide(attempt, outcome)
		switch decision.Action {
		case ActionAccept:
			return nil

		case ActionFail:
			if outcome.Kind.Transient() {
				c.logger.WithFields(map[string]interface{}{
					"endpoint": endpoint,
					"attempts": attempt,
					"outcome":  outcome.Kind.String(),
				}).Warn("Retries exhausted")
				return lastTransient
			}
			return err

		case ActionRetry:
			c.logger.WithFields(map[string]interface{}{
				"endpoint": endpoint,
				"attempt":  attempt,
				"outcome":  outcome.Kind.String(),
				"delay":    decision.Delay,
			}).Warn("Retrying upstream request")

			if err := c.sleep(ctx, decision.Delay); err != nil {
				return fmt.Errorf("massive %s: %w", endpoint, err)
			}
		}
	}
}

// attempt performs a single request and classifies it
func (c *Client) attempt(ctx context.Context, endpoint, target string, out interface{}) (Outcome, error) {
	start := time.Now()
	redacted := redact(target)

	resp, err := c.http.Get(ctx, target)
	if err != nil {
		metrics.RecordUpstreamAttempt(endpoint, metrics.OutcomeNetwork, time.Since(start))
		return Outcome{Kind: OutcomeNetwork}, &contracts.UpstreamError{
			Kind: contracts.ErrTransientUpstream,
			URL:  redacted,
			Err:  err,
		}
	}
	defer resp.Body.Close()

	kind := ClassifyStatus(resp.StatusCode)
	if kind != OutcomeOK {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		metrics.RecordUpstreamAttempt(endpoint, kind.String(), time.Since(start))

		upstreamErr := &contracts.UpstreamError{
			Kind:       contracts.ErrTransientUpstream,
			StatusCode: resp.StatusCode,
			URL:        redacted,
		}
		outcome := Outcome{Kind: kind}
		switch kind {
		case OutcomeRateLimited:
			outcome.RetryAfter = ParseRetryAfter(resp.Header.Get("Retry-After"))
		case OutcomeClientError:
			upstreamErr.Kind = contracts.ErrClientRequest
		}
		return outcome, upstreamErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.RecordUpstreamAttempt(endpoint, metrics.OutcomeNetwork, time.Since(start))
		return Outcome{Kind: OutcomeNetwork}, &contracts.UpstreamError{
			Kind:       contracts.ErrTransientUpstream,
			StatusCode: resp.StatusCode,
			URL:        redacted,
			Err:        fmt.Errorf("read body: %w", err),
		}
	}

	if err := decodeObject(body, out); err != nil {
		metrics.RecordUpstreamAttempt(endpoint, metrics.OutcomeMalformed, time.Since(start))
		return Outcome{Kind: OutcomeMalformed}, &contracts.UpstreamError{
			Kind:       contracts.ErrMalformedResponse,
			StatusCode: resp.StatusCode,
			URL:        redacted,
			Err:        err,
		}
	}

	metrics.RecordUpstreamAttempt(endpoint, metrics.OutcomeOK, time.Since(start))
	return Outcome{Kind: OutcomeOK}, nil
}

var errNotObject = errors.New("expected a JSON object")

// decodeObject rejects anything that is not a JSON object before
// decoding it into out
func decodeObject(body []byte, out interface{}) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return errNotObject
		}
		return fmt.Errorf("invalid JSON payload: %w", err)
	}
	if probe == nil {
		return errNotObject
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unexpected payload shape: %w", err)
	}
	return nil
}

// buildURL resolves a relative path against the base URL, or accepts an
// absolute cursor URL as-is, then merges params. The API key is only
// added when the URL does not already carry one.
func (c *Client) buildURL(pathOrURL string, params url.Values) (string, error) {
	raw := pathOrURL
	if !strings.HasPrefix(pathOrURL, "http://") && !strings.HasPrefix(pathOrURL, "https://") {
		raw = c.baseURL + "/" + strings.TrimLeft(pathOrURL, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("massive: invalid url %q: %w", redactString(raw), err)
	}

	query := u.Query()
	for key, values := range params {
		if len(values) > 0 {
			query.Set(key, values[0])
		}
	}
	if query.Get("apiKey") == "" {
		query.Set("apiKey", c.apiKey)
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}

// redact strips the query string from a URL for errors and logs
func redact(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return redactString(target)
	}
	u.RawQuery = ""
	return u.String()
}

func redactString(s string) string {
	if i := strings.IndexByte(s, '?'); i >= 0 {
		return s[:i]
	}
	return s
}
