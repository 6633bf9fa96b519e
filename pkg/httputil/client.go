package httputil

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/wonny/aktietipset/backend/pkg/logger"
)

// Pacer gates outbound dispatches
type Pacer interface {
	Wait(ctx context.Context) error
}

// Client is an HTTP client wrapper with pacing and logging
// ⭐ SSOT: all outbound HTTP requests go through this client
// Retrying is the caller's decision; Get performs exactly one attempt.
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
	pacer      Pacer
}

// NewWithTimeout creates a client with the given per-request timeout
// ⭐ SSOT: http.Client instances are created here only
func NewWithTimeout(log *logger.Logger, timeout time.Duration) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{
			Transport: tr,
			Timeout:   timeout,
		},
		logger: log,
	}
}

// WithPacer sets the pacer consulted before every dispatch
func (c *Client) WithPacer(p Pacer) *Client {
	c.pacer = p
	return c
}

// Get performs a single paced GET request
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

// CloseIdleConnections releases pooled connections
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// do executes the request with pacing and logging
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.pacer != nil {
		if err := c.pacer.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("pacer wait failed: %w", err)
		}
	}

	startTime := time.Now()
	url := redactURL(req)
	method := req.Method

	c.logger.WithFields(map[string]interface{}{
		"method": method,
		"url":    url,
	}).Debug("HTTP request started")

	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"method":   method,
			"url":      url,
			"duration": duration,
			"error":    err.Error(),
		}).Warn("HTTP request failed")
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": resp.StatusCode,
		"duration":    duration,
	}).Debug("HTTP request completed")

	return resp, nil
}

// redactURL strips the query string so credentials never reach the logs
func redactURL(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	return u.String()
}
