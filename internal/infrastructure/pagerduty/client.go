package pagerduty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/oncallhq/pagerbot/internal/infrastructure/observability"
)

const defaultBaseURL = "https://api.pagerduty.com"

// APIError is a non-success response from the PagerDuty REST API.
type APIError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%d back from %s with body: %s", e.StatusCode, e.Path, e.Body)
	}
	return fmt.Sprintf("%d back from %s", e.StatusCode, e.Path)
}

// Client is a thin wrapper over the PagerDuty REST API v2.
//
// Status handling is deliberately uneven across verbs: GET and PUT demand 200,
// POST demands 201, and DELETE maps 200/204 to true and everything else to
// false without producing an error. Callers of Delete must check the boolean.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	fromEmail  string
	logger     *slog.Logger
	reconcile  ReconcilePolicy
	metrics    *observability.Metrics

	mu            sync.RWMutex
	noop          bool
	serviceFilter string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a non-default API host (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithReconcilePolicy overrides how AwaitIncidents polls for new incidents.
func WithReconcilePolicy(p ReconcilePolicy) Option {
	return func(c *Client) { c.reconcile = p }
}

// WithMetrics records per-call counters for every REST request.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a PagerDuty REST client.
func NewClient(token, fromEmail string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
		fromEmail:  fromEmail,
		logger:     logger,
		reconcile:  DefaultReconcilePolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetNoop switches dry-run mode: mutating calls log instead of sending.
func (c *Client) SetNoop(noop bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.noop = noop
}

// SetServiceFilter scopes incident GETs to the given service ID ("" clears).
func (c *Client) SetServiceFilter(serviceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serviceFilter = serviceID
}

func (c *Client) isNoop() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.noop
}

func (c *Client) incidentFilter() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serviceFilter
}

// Get issues an authenticated GET and decodes a 200 response into out.
// Incident paths pick up the configured service-scoping filter.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	if filter := c.incidentFilter(); filter != "" && strings.Contains(path, "/incidents") {
		query.Set("service_ids[]", filter)
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.do(req, path, http.StatusOK, false, out)
}

// Put issues an authenticated PUT with a JSON body, expecting 200.
// Non-200 errors include the response body when the API returned one.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	if c.isNoop() {
		c.logger.Info("noop: would have PUT", "path", path, "body", describe(body))
		return nil
	}

	req, err := c.newRequest(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return err
	}
	return c.do(req, path, http.StatusOK, true, out)
}

// Post issues an authenticated POST with a JSON body, expecting 201.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	if c.isNoop() {
		c.logger.Info("noop: would have POST", "path", path, "body", describe(body))
		return nil
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	return c.do(req, path, http.StatusCreated, false, out)
}

// Delete issues an authenticated DELETE. 200 and 204 yield true; any other
// status yields false with a nil error. Transport failures are still errors.
func (c *Client) Delete(ctx context.Context, path string) (bool, error) {
	if c.isNoop() {
		c.logger.Info("noop: would have DELETE", "path", path)
		return true, nil
	}

	req, err := c.newRequest(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordRequest(ctx, http.MethodDelete, path, false)
		return false, fmt.Errorf("DELETE %s: %w", path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		c.recordRequest(ctx, http.MethodDelete, path, true)
		return true, nil
	default:
		c.logger.Warn("DELETE returned non-success status",
			"path", path,
			"status", resp.StatusCode,
		)
		c.recordRequest(ctx, http.MethodDelete, path, false)
		return false, nil
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("creating %s %s request: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/vnd.pagerduty+json;version=2")
	req.Header.Set("Authorization", "Token token="+c.token)
	req.Header.Set("From", c.fromEmail)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, path string, wantStatus int, errWithBody bool, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordRequest(req.Context(), req.Method, path, false)
		return fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordRequest(req.Context(), req.Method, path, false)
		return fmt.Errorf("reading %s %s response: %w", req.Method, path, err)
	}

	if resp.StatusCode != wantStatus {
		c.recordRequest(req.Context(), req.Method, path, false)
		apiErr := &APIError{Path: path, StatusCode: resp.StatusCode}
		if errWithBody {
			apiErr.Body = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	c.recordRequest(req.Context(), req.Method, path, true)

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", req.Method, path, err)
		}
	}
	return nil
}

// recordRequest feeds the optional per-call metrics.
func (c *Client) recordRequest(ctx context.Context, method, path string, success bool) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordPagerDutyRequest(ctx, method, path, success)
}

// describe renders a request body for noop log lines.
func describe(body any) string {
	if body == nil {
		return ""
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Sprintf("%v", body)
	}
	return string(data)
}
