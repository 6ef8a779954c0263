// Package httpclient provides a small HTTP client for read-only REST APIs such
// as the GitHub tags endpoint. Server details come from a Configurator; failed
// responses are reported as *HTTPError with rate-limit information attached.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultTimeout bounds a single request when the Configurator returns zero.
const DefaultTimeout = 10 * time.Second

// Configurator provides the server URL, credentials and request limits.
type Configurator interface {
	GetServerURL() string
	GetToken() string
	GetUserAgent() string
	GetTimeout() time.Duration
}

// HTTPError represents a response with a status code of 400 or above.
type HTTPError struct {
	StatusCode int       // HTTP status code of the response
	Message    string    // "message" field of the JSON error body, or the raw body
	Remaining  string    // X-RateLimit-Remaining header, if any
	ResetAt    time.Time // X-RateLimit-Reset as a time, zero if absent
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// RateLimited reports whether the server refused the request because the
// caller's request quota is exhausted. Such failures are retryable later.
func (e *HTTPError) RateLimited() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return e.StatusCode == http.StatusForbidden && e.Remaining == "0"
}

// HTTPClient issues requests against the configured server.
type HTTPClient struct {
	config     Configurator
	httpClient *http.Client
}

// NewClient creates a client whose every request is bounded by the configured timeout.
func NewClient(config Configurator) *HTTPClient {
	timeout := config.GetTimeout()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RequestOptions describes a single request. Path is joined to the server URL.
type RequestOptions struct {
	Method      string
	Path        string
	QueryParams map[string]string
}

// DoRequest performs the request and returns the response body.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error) {
	req, err := newRequest(ctx, c.config, opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := checkResponse(resp.StatusCode, resp.Header, body); err != nil {
		return nil, err
	}
	return body, nil
}

// ListResources fetches a collection with a GET request.
func (c *HTTPClient) ListResources(ctx context.Context, resourcePath string, queryParams map[string]string) ([]byte, error) {
	return c.DoRequest(ctx, RequestOptions{
		Method:      http.MethodGet,
		Path:        resourcePath,
		QueryParams: queryParams,
	})
}

func newRequest(ctx context.Context, config Configurator, opts RequestOptions) (*http.Request, error) {
	u, err := url.Parse(config.GetServerURL())
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL: %q", config.GetServerURL())
	}
	u.Path = path.Join("/", u.Path, opts.Path)

	q := u.Query()
	for k, v := range opts.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	if ua := config.GetUserAgent(); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if tok := strings.TrimSpace(config.GetToken()); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

func checkResponse(status int, header http.Header, body []byte) error {
	if status < 400 {
		return nil
	}

	httpErr := &HTTPError{
		StatusCode: status,
		Remaining:  header.Get("X-RateLimit-Remaining"),
	}
	if reset, err := strconv.ParseInt(header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		httpErr.ResetAt = time.Unix(reset, 0)
	}

	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "message"); msg.Exists() {
			httpErr.Message = msg.String()
			return httpErr
		}
	}
	httpErr.Message = strings.TrimSpace(string(body))
	return httpErr
}
