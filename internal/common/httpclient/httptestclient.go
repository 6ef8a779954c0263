package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
)

// TestHTTPClient serves requests with an in-process handler instead of the
// network. Requests are built exactly as HTTPClient builds them.
type TestHTTPClient struct {
	config  Configurator
	handler http.Handler
}

// NewTestClient creates a client that dispatches every request to handler.
func NewTestClient(config Configurator, handler http.Handler) *TestHTTPClient {
	return &TestHTTPClient{
		config:  config,
		handler: handler,
	}
}

// DoRequest records the handler's response and applies the same error mapping
// as HTTPClient.
func (c *TestHTTPClient) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error) {
	req, err := newRequest(ctx, c.config, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	body := rr.Body.Bytes()

	if err := checkResponse(rr.Code, rr.Header(), body); err != nil {
		return nil, err
	}
	return body, nil
}

// ListResources fetches a collection with a GET request.
func (c *TestHTTPClient) ListResources(ctx context.Context, resourcePath string, queryParams map[string]string) ([]byte, error) {
	return c.DoRequest(ctx, RequestOptions{
		Method:      http.MethodGet,
		Path:        resourcePath,
		QueryParams: queryParams,
	})
}
