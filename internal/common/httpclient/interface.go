package httpclient

import "context"

// HTTPClientInterface is implemented by HTTPClient and TestHTTPClient.
type HTTPClientInterface interface {
	// DoRequest performs the request and returns the response body.
	// Responses with status >= 400 are returned as *HTTPError.
	DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error)

	// ListResources fetches a collection with a GET request.
	ListResources(ctx context.Context, resourcePath string, queryParams map[string]string) ([]byte, error)
}

var _ HTTPClientInterface = &HTTPClient{}
var _ HTTPClientInterface = &TestHTTPClient{}
