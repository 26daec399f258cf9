package jqdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultURL = "https://dataapi.joinquant.com/apis"

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrRateLimited      = errors.New("rate limited")
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrAPI marks an in-band error reported in a 200 response body.
	ErrAPI = errors.New("api error")
)

var chinaTZ = time.FixedZone("CST", 8*60*60)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=jqdata_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// JQDataAPIClient is a client for the JQData HTTP API. Every method is a POST
// of {"method": ..., "token": ...} to a single endpoint.
type JQDataAPIClient struct {
	url        string
	httpClient HTTPClient
	header     http.Header
	token      string
}

// JQDataAPIClientOption is a configuration option for the JQData API client.
type JQDataAPIClientOption func(*JQDataAPIClient)

// WithURL sets the API endpoint.
func WithURL(url string) JQDataAPIClientOption {
	return func(c *JQDataAPIClient) {
		if url != "" {
			c.url = url
		}
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) JQDataAPIClientOption {
	return func(c *JQDataAPIClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) JQDataAPIClientOption {
	return func(c *JQDataAPIClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewJQDataAPIClient creates a new JQData API client.
func NewJQDataAPIClient(options ...JQDataAPIClientOption) (*JQDataAPIClient, error) {
	var client = &JQDataAPIClient{
		url:        defaultURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}

// IsAuth reports whether a token is held.
func (c *JQDataAPIClient) IsAuth() bool { return c.token != "" }

// do posts payload and returns the body. The API reports failures in-band
// as a plain text body starting with "error".
func (c *JQDataAPIClient) do(ctx context.Context, payload map[string]any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized

	case http.StatusTooManyRequests:
		return nil, ErrRateLimited

	default:
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if msg := strings.TrimSpace(string(body)); strings.HasPrefix(msg, "error") {
		return nil, fmt.Errorf("%s: %w: %s", payload["method"], ErrAPI, msg)
	}
	return body, nil
}

// call invokes a data method with the session token.
func (c *JQDataAPIClient) call(ctx context.Context, payload map[string]any) ([]byte, error) {
	if c.token == "" {
		return nil, ErrNotAuthenticated
	}
	payload["token"] = c.token
	return c.do(ctx, payload)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, chinaTZ); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
