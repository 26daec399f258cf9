package rqdata

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

const (
	defaultAuthURL = "https://rqdata.ricequant.com/auth"
	defaultAPIURL  = "https://rqdata.ricequant.com/api"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrRateLimited      = errors.New("rate limited")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Vendor timestamps carry no zone; they are China Standard Time.
var chinaTZ = time.FixedZone("CST", 8*60*60)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=rqdata_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RQDataAPIClient is a client for the RQData HTTP API.
type RQDataAPIClient struct {
	// authURL is the endpoint exchanging credentials for a token.
	authURL string
	// apiURL is the endpoint serving every data method.
	apiURL string
	// httpClient is the HTTP httpClient.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// token is set by Authenticate.
	token string
}

// RQDataAPIClientOption is a configuration option for the RQData API client.
type RQDataAPIClientOption func(*RQDataAPIClient)

// WithAuthURL sets the authentication endpoint.
func WithAuthURL(authURL string) RQDataAPIClientOption {
	return func(c *RQDataAPIClient) {
		if authURL != "" {
			c.authURL = authURL
		}
	}
}

// WithAPIURL sets the data endpoint.
func WithAPIURL(apiURL string) RQDataAPIClientOption {
	return func(c *RQDataAPIClient) {
		if apiURL != "" {
			c.apiURL = apiURL
		}
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) RQDataAPIClientOption {
	return func(c *RQDataAPIClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) RQDataAPIClientOption {
	return func(c *RQDataAPIClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewRQDataAPIClient creates a new RQData API client.
func NewRQDataAPIClient(options ...RQDataAPIClientOption) (*RQDataAPIClient, error) {
	var client = &RQDataAPIClient{
		authURL:    defaultAuthURL,
		apiURL:     defaultAPIURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}

// IsAuth reports whether a session token is held.
func (c *RQDataAPIClient) IsAuth() bool { return c.token != "" }

// post sends payload as JSON and returns the raw response body.
func (c *RQDataAPIClient) post(ctx context.Context, url string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		// The API authenticates data calls by this header.
		req.Header.Set("token", c.token)
	}

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
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return nil, fmt.Errorf("unexpected status code: %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// call invokes a data method. Requires a token.
func (c *RQDataAPIClient) call(ctx context.Context, payload map[string]any) ([]byte, error) {
	if c.token == "" {
		return nil, ErrNotAuthenticated
	}
	return c.post(ctx, c.apiURL, payload)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, chinaTZ); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
