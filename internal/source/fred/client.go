package fred

import (
	"net/http"
	"net/url"

	"macroagg/internal/dataset"
	"macroagg/internal/etlerr"
)

// DefaultBaseURL is the FRED series observations endpoint.
const DefaultBaseURL = "https://api.stlouisfed.org/fred/series/observations"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=fred_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches FRED series observations.
type Client struct {
	// baseURL is the observations endpoint.
	baseURL string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains the query parameters sent with each request.
	query url.Values
}

// Option is a configuration option for the FRED client.
type Option func(*Client)

// WithBaseURL sets the observations endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewClient creates a FRED client. The API key is mandatory.
func NewClient(key string, options ...Option) (*Client, error) {
	if key == "" {
		return nil, etlerr.NewConfigError("FRED api key")
	}
	var client = &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	// https://fred.stlouisfed.org/docs/api/fred/series_observations.html
	client.query.Set("api_key", key)
	client.query.Set("file_type", "json")
	for _, option := range options {
		option(client)
	}
	return client, nil
}

func (c *Client) Kind() dataset.SourceKind { return dataset.JSONAPI }
