// Package ecb reads SDMX 2.1 generic-data series from the ECB data service.
package ecb

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"macroagg/internal/dataset"
	"macroagg/internal/etlerr"
	"macroagg/internal/table"
)

const (
	// DefaultBaseURL is the ECB data service root. Flow references are
	// appended to it verbatim.
	DefaultBaseURL = "https://data-api.ecb.europa.eu/service/data/"

	acceptGenericData = "application/vnd.sdmx.genericdata+xml;version=2.1"
)

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches one SDMX series per call.
type Client struct {
	baseURL    string
	httpClient HTTPClient
}

// Option is a configuration option for the ECB client.
type Option func(*Client)

// WithBaseURL sets the service root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(options ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL, httpClient: http.DefaultClient}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) Kind() dataset.SourceKind { return dataset.XMLAPI }

// Fetch downloads flowRef and returns a [quarter, value] table.
func (c *Client) Fetch(ctx context.Context, flowRef string) (*table.Table, error) {
	endpoint := c.baseURL + flowRef
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", acceptGenericData)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, etlerr.NewNetworkError(0, endpoint, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, etlerr.NewNetworkError(res.StatusCode, endpoint, nil)
	}
	return Decode(res.Body)
}

// Decode streams a generic-data message. Every ObsDimension value is a
// period label and every ObsValue value a number; the two sequences are
// paired by position and must have the same length. A repeated period keeps
// its first position and its last value.
func Decode(r io.Reader) (*table.Table, error) {
	var (
		periods []string
		values  []float64
	)
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, etlerr.NewFormatError("malformed XML: %v", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "ObsDimension":
			raw, ok := attr(se, "value")
			if !ok {
				return nil, etlerr.NewFormatError("ObsDimension without value attribute")
			}
			periods = append(periods, raw)
		case "ObsValue":
			raw, ok := attr(se, "value")
			if !ok {
				return nil, etlerr.NewFormatError("ObsValue without value attribute")
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, etlerr.NewParseError("ObsValue", raw, err)
			}
			values = append(values, f)
		}
	}
	if len(periods) != len(values) {
		return nil, etlerr.NewFormatError("%d ObsDimension elements but %d ObsValue elements", len(periods), len(values))
	}

	order := make([]string, 0, len(periods))
	byPeriod := make(map[string]float64, len(periods))
	for i, p := range periods {
		if _, seen := byPeriod[p]; !seen {
			order = append(order, p)
		}
		byPeriod[p] = values[i]
	}
	rows := make([][]table.Value, len(order))
	for i, p := range order {
		rows[i] = []table.Value{table.Str(p), table.Num(byPeriod[p])}
	}
	return table.New([]string{dataset.QuarterColumn, "value"}, rows)
}

func attr(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
