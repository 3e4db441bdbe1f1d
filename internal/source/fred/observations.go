package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"macroagg/internal/etlerr"
	"macroagg/internal/table"
)

// missingValue is FRED's marker for an absent observation.
const missingValue = "."

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type observationsResponse struct {
	Observations *[]observation `json:"observations"`
}

// Fetch retrieves every observation of a series as a [date, value] table.
func (c *Client) Fetch(ctx context.Context, seriesID string) (*table.Table, error) {
	query := maps.Clone(c.query)
	query.Set("series_id", seriesID)

	endpoint := fmt.Sprintf("%s?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, etlerr.NewNetworkError(0, c.redacted(query), err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, etlerr.NewNetworkError(res.StatusCode, c.redacted(query), nil)
	}

	var body observationsResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, etlerr.NewParseError("body", "", err)
	}
	if body.Observations == nil {
		return nil, etlerr.NewParseError("observations", "", errors.New("missing observations array"))
	}

	rows := make([][]table.Value, 0, len(*body.Observations))
	for _, o := range *body.Observations {
		// {"realtime_start":"2024-01-01","realtime_end":"2024-01-01","date":"2023-01-01","value":"26813.601"}
		raw := strings.TrimSpace(o.Value)
		value := table.NullValue()
		if raw != "" && raw != missingValue {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, etlerr.NewParseError("value", o.Value, err)
			}
			value = table.Num(f)
		}
		rows = append(rows, []table.Value{table.Str(o.Date), value})
	}
	return table.New([]string{"date", "value"}, rows)
}

// redacted renders the request URL without the API key.
func (c *Client) redacted(query url.Values) string {
	q := maps.Clone(query)
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
	}
	return fmt.Sprintf("%s?%s", c.baseURL, q.Encode())
}
