// Package serpapi provides a minimal SerpApi client for the Google Maps engine.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://serpapi.com"

// maxResultsPerRequest is the SerpApi per-page cap for the google_maps engine.
const maxResultsPerRequest = 20

// Client performs SerpApi search operations.
type Client interface {
	// SearchMaps runs a google_maps text search and returns up to limit
	// local results.
	SearchMaps(ctx context.Context, query string, limit int) ([]LocalResult, error)
}

// GPSCoordinates holds a result's latitude/longitude.
type GPSCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocalResult is one business listing from the google_maps engine.
// Rating and Reviews are pointers so that fields absent from the response
// stay distinguishable from zero values.
type LocalResult struct {
	Title   string          `json:"title"`
	PlaceID string          `json:"place_id"`
	Address string          `json:"address"`
	Phone   string          `json:"phone"`
	Rating  *float64        `json:"rating"`
	Reviews *int            `json:"reviews"`
	Website string          `json:"website"`
	Link    string          `json:"link"`
	Type    string          `json:"type"`
	Hours   string          `json:"hours"`
	GPS     *GPSCoordinates `json:"gps_coordinates"`

	// Raw is the unmodified JSON of this result, kept for audit.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the typed fields and retains the raw record bytes.
func (r *LocalResult) UnmarshalJSON(data []byte) error {
	type alias LocalResult
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = LocalResult(a)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// APIError is returned for non-200 responses and API-level error payloads.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("serpapi: status %d: %s", e.StatusCode, e.Message)
	}
	return "serpapi: " + e.Message
}

type searchResponse struct {
	LocalResults []LocalResult `json:"local_results"`
	Error        string        `json:"error"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a SerpApi client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchMaps(ctx context.Context, query string, limit int) ([]LocalResult, error) {
	if limit <= 0 || limit > maxResultsPerRequest {
		limit = maxResultsPerRequest
	}

	params := url.Values{}
	params.Set("engine", "google_maps")
	params.Set("type", "search")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "serpapi: unmarshal response")
	}

	if result.Error != "" {
		return nil, &APIError{Message: result.Error}
	}

	if len(result.LocalResults) > limit {
		result.LocalResults = result.LocalResults[:limit]
	}
	return result.LocalResults, nil
}
