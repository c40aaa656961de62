package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMaps_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/search.json", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "google_maps", q.Get("engine"))
		assert.Equal(t, "search", q.Get("type"))
		assert.Equal(t, "restaurants in Manchester UK", q.Get("q"))
		assert.Equal(t, "5", q.Get("num"))
		assert.Equal(t, "test-key", q.Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"local_results": [
				{
					"title": "Rustic Kitchen",
					"place_id": "ChIJabc123",
					"address": "12 Deansgate, Manchester",
					"phone": "+44 161 123 4567",
					"rating": 4.6,
					"reviews": 214,
					"website": "https://rustickitchen.example",
					"gps_coordinates": {"latitude": 53.48, "longitude": -2.24}
				},
				{
					"title": "Corner Cafe",
					"place_id": "ChIJdef456",
					"address": "3 Oldham St, Manchester"
				}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	results, err := client.SearchMaps(context.Background(), "restaurants in Manchester UK", 5)

	require.NoError(t, err)
	require.Len(t, results, 2)

	first := results[0]
	assert.Equal(t, "Rustic Kitchen", first.Title)
	assert.Equal(t, "ChIJabc123", first.PlaceID)
	require.NotNil(t, first.Rating)
	assert.InDelta(t, 4.6, *first.Rating, 0.001)
	require.NotNil(t, first.Reviews)
	assert.Equal(t, 214, *first.Reviews)
	require.NotNil(t, first.GPS)
	assert.InDelta(t, 53.48, first.GPS.Latitude, 0.001)
	assert.NotEmpty(t, first.Raw)
	assert.True(t, json.Valid(first.Raw))

	// Absent rating/reviews stay nil rather than zero.
	second := results[1]
	assert.Nil(t, second.Rating)
	assert.Nil(t, second.Reviews)
}

func TestSearchMaps_TruncatesToLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"local_results": [
			{"title": "A"}, {"title": "B"}, {"title": "C"}
		]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	results, err := client.SearchMaps(context.Background(), "cafes in Leeds", 2)

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchMaps_APIErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": "Google Maps hasn't returned any results for this query."}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	results, err := client.SearchMaps(context.Background(), "xyzzy in Nowhere", 10)

	require.Error(t, err)
	assert.Nil(t, results)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Zero(t, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "hasn't returned any results")
}

func TestSearchMaps_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limit exceeded"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.SearchMaps(context.Background(), "plumbers in Austin TX", 10)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestSearchMaps_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.SearchMaps(ctx, "test", 5)
	assert.Error(t, err)
}
