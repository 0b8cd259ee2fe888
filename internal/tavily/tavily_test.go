// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tavily

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestServer(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := apiBase
	apiBase = ts.URL
	t.Cleanup(func() { apiBase = old })

	return &Client{HTTP: ts.Client(), APIKey: "tvly-test"}
}

func TestSearch(t *testing.T) {
	client := withTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "Bearer tvly-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nutrition professors Edmonton", body["query"])
		assert.Equal(t, float64(5), body["max_results"])

		fmt.Fprint(w, `{
			"query": "nutrition professors Edmonton",
			"results": [
				{"title": "AFNS Faculty", "url": "https://ualberta.ca/afns", "content": "Faculty listing", "score": 0.92}
			]
		}`)
	}))

	out, err := client.Search(context.Background(), "nutrition professors Edmonton", 5)
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "AFNS Faculty", out.Results[0].Title)
}

func TestSearchDefaultsMaxResults(t *testing.T) {
	client := withTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(5), body["max_results"])
		fmt.Fprint(w, `{"results": []}`)
	}))

	_, err := client.Search(context.Background(), "anything", 0)
	require.NoError(t, err)
}

func TestMap(t *testing.T) {
	client := withTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/map", r.URL.Path)
		fmt.Fprint(w, `{"base_url": "https://ualberta.ca", "results": ["https://ualberta.ca/afns", "https://ualberta.ca/staff"]}`)
	}))

	out, err := client.Map(context.Background(), "https://ualberta.ca")
	require.NoError(t, err)
	assert.Len(t, out.Results, 2)
}

func TestExtract(t *testing.T) {
	client := withTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/extract", r.URL.Path)

		var body struct {
			URLs []string `json:"urls"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"https://ualberta.ca/afns"}, body.URLs)

		fmt.Fprint(w, `{"results": [{"url": "https://ualberta.ca/afns", "raw_content": "Dr. Carla Prado ..."}], "failed_results": []}`)
	}))

	out, err := client.Extract(context.Background(), "https://ualberta.ca/afns")
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Contains(t, out.Results[0].RawContent, "Carla Prado")
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	client := withTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": "invalid api key"}`)
	}))

	_, err := client.Search(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")
	assert.Contains(t, err.Error(), "invalid api key")
}
