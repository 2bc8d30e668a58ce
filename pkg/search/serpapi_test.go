package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerpApi_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("engine") {
		case "youtube":
			assert.Equal(t, "solar", r.URL.Query().Get("search_query"))
			_, _ = w.Write([]byte(`{"video_results":[{"title":"Solar 101","link":"https://youtube.com/watch?v=1","description":"intro","channel":{"name":"Energy TV"}}]}`))
		case "google_news":
			_, _ = w.Write([]byte(`{"news_results":[{"title":"Record year","link":"https://news.example.com/1","source":{"name":"Daily"}}]}`))
		default:
			assert.Equal(t, "solar", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`{"organic_results":[{"title":"Solar","link":"https://example.com","snippet":"sun","source":"Example"},{"title":"no link"}]}`))
		}
	}))
	defer srv.Close()

	api := NewSerpApi("secret", WithBaseURL(srv.URL))

	web, err := api.Search(context.Background(), EngineWeb, "solar")
	require.NoError(t, err)
	require.Len(t, web, 1)
	assert.Equal(t, Result{Title: "Solar", Url: "https://example.com", Snippet: "sun", Source: "Example"}, web[0])

	video, err := api.Search(context.Background(), EngineVideo, "solar")
	require.NoError(t, err)
	require.Len(t, video, 1)
	assert.Equal(t, "Energy TV", video[0].Source)
	assert.Equal(t, "intro", video[0].Snippet)

	news, err := api.Search(context.Background(), EngineNews, "solar")
	require.NoError(t, err)
	assert.Equal(t, "Daily", news[0].Source)
}

func TestSerpApi_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Invalid API key"}`))
	}))
	defer srv.Close()

	_, err := NewSerpApi("bad", WithBaseURL(srv.URL)).Search(context.Background(), EngineWeb, "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}
