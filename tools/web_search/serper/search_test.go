package serper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mohammad-safakhou/newsdesk/tools/web_search/models"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "key", r.Header.Get("X-API-KEY"))
		var body struct {
			Q   string `json:"q"`
			Num int    `json:"num"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "tokyo rain", body.Q)
		require.Equal(t, 1, body.Num)
		_, _ = w.Write([]byte(`{"organic":[
			{"title":"Rain","link":"https://example.com/rain","snippet":"wet"},
			{"title":"Sun","link":"https://example.com/sun","snippet":"dry"}]}`))
	}))
	defer srv.Close()

	s := Search{ApiKey: "key", BaseURL: srv.URL, Client: srv.Client()}
	res, err := s.Discover(context.Background(), "tokyo rain", 1, nil)
	require.NoError(t, err)
	require.Equal(t, []models.Result{{Title: "Rain", URL: "https://example.com/rain", Snippet: "wet"}}, res)
}

func TestDiscoverUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := Search{ApiKey: "nope", BaseURL: srv.URL, Client: srv.Client()}
	_, err := s.Discover(context.Background(), "q", 3, nil)
	var se *models.StatusError
	require.True(t, errors.As(err, &se))
	require.False(t, se.Retryable())
}
