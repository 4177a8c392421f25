package core

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.JSONEq(t, `{"q":"go"}`, string(body))
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(time.Second, 2, time.Millisecond)
	var out struct {
		OK bool `json:"ok"`
	}
	err := c.DoJSON(context.Background(), http.MethodPost, srv.URL, nil, map[string]string{"q": "go"}, &out)
	require.NoError(t, err)
	require.True(t, out.OK)
	require.Equal(t, int32(3), calls.Load())
}

func TestDoJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewHTTPClient(time.Second, 3, time.Millisecond)
	err := c.DoJSON(context.Background(), http.MethodGet, srv.URL, nil, nil, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusUnauthorized, se.Code)
	require.Contains(t, se.Body, "bad key")
	require.Equal(t, int32(1), calls.Load())
}
