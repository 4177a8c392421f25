package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// StatusError is a non-2xx response from a model provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// Temporary reports whether the provider may accept the same call later.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// HTTPClient sends JSON requests to model providers, retrying rate limits
// and server errors with exponential backoff.
type HTTPClient struct {
	client  *http.Client
	retries uint64
	initial time.Duration
}

func NewHTTPClient(timeout time.Duration, retries int, initial time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	if initial <= 0 {
		initial = 300 * time.Millisecond
	}
	return &HTTPClient{client: &http.Client{Timeout: timeout}, retries: uint64(retries), initial: initial}
}

func (c *HTTPClient) policy(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.initial
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, c.retries), ctx)
}

// DoJSON sends body as JSON and decodes a 2xx reply into out. A nil out
// discards the reply.
func (c *HTTPClient) DoJSON(ctx context.Context, method, url string, headers map[string]string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}
	return backoff.Retry(func() error {
		var r io.Reader
		if payload != nil {
			r = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, r)
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if payload != nil && req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}
		return c.send(req, out)
	}, c.policy(ctx))
}

// send performs one attempt. Errors that cannot succeed on retry are
// wrapped as permanent.
func (c *HTTPClient) send(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		serr := &StatusError{Code: resp.StatusCode, Body: string(b)}
		if serr.Temporary() {
			return serr
		}
		return backoff.Permanent(serr)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}
