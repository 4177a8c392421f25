package httpfetch

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/models"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/readable"
)

const (
	userAgent       = "newsdesk/1.0 (+https://github.com/mohammad-safakhou/newsdesk)"
	defaultMaxBytes = 4 << 20
)

// Fetch downloads pages with a plain GET. It is the default renderer.
type Fetch struct {
	Client   *http.Client
	Timeout  time.Duration
	MaxChars int
	MaxBytes int64
}

func (f Fetch) Exec(ctx context.Context, url string) (models.Result, error) {
	if strings.TrimSpace(url) == "" {
		return models.Result{}, errors.New("invalid url")
	}
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	t0 := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Result{}, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return models.Result{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return models.Result{}, &models.StatusError{URL: url, Code: resp.StatusCode}
	}
	limit := f.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}
	body, err := helpers.ReadAllAndClose(resp.Body, limit)
	if err != nil {
		return models.Result{}, err
	}

	res, err := readable.Extract(string(body), resp.Request.URL.String(), f.MaxChars)
	if err != nil {
		return models.Result{}, err
	}
	res.Status = resp.StatusCode
	res.RenderMS = int(time.Since(t0) / time.Millisecond)
	return res, nil
}
