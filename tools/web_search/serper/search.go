package serper

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/mohammad-safakhou/newsdesk/tools/web_search/models"
	"github.com/mohammad-safakhou/newsdesk/utils"
)

const DefaultBaseURL = "https://google.serper.dev/search"

type Search struct {
	ApiKey  string
	BaseURL string
	Client  *http.Client
}

func (s Search) Discover(ctx context.Context, q string, k int, sites []string) ([]models.Result, error) {
	// https://serper.dev/ docs
	base := s.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	payload := map[string]any{"q": utils.SiteQuery(q, sites), "num": k}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", s.ApiKey)
	req.Header.Set("Content-Type", "application/json")
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &models.StatusError{Provider: "serper", Code: resp.StatusCode, Body: string(b)}
	}
	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	var out []models.Result
	if items, ok := raw["organic"].([]any); ok {
		for i, it := range items {
			if i >= k {
				break
			}
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, models.Result{
				Title: utils.Str(m["title"]), URL: utils.Str(m["link"]), Snippet: utils.Str(m["snippet"]),
			})
		}
	}
	return out, nil
}
