package brave

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mohammad-safakhou/newsdesk/tools/web_search/models"
	"github.com/mohammad-safakhou/newsdesk/utils"
)

const DefaultBaseURL = "https://api.search.brave.com/res/v1/web/search"

type Search struct {
	ApiKey  string
	BaseURL string
	Client  *http.Client
}

func (s Search) Discover(ctx context.Context, q string, k int, sites []string) ([]models.Result, error) {
	// https://api.search.brave.com/app/documentation/web-search
	base := s.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	params := url.Values{}
	params.Set("q", utils.SiteQuery(q, sites))
	params.Set("count", strconv.Itoa(k))
	params.Set("text_decorations", "0")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", s.ApiKey)
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
		return nil, &models.StatusError{Provider: "brave", Code: resp.StatusCode, Body: string(b)}
	}
	var raw struct {
		Web struct {
			Results []struct {
				Title   string `json:"title"`
				URL     string `json:"url"`
				Snippet string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	var out []models.Result
	for i, r := range raw.Web.Results {
		if i >= k {
			break
		}
		out = append(out, models.Result{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
	}
	return out, nil
}
