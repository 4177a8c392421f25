package web_search

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/tools/web_search/brave"
	"github.com/mohammad-safakhou/newsdesk/tools/web_search/models"
	"github.com/mohammad-safakhou/newsdesk/tools/web_search/serper"
	"golang.org/x/time/rate"
)

type WebSearcher interface {
	Discover(ctx context.Context, q string, k int, sites []string) ([]models.Result, error)
}

type Provider string

const (
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
)

type Error struct{ msg string }

func (e *Error) Error() string { return e.msg }

var ErrUnsupportedProvider = &Error{"unsupported provider"}

// NewWebSearcher builds the configured backend behind a rate gate. Brave's
// free tier allows one request per second.
func NewWebSearcher(cfg config.WebSearchConfig) (WebSearcher, error) {
	cfg = cfg.Normalize()
	client := &http.Client{Timeout: cfg.Timeout}
	var s WebSearcher
	switch Provider(cfg.Provider) {
	case SerperProvider:
		s = serper.Search{ApiKey: cfg.SerperAPIKey, Client: client}
	case BraveProvider:
		s = brave.Search{ApiKey: cfg.BraveAPIKey, Client: client}
	default:
		return nil, ErrUnsupportedProvider
	}
	return NewRateLimited(s, cfg.RatePerSecond), nil
}

// RateLimited waits on a token bucket before every call.
type RateLimited struct {
	next    WebSearcher
	limiter *rate.Limiter
}

func NewRateLimited(next WebSearcher, perSecond float64) *RateLimited {
	if perSecond <= 0 {
		return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

func (r *RateLimited) Discover(ctx context.Context, q string, k int, sites []string) ([]models.Result, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Discover(ctx, q, k, sites)
}

// Cache stores search results by query key.
type Cache interface {
	Get(ctx context.Context, key string) ([]models.Result, bool, error)
	Set(ctx context.Context, key string, results []models.Result, ttl time.Duration) error
}

// Cached consults cache before the backend. Cache failures are ignored.
type Cached struct {
	next  WebSearcher
	cache Cache
	ttl   time.Duration
	scope string
}

func NewCached(next WebSearcher, cache Cache, scope string, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: cache, ttl: ttl, scope: scope}
}

func (c *Cached) Discover(ctx context.Context, q string, k int, sites []string) ([]models.Result, error) {
	key := CacheKey(c.scope, q, k, sites)
	if hit, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		return hit, nil
	}
	res, err := c.next.Discover(ctx, q, k, sites)
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(ctx, key, res, c.ttl)
	return res, nil
}

// CacheKey normalises a query into a stable cache key.
func CacheKey(scope, q string, k int, sites []string) string {
	q = strings.Join(strings.Fields(strings.ToLower(q)), " ")
	var b strings.Builder
	b.WriteString(scope)
	b.WriteByte('|')
	b.WriteString(q)
	b.WriteByte('|')
	b.WriteString(strings.Join(sites, ","))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(k))
	return b.String()
}
