package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/repository/redis_repository"
	"github.com/mohammad-safakhou/newsdesk/tools/web_search"
	"github.com/redis/go-redis/v9"
)

// ScheduleRepository tracks schedule firings and the locks around them.
type ScheduleRepository interface {
	LastRun(ctx context.Context, key string) (*time.Time, error)
	MarkRun(ctx context.Context, key string, at time.Time) error
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type RepoType string

const (
	RepoTypeRedis  RepoType = "redis"
	RepoTypeMemory RepoType = "memory"
)

// Repositories bundles the key/value backed stores.
type Repositories struct {
	Client      *redis.Client
	SearchCache web_search.Cache
	Schedules   ScheduleRepository
}

// Close releases the underlying connection, if any.
func (r *Repositories) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

// New opens the repositories. The memory type keeps state in process and has
// no search cache.
func New(ctx context.Context, t RepoType, cfg config.RedisConfig) (*Repositories, error) {
	switch t {
	case RepoTypeRedis:
		c, err := redis_repository.Conn(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Client:      c,
			SearchCache: redis_repository.NewSearchCache(c),
			Schedules:   redis_repository.NewRedisScheduleRepository(c),
		}, nil
	case RepoTypeMemory:
		return &Repositories{Schedules: NewMemoryScheduleRepository()}, nil
	}
	return nil, fmt.Errorf("invalid repository type: %s", t)
}

// NewFromConfig picks redis when it is configured and memory otherwise.
func NewFromConfig(ctx context.Context, cfg config.RedisConfig) (*Repositories, error) {
	if cfg.Enabled() {
		return New(ctx, RepoTypeRedis, cfg)
	}
	return New(ctx, RepoTypeMemory, cfg)
}

type memoryScheduleRepository struct {
	mu    sync.Mutex
	last  map[string]time.Time
	locks map[string]time.Time
	now   func() time.Time
}

func NewMemoryScheduleRepository() ScheduleRepository {
	return &memoryScheduleRepository{
		last:  make(map[string]time.Time),
		locks: make(map[string]time.Time),
		now:   time.Now,
	}
}

func (m *memoryScheduleRepository) LastRun(_ context.Context, key string) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.last[key]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *memoryScheduleRepository) MarkRun(_ context.Context, key string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[key] = at.UTC()
	return nil
}

func (m *memoryScheduleRepository) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if exp, ok := m.locks[key]; ok && now.Before(exp) {
		return false, nil
	}
	m.locks[key] = now.Add(ttl)
	return true, nil
}

func (m *memoryScheduleRepository) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
	return nil
}
