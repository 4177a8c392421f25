package repository

import (
	"context"
	"testing"
	"time"

	"github.com/mohammad-safakhou/newsdesk/config"
)

func TestNewFromConfigFallsBackToMemory(t *testing.T) {
	repos, err := NewFromConfig(context.Background(), config.RedisConfig{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer repos.Close()
	if repos.Client != nil || repos.SearchCache != nil {
		t.Fatalf("memory repositories should not carry a redis client or cache")
	}
	if repos.Schedules == nil {
		t.Fatalf("expected schedule repository")
	}
	if _, err := New(context.Background(), "etcd", config.RedisConfig{}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestMemoryScheduleRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryScheduleRepository().(*memoryScheduleRepository)
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	last, err := repo.LastRun(ctx, "daily")
	if err != nil || last != nil {
		t.Fatalf("expected no last run, got %v %v", last, err)
	}
	if err := repo.MarkRun(ctx, "daily", now); err != nil {
		t.Fatalf("mark: %v", err)
	}
	last, _ = repo.LastRun(ctx, "daily")
	if last == nil || !last.Equal(now) {
		t.Fatalf("unexpected last run %v", last)
	}

	ok, _ := repo.Acquire(ctx, "daily", time.Minute)
	if !ok {
		t.Fatalf("first acquire should succeed")
	}
	ok, _ = repo.Acquire(ctx, "daily", time.Minute)
	if ok {
		t.Fatalf("second acquire should fail while held")
	}
	now = now.Add(2 * time.Minute)
	ok, _ = repo.Acquire(ctx, "daily", time.Minute)
	if !ok {
		t.Fatalf("acquire should succeed after expiry")
	}
	_ = repo.Release(ctx, "daily")
	ok, _ = repo.Acquire(ctx, "daily", time.Minute)
	if !ok {
		t.Fatalf("acquire should succeed after release")
	}
}
