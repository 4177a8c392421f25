package redis_repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/repository/redis_repository"
	"github.com/mohammad-safakhou/newsdesk/tools/web_search/models"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	redisC, err := tcRedis.RunContainer(ctx, testcontainers.WithWaitStrategy(wait.ForListeningPort("6379/tcp")))
	if err != nil {
		t.Fatalf("redis container: %v", err)
	}
	defer func() { _ = redisC.Terminate(ctx) }()

	host, err := redisC.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := redisC.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}

	client, err := redis_repository.Conn(ctx, config.RedisConfig{Host: host, Port: port.Port(), Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("conn: %v", err)
	}
	defer client.Close()

	cache := redis_repository.NewSearchCache(client)
	if _, ok, err := cache.Get(ctx, "brave|go|3"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	want := []models.Result{{Title: "Go", URL: "https://go.dev", Snippet: "fast"}}
	if err := cache.Set(ctx, "brave|go|3", want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := cache.Get(ctx, "brave|go|3")
	if err != nil || !ok || len(got) != 1 || got[0] != want[0] {
		t.Fatalf("unexpected cache hit %v %v %v", got, ok, err)
	}

	sched := redis_repository.NewRedisScheduleRepository(client)
	if last, err := sched.LastRun(ctx, "go"); err != nil || last != nil {
		t.Fatalf("expected no last run, got %v %v", last, err)
	}
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	if err := sched.MarkRun(ctx, "go", at); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if last, err := sched.LastRun(ctx, "go"); err != nil || last == nil || !last.Equal(at) {
		t.Fatalf("unexpected last run %v %v", last, err)
	}
	if ok, err := sched.Acquire(ctx, "go", time.Minute); err != nil || !ok {
		t.Fatalf("acquire: %v %v", ok, err)
	}
	if ok, _ := sched.Acquire(ctx, "go", time.Minute); ok {
		t.Fatalf("lock should be held")
	}
	if err := sched.Release(ctx, "go"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := sched.Acquire(ctx, "go", time.Minute); !ok {
		t.Fatalf("lock should be free after release")
	}
}
