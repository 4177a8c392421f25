package redis_repository

import (
	"context"
	"fmt"
	"log"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/redis/go-redis/v9"
)

func Conn(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		DialTimeout: cfg.Timeout,
		Password:    cfg.Password,
		DB:          cfg.DB,
	})
	log.Println("redis options -> " + client.String())

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if pong != "PONG" {
		_ = client.Close()
		return nil, fmt.Errorf("expected PONG, got %s", pong)
	}

	return client, nil
}
