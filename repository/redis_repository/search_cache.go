package redis_repository

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/mohammad-safakhou/newsdesk/tools/web_search/models"
	"github.com/redis/go-redis/v9"
)

const searchKeyPrefix = "search:"

// SearchCache keeps search results keyed by a hash of the normalised query.
type SearchCache struct {
	client *redis.Client
}

func NewSearchCache(client *redis.Client) *SearchCache {
	return &SearchCache{client: client}
}

func searchKey(key string) string {
	sum := sha1.Sum([]byte(key))
	return searchKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *SearchCache) Get(ctx context.Context, key string) ([]models.Result, bool, error) {
	val, err := c.client.Get(ctx, searchKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var results []models.Result
	if err := json.Unmarshal(val, &results); err != nil {
		return nil, false, err
	}
	return results, true, nil
}

func (c *SearchCache) Set(ctx context.Context, key string, results []models.Result, ttl time.Duration) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(key), data, ttl).Err()
}
