package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/duelarena/server/internal/model"
)

// Redis key layout for catalog content
const (
	characterIndexKey = "catalog:characters"
	characterKeyFmt   = "catalog:character:%s"
)

func characterKey(id string) string {
	return fmt.Sprintf(characterKeyFmt, id)
}

// RedisConfig holds Redis connection settings for the catalog source
type RedisConfig struct {
	URL string
}

// RedisSource loads character definitions published to Redis by the content
// pipeline. Only catalog content lives in Redis; match and room state stays
// in process memory.
type RedisSource struct {
	client *redis.Client
}

// NewRedisSource connects to Redis and verifies the connection
func NewRedisSource(cfg RedisConfig) (*RedisSource, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisSource{client: client}, nil
}

// NewRedisSourceWithClient creates a RedisSource with an existing client
// (for testing)
func NewRedisSourceWithClient(client *redis.Client) *RedisSource {
	return &RedisSource{client: client}
}

// Ensure RedisSource implements Source
var _ Source = (*RedisSource)(nil)

// Close closes the Redis connection
func (s *RedisSource) Close() error {
	return s.client.Close()
}

// Characters fetches every character listed in the catalog index
func (s *RedisSource) Characters(ctx context.Context) ([]model.Character, error) {
	ids, err := s.client.SMembers(ctx, characterIndexKey).Result()
	if err != nil {
		return nil, err
	}

	characters := make([]model.Character, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, characterKey(id)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Index entry without a document; skip it.
				continue
			}
			return nil, err
		}
		var doc characterDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding character %s: %w", id, err)
		}
		characters = append(characters, doc.toModel())
	}
	return characters, nil
}
