package manifest

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/nbenv/pkg/errors"
)

// DefaultRedisKey is the key the live manifest is stored under.
const DefaultRedisKey = "nbenv:manifest"

// RedisClient is the subset of the go-redis client used by [RedisSink].
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisSink stores the manifest under a single key so an execution host in
// another process can read it. Each publish overwrites the key.
type RedisSink struct {
	client RedisClient
	key    string
	format Format
}

// NewRedisSink returns a sink storing manifests under key. An empty key uses
// [DefaultRedisKey] and an empty format uses JSON.
func NewRedisSink(client RedisClient, key string, format Format) *RedisSink {
	if key == "" {
		key = DefaultRedisKey
	}
	if format == "" {
		format = FormatJSON
	}
	return &RedisSink{client: client, key: key, format: format}
}

// DialRedis connects to addr and checks the connection.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis at %s", addr)
	}
	return client, nil
}

// Publish implements [Publisher].
func (s *RedisSink) Publish(ctx context.Context, m *Manifest) error {
	data, err := Encode(m, s.format)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// Load returns the stored manifest, or nil if the key does not exist.
func (s *RedisSink) Load(ctx context.Context) (*Manifest, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return Decode(data, s.format)
}

var _ Publisher = (*RedisSink)(nil)
