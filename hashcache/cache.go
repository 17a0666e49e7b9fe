package hashcache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the digest cache consumed by the engine. Implementations must
// treat every failure as a miss.
type Cache interface {
	// Get returns the cached entry for the key, or nil on a miss.
	Get(ctx context.Context, key Key) (*Entry, error)

	// Put stores an entry under the key.
	Put(ctx context.Context, key Key, entry Entry) error

	// Invalidate drops the entry for the key if present.
	Invalidate(ctx context.Context, key Key) error

	// Close releases the underlying connection.
	Close() error
}

// Key identifies one cached digest. PolicyDigest participates so that a
// policy change invalidates every prior entry.
type Key struct {
	Path         string
	Size         int64
	ModTime      time.Time
	PolicyDigest string
}

// KeyForFile stats path and builds its cache key.
func KeyForFile(path, policyDigest string) (Key, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Key{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return Key{
		Path:         path,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		PolicyDigest: policyDigest,
	}, nil
}

func (k Key) redisKey() string {
	return "vdiff:hash:" + k.Path + ":" + strconv.FormatInt(k.Size, 10) +
		":" + strconv.FormatInt(k.ModTime.UnixNano(), 10) + ":" + k.PolicyDigest
}

// Entry is one cached digest result.
type Entry struct {
	FileHash     string    `json:"file_hash"`
	CodebaseHash string    `json:"codebase_hash"`
	ComputedAt   time.Time `json:"computed_at"`
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string

	// TLS configuration for secure connections.
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment.
	ConnectTimeout time.Duration

	// TTL is the lifetime of stored entries. Zero means 24h.
	TTL time.Duration
}

// RedisCache implements Cache using go-redis/v9.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection with a ping.
func NewRedisCache(opts RedisOptions) (*RedisCache, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.TTL == 0 {
		opts.TTL = 24 * time.Hour
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ttl: opts.TTL}, nil
}

// Get returns the cached entry for the key, or nil on a miss.
func (c *RedisCache) Get(ctx context.Context, key Key) (*Entry, error) {
	data, err := c.client.Get(ctx, key.redisKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		// A corrupt entry is a miss; drop it so it is not read again.
		c.client.Del(ctx, key.redisKey())
		return nil, nil
	}
	return &entry, nil
}

// Put stores an entry under the key with the cache's TTL.
func (c *RedisCache) Put(ctx context.Context, key Key, entry Entry) error {
	if entry.ComputedAt.IsZero() {
		entry.ComputedAt = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := c.client.Set(ctx, key.redisKey(), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Invalidate drops the entry for the key.
func (c *RedisCache) Invalidate(ctx context.Context, key Key) error {
	if err := c.client.Del(ctx, key.redisKey()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache entry: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
