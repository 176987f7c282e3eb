// Package snapshot caches encoded document snapshots in Redis so that a
// session can open a document without asking a peer for it.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
)

const (
	defaultPrefix = "appflowy:snapshot:"
	pingTimeout   = 5 * time.Second
)

// RedisCache stores one snapshot per document id.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to redisURL and checks that the server answers.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisCacheWithClient(client), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: defaultPrefix,
	}
}

func (c *RedisCache) key(id models.DocumentID) string {
	return c.prefix + id.String()
}

// Save stores data under id. A ttl of zero or less uses
// constants.DefaultSnapshotTTL.
func (c *RedisCache) Save(ctx context.Context, id models.DocumentID, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = constants.DefaultSnapshotTTL
	}
	if err := c.client.Set(ctx, c.key(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot %s: %w", id, err)
	}
	return nil
}

// Load returns the snapshot stored under id, or ErrSnapshotNotFound.
func (c *RedisCache) Load(ctx context.Context, id models.DocumentID) ([]byte, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", constants.ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	return data, nil
}

// SaveDoc encodes doc and stores it under the document's id.
func (c *RedisCache) SaveDoc(ctx context.Context, doc *sharedtree.Doc, ttl time.Duration) error {
	data, err := doc.EncodeSnapshot()
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", doc.ID(), err)
	}
	return c.Save(ctx, doc.ID(), data, ttl)
}

// LoadDoc loads and decodes the document stored under id.
func (c *RedisCache) LoadDoc(ctx context.Context, id models.DocumentID, opts ...sharedtree.Option) (*sharedtree.Doc, error) {
	data, err := c.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return sharedtree.DecodeSnapshot(data, opts...)
}

func (c *RedisCache) Delete(ctx context.Context, id models.DocumentID) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
