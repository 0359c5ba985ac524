package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/buzcart/buzcart-api/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrMiss = errors.New("cache miss")

// ProductCache holds product detail for GET /products/:id. Stock-guarded
// paths always read the database; the cache only serves display reads.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Set(ctx context.Context, product *models.Product) error
	Invalidate(ctx context.Context, ids ...uuid.UUID) error
}

type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
		Protocol: 2,
	})
}

func NewRedisProductCache(client *redis.Client, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{client: client, ttl: ttl}
}

func productKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

func (r *RedisProductCache) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	raw, err := r.client.Get(ctx, productKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal([]byte(raw), &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product %s: %w", id, err)
	}
	return &product, nil
}

func (r *RedisProductCache) Set(ctx context.Context, product *models.Product) error {
	raw, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", product.ID, err)
	}
	return r.client.Set(ctx, productKey(product.ID), raw, r.ttl).Err()
}

func (r *RedisProductCache) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	pipe := r.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, productKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate products: %w", err)
	}
	return nil
}

// Noop is used when no redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, uuid.UUID) (*models.Product, error) { return nil, ErrMiss }
func (Noop) Set(context.Context, *models.Product) error { return nil }
func (Noop) Invalidate(context.Context, ...uuid.UUID) error { return nil }
