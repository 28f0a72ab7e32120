package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/remedyroot/remedyroot-golang/internal/models"
)

// RedisCache backs ListingCache with redis. TTLs carry a little jitter so a
// burst of traffic does not expire every listing at the same instant.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client, baseTTL time.Duration) *RedisCache {
	if baseTTL <= 0 {
		baseTTL = 5 * time.Minute
	}
	return &RedisCache{client: client, baseTTL: baseTTL}
}

func (r *RedisCache) GetRemedies(ctx context.Context, key string) ([]models.Remedy, error) {
	data, err := r.client.Get(ctx, remedyKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var remedies []models.Remedy
	if err := json.Unmarshal(data, &remedies); err != nil {
		return nil, fmt.Errorf("unmarshal remedies failed: %w", err)
	}
	return remedies, nil
}

func (r *RedisCache) SetRemedies(ctx context.Context, key string, remedies []models.Remedy) error {
	data, err := json.Marshal(remedies)
	if err != nil {
		return fmt.Errorf("marshal remedies failed: %w", err)
	}
	if err := r.client.Set(ctx, remedyKey(key), data, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) GetProducts(ctx context.Context, key string) ([]models.Product, error) {
	data, err := r.client.Get(ctx, productKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("unmarshal products failed: %w", err)
	}
	return products, nil
}

func (r *RedisCache) SetProducts(ctx context.Context, key string, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal products failed: %w", err)
	}
	if err := r.client.Set(ctx, productKey(key), data, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, remedyKey(key), productKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisCache) ttl() time.Duration {
	jitter := time.Duration(rand.Intn(30)) * time.Second
	return r.baseTTL + jitter
}

func remedyKey(key string) string  { return fmt.Sprintf("listing:remedies:%s", key) }
func productKey(key string) string { return fmt.Sprintf("listing:products:%s", key) }
