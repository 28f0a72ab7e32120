package catalog

import (
	"context"
	"errors"

	"github.com/remedyroot/remedyroot-golang/internal/models"
)

// ListingCache caches rendered storefront listings. Misses are signalled
// with ErrCacheMiss so callers can distinguish "not cached" from a broken
// cache backend.
type ListingCache interface {
	GetRemedies(ctx context.Context, key string) ([]models.Remedy, error)
	SetRemedies(ctx context.Context, key string, remedies []models.Remedy) error
	GetProducts(ctx context.Context, key string) ([]models.Product, error)
	SetProducts(ctx context.Context, key string, products []models.Product) error
	Delete(ctx context.Context, key string) error
}

var ErrCacheMiss = errors.New("cache miss")
