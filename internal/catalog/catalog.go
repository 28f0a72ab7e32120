package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"github.com/remedyroot/remedyroot-golang/internal/gateway"
	"github.com/remedyroot/remedyroot-golang/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Service is the storefront read side: remedy and product listings served
// through the cache, with singleflight collapsing concurrent misses for the
// same listing.
type Service struct {
	gw    gateway.Gateway
	cache ListingCache
	sfg   singleflight.Group
	log   *logrus.Logger
}

func NewService(gw gateway.Gateway, cache ListingCache, log *logrus.Logger) *Service {
	return &Service{gw: gw, cache: cache, log: log}
}

// ListRemedies returns the remedies for an ailment ("all" lists everything),
// newest first.
func (s *Service) ListRemedies(ctx context.Context, ailmentID int64) ([]models.Remedy, error) {
	key := remedyListKey(ailmentID)

	v, err, _ := s.sfg.Do("remedies:"+key, func() (interface{}, error) {
		cached, err := s.cache.GetRemedies(ctx, key)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.log.WithField("error", err).Warn("listing cache get failed; serving from gateway")
		}

		filter := gateway.Filter{}
		if ailmentID > 0 {
			filter["ailment_id"] = ailmentID
		}
		rows, err := s.gw.Read(ctx, "remedies", filter,
			&gateway.ReadOptions{OrderBy: "created_at", Descending: true})
		if err != nil {
			return nil, err
		}

		remedies := make([]models.Remedy, 0, len(rows))
		for _, row := range rows {
			remedies = append(remedies, models.RemedyFromRow(row))
		}

		go func() {
			bg, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.SetRemedies(bg, key, remedies); err != nil {
				s.log.WithField("error", err).Warn("listing cache set failed")
			}
		}()

		return remedies, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Remedy), nil
}

// GetRemedyBySlug resolves one remedy by its URL slug.
func (s *Service) GetRemedyBySlug(ctx context.Context, remedySlug string) (models.Remedy, error) {
	rows, err := s.gw.Read(ctx, "remedies", gateway.Filter{"slug": remedySlug}, nil)
	if err != nil {
		return models.Remedy{}, err
	}
	if len(rows) == 0 {
		return models.Remedy{}, gateway.NewError(gateway.CodeNotFound, "remedy not found")
	}
	return models.RemedyFromRow(rows[0]), nil
}

// ListProducts returns the active products for a remedy (0 lists all active
// products).
func (s *Service) ListProducts(ctx context.Context, remedyID int64) ([]models.Product, error) {
	key := productListKey(remedyID)

	v, err, _ := s.sfg.Do("products:"+key, func() (interface{}, error) {
		cached, err := s.cache.GetProducts(ctx, key)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.log.WithField("error", err).Warn("listing cache get failed; serving from gateway")
		}

		filter := gateway.Filter{"status": models.ProductStatusActive}
		if remedyID > 0 {
			filter["remedy_id"] = remedyID
		}
		rows, err := s.gw.Read(ctx, "products", filter, &gateway.ReadOptions{OrderBy: "name"})
		if err != nil {
			return nil, err
		}

		products := make([]models.Product, 0, len(rows))
		for _, row := range rows {
			products = append(products, models.ProductFromRow(row))
		}

		go func() {
			bg, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.SetProducts(bg, key, products); err != nil {
				s.log.WithField("error", err).Warn("listing cache set failed")
			}
		}()

		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Product), nil
}

// GetProduct fetches one active product, for pricing a cart line.
func (s *Service) GetProduct(ctx context.Context, productID int64) (models.Product, error) {
	rows, err := s.gw.Read(ctx, "products",
		gateway.Filter{"id": productID, "status": models.ProductStatusActive}, nil)
	if err != nil {
		return models.Product{}, err
	}
	if len(rows) == 0 {
		return models.Product{}, gateway.NewError(gateway.CodeNotFound, "product not found or not active")
	}
	return models.ProductFromRow(rows[0]), nil
}

// CreateRemedy writes a new remedy with a URL slug derived from its name and
// invalidates the affected listings.
func (s *Service) CreateRemedy(ctx context.Context, name, description string, ailmentID int64) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	id, err := s.gw.Create(ctx, "remedies", gateway.Row{
		"ailment_id":  ailmentID,
		"name":        name,
		"slug":        slug.Make(name),
		"description": description,
		"likes_count": 0,
		"created_at":  now,
		"updated_at":  now,
	})
	if err != nil {
		return 0, err
	}

	for _, key := range []string{remedyListKey(0), remedyListKey(ailmentID)} {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.WithField("error", err).Warn("listing cache invalidate failed")
		}
	}
	return id, nil
}

func remedyListKey(ailmentID int64) string {
	if ailmentID <= 0 {
		return "all"
	}
	return "ailment:" + strconv.FormatInt(ailmentID, 10)
}

func productListKey(remedyID int64) string {
	if remedyID <= 0 {
		return "all"
	}
	return "remedy:" + strconv.FormatInt(remedyID, 10)
}
