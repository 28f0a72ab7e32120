package cart

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/remedyroot/remedyroot-golang/internal/gateway"
	"github.com/remedyroot/remedyroot-golang/internal/models"
	"github.com/sirupsen/logrus"
)

const cartItemsTable = "cart_items"

// Syncer reconciles the local aggregate with the remote cart_items rows.
// Reconciliation is upsert-by-(user, product), never full replacement: rows
// another session added for a different product are left alone unless the
// local cart explicitly dropped them.
type Syncer struct {
	gw  gateway.Gateway
	log *logrus.Logger
}

func NewSyncer(gw gateway.Gateway, log *logrus.Logger) *Syncer {
	return &Syncer{gw: gw, log: log}
}

// Flush pushes the cart's current lines to the gateway. It is an explicit
// synchronization step, deliberately not wired into AddItem/SetQuantity, so
// that a burst of local edits costs one round of upserts instead of one per
// click. Partial failure returns the first error; already-applied upserts are
// not undone (the remote rows converge on the next Flush).
func (s *Syncer) Flush(ctx context.Context, userID int64, c *Cart) error {
	remote, err := s.gw.Read(ctx, cartItemsTable, gateway.Filter{"user_id": userID}, nil)
	if err != nil {
		return errors.Wrap(err, "read remote cart items")
	}

	remoteByProduct := make(map[int64]models.CartItemRow, len(remote))
	for _, row := range remote {
		item := models.CartItemFromRow(row)
		remoteByProduct[item.ProductID] = item
	}

	now := time.Now().UTC().Format(time.RFC3339)

	// Upsert every local line.
	for _, item := range c.Items() {
		existing, ok := remoteByProduct[item.ProductID]
		delete(remoteByProduct, item.ProductID)

		if ok {
			if existing.Quantity == item.Quantity {
				continue // already in sync
			}
			err := s.gw.Update(ctx, cartItemsTable,
				gateway.Filter{"user_id": userID, "product_id": item.ProductID},
				gateway.Row{"quantity": item.Quantity, "updated_at": now})
			if err != nil {
				return errors.Wrapf(err, "update cart item %d", item.ProductID)
			}
			continue
		}

		_, err := s.gw.Create(ctx, cartItemsTable, gateway.Row{
			"user_id":    userID,
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
			"created_at": now,
			"updated_at": now,
		})
		if err != nil {
			return errors.Wrapf(err, "insert cart item %d", item.ProductID)
		}
	}

	// Whatever is left remotely was removed locally.
	for productID := range remoteByProduct {
		err := s.gw.Delete(ctx, cartItemsTable,
			gateway.Filter{"user_id": userID, "product_id": productID})
		if err != nil {
			return errors.Wrapf(err, "delete cart item %d", productID)
		}
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "lines": c.Len()}).
		Debug("cart flushed to gateway")
	return nil
}

// Restore loads the remote cart_items rows into an empty cart, pricing each
// line from the products table. Rows for products that are no longer active
// are skipped (the storefront can no longer sell them).
func (s *Syncer) Restore(ctx context.Context, userID int64, c *Cart) error {
	rows, err := s.gw.Read(ctx, cartItemsTable, gateway.Filter{"user_id": userID},
		&gateway.ReadOptions{OrderBy: "created_at"})
	if err != nil {
		return errors.Wrap(err, "read remote cart items")
	}

	for _, row := range rows {
		item := models.CartItemFromRow(row)

		productRows, err := s.gw.Read(ctx, "products",
			gateway.Filter{"id": item.ProductID, "status": models.ProductStatusActive}, nil)
		if err != nil {
			return errors.Wrapf(err, "read product %d", item.ProductID)
		}
		if len(productRows) == 0 {
			s.log.WithField("product_id", item.ProductID).
				Warn("skipping cart row for inactive product")
			continue
		}

		p := models.ProductFromRow(productRows[0])
		c.AddItem(Product{ID: p.ID, Name: p.Name, Price: p.Price}, item.Quantity)
	}
	return nil
}
