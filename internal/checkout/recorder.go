package checkout

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/remedyroot/remedyroot-golang/internal/cart"
	"github.com/remedyroot/remedyroot-golang/internal/gateway"
)

// GatewayRecorder writes the order and its line items to the Remote Data
// Gateway after a confirmed charge. Unit prices come from the frozen
// snapshot, not the live catalog, so the order records what was actually
// charged.
type GatewayRecorder struct {
	gw gateway.Gateway
}

func NewGatewayRecorder(gw gateway.Gateway) *GatewayRecorder {
	return &GatewayRecorder{gw: gw}
}

func (r *GatewayRecorder) RecordOrder(ctx context.Context, userID int64, snapshot cart.Snapshot) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	orderID, err := r.gw.Create(ctx, "orders", gateway.Row{
		"user_id":      userID,
		"status":       "paid",
		"total_amount": snapshot.TotalAmount.StringFixed(2),
		"created_at":   now,
	})
	if err != nil {
		return 0, errors.Wrap(err, "create order")
	}

	for _, item := range snapshot.Items {
		_, err := r.gw.Create(ctx, "order_items", gateway.Row{
			"order_id":     orderID,
			"product_id":   item.ProductID,
			"product_name": item.Name,
			"quantity":     item.Quantity,
			"unit_price":   item.UnitPrice.StringFixed(2),
		})
		if err != nil {
			return orderID, errors.Wrapf(err, "create order item %d", item.ProductID)
		}
	}

	return orderID, nil
}
