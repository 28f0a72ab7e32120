package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotItem is one frozen line, with the subtotal it was priced at.
type SnapshotItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Snapshot is the full cart state captured at the moment checkout begins.
// It is a deep copy: later mutations of the live cart do not touch it, which
// is what keeps the in-flight charge amount stable.
type Snapshot struct {
	Items       []SnapshotItem  `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CapturedAt  time.Time       `json:"captured_at"`
}

// Empty reports whether the snapshot has no lines.
func (s Snapshot) Empty() bool {
	return len(s.Items) == 0
}

// Snapshot freezes the current cart contents.
func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Items:       make([]SnapshotItem, 0, len(c.order)),
		TotalAmount: decimal.Zero,
		CapturedAt:  time.Now(),
	}
	for _, id := range c.order {
		item := c.items[id]
		sub := item.Subtotal()
		snap.Items = append(snap.Items, SnapshotItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  sub,
		})
		snap.TotalAmount = snap.TotalAmount.Add(sub)
	}
	return snap
}
