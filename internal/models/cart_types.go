package models

import "time"

// CartItemRow is the model for the 'cart_items' table. The remote rows are
// keyed by (user_id, product_id); the local cart aggregate reconciles against
// them with upsert semantics, never full replacement.
type CartItemRow struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	ProductID int64     `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
