package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the model for the 'orders' table
type Order struct {
	ID        int64           `json:"id" db:"id"`
	UserID    int64           `json:"userId" db:"user_id"`
	Status    string          `json:"status" db:"status"` // e.g., paid, shipped
	Total     decimal.Decimal `json:"total" db:"total_amount"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// OrderItem is the model for the 'order_items' table. ProductName and
// UnitPrice are denormalized from the checkout snapshot so the history shows
// what was actually charged, even after the product changes.
type OrderItem struct {
	ID          int64           `json:"id" db:"id"`
	OrderID     int64           `json:"orderId" db:"order_id"`
	ProductID   int64           `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Quantity    int             `json:"quantity" db:"quantity"`
}
