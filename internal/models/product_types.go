package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product status ENUM values. Only 'active' products are sellable.
const (
	ProductStatusActive   = "active"
	ProductStatusDraft    = "draft"
	ProductStatusArchived = "archived"
)

// Product is the model for the 'products' table.
type Product struct {
	ID            int64           `json:"id" db:"id"`
	RemedyID      int64           `json:"remedyId" db:"remedy_id"`
	Name          string          `json:"name" db:"name"`
	SKU           *string         `json:"sku,omitempty" db:"sku"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stock" db:"stock_quantity"`
	Status        string          `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`

	// Join (not in the products table, populated from the remedy row)
	RemedyName string `json:"remedyName,omitempty" db:"-"`
}
