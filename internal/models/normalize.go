package models

import (
	"encoding/json"
	"time"

	"github.com/remedyroot/remedyroot-golang/internal/gateway"
	"github.com/shopspring/decimal"
)

// The gateway hands rows back as loosely typed maps, and joined fields can
// arrive either as a single object or as a one-element array depending on how
// the query was written. Everything is normalized here, at the adapter
// boundary, so that cart/checkout/like logic only ever sees the fixed shapes
// defined in this package.

// NormalizeJoined flattens a joined field into a plain row. A one-element
// array collapses to its element; anything else that is not an object
// normalizes to nil.
func NormalizeJoined(v any) gateway.Row {
	switch t := v.(type) {
	case map[string]any:
		return gateway.Row(t)
	case gateway.Row:
		return t
	case []any:
		if len(t) == 1 {
			return NormalizeJoined(t[0])
		}
		return nil
	default:
		return nil
	}
}

// RowString reads a string column, tolerating absent and null values.
func RowString(r gateway.Row, key string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

// RowInt64 reads an integer column. JSON transports decode numbers as
// float64 or json.Number; SQL transports may produce int64 or []byte.
func RowInt64(r gateway.Row, key string) int64 {
	switch t := r[key].(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case json.Number:
		n, _ := t.Int64()
		return n
	case []byte:
		n, _ := decimal.NewFromString(string(t))
		return n.IntPart()
	case string:
		n, _ := decimal.NewFromString(t)
		return n.IntPart()
	default:
		return 0
	}
}

// RowInt reads an int column via RowInt64.
func RowInt(r gateway.Row, key string) int {
	return int(RowInt64(r, key))
}

// RowBool reads a boolean column; MySQL returns TINYINT(1) as an integer.
func RowBool(r gateway.Row, key string) bool {
	switch t := r[key].(type) {
	case bool:
		return t
	default:
		return RowInt64(r, key) != 0
	}
}

// RowDecimal reads a money column. Decimals travel as strings where the
// transport allows it so no float precision is lost.
func RowDecimal(r gateway.Row, key string) decimal.Decimal {
	switch t := r[key].(type) {
	case string:
		d, err := decimal.NewFromString(t)
		if err == nil {
			return d
		}
	case []byte:
		d, err := decimal.NewFromString(string(t))
		if err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(t)
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err == nil {
			return d
		}
	}
	return decimal.Zero
}

// RowTime reads a timestamp column (RFC3339 strings or time.Time).
func RowTime(r gateway.Row, key string) time.Time {
	switch t := r[key].(type) {
	case time.Time:
		return t
	case string:
		ts, err := time.Parse(time.RFC3339, t)
		if err == nil {
			return ts
		}
	}
	return time.Time{}
}

// ProductFromRow converts a gateway row (optionally carrying a joined remedy)
// into a Product.
func ProductFromRow(r gateway.Row) Product {
	p := Product{
		ID:            RowInt64(r, "id"),
		RemedyID:      RowInt64(r, "remedy_id"),
		Name:          RowString(r, "name"),
		Price:         RowDecimal(r, "price"),
		StockQuantity: RowInt(r, "stock_quantity"),
		Status:        RowString(r, "status"),
		CreatedAt:     RowTime(r, "created_at"),
		UpdatedAt:     RowTime(r, "updated_at"),
	}
	if sku := RowString(r, "sku"); sku != "" {
		p.SKU = &sku
	}
	if joined := NormalizeJoined(r["remedy"]); joined != nil {
		p.RemedyName = RowString(joined, "name")
	}
	return p
}

// RemedyFromRow converts a gateway row into a Remedy.
func RemedyFromRow(r gateway.Row) Remedy {
	return Remedy{
		ID:          RowInt64(r, "id"),
		AilmentID:   RowInt64(r, "ailment_id"),
		Name:        RowString(r, "name"),
		Slug:        RowString(r, "slug"),
		Description: RowString(r, "description"),
		LikesCount:  RowInt64(r, "likes_count"),
		CreatedAt:   RowTime(r, "created_at"),
		UpdatedAt:   RowTime(r, "updated_at"),
	}
}

// AilmentFromRow converts a gateway row into an Ailment.
func AilmentFromRow(r gateway.Row) Ailment {
	return Ailment{
		ID:          RowInt64(r, "id"),
		Name:        RowString(r, "name"),
		Slug:        RowString(r, "slug"),
		Description: RowString(r, "description"),
		CreatedAt:   RowTime(r, "created_at"),
	}
}

// OrderFromRow converts a gateway row into an Order.
func OrderFromRow(r gateway.Row) Order {
	return Order{
		ID:        RowInt64(r, "id"),
		UserID:    RowInt64(r, "user_id"),
		Status:    RowString(r, "status"),
		Total:     RowDecimal(r, "total_amount"),
		CreatedAt: RowTime(r, "created_at"),
	}
}

// OrderItemFromRow converts a gateway row into an OrderItem.
func OrderItemFromRow(r gateway.Row) OrderItem {
	return OrderItem{
		ID:          RowInt64(r, "id"),
		OrderID:     RowInt64(r, "order_id"),
		ProductID:   RowInt64(r, "product_id"),
		ProductName: RowString(r, "product_name"),
		UnitPrice:   RowDecimal(r, "unit_price"),
		Quantity:    RowInt(r, "quantity"),
	}
}

// CartItemFromRow converts a gateway row into a CartItemRow.
func CartItemFromRow(r gateway.Row) CartItemRow {
	return CartItemRow{
		ID:        RowInt64(r, "id"),
		UserID:    RowInt64(r, "user_id"),
		ProductID: RowInt64(r, "product_id"),
		Quantity:  RowInt(r, "quantity"),
		CreatedAt: RowTime(r, "created_at"),
		UpdatedAt: RowTime(r, "updated_at"),
	}
}
