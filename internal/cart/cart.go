package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Product is the slice of a catalog product the cart needs to price a line.
type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// Item is one line of the cart: at most one Item per product, quantity >= 1.
// A quantity reaching zero removes the line; it is never stored as a
// zero-quantity entry.
type Item struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Subtotal is UnitPrice * Quantity for this line.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the in-memory aggregate of the user's current selection. It is
// mutated only through the operations below and never contacts the network;
// persistence to remote cart_items rows is an explicit separate step (see
// Syncer) so rapid +/- clicks don't each cost a round-trip.
type Cart struct {
	mu    sync.Mutex
	items map[int64]*Item
	order []int64 // insertion order, for stable listings
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{items: make(map[int64]*Item)}
}

// AddItem merges qty units of the product into the cart: an existing line is
// incremented, otherwise a new line is inserted. qty values below 1 are
// treated as 1. Never fails locally; stock limits are advisory UI hints, not
// invariants of the aggregate.
func (c *Cart) AddItem(p Product, qty int) {
	if qty < 1 {
		qty = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.items[p.ID]; ok {
		existing.Quantity += qty
		return
	}

	c.items[p.ID] = &Item{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  qty,
	}
	c.order = append(c.order, p.ID)
}

// RemoveItem deletes the line for productID; removing an absent line is a
// no-op, so the operation is idempotent.
func (c *Cart) RemoveItem(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(productID)
}

func (c *Cart) removeLocked(productID int64) {
	if _, ok := c.items[productID]; !ok {
		return
	}
	delete(c.items, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// SetQuantity replaces the quantity of an existing line. qty < 1 behaves as
// RemoveItem. Setting a quantity on a product that is not in the cart is a
// no-op (there is no unit price to invent a line from).
func (c *Cart) SetQuantity(productID int64, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if qty < 1 {
		c.removeLocked(productID)
		return
	}
	if item, ok := c.items[productID]; ok {
		item.Quantity = qty
	}
}

// Total recomputes the derived sum of UnitPrice * Quantity over every line.
// It is never cached, so it cannot drift from its inputs.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.items[id])
	}
	return out
}

// Quantity returns the quantity for productID, or 0 if not in the cart.
func (c *Cart) Quantity(productID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, ok := c.items[productID]; ok {
		return item.Quantity
	}
	return 0
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear empties the cart. Called on successful checkout confirmation.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[int64]*Item)
	c.order = nil
}
