package checkout

import (
	"context"
	"testing"

	"github.com/remedyroot/remedyroot-golang/internal/cart"
	"github.com/remedyroot/remedyroot-golang/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rowStore struct {
	created map[string][]gateway.Row
	nextID  int64
}

func (s *rowStore) Create(_ context.Context, table string, fields gateway.Row) (int64, error) {
	if s.created == nil {
		s.created = make(map[string][]gateway.Row)
	}
	s.nextID++
	s.created[table] = append(s.created[table], fields)
	return s.nextID, nil
}

func (s *rowStore) Read(context.Context, string, gateway.Filter, *gateway.ReadOptions) ([]gateway.Row, error) {
	return nil, nil
}
func (s *rowStore) Update(context.Context, string, gateway.Filter, gateway.Row) error { return nil }
func (s *rowStore) Delete(context.Context, string, gateway.Filter) error              { return nil }
func (s *rowStore) Count(context.Context, string, gateway.Filter) (int64, error)      { return 0, nil }

func TestRecordOrder_WritesOrderAndItemsFromSnapshot(t *testing.T) {
	store := &rowStore{}
	rec := NewGatewayRecorder(store)

	c := cart.New()
	c.AddItem(cart.Product{ID: 1, Name: "A", Price: money("10.00")}, 2)
	c.AddItem(cart.Product{ID: 2, Name: "B", Price: money("5.00")}, 1)
	snap := c.Snapshot()

	orderID, err := rec.RecordOrder(context.Background(), 7, snap)
	require.NoError(t, err)
	assert.Equal(t, int64(1), orderID)

	require.Len(t, store.created["orders"], 1)
	order := store.created["orders"][0]
	assert.Equal(t, "25.00", order["total_amount"])
	assert.Equal(t, int64(7), order["user_id"])
	assert.Equal(t, "paid", order["status"])

	items := store.created["order_items"]
	require.Len(t, items, 2)
	assert.Equal(t, "10.00", items[0]["unit_price"], "unit price comes from the frozen snapshot")
	assert.Equal(t, "A", items[0]["product_name"])
	assert.Equal(t, 2, items[0]["quantity"])
}
