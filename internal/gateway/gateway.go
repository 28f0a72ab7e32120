package gateway

import "context"

// The Remote Data Gateway is the row-oriented data service backing every
// persisted entity (products, cart_items, orders, order_items, remedy_likes,
// remedies, ailments, notifications). This package owns only the boundary:
// the interface, the filter/ordering vocabulary, and the error taxonomy.
// Implementations live in the rest and mysql subpackages.

// Row is a single record as the gateway returns it. Values are whatever the
// transport decoded (strings, float64, int64, nested maps); callers convert
// through internal/models before any business logic sees them.
type Row map[string]any

// Filter matches rows by column equality. An empty filter matches all rows.
type Filter map[string]any

// ReadOptions controls ordering and paging for Read calls.
type ReadOptions struct {
	OrderBy    string
	Descending bool
	Limit      int
}

// Gateway is the consumed capability. Every call is an asynchronous boundary;
// callers must pass a context with a deadline if they cannot wait forever.
type Gateway interface {
	Create(ctx context.Context, table string, fields Row) (int64, error)
	Read(ctx context.Context, table string, filter Filter, opts *ReadOptions) ([]Row, error)
	Update(ctx context.Context, table string, filter Filter, fields Row) error
	Delete(ctx context.Context, table string, filter Filter) error
	Count(ctx context.Context, table string, filter Filter) (int64, error)
}
