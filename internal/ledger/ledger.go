package ledger

import "context"

// Table names the core reads and writes.
const (
	TableTabs         = "tabs"
	TableTabItems     = "tab_items"
	TableSales        = "sales"
	TableTransactions = "transactions"
)

// tableColumns mirrors the migrated schema of each core table. The
// postgres backend consults it for the fields it may assign; the simulation
// rejects writes outside it the way postgres rejects unknown columns.
// Sales and transactions carry their own timestamps (sold_at, occurred_at)
// and have no created_at.
var tableColumns = map[string]map[string]bool{
	TableTabs:         columnSet("id", "number", "customer_name", "status", "created_at"),
	TableTabItems:     columnSet("id", "tab_id", "product_id", "product_name", "unit_price", "quantity", "created_at"),
	TableSales:        columnSet("id", "tab_number", "customer_name", "items", "total", "payment_method", "sold_at", "direct_sale", "courtesy"),
	TableTransactions: columnSet("id", "kind", "description", "amount", "category", "occurred_at"),
}

func columnSet(cols ...string) map[string]bool {
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set
}

// HasColumn reports whether table's schema carries column.
func HasColumn(table, column string) bool {
	return tableColumns[table][column]
}

// Row is a loosely typed remote row. Values cross this boundary untyped;
// the adapter in this package coerces them into entities.
type Row map[string]any

// Ledger is the generic query/mutation seam over the authoritative backend.
// Any non-nil error is treated as a failure; callers never inspect error
// codes beyond logging them.
type Ledger interface {
	// Select returns the rows of table matching filter (nil matches all),
	// ordered by orderBy when non-empty (e.g. "created_at desc").
	Select(ctx context.Context, table string, filter Row, orderBy string) ([]Row, error)

	// Insert stores row and returns it with backend-assigned fields (id,
	// created_at) filled in.
	Insert(ctx context.Context, table string, row Row) (Row, error)

	// Update applies changes to every row matching filter.
	Update(ctx context.Context, table string, filter Row, changes Row) error

	// Delete removes every row matching filter.
	Delete(ctx context.Context, table string, filter Row) error

	// Changes returns the backend's change feed, or nil when the backend
	// has none (the local simulation); a nil feed leaves sync inert.
	Changes() ChangeFeed

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// ChangeEvent is an opaque change notification. Only the table name is
// carried; consumers reload rather than diff payloads.
type ChangeEvent struct {
	Table string
}

// ChangeFeed delivers change events for a set of tables.
type ChangeFeed interface {
	// Subscribe registers fn for events on the given tables and returns an
	// unsubscribe function. The unsubscribe function never panics and may
	// be called more than once.
	Subscribe(ctx context.Context, tables []string, fn func(ChangeEvent)) (func(), error)
}
