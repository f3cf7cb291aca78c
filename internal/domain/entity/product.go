package entity

import "github.com/google/uuid"

// Product is a read-only reference from the catalog. The core never writes
// products and never re-joins stored snapshots against the live catalog.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	UnitPrice   int64     `json:"unit_price"` // cents
	StockCount  int       `json:"stock_count"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory,omitempty"`
}
