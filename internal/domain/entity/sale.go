package entity

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/josemcv/tabsync/internal/domain/enum"
)

// LocalIDPrefix marks ids assigned on-device when the remote ledger could
// not be reached; such records live in the overflow store until reconciled.
const LocalIDPrefix = "local-"

// SaleRecord is the permanent record of a completed sale. It is immutable
// after creation: Total is computed once at checkout and never recomputed.
//
// The ID is a string rather than a UUID because a sale that falls back to
// the overflow store carries a locally generated "local-" prefixed id.
type SaleRecord struct {
	ID            string             `gorm:"primaryKey;size:64" json:"id"`
	TabNumber     *int               `json:"tab_number,omitempty"`
	CustomerName  string             `gorm:"size:120" json:"customer_name,omitempty"`
	Items         []SaleItem         `gorm:"-" json:"items"`
	Total         int64              `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	PaymentMethod enum.PaymentMethod `gorm:"size:30;not null" json:"payment_method"`
	SoldAt        time.Time          `gorm:"not null" json:"sold_at"`
	DirectSale    bool               `gorm:"default:false" json:"direct_sale"`
	Courtesy      bool               `gorm:"default:false" json:"courtesy"`

	// ItemsJSON is the persisted form of Items. Remote rows store the
	// snapshot as one JSON column instead of a child table.
	ItemsJSON string `gorm:"column:items;type:text" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (s SaleRecord) MarshalJSON() ([]byte, error) {
	type Alias SaleRecord
	return json.Marshal(&struct {
		Alias
		Total float64 `json:"total"`
	}{
		Alias: Alias(s),
		Total: float64(s.Total) / 100,
	})
}

// UnmarshalJSON restores the cent total from the decimal the marshaler emits
func (s *SaleRecord) UnmarshalJSON(data []byte) error {
	type Alias SaleRecord
	aux := &struct {
		*Alias
		Total float64 `json:"total"`
	}{Alias: (*Alias)(s)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	s.Total = int64(math.Round(aux.Total * 100))
	return nil
}

// TableName returns the table name for the SaleRecord model
func (SaleRecord) TableName() string {
	return "sales"
}

// StoredLocally reports whether this record carries a locally assigned id.
func (s *SaleRecord) StoredLocally() bool {
	return strings.HasPrefix(s.ID, LocalIDPrefix)
}

// SaleItem is one line of a sale snapshot.
type SaleItem struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   int64     `json:"unit_price"` // cents
	Quantity    int       `json:"quantity"`
}

// LineTotal returns unit price times quantity, in cents.
func (i SaleItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// SaleTotal sums line totals in cents.
func SaleTotal(items []SaleItem) int64 {
	var total int64
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}
