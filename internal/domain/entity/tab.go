package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/josemcv/tabsync/internal/domain/enum"
	"gorm.io/gorm"
)

// Tab is an open running bill accumulating line items before payment.
// Number is unique among open tabs only; a closed tab's number is reusable.
type Tab struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Number       int            `gorm:"not null;index" json:"number"`
	CustomerName string         `gorm:"size:120" json:"customer_name,omitempty"`
	Status       enum.TabStatus `gorm:"default:0;index" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`

	Items []TabItem `gorm:"foreignKey:TabID;constraint:OnDelete:CASCADE" json:"items"`
}

// BeforeCreate generates a UUID before creating a new tab
func (t *Tab) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Tab model
func (Tab) TableName() string {
	return "tabs"
}

// IsOpen reports whether the tab still accepts items.
func (t *Tab) IsOpen() bool {
	return t.Status == enum.TabStatusOpen
}

// Total returns the running total in cents.
func (t *Tab) Total() int64 {
	var total int64
	for _, item := range t.Items {
		total += item.LineTotal()
	}
	return total
}

// MarshalJSON custom marshaler adding the running total as a decimal
func (t Tab) MarshalJSON() ([]byte, error) {
	type Alias Tab
	return json.Marshal(&struct {
		Alias
		Total float64 `json:"total"`
	}{
		Alias: Alias(t),
		Total: float64(t.Total()) / 100,
	})
}

// TabItem is a line on a tab. ProductName and UnitPrice are snapshots taken
// when the line was added; later catalog price changes never touch them.
type TabItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TabID       uuid.UUID `gorm:"type:uuid;not null;index" json:"tab_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string    `gorm:"size:120;not null" json:"product_name"`
	UnitPrice   int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (i TabItem) MarshalJSON() ([]byte, error) {
	type Alias TabItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		LineTotal float64 `json:"line_total"`
	}{
		Alias:     Alias(i),
		UnitPrice: float64(i.UnitPrice) / 100,
		LineTotal: float64(i.LineTotal()) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new tab item
func (i *TabItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the TabItem model
func (TabItem) TableName() string {
	return "tab_items"
}

// LineTotal returns unit price times quantity, in cents.
func (i *TabItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// Product reconstructs a catalog reference from the stored snapshot. The
// result carries the add-time price, never the live catalog price.
func (i *TabItem) Product() Product {
	return Product{
		ID:        i.ProductID,
		Name:      i.ProductName,
		UnitPrice: i.UnitPrice,
	}
}
