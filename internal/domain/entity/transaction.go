package entity

import (
	"encoding/json"
	"math"
	"time"

	"github.com/josemcv/tabsync/internal/domain/enum"
)

// TransactionCategorySales is the category of every sale-derived entry.
const TransactionCategorySales = "Sales"

// Transaction is a financial ledger entry. Every non-courtesy sale produces
// exactly one income transaction; courtesy sales produce none. Entries are
// never mutated or deleted by the core.
type Transaction struct {
	ID          string               `gorm:"primaryKey;size:64" json:"id"`
	Kind        enum.TransactionKind `gorm:"default:0" json:"kind"`
	Description string               `gorm:"size:200" json:"description"`
	Amount      int64                `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Category    string               `gorm:"size:60;not null" json:"category"`
	OccurredAt  time.Time            `gorm:"not null" json:"occurred_at"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (t Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(t),
		Amount: float64(t.Amount) / 100,
	})
}

// UnmarshalJSON restores the cent amount from the decimal the marshaler emits
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type Alias Transaction
	aux := &struct {
		*Alias
		Amount float64 `json:"amount"`
	}{Alias: (*Alias)(t)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	t.Amount = int64(math.Round(aux.Amount * 100))
	return nil
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
