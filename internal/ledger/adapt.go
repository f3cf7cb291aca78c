package ledger

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/josemcv/tabsync/internal/domain/entity"
	"github.com/josemcv/tabsync/internal/domain/enum"
)

// Row->entity mapping lives here and only here. Remote rows are loosely
// typed: numeric columns may arrive as int64, float64, json.Number or
// strings depending on the backend and the path the row travelled, so every
// amount goes through Cents and every count through Int.

// Cents coerces an untyped amount-in-cents value to int64.
func Cents(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		return int64(math.Round(n)), nil
	case float32:
		return int64(math.Round(float64(n))), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("amount %q is not numeric", n.String())
		}
		return int64(math.Round(f)), nil
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("amount %q is not numeric", n)
		}
		return int64(math.Round(f)), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("amount has unsupported type %T", v)
	}
}

// Int coerces an untyped count value to int.
func Int(v any) (int, error) {
	c, err := Cents(v)
	return int(c), err
}

func stringOf(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func uuidOf(v any) (uuid.UUID, error) {
	switch id := v.(type) {
	case uuid.UUID:
		return id, nil
	case string:
		return uuid.Parse(id)
	case [16]byte:
		return uuid.UUID(id), nil
	case nil:
		return uuid.Nil, fmt.Errorf("missing id")
	default:
		return uuid.Parse(fmt.Sprint(v))
	}
}

func timeOf(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// TabFromRow maps a tabs row to a Tab without its items.
func TabFromRow(r Row) (entity.Tab, error) {
	id, err := uuidOf(r["id"])
	if err != nil {
		return entity.Tab{}, fmt.Errorf("tab row: %w", err)
	}
	number, err := Int(r["number"])
	if err != nil {
		return entity.Tab{}, fmt.Errorf("tab %s: %w", id, err)
	}
	status, err := Int(r["status"])
	if err != nil {
		return entity.Tab{}, fmt.Errorf("tab %s: %w", id, err)
	}
	return entity.Tab{
		ID:           id,
		Number:       number,
		CustomerName: stringOf(r["customer_name"]),
		Status:       enum.TabStatus(status),
		CreatedAt:    timeOf(r["created_at"]),
	}, nil
}

// TabItemFromRow maps a tab_items row to a TabItem.
func TabItemFromRow(r Row) (entity.TabItem, error) {
	id, err := uuidOf(r["id"])
	if err != nil {
		return entity.TabItem{}, fmt.Errorf("tab item row: %w", err)
	}
	tabID, err := uuidOf(r["tab_id"])
	if err != nil {
		return entity.TabItem{}, fmt.Errorf("tab item %s: %w", id, err)
	}
	productID, err := uuidOf(r["product_id"])
	if err != nil {
		return entity.TabItem{}, fmt.Errorf("tab item %s: %w", id, err)
	}
	price, err := Cents(r["unit_price"])
	if err != nil {
		return entity.TabItem{}, fmt.Errorf("tab item %s: %w", id, err)
	}
	qty, err := Int(r["quantity"])
	if err != nil {
		return entity.TabItem{}, fmt.Errorf("tab item %s: %w", id, err)
	}
	return entity.TabItem{
		ID:          id,
		TabID:       tabID,
		ProductID:   productID,
		ProductName: stringOf(r["product_name"]),
		UnitPrice:   price,
		Quantity:    qty,
		CreatedAt:   timeOf(r["created_at"]),
	}, nil
}

// NewTabRow builds the row for a freshly created tab. The backend assigns
// id and created_at.
func NewTabRow(number int, customerName string) Row {
	return Row{
		"number":        number,
		"customer_name": customerName,
		"status":        int(enum.TabStatusOpen),
	}
}

// NewItemRow builds the row for a freshly added line.
func NewItemRow(tabID, productID uuid.UUID, productName string, unitPrice int64) Row {
	return Row{
		"tab_id":       tabID.String(),
		"product_id":   productID.String(),
		"product_name": productName,
		"unit_price":   unitPrice,
		"quantity":     1,
	}
}

// SaleRow maps a SaleRecord to its remote row. The item snapshot is stored
// as one JSON column. The id is omitted when empty so the backend assigns it.
func SaleRow(s entity.SaleRecord) (Row, error) {
	items, err := json.Marshal(s.Items)
	if err != nil {
		return nil, fmt.Errorf("encoding sale items: %w", err)
	}
	r := Row{
		"customer_name":  s.CustomerName,
		"items":          string(items),
		"total":          s.Total,
		"payment_method": string(s.PaymentMethod),
		"sold_at":        s.SoldAt,
		"direct_sale":    s.DirectSale,
		"courtesy":       s.Courtesy,
	}
	if s.TabNumber != nil {
		r["tab_number"] = *s.TabNumber
	}
	if s.ID != "" {
		r["id"] = s.ID
	}
	return r, nil
}

// TransactionRow maps a Transaction to its remote row.
func TransactionRow(t entity.Transaction) Row {
	r := Row{
		"kind":        int(t.Kind),
		"description": t.Description,
		"amount":      t.Amount,
		"category":    t.Category,
		"occurred_at": t.OccurredAt,
	}
	if t.ID != "" {
		r["id"] = t.ID
	}
	return r
}
