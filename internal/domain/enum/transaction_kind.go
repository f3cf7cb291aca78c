package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TransactionKind classifies a financial ledger entry
type TransactionKind int

const (
	TransactionKindIncome  TransactionKind = 0
	TransactionKindExpense TransactionKind = 1
)

func (k TransactionKind) String() string {
	return [...]string{"Income", "Expense"}[k]
}

func (k TransactionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *TransactionKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*k = TransactionKind(i)
		return nil
	}
	switch str {
	case "Income":
		*k = TransactionKindIncome
	case "Expense":
		*k = TransactionKindExpense
	}
	return nil
}

func (k TransactionKind) Value() (driver.Value, error) {
	return int64(k), nil
}

func (k *TransactionKind) Scan(value interface{}) error {
	if value == nil {
		*k = TransactionKindIncome
		return nil
	}
	switch v := value.(type) {
	case int64:
		*k = TransactionKind(v)
	case int:
		*k = TransactionKind(v)
	}
	return nil
}
