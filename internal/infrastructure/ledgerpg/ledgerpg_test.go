package ledgerpg

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josemcv/tabsync/internal/domain/entity"
	"github.com/josemcv/tabsync/internal/domain/enum"
	"github.com/josemcv/tabsync/internal/ledger"
)

func TestNewRow_SalesCarryNoCreatedAt(t *testing.T) {
	row, err := ledger.SaleRow(entity.SaleRecord{
		Total:         1300,
		PaymentMethod: enum.PaymentCash,
		SoldAt:        time.Now().UTC(),
	})
	require.NoError(t, err)

	stored := newRow(ledger.TableSales, row)

	// The sales table timestamps with sold_at; an extra created_at key
	// would make the generated INSERT fail on an unknown column.
	_, has := stored["created_at"]
	assert.False(t, has)

	id, ok := stored["id"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
}

func TestNewRow_TransactionsCarryNoCreatedAt(t *testing.T) {
	stored := newRow(ledger.TableTransactions, ledger.TransactionRow(entity.Transaction{
		Kind:       enum.TransactionKindIncome,
		Amount:     1300,
		Category:   entity.TransactionCategorySales,
		OccurredAt: time.Now().UTC(),
	}))

	_, has := stored["created_at"]
	assert.False(t, has)
	assert.NotEmpty(t, stored["id"])
}

func TestNewRow_TabsBackfillCreatedAt(t *testing.T) {
	stored := newRow(ledger.TableTabs, ledger.NewTabRow(1, "Ana"))

	assert.NotNil(t, stored["created_at"])
	_, err := uuid.Parse(stored["id"].(string))
	require.NoError(t, err)
}

func TestNewRow_KeepsProvidedID(t *testing.T) {
	stored := newRow(ledger.TableSales, ledger.Row{"id": "local-abc", "total": int64(100)})
	assert.Equal(t, "local-abc", stored["id"])
}
