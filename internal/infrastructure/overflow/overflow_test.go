package overflow_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josemcv/tabsync/internal/domain/entity"
	"github.com/josemcv/tabsync/internal/domain/enum"
	"github.com/josemcv/tabsync/internal/infrastructure/overflow"
)

func TestStore_AppendAndReadBack(t *testing.T) {
	ov, err := overflow.New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, ov.AppendSale(entity.SaleRecord{
		ID:            "local-abc",
		Total:         1300,
		PaymentMethod: enum.PaymentCash,
	}))
	require.NoError(t, ov.AppendSale(entity.SaleRecord{
		ID:            "local-def",
		Total:         250,
		PaymentMethod: enum.PaymentCard,
	}))

	pending := ov.PendingSales()
	require.Len(t, pending, 2)
	assert.Equal(t, "local-abc", pending[0].ID)
	assert.Equal(t, int64(1300), pending[0].Total)
	assert.Equal(t, int64(250), pending[1].Total)

	// Buckets are independent.
	assert.Empty(t, ov.PendingTransactions())
}

func TestStore_CorruptBucketReadsAsEmpty(t *testing.T) {
	dir := t.TempDir()
	ov, err := overflow.New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "pending_sales.json"), []byte("{{{ not json"), 0o600))

	assert.Empty(t, ov.PendingSales())

	// The next append rewrites the bucket from scratch.
	require.NoError(t, ov.AppendSale(entity.SaleRecord{ID: "local-xyz", Total: 100}))
	require.Len(t, ov.PendingSales(), 1)
}

func TestStore_AppendTransaction(t *testing.T) {
	ov, err := overflow.New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, ov.AppendTransaction(entity.Transaction{
		ID:       "local-tx",
		Kind:     enum.TransactionKindIncome,
		Amount:   1300,
		Category: entity.TransactionCategorySales,
	}))

	pending := ov.PendingTransactions()
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1300), pending[0].Amount)
	assert.Equal(t, enum.TransactionKindIncome, pending[0].Kind)
}

func TestStore_MissingDirIsCreated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "overflow")
	ov, err := overflow.New(dir)
	require.NoError(t, err)

	assert.Empty(t, ov.PendingSales())
	require.NoError(t, ov.AppendSale(entity.SaleRecord{ID: "local-1"}))
}
