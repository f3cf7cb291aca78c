package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josemcv/tabsync/internal/application/store"
	"github.com/josemcv/tabsync/internal/domain/entity"
	"github.com/josemcv/tabsync/internal/domain/enum"
	"github.com/josemcv/tabsync/internal/infrastructure/ledgermem"
	"github.com/josemcv/tabsync/internal/infrastructure/overflow"
	"github.com/josemcv/tabsync/internal/ledger"
)

func newRegistrar(t *testing.T) (*store.SaleRegistrar, *ledgermem.Store, *overflow.Store, *recordingSink) {
	t.Helper()
	mem := ledgermem.New()
	ov, err := overflow.New(t.TempDir())
	require.NoError(t, err)
	sink := &recordingSink{}
	return store.NewSaleRegistrar(mem, ov, sink, discardLogger()), mem, ov, sink
}

func saleItems() []entity.SaleItem {
	return []entity.SaleItem{
		{ProductID: uuid.New(), ProductName: "Burger", UnitPrice: 500, Quantity: 2},
		{ProductID: uuid.New(), ProductName: "Soda", UnitPrice: 300, Quantity: 1},
	}
}

func TestSaleRegistrar_DirectSaleProducesOneIncomeTransaction(t *testing.T) {
	ctx := context.Background()
	registrar, mem, ov, sink := newRegistrar(t)

	items := saleItems()
	total := entity.SaleTotal(items)
	require.Equal(t, int64(1300), total)

	result, err := registrar.RegisterSale(ctx, store.RegisterSaleInput{
		Items:         items,
		Total:         total,
		PaymentMethod: enum.PaymentCash,
		DirectSale:    true,
	})
	require.NoError(t, err)

	assert.False(t, result.StoredLocally)
	assert.NotEmpty(t, result.Sale.ID)
	assert.False(t, result.Sale.StoredLocally())
	assert.Equal(t, int64(1300), result.Sale.Total)
	assert.NotEmpty(t, result.TransactionID)

	require.Equal(t, 1, mem.Count(ledger.TableSales))
	txRows := mem.Rows(ledger.TableTransactions)
	require.Len(t, txRows, 1)

	amount, err := ledger.Cents(txRows[0]["amount"])
	require.NoError(t, err)
	assert.Equal(t, int64(1300), amount)
	kind, err := ledger.Int(txRows[0]["kind"])
	require.NoError(t, err)
	assert.Equal(t, int(enum.TransactionKindIncome), kind)
	assert.Equal(t, entity.TransactionCategorySales, txRows[0]["category"])

	assert.Empty(t, ov.PendingSales())
	assert.Empty(t, ov.PendingTransactions())
	assert.Equal(t, 1, sink.count(store.NoticeSaleRecorded))
}

func TestSaleRegistrar_CourtesySaleProducesNoTransaction(t *testing.T) {
	ctx := context.Background()
	registrar, mem, ov, sink := newRegistrar(t)

	items := saleItems()
	result, err := registrar.RegisterSale(ctx, store.RegisterSaleInput{
		Items:         items,
		Total:         entity.SaleTotal(items),
		PaymentMethod: enum.PaymentCourtesy,
		Courtesy:      true,
	})
	require.NoError(t, err)

	assert.Empty(t, result.TransactionID)
	assert.Equal(t, 1, mem.Count(ledger.TableSales))
	assert.Zero(t, mem.Count(ledger.TableTransactions))
	assert.Empty(t, ov.PendingTransactions())

	// Courtesy wording differs from the ordinary confirmation.
	assert.Equal(t, 1, sink.count(store.NoticeCourtesyRecorded))
	assert.Zero(t, sink.count(store.NoticeSaleRecorded))
}

func TestSaleRegistrar_RemoteFailureFallsBackLocally(t *testing.T) {
	ctx := context.Background()
	registrar, mem, ov, sink := newRegistrar(t)

	mem.FailWith("insert", ledger.TableSales, errors.New("unreachable"))

	items := saleItems()
	tabNumber := 12
	result, err := registrar.RegisterSale(ctx, store.RegisterSaleInput{
		Items:         items,
		Total:         entity.SaleTotal(items),
		PaymentMethod: enum.PaymentCard,
		TabNumber:     &tabNumber,
	})
	require.NoError(t, err)

	assert.True(t, result.StoredLocally)
	assert.True(t, strings.HasPrefix(result.Sale.ID, entity.LocalIDPrefix))

	pending := ov.PendingSales()
	require.Len(t, pending, 1)
	assert.Equal(t, result.Sale.ID, pending[0].ID)
	assert.Equal(t, int64(1300), pending[0].Total)

	// Once the sale is local its financial half travels with it.
	assert.Zero(t, mem.Count(ledger.TableTransactions))
	pendingTx := ov.PendingTransactions()
	require.Len(t, pendingTx, 1)
	assert.Equal(t, int64(1300), pendingTx[0].Amount)
	assert.True(t, strings.HasPrefix(pendingTx[0].ID, entity.LocalIDPrefix))

	// The user still sees a success: the guarantee is "recorded
	// somewhere", not "recorded remotely".
	assert.Equal(t, 1, sink.count(store.NoticeSaleRecorded))
}

func TestSaleRegistrar_TransactionFallsBackIndependently(t *testing.T) {
	ctx := context.Background()
	registrar, mem, ov, _ := newRegistrar(t)

	mem.FailWith("insert", ledger.TableTransactions, errors.New("unreachable"))

	items := saleItems()
	result, err := registrar.RegisterSale(ctx, store.RegisterSaleInput{
		Items:         items,
		Total:         entity.SaleTotal(items),
		PaymentMethod: enum.PaymentCash,
	})
	require.NoError(t, err)

	assert.False(t, result.StoredLocally)
	assert.Equal(t, 1, mem.Count(ledger.TableSales))
	assert.Empty(t, ov.PendingSales())

	require.Len(t, ov.PendingTransactions(), 1)
	assert.True(t, strings.HasPrefix(result.TransactionID, entity.LocalIDPrefix))
}

func TestSaleRegistrar_DoubleFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	mem := ledgermem.New()
	mem.FailWith("insert", ledger.TableSales, errors.New("unreachable"))

	// Break the overflow store by replacing its directory with a file.
	dir := filepath.Join(t.TempDir(), "overflow")
	ov, err := overflow.New(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("not a directory"), 0o600))

	registrar := store.NewSaleRegistrar(mem, ov, &recordingSink{}, discardLogger())

	items := saleItems()
	_, err = registrar.RegisterSale(ctx, store.RegisterSaleInput{
		Items:         items,
		Total:         entity.SaleTotal(items),
		PaymentMethod: enum.PaymentCash,
	})
	require.Error(t, err)
}

func TestSaleRegistrar_SnapshotIsDetachedFromInput(t *testing.T) {
	ctx := context.Background()
	registrar, _, _, _ := newRegistrar(t)

	items := saleItems()
	result, err := registrar.RegisterSale(ctx, store.RegisterSaleInput{
		Items:         items,
		Total:         entity.SaleTotal(items),
		PaymentMethod: enum.PaymentCash,
	})
	require.NoError(t, err)

	items[0].Quantity = 99
	assert.Equal(t, 2, result.Sale.Items[0].Quantity)
}
