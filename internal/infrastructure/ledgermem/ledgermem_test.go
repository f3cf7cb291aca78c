package ledgermem_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josemcv/tabsync/internal/infrastructure/ledgermem"
	"github.com/josemcv/tabsync/internal/ledger"
)

func TestStore_InsertAssignsIDAndCreatedAt(t *testing.T) {
	mem := ledgermem.New()
	ctx := context.Background()

	stored, err := mem.Insert(ctx, ledger.TableTabs, ledger.Row{"number": 5, "status": 0})
	require.NoError(t, err)

	id, ok := stored["id"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.NotNil(t, stored["created_at"])
	assert.Equal(t, 1, mem.Count(ledger.TableTabs))
}

func TestStore_SelectFiltersAndOrders(t *testing.T) {
	mem := ledgermem.New()
	ctx := context.Background()

	for i, number := range []int{3, 1, 2} {
		_, err := mem.Insert(ctx, ledger.TableTabs, ledger.Row{
			"number":     number,
			"status":     0,
			"created_at": time.Date(2026, 8, 1, 12, i, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
	_, err := mem.Insert(ctx, ledger.TableTabs, ledger.Row{"number": 9, "status": 1})
	require.NoError(t, err)

	open, err := mem.Select(ctx, ledger.TableTabs, ledger.Row{"status": 0}, "created_at desc")
	require.NoError(t, err)
	require.Len(t, open, 3)
	assert.Equal(t, int64(2), open[0]["number"])
	assert.Equal(t, int64(1), open[1]["number"])
	assert.Equal(t, int64(3), open[2]["number"])
}

func TestStore_FilterMatchesAcrossValueKinds(t *testing.T) {
	mem := ledgermem.New()
	ctx := context.Background()

	tabID := uuid.New()
	_, err := mem.Insert(ctx, ledger.TableTabItems, ledger.Row{
		"tab_id":   tabID,
		"quantity": 2,
	})
	require.NoError(t, err)

	// Rows stored with uuid.UUID match string filters and vice versa.
	rows, err := mem.Select(ctx, ledger.TableTabItems, ledger.Row{"tab_id": tabID.String()}, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rows, err = mem.Select(ctx, ledger.TableTabItems, ledger.Row{"quantity": int64(2)}, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestStore_UpdateAndDelete(t *testing.T) {
	mem := ledgermem.New()
	ctx := context.Background()

	stored, err := mem.Insert(ctx, ledger.TableTabs, ledger.Row{"number": 1, "status": 0})
	require.NoError(t, err)
	_, err = mem.Insert(ctx, ledger.TableTabs, ledger.Row{"number": 2, "status": 0})
	require.NoError(t, err)

	require.NoError(t, mem.Update(ctx, ledger.TableTabs, ledger.Row{"id": stored["id"]}, ledger.Row{"status": 1}))

	rows, err := mem.Select(ctx, ledger.TableTabs, ledger.Row{"id": stored["id"]}, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0]["status"])

	require.NoError(t, mem.Delete(ctx, ledger.TableTabs, ledger.Row{"id": stored["id"]}))
	assert.Equal(t, 1, mem.Count(ledger.TableTabs))
}

func TestStore_SelectReturnsCopies(t *testing.T) {
	mem := ledgermem.New()
	ctx := context.Background()

	_, err := mem.Insert(ctx, ledger.TableTabs, ledger.Row{"number": 1})
	require.NoError(t, err)

	rows, err := mem.Select(ctx, ledger.TableTabs, nil, "")
	require.NoError(t, err)
	rows[0]["number"] = int64(99)

	again, err := mem.Select(ctx, ledger.TableTabs, nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), again[0]["number"])
}

func TestStore_FailureInjection(t *testing.T) {
	mem := ledgermem.New()
	ctx := context.Background()
	boom := errors.New("connection refused")

	mem.FailWith("select", ledger.TableTabs, boom)
	_, err := mem.Select(ctx, ledger.TableTabs, nil, "")
	assert.ErrorIs(t, err, boom)

	// Other tables are unaffected.
	_, err = mem.Select(ctx, ledger.TableSales, nil, "")
	assert.NoError(t, err)

	// An empty table matches every table for that op.
	mem.FailWith("insert", "", boom)
	_, err = mem.Insert(ctx, ledger.TableSales, ledger.Row{})
	assert.ErrorIs(t, err, boom)

	mem.ClearFailures()
	_, err = mem.Select(ctx, ledger.TableTabs, nil, "")
	assert.NoError(t, err)
}

func TestStore_RejectsUnknownColumns(t *testing.T) {
	mem := ledgermem.New()
	ctx := context.Background()

	// The sales table has no created_at; postgres rejects the column and
	// the simulation must too.
	_, err := mem.Insert(ctx, ledger.TableSales, ledger.Row{
		"total":      int64(100),
		"created_at": time.Now(),
	})
	require.Error(t, err)
	assert.Zero(t, mem.Count(ledger.TableSales))

	_, err = mem.Insert(ctx, ledger.TableTabs, ledger.Row{"number": 1})
	require.NoError(t, err)
	err = mem.Update(ctx, ledger.TableTabs, ledger.Row{"number": 1}, ledger.Row{"color": "red"})
	require.Error(t, err)
}

func TestStore_CreatedAtBackfillFollowsSchema(t *testing.T) {
	mem := ledgermem.New()
	ctx := context.Background()

	stored, err := mem.Insert(ctx, ledger.TableSales, ledger.Row{
		"total":          int64(1300),
		"payment_method": "cash",
		"sold_at":        time.Now().UTC(),
	})
	require.NoError(t, err)
	_, has := stored["created_at"]
	assert.False(t, has)

	stored, err = mem.Insert(ctx, ledger.TableTabs, ledger.Row{"number": 2})
	require.NoError(t, err)
	assert.NotNil(t, stored["created_at"])
}

func TestStore_ChangesIsNil(t *testing.T) {
	assert.Nil(t, ledgermem.New().Changes())
}
