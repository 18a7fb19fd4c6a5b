package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posdemo/backend/internal/domain"
	"posdemo/backend/internal/store"
)

func draft(name string, price int64, stock int, category string) domain.ItemDraft {
	return domain.ItemDraft{
		Name:     name,
		Price:    decimal.NewFromInt(price),
		Stock:    stock,
		VAT:      decimal.NewFromInt(16),
		Category: category,
	}
}

func TestAddAssignsFreshIDsInOrder(t *testing.T) {
	inv := New(nil)

	a, err := inv.Add(draft("Cable", 1200, 3, "Accessories"))
	require.NoError(t, err)
	b, err := inv.Add(draft("Mouse", 2500, 2, "Accessories"))
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)

	items := inv.List()
	require.Len(t, items, 2)
	assert.Equal(t, "Cable", items[0].Name)
	assert.Equal(t, "Mouse", items[1].Name)
}

func TestAddRejectsInvalidDraftWithoutMutation(t *testing.T) {
	inv := New(nil)

	_, err := inv.Add(draft("", 0, -1, ""))
	assert.ErrorIs(t, err, store.ErrValidation)
	assert.Equal(t, 0, inv.Len())
}

func TestUpdatePreservesIDAndPosition(t *testing.T) {
	inv := NewSeeded()

	updated, err := inv.Update("3", draft("USB-C Cable 2m", 1500, 10, "Cables"))
	require.NoError(t, err)
	assert.Equal(t, "3", updated.ID)

	items := inv.List()
	assert.Equal(t, "3", items[2].ID)
	assert.Equal(t, "USB-C Cable 2m", items[2].Name)
	assert.Equal(t, 10, items[2].Stock)
}

func TestUpdateUnknownItem(t *testing.T) {
	inv := NewSeeded()

	_, err := inv.Update("missing", draft("X", 1, 1, "Y"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteRemovesItem(t *testing.T) {
	inv := NewSeeded()

	require.NoError(t, inv.Delete("1"))
	_, err := inv.Get("1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, inv.Delete("1"), store.ErrNotFound)
}

func TestDecrementStockNeverGoesNegative(t *testing.T) {
	inv := NewSeeded()

	require.NoError(t, inv.DecrementStock("4", 1))
	require.NoError(t, inv.DecrementStock("4", 1))
	assert.ErrorIs(t, inv.DecrementStock("4", 1), store.ErrInsufficientStock)

	stock, err := inv.Stock("4")
	require.NoError(t, err)
	assert.Equal(t, 0, stock)

	for _, item := range inv.List() {
		assert.GreaterOrEqual(t, item.Stock, 0)
	}
}

func TestDecrementStockRejectsNonPositiveQty(t *testing.T) {
	inv := NewSeeded()

	assert.ErrorIs(t, inv.DecrementStock("1", 0), store.ErrValidation)
}

func TestDecrementAllIsAllOrNothing(t *testing.T) {
	inv := NewSeeded()

	err := inv.DecrementAll([]domain.StockAdjustment{
		{ItemID: "1", Qty: 5},
		{ItemID: "3", Qty: 4},
	})
	assert.ErrorIs(t, err, store.ErrInsufficientStock)

	laptop, _ := inv.Get("1")
	cable, _ := inv.Get("3")
	assert.Equal(t, 15, laptop.Stock)
	assert.Equal(t, 3, cable.Stock)
}

func TestDecrementAllSumsRepeatedIDs(t *testing.T) {
	inv := NewSeeded()

	err := inv.DecrementAll([]domain.StockAdjustment{
		{ItemID: "3", Qty: 2},
		{ItemID: "3", Qty: 2},
	})
	assert.ErrorIs(t, err, store.ErrInsufficientStock)

	cable, _ := inv.Get("3")
	assert.Equal(t, 3, cable.Stock)
}

func TestRestock(t *testing.T) {
	inv := NewSeeded()

	item, err := inv.Restock("4", 8)
	require.NoError(t, err)
	assert.Equal(t, 10, item.Stock)

	_, err = inv.Restock("4", 0)
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestFilter(t *testing.T) {
	inv := NewSeeded()

	assert.Len(t, inv.Filter("", ""), 5)
	assert.Len(t, inv.Filter("LAP", ""), 1)
	assert.Len(t, inv.Filter("", "Accessories"), 2)
	assert.Len(t, inv.Filter("mouse", "Accessories"), 1)
	assert.Empty(t, inv.Filter("mouse", "Storage"))
}

func TestLowStockAndCategoryInUse(t *testing.T) {
	inv := NewSeeded()

	low := inv.LowStock(5)
	require.Len(t, low, 2)
	assert.Equal(t, "3", low[0].ID)
	assert.Equal(t, "4", low[1].ID)

	assert.True(t, inv.CategoryInUse("Storage"))
	assert.False(t, inv.CategoryInUse("storage"))
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	inv := NewSeeded()

	snap := inv.Snapshot()
	snap[0].Stock = 0

	laptop, _ := inv.Get("1")
	assert.Equal(t, 15, laptop.Stock)
}
