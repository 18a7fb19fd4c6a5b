package checkout

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posdemo/backend/internal/cart"
	"posdemo/backend/internal/domain"
	"posdemo/backend/internal/history"
	"posdemo/backend/internal/inventory"
	"posdemo/backend/internal/store"
)

var fixedNow = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	inv     *inventory.Inventory
	cart    *cart.Cart
	history *history.History
	engine  *Engine
}

func setup(t *testing.T, items ...domain.Item) fixture {
	t.Helper()
	inv := inventory.New(items)
	c := cart.New(inv)
	h := history.New(nil)
	engine := New(c, inv, h,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "TX-1" }),
	)
	return fixture{inv: inv, cart: c, history: h, engine: engine}
}

func cable() domain.Item {
	return domain.Item{
		ID:       "3",
		Name:     "USB-C Cable",
		Price:    decimal.NewFromInt(1200),
		Stock:    3,
		VAT:      decimal.NewFromInt(16),
		Category: "Accessories",
	}
}

func addTimes(t *testing.T, f fixture, id string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		item, err := f.inv.Get(id)
		require.NoError(t, err)
		require.NoError(t, f.cart.Add(item))
	}
}

func TestBeginOnEmptyCartFails(t *testing.T) {
	f := setup(t, cable())

	assert.ErrorIs(t, f.engine.Begin(), store.ErrEmptyCart)
	assert.Equal(t, domain.CheckoutIdle, f.engine.State())
}

func TestBeginAndCancel(t *testing.T) {
	f := setup(t, cable())
	addTimes(t, f, "3", 1)

	require.NoError(t, f.engine.Begin())
	assert.Equal(t, domain.CheckoutAwaitingPayment, f.engine.State())
	require.NoError(t, f.engine.Begin())

	f.engine.Cancel()
	assert.Equal(t, domain.CheckoutIdle, f.engine.State())
	assert.False(t, f.cart.IsEmpty())
}

func TestCompleteRequiresBegin(t *testing.T) {
	f := setup(t, cable())
	addTimes(t, f, "3", 1)

	_, err := f.engine.Complete("", decimal.NewFromInt(10000))
	assert.ErrorIs(t, err, store.ErrCheckoutNotStarted)
}

func TestInsufficientPaymentChangesNothing(t *testing.T) {
	f := setup(t, cable())
	addTimes(t, f, "3", 2)
	require.NoError(t, f.engine.Begin())

	_, err := f.engine.Complete("Alice", decimal.NewFromInt(2783))
	assert.ErrorIs(t, err, store.ErrInsufficientPayment)
	assert.Equal(t, domain.CheckoutAwaitingPayment, f.engine.State())

	stock, _ := f.inv.Stock("3")
	assert.Equal(t, 3, stock)
	assert.Equal(t, 0, f.history.Len())
	assert.Equal(t, 2, f.cart.ItemCount())
}

func TestNegativePaymentIsValidationError(t *testing.T) {
	f := setup(t, cable())
	addTimes(t, f, "3", 1)
	require.NoError(t, f.engine.Begin())

	_, err := f.engine.Complete("", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestExactPaymentSucceedsWithZeroChange(t *testing.T) {
	f := setup(t, cable())
	addTimes(t, f, "3", 1)
	require.NoError(t, f.engine.Begin())
	total := f.cart.GrandTotal()

	res, err := f.engine.Complete("", total)
	require.NoError(t, err)
	assert.True(t, res.ChangeDue.IsZero())
	assert.True(t, res.Transaction.TotalAmount.Equal(total))
	assert.Equal(t, domain.WalkInCustomer, res.Transaction.CustomerName)
	assert.Equal(t, domain.CheckoutComplete, f.engine.State())
}

func TestStockChangedDuringPaymentRollsBack(t *testing.T) {
	laptop := domain.Item{ID: "1", Name: "Laptop", Price: decimal.NewFromInt(75000), Stock: 5, VAT: decimal.NewFromInt(16), Category: "Electronics"}
	f := setup(t, laptop, cable())
	addTimes(t, f, "1", 2)
	addTimes(t, f, "3", 3)
	require.NoError(t, f.engine.Begin())

	require.NoError(t, f.inv.DecrementStock("3", 1))

	_, err := f.engine.Complete("Bob", decimal.NewFromInt(1_000_000))
	assert.ErrorIs(t, err, store.ErrInsufficientStock)
	assert.Equal(t, domain.CheckoutAwaitingPayment, f.engine.State())

	laptopStock, _ := f.inv.Stock("1")
	cableStock, _ := f.inv.Stock("3")
	assert.Equal(t, 5, laptopStock)
	assert.Equal(t, 2, cableStock)
	assert.Equal(t, 0, f.history.Len())
	assert.False(t, f.cart.IsEmpty())
}

func TestCompleteAfterCartEmptiedReturnsToIdle(t *testing.T) {
	f := setup(t, cable())
	addTimes(t, f, "3", 1)
	require.NoError(t, f.engine.Begin())
	f.cart.Clear()

	_, err := f.engine.Complete("", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, store.ErrEmptyCart)
	assert.Equal(t, domain.CheckoutIdle, f.engine.State())
}

func TestEndToEndSellsOutItem(t *testing.T) {
	f := setup(t, cable())
	addTimes(t, f, "3", 3)

	assert.True(t, f.cart.GrandTotal().Equal(decimal.NewFromInt(4176)))
	require.NoError(t, f.engine.Begin())

	res, err := f.engine.Complete("  Jane  ", decimal.NewFromInt(4176))
	require.NoError(t, err)
	assert.True(t, res.ChangeDue.IsZero())

	tx := res.Transaction
	assert.Equal(t, "TX-1", tx.ID)
	assert.Equal(t, "Jane", tx.CustomerName)
	assert.Equal(t, fixedNow, tx.CreatedAt)
	assert.True(t, tx.Subtotal.Equal(decimal.NewFromInt(3600)))
	assert.True(t, tx.VATTotal.Equal(decimal.NewFromInt(576)))
	require.Len(t, tx.Lines, 1)
	assert.Equal(t, 3, tx.Lines[0].Quantity)

	stock, _ := f.inv.Stock("3")
	assert.Equal(t, 0, stock)
	assert.True(t, f.cart.IsEmpty())

	recorded, err := f.history.Get("TX-1")
	require.NoError(t, err)
	assert.True(t, recorded.TotalAmount.Equal(decimal.NewFromInt(4176)))

	item, _ := f.inv.Get("3")
	assert.ErrorIs(t, f.cart.Add(item), store.ErrOutOfStock)
}

func TestChangeDue(t *testing.T) {
	f := setup(t, cable())
	addTimes(t, f, "3", 1)

	assert.True(t, f.engine.ChangeDue(decimal.NewFromInt(1500)).Equal(decimal.NewFromInt(108)))
	assert.True(t, f.engine.ChangeDue(decimal.NewFromInt(100)).IsZero())
}
