// Package checkout turns the cart into a committed transaction.
//
// The engine moves through idle -> awaiting_payment -> processing -> complete,
// with cancel returning awaiting_payment to idle. Stock is decremented for
// the whole cart or not at all.
package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"posdemo/backend/internal/cart"
	"posdemo/backend/internal/domain"
	"posdemo/backend/internal/pricing"
	"posdemo/backend/internal/store"
	"posdemo/backend/internal/xid"
)

type StockDecrementer interface {
	DecrementAll(adjustments []domain.StockAdjustment) error
}

type Recorder interface {
	Prepend(tx domain.Transaction)
}

type Engine struct {
	cart      *cart.Cart
	inventory StockDecrementer
	history   Recorder
	state     domain.CheckoutState
	now       func() time.Time
	newID     func() string
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func New(c *cart.Cart, inventory StockDecrementer, history Recorder, opts ...Option) *Engine {
	e := &Engine{
		cart:      c,
		inventory: inventory,
		history:   history,
		state:     domain.CheckoutIdle,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return xid.New("TX") },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) State() domain.CheckoutState {
	return e.state
}

// Begin opens the payment step. It is a no-op while already awaiting payment.
func (e *Engine) Begin() error {
	if e.state == domain.CheckoutAwaitingPayment {
		return nil
	}
	if e.cart.IsEmpty() {
		return store.ErrEmptyCart
	}
	e.state = domain.CheckoutAwaitingPayment
	return nil
}

func (e *Engine) Cancel() {
	if e.state == domain.CheckoutAwaitingPayment {
		e.state = domain.CheckoutIdle
	}
}

func (e *Engine) ChangeDue(amountPaid decimal.Decimal) decimal.Decimal {
	return pricing.ChangeDue(amountPaid, e.cart.GrandTotal())
}

// Complete validates payment, decrements stock for every cart line, records
// the transaction and clears the cart. On any failure nothing is mutated.
func (e *Engine) Complete(customerName string, amountPaid decimal.Decimal) (domain.CheckoutResult, error) {
	if e.state != domain.CheckoutAwaitingPayment {
		return domain.CheckoutResult{}, fmt.Errorf("state %s: %w", e.state, store.ErrCheckoutNotStarted)
	}
	if e.cart.IsEmpty() {
		e.state = domain.CheckoutIdle
		return domain.CheckoutResult{}, store.ErrEmptyCart
	}
	if amountPaid.IsNegative() {
		return domain.CheckoutResult{}, store.NewValidationError("amount_paid", "must be 0 or greater")
	}

	subtotal := e.cart.Subtotal()
	vatTotal := e.cart.VatTotal()
	total := subtotal.Add(vatTotal)
	if amountPaid.LessThan(total) {
		return domain.CheckoutResult{}, fmt.Errorf("paid %s of %s: %w", amountPaid, total, store.ErrInsufficientPayment)
	}

	e.state = domain.CheckoutProcessing

	lines := e.cart.Lines()
	adjustments := make([]domain.StockAdjustment, 0, len(lines))
	for _, line := range lines {
		adjustments = append(adjustments, domain.StockAdjustment{ItemID: line.ItemID, Qty: line.Quantity})
	}
	if err := e.inventory.DecrementAll(adjustments); err != nil {
		e.state = domain.CheckoutAwaitingPayment
		return domain.CheckoutResult{}, fmt.Errorf("%w: %w", store.ErrInsufficientStock, err)
	}

	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		customerName = domain.WalkInCustomer
	}

	txLines := make([]domain.TransactionLine, 0, len(lines))
	for _, line := range lines {
		txLines = append(txLines, domain.TransactionLine{
			ItemID:    line.ItemID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			VAT:       line.VAT,
			LineTotal: line.LineTotal,
		})
	}

	tx := domain.Transaction{
		ID:           e.newID(),
		CreatedAt:    e.now(),
		CustomerName: customerName,
		Lines:        txLines,
		Subtotal:     subtotal,
		VATTotal:     vatTotal,
		TotalAmount:  total,
		AmountPaid:   amountPaid,
	}
	e.history.Prepend(tx)
	e.cart.Clear()
	e.state = domain.CheckoutComplete

	return domain.CheckoutResult{
		Transaction: tx.Clone(),
		ChangeDue:   pricing.ChangeDue(amountPaid, total),
	}, nil
}
