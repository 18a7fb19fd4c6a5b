// Package service owns the state of a single POS terminal session and
// persists it through a store.KV after every successful change.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"posdemo/backend/internal/cart"
	"posdemo/backend/internal/category"
	"posdemo/backend/internal/checkout"
	"posdemo/backend/internal/domain"
	"posdemo/backend/internal/history"
	"posdemo/backend/internal/inventory"
	"posdemo/backend/internal/report"
	"posdemo/backend/internal/store"
)

type Options struct {
	LowStockThreshold int
	Currency          string
	Now               func() time.Time
	NewTransactionID  func() string
}

type Service struct {
	mu  sync.Mutex
	kv  store.KV
	log *logrus.Entry

	threshold int
	currency  string
	now       func() time.Time
	engineOpt []checkout.Option

	inventory  *inventory.Inventory
	categories *category.Registry
	history    *history.History
	cart       *cart.Cart
	checkout   *checkout.Engine
}

func New(kv store.KV, logger *logrus.Logger, opts Options) *Service {
	if opts.LowStockThreshold < 0 {
		opts.LowStockThreshold = 0
	}
	if opts.Currency == "" {
		opts.Currency = "KES"
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	engineOpt := []checkout.Option{checkout.WithClock(opts.Now)}
	if opts.NewTransactionID != nil {
		engineOpt = append(engineOpt, checkout.WithIDGenerator(opts.NewTransactionID))
	}

	s := &Service{
		kv:         kv,
		log:        logger.WithField("component", "service"),
		threshold:  opts.LowStockThreshold,
		currency:   opts.Currency,
		now:        opts.Now,
		engineOpt:  engineOpt,
		inventory:  inventory.NewSeeded(),
		categories: category.NewSeeded(),
		history:    history.New(nil),
	}
	s.resetSession()
	return s
}

// Open loads persisted state. Missing keys are seeded with defaults and
// written back; undecodable payloads are logged and replaced by defaults.
// Only backend failures are returned.
func (s *Service) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := loadKey(ctx, s, store.KeyInventory, inventory.DefaultItems)
	if err != nil {
		return err
	}
	names, err := loadKey(ctx, s, store.KeyCategories, category.DefaultNames)
	if err != nil {
		return err
	}
	txs, err := loadKey(ctx, s, store.KeyTransactions, func() []domain.Transaction { return []domain.Transaction{} })
	if err != nil {
		return err
	}

	s.inventory.Replace(items)
	s.categories.Replace(names)
	s.history.Replace(txs)
	s.resetSession()

	s.log.WithFields(logrus.Fields{
		"items":        s.inventory.Len(),
		"categories":   len(s.categories.List()),
		"transactions": s.history.Len(),
	}).Info("state loaded")
	return nil
}

func loadKey[T any](ctx context.Context, s *Service, key string, fallback func() T) (T, error) {
	value, found, err := store.LoadJSON(ctx, s.kv, key, fallback)
	switch {
	case errors.Is(err, store.ErrCorruptPayload):
		s.log.WithError(err).WithField("key", key).Warn("discarding undecodable payload")
		s.save(ctx, key, value)
		return value, nil
	case err != nil:
		return value, err
	case !found:
		s.save(ctx, key, value)
	}
	return value, nil
}

// Reset wipes persisted state and restores the starter inventory, default
// categories and an empty history.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{store.KeyInventory, store.KeyTransactions, store.KeyCategories} {
		if err := s.kv.Delete(context.WithoutCancel(ctx), key); err != nil {
			return fmt.Errorf("reset %s: %w", key, err)
		}
	}

	s.inventory.Replace(inventory.DefaultItems())
	s.categories.Replace(category.DefaultNames())
	s.history.Replace(nil)
	s.resetSession()

	s.log.Info("state reset to defaults")
	return nil
}

func (s *Service) resetSession() {
	s.cart = cart.New(s.inventory)
	s.checkout = checkout.New(s.cart, s.inventory, s.history, s.engineOpt...)
}

func (s *Service) ListItems(query string, categoryName string) []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inventory.Filter(query, categoryName)
}

func (s *Service) GetItem(id string) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inventory.Get(id)
}

func (s *Service) AddItem(ctx context.Context, draft domain.ItemDraft) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.inventory.Add(draft)
	if err != nil {
		return domain.Item{}, err
	}
	s.saveInventory(ctx)
	if s.categories.Ensure(item.Category) {
		s.saveCategories(ctx)
	}
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, id string, draft domain.ItemDraft) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.inventory.Update(id, draft)
	if err != nil {
		return domain.Item{}, err
	}
	s.saveInventory(ctx)
	if s.categories.Ensure(item.Category) {
		s.saveCategories(ctx)
	}
	return item, nil
}

// DeleteItem removes the item and drops any cart line that referenced it.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inventory.Delete(id); err != nil {
		return err
	}
	s.cart.Remove(id)
	s.saveInventory(ctx)
	return nil
}

func (s *Service) RestockItem(ctx context.Context, id string, qty int) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.inventory.Restock(id, qty)
	if err != nil {
		return domain.Item{}, err
	}
	s.saveInventory(ctx)
	return item, nil
}

func (s *Service) ListCategories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.categories.List()
}

func (s *Service) AddCategory(ctx context.Context, name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.categories.Add(strings.TrimSpace(name)); err != nil {
		return nil, err
	}
	s.saveCategories(ctx)
	return s.categories.List(), nil
}

func (s *Service) DeleteCategory(ctx context.Context, name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.categories.Delete(name, s.inventory); err != nil {
		return nil, err
	}
	s.saveCategories(ctx)
	return s.categories.List(), nil
}

func (s *Service) Cart() domain.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cartView()
}

func (s *Service) AddToCart(itemID string) (domain.CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.inventory.Get(itemID)
	if err != nil {
		return domain.CartView{}, err
	}
	if err := s.cart.Add(item); err != nil {
		return domain.CartView{}, err
	}
	return s.cartView(), nil
}

func (s *Service) IncrementLine(itemID string) (domain.CartView, error) {
	return s.mutateCart(func(c *cart.Cart) error { return c.Increment(itemID) })
}

func (s *Service) DecrementLine(itemID string) (domain.CartView, error) {
	return s.mutateCart(func(c *cart.Cart) error { return c.Decrement(itemID) })
}

func (s *Service) SetLineQuantity(itemID string, quantity int) (domain.CartView, error) {
	return s.mutateCart(func(c *cart.Cart) error { return c.SetQuantity(itemID, quantity) })
}

// RemoveLine drops the line for itemID. A missing line is not an error.
func (s *Service) RemoveLine(itemID string) domain.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Remove(itemID)
	return s.cartView()
}

func (s *Service) ClearCart() domain.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
	s.checkout.Cancel()
	return s.cartView()
}

func (s *Service) mutateCart(fn func(c *cart.Cart) error) (domain.CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.cart); err != nil {
		return domain.CartView{}, err
	}
	return s.cartView(), nil
}

func (s *Service) cartView() domain.CartView {
	subtotal := s.cart.Subtotal()
	vat := s.cart.VatTotal()
	return domain.CartView{
		Lines:      s.cart.Lines(),
		ItemCount:  s.cart.ItemCount(),
		Subtotal:   subtotal,
		VATTotal:   vat,
		GrandTotal: subtotal.Add(vat),
		Currency:   s.currency,
	}
}

func (s *Service) CheckoutStatus(amountPaid decimal.Decimal) domain.CheckoutStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.checkoutStatus(amountPaid)
}

func (s *Service) BeginCheckout() (domain.CheckoutStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkout.Begin(); err != nil {
		return domain.CheckoutStatus{}, err
	}
	return s.checkoutStatus(decimal.Zero), nil
}

func (s *Service) CancelCheckout() domain.CheckoutStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkout.Cancel()
	return s.checkoutStatus(decimal.Zero)
}

// CompleteCheckout opens the payment step if needed, then commits the sale.
func (s *Service) CompleteCheckout(ctx context.Context, customerName string, amountPaid decimal.Decimal) (domain.CheckoutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkout.State() != domain.CheckoutAwaitingPayment {
		if err := s.checkout.Begin(); err != nil {
			return domain.CheckoutResult{}, err
		}
	}

	res, err := s.checkout.Complete(customerName, amountPaid)
	if err != nil {
		return domain.CheckoutResult{}, err
	}
	s.saveInventory(ctx)
	s.saveTransactions(ctx)

	s.log.WithFields(logrus.Fields{
		"transaction": res.Transaction.ID,
		"total":       res.Transaction.TotalAmount.StringFixed(2),
		"items":       res.Transaction.ItemCount(),
	}).Info("checkout complete")
	return res, nil
}

func (s *Service) checkoutStatus(amountPaid decimal.Decimal) domain.CheckoutStatus {
	return domain.CheckoutStatus{
		State:      s.checkout.State(),
		GrandTotal: s.cart.GrandTotal(),
		ItemCount:  s.cart.ItemCount(),
		AmountPaid: amountPaid,
		ChangeDue:  s.checkout.ChangeDue(amountPaid),
	}
}

func (s *Service) ListTransactions(term string) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.history.Search(term)
}

func (s *Service) GetTransaction(id string) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.history.Get(id)
}

func (s *Service) Dashboard() domain.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := report.Dashboard(s.inventory.Snapshot(), s.history.Snapshot(), s.threshold, s.now())
	d.Currency = s.currency
	return d
}

func (s *Service) SalesReport(from time.Time, to time.Time) domain.SalesReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	return report.Sales(s.history.Between(from, to), from, to)
}

func (s *Service) InventoryReport() domain.InventoryReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	return report.Inventory(s.inventory.Snapshot(), s.threshold)
}

func (s *Service) saveInventory(ctx context.Context) {
	s.save(ctx, store.KeyInventory, s.inventory.Snapshot())
}

func (s *Service) saveCategories(ctx context.Context) {
	s.save(ctx, store.KeyCategories, s.categories.List())
}

func (s *Service) saveTransactions(ctx context.Context) {
	s.save(ctx, store.KeyTransactions, s.history.Snapshot())
}

// save never fails the caller; in-memory state stays authoritative.
func (s *Service) save(ctx context.Context, key string, value any) {
	if err := store.SaveJSON(context.WithoutCancel(ctx), s.kv, key, value); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("persist failed")
	}
}
