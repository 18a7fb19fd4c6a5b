// Package cart implements the sales terminal cart.
//
// Lines snapshot the item's base price and VAT rate when first added and are
// never re-priced afterwards. Quantity ceilings, however, are always checked
// against live stock through the StockLookup.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"posdemo/backend/internal/domain"
	"posdemo/backend/internal/pricing"
	"posdemo/backend/internal/store"
)

type StockLookup interface {
	Stock(id string) (int, error)
}

type Cart struct {
	stock StockLookup
	lines []domain.CartLine
}

func New(stock StockLookup) *Cart {
	return &Cart{stock: stock}
}

// Add puts one unit of item in the cart. An existing line is incremented.
func (c *Cart) Add(item domain.Item) error {
	if c.indexOf(item.ID) >= 0 {
		return c.Increment(item.ID)
	}
	if item.Stock <= 0 {
		return fmt.Errorf("item %s: %w", item.ID, store.ErrOutOfStock)
	}

	c.lines = append(c.lines, domain.CartLine{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		VAT:       item.VAT,
		Quantity:  1,
		LineTotal: pricing.LineTotal(item.Price, item.VAT, 1),
	})
	return nil
}

func (c *Cart) Increment(itemID string) error {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return fmt.Errorf("cart line %s: %w", itemID, store.ErrNotFound)
	}
	return c.setAt(idx, c.lines[idx].Quantity+1)
}

// Decrement removes one unit; the line disappears when it reaches zero.
func (c *Cart) Decrement(itemID string) error {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return fmt.Errorf("cart line %s: %w", itemID, store.ErrNotFound)
	}
	if c.lines[idx].Quantity <= 1 {
		c.removeAt(idx)
		return nil
	}
	c.lines[idx].Quantity--
	c.reprice(idx)
	return nil
}

// SetQuantity sets the line quantity directly; n <= 0 removes the line.
func (c *Cart) SetQuantity(itemID string, n int) error {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return fmt.Errorf("cart line %s: %w", itemID, store.ErrNotFound)
	}
	if n <= 0 {
		c.removeAt(idx)
		return nil
	}
	return c.setAt(idx, n)
}

func (c *Cart) Remove(itemID string) {
	if idx := c.indexOf(itemID); idx >= 0 {
		c.removeAt(idx)
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Has(itemID string) bool {
	return c.indexOf(itemID) >= 0
}

func (c *Cart) Line(itemID string) (domain.CartLine, bool) {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return domain.CartLine{}, false
	}
	return c.lines[idx], true
}

// Lines returns a copy of the cart lines in the order they were added.
func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, line := range c.lines {
		n += line.Quantity
	}
	return n
}

// Subtotal is the pre-VAT sum of unit price times quantity.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(pricing.LineSubtotal(line.UnitPrice, line.Quantity))
	}
	return total
}

func (c *Cart) VatTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(pricing.LineVat(line.UnitPrice, line.VAT, line.Quantity))
	}
	return total
}

func (c *Cart) GrandTotal() decimal.Decimal {
	return c.Subtotal().Add(c.VatTotal())
}

func (c *Cart) setAt(idx int, qty int) error {
	line := c.lines[idx]
	available, err := c.stock.Stock(line.ItemID)
	if err != nil {
		return err
	}
	if qty > available {
		return fmt.Errorf("item %s: only %d available: %w", line.ItemID, available, store.ErrStockExceeded)
	}
	c.lines[idx].Quantity = qty
	c.reprice(idx)
	return nil
}

func (c *Cart) reprice(idx int) {
	line := &c.lines[idx]
	line.LineTotal = pricing.LineTotal(line.UnitPrice, line.VAT, line.Quantity)
}

func (c *Cart) removeAt(idx int) {
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
}

func (c *Cart) indexOf(itemID string) int {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			return i
		}
	}
	return -1
}
