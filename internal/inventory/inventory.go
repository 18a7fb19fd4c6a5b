// Package inventory owns the stock-keeping items of the terminal.
//
// An Inventory is not safe for concurrent use; the service layer serializes
// access to it.
package inventory

import (
	"fmt"
	"strings"

	"posdemo/backend/internal/domain"
	"posdemo/backend/internal/store"
	"posdemo/backend/internal/validation"
	"posdemo/backend/internal/xid"
)

type Inventory struct {
	items []domain.Item
	newID func() string
}

func New(items []domain.Item) *Inventory {
	inv := &Inventory{newID: func() string { return xid.New("item") }}
	inv.Replace(items)
	return inv
}

// Replace swaps the whole item list, copying the input.
func (inv *Inventory) Replace(items []domain.Item) {
	inv.items = make([]domain.Item, len(items))
	copy(inv.items, items)
}

// Snapshot returns a copy of all items in insertion order.
func (inv *Inventory) Snapshot() []domain.Item {
	out := make([]domain.Item, len(inv.items))
	copy(out, inv.items)
	return out
}

func (inv *Inventory) List() []domain.Item {
	return inv.Snapshot()
}

func (inv *Inventory) Len() int {
	return len(inv.items)
}

func (inv *Inventory) Get(id string) (domain.Item, error) {
	idx := inv.indexOf(id)
	if idx < 0 {
		return domain.Item{}, fmt.Errorf("item %s: %w", id, store.ErrNotFound)
	}
	return inv.items[idx], nil
}

// Stock is the live stock lookup used by the cart.
func (inv *Inventory) Stock(id string) (int, error) {
	idx := inv.indexOf(id)
	if idx < 0 {
		return 0, fmt.Errorf("item %s: %w", id, store.ErrNotFound)
	}
	return inv.items[idx].Stock, nil
}

func (inv *Inventory) Add(draft domain.ItemDraft) (domain.Item, error) {
	if err := validation.ItemDraft(&draft); err != nil {
		return domain.Item{}, err
	}

	id := inv.newID()
	for inv.indexOf(id) >= 0 {
		id = inv.newID()
	}

	item := fromDraft(id, draft)
	inv.items = append(inv.items, item)
	return item, nil
}

func (inv *Inventory) Update(id string, draft domain.ItemDraft) (domain.Item, error) {
	idx := inv.indexOf(id)
	if idx < 0 {
		return domain.Item{}, fmt.Errorf("item %s: %w", id, store.ErrNotFound)
	}
	if err := validation.ItemDraft(&draft); err != nil {
		return domain.Item{}, err
	}

	item := fromDraft(id, draft)
	inv.items[idx] = item
	return item, nil
}

func (inv *Inventory) Delete(id string) error {
	idx := inv.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("item %s: %w", id, store.ErrNotFound)
	}
	inv.items = append(inv.items[:idx], inv.items[idx+1:]...)
	return nil
}

func (inv *Inventory) Restock(id string, qty int) (domain.Item, error) {
	if qty < 1 {
		return domain.Item{}, store.NewValidationError("qty", "must be 1 or greater")
	}
	idx := inv.indexOf(id)
	if idx < 0 {
		return domain.Item{}, fmt.Errorf("item %s: %w", id, store.ErrNotFound)
	}
	inv.items[idx].Stock += qty
	return inv.items[idx], nil
}

func (inv *Inventory) DecrementStock(id string, qty int) error {
	return inv.DecrementAll([]domain.StockAdjustment{{ItemID: id, Qty: qty}})
}

// DecrementAll applies every adjustment or none of them. Availability is
// checked for the whole batch, with repeated ids summed, before any stock
// is touched.
func (inv *Inventory) DecrementAll(adjustments []domain.StockAdjustment) error {
	wanted := make(map[string]int, len(adjustments))
	indexes := make(map[string]int, len(adjustments))
	for _, adj := range adjustments {
		if adj.Qty < 1 {
			return store.NewValidationError("qty", "must be 1 or greater")
		}
		idx, seen := indexes[adj.ItemID]
		if !seen {
			idx = inv.indexOf(adj.ItemID)
			if idx < 0 {
				return fmt.Errorf("item %s: %w", adj.ItemID, store.ErrNotFound)
			}
			indexes[adj.ItemID] = idx
		}
		wanted[adj.ItemID] += adj.Qty
		if wanted[adj.ItemID] > inv.items[idx].Stock {
			return fmt.Errorf("item %s has %d, need %d: %w", adj.ItemID, inv.items[idx].Stock, wanted[adj.ItemID], store.ErrInsufficientStock)
		}
	}

	for id, qty := range wanted {
		inv.items[indexes[id]].Stock -= qty
	}
	return nil
}

// Filter matches name case-insensitively by substring and category exactly.
// Empty arguments match everything.
func (inv *Inventory) Filter(query string, category string) []domain.Item {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Item, 0, len(inv.items))
	for _, item := range inv.items {
		if query != "" && !strings.Contains(strings.ToLower(item.Name), query) {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (inv *Inventory) LowStock(threshold int) []domain.Item {
	return LowStock(inv.items, threshold)
}

// CategoryInUse reports whether any item references name.
func (inv *Inventory) CategoryInUse(name string) bool {
	for _, item := range inv.items {
		if item.Category == name {
			return true
		}
	}
	return false
}

func LowStock(items []domain.Item, threshold int) []domain.Item {
	out := make([]domain.Item, 0)
	for _, item := range items {
		if item.Stock <= threshold {
			out = append(out, item)
		}
	}
	return out
}

func (inv *Inventory) indexOf(id string) int {
	for i := range inv.items {
		if inv.items[i].ID == id {
			return i
		}
	}
	return -1
}

func fromDraft(id string, draft domain.ItemDraft) domain.Item {
	return domain.Item{
		ID:       id,
		Name:     draft.Name,
		Price:    draft.Price,
		Stock:    draft.Stock,
		VAT:      draft.VAT,
		Category: draft.Category,
	}
}
