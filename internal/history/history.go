// Package history is the append-only transaction log, most recent first.
package history

import (
	"fmt"
	"strings"
	"time"

	"posdemo/backend/internal/domain"
	"posdemo/backend/internal/store"
)

type History struct {
	txs []domain.Transaction
}

func New(txs []domain.Transaction) *History {
	h := &History{}
	h.Replace(txs)
	return h
}

func (h *History) Replace(txs []domain.Transaction) {
	h.txs = cloneAll(txs)
}

func (h *History) Snapshot() []domain.Transaction {
	return cloneAll(h.txs)
}

func (h *History) List() []domain.Transaction {
	return h.Snapshot()
}

func (h *History) Len() int {
	return len(h.txs)
}

// Prepend stores a deep copy of tx ahead of every earlier transaction.
func (h *History) Prepend(tx domain.Transaction) {
	h.txs = append([]domain.Transaction{tx.Clone()}, h.txs...)
}

func (h *History) Get(id string) (domain.Transaction, error) {
	for _, tx := range h.txs {
		if tx.ID == id {
			return tx.Clone(), nil
		}
	}
	return domain.Transaction{}, fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
}

// Search matches term case-insensitively against customer name or id.
func (h *History) Search(term string) []domain.Transaction {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return h.Snapshot()
	}
	out := make([]domain.Transaction, 0)
	for _, tx := range h.txs {
		if strings.Contains(strings.ToLower(tx.CustomerName), term) || strings.Contains(strings.ToLower(tx.ID), term) {
			out = append(out, tx.Clone())
		}
	}
	return out
}

// Between returns transactions with from <= CreatedAt <= to. A zero bound is open.
func (h *History) Between(from time.Time, to time.Time) []domain.Transaction {
	out := make([]domain.Transaction, 0)
	for _, tx := range h.txs {
		if !from.IsZero() && tx.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && tx.CreatedAt.After(to) {
			continue
		}
		out = append(out, tx.Clone())
	}
	return out
}

func cloneAll(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = tx.Clone()
	}
	return out
}
