package inventory

import (
	"github.com/shopspring/decimal"

	"posdemo/backend/internal/domain"
)

// DefaultItems is the starter inventory used when nothing is persisted yet.
func DefaultItems() []domain.Item {
	vat := decimal.NewFromInt(16)
	return []domain.Item{
		{ID: "1", Name: "Laptop", Price: decimal.NewFromInt(75000), Stock: 15, VAT: vat, Category: "Electronics"},
		{ID: "2", Name: "Smartphone", Price: decimal.NewFromInt(45000), Stock: 22, VAT: vat, Category: "Electronics"},
		{ID: "3", Name: "USB-C Cable", Price: decimal.NewFromInt(1200), Stock: 3, VAT: vat, Category: "Accessories"},
		{ID: "4", Name: "Wireless Mouse", Price: decimal.NewFromInt(2500), Stock: 2, VAT: vat, Category: "Accessories"},
		{ID: "5", Name: "External SSD", Price: decimal.NewFromInt(12000), Stock: 8, VAT: vat, Category: "Storage"},
	}
}

func NewSeeded() *Inventory {
	return New(DefaultItems())
}
