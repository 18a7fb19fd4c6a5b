package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const WalkInCustomer = "Walk-in"

type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	VAT      decimal.Decimal `json:"vat"`
	Category string          `json:"category"`
}

// ItemDraft is the user-supplied shape for creating or editing an item.
type ItemDraft struct {
	Name     string          `json:"name" validate:"required,max=120"`
	Price    decimal.Decimal `json:"price" validate:"gt=0"`
	Stock    int             `json:"stock" validate:"gte=0"`
	VAT      decimal.Decimal `json:"vat" validate:"gte=0,lte=100"`
	Category string          `json:"category" validate:"required,max=60"`
}

type StockAdjustment struct {
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

type RestockRequest struct {
	Qty int `json:"qty"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}

type CartLine struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	VAT       decimal.Decimal `json:"vat"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartAddRequest struct {
	ItemID string `json:"item_id"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartView struct {
	Lines      []CartLine      `json:"lines"`
	ItemCount  int             `json:"item_count"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	VATTotal   decimal.Decimal `json:"vat_total"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Currency   string          `json:"currency"`
}

type TransactionLine struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	VAT       decimal.Decimal `json:"vat"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Transaction struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	CustomerName string            `json:"customer_name"`
	Lines        []TransactionLine `json:"lines"`
	Subtotal     decimal.Decimal   `json:"subtotal"`
	VATTotal     decimal.Decimal   `json:"vat_total"`
	TotalAmount  decimal.Decimal   `json:"total_amount"`
	AmountPaid   decimal.Decimal   `json:"amount_paid"`
}

// ItemCount is the total number of units sold in the transaction.
func (t Transaction) ItemCount() int {
	count := 0
	for _, line := range t.Lines {
		count += line.Quantity
	}
	return count
}

// Clone returns a deep copy; lines never alias the source.
func (t Transaction) Clone() Transaction {
	dup := t
	dup.Lines = make([]TransactionLine, len(t.Lines))
	copy(dup.Lines, t.Lines)
	return dup
}

type CheckoutState string

const (
	CheckoutIdle            CheckoutState = "idle"
	CheckoutAwaitingPayment CheckoutState = "awaiting_payment"
	CheckoutProcessing      CheckoutState = "processing"
	CheckoutComplete        CheckoutState = "complete"
)

type CheckoutCompleteRequest struct {
	CustomerName string          `json:"customer_name"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
}

type CheckoutResult struct {
	Transaction Transaction     `json:"transaction"`
	ChangeDue   decimal.Decimal `json:"change_due"`
}

type CheckoutStatus struct {
	State      CheckoutState   `json:"state"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	ItemCount  int             `json:"item_count"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	ChangeDue  decimal.Decimal `json:"change_due"`
}

type DailySales struct {
	Date         string          `json:"date"`
	Transactions int             `json:"transactions"`
	Total        decimal.Decimal `json:"total"`
}

type Dashboard struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	Transactions   int             `json:"transactions"`
	ItemsSold      int             `json:"items_sold"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	ItemCount      int             `json:"item_count"`
	LowStock       []Item          `json:"low_stock"`
	RecentSales    []Transaction   `json:"recent_sales"`
	DailySales     []DailySales    `json:"daily_sales"`
	Currency       string          `json:"currency"`
}

type ItemSales struct {
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type SalesReport struct {
	From         string          `json:"from"`
	To           string          `json:"to"`
	Transactions int             `json:"transactions"`
	ItemsSold    int             `json:"items_sold"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	VATTotal     decimal.Decimal `json:"vat_total"`
	ByItem       []ItemSales     `json:"by_item"`
	Daily        []DailySales    `json:"daily"`
}

type CategorySummary struct {
	Category string          `json:"category"`
	Items    int             `json:"items"`
	Units    int             `json:"units"`
	Value    decimal.Decimal `json:"value"`
}

type InventoryReport struct {
	Threshold   int               `json:"threshold"`
	TotalItems  int               `json:"total_items"`
	TotalUnits  int               `json:"total_units"`
	TotalValue  decimal.Decimal   `json:"total_value"`
	LowStock    []Item            `json:"low_stock"`
	RestockCost decimal.Decimal   `json:"restock_cost"`
	ByCategory  []CategorySummary `json:"by_category"`
}
