// Package report builds read-only aggregates over inventory and transaction
// snapshots. Nothing here mutates its inputs.
package report

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"posdemo/backend/internal/domain"
	"posdemo/backend/internal/inventory"
	"posdemo/backend/internal/pricing"
)

const (
	dateLayout    = "2006-01-02"
	recentSales   = 5
	dashboardDays = 7
)

func Dashboard(items []domain.Item, txs []domain.Transaction, threshold int, now time.Time) domain.Dashboard {
	d := domain.Dashboard{
		TotalSales:     decimal.Zero,
		InventoryValue: inventoryValue(items),
		ItemCount:      len(items),
		LowStock:       inventory.LowStock(items, threshold),
		Transactions:   len(txs),
	}
	for _, tx := range txs {
		d.TotalSales = d.TotalSales.Add(tx.TotalAmount)
		d.ItemsSold += tx.ItemCount()
	}

	sorted := newestFirst(txs)
	if len(sorted) > recentSales {
		sorted = sorted[:recentSales]
	}
	d.RecentSales = sorted

	today := startOfDay(now)
	byDay := dailyTotals(txs)
	d.DailySales = make([]domain.DailySales, 0, dashboardDays)
	for i := dashboardDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(dateLayout)
		entry, ok := byDay[day]
		if !ok {
			entry = domain.DailySales{Date: day, Total: decimal.Zero}
		}
		d.DailySales = append(d.DailySales, entry)
	}
	return d
}

// Sales aggregates txs, which the caller has already limited to [from, to].
// The bounds only label the report; a zero bound is left blank.
func Sales(txs []domain.Transaction, from time.Time, to time.Time) domain.SalesReport {
	r := domain.SalesReport{
		TotalSales: decimal.Zero,
		VATTotal:   decimal.Zero,
		ByItem:     make([]domain.ItemSales, 0),
		Daily:      make([]domain.DailySales, 0),
	}
	if !from.IsZero() {
		r.From = from.UTC().Format(dateLayout)
	}
	if !to.IsZero() {
		r.To = to.UTC().Format(dateLayout)
	}

	byItem := map[string]*domain.ItemSales{}
	order := make([]string, 0)
	for _, tx := range txs {
		r.Transactions++
		r.TotalSales = r.TotalSales.Add(tx.TotalAmount)
		r.VATTotal = r.VATTotal.Add(tx.VATTotal)
		for _, line := range tx.Lines {
			r.ItemsSold += line.Quantity
			agg, ok := byItem[line.ItemID]
			if !ok {
				agg = &domain.ItemSales{ItemID: line.ItemID, Name: line.Name, Revenue: decimal.Zero}
				byItem[line.ItemID] = agg
				order = append(order, line.ItemID)
			}
			agg.Quantity += line.Quantity
			agg.Revenue = agg.Revenue.Add(line.LineTotal)
		}
	}

	for _, id := range order {
		r.ByItem = append(r.ByItem, *byItem[id])
	}
	slices.SortStableFunc(r.ByItem, func(a, b domain.ItemSales) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	days := dailyTotals(txs)
	for _, day := range days {
		r.Daily = append(r.Daily, day)
	}
	slices.SortFunc(r.Daily, func(a, b domain.DailySales) int {
		return strings.Compare(a.Date, b.Date)
	})
	return r
}

// Inventory summarises stock value and what it would cost to bring every
// low-stock item back up to the threshold.
func Inventory(items []domain.Item, threshold int) domain.InventoryReport {
	r := domain.InventoryReport{
		Threshold:   threshold,
		TotalItems:  len(items),
		TotalValue:  inventoryValue(items),
		LowStock:    inventory.LowStock(items, threshold),
		RestockCost: decimal.Zero,
		ByCategory:  make([]domain.CategorySummary, 0),
	}

	byCategory := map[string]int{}
	for _, item := range items {
		r.TotalUnits += item.Stock
		if missing := threshold - item.Stock; missing > 0 {
			r.RestockCost = r.RestockCost.Add(pricing.LineSubtotal(item.Price, missing))
		}

		idx, ok := byCategory[item.Category]
		if !ok {
			idx = len(r.ByCategory)
			byCategory[item.Category] = idx
			r.ByCategory = append(r.ByCategory, domain.CategorySummary{Category: item.Category, Value: decimal.Zero})
		}
		summary := &r.ByCategory[idx]
		summary.Items++
		summary.Units += item.Stock
		summary.Value = summary.Value.Add(pricing.LineSubtotal(item.Price, item.Stock))
	}
	return r
}

func inventoryValue(items []domain.Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(pricing.LineSubtotal(item.Price, item.Stock))
	}
	return total
}

func dailyTotals(txs []domain.Transaction) map[string]domain.DailySales {
	out := map[string]domain.DailySales{}
	for _, tx := range txs {
		day := tx.CreatedAt.UTC().Format(dateLayout)
		entry, ok := out[day]
		if !ok {
			entry = domain.DailySales{Date: day, Total: decimal.Zero}
		}
		entry.Transactions++
		entry.Total = entry.Total.Add(tx.TotalAmount)
		out[day] = entry
	}
	return out
}

func newestFirst(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = tx.Clone()
	}
	slices.SortStableFunc(out, func(a, b domain.Transaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
