package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"posdemo/backend/internal/domain"
	"posdemo/backend/internal/inventory"
)

var now = time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

func sale(id string, at time.Time, lines ...domain.TransactionLine) domain.Transaction {
	tx := domain.Transaction{ID: id, CreatedAt: at, CustomerName: domain.WalkInCustomer, Lines: lines,
		Subtotal: decimal.Zero, VATTotal: decimal.Zero, TotalAmount: decimal.Zero}
	for _, line := range lines {
		tx.TotalAmount = tx.TotalAmount.Add(line.LineTotal)
	}
	return tx
}

func line(id, name string, qty int, total int64) domain.TransactionLine {
	return domain.TransactionLine{ItemID: id, Name: name, Quantity: qty, LineTotal: decimal.NewFromInt(total)}
}

func TestDashboard(t *testing.T) {
	items := inventory.DefaultItems()
	var txs []domain.Transaction
	for i := 0; i < 7; i++ {
		txs = append(txs, sale(string(rune('A'+i)), now.Add(-time.Duration(i)*time.Hour), line("3", "USB-C Cable", 1, 100)))
	}
	txs = append(txs, sale("OLD", now.AddDate(0, 0, -30), line("1", "Laptop", 2, 1000)))

	d := Dashboard(items, txs, 5, now)

	assert.Equal(t, 8, d.Transactions)
	assert.Equal(t, 9, d.ItemsSold)
	assert.True(t, d.TotalSales.Equal(decimal.NewFromInt(1700)))
	assert.Equal(t, 5, d.ItemCount)
	assert.Len(t, d.LowStock, 2)

	require.Len(t, d.RecentSales, 5)
	assert.Equal(t, "A", d.RecentSales[0].ID)

	require.Len(t, d.DailySales, 7)
	assert.Equal(t, "2026-05-04", d.DailySales[0].Date)
	assert.Equal(t, "2026-05-10", d.DailySales[6].Date)
	assert.Equal(t, 7, d.DailySales[6].Transactions)
	assert.True(t, d.DailySales[0].Total.IsZero())
}

func TestSalesRanksItems(t *testing.T) {
	day1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	txs := []domain.Transaction{
		sale("T3", day2.AddDate(0, 0, 5), line("1", "Laptop", 1, 87000)),
		sale("T2", day2, line("3", "USB-C Cable", 2, 2784), line("4", "Wireless Mouse", 1, 2900)),
		sale("T1", day1, line("3", "USB-C Cable", 1, 1392)),
	}

	r := Sales(txs[1:], day1.Add(-time.Hour), day2.Add(time.Hour))

	assert.Equal(t, "2026-05-01", r.From)
	assert.Equal(t, "2026-05-02", r.To)
	assert.Equal(t, 2, r.Transactions)
	assert.Equal(t, 4, r.ItemsSold)
	assert.True(t, r.TotalSales.Equal(decimal.NewFromInt(7076)))

	require.Len(t, r.ByItem, 2)
	assert.Equal(t, "USB-C Cable", r.ByItem[0].Name)
	assert.Equal(t, 3, r.ByItem[0].Quantity)
	assert.True(t, r.ByItem[0].Revenue.Equal(decimal.NewFromInt(4176)))

	require.Len(t, r.Daily, 2)
	assert.Equal(t, "2026-05-01", r.Daily[0].Date)

	all := Sales(txs, time.Time{}, time.Time{})
	assert.Equal(t, 3, all.Transactions)
	assert.Equal(t, "Laptop", all.ByItem[0].Name)
	assert.Empty(t, all.From)
}

func TestInventoryReport(t *testing.T) {
	r := Inventory(inventory.DefaultItems(), 5)

	assert.Equal(t, 5, r.TotalItems)
	assert.Equal(t, 50, r.TotalUnits)
	assert.True(t, r.RestockCost.Equal(decimal.NewFromInt(9900)), r.RestockCost.String())
	require.Len(t, r.LowStock, 2)

	require.Len(t, r.ByCategory, 3)
	assert.Equal(t, "Electronics", r.ByCategory[0].Category)
	assert.Equal(t, 2, r.ByCategory[0].Items)
	assert.True(t, r.ByCategory[0].Value.Equal(decimal.NewFromInt(75000*15+45000*22)))
}

func TestInventoryReportEmpty(t *testing.T) {
	r := Inventory(nil, 5)

	assert.Zero(t, r.TotalItems)
	assert.True(t, r.TotalValue.IsZero())
	assert.Empty(t, r.ByCategory)
}

func TestWriteSalesCSV(t *testing.T) {
	r := Sales([]domain.Transaction{sale("T1", now, line("3", "USB-C Cable", 1, 1392))}, time.Time{}, time.Time{})

	var buf bytes.Buffer
	require.NoError(t, WriteSalesCSV(&buf, r))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"section", "key", "value"}, rows[0])
	assert.Contains(t, rows, []string{"summary", "total_sales", "1392.00"})
	assert.Contains(t, rows, []string{"item", "USB-C Cable_quantity", "1"})
}

func TestInventoryXLSX(t *testing.T) {
	data, err := InventoryXLSX(Inventory(inventory.DefaultItems(), 5))
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue("Inventory", "C6")
	require.NoError(t, err)
	assert.Equal(t, "9900.00", value)
}
