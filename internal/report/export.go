package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"posdemo/backend/internal/domain"
	"posdemo/backend/internal/pricing"
)

func money(d decimal.Decimal) string {
	return pricing.Round(d).StringFixed(2)
}

func salesRows(r domain.SalesReport) [][]string {
	rows := [][]string{
		{"section", "key", "value"},
		{"summary", "from", r.From},
		{"summary", "to", r.To},
		{"summary", "transactions", strconv.Itoa(r.Transactions)},
		{"summary", "items_sold", strconv.Itoa(r.ItemsSold)},
		{"summary", "total_sales", money(r.TotalSales)},
		{"summary", "vat_total", money(r.VATTotal)},
	}
	for _, item := range r.ByItem {
		rows = append(rows,
			[]string{"item", item.Name + "_quantity", strconv.Itoa(item.Quantity)},
			[]string{"item", item.Name + "_revenue", money(item.Revenue)},
		)
	}
	for _, day := range r.Daily {
		rows = append(rows,
			[]string{"daily", day.Date + "_transactions", strconv.Itoa(day.Transactions)},
			[]string{"daily", day.Date + "_total", money(day.Total)},
		)
	}
	return rows
}

func inventoryRows(r domain.InventoryReport) [][]string {
	rows := [][]string{
		{"section", "key", "value"},
		{"summary", "threshold", strconv.Itoa(r.Threshold)},
		{"summary", "total_items", strconv.Itoa(r.TotalItems)},
		{"summary", "total_units", strconv.Itoa(r.TotalUnits)},
		{"summary", "total_value", money(r.TotalValue)},
		{"summary", "restock_cost", money(r.RestockCost)},
	}
	for _, item := range r.LowStock {
		rows = append(rows, []string{"low_stock", item.Name, strconv.Itoa(item.Stock)})
	}
	for _, c := range r.ByCategory {
		rows = append(rows,
			[]string{"category", c.Category + "_items", strconv.Itoa(c.Items)},
			[]string{"category", c.Category + "_units", strconv.Itoa(c.Units)},
			[]string{"category", c.Category + "_value", money(c.Value)},
		)
	}
	return rows
}

func WriteSalesCSV(w io.Writer, r domain.SalesReport) error {
	return writeCSV(w, salesRows(r))
}

func WriteInventoryCSV(w io.Writer, r domain.InventoryReport) error {
	return writeCSV(w, inventoryRows(r))
}

func SalesXLSX(r domain.SalesReport) ([]byte, error) {
	return writeXLSX("Sales", salesRows(r))
}

func InventoryXLSX(r domain.InventoryReport) ([]byte, error) {
	return writeXLSX("Inventory", inventoryRows(r))
}

func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func writeXLSX(sheet string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
