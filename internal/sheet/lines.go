package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/andresuchdata/purchasing/backend-go/internal/reconcile"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// column aliases accepted in input headers
var columnAliases = map[string]string{
	"item":                   "item",
	"item_code":              "item",
	"codigo":                 "item",
	"item_name":              "item_name",
	"item_pack_size":         "pack_size",
	"pack_size":              "pack_size",
	"days_stock_desired":     "days_stock",
	"days_stock":             "days_stock",
	"date_last_purchase":     "date_last_purchase",
	"quantity_last_purchase": "quantity_last_purchase",
	"sale_prediction":        "sale_prediction",
	"stock_available":        "stock_available",
	"quantity_order":         "quantity_order",
	"bonus":                  "bonus",
	"discount":               "discount",
	"price":                  "price",
	"purchase_price":         "price",
}

// ReadLinesFile reads order lines from a .csv or .xlsx file
func ReadLinesFile(path string) ([]domain.OrderLine, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		return ReadLinesCSV(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

func readXLSX(path string) ([]domain.OrderLine, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file %s has no sheets", path)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", path, err)
		}
		records = append(records, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", path, err)
	}

	return linesFromRecords(records)
}

// ReadLinesCSV reads order lines from CSV with a header row
func ReadLinesCSV(r io.Reader) ([]domain.OrderLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return linesFromRecords(records)
}

func linesFromRecords(records [][]string) ([]domain.OrderLine, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	columns := make(map[string]int)
	for i, name := range records[0] {
		key := strings.ToLower(strings.TrimSpace(name))
		if canonical, ok := columnAliases[key]; ok {
			columns[canonical] = i
		}
	}
	if _, ok := columns["item"]; !ok {
		return nil, fmt.Errorf("missing item column")
	}

	lines := make([]domain.OrderLine, 0, len(records)-1)
	for n, record := range records[1:] {
		get := func(col string) string {
			i, ok := columns[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if get("item") == "" {
			continue
		}

		p := reconcile.ItemPayload{
			Item:                 get("item"),
			ItemName:             get("item_name"),
			ItemPackSize:         lenient(get("pack_size")),
			QuantityLastPurchase: lenient(get("quantity_last_purchase")),
			SalePrediction:       lenient(get("sale_prediction")),
			StockAvailable:       lenient(get("stock_available")),
			Price:                lenient(get("price")),
		}
		if days, err := strconv.Atoi(get("days_stock")); err == nil {
			p.DaysStockDesired = days
		}
		if raw := get("date_last_purchase"); raw != "" {
			p.DateLastPurchase = &raw
		}

		row := n + 2
		var err error
		if p.QuantityOrder, err = strict(get("quantity_order")); err != nil {
			return nil, fmt.Errorf("row %d: invalid quantity_order: %w", row, err)
		}
		if p.Bonus, err = strict(get("bonus")); err != nil {
			return nil, fmt.Errorf("row %d: invalid bonus: %w", row, err)
		}
		if p.Discount, err = strict(get("discount")); err != nil {
			return nil, fmt.Errorf("row %d: invalid discount: %w", row, err)
		}

		lines = append(lines, reconcile.ParseItemPayload(p))
	}

	return lines, nil
}

func lenient(raw string) reconcile.LenientDecimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return reconcile.Lenient(decimal.Zero)
	}
	return reconcile.Lenient(d)
}

func strict(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
