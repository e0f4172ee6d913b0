// Package sheet reads order lines from CSV/XLSX files and writes the
// supplier-facing XLSX export of an order.
package sheet

import (
	"bytes"
	"fmt"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet = "Sheet1"
	// ContentType is the MIME type of the generated workbook
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []interface{}{"codigo", "compra", "bonificaciones", "descuentos"}

// ExportRows keeps the lines that actually ask the supplier for something
func ExportRows(lines []domain.OrderLine) []domain.OrderLine {
	rows := make([]domain.OrderLine, 0, len(lines))
	for _, l := range lines {
		if l.QuantityOrder.IsPositive() || l.Bonus.IsPositive() {
			rows = append(rows, l)
		}
	}
	return rows
}

// WriteOrder renders the order's exportable lines as an XLSX workbook
func WriteOrder(lines []domain.OrderLine) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write export header: %w", err)
	}

	for i, l := range ExportRows(lines) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			l.ItemCode,
			l.QuantityOrder.InexactFloat64(),
			l.Bonus.InexactFloat64(),
			l.Discount.InexactFloat64(),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write export row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName is the download/archive name of an order export
func FileName(order *domain.Order) string {
	return fmt.Sprintf("pedido_%d_%s.xlsx", order.ID, order.Date.Format("20060102"))
}

// ReadExport parses a workbook produced by WriteOrder back into rows of cells
func ReadExport(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return f.GetRows(exportSheet)
}
