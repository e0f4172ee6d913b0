package sheet

import (
	"testing"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestExportRowsSkipsEmptyLines(t *testing.T) {
	lines := []domain.OrderLine{
		{ItemCode: "A1", QuantityOrder: dec("10")},
		{ItemCode: "A2"},
		{ItemCode: "A3", Bonus: dec("2")},
		{ItemCode: "A4", Discount: dec("5")},
	}

	rows := ExportRows(lines)
	require.Len(t, rows, 2)
	assert.Equal(t, "A1", rows[0].ItemCode)
	assert.Equal(t, "A3", rows[1].ItemCode)
}

func TestWriteOrder(t *testing.T) {
	data, err := WriteOrder([]domain.OrderLine{
		{ItemCode: "A1", QuantityOrder: dec("10"), Bonus: dec("1"), Discount: dec("2.5")},
		{ItemCode: "A2"},
		{ItemCode: "A3", Bonus: dec("4")},
	})
	require.NoError(t, err)

	rows, err := ReadExport(data)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"codigo", "compra", "bonificaciones", "descuentos"}, rows[0])
	assert.Equal(t, []string{"A1", "10", "1", "2.5"}, rows[1])
	assert.Equal(t, []string{"A3", "0", "4", "0"}, rows[2])
}

func TestFileName(t *testing.T) {
	order := &domain.Order{ID: 42, Date: time.Date(2025, 3, 9, 14, 0, 0, 0, time.UTC)}
	assert.Equal(t, "pedido_42_20250309.xlsx", FileName(order))
}
