package reconcile

import (
	"github.com/shopspring/decimal"
)

// DisplayRow is the text shown in the grid for a line's derived columns
type DisplayRow struct {
	ItemCode          string `json:"item_code"`
	ItemName          string `json:"item_name"`
	SuggestedQuantity string `json:"quantity_suggested"`
	QuantityOrder     string `json:"quantity_order"`
	CurrentStockDays  string `json:"current_stock_days"`
	Rotation          string `json:"rotation"`
	Total             string `json:"total"`
	Severity          string `json:"severity"`
}

// FormatThousands renders a whole amount with dot-grouped thousands.
func FormatThousands(v decimal.Decimal) string {
	return groupThousands(roundHalfUp(v, 0))
}

// FormatRotation renders a rotation with one decimal place; blank stays blank.
func FormatRotation(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.StringFixed(1)
}

// FormatStockDays renders the stock days projection; blank stays blank.
func FormatStockDays(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}

// Present turns a derived line into display text
func Present(l LineResult) DisplayRow {
	return DisplayRow{
		ItemCode:          l.ItemCode,
		ItemName:          l.ItemName,
		SuggestedQuantity: l.SuggestedQuantity.String(),
		QuantityOrder:     l.QuantityOrder.String(),
		CurrentStockDays:  FormatStockDays(l.CurrentStockDays),
		Rotation:          FormatRotation(l.Rotation),
		Total:             FormatThousands(l.LineTotal),
		Severity:          string(l.Severity),
	}
}
