// Package reconcile derives the computed columns of a purchase order's
// detail grid: suggested quantities, stock-day projections, rotation,
// line totals and the deviation severity used to flag rows.
//
// Every function here is pure. Callers pass the lines and the shared
// prediction window explicitly and re-run the computation after any edit.
package reconcile

import (
	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	hundred        = decimal.NewFromInt(100)
	warningPercent = decimal.NewFromInt(10)
	dangerPercent  = decimal.NewFromInt(30)
)

// SuggestedQuantity returns the recommended order quantity for a line.
//
// The forecast is spread evenly over the window, scaled to the desired days of
// stock and reduced by what is already available. Results are rounded up to the
// pack size when one is set, otherwise to the nearest unit.
func SuggestedQuantity(line domain.OrderLine, window domain.PredictionWindow) decimal.Decimal {
	if line.SalePrediction.IsZero() {
		return decimal.Zero
	}

	daysDiff := window.DaysDiff()
	if daysDiff <= 0 || line.DaysStockDesired <= 0 {
		return decimal.Zero
	}

	// prediction / daysDiff * daysStock, multiplied first so exact quotients stay exact
	needed := line.SalePrediction.
		Mul(decimal.NewFromInt(int64(line.DaysStockDesired))).
		Div(decimal.NewFromInt(int64(daysDiff)))
	raw := needed.Sub(line.StockAvailable)
	if !raw.IsPositive() {
		return decimal.Zero
	}

	if line.PackSize > 0 {
		pack := decimal.NewFromInt(int64(line.PackSize))
		return raw.Div(pack).Ceil().Mul(pack)
	}

	return roundHalfUp(raw, 0)
}

// CurrentStockDays projects how many days the available stock lasts at the
// forecast daily rate. ok is false when the projection cannot be made.
func CurrentStockDays(line domain.OrderLine, window domain.PredictionWindow) (days decimal.Decimal, ok bool) {
	if line.StockAvailable.IsZero() || line.SalePrediction.IsZero() {
		return decimal.Zero, false
	}

	daysDiff := window.DaysDiff()
	if daysDiff <= 0 || !line.SalePrediction.IsPositive() {
		return decimal.Zero, false
	}

	// stock / (prediction / daysDiff)
	days = line.StockAvailable.
		Mul(decimal.NewFromInt(int64(daysDiff))).
		Div(line.SalePrediction)

	return roundHalfUp(days, 0), true
}

// Rotation combines the incoming units (order plus bonus) spread over the
// window with the current stock days. ok is false for an empty window.
func Rotation(line domain.OrderLine, window domain.PredictionWindow) (rotation decimal.Decimal, ok bool) {
	daysDiff := window.DaysDiff()
	if daysDiff <= 0 {
		return decimal.Zero, false
	}

	stockDays, _ := CurrentStockDays(line, window)
	incoming := line.QuantityOrder.Add(line.Bonus).Div(decimal.NewFromInt(int64(daysDiff)))

	return roundHalfUp(incoming.Add(stockDays), 1), true
}

// Classify tiers the deviation of the ordered quantity from the suggestion.
func Classify(line domain.OrderLine, window domain.PredictionWindow) domain.Severity {
	if line.QuantityOrder.IsNegative() {
		return domain.SeverityDanger
	}

	suggested := SuggestedQuantity(line, window)
	if !line.QuantityOrder.IsPositive() || !suggested.IsPositive() {
		return domain.SeverityNormal
	}

	percentDiff := line.QuantityOrder.Sub(suggested).Abs().Mul(hundred).Div(suggested)

	switch {
	case percentDiff.LessThan(warningPercent):
		return domain.SeverityNormal
	case percentDiff.LessThanOrEqual(dangerPercent):
		return domain.SeverityWarning
	default:
		return domain.SeverityDanger
	}
}

// LineTotal is the line cost rounded to a whole currency unit
func LineTotal(line domain.OrderLine) decimal.Decimal {
	return roundHalfUp(line.QuantityOrder.Mul(line.PurchasePrice), 0)
}

// OrderTotal sums the unrounded line costs and rounds once at the end.
func OrderTotal(lines []domain.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.QuantityOrder.Mul(line.PurchasePrice))
	}
	return roundHalfUp(total, 0)
}
