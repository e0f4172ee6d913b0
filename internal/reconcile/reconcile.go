package reconcile

import (
	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// LineResult is an order line together with its derived columns
type LineResult struct {
	domain.OrderLine
	SuggestedQuantity decimal.Decimal     `json:"quantity_suggested"`
	CurrentStockDays  decimal.NullDecimal `json:"current_stock_days"`
	Rotation          decimal.NullDecimal `json:"rotation"`
	LineTotal         decimal.Decimal     `json:"total"`
	Severity          domain.Severity     `json:"severity"`
}

// Result holds every derived value of an order for one window
type Result struct {
	Lines       []LineResult    `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Derive computes all derived columns of a single line
func Derive(line domain.OrderLine, window domain.PredictionWindow) LineResult {
	res := LineResult{OrderLine: line}

	// 1. Suggested quantity
	res.SuggestedQuantity = SuggestedQuantity(line, window)

	// 2. Current stock days (blank when it cannot be projected)
	if days, ok := CurrentStockDays(line, window); ok {
		res.CurrentStockDays = decimal.NullDecimal{Decimal: days, Valid: true}
	}

	// 3. Rotation including the quantity being ordered
	if rot, ok := Rotation(line, window); ok {
		res.Rotation = decimal.NullDecimal{Decimal: rot, Valid: true}
	}

	// 4. Line total and severity
	res.LineTotal = LineTotal(line)
	res.Severity = Classify(line, window)

	return res
}

// Reconcile derives every line and the order total in one pass
func Reconcile(lines []domain.OrderLine, window domain.PredictionWindow) Result {
	results := make([]LineResult, 0, len(lines))
	for _, line := range lines {
		results = append(results, Derive(line, window))
	}

	return Result{
		Lines:       results,
		TotalAmount: OrderTotal(lines),
	}
}

// CountBySeverity tallies how many lines fall into each tier
func (r Result) CountBySeverity() map[domain.Severity]int {
	counts := map[domain.Severity]int{
		domain.SeverityNormal:  0,
		domain.SeverityWarning: 0,
		domain.SeverityDanger:  0,
	}
	for _, l := range r.Lines {
		counts[l.Severity]++
	}
	return counts
}
