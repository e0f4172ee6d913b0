package reconcile

import (
	"strings"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

const payloadDateLayout = "2006-01-02"

// dateLayouts are tried in order when reading a last purchase date back
var dateLayouts = []string{payloadDateLayout, "02/01/2006", time.RFC3339}

// LenientDecimal decodes JSON numbers, numeric strings and null. Anything that
// does not parse becomes zero instead of failing the whole document.
type LenientDecimal struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler
func (l *LenientDecimal) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		l.Decimal = decimal.Zero
		return nil
	}
	l.Decimal = d
	return nil
}

// Lenient wraps d for encoding
func Lenient(d decimal.Decimal) LenientDecimal {
	return LenientDecimal{Decimal: d}
}

// ItemPayload is the per-line body persisted when an order is saved
type ItemPayload struct {
	Item                 string          `json:"item"`
	ItemName             string          `json:"item_name,omitempty"`
	ItemPackSize         LenientDecimal  `json:"item_pack_size"`
	DaysStockDesired     int             `json:"days_stock_desired"`
	DateLastPurchase     *string         `json:"date_last_purchase"`
	QuantityLastPurchase LenientDecimal  `json:"quantity_last_purchase"`
	SalePrediction       LenientDecimal  `json:"sale_prediction"`
	QuantitySuggested    decimal.Decimal `json:"quantity_suggested"`
	QuantityOrder        decimal.Decimal `json:"quantity_order"`
	Bonus                decimal.Decimal `json:"bonus"`
	Discount             decimal.Decimal `json:"discount"`
	Price                LenientDecimal  `json:"price"`
	StockAvailable       LenientDecimal  `json:"stock_available"`
	DaysStockAvailable   int             `json:"days_stock_available"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
}

// BuildItemPayload serializes a line, filling the derived fields from the engine.
func BuildItemPayload(line domain.OrderLine, window domain.PredictionWindow) ItemPayload {
	p := ItemPayload{
		Item:                 line.ItemCode,
		ItemName:             line.ItemName,
		ItemPackSize:         Lenient(decimal.NewFromInt(int64(line.PackSize))),
		DaysStockDesired:     line.DaysStockDesired,
		QuantityLastPurchase: Lenient(line.LastPurchaseQuantity),
		SalePrediction:       Lenient(line.SalePrediction),
		QuantitySuggested:    SuggestedQuantity(line, window),
		QuantityOrder:        line.QuantityOrder,
		Bonus:                line.Bonus,
		Discount:             line.Discount,
		Price:                Lenient(line.PurchasePrice),
		StockAvailable:       Lenient(line.StockAvailable),
		TotalAmount:          LineTotal(line),
	}

	if line.LastPurchaseDate != nil {
		formatted := line.LastPurchaseDate.Format(payloadDateLayout)
		p.DateLastPurchase = &formatted
	}

	if days, ok := CurrentStockDays(line, window); ok {
		p.DaysStockAvailable = int(days.IntPart())
	}

	return p
}

// BuildItemPayloads serializes every line of an order
func BuildItemPayloads(lines []domain.OrderLine, window domain.PredictionWindow) []ItemPayload {
	out := make([]ItemPayload, 0, len(lines))
	for _, line := range lines {
		out = append(out, BuildItemPayload(line, window))
	}
	return out
}

// ParseItemPayload reads a stored or submitted line back. Derived fields in the
// payload are ignored; they are recomputed from the inputs.
func ParseItemPayload(p ItemPayload) domain.OrderLine {
	line := domain.OrderLine{
		ItemCode:             strings.TrimSpace(p.Item),
		ItemName:             p.ItemName,
		DaysStockDesired:     p.DaysStockDesired,
		LastPurchaseQuantity: p.QuantityLastPurchase.Decimal,
		SalePrediction:       p.SalePrediction.Decimal,
		StockAvailable:       p.StockAvailable.Decimal,
		QuantityOrder:        p.QuantityOrder,
		Bonus:                p.Bonus,
		Discount:             p.Discount,
		PurchasePrice:        p.Price.Decimal,
	}

	if pack := p.ItemPackSize.Decimal; pack.IsPositive() {
		line.PackSize = int(pack.IntPart())
	}

	if p.DateLastPurchase != nil {
		line.LastPurchaseDate = parseDate(*p.DateLastPurchase)
	}

	return line
}

// ParseItemPayloads reads every line of a submitted order
func ParseItemPayloads(items []ItemPayload) []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(items))
	for _, p := range items {
		lines = append(lines, ParseItemPayload(p))
	}
	return lines
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
