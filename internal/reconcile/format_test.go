package reconcile

import (
	"testing"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatThousands(t *testing.T) {
	cases := map[string]string{
		"0":         "0",
		"999":       "999",
		"1000":      "1.000",
		"123456":    "123.456",
		"1234567":   "1.234.567",
		"-1500":     "-1.500",
		"-1234567":  "-1.234.567",
		"1499.5":    "1.500",
		"987654.49": "987.654",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatThousands(dec(in)), in)
	}
}

func TestFormatBlanks(t *testing.T) {
	assert.Equal(t, "", FormatRotation(decimal.NullDecimal{}))
	assert.Equal(t, "", FormatStockDays(decimal.NullDecimal{}))
	assert.Equal(t, "3.0", FormatRotation(decimal.NullDecimal{Decimal: dec("3"), Valid: true}))
	assert.Equal(t, "-2", FormatStockDays(decimal.NullDecimal{Decimal: dec("-2"), Valid: true}))
}

func TestPresent(t *testing.T) {
	line := domain.OrderLine{
		ItemCode:       "A",
		ItemName:       "Agua",
		SalePrediction: dec("60"),
		StockAvailable: dec("25"),
		QuantityOrder:  dec("1200"),
		PurchasePrice:  dec("3.5"),
	}

	row := Present(Derive(line, thirtyDays))
	assert.Equal(t, "A", row.ItemCode)
	assert.Equal(t, "0", row.SuggestedQuantity)
	assert.Equal(t, "13", row.CurrentStockDays)
	assert.Equal(t, "53.0", row.Rotation)
	assert.Equal(t, "4.200", row.Total)
	assert.Equal(t, "normal", row.Severity)

	blank := Present(Derive(line, reversed))
	assert.Equal(t, "", blank.CurrentStockDays)
	assert.Equal(t, "", blank.Rotation)
}
