package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// Field names a user-editable column of an order line
type Field string

const (
	FieldQuantityOrder Field = "quantity_order"
	FieldBonus         Field = "bonus"
	FieldDiscount      Field = "discount"
)

// fieldScale is the number of decimal places stored for each editable field
var fieldScale = map[Field]int32{
	FieldQuantityOrder: 3,
	FieldBonus:         3,
	FieldDiscount:      2,
}

// maxStoredValue bounds the integer part the order_items columns can hold
var maxStoredValue = decimal.New(1, 11)

// EditResult tells the caller whether to keep an edit or revert the cell
type EditResult struct {
	Accept bool   `json:"accept"`
	Reason string `json:"reason,omitempty"`
}

// ParseField maps a column name to an editable field
func ParseField(name string) (Field, bool) {
	switch Field(strings.ToLower(strings.TrimSpace(name))) {
	case FieldQuantityOrder:
		return FieldQuantityOrder, true
	case FieldBonus:
		return FieldBonus, true
	case FieldDiscount:
		return FieldDiscount, true
	}
	return "", false
}

// ValidateEdit checks a proposed value for an editable field.
func ValidateEdit(field Field, value decimal.Decimal) EditResult {
	switch field {
	case FieldQuantityOrder, FieldBonus, FieldDiscount:
		if value.IsNegative() {
			return EditResult{Reason: string(field) + " cannot be negative"}
		}
		return EditResult{Accept: true}
	default:
		return EditResult{Reason: "field " + string(field) + " is read-only"}
	}
}

// ApplyEdit writes value into line only when ValidateEdit accepts it, so a
// rejected edit leaves the previous value in place.
func ApplyEdit(line *domain.OrderLine, field Field, value decimal.Decimal) EditResult {
	res := ValidateEdit(field, value)
	if !res.Accept {
		return res
	}

	switch field {
	case FieldQuantityOrder:
		line.QuantityOrder = value
	case FieldBonus:
		line.Bonus = value
	case FieldDiscount:
		line.Discount = value
	}
	return res
}

// ValidateLines checks the editable fields of every line and reports the
// problems keyed by "items[i].field".
func ValidateLines(lines []domain.OrderLine) error {
	verr := domain.ValidationError{}
	for i, line := range lines {
		checks := []struct {
			field Field
			value decimal.Decimal
		}{
			{FieldQuantityOrder, line.QuantityOrder},
			{FieldBonus, line.Bonus},
			{FieldDiscount, line.Discount},
		}
		for _, c := range checks {
			if res := ValidateEdit(c.field, c.value); !res.Accept {
				verr.Add(itemKey(i, c.field), res.Reason)
				continue
			}
			if reason := checkStorable(c.field, c.value); reason != "" {
				verr.Add(itemKey(i, c.field), reason)
			}
		}
		if strings.TrimSpace(line.ItemCode) == "" {
			verr.Add(itemKey(i, "item"), "item is required")
		}
	}
	return verr.OrNil()
}

// checkStorable rejects values that would be rounded or overflow when saved
func checkStorable(field Field, value decimal.Decimal) string {
	scale := fieldScale[field]
	if !value.Equal(value.Truncate(scale)) {
		return fmt.Sprintf("%s allows at most %d decimal places", field, scale)
	}
	if value.Abs().GreaterThanOrEqual(maxStoredValue) {
		return string(field) + " is too large"
	}
	return ""
}

func itemKey(i int, field Field) string {
	return "items[" + strconv.Itoa(i) + "]." + string(field)
}
