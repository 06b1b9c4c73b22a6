// Package taxengine recomputes the derived fields of an invoice line item
// when one editable field changes: taxable value follows quantity and unit
// rate, and the CGST/SGST/IGST split plus line total follow the taxable
// value and GST rate.
package taxengine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gstdesk/pkg/domain"
)

// Field names an editable line-item field.
type Field string

const (
	FieldDescription Field = "description"
	FieldHSNSAC      Field = "hsn_sac"
	FieldQuantity    Field = "qty"
	FieldUnitRate    Field = "rate"
	FieldGSTRate     Field = "gst_rate"
)

// ErrUnknownField is returned when the field name is not one of the
// editable fields. This is a caller programming error, not bad user input.
var ErrUnknownField = errors.New("unknown line item field")

// GSTRates are the rate slabs in effect for goods and services.
var GSTRates = []float64{0, 5, 12, 18, 28}

// IsValidGSTRate reports whether rate is one of the statutory slabs.
func IsValidGSTRate(rate float64) bool {
	for _, r := range GSTRates {
		if r == rate {
			return true
		}
	}
	return false
}

// ApplyFieldEdit returns a copy of item with field set to value and every
// dependent field recomputed. Non-numeric input for a numeric field is
// treated as zero, never rejected; the only error is an unrecognized field.
// Applying the same edit twice yields the same result.
func ApplyFieldEdit(item domain.LineItem, field Field, value any) (domain.LineItem, error) {
	switch field {
	case FieldDescription:
		item.Description = coerceString(value)
	case FieldHSNSAC:
		item.HSNSAC = coerceString(value)
	case FieldQuantity:
		item.Quantity = coerceNumber(value)
		item.TaxableValue = item.Quantity * item.UnitRate
		applyGSTBlock(&item)
	case FieldUnitRate:
		item.UnitRate = coerceNumber(value)
		item.TaxableValue = item.Quantity * item.UnitRate
		applyGSTBlock(&item)
	case FieldGSTRate:
		item.GSTRate = coerceNumber(value)
		applyGSTBlock(&item)
	default:
		return item, fmt.Errorf("%w: %q", ErrUnknownField, string(field))
	}
	return item, nil
}

// Recalculate recomputes the full derived block of an item from its
// quantity, unit rate, and GST rate, as if each had just been edited.
func Recalculate(item domain.LineItem) domain.LineItem {
	item.TaxableValue = item.Quantity * item.UnitRate
	applyGSTBlock(&item)
	return item
}

// applyGSTBlock populates both tax splits from the current taxable value:
// CGST and SGST carry half the GST amount each, IGST carries the whole of
// it. Which split is authoritative depends on whether the supply is
// intra-state or inter-state; the extraction pipeline does not record that,
// so both are kept. The half split is left unrounded so cgst+sgst always
// equals igst exactly.
func applyGSTBlock(item *domain.LineItem) {
	gstAmount := round2(item.TaxableValue * item.GSTRate / 100)
	half := gstAmount / 2
	item.CGST = ptr(half)
	item.SGST = ptr(half)
	item.IGST = ptr(gstAmount)
	item.Total = ptr(item.TaxableValue + gstAmount)
}

func coerceString(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func coerceNumber(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr(v float64) *float64 {
	return &v
}
