package taxengine

import (
	"errors"
	"math/rand"
	"testing"

	"gstdesk/pkg/domain"
)

func mustEdit(t *testing.T, item domain.LineItem, field Field, value any) domain.LineItem {
	t.Helper()
	out, err := ApplyFieldEdit(item, field, value)
	if err != nil {
		t.Fatalf("edit %s=%v: %v", field, value, err)
	}
	return out
}

func deref(t *testing.T, v *float64) float64 {
	t.Helper()
	if v == nil {
		t.Fatalf("expected computed value, got nil")
	}
	return *v
}

func TestQuantityEditRecomputesWholeBlock(t *testing.T) {
	item := domain.LineItem{Description: "printer paper", Quantity: 2, UnitRate: 100, GSTRate: 18}
	item = mustEdit(t, item, FieldQuantity, 3)

	if item.TaxableValue != 300 {
		t.Fatalf("taxable_value = %v, want 300", item.TaxableValue)
	}
	if got := deref(t, item.CGST); got != 27 {
		t.Fatalf("cgst = %v, want 27", got)
	}
	if got := deref(t, item.SGST); got != 27 {
		t.Fatalf("sgst = %v, want 27", got)
	}
	if got := deref(t, item.IGST); got != 54 {
		t.Fatalf("igst = %v, want 54", got)
	}
	if got := deref(t, item.Total); got != 354 {
		t.Fatalf("total = %v, want 354", got)
	}
}

func TestUnitRateEditRecomputesTaxable(t *testing.T) {
	item := domain.LineItem{Quantity: 4, UnitRate: 50, GSTRate: 5}
	item = mustEdit(t, item, FieldUnitRate, 25)

	if item.TaxableValue != 100 {
		t.Fatalf("taxable_value = %v, want 100", item.TaxableValue)
	}
	if got := deref(t, item.IGST); got != 5 {
		t.Fatalf("igst = %v, want 5", got)
	}
	if got := deref(t, item.Total); got != 105 {
		t.Fatalf("total = %v, want 105", got)
	}
}

func TestGSTRateEditKeepsTaxableValue(t *testing.T) {
	item := domain.LineItem{Quantity: 1, UnitRate: 200, TaxableValue: 200, GSTRate: 18}
	item = mustEdit(t, item, FieldGSTRate, 28)

	if item.TaxableValue != 200 {
		t.Fatalf("taxable_value changed to %v", item.TaxableValue)
	}
	if got := deref(t, item.IGST); got != 56 {
		t.Fatalf("igst = %v, want 56", got)
	}
}

func TestTextFieldsReplaceVerbatim(t *testing.T) {
	item := domain.LineItem{Description: "old", HSNSAC: "0000", Quantity: 2, UnitRate: 10}
	item = mustEdit(t, item, FieldDescription, "toner cartridge")
	item = mustEdit(t, item, FieldHSNSAC, "8443")

	if item.Description != "toner cartridge" || item.HSNSAC != "8443" {
		t.Fatalf("text edit not applied: %+v", item)
	}
	if item.CGST != nil || item.Total != nil {
		t.Fatalf("text edit must not trigger recomputation")
	}
}

func TestNonNumericInputCoercesToZero(t *testing.T) {
	item := domain.LineItem{Quantity: 2, UnitRate: 100, GSTRate: 18}
	item = mustEdit(t, item, FieldQuantity, "not a number")

	if item.Quantity != 0 || item.TaxableValue != 0 {
		t.Fatalf("qty = %v taxable = %v, want zeros", item.Quantity, item.TaxableValue)
	}
	if got := deref(t, item.Total); got != 0 {
		t.Fatalf("total = %v, want 0", got)
	}
}

func TestNumericStringsAreAccepted(t *testing.T) {
	item := domain.LineItem{Quantity: 1, UnitRate: 1, GSTRate: 12}
	item = mustEdit(t, item, FieldUnitRate, " 99.50 ")
	if item.UnitRate != 99.5 {
		t.Fatalf("rate = %v, want 99.5", item.UnitRate)
	}
}

func TestUnknownFieldFailsLoudly(t *testing.T) {
	_, err := ApplyFieldEdit(domain.LineItem{}, Field("discount"), 5)
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("err = %v, want ErrUnknownField", err)
	}
}

func TestIdempotence(t *testing.T) {
	item := domain.LineItem{Description: "x", Quantity: 3, UnitRate: 7.5, GSTRate: 18}
	once := mustEdit(t, item, FieldQuantity, 5)
	twice := mustEdit(t, once, FieldQuantity, 5)

	if once.TaxableValue != twice.TaxableValue ||
		deref(t, once.CGST) != deref(t, twice.CGST) ||
		deref(t, once.IGST) != deref(t, twice.IGST) ||
		deref(t, once.Total) != deref(t, twice.Total) {
		t.Fatalf("second identical edit changed the item: %+v vs %+v", once, twice)
	}
}

func TestInvariantsHoldUnderRandomEditSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	fields := []Field{FieldQuantity, FieldUnitRate, FieldGSTRate}
	rates := []any{0, 5, 12, 18, 28}

	item := domain.LineItem{Quantity: 1, UnitRate: 1, GSTRate: 18}
	for i := 0; i < 500; i++ {
		field := fields[rng.Intn(len(fields))]
		var value any
		if field == FieldGSTRate {
			value = rates[rng.Intn(len(rates))]
		} else {
			value = float64(rng.Intn(10000)) / 4
		}
		item = mustEdit(t, item, field, value)

		if item.TaxableValue != item.Quantity*item.UnitRate {
			t.Fatalf("step %d: taxable %v != qty %v * rate %v", i, item.TaxableValue, item.Quantity, item.UnitRate)
		}
		cgst, sgst, igst := deref(t, item.CGST), deref(t, item.SGST), deref(t, item.IGST)
		if cgst+sgst != igst {
			t.Fatalf("step %d: cgst %v + sgst %v != igst %v", i, cgst, sgst, igst)
		}
		if got := deref(t, item.Total); got != item.TaxableValue+cgst+sgst {
			t.Fatalf("step %d: total %v != taxable %v + gst %v", i, got, item.TaxableValue, cgst+sgst)
		}
	}
}

func TestRecalculateFillsMissingBlock(t *testing.T) {
	item := Recalculate(domain.LineItem{Quantity: 2, UnitRate: 100, GSTRate: 18})
	if item.TaxableValue != 200 {
		t.Fatalf("taxable = %v, want 200", item.TaxableValue)
	}
	if got := deref(t, item.IGST); got != 36 {
		t.Fatalf("igst = %v, want 36", got)
	}
}

func TestIsValidGSTRate(t *testing.T) {
	for _, r := range []float64{0, 5, 12, 18, 28} {
		if !IsValidGSTRate(r) {
			t.Fatalf("rate %v should be valid", r)
		}
	}
	if IsValidGSTRate(15) {
		t.Fatalf("rate 15 is not a slab")
	}
}
