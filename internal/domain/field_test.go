package domain

import "testing"

func TestNewFieldID(t *testing.T) {
	if got := NewFieldID("orders", "status"); got != "orders_status" {
		t.Errorf("NewFieldID = %q, want orders_status", got)
	}
}

func TestDisplayLabel(t *testing.T) {
	f := Field{Name: "total_amount"}
	if got := f.DisplayLabel(); got != "Total Amount" {
		t.Errorf("DisplayLabel = %q, want Total Amount", got)
	}

	f.Label = "Revenue"
	if got := f.DisplayLabel(); got != "Revenue" {
		t.Errorf("DisplayLabel = %q, want Revenue", got)
	}
}

func TestNormalizeCompact(t *testing.T) {
	cases := map[string]string{
		"K":             CompactThousands,
		"M":             CompactMillions,
		"B":             CompactBillions,
		"T":             CompactTrillions,
		CompactMillions: CompactMillions,
		"bogus":         "bogus",
		"":              "",
	}
	for in, want := range cases {
		if got := NormalizeCompact(in); got != want {
			t.Errorf("NormalizeCompact(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTypePredicates(t *testing.T) {
	if !IsNumericType(TypeNumber) {
		t.Error("number should be numeric")
	}
	if IsNumericType(TypeString) {
		t.Error("string should not be numeric")
	}
	if !IsDateType(TypeDate) || !IsDateType(TypeTimestamp) {
		t.Error("date and timestamp should both be date types")
	}
	if IsDateType(TypeNumber) {
		t.Error("number should not be a date type")
	}
}
