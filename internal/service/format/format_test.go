package format

import (
	"strings"
	"testing"
	"time"

	"prism/internal/domain"
)

func intPtr(n int) *int { return &n }

func TestFormatNullSentinel(t *testing.T) {
	f := New(nil)
	got := f.Format(nil, domain.TypeNumber, nil)
	if got.Raw != nil {
		t.Errorf("raw = %v, want nil", got.Raw)
	}
	if got.Formatted != domain.NullDisplay {
		t.Errorf("formatted = %q, want %q", got.Formatted, domain.NullDisplay)
	}
}

func TestFormatPlainNumbers(t *testing.T) {
	f := New(nil)
	cases := []struct {
		in   interface{}
		want string
	}{
		{0, "0"},
		{1.5, "1.5"},
		{2.0, "2"},
		{1234.567, "1234.57"},
		{-3.10, "-3.1"},
	}
	for _, tc := range cases {
		got := f.Format(tc.in, domain.TypeNumber, nil)
		if got.Formatted != tc.want {
			t.Errorf("Format(%v) = %q, want %q", tc.in, got.Formatted, tc.want)
		}
	}
}

func TestFormatRounding(t *testing.T) {
	f := New(nil)

	got := f.Format(1234.5678, domain.TypeNumber, &domain.FormatOptions{Round: intPtr(1)})
	if got.Formatted != "1234.6" {
		t.Errorf("round 1 = %q", got.Formatted)
	}

	// Explicit rounding keeps trailing zeros.
	got = f.Format(2.0, domain.TypeNumber, &domain.FormatOptions{Round: intPtr(2)})
	if got.Formatted != "2.00" {
		t.Errorf("round 2 = %q", got.Formatted)
	}

	got = f.Format(1234.5678, domain.TypeNumber, &domain.FormatOptions{Round: intPtr(0)})
	if got.Formatted != "1235" {
		t.Errorf("round 0 = %q", got.Formatted)
	}
}

func TestFormatCompact(t *testing.T) {
	f := New(nil)
	cases := []struct {
		in      float64
		compact string
		want    string
	}{
		{1500000, domain.CompactMillions, "1.5M"},
		{1000000, domain.CompactMillions, "1M"},
		{2500, domain.CompactThousands, "2.5K"},
		{3200000000, domain.CompactBillions, "3.2B"},
		{1200000000000, domain.CompactTrillions, "1.2T"},
		{1500000, "M", "1.5M"},
		{0, domain.CompactMillions, "0"},
		{0, domain.CompactThousands, "0"},
	}
	for _, tc := range cases {
		got := f.Format(tc.in, domain.TypeNumber, &domain.FormatOptions{Compact: tc.compact})
		if got.Formatted != tc.want {
			t.Errorf("compact %s of %v = %q, want %q", tc.compact, tc.in, got.Formatted, tc.want)
		}
	}
}

func TestFormatSeparators(t *testing.T) {
	f := New(nil)
	opts := func(sep string) *domain.FormatOptions {
		return &domain.FormatOptions{Round: intPtr(2), Separator: sep}
	}

	cases := []struct {
		sep  string
		want string
	}{
		{domain.SeparatorCommaPeriod, "1,234,567.89"},
		{domain.SeparatorSpacePeriod, "1 234 567.89"},
		{domain.SeparatorPeriodComma, "1.234.567,89"},
		{domain.SeparatorNoSeparatorPeriod, "1234567.89"},
	}
	for _, tc := range cases {
		got := f.Format(1234567.89, domain.TypeNumber, opts(tc.sep))
		if got.Formatted != tc.want {
			t.Errorf("separator %s = %q, want %q", tc.sep, got.Formatted, tc.want)
		}
	}

	// Grouping also applies to negative values.
	got := f.Format(-1234567.89, domain.TypeNumber, opts(domain.SeparatorCommaPeriod))
	if got.Formatted != "-1,234,567.89" {
		t.Errorf("negative grouping = %q", got.Formatted)
	}
}

func TestFormatPrefixSuffix(t *testing.T) {
	f := New(nil)
	got := f.Format(42.0, domain.TypeNumber, &domain.FormatOptions{Prefix: "~", Suffix: " units"})
	if got.Formatted != "~42 units" {
		t.Errorf("prefix/suffix = %q", got.Formatted)
	}
}

func TestFormatPresets(t *testing.T) {
	f := New(nil)

	got := f.Format(0.256, domain.TypeNumber, &domain.FormatOptions{Format: domain.FormatPercent, Round: intPtr(1)})
	if got.Formatted != "25.6%" {
		t.Errorf("percent = %q", got.Formatted)
	}

	got = f.Format(12.5, domain.TypeNumber, &domain.FormatOptions{Format: domain.FormatKm})
	if got.Formatted != "12.5 km" {
		t.Errorf("km = %q", got.Formatted)
	}

	got = f.Format(12.5, domain.TypeNumber, &domain.FormatOptions{Format: domain.FormatMi})
	if got.Formatted != "12.5 mi" {
		t.Errorf("mi = %q", got.Formatted)
	}

	// IDs print ungrouped with no decorations.
	got = f.Format(1234567.0, domain.TypeNumber, &domain.FormatOptions{Format: domain.FormatID})
	if got.Formatted != "1234567" {
		t.Errorf("id = %q", got.Formatted)
	}
}

func TestFormatCurrency(t *testing.T) {
	f := New(nil)

	// Exact symbol spacing is locale-dependent, so assert on the parts.
	got := f.Format(1234.5, domain.TypeNumber, &domain.FormatOptions{Currency: "USD"})
	if !strings.Contains(got.Formatted, "$") {
		t.Errorf("usd = %q, want a dollar symbol", got.Formatted)
	}

	got = f.Format(99.9, domain.TypeNumber, &domain.FormatOptions{Format: domain.FormatEur})
	if !strings.Contains(got.Formatted, "€") {
		t.Errorf("eur = %q, want a euro symbol", got.Formatted)
	}

	got = f.Format(2500000, domain.TypeNumber, &domain.FormatOptions{Currency: "GBP", Compact: domain.CompactMillions})
	if !strings.Contains(got.Formatted, "£") || !strings.HasSuffix(got.Formatted, "M") {
		t.Errorf("compact gbp = %q, want pound symbol and M suffix", got.Formatted)
	}

	got = f.Format(0.0, domain.TypeNumber, &domain.FormatOptions{Currency: "GBP", Compact: domain.CompactMillions})
	if strings.HasSuffix(got.Formatted, "M") {
		t.Errorf("compact gbp of zero = %q, want no compact suffix", got.Formatted)
	}

	// Unknown ISO codes degrade to the plain value.
	got = f.Format(10.0, domain.TypeNumber, &domain.FormatOptions{Currency: "ZZZ"})
	if got.Formatted != "10" {
		t.Errorf("unknown currency = %q", got.Formatted)
	}
}

func TestFormatDegradesMalformedCells(t *testing.T) {
	f := New(nil)

	got := f.Format("not a number", domain.TypeNumber, nil)
	if got.Formatted != "not a number" {
		t.Errorf("degraded = %q", got.Formatted)
	}
	if got.Raw != "not a number" {
		t.Errorf("raw = %v", got.Raw)
	}
}

func TestFormatBooleanAndDates(t *testing.T) {
	f := New(nil)

	got := f.Format(true, domain.TypeBoolean, nil)
	if got.Formatted != "true" {
		t.Errorf("bool = %q", got.Formatted)
	}

	ts := time.Date(2026, time.April, 5, 14, 30, 9, 0, time.UTC)
	got = f.Format(ts, domain.TypeDate, nil)
	if got.Formatted != "2026-04-05" {
		t.Errorf("date = %q", got.Formatted)
	}
	got = f.Format(ts, domain.TypeTimestamp, nil)
	if got.Formatted != "2026-04-05 14:30:09" {
		t.Errorf("timestamp = %q", got.Formatted)
	}

	// Date-shaped strings parse too.
	got = f.Format("2026-04-05T14:30:09Z", domain.TypeDate, nil)
	if got.Formatted != "2026-04-05" {
		t.Errorf("string date = %q", got.Formatted)
	}
}

func TestFormatStringPassthrough(t *testing.T) {
	f := New(nil)
	got := f.Format("completed", domain.TypeString, nil)
	if got.Formatted != "completed" {
		t.Errorf("string = %q", got.Formatted)
	}
}
