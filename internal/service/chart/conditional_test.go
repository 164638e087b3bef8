package chart

import (
	"testing"

	"prism/internal/domain"
)

func fieldIDPtr(id domain.FieldID) *domain.FieldID { return &id }

func singleColor(target domain.FieldID, color, op string, values ...interface{}) domain.ConditionalFormattingConfig {
	return domain.ConditionalFormattingConfig{
		Target: fieldIDPtr(target),
		Color:  color,
		Rules:  []domain.ConditionalFormattingRule{{Operator: op, Values: values}},
	}
}

func TestResolveCellStyleFirstMatchWins(t *testing.T) {
	cat := pieCatalog(t)
	configs := []domain.ConditionalFormattingConfig{
		singleColor("orders_total_amount", "#ff0000", domain.OpGreaterThan, 100),
		singleColor("orders_total_amount", "#00ff00", domain.OpGreaterThan, 10),
	}

	style, ok := ResolveCellStyle(configs, "orders_total_amount", 500.0, cat)
	if !ok {
		t.Fatal("expected a style")
	}
	// Both configs match; list order decides, nothing blends.
	if style.Color != "#ff0000" {
		t.Errorf("color = %q, want first config's", style.Color)
	}

	style, ok = ResolveCellStyle(configs, "orders_total_amount", 50.0, cat)
	if !ok || style.Color != "#00ff00" {
		t.Errorf("style = %+v, want second config", style)
	}

	if _, ok := ResolveCellStyle(configs, "orders_total_amount", 5.0, cat); ok {
		t.Error("no config should match 5")
	}
}

func TestResolveCellStyleTargetGate(t *testing.T) {
	cat := pieCatalog(t)
	configs := []domain.ConditionalFormattingConfig{
		singleColor("orders_average_amount", "#ff0000", domain.OpGreaterThan, 0),
	}

	if _, ok := ResolveCellStyle(configs, "orders_total_amount", 10.0, cat); ok {
		t.Error("config targeting another field should not apply")
	}

	// A nil target applies to every numeric field.
	configs[0].Target = nil
	if _, ok := ResolveCellStyle(configs, "orders_total_amount", 10.0, cat); !ok {
		t.Error("nil target should apply to any numeric field")
	}
}

func TestResolveCellStyleSkipsNonNumericFields(t *testing.T) {
	cat := pieCatalog(t)
	configs := []domain.ConditionalFormattingConfig{
		{Color: "#ff0000", Rules: []domain.ConditionalFormattingRule{{Operator: domain.OpGreaterThan, Values: []interface{}{0}}}},
	}

	if _, ok := ResolveCellStyle(configs, "orders_status", "completed", cat); ok {
		t.Error("string dimension should never be styled")
	}
	if _, ok := ResolveCellStyle(configs, "orders_ghost", 10.0, cat); ok {
		t.Error("unknown field should never be styled")
	}
	if _, ok := ResolveCellStyle(configs, "orders_total_amount", "oops", cat); ok {
		t.Error("non-numeric cell value should never be styled")
	}
}

func TestResolveCellStyleMultiRuleConjunction(t *testing.T) {
	cat := pieCatalog(t)
	configs := []domain.ConditionalFormattingConfig{
		{
			Target: fieldIDPtr("orders_total_amount"),
			Color:  "#abc",
			Rules: []domain.ConditionalFormattingRule{
				{Operator: domain.OpGreaterThanOrEqual, Values: []interface{}{10}},
				{Operator: domain.OpLessThanOrEqual, Values: []interface{}{20}},
			},
		},
	}

	if _, ok := ResolveCellStyle(configs, "orders_total_amount", 15.0, cat); !ok {
		t.Error("value inside both rules should match")
	}
	if _, ok := ResolveCellStyle(configs, "orders_total_amount", 25.0, cat); ok {
		t.Error("value failing one rule should not match")
	}

	// A config with no rules matches nothing.
	configs[0].Rules = nil
	if _, ok := ResolveCellStyle(configs, "orders_total_amount", 15.0, cat); ok {
		t.Error("empty rule list should never match")
	}
}

func TestResolveCellStyleColorRange(t *testing.T) {
	cat := pieCatalog(t)
	configs := []domain.ConditionalFormattingConfig{
		{
			Target: fieldIDPtr("orders_total_amount"),
			ColorRange: &domain.ConditionalFormattingColorRange{
				Min: 0, Max: 100, StartColor: "#000000", EndColor: "#ffffff",
			},
		},
	}

	style, ok := ResolveCellStyle(configs, "orders_total_amount", 0.0, cat)
	if !ok || style.Color != "#000000" {
		t.Errorf("min style = %+v", style)
	}
	style, _ = ResolveCellStyle(configs, "orders_total_amount", 100.0, cat)
	if style.Color != "#ffffff" {
		t.Errorf("max style = %+v", style)
	}
	style, _ = ResolveCellStyle(configs, "orders_total_amount", 50.0, cat)
	if style.Color != "#808080" {
		t.Errorf("midpoint style = %q, want #808080", style.Color)
	}

	// Out-of-range values clamp to the endpoint colors.
	style, _ = ResolveCellStyle(configs, "orders_total_amount", -10.0, cat)
	if style.Color != "#000000" {
		t.Errorf("below-min style = %q", style.Color)
	}
	style, _ = ResolveCellStyle(configs, "orders_total_amount", 1e9, cat)
	if style.Color != "#ffffff" {
		t.Errorf("above-max style = %q", style.Color)
	}
}

func TestScaleColorDegenerateRange(t *testing.T) {
	r := domain.ConditionalFormattingColorRange{Min: 5, Max: 5, StartColor: "#111111", EndColor: "#999999"}
	if got := scaleColor(5, r); got != "#111111" {
		t.Errorf("degenerate range = %q, want start color", got)
	}
}

func TestLerpHexColorShortForm(t *testing.T) {
	if got := lerpHexColor("#000", "#fff", 0.5); got != "#808080" {
		t.Errorf("short-form lerp = %q", got)
	}
	// Unparsable colors snap to the nearest endpoint.
	if got := lerpHexColor("red", "#fff", 0.25); got != "red" {
		t.Errorf("fallback = %q", got)
	}
}

func TestStyleRows(t *testing.T) {
	cat := pieCatalog(t)
	configs := []domain.ConditionalFormattingConfig{
		singleColor("orders_total_amount", "#ff0000", domain.OpGreaterThan, 50),
	}
	rows := []domain.ResultRow{
		{"orders_status": cell("completed"), "orders_total_amount": cell(80.0)},
		{"orders_status": cell("pending"), "orders_total_amount": cell(10.0)},
	}

	styles := StyleRows(configs, rows, cat)
	if len(styles) != 2 {
		t.Fatalf("styles = %d rows", len(styles))
	}
	if styles[0]["orders_total_amount"].Color != "#ff0000" {
		t.Errorf("row 0 style = %+v", styles[0])
	}
	if len(styles[1]) != 0 {
		t.Errorf("row 1 should carry no styles, got %+v", styles[1])
	}
	if _, ok := styles[0]["orders_status"]; ok {
		t.Error("dimension cell should not be styled")
	}
}
