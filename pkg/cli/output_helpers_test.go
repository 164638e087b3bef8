package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	err := printTable(&buf, []string{"NAME", "ROWS"}, [][]string{
		{"orders", "42"},
		{"customers", "7"},
	})
	if err != nil {
		t.Fatalf("print: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "NAME") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "orders") || !strings.Contains(lines[1], "42") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, map[string]int{"rows": 3}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(buf.String(), `"rows": 3`) {
		t.Errorf("output = %q", buf.String())
	}
}
