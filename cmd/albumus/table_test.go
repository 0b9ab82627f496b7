package main

import (
	"strings"
	"testing"
)

func TestRenderTableFooterAndPadding(t *testing.T) {
	out := renderTable([]tableColumn{{Header: "Run"}, {Header: "OK", Align: alignRight}}, [][]string{
		{"r1", "3"},
		{"r2"},
	}, "Total", "3")

	requireContains(t, out, "RUN")
	requireContains(t, out, "TOTAL")
	if lines := strings.Count(out, "\n") + 1; lines != 8 {
		t.Fatalf("expected 8 lines (borders, header, 2 rows, footer), got %d:\n%s", lines, out)
	}
}

func TestRenderTableWrapsLongCells(t *testing.T) {
	long := strings.Repeat("word ", 20)
	out := renderTable([]tableColumn{{Header: "Error", MaxWidth: 20}}, [][]string{{long}})
	for _, line := range strings.Split(out, "\n") {
		if n := len([]rune(line)); n > 24 {
			t.Fatalf("line wider than column limit (%d): %q", n, line)
		}
	}
}

func TestRenderTableNoColumns(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
