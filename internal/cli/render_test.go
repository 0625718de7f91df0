package cli

import (
	"strings"
	"testing"

	"hrkey/internal/domain/reports"
)

func TestRenderNineBox(t *testing.T) {
	pos := func(p int) *int { return &p }
	manager := "Carla"
	report := reports.BuildNineBox("2025-A", manager, []reports.NineBoxItem{
		{EmployeeID: 1, NineBoxPosition: pos(1)},
		{EmployeeID: 2, NineBoxPosition: pos(1)},
		{EmployeeID: 3, NineBoxPosition: pos(9)},
		{EmployeeID: 4},
	})

	out := RenderNineBox(report)

	for _, want := range []string{"Round 2025-A / Carla", "#1", "#9", "total 4, unplaced 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Index(out, "#1") > strings.Index(out, "#4") || strings.Index(out, "#4") > strings.Index(out, "#7") {
		t.Fatalf("expected rows ordered 1, 4, 7 top to bottom, got:\n%s", out)
	}
}

func TestRenderNineBoxWithoutManager(t *testing.T) {
	out := RenderNineBox(reports.BuildNineBox("R1", "", nil))
	if strings.Contains(out, " / ") {
		t.Fatalf("expected no manager in header, got:\n%s", out)
	}
	if !strings.Contains(out, "total 0, unplaced 0") {
		t.Fatalf("expected empty totals, got:\n%s", out)
	}
}
