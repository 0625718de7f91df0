package reports

import (
	"testing"

	"hrkey/internal/domain/scoring"
)

func fp(v float64) *float64 { return &v }

func ip(v int) *int { return &v }

func TestBuildNineBoxCounts(t *testing.T) {
	items := []NineBoxItem{
		{EmployeeID: 1, NineBoxPosition: ip(3)},
		{EmployeeID: 2, NineBoxPosition: ip(3)},
		{EmployeeID: 3, NineBoxPosition: ip(7)},
		{EmployeeID: 4},
	}
	report := BuildNineBox("2025-R1", "", items)
	if report.Total != 4 {
		t.Fatalf("expected total 4, got %d", report.Total)
	}
	if len(report.Counts) != 9 {
		t.Fatalf("expected 9 count keys, got %d", len(report.Counts))
	}
	if report.Counts["3"] != 2 || report.Counts["7"] != 1 || report.Counts["5"] != 0 {
		t.Fatalf("unexpected counts: %v", report.Counts)
	}
	if report.ManagerName != nil {
		t.Fatalf("expected nil manager name, got %v", *report.ManagerName)
	}

	named := BuildNineBox("2025-R1", "Carla", nil)
	if named.ManagerName == nil || *named.ManagerName != "Carla" {
		t.Fatal("expected manager name to be echoed")
	}
	if named.Items == nil || named.Total != 0 {
		t.Fatalf("expected empty non-nil items, got %v", named.Items)
	}
}

func TestBuildPDIItemsClassifiesAndSorts(t *testing.T) {
	rows := []PDIRow{
		{EvaluationID: 1, EmployeeName: "Zeca", ManagerName: " bruno", FinalRating: fp(4.6)},
		{EvaluationID: 2, EmployeeName: "Ana", ManagerName: "Bruno", FinalRating: fp(3.5), MetasAvg: fp(3.456)},
		{EvaluationID: 3, EmployeeName: "Caio", ManagerName: "Alice"},
	}
	items := BuildPDIItems(rows, scoring.DefaultThresholds())

	order := []int64{3, 2, 1}
	for i, id := range order {
		if items[i].EvaluationID != id {
			t.Fatalf("expected evaluation %d at %d, got %d", id, i, items[i].EvaluationID)
		}
	}

	missing := items[0]
	if missing.FinalRating != 0 || missing.Classification != scoring.OutcomeMandatoryDevelopmentPlan || !missing.PDIFlag {
		t.Fatalf("expected missing rating to require a plan, got %+v", missing)
	}
	if items[1].Classification != scoring.OutcomeNeutral || items[1].PDIFlag || items[1].RecognitionFlag {
		t.Fatalf("expected neutral, got %+v", items[1])
	}
	if items[1].Ratings["METAS"] != 3.46 || items[1].Ratings["FUNCIONAL"] != 0 {
		t.Fatalf("unexpected ratings: %v", items[1].Ratings)
	}
	if !items[2].RecognitionFlag {
		t.Fatalf("expected recognition, got %+v", items[2])
	}
}

func TestResolveAndGroupMerit(t *testing.T) {
	bands := []scoring.MeritBand{
		{ID: 1, Year: 2025, Region: "R1", BandOrder: 1, PctMin: 0, PctMax: 150, Increase: [5]float64{0, 1, 2, 3, 4}},
	}
	rows := []MeritRow{
		{EmployeeID: 1, EmployeeName: "Ana", ManagerName: "Carla", CurrentSalary: 5000, Median100: fp(5000), SalaryRegion: "R1", SalaryGradeYear: 2025, FinalRating: fp(3.6)},
		{EmployeeID: 2, EmployeeName: "Bia", ManagerName: "  ", CurrentSalary: 4000, SalaryRegion: "R1", SalaryGradeYear: 2025},
		{EmployeeID: 3, EmployeeName: "Caio", ManagerName: "Diego", CurrentSalary: 9000, Median100: fp(5000), SalaryRegion: "R1", SalaryGradeYear: 2025, FinalRating: fp(5)},
		{EmployeeID: 4, EmployeeName: "Davi", ManagerName: "Carla", CurrentSalary: 5000, Median100: fp(5000), SalaryRegion: "R1", SalaryGradeYear: 2025, FinalRating: fp(1)},
	}
	items := ResolveMeritItems(rows, bands)
	if items[0].MeritPercent == nil || *items[0].MeritPercent != 3 {
		t.Fatalf("expected 3%% merit, got %v", items[0].MeritPercent)
	}
	if items[1].PctOfMedian != nil {
		t.Fatal("expected nil pct without a median")
	}
	if items[2].MeritPercent != nil {
		t.Fatalf("expected no band above the matrix, got %v", *items[2].MeritPercent)
	}

	groups := GroupMerit(items)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Gestor != "Carla" || len(groups[0].Funcionarios) != 2 {
		t.Fatalf("unexpected first group: %+v", groups[0])
	}
	if groups[1].Gestor != unnamedManager {
		t.Fatalf("expected fallback manager name, got %q", groups[1].Gestor)
	}
	if groups[2].Gestor != "Diego" {
		t.Fatalf("expected Diego last, got %q", groups[2].Gestor)
	}
	if groups[0].Funcionarios[0].SalaryYear != 2025 || *groups[0].Funcionarios[0].NewSalary != 5150 {
		t.Fatalf("unexpected merit employee: %+v", groups[0].Funcionarios[0])
	}
}
