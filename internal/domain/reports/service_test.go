package reports

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"hrkey/internal/domain/scoring"
	"hrkey/internal/platform/cache"
)

type fakeStore struct {
	nineBoxFilter NineBoxFilter
	pdiFilter     PDIFilter
	meritRegion   string
	meritYear     int
}

func (f *fakeStore) NineBoxItems(_ context.Context, filter NineBoxFilter) ([]NineBoxItem, error) {
	f.nineBoxFilter = filter
	return []NineBoxItem{{EmployeeID: 1, NineBoxPosition: ip(5)}}, nil
}

func (f *fakeStore) PDIRows(_ context.Context, filter PDIFilter) ([]PDIRow, error) {
	f.pdiFilter = filter
	return []PDIRow{{EvaluationID: 9, EmployeeName: "Ana", ManagerName: "Carla", FinalRating: fp(2.5)}}, nil
}

func (f *fakeStore) MeritRows(_ context.Context, region string, year int) ([]MeritRow, error) {
	f.meritRegion = region
	f.meritYear = year
	return []MeritRow{{EmployeeID: 1, EmployeeName: "Ana", ManagerName: "Carla", CurrentSalary: 5000, Median100: fp(5000), SalaryRegion: region, SalaryGradeYear: year, FinalRating: fp(4)}}, nil
}

func (f *fakeStore) MeritBands(context.Context) ([]scoring.MeritBand, error) {
	return []scoring.MeritBand{{ID: 1, Year: 2025, Region: "R1", BandOrder: 1, PctMin: 0, PctMax: 200, Increase: [5]float64{1, 2, 3, 4, 5}}}, nil
}

type fakeRounds struct{ code string }

func (f fakeRounds) ActiveCode(context.Context) (string, error) { return f.code, nil }

func newTestService(store *fakeStore) *Service {
	svc := NewService(store, fakeRounds{code: "2025-R2"}, nil, nil, Settings{
		Thresholds:    scoring.DefaultThresholds(),
		DefaultRegion: "R1",
		DefaultYear:   2025,
	})
	svc.Now = func() time.Time { return time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestNineBoxDefaultsToActiveRound(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	report, err := svc.NineBox(context.Background(), "M1", "", " Carla ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RoundCode != "2025-R2" || store.nineBoxFilter.RoundCode != "2025-R2" {
		t.Fatalf("expected active round, got %q", report.RoundCode)
	}
	if store.nineBoxFilter.ManagerCode != "M1" || store.nineBoxFilter.ManagerName != "Carla" {
		t.Fatalf("unexpected filter: %+v", store.nineBoxFilter)
	}
	if report.Counts["5"] != 1 {
		t.Fatalf("expected one item in box 5, got %v", report.Counts)
	}

	if _, err := svc.NineBox(context.Background(), "", "2024-R1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.nineBoxFilter.RoundCode != "2024-R1" {
		t.Fatalf("expected explicit round, got %q", store.nineBoxFilter.RoundCode)
	}
}

func TestPDIReport(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	report, err := svc.PDI(context.Background(), "", "2025-R2", "ACME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RoundCode == nil || *report.RoundCode != "2025-R2" || report.Empresa == nil || *report.Empresa != "ACME" {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if report.Criteria.PDIThreshold != 3 || report.Criteria.RecognitionThreshold != 4.5 {
		t.Fatalf("unexpected criteria: %+v", report.Criteria)
	}
	if report.Total != 1 || !report.Items[0].PDIFlag {
		t.Fatalf("expected one flagged item, got %+v", report.Items)
	}
	if !report.GeneratedAt.Equal(time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected generated_at: %v", report.GeneratedAt)
	}

	defaulted, err := svc.PDI(context.Background(), "M1", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if defaulted.RoundCode == nil || *defaulted.RoundCode != "2025-R2" {
		t.Fatalf("expected active round, got %v", defaulted.RoundCode)
	}
	if defaulted.Empresa != nil {
		t.Fatal("expected null empresa")
	}
	if store.pdiFilter.ManagerCode != "M1" {
		t.Fatalf("expected manager scope, got %+v", store.pdiFilter)
	}

	svc.Rounds = fakeRounds{}
	none, err := svc.PDI(context.Background(), "", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if none.RoundCode != nil {
		t.Fatal("expected null round without an active round")
	}
}

func TestCachedReportsEchoCurrentCaller(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	rc, err := cache.Connect(ctx, url, time.Minute)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer rc.Close()
	rc.InvalidateReports(ctx)
	defer rc.InvalidateReports(ctx)

	store := &fakeStore{}
	svc := newTestService(store)
	svc.Cache = rc

	if _, err := svc.NineBox(ctx, "", "2025-R2", "CARLA"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report, err := svc.NineBox(ctx, "", "2025-R2", "carla")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ManagerName == nil || *report.ManagerName != "carla" {
		t.Fatalf("expected caller spelling, got %v", report.ManagerName)
	}

	first, err := svc.PDI(ctx, "", "2025-R2", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	later := first.GeneratedAt.Add(time.Hour)
	svc.Now = func() time.Time { return later }
	second, err := svc.PDI(ctx, "", "2025-R2", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.GeneratedAt.Equal(later) {
		t.Fatalf("expected fresh generated_at %v, got %v", later, second.GeneratedAt)
	}
}

func TestNineBoxEchoesTrimmedManager(t *testing.T) {
	svc := newTestService(&fakeStore{})
	report, err := svc.NineBox(context.Background(), "", "2025-R2", "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ManagerName != nil {
		t.Fatalf("expected null manager, got %q", *report.ManagerName)
	}
}

func TestMeritReports(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	sim, err := svc.MeritSimulation(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.meritRegion != "R1" || store.meritYear != 2025 {
		t.Fatalf("expected salary defaults, got %s %d", store.meritRegion, store.meritYear)
	}
	if sim.Count != 1 || *sim.Items[0].MeritPercent != 4 {
		t.Fatalf("unexpected simulation: %+v", sim)
	}

	groups, err := svc.MeritReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 1 || groups[0].Gestor != "Carla" {
		t.Fatalf("unexpected groups: %+v", groups)
	}

	var buf bytes.Buffer
	if err := WriteMeritPDF(&buf, groups, svc.now()); err != nil {
		t.Fatalf("unexpected pdf error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("expected pdf output")
	}
}

func TestWritePDIPDF(t *testing.T) {
	svc := newTestService(&fakeStore{})
	report, err := svc.PDI(context.Background(), "", "2025-R2", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if err := WritePDIPDF(&buf, report); err != nil {
		t.Fatalf("unexpected pdf error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected pdf bytes")
	}
}
