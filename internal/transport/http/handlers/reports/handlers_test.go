package reportshandler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"hrkey/internal/domain/auth"
	"hrkey/internal/domain/reports"
	"hrkey/internal/domain/scoring"
	"hrkey/internal/transport/http/middleware"
)

type fakeStore struct {
	lastNineBox reports.NineBoxFilter
}

func (f *fakeStore) NineBoxItems(_ context.Context, filter reports.NineBoxFilter) ([]reports.NineBoxItem, error) {
	f.lastNineBox = filter
	pos := 9
	return []reports.NineBoxItem{{EmployeeID: 1, EmployeeName: "Ana", NineBoxPosition: &pos}}, nil
}

func (f *fakeStore) PDIRows(context.Context, reports.PDIFilter) ([]reports.PDIRow, error) {
	rating := 2.4
	return []reports.PDIRow{{EvaluationID: 3, EmployeeID: 1, EmployeeName: "Ana", ManagerName: "Carla", FinalRating: &rating}}, nil
}

func (f *fakeStore) MeritRows(_ context.Context, region string, year int) ([]reports.MeritRow, error) {
	median, rating := 5000.0, 4.0
	return []reports.MeritRow{{EmployeeID: 1, EmployeeName: "Ana", ManagerName: "Carla", CurrentSalary: 5000, Median100: &median, SalaryRegion: region, SalaryGradeYear: year, FinalRating: &rating}}, nil
}

func (f *fakeStore) MeritBands(context.Context) ([]scoring.MeritBand, error) {
	return []scoring.MeritBand{{ID: 1, Year: 2025, Region: "R1", BandOrder: 1, PctMin: 0, PctMax: 200, Increase: [5]float64{1, 2, 3, 4, 5}}}, nil
}

type activeRound struct{}

func (activeRound) ActiveCode(context.Context) (string, error) { return "2025-R2", nil }

type rolePerms struct{}

func (rolePerms) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return auth.Allows(role, permission), nil
}

func newRouter(user auth.UserContext) (http.Handler, *fakeStore) {
	store := &fakeStore{}
	svc := reports.NewService(store, activeRound{}, nil, nil, reports.Settings{
		Thresholds:    scoring.DefaultThresholds(),
		DefaultRegion: "R1",
		DefaultYear:   2025,
	})
	h := NewHandler(svc, rolePerms{})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), user)))
		})
	})
	r.Route("/api/v1", h.RegisterRoutes)
	return r, store
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestNineBoxScopesManager(t *testing.T) {
	router, store := newRouter(auth.UserContext{RoleName: auth.RoleManager, ManagerCode: "M1"})
	rec := get(router, "/api/v1/ninebox")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.lastNineBox.ManagerCode != "M1" {
		t.Fatalf("expected manager scope M1, got %q", store.lastNineBox.ManagerCode)
	}
	if store.lastNineBox.RoundCode != "2025-R2" {
		t.Fatalf("expected active round, got %q", store.lastNineBox.RoundCode)
	}
}

func TestMeritRequiresMeritPermission(t *testing.T) {
	router, _ := newRouter(auth.UserContext{RoleName: auth.RoleManager, ManagerCode: "M1"})
	for _, path := range []string{"/api/v1/reports/merit", "/api/v1/reports/merit-simulation", "/api/v1/reports/merit.pdf"} {
		if rec := get(router, path); rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for %s, got %d", path, rec.Code)
		}
	}
}

func TestReportsForHR(t *testing.T) {
	router, _ := newRouter(auth.UserContext{UserID: "u1", RoleName: auth.RoleHR})

	tests := []struct {
		name        string
		path        string
		contentType string
		contains    string
	}{
		{name: "pdi json", path: "/api/v1/reports/pdi", contentType: "application/json", contains: `"pdi_flag":true`},
		{name: "merit groups", path: "/api/v1/reports/merit", contentType: "application/json", contains: `"gestor":"Carla"`},
		{name: "merit simulation", path: "/api/v1/reports/merit-simulation", contentType: "application/json", contains: `"count":1`},
		{name: "pdi pdf", path: "/api/v1/reports/pdi.pdf", contentType: "application/pdf", contains: "%PDF"},
		{name: "merit pdf", path: "/api/v1/reports/merit.pdf", contentType: "application/pdf", contains: "%PDF"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := get(router, tc.path)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); got != tc.contentType {
				t.Fatalf("expected content type %s, got %s", tc.contentType, got)
			}
			if !bytes.Contains(rec.Body.Bytes(), []byte(tc.contains)) {
				t.Fatalf("expected body to contain %s", tc.contains)
			}
		})
	}
}
