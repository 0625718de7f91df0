package roundshandler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"hrkey/internal/domain/auth"
	"hrkey/internal/domain/rounds"
	"hrkey/internal/transport/http/middleware"
)

type memStore struct {
	rounds map[string]rounds.Round
	config map[string]rounds.ConfigEntry
	period string
}

func newMemStore() *memStore {
	return &memStore{rounds: map[string]rounds.Round{}, config: map[string]rounds.ConfigEntry{}}
}

func (m *memStore) List(context.Context) ([]rounds.Round, error) {
	var out []rounds.Round
	for _, r := range m.rounds {
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, code string) (rounds.Round, error) {
	r, ok := m.rounds[code]
	if !ok {
		return rounds.Round{}, rounds.ErrNotFound
	}
	return r, nil
}

func (m *memStore) GetConfig(_ context.Context, key string) (rounds.ConfigEntry, error) {
	e, ok := m.config[key]
	if !ok {
		return rounds.ConfigEntry{}, rounds.ErrConfigNotFound
	}
	return e, nil
}

func (m *memStore) PutConfig(_ context.Context, entry rounds.ConfigEntry) error {
	m.config[entry.Key] = entry
	return nil
}

func (m *memStore) OpenRound(_ context.Context, code string, at time.Time) (rounds.Round, error) {
	r := rounds.Round{Code: code, Status: rounds.StatusOpen, OpenedAt: at}
	m.rounds[code] = r
	m.config[rounds.ActiveRoundKey] = rounds.ConfigEntry{Key: rounds.ActiveRoundKey, Value: code}
	return r, nil
}

func (m *memStore) CloseRound(_ context.Context, code string, at time.Time) (rounds.Round, error) {
	r := m.rounds[code]
	r.Code = code
	r.Status = rounds.StatusClosed
	r.ClosedAt = &at
	m.rounds[code] = r
	return r, nil
}

func (m *memStore) CurrentPeriod(context.Context) (string, error) { return m.period, nil }

func (m *memStore) SetCurrentPeriod(_ context.Context, period string) error {
	m.period = period
	return nil
}

func (m *memStore) PeriodWindow(context.Context, string) (*time.Time, *time.Time, error) {
	return nil, nil, nil
}

func (m *memStore) UpsertWindow(context.Context, string, time.Time, time.Time) error { return nil }

type rolePerms struct{}

func (rolePerms) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return auth.Allows(role, permission), nil
}

func newRouter(role string) http.Handler {
	h := NewHandler(rounds.NewService(newMemStore(), nil, "102025"), nil, rolePerms{})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.UserContext{UserID: "u1", RoleName: role, ManagerCode: "M1"}
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), user)))
		})
	})
	r.Route("/api/v1", h.RegisterRoutes)
	return r
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRoundLifecycle(t *testing.T) {
	router := newRouter(auth.RoleHR)

	if rec := do(router, http.MethodPost, "/api/v1/rounds/close-active", ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 without active round, got %d", rec.Code)
	}
	if rec := do(router, http.MethodPost, "/api/v1/rounds/open", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without round_code, got %d", rec.Code)
	}
	if rec := do(router, http.MethodPost, "/api/v1/rounds/open", `{"round_code":" 2025-h1 "}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec := do(router, http.MethodGet, "/api/v1/rounds/active", "")
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte(`"OPEN"`)) {
		t.Fatalf("expected open active round, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(router, http.MethodPost, "/api/v1/rounds/close-active", "")
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte(`"CLOSED"`)) {
		t.Fatalf("expected closed round, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestManagerCannotManageRounds(t *testing.T) {
	router := newRouter(auth.RoleManager)
	if rec := do(router, http.MethodPost, "/api/v1/rounds/open", `{"round_code":"R1"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/api/v1/rounds", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for read, got %d", rec.Code)
	}
}

func TestCurrentPeriod(t *testing.T) {
	router := newRouter(auth.RoleHR)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "valid", body: `{"period":"112025"}`, status: http.StatusOK},
		{name: "wrong length", body: `{"period":"2025"}`, status: http.StatusBadRequest},
		{name: "non numeric", body: `{"period":"10-202"}`, status: http.StatusBadRequest},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := do(router, http.MethodPut, "/api/v1/evaluations/current-period", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}

	rec := do(router, http.MethodGet, "/api/v1/evaluations/current-period", "")
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"112025"`)) {
		t.Fatalf("expected stored period, got %s", rec.Body.String())
	}
}

func TestWindowRejectsInvertedRange(t *testing.T) {
	router := newRouter(auth.RoleHR)
	rec := do(router, http.MethodPut, "/api/v1/evaluations/window", `{"start_at":"2025-10-31T00:00:00Z","end_at":"2025-10-01T00:00:00Z"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
