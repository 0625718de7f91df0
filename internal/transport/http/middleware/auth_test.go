package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hrkey/internal/domain/auth"
)

type fakeAuthn struct {
	revoked map[string]bool
	links   map[string]string
}

func (f fakeAuthn) SessionValid(_ context.Context, sessionID string) (bool, error) {
	return !f.revoked[sessionID], nil
}

func (f fakeAuthn) VerifyManagerLink(token string) (string, error) {
	if code, ok := f.links[token]; ok {
		return code, nil
	}
	return "", errors.New("invalid link")
}

func TestAuthMiddlewareSetsUser(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", RoleID: "r1", RoleName: auth.RoleHR}, "s1", time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	called := false
	handler := Auth(secret, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		user, ok := GetUser(r.Context())
		if !ok {
			t.Fatal("expected user in context")
		}
		if user.UserID != "u1" || user.RoleName != auth.RoleHR || user.SessionID != "s1" {
			t.Fatalf("unexpected user: %+v", user)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("expected handler to run")
	}
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	handler := Auth("secret", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); ok {
			t.Fatal("did not expect user in context")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestAuthMiddlewareRejectsRevokedSession(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", RoleName: auth.RoleHR}, "gone", time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	authn := fakeAuthn{revoked: map[string]bool{"gone": true}}
	handler := Auth(secret, authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); ok {
			t.Fatal("did not expect revoked session to authenticate")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestAuthMiddlewareManagerCookie(t *testing.T) {
	authn := fakeAuthn{links: map[string]string{"good": "0007"}}
	tests := []struct {
		name     string
		cookie   string
		wantUser bool
	}{
		{name: "valid link", cookie: "good", wantUser: true},
		{name: "invalid link", cookie: "forged"},
		{name: "empty cookie", cookie: ""},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			handler := Auth("secret", authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				user, ok := GetUser(r.Context())
				if ok != tc.wantUser {
					t.Fatalf("expected user=%v, got %v", tc.wantUser, ok)
				}
				if ok && (user.RoleName != auth.RoleManager || user.Scope() != "0007") {
					t.Fatalf("unexpected manager user: %+v", user)
				}
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
			req.AddCookie(&http.Cookie{Name: ManagerCookie, Value: tc.cookie})
			handler.ServeHTTP(httptest.NewRecorder(), req)
		})
	}
}

type rolePerms struct{}

func (rolePerms) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return auth.Allows(role, permission), nil
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name   string
		user   *auth.UserContext
		perm   string
		status int
	}{
		{name: "anonymous", perm: auth.PermReportsRead, status: http.StatusUnauthorized},
		{name: "manager reads reports", user: &auth.UserContext{RoleName: auth.RoleManager, ManagerCode: "M1"}, perm: auth.PermReportsRead, status: http.StatusNoContent},
		{name: "manager denied merit", user: &auth.UserContext{RoleName: auth.RoleManager, ManagerCode: "M1"}, perm: auth.PermMeritRead, status: http.StatusForbidden},
		{name: "hr reads merit", user: &auth.UserContext{UserID: "u1", RoleName: auth.RoleHR}, perm: auth.PermMeritRead, status: http.StatusNoContent},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			handler := RequirePermission(tc.perm, rolePerms{})(http.HandlerFunc(noContent))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.user != nil {
				req = req.WithContext(WithUser(req.Context(), *tc.user))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}
