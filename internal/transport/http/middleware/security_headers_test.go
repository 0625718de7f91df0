package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecureHeaders(t *testing.T) {
	cases := []struct {
		name      string
		path      string
		prod      bool
		wantCache string
		wantHSTS  bool
	}{
		{name: "api", path: "/api/v1/ninebox", wantCache: "no-store"},
		{name: "manager landing", path: "/team", prod: true, wantCache: "no-store", wantHSTS: true},
		{name: "static asset", path: "/assets/app.js"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			SecureHeaders(tc.prod)(http.HandlerFunc(noContent)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			if rec.Header().Get("X-Frame-Options") != "DENY" {
				t.Fatalf("expected X-Frame-Options DENY, got %q", rec.Header().Get("X-Frame-Options"))
			}
			if got := rec.Header().Get("Cache-Control"); got != tc.wantCache {
				t.Fatalf("expected Cache-Control %q, got %q", tc.wantCache, got)
			}
			if got := rec.Header().Get("Strict-Transport-Security") != ""; got != tc.wantHSTS {
				t.Fatalf("expected HSTS %v, got %v", tc.wantHSTS, got)
			}
		})
	}
}
