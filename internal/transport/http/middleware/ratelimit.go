package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"hrkey/internal/transport/http/api"
	"hrkey/internal/transport/http/shared"
)

// KeyFunc names the bucket a request is counted in.
type KeyFunc func(r *http.Request) string

// window is a fixed-window counter per key.
type window struct {
	mu      sync.Mutex
	limit   int
	span    time.Duration
	key     KeyFunc
	buckets map[string]*counter
	sweepAt time.Time
}

type counter struct {
	hits    int
	resetAt time.Time
}

type verdict struct {
	allowed   bool
	remaining int
	resetIn   int
}

func newWindow(limit int, span time.Duration, key KeyFunc) *window {
	return &window{limit: limit, span: span, key: key, buckets: map[string]*counter{}}
}

func (l *window) hit(key string, now time.Time) verdict {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.sweepAt) {
		for k, c := range l.buckets {
			if now.After(c.resetAt) {
				delete(l.buckets, k)
			}
		}
		l.sweepAt = now.Add(l.span)
	}

	c, ok := l.buckets[key]
	if !ok || now.After(c.resetAt) {
		c = &counter{resetAt: now.Add(l.span)}
		l.buckets[key] = c
	}
	c.hits++
	return verdict{
		allowed:   c.hits <= l.limit,
		remaining: max(l.limit-c.hits, 0),
		resetIn:   ceilSeconds(c.resetAt.Sub(now)),
	}
}

// admit counts r and writes a 429 when the bucket is exhausted. A limit of
// zero or less disables the window.
func (l *window) admit(w http.ResponseWriter, r *http.Request) bool {
	if l.limit <= 0 {
		return true
	}
	key := l.key(r)
	if key == "" {
		key = "ip:" + shared.ClientIP(r)
	}
	v := l.hit(key, time.Now())

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(v.remaining))
	h.Set("X-RateLimit-Reset", strconv.Itoa(v.resetIn))
	if v.allowed {
		return true
	}

	h.Set("Retry-After", strconv.Itoa(max(v.resetIn, 1)))
	slog.Warn("rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", l.limit)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// RateLimit caps every request per caller. HR users count by user id,
// manager link holders by manager code and anonymous callers by IP.
func RateLimit(limit int, span time.Duration) func(http.Handler) http.Handler {
	l := newWindow(limit, span, callerKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.admit(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

func callerKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok {
		switch {
		case user.UserID != "":
			return "user:" + user.UserID
		case user.ManagerCode != "":
			return "manager:" + user.ManagerCode
		}
	}
	return "ip:" + shared.ClientIP(r)
}

// loginKey buckets login attempts by the submitted email so one address
// cannot be brute forced from many IPs.
func loginKey(r *http.Request) string {
	email := strings.ToLower(peekJSONString(r, "email"))
	if email == "" {
		return "ip:" + shared.ClientIP(r)
	}
	return "email:" + email
}

type routeClass int

const (
	classNone routeClass = iota
	classLogin
	classMutation
)

// guardedRoutes are the writes that get a tighter budget than RateLimit.
var guardedRoutes = map[string]routeClass{
	"POST /auth/login":            classLogin,
	"POST /evaluations":           classMutation,
	"POST /evaluations/recompute": classMutation,
	"POST /rounds/open":           classMutation,
	"POST /rounds/close-active":   classMutation,
	"PUT /dimension-weights":      classMutation,
	"POST /admin/manager-links":   classMutation,
}

func classify(r *http.Request) routeClass {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	if path == "" {
		path = "/"
	}
	return guardedRoutes[strings.ToUpper(r.Method)+" "+strings.TrimSuffix(path, "/")]
}

// SensitiveMutationRateLimit applies a quarter of base to logins, per IP
// and per email, and half of base to submissions and round changes.
func SensitiveMutationRateLimit(base int, span time.Duration) func(http.Handler) http.Handler {
	loginLimit := max(base/4, 1)
	loginByIP := newWindow(loginLimit, span, func(r *http.Request) string { return "ip:" + shared.ClientIP(r) })
	loginByEmail := newWindow(loginLimit, span, loginKey)
	mutations := newWindow(max(base/2, 1), span, callerKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch classify(r) {
			case classLogin:
				if !loginByIP.admit(w, r) || !loginByEmail.admit(w, r) {
					return
				}
			case classMutation:
				if !mutations.admit(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// peekJSONString reads one top-level string field and restores the body
// for the handler.
func peekJSONString(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(payload[field], &value); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}
