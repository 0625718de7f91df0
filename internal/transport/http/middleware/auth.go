package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"hrkey/internal/domain/auth"
)

// ManagerCookie holds the signed manager link token set by /team.
const ManagerCookie = "manager_access"

// Authenticator checks session revocation and manager link tokens.
type Authenticator interface {
	SessionValid(ctx context.Context, sessionID string) (bool, error)
	VerifyManagerLink(token string) (string, error)
}

// Auth attaches the caller to the context. A bearer session token wins
// over the manager cookie; requests with neither stay anonymous and are
// rejected later by RequirePermission.
func Auth(secret string, authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, ok := bearerUser(r, secret, authn); ok {
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
				return
			}
			if user, ok := managerUser(r, authn); ok {
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerUser(r *http.Request, secret string, authn Authenticator) (auth.UserContext, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return auth.UserContext{}, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return auth.UserContext{}, false
	}
	claims, err := auth.ParseToken(secret, parts[1])
	if err != nil {
		return auth.UserContext{}, false
	}
	if authn != nil {
		valid, err := authn.SessionValid(r.Context(), claims.ID)
		if err != nil {
			slog.Warn("session check failed", "userId", claims.UserID, "err", err)
			return auth.UserContext{}, false
		}
		if !valid {
			return auth.UserContext{}, false
		}
	}
	return auth.UserContext{
		UserID:    claims.UserID,
		RoleID:    claims.RoleID,
		RoleName:  claims.RoleName,
		SessionID: claims.ID,
	}, true
}

func managerUser(r *http.Request, authn Authenticator) (auth.UserContext, bool) {
	if authn == nil {
		return auth.UserContext{}, false
	}
	cookie, err := r.Cookie(ManagerCookie)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return auth.UserContext{}, false
	}
	code, err := authn.VerifyManagerLink(cookie.Value)
	if err != nil || code == "" {
		return auth.UserContext{}, false
	}
	return auth.UserContext{RoleName: auth.RoleManager, ManagerCode: code}, true
}
