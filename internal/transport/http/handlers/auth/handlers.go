package authhandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrkey/internal/domain/audit"
	"hrkey/internal/domain/auth"
	"hrkey/internal/transport/http/api"
	"hrkey/internal/transport/http/middleware"
	"hrkey/internal/transport/http/shared"
)

type Handler struct {
	Service      *auth.Service
	Audit        *audit.Service
	Perms        middleware.PermissionStore
	SecureCookie bool
}

func NewHandler(service *auth.Service, auditor *audit.Service, perms middleware.PermissionStore, secureCookie bool) *Handler {
	return &Handler{Service: service, Audit: auditor, Perms: perms, SecureCookie: secureCookie}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type managerLinkRequest struct {
	ManagerCode string `json:"manager_code" validate:"required,max=64"`
	Days        int    `json:"days" validate:"omitempty,gte=1,lte=365"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.With(middleware.RequireAuth).Post("/auth/logout", h.HandleLogout)
	r.With(middleware.RequireAuth).Get("/auth/whoami", h.HandleWhoAmI)
	r.With(middleware.RequirePermission(auth.PermAdminLinks, h.Perms)).Post("/admin/manager-links", h.HandleManagerLink)
}

// RegisterPublicRoutes mounts the manager link landing pages outside the
// API prefix.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/team", h.landing("/"))
	r.Get("/team-ninebox", h.landing("/ninebox"))
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}

	session, err := h.Service.Login(r.Context(), payload.Email, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}
	if err != nil {
		slog.Warn("login failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to start session", reqID)
		return
	}
	api.Success(w, session, reqID)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.GetUser(r.Context()); ok && user.SessionID != "" {
		if err := h.Service.Logout(r.Context(), user.SessionID); err != nil {
			slog.Warn("logout session revoke failed", "userId", user.UserID, "err", err)
		}
	}
	http.SetCookie(w, h.managerCookie("", -1))
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleWhoAmI(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	api.Success(w, auth.Describe(user), middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleManagerLink(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload managerLinkRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}

	link, err := h.Service.IssueManagerLink(payload.ManagerCode, time.Duration(payload.Days)*24*time.Hour)
	if errors.Is(err, auth.ErrInvalidManagerCode) {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "manager_code", Reason: "is required"}})
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "link_error", "failed to sign manager link", reqID)
		return
	}

	entry := middleware.AuditEntry(r, "manager_link.issue", "manager", link.ManagerCode, nil, map[string]any{"expires_at": link.ExpiresAt})
	if err := h.Audit.Record(r.Context(), entry); err != nil {
		slog.Warn("audit manager_link.issue failed", "err", err)
	}
	api.Created(w, link, reqID)
}

// landing stores a valid link token in the manager cookie, clears the
// cookie for an invalid one, and sends the browser to target.
func (h *Handler) landing(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.URL.Query().Get("t"))
		if token != "" {
			if _, err := h.Service.VerifyManagerLink(token); err == nil {
				http.SetCookie(w, h.managerCookie(token, int(h.Service.LinkTTL.Seconds())))
			} else {
				http.SetCookie(w, h.managerCookie("", -1))
			}
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func (h *Handler) managerCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.ManagerCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
