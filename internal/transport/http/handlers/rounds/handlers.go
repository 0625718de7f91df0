package roundshandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrkey/internal/domain/audit"
	"hrkey/internal/domain/auth"
	"hrkey/internal/domain/rounds"
	"hrkey/internal/transport/http/api"
	"hrkey/internal/transport/http/middleware"
	"hrkey/internal/transport/http/shared"
)

type Handler struct {
	Service *rounds.Service
	Audit   *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *rounds.Service, auditor *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Audit: auditor, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermRoundsRead, h.Perms)
	manage := middleware.RequirePermission(auth.PermRoundsManage, h.Perms)

	r.Route("/rounds", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(read).Get("/active", h.handleActive)
		r.With(manage).Post("/open", h.handleOpen)
		r.With(manage).Post("/close-active", h.handleCloseActive)
	})
	r.With(read).Get("/system-config", h.handleGetConfig)
	r.With(manage).Put("/system-config", h.handlePutConfig)

	r.With(read).Get("/evaluations/current-period", h.handleGetPeriod)
	r.With(manage).Put("/evaluations/current-period", h.handlePutPeriod)
	r.With(read).Get("/evaluations/window", h.handleGetWindow)
	r.With(manage).Put("/evaluations/window", h.handlePutWindow)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, rounds.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, rounds.ErrConfigNotFound):
		api.Fail(w, http.StatusNotFound, "config_not_found", err.Error(), reqID)
	case errors.Is(err, rounds.ErrNoActiveRound):
		api.Fail(w, http.StatusConflict, "no_active_round", err.Error(), reqID)
	case errors.Is(err, rounds.ErrRoundRequired):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "round_code", Reason: "required"}})
	case errors.Is(err, rounds.ErrInvalidPeriod):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "period", Reason: "must use MMYYYY"}})
	case errors.Is(err, rounds.ErrInvalidWindow):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "window", Reason: err.Error()}})
	default:
		slog.Warn("round request failed", "path", r.URL.Path, "err", err)
		api.Fail(w, http.StatusInternalServerError, "round_error", "round request failed", reqID)
	}
}

func (h *Handler) record(r *http.Request, action, entityID string, before, after any) {
	if err := h.Audit.Record(r.Context(), middleware.AuditEntry(r, action, "round", entityID, before, after)); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []rounds.Round{}
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleActive(w http.ResponseWriter, r *http.Request) {
	active, err := h.Service.Active(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, active, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload rounds.OpenRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	round, err := h.Service.Open(r.Context(), payload.RoundCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.record(r, "round.open", round.Code, nil, round)
	api.Success(w, round, reqID)
}

func (h *Handler) handleCloseActive(w http.ResponseWriter, r *http.Request) {
	round, err := h.Service.CloseActive(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.record(r, "round.close", round.Code, nil, round)
	api.Success(w, round, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		key = rounds.ActiveRoundKey
	}
	entry, err := h.Service.GetConfig(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, entry, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload rounds.ConfigEntry
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	before, err := h.Service.GetConfig(r.Context(), rounds.ActiveRoundKey)
	if err != nil && !errors.Is(err, rounds.ErrConfigNotFound) {
		slog.Warn("load config before update failed", "err", err)
	}
	entry, err := h.Service.PutConfig(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Audit.Record(r.Context(), middleware.AuditEntry(r, "system_config.update", "system_config", entry.Key, before, entry)); err != nil {
		slog.Warn("audit system_config.update failed", "err", err)
	}
	api.Success(w, entry, reqID)
}

func (h *Handler) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.Service.CurrentPeriod(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, map[string]string{"period": period}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePutPeriod(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload rounds.PeriodRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	period, err := h.Service.SetCurrentPeriod(r.Context(), payload.Period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Audit.Record(r.Context(), middleware.AuditEntry(r, "evaluation_period.update", "system_config", "current_period", nil, payload)); err != nil {
		slog.Warn("audit evaluation_period.update failed", "err", err)
	}
	api.Success(w, map[string]string{"period": period}, reqID)
}

func (h *Handler) handleGetWindow(w http.ResponseWriter, r *http.Request) {
	window, err := h.Service.Window(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, window, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePutWindow(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload rounds.WindowRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	window, err := h.Service.SetWindow(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Audit.Record(r.Context(), middleware.AuditEntry(r, "evaluation_window.update", "evaluation_period", window.Period, nil, window)); err != nil {
		slog.Warn("audit evaluation_window.update failed", "err", err)
	}
	api.Success(w, window, reqID)
}
