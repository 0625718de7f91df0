package employeeshandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrkey/internal/domain/audit"
	"hrkey/internal/domain/auth"
	"hrkey/internal/domain/employees"
	"hrkey/internal/transport/http/api"
	"hrkey/internal/transport/http/middleware"
	"hrkey/internal/transport/http/shared"
)

type Handler struct {
	Service *employees.Service
	Audit   *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *employees.Service, auditor *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Audit: auditor, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)
	write := middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)

	r.Route("/employees", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.With(read).Get("/{id}", h.handleGet)
		r.With(write).Put("/{id}", h.handleUpdate)
		r.With(read).Get("/{id}/movements", h.handleMovements)
		r.With(write).Post("/{id}/movements", h.handleAddMovement)
	})
	r.With(read).Get("/salary-grades", h.handleGrades)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, employees.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
	case errors.Is(err, employees.ErrForbiddenScope):
		api.Fail(w, http.StatusForbidden, "forbidden_scope", "employee outside your team", reqID)
	case errors.Is(err, employees.ErrNoUpdatableFields):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "", Reason: err.Error()}})
	case errors.Is(err, employees.ErrInvalidField):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "", Reason: err.Error()}})
	default:
		slog.Warn("employee request failed", "path", r.URL.Path, "err", err)
		api.Fail(w, http.StatusInternalServerError, "employee_error", "employee request failed", reqID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	items, err := h.Service.List(r.Context(), user, r.URL.Query().Get("manager_name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []employees.Employee{}
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "id")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", middleware.GetRequestID(r.Context()))
		return
	}
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Service.Get(r.Context(), user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload employees.CreateInput
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	emp, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := strconv.FormatInt(emp.ID, 10)
	if err := h.Audit.Record(r.Context(), middleware.AuditEntry(r, "employee.create", "employee", id, nil, emp)); err != nil {
		slog.Warn("audit employee.create failed", "err", err)
	}
	api.Created(w, emp, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathID(r, "id")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", reqID)
		return
	}
	var payload map[string]any
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	before, after, err := h.Service.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entityID := strconv.FormatInt(id, 10)
	if err := h.Audit.Record(r.Context(), middleware.AuditEntry(r, "employee.update", "employee", entityID, before, after)); err != nil {
		slog.Warn("audit employee.update failed", "err", err)
	}
	api.Success(w, after, reqID)
}

func (h *Handler) handleMovements(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "id")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", middleware.GetRequestID(r.Context()))
		return
	}
	user, _ := middleware.GetUser(r.Context())
	items, err := h.Service.Movements(r.Context(), user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []employees.Movement{}
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddMovement(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathID(r, "id")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", reqID)
		return
	}
	var payload employees.MovementInput
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	mv, err := h.Service.AddMovement(r.Context(), id, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entityID := strconv.FormatInt(id, 10)
	if err := h.Audit.Record(r.Context(), middleware.AuditEntry(r, "employee.movement.create", "employee", entityID, nil, mv)); err != nil {
		slog.Warn("audit employee.movement.create failed", "err", err)
	}
	api.Created(w, mv, reqID)
}

func (h *Handler) handleGrades(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	filter := employees.GradeFilter{Region: r.URL.Query().Get("region")}
	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "year", Reason: "must be a number"}})
			return
		}
		filter.Year = year
	}
	items, err := h.Service.SalaryGrades(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []employees.SalaryGrade{}
	}
	api.Success(w, items, reqID)
}
