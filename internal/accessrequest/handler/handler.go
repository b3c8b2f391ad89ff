// Package handler exposes the access request workflow over HTTP. All routes
// require an authenticated principal; the handler translates it into the
// actor the lifecycle engine authorizes against.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"credgate/internal/accessrequest/models"
	"credgate/internal/accessrequest/service"
	"credgate/internal/platform/middleware"
	respond "credgate/internal/transport/http/json"
	"credgate/internal/transport/http/shared"
	"credgate/pkg/domain"
	dErrors "credgate/pkg/domain-errors"
	"credgate/pkg/validation"
)

// Service is the lifecycle engine surface the handler depends on.
type Service interface {
	SendRequest(ctx context.Context, actor models.Actor, cmd service.SendRequestCommand) (*models.AccessRequest, error)
	Approve(ctx context.Context, actor models.Actor, requestID string, fields []models.Field) (*models.AccessRequest, error)
	Reject(ctx context.Context, actor models.Actor, requestID string) (*models.AccessRequest, error)
	Get(ctx context.Context, actor models.Actor, requestID string) (*models.AccessRequest, error)
	ListForEmployer(ctx context.Context, actor models.Actor, employerID string) ([]*models.AccessRequest, error)
	ListForStudent(ctx context.Context, actor models.Actor, enrollmentID string) ([]*models.AccessRequest, error)
	GetAll(ctx context.Context, actor models.Actor) ([]*models.AccessRequest, error)
}

type latencyRecorder interface {
	ObserveOperationLatency(operation string, durationSeconds float64)
}

type Option func(*Handler)

// Handler serves the access request routes.
type Handler struct {
	logger  *slog.Logger
	service Service
	metrics latencyRecorder
}

// NewHandler creates a Handler for the access request routes.
func NewHandler(svc Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{logger: logger, service: svc}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// WithMetrics sets the latency recorder for the handler.
func WithMetrics(m latencyRecorder) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// Register registers the access request routes with the chi router.
// The full-collection audit view is gated to the university role up front;
// every other route scopes itself to the principal inside the engine.
func (h *Handler) Register(r chi.Router) {
	r.Post("/requests", h.handleSendRequest)
	r.Post("/requests/{id}/approve", h.handleApprove)
	r.Post("/requests/{id}/reject", h.handleReject)
	r.Get("/requests/{id}", h.handleGetByID)
	r.Get("/requests/employer", h.handleListForEmployer)
	r.Get("/requests/student", h.handleListForStudent)
	r.With(middleware.RequireRole(domain.RoleUniversity, h.logger)).Get("/requests", h.handleGetAll)
}

func (h *Handler) handleSendRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("send_request", time.Now())

	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	req.Normalize()
	if err := validation.Validate(&req); err != nil {
		shared.WriteError(w, err)
		return
	}

	cmd := service.SendRequestCommand{
		EmployerID:          req.EmployerID,
		EmployerName:        req.EmployerName,
		StudentEnrollmentID: req.StudentEnrollmentID,
		StudentName:         req.StudentName,
		Purpose:             req.Purpose,
		RequestedFields:     req.Fields(),
	}
	// Session identity is authoritative when the body omits it.
	if cmd.EmployerID == "" {
		cmd.EmployerID = principal.SubjectID
	}
	if cmd.EmployerName == "" {
		cmd.EmployerName = principal.Name
	}

	created, err := h.service.SendRequest(ctx, actorFromPrincipal(principal), cmd)
	if err != nil {
		h.logError(ctx, "failed to create access request", err)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, toRequestResponse(created))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("approve", time.Now())

	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	// An absent body means "grant everything requested"; a present body must
	// parse so a narrowed consent is never silently widened.
	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	req.Normalize()
	if err := validation.Validate(&req); err != nil {
		shared.WriteError(w, err)
		return
	}

	updated, err := h.service.Approve(ctx, actorFromPrincipal(principal), chi.URLParam(r, "id"), req.Fields())
	if err != nil {
		h.logError(ctx, "failed to approve access request", err)
		shared.WriteError(w, err)
		return
	}

	h.writeDecision(w, updated)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("reject", time.Now())

	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	updated, err := h.service.Reject(ctx, actorFromPrincipal(principal), chi.URLParam(r, "id"))
	if err != nil {
		h.logError(ctx, "failed to reject access request", err)
		shared.WriteError(w, err)
		return
	}

	h.writeDecision(w, updated)
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("get", time.Now())

	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	request, err := h.service.Get(ctx, actorFromPrincipal(principal), chi.URLParam(r, "id"))
	if err != nil {
		h.logError(ctx, "failed to load access request", err)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toRequestResponse(request))
}

func (h *Handler) handleGetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("list_all", time.Now())

	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	requests, err := h.service.GetAll(ctx, actorFromPrincipal(principal))
	if err != nil {
		h.logError(ctx, "failed to list access requests", err)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toListResponse(requests))
}

// handleListForEmployer serves the caller's own requests. The university audit
// role can inspect any employer via the employer_id query parameter.
func (h *Handler) handleListForEmployer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("list_employer", time.Now())

	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	employerID := r.URL.Query().Get("employer_id")
	if employerID == "" {
		employerID = principal.SubjectID
	}

	requests, err := h.service.ListForEmployer(ctx, actorFromPrincipal(principal), employerID)
	if err != nil {
		h.logError(ctx, "failed to list employer requests", err)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toListResponse(requests))
}

// handleListForStudent mirrors handleListForEmployer for the student side,
// keyed by enrollment_id.
func (h *Handler) handleListForStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("list_student", time.Now())

	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	enrollmentID := r.URL.Query().Get("enrollment_id")
	if enrollmentID == "" {
		enrollmentID = principal.SubjectID
	}

	requests, err := h.service.ListForStudent(ctx, actorFromPrincipal(principal), enrollmentID)
	if err != nil {
		h.logError(ctx, "failed to list student requests", err)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toListResponse(requests))
}

// writeDecision distinguishes an applied transition from a permissive no-op.
func (h *Handler) writeDecision(w http.ResponseWriter, updated *models.AccessRequest) {
	if updated == nil {
		respond.WriteJSON(w, http.StatusOK, DecisionResponse{Applied: false})
		return
	}
	respond.WriteJSON(w, http.StatusOK, DecisionResponse{Request: toRequestResponse(updated), Applied: true})
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*middleware.Principal, bool) {
	ctx := r.Context()
	principal := middleware.GetPrincipal(ctx)
	if principal == nil {
		h.logger.ErrorContext(ctx, "principal missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return nil, false
	}
	return principal, true
}

func (h *Handler) observe(operation string, start time.Time) {
	if h.metrics != nil {
		h.metrics.ObserveOperationLatency(operation, time.Since(start).Seconds())
	}
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err,
	)
}

func actorFromPrincipal(p *middleware.Principal) models.Actor {
	return models.Actor{
		ID:   p.SubjectID,
		Name: p.Name,
		Role: p.Role,
	}
}
