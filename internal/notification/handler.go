package notification

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"credgate/internal/accessrequest/models"
	"credgate/internal/platform/middleware"
	respond "credgate/internal/transport/http/json"
	"credgate/internal/transport/http/shared"
	"credgate/pkg/domain"
	dErrors "credgate/pkg/domain-errors"
)

// Reader is the read-only slice of the request store the projector consumes.
type Reader interface {
	GetAll(ctx context.Context) ([]*models.AccessRequest, error)
}

// Handler serves the role-scoped notification feed.
type Handler struct {
	logger *slog.Logger
	store  Reader
}

// NewHandler creates a notification Handler.
func NewHandler(store Reader, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, store: store}
}

// Register registers the notification routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.handleGetNotifications)
}

// FeedResponse wraps the projected notifications.
type FeedResponse struct {
	Notifications []Notification `json:"notifications"`
}

// handleGetNotifications re-derives the viewing role's feed from the current
// request collection on every call.
func (h *Handler) handleGetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	principal := middleware.GetPrincipal(ctx)
	if principal == nil {
		h.logger.ErrorContext(ctx, "principal missing from context despite auth middleware",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	requests, err := h.store.GetAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load requests for notification feed",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	var feed []Notification
	switch principal.Role {
	case domain.RoleStudent:
		feed = FeedForStudent(requests, principal.SubjectID)
	case domain.RoleEmployer:
		feed = FeedForEmployer(requests, principal.SubjectID)
	case domain.RoleUniversity:
		// No feed for the audit role; audit views cover it.
	}
	if feed == nil {
		feed = []Notification{}
	}

	respond.WriteJSON(w, http.StatusOK, FeedResponse{Notifications: feed})
}
