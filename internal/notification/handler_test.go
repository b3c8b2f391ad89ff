package notification_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"credgate/internal/accessrequest/models"
	"credgate/internal/accessrequest/store"
	"credgate/internal/notification"
	"credgate/internal/platform/middleware"
	"credgate/pkg/domain"
)

type NotificationHandlerTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *store.InMemoryStore
	router chi.Router
}

func TestNotificationHandlerSuite(t *testing.T) {
	suite.Run(t, new(NotificationHandlerTestSuite))
}

func (s *NotificationHandlerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.New()

	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	notification.NewHandler(s.store, log).Register(s.router)
}

func (s *NotificationHandlerTestSuite) seed(employerID, enrollmentID string, decide func(*models.AccessRequest) error) {
	request, err := models.NewAccessRequest(employerID, "Acme Corp", enrollmentID, "Jordan Lee", "", nil)
	s.Require().NoError(err)
	stored, err := s.store.Insert(s.ctx, request)
	s.Require().NoError(err)
	if decide != nil {
		_, found, err := s.store.Update(s.ctx, stored.ID, decide)
		s.Require().NoError(err)
		s.Require().True(found)
	}
}

func (s *NotificationHandlerTestSuite) feed(principal *middleware.Principal) (int, notification.FeedResponse) {
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	if principal != nil {
		req = req.WithContext(middleware.WithPrincipal(req.Context(), principal))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp notification.FeedResponse
	if rec.Code == http.StatusOK {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func (s *NotificationHandlerTestSuite) TestGetNotifications() {
	s.seed("emp-001", "stu-042", nil)
	s.seed("emp-001", "stu-042", func(r *models.AccessRequest) error {
		return r.Approve(nil, time.Now())
	})
	s.seed("emp-002", "stu-777", nil)

	s.T().Run("student sees own pending requests", func(t *testing.T) {
		code, resp := s.feed(&middleware.Principal{SubjectID: "stu-042", Role: domain.RoleStudent})

		s.Equal(http.StatusOK, code)
		s.Require().Len(resp.Notifications, 1)
		s.Equal(notification.KindPendingRequest, resp.Notifications[0].Kind)
	})

	s.T().Run("employer sees own decided requests", func(t *testing.T) {
		code, resp := s.feed(&middleware.Principal{SubjectID: "emp-001", Role: domain.RoleEmployer})

		s.Equal(http.StatusOK, code)
		s.Require().Len(resp.Notifications, 1)
		s.Equal(notification.KindRequestUpdate, resp.Notifications[0].Kind)
		s.Equal(models.StatusApproved, resp.Notifications[0].Status)
	})

	s.T().Run("university gets an empty feed", func(t *testing.T) {
		code, resp := s.feed(&middleware.Principal{SubjectID: "uni-01", Role: domain.RoleUniversity})

		s.Equal(http.StatusOK, code)
		s.Empty(resp.Notifications)
	})

	s.T().Run("missing principal is an internal error", func(t *testing.T) {
		code, _ := s.feed(nil)

		s.Equal(http.StatusInternalServerError, code)
	})
}
