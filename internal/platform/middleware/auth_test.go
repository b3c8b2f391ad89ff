package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"credgate/pkg/domain"
)

type stubValidator struct {
	principal *Principal
	err       error
}

func (v *stubValidator) ValidateToken(string) (*Principal, error) {
	return v.principal, v.err
}

type AuthMiddlewareTestSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

func (s *AuthMiddlewareTestSuite) SetupTest() {
	s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func (s *AuthMiddlewareTestSuite) serve(mw func(http.Handler) http.Handler, authHeader string, ctxPrincipal *Principal) (*httptest.ResponseRecorder, *Principal) {
	var seen *Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/requests", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	if ctxPrincipal != nil {
		req = req.WithContext(WithPrincipal(req.Context(), ctxPrincipal))
	}
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)
	return rec, seen
}

func (s *AuthMiddlewareTestSuite) TestRequireAuth() {
	principal := &Principal{SubjectID: "stu-042", Role: domain.RoleStudent}

	s.T().Run("stores the principal on success", func(t *testing.T) {
		mw := RequireAuth(&stubValidator{principal: principal}, s.logger)

		rec, seen := s.serve(mw, "Bearer good-token", nil)

		s.Equal(http.StatusNoContent, rec.Code)
		s.Require().NotNil(seen)
		s.Equal("stu-042", seen.SubjectID)
	})

	s.T().Run("rejects a missing header", func(t *testing.T) {
		mw := RequireAuth(&stubValidator{principal: principal}, s.logger)

		rec, seen := s.serve(mw, "", nil)

		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Nil(seen)
	})

	s.T().Run("rejects a non-bearer scheme", func(t *testing.T) {
		mw := RequireAuth(&stubValidator{principal: principal}, s.logger)

		rec, _ := s.serve(mw, "Basic dXNlcjpwYXNz", nil)

		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.T().Run("rejects an invalid token", func(t *testing.T) {
		mw := RequireAuth(&stubValidator{err: errors.New("expired")}, s.logger)

		rec, _ := s.serve(mw, "Bearer bad-token", nil)

		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *AuthMiddlewareTestSuite) TestRequireRole() {
	s.T().Run("passes a matching role", func(t *testing.T) {
		mw := RequireRole(domain.RoleStudent, s.logger)

		rec, _ := s.serve(mw, "", &Principal{SubjectID: "stu-042", Role: domain.RoleStudent})

		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.T().Run("forbids a mismatched role", func(t *testing.T) {
		mw := RequireRole(domain.RoleUniversity, s.logger)

		rec, _ := s.serve(mw, "", &Principal{SubjectID: "emp-001", Role: domain.RoleEmployer})

		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.T().Run("rejects an unauthenticated request", func(t *testing.T) {
		mw := RequireRole(domain.RoleStudent, s.logger)

		rec, _ := s.serve(mw, "", nil)

		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}
