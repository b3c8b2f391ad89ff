package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"credgate/internal/accessrequest/models"
	dErrors "credgate/pkg/domain-errors"
)

type InMemoryStoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreTestSuite))
}

func (s *InMemoryStoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = New()
}

func (s *InMemoryStoreTestSuite) insert(employerID, enrollmentID string) *models.AccessRequest {
	request, err := models.NewAccessRequest(employerID, "Acme Corp", enrollmentID, "Jordan Lee", "", nil)
	s.Require().NoError(err)
	stored, err := s.store.Insert(s.ctx, request)
	s.Require().NoError(err)
	return stored
}

func (s *InMemoryStoreTestSuite) TestInsert() {
	s.T().Run("assigns id and creation time", func(t *testing.T) {
		stored := s.insert("emp-001", "stu-042")

		s.NotEmpty(stored.ID)
		s.Contains(stored.ID, "req_")
		s.False(stored.RequestedAt.IsZero())
	})

	s.T().Run("does not alias the caller's record", func(t *testing.T) {
		request, err := models.NewAccessRequest("emp-001", "Acme Corp", "stu-042", "", "", nil)
		s.Require().NoError(err)

		stored, err := s.store.Insert(s.ctx, request)
		s.Require().NoError(err)

		request.Status = models.StatusApproved
		fetched, err := s.store.GetByID(s.ctx, stored.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, fetched.Status)
	})
}

func (s *InMemoryStoreTestSuite) TestGetByID() {
	s.T().Run("returns stored record", func(t *testing.T) {
		stored := s.insert("emp-001", "stu-042")

		fetched, err := s.store.GetByID(s.ctx, stored.ID)

		s.Require().NoError(err)
		s.Equal(stored.ID, fetched.ID)
	})

	s.T().Run("not found for unknown id", func(t *testing.T) {
		_, err := s.store.GetByID(s.ctx, "req_missing")

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.T().Run("returned record is a copy", func(t *testing.T) {
		stored := s.insert("emp-001", "stu-042")

		fetched, err := s.store.GetByID(s.ctx, stored.ID)
		s.Require().NoError(err)
		fetched.Status = models.StatusRejected

		again, err := s.store.GetByID(s.ctx, stored.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, again.Status)
	})
}

func (s *InMemoryStoreTestSuite) TestScopedReads() {
	first := s.insert("emp-001", "stu-042")
	s.insert("emp-002", "stu-042")
	s.insert("emp-001", "stu-777")

	s.T().Run("by employer", func(t *testing.T) {
		requests, err := s.store.GetByEmployer(s.ctx, "emp-001")

		s.Require().NoError(err)
		s.Len(requests, 2)
		s.Equal(first.ID, requests[0].ID)
	})

	s.T().Run("by student", func(t *testing.T) {
		requests, err := s.store.GetByStudent(s.ctx, "stu-042")

		s.Require().NoError(err)
		s.Len(requests, 2)
	})

	s.T().Run("all preserves insertion order", func(t *testing.T) {
		requests, err := s.store.GetAll(s.ctx)

		s.Require().NoError(err)
		s.Require().Len(requests, 3)
		s.Equal(first.ID, requests[0].ID)
	})

	s.T().Run("unknown scope yields empty", func(t *testing.T) {
		requests, err := s.store.GetByEmployer(s.ctx, "emp-999")

		s.Require().NoError(err)
		s.Empty(requests)
	})
}

func (s *InMemoryStoreTestSuite) TestUpdate() {
	s.T().Run("applies mutation atomically", func(t *testing.T) {
		stored := s.insert("emp-001", "stu-042")

		updated, found, err := s.store.Update(s.ctx, stored.ID, func(r *models.AccessRequest) error {
			return r.Approve(nil, time.Now())
		})

		s.Require().NoError(err)
		s.True(found)
		s.Equal(models.StatusApproved, updated.Status)

		fetched, err := s.store.GetByID(s.ctx, stored.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, fetched.Status)
	})

	s.T().Run("unknown id reports found false without error", func(t *testing.T) {
		updated, found, err := s.store.Update(s.ctx, "req_missing", func(r *models.AccessRequest) error {
			s.Fail("mutation must not run for unknown ids")
			return nil
		})

		s.Require().NoError(err)
		s.False(found)
		s.Nil(updated)
	})

	s.T().Run("failed mutation leaves record untouched", func(t *testing.T) {
		stored := s.insert("emp-001", "stu-042")

		_, found, err := s.store.Update(s.ctx, stored.ID, func(r *models.AccessRequest) error {
			r.Status = models.StatusApproved
			return dErrors.New(dErrors.CodeForbidden, "not yours")
		})

		s.Require().Error(err)
		s.True(found)

		fetched, err := s.store.GetByID(s.ctx, stored.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, fetched.Status)
	})
}
