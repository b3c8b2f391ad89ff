package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "credgate/pkg/domain-errors"
)

type ModelsTestSuite struct {
	suite.Suite
}

func TestModelsSuite(t *testing.T) {
	suite.Run(t, new(ModelsTestSuite))
}

func (s *ModelsTestSuite) newPending() *AccessRequest {
	r, err := NewAccessRequest("emp-001", "Acme Corp", "stu-042", "Jordan Lee", "", nil)
	s.Require().NoError(err)
	return r
}

func (s *ModelsTestSuite) TestNewAccessRequest() {
	s.T().Run("applies workflow defaults", func(t *testing.T) {
		r := s.newPending()

		s.Equal(StatusPending, r.Status)
		s.Equal(DefaultPurpose, r.Purpose)
		s.Equal(DefaultRequestedFields(), r.RequestedFields)
		s.Empty(r.ApprovedFields)
		s.Nil(r.DecidedAt)
	})

	s.T().Run("keeps explicit purpose and fields", func(t *testing.T) {
		fields := []Field{FieldContactInformation}
		r, err := NewAccessRequest("emp-001", "Acme Corp", "stu-042", "Jordan Lee", "Internship Screening", fields)

		s.Require().NoError(err)
		s.Equal("Internship Screening", r.Purpose)
		s.Equal(fields, r.RequestedFields)
	})

	s.T().Run("requires employer id", func(t *testing.T) {
		_, err := NewAccessRequest("", "Acme Corp", "stu-042", "", "", nil)

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.T().Run("requires enrollment id", func(t *testing.T) {
		_, err := NewAccessRequest("emp-001", "Acme Corp", "", "", "", nil)

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ModelsTestSuite) TestApprove() {
	now := time.Now()

	s.T().Run("empty fields grant the full requested set", func(t *testing.T) {
		r := s.newPending()

		s.Require().NoError(r.Approve(nil, now))
		s.Equal(StatusApproved, r.Status)
		s.Equal(r.RequestedFields, r.ApprovedFields)
		s.Require().NotNil(r.DecidedAt)
		s.Equal(now, *r.DecidedAt)
	})

	s.T().Run("narrows to the supplied subset", func(t *testing.T) {
		r := s.newPending()

		s.Require().NoError(r.Approve([]Field{FieldContactInformation, FieldAcademicSummary}, now))
		s.Equal([]Field{FieldContactInformation, FieldAcademicSummary}, r.ApprovedFields)
	})

	s.T().Run("drops fields that were never requested", func(t *testing.T) {
		r, err := NewAccessRequest("emp-001", "Acme Corp", "stu-042", "", "", []Field{FieldContactInformation})
		s.Require().NoError(err)

		s.Require().NoError(r.Approve([]Field{FieldContactInformation, "Social Security Number"}, now))
		s.Equal([]Field{FieldContactInformation}, r.ApprovedFields)
	})

	s.T().Run("rejects double approval", func(t *testing.T) {
		r := s.newPending()
		s.Require().NoError(r.Approve(nil, now))

		err := r.Approve(nil, now.Add(time.Minute))

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		s.Equal(StatusApproved, r.Status)
	})

	s.T().Run("rejected request stays rejected", func(t *testing.T) {
		r := s.newPending()
		s.Require().NoError(r.Reject(now))

		err := r.Approve(nil, now.Add(time.Minute))

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		s.Equal(StatusRejected, r.Status)
		s.Empty(r.ApprovedFields)
	})
}

func (s *ModelsTestSuite) TestReject() {
	now := time.Now()

	s.T().Run("rejects a pending request", func(t *testing.T) {
		r := s.newPending()

		s.Require().NoError(r.Reject(now))
		s.Equal(StatusRejected, r.Status)
		s.Empty(r.ApprovedFields)
		s.Require().NotNil(r.DecidedAt)
	})

	s.T().Run("rejects transition from terminal state", func(t *testing.T) {
		r := s.newPending()
		s.Require().NoError(r.Approve(nil, now))

		err := r.Reject(now.Add(time.Minute))

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *ModelsTestSuite) TestIntersectFields() {
	requested := []Field{FieldContactInformation, FieldPersonalDetails}

	s.T().Run("preserves supplied order", func(t *testing.T) {
		got := IntersectFields(requested, []Field{FieldPersonalDetails, FieldContactInformation})
		s.Equal([]Field{FieldPersonalDetails, FieldContactInformation}, got)
	})

	s.T().Run("deduplicates", func(t *testing.T) {
		got := IntersectFields(requested, []Field{FieldPersonalDetails, FieldPersonalDetails})
		s.Equal([]Field{FieldPersonalDetails}, got)
	})

	s.T().Run("drops unrequested fields", func(t *testing.T) {
		got := IntersectFields(requested, []Field{FieldSubjectScores})
		s.Empty(got)
	})
}

func (s *ModelsTestSuite) TestClone() {
	r := s.newPending()
	r.ID = "req_1"

	clone := r.Clone()
	clone.RequestedFields[0] = "tampered"
	clone.Status = StatusApproved

	s.Equal(FieldContactInformation, r.RequestedFields[0])
	s.Equal(StatusPending, r.Status)
}

func (s *ModelsTestSuite) TestStatus() {
	s.True(StatusPending.IsValid())
	s.True(StatusApproved.IsTerminal())
	s.True(StatusRejected.IsTerminal())
	s.False(StatusPending.IsTerminal())
	s.False(Status("archived").IsValid())
}
