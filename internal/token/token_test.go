package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"credgate/pkg/domain"
	dErrors "credgate/pkg/domain-errors"
)

type TokenTestSuite struct {
	suite.Suite
	service *Service
}

func TestTokenSuite(t *testing.T) {
	suite.Run(t, new(TokenTestSuite))
}

func (s *TokenTestSuite) SetupTest() {
	s.service = NewService("test-signing-key", "credgate", 15*time.Minute)
}

func (s *TokenTestSuite) TestGenerate() {
	s.T().Run("round trips actor identity", func(t *testing.T) {
		signed, err := s.service.Generate("stu-042", "Jordan Lee", domain.RoleStudent)
		s.Require().NoError(err)

		claims, err := s.service.Validate(signed)
		s.Require().NoError(err)
		s.Equal("stu-042", claims.Subject)
		s.Equal("Jordan Lee", claims.Name)
		s.Equal(domain.RoleStudent, claims.Role)
		s.Equal("credgate", claims.Issuer)
	})

	s.T().Run("requires a subject", func(t *testing.T) {
		_, err := s.service.Generate("", "Jordan Lee", domain.RoleStudent)

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.T().Run("requires a known role", func(t *testing.T) {
		_, err := s.service.Generate("stu-042", "", domain.Role("superuser"))

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *TokenTestSuite) TestValidate() {
	s.T().Run("rejects a token signed with another key", func(t *testing.T) {
		other := NewService("other-key", "credgate", 15*time.Minute)
		signed, err := other.Generate("stu-042", "", domain.RoleStudent)
		s.Require().NoError(err)

		_, err = s.service.Validate(signed)

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.T().Run("rejects an expired token", func(t *testing.T) {
		expired := NewService("test-signing-key", "credgate", -time.Minute)
		signed, err := expired.Generate("stu-042", "", domain.RoleStudent)
		s.Require().NoError(err)

		_, err = s.service.Validate(signed)

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.T().Run("rejects garbage", func(t *testing.T) {
		_, err := s.service.Validate("not.a.token")

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *TokenTestSuite) TestMiddlewareAdapter() {
	signed, err := s.service.Generate("emp-001", "Acme Corp", domain.RoleEmployer)
	s.Require().NoError(err)

	principal, err := NewMiddlewareAdapter(s.service).ValidateToken(signed)

	s.Require().NoError(err)
	s.Equal("emp-001", principal.SubjectID)
	s.Equal("Acme Corp", principal.Name)
	s.Equal(domain.RoleEmployer, principal.Role)
}
