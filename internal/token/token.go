// Package token issues and validates the signed session tokens that bind an
// actor identity (subject, display name, role) to every workflow operation.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"credgate/pkg/domain"
	dErrors "credgate/pkg/domain-errors"
)

// SessionClaims represents the JWT claims for credgate session tokens.
type SessionClaims struct {
	Name string      `json:"name,omitempty"`
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service handles JWT creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

func NewService(signingKey string, issuer string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// Generate mints a session token for the given actor identity.
func (s *Service) Generate(subjectID, name string, role domain.Role) (string, error) {
	if subjectID == "" {
		return "", dErrors.New(dErrors.CodeValidation, "subject id required")
	}
	if !role.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid role")
	}

	now := time.Now()
	claims := SessionClaims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// Validate parses and verifies a session token, returning its claims.
func (s *Service) Validate(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !claims.Role.IsValid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid role claim")
	}
	return claims, nil
}
