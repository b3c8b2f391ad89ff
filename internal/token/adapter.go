package token

import (
	"credgate/internal/platform/middleware"
)

// MiddlewareAdapter adapts Service to the middleware.TokenValidator interface
// so the transport layer does not depend on JWT details.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.Principal, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.Principal{
		SubjectID: claims.Subject,
		Name:      claims.Name,
		Role:      claims.Role,
	}, nil
}
