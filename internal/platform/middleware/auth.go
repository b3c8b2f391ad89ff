package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"credgate/pkg/domain"
)

// Principal is the authenticated actor a request operates as. Handlers and
// services must scope every operation to it; a role is never taken from a
// client-supplied field.
type Principal struct {
	SubjectID string
	Name      string
	Role      domain.Role
}

// TokenValidator defines the interface for validating session tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Principal, error)
}

type contextKeyPrincipal struct{}

// GetPrincipal retrieves the authenticated principal from the context.
// Returns nil when the request was not authenticated.
func GetPrincipal(ctx context.Context) *Principal {
	p, ok := ctx.Value(contextKeyPrincipal{}).(*Principal)
	if !ok {
		return nil
	}
	return p
}

// WithPrincipal stores the principal in the context. Exported for tests that
// exercise handlers without the full middleware chain.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKeyPrincipal{}, p)
}

// RequireAuth validates the bearer token and stores the resulting principal
// in the request context. Requests without a valid token are rejected.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				writeUnauthorized(w, "Missing bearer token")
				return
			}

			principal, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
		})
	}
}

// RequireRole gates a route subtree to a single role. Must run after RequireAuth.
func RequireRole(role domain.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal := GetPrincipal(ctx)
			if principal == nil {
				writeUnauthorized(w, "Missing bearer token")
				return
			}
			if principal.Role != role {
				logger.WarnContext(ctx, "forbidden - role mismatch",
					"required_role", role,
					"actual_role", principal.Role,
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"Insufficient role"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
