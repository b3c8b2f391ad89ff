package store

import (
	"context"

	"github.com/google/uuid"

	"credgate/internal/accessrequest/models"
	pkgerrors "credgate/pkg/domain-errors"
)

// Error Contract:
// All store methods follow this error pattern:
// - GetByID returns ErrNotFound when the requested entity does not exist
// - Reads degrade to an empty collection when the backing store is unreadable (fail-open)
// - Writes return CodePersistence errors on storage failures (fail-loud)
var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "access request not found")
)

// Store is the persistence contract for access requests. The write path of
// every implementation is serialized: a mutation applied through Update never
// interleaves with another mutation to the same record, and once Update
// returns, subsequent reads from any caller observe the new state.
type Store interface {
	// GetAll returns every request in the collection. Order is not guaranteed;
	// callers sort explicitly.
	GetAll(ctx context.Context) ([]*models.AccessRequest, error)

	// GetByEmployer filters by requester identity.
	GetByEmployer(ctx context.Context, employerID string) ([]*models.AccessRequest, error)

	// GetByStudent filters by subject identity.
	GetByStudent(ctx context.Context, enrollmentID string) ([]*models.AccessRequest, error)

	// GetByID returns a single request or ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.AccessRequest, error)

	// Insert assigns a fresh unique id and creation timestamp, persists the
	// record, and returns the stored copy.
	Insert(ctx context.Context, request *models.AccessRequest) (*models.AccessRequest, error)

	// Update applies mutate to exactly one record matched by id under the
	// store's write lock. A missing id is not an error: found is false and
	// nothing is written (idempotent-safe for retries). When mutate returns an
	// error the record is left untouched and the error is passed through.
	Update(ctx context.Context, id string, mutate func(*models.AccessRequest) error) (updated *models.AccessRequest, found bool, err error)
}

// NewRequestID returns a fresh globally unique request identifier.
// IDs are never reused, even across process restarts.
func NewRequestID() string {
	return "req_" + uuid.New().String()
}
