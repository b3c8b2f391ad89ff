package audit

import (
	"context"

	pkgerrors "credgate/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
)

type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actorID string) ([]Event, error)
	ListAll(ctx context.Context) ([]Event, error)
}
