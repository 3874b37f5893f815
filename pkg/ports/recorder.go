package ports

import (
	"context"

	"github.com/aretw0/rapidhire/pkg/domain"
)

// ApplicationStore appends confirmed applications to an external tabular resource.
// Append is not idempotent: calling it twice with the same record stores two rows.
type ApplicationStore interface {
	Append(ctx context.Context, app domain.Application) error
}

// ApplicationStoreFunc adapts a function to ApplicationStore.
type ApplicationStoreFunc func(ctx context.Context, app domain.Application) error

// Append calls f(ctx, app).
func (f ApplicationStoreFunc) Append(ctx context.Context, app domain.Application) error {
	return f(ctx, app)
}

// DeadLetter keeps applications that could not be stored so operators can recover them.
type DeadLetter interface {
	Put(ctx context.Context, sessionID string, app domain.Application, cause error) error
}
