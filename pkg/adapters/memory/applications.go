package memory

import (
	"context"
	"sync"

	"github.com/aretw0/rapidhire/pkg/domain"
)

// Applications implements ports.ApplicationStore by keeping appended records in memory.
// It backs the console mode and tests.
type Applications struct {
	mu      sync.Mutex
	records []domain.Application
	failure error
}

// NewApplications creates an empty record sink.
func NewApplications() *Applications {
	return &Applications{}
}

// Append records app, or returns the injected failure.
func (a *Applications) Append(ctx context.Context, app domain.Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failure != nil {
		return a.failure
	}
	a.records = append(a.records, app)
	return nil
}

// FailWith makes every following Append return err. A nil err restores normal behaviour.
func (a *Applications) FailWith(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failure = err
}

// Records returns a copy of the appended applications.
func (a *Applications) Records() []domain.Application {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Application(nil), a.records...)
}
