// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/commission-desk-go/internal/domain"
)

// Store is the persistence adapter behind the desk. It supplies the initial
// working set and receives the full value of a collection after each change.
// Implemented by the Supabase, Postgres and local key/value adapters.
type Store interface {
	// LoadAll returns every collection. A collection that cannot be parsed
	// is logged and replaced by its default; only a backend that cannot be
	// reached at all returns an error.
	LoadAll(ctx context.Context) (*domain.Snapshot, error)

	// SaveCollection persists the current value of one collection:
	// []domain.User, []domain.Commission, []domain.Client, []domain.AuditLog,
	// []domain.Notice or int for the goal.
	SaveCollection(ctx context.Context, name domain.Collection, value any) error

	// Name identifies the backend in logs, metrics and health output.
	Name() string
}

// Pinger is implemented by stores that can cheaply verify connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Purge()
}
