// Package core defines the store interfaces the service layer is written
// against. Implementations live in internal/data; this follows the hexagonal
// pattern where the core owns interfaces and adapters provide them.
package core

import (
	"context"
	"time"

	"github.com/target/golinks/internal/domain/model"
)

// LinkTx is the transaction-scoped view of the link store. Every method runs
// against the same database transaction, so an existence check followed by a
// write cannot race a concurrent registration of the same name.
type LinkTx interface {
	// Exists reports whether a link with the given name is registered.
	Exists(ctx context.Context, name string) (bool, error)

	// FindByTarget returns the link whose target URL exactly equals url.
	// The comparison is full equality: no case folding, no canonicalization,
	// a trailing slash makes a distinct URL. Returns nil when absent.
	FindByTarget(ctx context.Context, url string) (*model.Link, error)

	// Insert creates a new link. A duplicate name surfaces the store's
	// unique-key violation.
	Insert(ctx context.Context, link model.Link) error

	// Update repoints an existing name at a new target URL.
	Update(ctx context.Context, link model.Link) error

	// GrantsFor returns every prefix grant held by the user.
	GrantsFor(ctx context.Context, userID string) ([]model.PrefixGrant, error)
}

// LinkStore provides transactional and read-only access to links and grants.
type LinkStore interface {
	// WithTx runs fn inside a single database transaction. The transaction
	// commits when fn returns nil and rolls back otherwise; no partial state
	// is observable either way.
	WithTx(ctx context.Context, fn func(LinkTx) error) error

	// GetByName returns the link registered under name, or ErrLinkNotFound.
	GetByName(ctx context.Context, name string) (*model.Link, error)

	// GrantsFor returns every prefix grant held by the user.
	GrantsFor(ctx context.Context, userID string) ([]model.PrefixGrant, error)
}

// CacheRepository is the interface for the redirect-resolution cache.
type CacheRepository interface {
	// Set stores a value with the given key and TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value by key. Returns nil when the key is absent or
	// expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key. Returns true when the key existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the cache connection.
	Health(ctx context.Context) error
}
