// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"

	domainauth "github.com/pentopublic/pentopublic-client/internal/domain/auth"
)

// Backend is the remote authority that verifies credentials and creates accounts.
type Backend interface {
	// Login exchanges credentials for a token and the identity it belongs to.
	Login(ctx context.Context, in domainauth.LoginInput) (domainauth.SessionRecord, error)

	// Register creates an account. It never returns a token.
	Register(ctx context.Context, reg domainauth.Registration) (domainauth.Confirmation, error)
}

// CredentialStore persists the single active session record across restarts.
// Loads never fail: anything unreadable, partial or inconsistent reports ok=false.
type CredentialStore interface {
	Save(ctx context.Context, rec domainauth.SessionRecord) error
	Clear(ctx context.Context) error
	Load(ctx context.Context) (domainauth.SessionRecord, bool)
	LoadToken(ctx context.Context) (string, bool)
	LoadIdentity(ctx context.Context) (domainauth.Identity, bool)
	LoadRole(ctx context.Context) (domainauth.Role, bool)
}

// KeyValueStore is the storage medium underneath a CredentialStore.
// Put and Delete must apply all keys or none.
type KeyValueStore interface {
	Put(ctx context.Context, values map[string]string) error
	// Get returns only the keys that exist.
	Get(ctx context.Context, keys ...string) (map[string]string, error)
	Delete(ctx context.Context, keys ...string) error
}
