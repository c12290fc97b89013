package store

import (
	"context"

	"github.com/wagglex2/waggle/internal/auth/domain"
)

// DirectoryAdapter presents the Users repository as the principal
// directory the session service consumes, keeping the service unaware of
// transactions and migrations.
type DirectoryAdapter struct {
	store Store
}

// NewDirectoryAdapter wraps s.
func NewDirectoryAdapter(s Store) *DirectoryAdapter {
	return &DirectoryAdapter{store: s}
}

// Resolve returns the principal with the given id, or ErrNotFound.
func (a *DirectoryAdapter) Resolve(ctx context.Context, id string) (domain.Principal, error) {
	return a.store.Users().GetUserByID(ctx, id)
}

// ResolveByUsername returns the principal with the given username, or
// ErrNotFound.
func (a *DirectoryAdapter) ResolveByUsername(ctx context.Context, username string) (domain.Principal, error) {
	return a.store.Users().GetUserByUsername(ctx, username)
}

// UpdatePasswordHash lets the service upgrade legacy hashes after a
// successful login.
func (a *DirectoryAdapter) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return a.store.Users().UpdatePasswordHash(ctx, id, hash)
}
