package store

import (
	"context"
	"errors"
	"time"

	"github.com/wagglex2/waggle/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root of the relational data access layer. Sub-repositories
// are reached through methods so that a transaction cannot be opened from
// inside another one.
type Store interface {
	Users() Users
	RotationRecords() RotationRecords

	ApplyMigrations() error

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Users() Users
	RotationRecords() RotationRecords
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.Principal, error)
	GetUserByUsername(ctx context.Context, username string) (domain.Principal, error)

	// CreateUser inserts a principal; the id is supplied by the caller. A
	// taken username yields ErrAlreadyExists.
	CreateUser(ctx context.Context, p domain.Principal) error

	// DeleteUser removes a principal. Deleting an absent principal yields
	// ErrNotFound.
	DeleteUser(ctx context.Context, id string) error

	// UpdatePasswordHash replaces the stored hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id string, hash string) error

	IsEmpty(ctx context.Context) (bool, error)
}

// Credentials is the keyed, TTL-bound store of rotation secrets: at most
// one live entry per subject.
//
// Single-key operations are atomic. Concurrent Puts for the same subject
// are not serialised beyond that; the last write wins.
type Credentials interface {
	// Put stores hashedSecret for subjectID, replacing any previous entry.
	Put(ctx context.Context, subjectID, hashedSecret string, ttl time.Duration) error

	// Get returns the stored hash, or ErrNotFound when there is no live
	// entry.
	Get(ctx context.Context, subjectID string) (string, error)

	// Delete removes the entry. Deleting an absent entry is not an error.
	Delete(ctx context.Context, subjectID string) error
}

// RotationRecords is the relational implementation of Credentials plus the
// sweep that TTL-native backends do for free.
type RotationRecords interface {
	Credentials
	Sweeper
}

// Sweeper removes entries whose TTL has lapsed.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
