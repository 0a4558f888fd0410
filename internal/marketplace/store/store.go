package store

import (
	"context"
	"errors"
	"time"

	"github.com/ponliv/marketplace/internal/marketplace/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, mongo)
// implement this and expose sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Books() Books
	RevokedTokens() RevokedTokens

	// ApplyMigrations brings the schema (tables or collection indexes) up to date.
	ApplyMigrations() error

	// Close releases the underlying connection pool.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// CreateUser inserts a new user. A taken email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects the normalized (lowercase) email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// UpdateUser overwrites every mutable column of u. Last write wins.
	UpdateUser(ctx context.Context, u domain.User) error

	// DeleteUser hard-deletes; a missing id yields ErrNotFound.
	DeleteUser(ctx context.Context, id string) error
}

type Books interface {
	// CreateBook inserts a listing. An ISBN already used by a live listing
	// yields ErrAlreadyExists.
	CreateBook(ctx context.Context, b domain.Book) error

	// GetBookByID returns live listings only.
	GetBookByID(ctx context.Context, id string) (domain.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (domain.Book, error)

	// GetBookByTitle matches the title exactly and returns the oldest live listing.
	GetBookByTitle(ctx context.Context, title string) (domain.Book, error)

	UpdateBook(ctx context.Context, b domain.Book) error

	// SoftDeleteBook flags a live listing as deleted.
	SoftDeleteBook(ctx context.Context, id string, at time.Time) error

	// SearchBooks returns live listings matching f, oldest first.
	SearchBooks(ctx context.Context, f domain.BookFilter) ([]domain.Book, error)
}

// RevokedTokens is the logout ledger. Entries are keyed by token fingerprint.
type RevokedTokens interface {
	// RevokeToken records fingerprint until expiresAt. Revoking twice is not an error.
	RevokeToken(ctx context.Context, fingerprint string, expiresAt time.Time) error

	// IsTokenRevoked ignores entries that expired at or before now.
	IsTokenRevoked(ctx context.Context, fingerprint string, now time.Time) (bool, error)

	// DeleteExpiredRevokedTokens prunes entries expired at or before now.
	DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error)
}
