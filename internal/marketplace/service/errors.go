package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ponliv/marketplace/internal/marketplace/domain"
	"github.com/ponliv/marketplace/internal/marketplace/store"
	"github.com/ponliv/marketplace/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateISBN      = errors.New("isbn already listed")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrInternal           = errors.New("internal error")
)

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) isAdmin() bool { return a.Role == string(domain.RoleAdmin) }

// storeFailure logs err and hides it behind ErrStoreUnavailable. Not-found is
// passed through as ErrNotFound since callers branch on it.
func storeFailure(ctx context.Context, op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	slogx.FromContext(ctx).Error("store call failed", slog.String("op", op), slog.Any("err", err))
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

func internal(ctx context.Context, op string, err error) error {
	slogx.FromContext(ctx).Error("internal failure", slog.String("op", op), slog.Any("err", err))
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}
