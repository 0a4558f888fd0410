package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ponliv/marketplace/internal/marketplace/domain"
	"github.com/ponliv/marketplace/internal/marketplace/schema"
	"github.com/ponliv/marketplace/internal/marketplace/store"
	"github.com/ponliv/marketplace/pkg/idx"
	"github.com/ponliv/marketplace/pkg/slogx"
)

// BookService manages seller listings. Sellers act on their own listings,
// admins on any.
type BookService struct {
	Store        store.Store
	StoreTimeout time.Duration
	Now          func() time.Time
}

func (s *BookService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func canList(a Actor) bool {
	return a.Role == string(domain.RoleSeller) || a.isAdmin()
}

func canManage(a Actor, b domain.Book) bool {
	return a.isAdmin() || (a.Role == string(domain.RoleSeller) && a.UserID == b.SellerID)
}

// Create stores a new listing. Sellers always list under their own id; an
// admin may list on behalf of sellerId. Only admins may mark a listing verified.
func (s *BookService) Create(ctx context.Context, actor Actor, payload []byte) (domain.Book, error) {
	if !canList(actor) {
		return domain.Book{}, ErrForbidden
	}

	b, err := schema.ValidateBook(payload)
	if err != nil {
		return domain.Book{}, err
	}
	if b.IsVerified && !actor.isAdmin() {
		return domain.Book{}, ErrForbidden
	}
	if err := s.ensureAccount(ctx, actor); err != nil {
		return domain.Book{}, err
	}
	if !actor.isAdmin() || b.SellerID == "" {
		b.SellerID = actor.UserID
	}

	if err := s.ensureISBNFree(ctx, b.ISBN, ""); err != nil {
		return domain.Book{}, err
	}

	now := s.now()
	b.ID = idx.New().String()
	b.CreatedAt = now
	b.UpdatedAt = now

	sctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()
	if err := s.Store.Books().CreateBook(sctx, b); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Book{}, ErrDuplicateISBN
		}
		return domain.Book{}, storeFailure(ctx, "book.create", err)
	}

	slogx.FromContext(ctx).Info("book listed", slog.String("book_id", b.ID), slog.String("seller_id", b.SellerID))
	return b, nil
}

// ensureAccount rejects actors whose account was deleted while their token
// is still within its lifetime.
func (s *BookService) ensureAccount(ctx context.Context, actor Actor) error {
	sctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()

	if _, err := s.Store.Users().GetUserByID(sctx, actor.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrForbidden
		}
		return storeFailure(ctx, "book.actor", err)
	}
	return nil
}

func (s *BookService) Get(ctx context.Context, id string) (domain.Book, error) {
	if _, err := idx.Parse(id); err != nil {
		return domain.Book{}, ErrNotFound
	}

	sctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()

	b, err := s.Store.Books().GetBookByID(sctx, id)
	if err != nil {
		return domain.Book{}, storeFailure(ctx, "book.get", err)
	}
	return b, nil
}

// GetByISBN accepts hyphenated ISBNs.
func (s *BookService) GetByISBN(ctx context.Context, isbn string) (domain.Book, error) {
	sctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()

	b, err := s.Store.Books().GetBookByISBN(sctx, normalizeISBN(isbn))
	if err != nil {
		return domain.Book{}, storeFailure(ctx, "book.by_isbn", err)
	}
	return b, nil
}

// GetByTitle returns the oldest live listing whose title matches exactly.
func (s *BookService) GetByTitle(ctx context.Context, title string) (domain.Book, error) {
	sctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()

	b, err := s.Store.Books().GetBookByTitle(sctx, strings.TrimSpace(title))
	if err != nil {
		return domain.Book{}, storeFailure(ctx, "book.by_title", err)
	}
	return b, nil
}

func (s *BookService) Update(ctx context.Context, actor Actor, id string, payload []byte) (domain.Book, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return domain.Book{}, err
	}
	if !canManage(actor, b) {
		return domain.Book{}, ErrForbidden
	}
	if err := s.ensureAccount(ctx, actor); err != nil {
		return domain.Book{}, err
	}

	patch, err := schema.ValidateBookPatch(payload)
	if err != nil {
		return domain.Book{}, err
	}
	if patch.IsVerified != nil && !actor.isAdmin() {
		return domain.Book{}, ErrForbidden
	}
	if patch.IsEmpty() {
		return b, nil
	}
	if patch.ISBN != nil && *patch.ISBN != b.ISBN {
		if err := s.ensureISBNFree(ctx, *patch.ISBN, b.ID); err != nil {
			return domain.Book{}, err
		}
	}

	patch.Apply(&b)
	b.UpdatedAt = s.now()

	sctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()
	if err := s.Store.Books().UpdateBook(sctx, b); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Book{}, ErrDuplicateISBN
		}
		return domain.Book{}, storeFailure(ctx, "book.update", err)
	}
	return b, nil
}

// Delete soft-deletes a listing; it disappears from every lookup.
func (s *BookService) Delete(ctx context.Context, actor Actor, id string) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(actor, b) {
		return ErrForbidden
	}
	if err := s.ensureAccount(ctx, actor); err != nil {
		return err
	}

	sctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()
	if err := s.Store.Books().SoftDeleteBook(sctx, id, s.now()); err != nil {
		return storeFailure(ctx, "book.delete", err)
	}

	slogx.FromContext(ctx).Info("book removed", slog.String("book_id", id), slog.String("by", actor.UserID))
	return nil
}

// Search parses query parameters and returns matching live listings, oldest
// first. The result is never nil.
func (s *BookService) Search(ctx context.Context, params url.Values) ([]domain.Book, error) {
	f, err := schema.ParseBookFilter(params)
	if err != nil {
		return nil, err
	}

	sctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()
	books, err := s.Store.Books().SearchBooks(sctx, f)
	if err != nil {
		return nil, storeFailure(ctx, "book.search", err)
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books, nil
}

// ensureISBNFree reports ErrDuplicateISBN when a live listing other than
// self already carries isbn. The unique index still backs this up.
func (s *BookService) ensureISBNFree(ctx context.Context, isbn, self string) error {
	if isbn == "" {
		return nil
	}

	sctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()

	existing, err := s.Store.Books().GetBookByISBN(sctx, isbn)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return storeFailure(ctx, "book.isbn_check", err)
	case existing.ID != self:
		return ErrDuplicateISBN
	default:
		return nil
	}
}

func normalizeISBN(isbn string) string {
	return strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
}
