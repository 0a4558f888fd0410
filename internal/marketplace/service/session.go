package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ponliv/marketplace/internal/marketplace/domain"
	"github.com/ponliv/marketplace/internal/marketplace/schema"
	"github.com/ponliv/marketplace/internal/marketplace/store"
	"github.com/ponliv/marketplace/pkg/cryptox"
	"github.com/ponliv/marketplace/pkg/idx"
	"github.com/ponliv/marketplace/pkg/jwtx"
	"github.com/ponliv/marketplace/pkg/slogx"
)

// DefaultStoreTimeout bounds every store call when none is configured.
const DefaultStoreTimeout = 5 * time.Second

// Session is a freshly issued bearer token and the user it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

// SessionService runs the account lifecycle: register, login, profile
// reads and writes, and logout.
type SessionService struct {
	Store  store.Store
	Ledger store.RevokedTokens
	Hasher *cryptox.Hasher
	Signer jwtx.Signer

	Issuer       string
	TokenTTL     time.Duration
	StoreTimeout time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *SessionService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return withStoreTimeout(ctx, s.StoreTimeout)
}

func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, d)
}

func (s *SessionService) ledger() store.RevokedTokens {
	if s.Ledger != nil {
		return s.Ledger
	}
	return s.Store.RevokedTokens()
}

// Register validates payload against the schema of its role, stores the
// user and returns the created record.
func (s *SessionService) Register(ctx context.Context, payload []byte) (domain.User, error) {
	profile, err := schema.Validate(payload)
	if err != nil {
		return domain.User{}, err
	}
	u := profile.User(s.now())

	sctx, cancel := s.storeCtx(ctx)
	_, err = s.Store.Users().GetUserByEmail(sctx, u.Email)
	cancel()
	switch {
	case err == nil:
		return domain.User{}, ErrDuplicateEmail
	case !errors.Is(err, store.ErrNotFound):
		return domain.User{}, storeFailure(ctx, "register.lookup", err)
	}

	u.PasswordHash, err = s.hash(ctx, profile.PlainPassword())
	if err != nil {
		return domain.User{}, err
	}
	u.ID = idx.New().String()

	sctx, cancel = s.storeCtx(ctx)
	defer cancel()
	if err := s.Store.Users().CreateUser(sctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, storeFailure(ctx, "register.create", err)
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", u.ID), slog.String("role", string(u.Role)))
	return u, nil
}

// Login checks credentials and issues a session token. An unknown email and
// a wrong password are indistinguishable to the caller.
func (s *SessionService) Login(ctx context.Context, payload []byte) (Session, error) {
	creds, err := schema.ValidateCredentials(payload)
	if err != nil {
		return Session{}, err
	}
	log := slogx.FromContext(ctx)

	sctx, cancel := s.storeCtx(ctx)
	u, err := s.Store.Users().GetUserByEmail(sctx, creds.Email)
	cancel()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Hasher.VerifyDummy(ctx, creds.Password)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, storeFailure(ctx, "login.lookup", err)
	}

	if err := s.Hasher.Verify(ctx, creds.Password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrHashTimeout) {
			return Session{}, internal(ctx, "login.verify", err)
		}
		if errors.Is(err, cryptox.ErrMalformedHash) {
			log.Warn("stored password hash is malformed", slog.String("user_id", u.ID))
		}
		return Session{}, ErrInvalidCredentials
	}

	if s.Hasher.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, u, creds.Password)
	}

	now := s.now()
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultTokenTTL
	}
	claims := jwtx.NewSessionClaims(u.ID, string(u.Role), s.Issuer, ttl, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return Session{}, internal(ctx, "login.sign", err)
	}

	log.Info("user logged in", slog.String("user_id", u.ID))
	return Session{Token: token, ExpiresAt: claims.ExpiresAtTime(), User: u}, nil
}

// rehash upgrades a legacy hash after a successful login. Failure is logged
// and the login still succeeds.
func (s *SessionService) rehash(ctx context.Context, u domain.User, password string) {
	log := slogx.FromContext(ctx)

	fresh, err := s.Hasher.Hash(ctx, password)
	if err != nil {
		log.Warn("password rehash failed", slog.String("user_id", u.ID), slog.Any("err", err))
		return
	}
	u.PasswordHash = fresh
	u.UpdatedAt = s.now()

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.Store.Users().UpdateUser(sctx, u); err != nil {
		log.Warn("storing rehashed password failed", slog.String("user_id", u.ID), slog.Any("err", err))
		return
	}
	log.Info("password hash upgraded", slog.String("user_id", u.ID))
}

// Me returns the caller's own record.
func (s *SessionService) Me(ctx context.Context, userID string) (domain.User, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	u, err := s.Store.Users().GetUserByID(sctx, userID)
	if err != nil {
		return domain.User{}, storeFailure(ctx, "me", err)
	}
	return u, nil
}

// Update applies a partial update to targetID. Only the user themselves or
// an admin may do so.
func (s *SessionService) Update(ctx context.Context, actor Actor, targetID string, payload []byte) (domain.User, error) {
	target, err := s.authorizedTarget(ctx, actor, targetID)
	if err != nil {
		return domain.User{}, err
	}

	patch, err := schema.ValidatePatch(target.Role, payload)
	if err != nil {
		return domain.User{}, err
	}
	if patch.IsEmpty() {
		return target, nil
	}

	if patch.Password != nil {
		target.PasswordHash, err = s.hash(ctx, *patch.Password)
		if err != nil {
			return domain.User{}, err
		}
	}
	patch.Apply(&target)
	target.UpdatedAt = s.now()

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.Store.Users().UpdateUser(sctx, target); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, storeFailure(ctx, "update", err)
	}

	slogx.FromContext(ctx).Info("user updated", slog.String("user_id", target.ID), slog.String("by", actor.UserID))
	return target, nil
}

// Delete removes targetID permanently. Tokens already issued to the user
// keep verifying until they expire, but Me then reports ErrNotFound.
func (s *SessionService) Delete(ctx context.Context, actor Actor, targetID string) error {
	if _, err := s.authorizedTarget(ctx, actor, targetID); err != nil {
		return err
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.Store.Users().DeleteUser(sctx, targetID); err != nil {
		return storeFailure(ctx, "delete", err)
	}

	slogx.FromContext(ctx).Info("user deleted", slog.String("user_id", targetID), slog.String("by", actor.UserID))
	return nil
}

func (s *SessionService) authorizedTarget(ctx context.Context, actor Actor, targetID string) (domain.User, error) {
	if _, err := idx.Parse(targetID); err != nil {
		return domain.User{}, ErrNotFound
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	target, err := s.Store.Users().GetUserByID(sctx, targetID)
	if err != nil {
		return domain.User{}, storeFailure(ctx, "load target", err)
	}
	if actor.UserID != target.ID && !actor.isAdmin() {
		return domain.User{}, ErrForbidden
	}
	return target, nil
}

// Logout revokes token until its own expiry. Revoking twice is harmless.
func (s *SessionService) Logout(ctx context.Context, token string, claims jwtx.Claims) error {
	expiresAt := claims.ExpiresAtTime()
	if expiresAt.IsZero() {
		expiresAt = s.now().Add(jwtx.DefaultTokenTTL)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.ledger().RevokeToken(sctx, cryptox.FingerprintToken(token), expiresAt); err != nil {
		return storeFailure(ctx, "logout", err)
	}

	slogx.FromContext(ctx).Info("user logged out", slog.String("user_id", claims.Subject))
	return nil
}

// IsRevoked reports whether token was logged out and has not yet expired.
func (s *SessionService) IsRevoked(ctx context.Context, token string) (bool, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	revoked, err := s.ledger().IsTokenRevoked(sctx, cryptox.FingerprintToken(token), s.now())
	if err != nil {
		return false, storeFailure(ctx, "revocation lookup", err)
	}
	return revoked, nil
}

func (s *SessionService) hash(ctx context.Context, password string) (string, error) {
	h, err := s.Hasher.Hash(ctx, password)
	if err == nil {
		return h, nil
	}
	if errors.Is(err, cryptox.ErrPasswordTooLong) {
		return "", &schema.ValidationError{Violations: []schema.Violation{{
			Field:   "password",
			Rule:    "max",
			Message: "is too long",
		}}}
	}
	return "", internal(ctx, "hash password", err)
}
