package service

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ponliv/marketplace/internal/marketplace/domain"
	"github.com/ponliv/marketplace/internal/marketplace/schema"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("stores normalized user with argon2id hash", func(t *testing.T) {
		f := newFixture(t)
		u, err := f.sessions.Register(t.Context(), payload(t, registration("student", "  Ana@Example.COM ")))
		require.NoError(t, err)
		require.Equal(t, "ana@example.com", u.Email)
		require.Equal(t, domain.RoleStudent, u.Role)
		require.Equal(t, domain.StatusActive, u.Status)
		require.True(t, strings.HasPrefix(u.PasswordHash, "$argon2id$"))
		require.NotEmpty(t, u.ID)

		stored, err := f.store.Users().GetUserByEmail(t.Context(), "ana@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, stored.ID)
		require.NoError(t, f.hasher.Verify(t.Context(), "secret1", stored.PasswordHash))
	})

	t.Run("duplicate email ignores case", func(t *testing.T) {
		f := newFixture(t)
		f.registerActor(t, "student", "dup@example.com")

		_, err := f.sessions.Register(t.Context(), payload(t, registration("parent", "DUP@example.com")))
		require.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("validation errors pass through", func(t *testing.T) {
		f := newFixture(t)
		p := registration("school", "school@example.com")
		delete(p, "director")

		_, err := f.sessions.Register(t.Context(), payload(t, p))
		var ve *schema.ValidationError
		require.True(t, errors.As(err, &ve))
		require.True(t, ve.Has("director"))
	})

	t.Run("unknown role", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.sessions.Register(t.Context(), payload(t, registration("janitor", "t@example.com")))
		var ve *schema.ValidationError
		require.True(t, errors.As(err, &ve))
		require.True(t, ve.Has("role"))
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("issues a verifiable token", func(t *testing.T) {
		f := newFixture(t)
		actor := f.registerActor(t, "seller", "seller@example.com")

		sess, err := f.sessions.Login(t.Context(), payload(t, map[string]any{
			"email": " Seller@Example.com", "password": "secret1",
		}))
		require.NoError(t, err)
		require.Equal(t, actor.UserID, sess.User.ID)
		require.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)

		claims, err := f.verifier.Verify(sess.Token)
		require.NoError(t, err)
		require.Equal(t, actor.UserID, claims.Subject)
		require.Equal(t, "seller", claims.Role)
		require.Equal(t, testIssuer, claims.Issuer)
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		f := newFixture(t)
		f.registerActor(t, "student", "known@example.com")

		_, errUnknown := f.sessions.Login(t.Context(), payload(t, map[string]any{
			"email": "nobody@example.com", "password": "secret1",
		}))
		_, errWrong := f.sessions.Login(t.Context(), payload(t, map[string]any{
			"email": "known@example.com", "password": "wrong-password",
		}))
		require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		require.ErrorIs(t, errWrong, ErrInvalidCredentials)
		require.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("password is not trimmed", func(t *testing.T) {
		f := newFixture(t)
		p := registration("student", "spaces@example.com")
		p["password"] = "  padded  "
		_, err := f.sessions.Register(t.Context(), payload(t, p))
		require.NoError(t, err)

		_, err = f.sessions.Login(t.Context(), payload(t, map[string]any{
			"email": "spaces@example.com", "password": "padded",
		}))
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = f.sessions.Login(t.Context(), payload(t, map[string]any{
			"email": "spaces@example.com", "password": "  padded  ",
		}))
		require.NoError(t, err)
	})

	t.Run("malformed credentials", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.sessions.Login(t.Context(), payload(t, map[string]any{"email": "not-an-email"}))
		var ve *schema.ValidationError
		require.True(t, errors.As(err, &ve))
		require.True(t, ve.Has("email"))
		require.True(t, ve.Has("password"))
	})

	t.Run("legacy bcrypt hash is upgraded", func(t *testing.T) {
		f := newFixture(t)
		actor := f.registerActor(t, "parent", "legacy@example.com")

		legacy, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
		require.NoError(t, err)
		u, err := f.store.Users().GetUserByID(t.Context(), actor.UserID)
		require.NoError(t, err)
		u.PasswordHash = string(legacy)
		require.NoError(t, f.store.Users().UpdateUser(t.Context(), u))

		_, err = f.sessions.Login(t.Context(), payload(t, map[string]any{
			"email": "legacy@example.com", "password": "secret1",
		}))
		require.NoError(t, err)

		u, err = f.store.Users().GetUserByID(t.Context(), actor.UserID)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(u.PasswordHash, "$argon2id$"))
	})
}

func TestMe(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	actor := f.registerActor(t, "sponsor", "me@example.com")

	u, err := f.sessions.Me(t.Context(), actor.UserID)
	require.NoError(t, err)
	require.Equal(t, "me@example.com", u.Email)

	_, err = f.sessions.Me(t.Context(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	t.Run("owner updates supplied fields only", func(t *testing.T) {
		f := newFixture(t)
		actor := f.registerActor(t, "student", "owner@example.com")

		u, err := f.sessions.Update(t.Context(), actor, actor.UserID, payload(t, map[string]any{
			"name": "  Ana Maria ",
		}))
		require.NoError(t, err)
		require.Equal(t, "Ana Maria", u.Name)
		require.Equal(t, "owner@example.com", u.Email)
		require.Equal(t, "Rua das Flores 12", u.Address)
	})

	t.Run("password change is rehashed", func(t *testing.T) {
		f := newFixture(t)
		actor := f.registerActor(t, "student", "pw@example.com")

		_, err := f.sessions.Update(t.Context(), actor, actor.UserID, payload(t, map[string]any{
			"password": "new-secret",
		}))
		require.NoError(t, err)

		_, err = f.sessions.Login(t.Context(), payload(t, map[string]any{"email": "pw@example.com", "password": "secret1"}))
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = f.sessions.Login(t.Context(), payload(t, map[string]any{"email": "pw@example.com", "password": "new-secret"}))
		require.NoError(t, err)
	})

	t.Run("other users are forbidden, admins are not", func(t *testing.T) {
		f := newFixture(t)
		target := f.registerActor(t, "student", "target@example.com")
		other := f.registerActor(t, "parent", "other@example.com")
		admin := f.registerActor(t, "admin", "admin@example.com")

		_, err := f.sessions.Update(t.Context(), other, target.UserID, payload(t, map[string]any{"name": "Hacked"}))
		require.ErrorIs(t, err, ErrForbidden)

		u, err := f.sessions.Update(t.Context(), admin, target.UserID, payload(t, map[string]any{"name": "Fixed Name"}))
		require.NoError(t, err)
		require.Equal(t, "Fixed Name", u.Name)
	})

	t.Run("missing target is not found before forbidden", func(t *testing.T) {
		f := newFixture(t)
		actor := f.registerActor(t, "student", "x@example.com")

		_, err := f.sessions.Update(t.Context(), actor, "missing", payload(t, map[string]any{"name": "Whoever"}))
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("role is immutable", func(t *testing.T) {
		f := newFixture(t)
		actor := f.registerActor(t, "student", "role@example.com")

		_, err := f.sessions.Update(t.Context(), actor, actor.UserID, payload(t, map[string]any{"role": "admin"}))
		var ve *schema.ValidationError
		require.True(t, errors.As(err, &ve))
		require.True(t, ve.Has("role"))
	})

	t.Run("empty patch writes nothing", func(t *testing.T) {
		f := newFixture(t)
		actor := f.registerActor(t, "parent", "same@example.com")
		before, err := f.sessions.Me(t.Context(), actor.UserID)
		require.NoError(t, err)

		u, err := f.sessions.Update(t.Context(), actor, actor.UserID, []byte(`{}`))
		require.NoError(t, err)
		require.Equal(t, before.UpdatedAt, u.UpdatedAt)

		after, err := f.sessions.Me(t.Context(), actor.UserID)
		require.NoError(t, err)
		require.Equal(t, before, after)
	})

	t.Run("email clash", func(t *testing.T) {
		f := newFixture(t)
		f.registerActor(t, "student", "taken@example.com")
		actor := f.registerActor(t, "student", "mine@example.com")

		_, err := f.sessions.Update(t.Context(), actor, actor.UserID, payload(t, map[string]any{"email": "Taken@example.com"}))
		require.ErrorIs(t, err, ErrDuplicateEmail)
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	target := f.registerActor(t, "student", "gone@example.com")
	other := f.registerActor(t, "student", "other@example.com")

	require.ErrorIs(t, f.sessions.Delete(t.Context(), other, target.UserID), ErrForbidden)
	require.NoError(t, f.sessions.Delete(t.Context(), target, target.UserID))
	require.ErrorIs(t, f.sessions.Delete(t.Context(), target, target.UserID), ErrNotFound)

	_, err := f.sessions.Me(t.Context(), target.UserID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLogout(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.registerActor(t, "student", "out@example.com")

	sess, err := f.sessions.Login(t.Context(), payload(t, map[string]any{"email": "out@example.com", "password": "secret1"}))
	require.NoError(t, err)
	claims, err := f.verifier.Verify(sess.Token)
	require.NoError(t, err)

	revoked, err := f.sessions.IsRevoked(t.Context(), sess.Token)
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, f.sessions.Logout(t.Context(), sess.Token, claims))
	require.NoError(t, f.sessions.Logout(t.Context(), sess.Token, claims))

	revoked, err = f.sessions.IsRevoked(t.Context(), sess.Token)
	require.NoError(t, err)
	require.True(t, revoked)

	again, err := f.sessions.Login(t.Context(), payload(t, map[string]any{"email": "out@example.com", "password": "secret1"}))
	require.NoError(t, err)
	revoked, err = f.sessions.IsRevoked(t.Context(), again.Token)
	require.NoError(t, err)
	require.False(t, revoked, "a new session is unaffected")
}

func TestStoreUnavailable(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.registerActor(t, "student", "down@example.com")
	sess, err := f.sessions.Login(t.Context(), payload(t, map[string]any{"email": "down@example.com", "password": "secret1"}))
	require.NoError(t, err)

	require.NoError(t, f.store.Close())

	_, err = f.sessions.Register(t.Context(), payload(t, registration("parent", "new@example.com")))
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.NotErrorIs(t, err, ErrDuplicateEmail)

	_, err = f.sessions.Login(t.Context(), payload(t, map[string]any{"email": "down@example.com", "password": "secret1"}))
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.NotErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.sessions.IsRevoked(t.Context(), sess.Token)
	require.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = f.books.Search(t.Context(), url.Values{"q": {"algebra"}})
	require.ErrorIs(t, err, ErrStoreUnavailable)
}
