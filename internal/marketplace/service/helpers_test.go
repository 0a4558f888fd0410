package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ponliv/marketplace/internal/marketplace/store/drivers/sqlite"
	"github.com/ponliv/marketplace/pkg/cryptox"
	"github.com/ponliv/marketplace/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

const testIssuer = "marketplace-test"

type fixture struct {
	store    *sqlite.Store
	hasher   *cryptox.Hasher
	verifier *jwtx.HS256Verifier
	sessions *SessionService
	books    *BookService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	hasher, err := cryptox.NewHasher(cryptox.WithParams(cryptox.Params{
		Memory: 64, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16,
	}))
	require.NoError(t, err)

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(testSecret, jwtx.VerifyOptions{Issuer: testIssuer})
	require.NoError(t, err)

	return &fixture{
		store:    st,
		hasher:   hasher,
		verifier: verifier,
		sessions: &SessionService{
			Store:        st,
			Hasher:       hasher,
			Signer:       signer,
			Issuer:       testIssuer,
			TokenTTL:     time.Hour,
			StoreTimeout: time.Second,
		},
		books: &BookService{Store: st, StoreTimeout: time.Second},
	}
}

func payload(t *testing.T, v map[string]any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func registration(role, email string) map[string]any {
	p := map[string]any{
		"role":        role,
		"name":        "Ana Silva",
		"email":       email,
		"password":    "secret1",
		"address":     "Rua das Flores 12",
		"phoneNumber": "912345678",
		"nif":         "1234567890",
	}
	if role == "school" {
		p["director"] = "Dr. Costa"
		p["schoolType"] = "secondary"
	}
	return p
}

// registerActor creates a user with role and returns it as an Actor.
func (f *fixture) registerActor(t *testing.T, role, email string) Actor {
	t.Helper()
	u, err := f.sessions.Register(t.Context(), payload(t, registration(role, email)))
	require.NoError(t, err)
	return Actor{UserID: u.ID, Role: string(u.Role)}
}
