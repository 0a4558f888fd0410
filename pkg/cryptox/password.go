package cryptox

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

var (
	ErrMismatch        = errors.New("cryptox: password does not match")
	ErrMalformedHash   = errors.New("cryptox: malformed password hash")
	ErrHashTimeout     = errors.New("cryptox: hashing timed out")
	ErrPasswordTooLong = errors.New("cryptox: password too long")
)

// MaxPasswordBytes caps the input to the KDF. bcrypt silently truncates at
// 72 bytes so anything longer is only accepted for argon2id.
const MaxPasswordBytes = 1024

// Params are the Argon2id cost parameters encoded into every hash.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
	SaltLength  int
}

// DefaultParams follow the OWASP minimum for argon2id (19 MiB, t=2, p=1).
var DefaultParams = Params{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	KeyLength:   32,
	SaltLength:  16,
}

// Hasher produces and checks PHC-format argon2id hashes. Concurrent KDF runs
// are bounded by a weighted semaphore and every call honours a timeout.
type Hasher struct {
	params  Params
	pepper  string
	sem     *semaphore.Weighted
	timeout time.Duration
	dummy   string
}

type HasherOption func(*Hasher)

func WithParams(p Params) HasherOption         { return func(h *Hasher) { h.params = p } }
func WithPepper(pepper string) HasherOption    { return func(h *Hasher) { h.pepper = pepper } }
func WithTimeout(d time.Duration) HasherOption { return func(h *Hasher) { h.timeout = d } }

// WithConcurrency limits how many hashes run at once. n <= 0 keeps the default.
func WithConcurrency(n int) HasherOption {
	return func(h *Hasher) {
		if n > 0 {
			h.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// NewHasher builds a Hasher and precomputes the dummy hash used by VerifyDummy.
func NewHasher(opts ...HasherOption) (*Hasher, error) {
	h := &Hasher{
		params:  DefaultParams,
		sem:     semaphore.NewWeighted(4),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}

	dummy, err := h.hash("dummy-password-for-unknown-users")
	if err != nil {
		return nil, fmt.Errorf("cryptox: dummy hash: %w", err)
	}
	h.dummy = dummy
	return h, nil
}

// Hash returns a PHC-format Argon2id hash including salt and parameters.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	var out string
	err := h.bounded(ctx, func() error {
		var err error
		out, err = h.hash(password)
		return err
	})
	return out, err
}

// Verify checks password against an argon2id or legacy bcrypt hash.
// A wrong password yields ErrMismatch.
func (h *Hasher) Verify(ctx context.Context, password, encoded string) error {
	if len(password) > MaxPasswordBytes {
		return ErrMismatch
	}
	return h.bounded(ctx, func() error {
		return h.verify(password, encoded)
	})
}

// VerifyDummy burns the same work as a real verify against a throwaway hash.
// Callers use it when the account does not exist so both paths take equal time.
func (h *Hasher) VerifyDummy(ctx context.Context, password string) {
	_ = h.Verify(ctx, password, h.dummy)
}

// NeedsRehash reports whether encoded was produced by an older scheme or
// weaker parameters and should be replaced after a successful login.
func (h *Hasher) NeedsRehash(encoded string) bool {
	if isBcrypt(encoded) {
		return true
	}
	p, _, _, err := decodePHC(encoded)
	if err != nil {
		return true
	}
	return p.Memory < h.params.Memory || p.Iterations < h.params.Iterations
}

// bounded runs fn under the semaphore and the configured timeout. The KDF
// itself cannot be interrupted, so on timeout the caller returns early and
// the slot is released once fn finishes.
func (h *Hasher) bounded(ctx context.Context, fn func() error) error {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return timeoutErr(err)
	}

	done := make(chan error, 1)
	go func() {
		defer h.sem.Release(1)
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return timeoutErr(ctx.Err())
	}
}

func timeoutErr(err error) error {
	return fmt.Errorf("%w: %w", ErrHashTimeout, err)
}

func (h *Hasher) hash(password string) (string, error) {
	p := h.params
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password+h.pepper), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory,
		p.Iterations,
		p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Hasher) verify(password, encoded string) error {
	if isBcrypt(encoded) {
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		switch {
		case err == nil:
			return nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return ErrMismatch
		default:
			return fmt.Errorf("%w: %w", ErrMalformedHash, err)
		}
	}

	p, salt, want, err := decodePHC(encoded)
	if err != nil {
		return err
	}

	// #nosec G115 -- key length comes from our own encoder
	got := argon2.IDKey([]byte(password+h.pepper), salt, p.Iterations, p.Memory, p.Parallelism, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) == 1 {
		return nil
	}
	return ErrMismatch
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

// decodePHC parses $argon2id$v=19$m=X,t=Y,p=Z$salt$hash.
func decodePHC(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return Params{}, nil, nil, fmt.Errorf("%w: expected 6 parts", ErrMalformedHash)
	}
	if parts[1] != "argon2id" {
		return Params{}, nil, nil, fmt.Errorf("%w: not argon2id", ErrMalformedHash)
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return Params{}, nil, nil, fmt.Errorf("%w: wrong version", ErrMalformedHash)
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: parameters: %w", ErrMalformedHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: salt: %w", ErrMalformedHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Params{}, nil, nil, fmt.Errorf("%w: hash", ErrMalformedHash)
	}
	return p, salt, key, nil
}
