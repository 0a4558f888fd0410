package jwtx

import (
	"errors"
	"time"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// Signer mints signed tokens from claims.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// VerifyOptions captures expectations enforced by verifiers.
type VerifyOptions struct {
	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration

	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

var (
	// ErrInvalid wraps every rejection other than expiry.
	ErrInvalid = errors.New("jwtx: invalid token")

	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrAlgMismatch  = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")

	ErrExpired = errors.New("jwtx: token expired")

	// ErrWeakSecret is returned when the HMAC secret is empty or too short.
	ErrWeakSecret = errors.New("jwtx: signing secret must be at least 32 bytes")
)
