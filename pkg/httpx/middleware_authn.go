package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ponliv/marketplace/pkg/jwtx"
	"github.com/ponliv/marketplace/pkg/slogx"
)

// RevocationChecker reports whether a raw bearer token has been logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AuthnMiddleware is the auth gate for protected routes. The order is fixed:
// missing or malformed header, then the revocation ledger, then signature
// and lifetime. Only then is the principal attached to the context.
func AuthnMiddleware(v jwtx.Verifier, revoked RevocationChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := bearerToken(r)
			if !ok {
				writeBearerError(w, KindMissingCredentials, "missing bearer token")
				return
			}

			isRevoked, err := revoked.IsRevoked(ctx, raw)
			if err != nil {
				log.Error("revocation lookup failed", "err", err)
				WriteError(w, http.StatusInternalServerError, KindStoreUnavailable, "service temporarily unavailable")
				return
			}
			if isRevoked {
				writeBearerError(w, KindTokenRevoked, "token has been revoked")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				if errors.Is(err, jwtx.ErrExpired) {
					writeBearerError(w, KindTokenExpired, "token expired")
					return
				}
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w, KindTokenInvalid, "token verification failed")
				return
			}

			ctx = contextWithAuth(ctx, raw, claims)
			ctx = slogx.With(ctx, "user_id", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
// The scheme is case-insensitive per RFC 7235.
func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
