package httpx

import (
	"net/http"
	"slices"
)

// RequireAnyRole lets the request through when the caller holds one of roles.
// Must sit behind AuthnMiddleware.
func RequireAnyRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, roleFromCtx(r.Context())) {
				WriteError(w, http.StatusForbidden, KindForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
