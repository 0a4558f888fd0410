package http

import (
	"errors"
	"net/http"

	"github.com/ponliv/marketplace/internal/marketplace/schema"
	"github.com/ponliv/marketplace/internal/marketplace/service"
	"github.com/ponliv/marketplace/pkg/httpx"
)

// writeServiceError maps service and validation failures onto the wire
// taxonomy. Causes behind store and internal failures were logged by the
// service and are not echoed.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *schema.ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.WriteError(w, http.StatusBadRequest, httpx.KindValidation, "invalid input", violations(ve)...)
	case errors.Is(err, httpx.ErrBodyTooLarge):
		httpx.WriteError(w, http.StatusRequestEntityTooLarge, httpx.KindValidation, "request body too large")
	case errors.Is(err, service.ErrDuplicateEmail):
		httpx.WriteError(w, http.StatusBadRequest, httpx.KindDuplicateEmail, "email already registered",
			httpx.FieldViolation{Field: "email", Rule: "unique", Message: "is already registered"})
	case errors.Is(err, service.ErrDuplicateISBN):
		httpx.WriteError(w, http.StatusBadRequest, httpx.KindDuplicateISBN, "isbn already listed",
			httpx.FieldViolation{Field: "isbn", Rule: "unique", Message: "is already listed"})
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, httpx.KindInvalidCredentials, "invalid email or password")
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, httpx.KindForbidden, "not allowed to act on this resource")
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, httpx.KindNotFound, "resource not found")
	case errors.Is(err, service.ErrStoreUnavailable):
		httpx.WriteError(w, http.StatusInternalServerError, httpx.KindStoreUnavailable, "service temporarily unavailable")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, httpx.KindInternal, "internal error")
	}
}

func violations(ve *schema.ValidationError) []httpx.FieldViolation {
	out := make([]httpx.FieldViolation, len(ve.Violations))
	for i, v := range ve.Violations {
		out[i] = httpx.FieldViolation{Field: v.Field, Rule: v.Rule, Message: v.Message}
	}
	return out
}

// actor reads the principal attached by the auth gate.
func actor(r *http.Request) (service.Actor, bool) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok || p.UserID == "" {
		return service.Actor{}, false
	}
	return service.Actor{UserID: p.UserID, Role: p.Role}, true
}

func writeUnauthenticated(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, httpx.KindMissingCredentials, "authentication required")
}
