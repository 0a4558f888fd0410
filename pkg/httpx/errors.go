package httpx

import (
	"net/http"
)

// Kind is the machine-readable error category returned to clients.
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindDuplicateEmail     Kind = "duplicate_email"
	KindDuplicateISBN      Kind = "duplicate_isbn"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindMissingCredentials Kind = "missing_credentials"
	KindTokenInvalid       Kind = "token_invalid"
	KindTokenExpired       Kind = "token_expired"
	KindTokenRevoked       Kind = "token_revoked"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindRateLimited        Kind = "rate_limited"
	KindStoreUnavailable   Kind = "store_unavailable"
	KindInternal           Kind = "internal_error"
)

// FieldViolation describes one failed rule on one input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Kind       Kind             `json:"kind"`
	Message    string           `json:"message"`
	Violations []FieldViolation `json:"violations,omitempty"`
}

// Error satisfies error so clients can return a decoded body directly.
func (e ErrorResponse) Error() string { return string(e.Kind) + ": " + e.Message }

// WriteError writes an ErrorResponse with the given status.
func WriteError(w http.ResponseWriter, status int, kind Kind, msg string, violations ...FieldViolation) {
	WriteJSON(w, status, ErrorResponse{Kind: kind, Message: msg, Violations: violations})
}

// writeBearerError is the RFC 6750 flavoured 401 used by the auth gate.
func writeBearerError(w http.ResponseWriter, kind Kind, desc string) {
	code := "invalid_token"
	if kind == KindMissingCredentials {
		code = "invalid_request"
	}
	w.Header().Set("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, kind, desc)
}
