package marketsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds returned by the server.
const (
	KindValidation         = "validation_error"
	KindDuplicateEmail     = "duplicate_email"
	KindDuplicateISBN      = "duplicate_isbn"
	KindInvalidCredentials = "invalid_credentials"
	KindMissingCredentials = "missing_credentials"
	KindTokenInvalid       = "token_invalid"
	KindTokenExpired       = "token_expired"
	KindTokenRevoked       = "token_revoked"
	KindForbidden          = "forbidden"
	KindNotFound           = "not_found"
	KindRateLimited        = "rate_limited"
	KindStoreUnavailable   = "store_unavailable"
	KindInternal           = "internal_error"
)

// Violation is one failed rule on one input field.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// APIError is a decoded non-2xx response.
type APIError struct {
	StatusCode int         `json:"-"`
	Kind       string      `json:"kind"`
	Message    string      `json:"message"`
	Violations []Violation `json:"violations,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Violations) == 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field + " " + v.Message
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, strings.Join(fields, "; "))
}

// HasViolation reports whether field failed validation.
func (e *APIError) HasViolation(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Kind == "" {
		apiErr.Kind = KindInternal
		apiErr.Message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return apiErr
}
