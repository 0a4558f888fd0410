package marketsdk

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoginAndSession(t *testing.T) {
	t.Parallel()

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/users/login":
			var req LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Password != "secret1" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"kind":"invalid_credentials","message":"invalid email or password"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(LoginResponse{
				Token: "tok", TokenType: "Bearer", ExpiresAt: exp,
				User: UserProfile{ID: "u1", Email: req.Email, Role: "student"},
			})
		case "/api/users/me":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"kind":"missing_credentials","message":"missing bearer token"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(UserProfile{ID: "u1"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL + "/")

	_, err := c.Login(t.Context(), "ana@example.com", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, KindInvalidCredentials, apiErr.Kind)

	sess, err := c.Login(t.Context(), "ana@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "tok", sess.Token())
	require.True(t, exp.Equal(sess.ExpiresAt()))
	require.Equal(t, "u1", sess.User().ID)

	me, err := sess.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, "u1", me.ID)

	_, err = c.NewSession("").Me(t.Context())
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, KindMissingCredentials, apiErr.Kind)
}

func TestParseErrorResponse(t *testing.T) {
	t.Parallel()

	t.Run("violations", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusBadRequest}
		err := parseErrorResponse(resp, []byte(`{"kind":"validation_error","message":"invalid input",
			"violations":[{"field":"email","rule":"email","message":"must be a valid email address"}]}`))

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		require.True(t, apiErr.HasViolation("email"))
		require.False(t, apiErr.HasViolation("name"))
		require.Contains(t, apiErr.Error(), "email must be a valid email address")
	})

	t.Run("non json body", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusBadGateway}
		err := parseErrorResponse(resp, []byte("<html>bad gateway</html>"))

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, KindInternal, apiErr.Kind)
		require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	})
}

func TestSearchBooksEncodesQuery(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/books/search", r.URL.Path)
		require.Equal(t, "c++ & go", r.URL.Query().Get("q"))
		_ = json.NewEncoder(w).Encode(BookListResponse{Books: []Book{{ID: "b1"}}})
	}))
	t.Cleanup(srv.Close)

	books, err := NewClient(srv.URL).SearchBooks(t.Context(), url.Values{"q": {"c++ & go"}})
	require.NoError(t, err)
	require.Len(t, books, 1)
}
