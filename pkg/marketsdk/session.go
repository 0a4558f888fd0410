package marketsdk

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Session carries a bearer token obtained from Login. Tokens are not
// refreshed; log in again once ExpiresAt has passed.
type Session struct {
	client    *Client
	token     string
	expiresAt time.Time
	user      UserProfile
}

// NewSession wraps an existing token, e.g. one persisted by the caller.
func (c *Client) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}

func (s *Session) Token() string        { return s.token }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// User is the profile returned at login. Call Me for a fresh copy.
func (s *Session) User() UserProfile { return s.user }

func (s *Session) Me(ctx context.Context) (*UserProfile, error) {
	var out UserProfile
	if err := s.client.call(ctx, http.MethodGet, "/api/users/me", s.token, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser sends a partial update; only the members of patch are changed.
func (s *Session) UpdateUser(ctx context.Context, id string, patch map[string]any) (*UserProfile, error) {
	var out UserProfile
	path := "/api/users/" + url.PathEscape(id)
	if err := s.client.call(ctx, http.MethodPut, path, s.token, patch, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteUser(ctx context.Context, id string) error {
	var out MessageResponse
	return s.client.call(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), s.token, nil, &out, http.StatusOK)
}

// Logout revokes the session token on the server.
func (s *Session) Logout(ctx context.Context) error {
	var out MessageResponse
	return s.client.call(ctx, http.MethodPost, "/api/users/logout", s.token, nil, &out, http.StatusOK)
}

func (s *Session) CreateBook(ctx context.Context, req BookRequest) (*Book, error) {
	var out BookResponse
	if err := s.client.call(ctx, http.MethodPost, "/api/books", s.token, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.Book, nil
}

func (s *Session) UpdateBook(ctx context.Context, id string, req BookRequest) (*Book, error) {
	var out BookResponse
	path := "/api/books/" + url.PathEscape(id)
	if err := s.client.call(ctx, http.MethodPut, path, s.token, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Book, nil
}

func (s *Session) DeleteBook(ctx context.Context, id string) error {
	var out MessageResponse
	return s.client.call(ctx, http.MethodDelete, "/api/books/"+url.PathEscape(id), s.token, nil, &out, http.StatusOK)
}
