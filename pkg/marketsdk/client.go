package marketsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the marketplace API without credentials.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates an account and returns its public profile.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*UserProfile, error) {
	var out UserProfile
	if err := c.call(ctx, http.MethodPost, "/api/users/register", "", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a Session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var out LoginResponse
	err := c.call(ctx, http.MethodPost, "/api/users/login", "",
		LoginRequest{Email: email, Password: password}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &Session{client: c, token: out.Token, expiresAt: out.ExpiresAt, user: out.User}, nil
}

func (c *Client) GetBook(ctx context.Context, id string) (*Book, error) {
	return c.getBook(ctx, "/api/books/"+url.PathEscape(id))
}

func (c *Client) GetBookByISBN(ctx context.Context, isbn string) (*Book, error) {
	return c.getBook(ctx, "/api/books/isbn/"+url.PathEscape(isbn))
}

func (c *Client) GetBookByTitle(ctx context.Context, title string) (*Book, error) {
	return c.getBook(ctx, "/api/books/title/"+url.PathEscape(title))
}

func (c *Client) getBook(ctx context.Context, path string) (*Book, error) {
	var out BookResponse
	if err := c.call(ctx, http.MethodGet, path, "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Book, nil
}

// SearchBooks runs a catalogue search. params must include "q".
func (c *Client) SearchBooks(ctx context.Context, params url.Values) ([]Book, error) {
	var out BookListResponse
	path := "/api/books/search?" + params.Encode()
	if err := c.call(ctx, http.MethodGet, path, "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Books, nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, http.MethodGet, "/livez", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness checks if the service and its dependencies are ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, http.MethodGet, "/readyz", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
