package apiclient

import (
	"context"
	"net/http"

	"github.com/authdoc/go-authdoc-client/users"
)

// Endpoint paths, relative to the API base URL.
const (
	registerPath = "/auth/register/"
	loginPath    = "/auth/login/"
	mePath       = "/auth/me/"
	revokePath   = "/auth/logout/"
	refreshPath  = "/token/refresh/"
)

// RegisterRequest is the payload the backend's register endpoint expects:
// the password is sent twice (password2 is the confirmation field) and the
// username is the identifier derived from the email.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RegisterResponse carries the created user. The backend also issues a
// token pair here, but registration does not sign the user in, so callers
// normally ignore it.
type RegisterResponse struct {
	User   users.User `json:"user"`
	Tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	} `json:"tokens"`
}

// Register creates a new account. Success is HTTP 201.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.postJSON(ctx, registerPath, req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginResponse is the token pair plus the user record issued on login.
type LoginResponse struct {
	Access  string     `json:"access"`
	Refresh string     `json:"refresh"`
	User    users.User `json:"user"`
}

// Login exchanges username and password for a credential pair. Success is
// HTTP 200; the caller owns persisting the tokens.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	var out LoginResponse
	if err := c.postJSON(ctx, loginPath, body, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me fetches the profile of the currently authenticated user. Used by the
// silent restore path to validate a persisted token against the server.
func (c *Client) Me(ctx context.Context) (*users.User, error) {
	var out users.User
	if err := c.getJSON(ctx, mePath, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshAccess exchanges the refresh token for a new access token. This is
// an explicit operation only - the interceptor pipeline never refreshes on
// its own, a 401 always means forced logout.
func (c *Client) RefreshAccess(ctx context.Context, refresh string) (string, error) {
	body := map[string]string{"refresh": refresh}
	var out struct {
		Access string `json:"access"`
	}
	if err := c.postJSON(ctx, refreshPath, body, http.StatusOK, &out); err != nil {
		return "", err
	}
	return out.Access, nil
}

// RevokeRefresh blacklists the refresh token server-side. Success is HTTP
// 205. Local logout does not depend on this call succeeding.
func (c *Client) RevokeRefresh(ctx context.Context, refresh string) error {
	body := map[string]string{"refresh": refresh}
	return c.postJSON(ctx, revokePath, body, http.StatusResetContent, nil)
}
