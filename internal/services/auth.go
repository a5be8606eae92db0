package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/desertthunder/tmdbx/internal/models"
)

// AuthenticateURL is the page where a user approves a request token.
const AuthenticateURL = "https://www.themoviedb.org/authenticate/"

// RequestToken issues a new, unapproved request token.
func (c *Client) RequestToken(ctx context.Context) (*models.RequestTokenResponse, error) {
	return fetch[models.RequestTokenResponse](ctx, c, http.MethodGet, "/authentication/token/new", nil, nil)
}

// ValidateWithLogin approves token using the account's username and password.
func (c *Client) ValidateWithLogin(ctx context.Context, username, password, token string) (*models.RequestTokenResponse, error) {
	body := models.LoginRequest{Username: username, Password: password, RequestToken: token}
	return fetch[models.RequestTokenResponse](ctx, c, http.MethodPost, "/authentication/token/validate_with_login", nil, body)
}

// CreateSession exchanges an approved token for a session id.
func (c *Client) CreateSession(ctx context.Context, token string) (*models.SessionResponse, error) {
	body := models.SessionRequest{RequestToken: token}
	return fetch[models.SessionResponse](ctx, c, http.MethodPost, "/authentication/session/new", nil, body)
}

// DeleteSession invalidates sessionID.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	body := models.DeleteSessionRequest{SessionID: sessionID}
	return c.Delete(ctx, "/authentication/session", nil, body).Err()
}

// AccountDetails fetches the account that owns sessionID.
func (c *Client) AccountDetails(ctx context.Context, sessionID string) (*models.Account, error) {
	return fetch[models.Account](ctx, c, http.MethodGet, "/account", sessionParams(sessionID), nil)
}

// ApprovalURL returns the page that asks the user to approve token, redirecting to redirectTo afterwards when set.
func ApprovalURL(token, redirectTo string) string {
	u := AuthenticateURL + url.PathEscape(token)
	if redirectTo != "" {
		u += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	return u
}

func sessionParams(sessionID string) url.Values {
	return url.Values{"session_id": {sessionID}}
}
