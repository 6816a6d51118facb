package api

import (
	"context"
	"net/http"

	"github.com/victorgomez09/healthflow/internal/auth/models"
	"github.com/victorgomez09/healthflow/internal/cerr"
)

// Login posts the credentials. The stored token, if any, is still attached.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*Response[models.LoginResponse], error) {
	resp, err := doJSON[models.LoginResponse](ctx, c, http.MethodPost, "/auth/login", creds)
	if err != nil {
		return nil, err
	}
	if resp.Data.Token == "" {
		return nil, cerr.NewDecodeError("POST /auth/login", http.StatusOK, errMissing("token"))
	}
	if err := resp.Data.User.Validate(); err != nil {
		return nil, cerr.NewDecodeError("POST /auth/login", http.StatusOK, err)
	}
	return resp, nil
}

// Logout tells the server to end the session. The response carries no data.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.call(ctx, http.MethodPost, "/auth/logout", nil, true)
	return err
}

func (c *Client) CurrentUser(ctx context.Context) (*Response[models.User], error) {
	resp, err := doJSON[models.User](ctx, c, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	if err := resp.Data.Validate(); err != nil {
		return nil, cerr.NewDecodeError("GET /auth/me", http.StatusOK, err)
	}
	return resp, nil
}

// RefreshToken exchanges the current token for a new one. It does not call SetToken.
func (c *Client) RefreshToken(ctx context.Context) (*Response[models.RefreshResponse], error) {
	resp, err := doJSON[models.RefreshResponse](ctx, c, http.MethodPost, "/auth/refresh", nil)
	if err != nil {
		return nil, err
	}
	if resp.Data.Token == "" {
		return nil, cerr.NewDecodeError("POST /auth/refresh", http.StatusOK, errMissing("token"))
	}
	return resp, nil
}
