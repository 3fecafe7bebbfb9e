// internal/api/auth.go
package api

import (
	"context"
	"net/http"

	"vaccard/internal/common/errors"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token and stores it for all
// subsequent requests.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errors.NewInvalidInputError("missing username or password")
	}

	var out tokenResponse
	req := credentialsRequest{Username: username, Password: password}
	if err := c.transport.DoJSON(ctx, "login", http.MethodPost, "/auth/login", nil, req, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return errors.NewIntegrityViolationError("login succeeded but no token in response")
	}

	c.tokens.SetToken(out.Token)
	c.logger.Info("login succeeded", map[string]interface{}{"username": username})
	return nil
}

// Register creates an operator account. It does not log in.
func (c *Client) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errors.NewInvalidInputError("missing username or password")
	}
	req := credentialsRequest{Username: username, Password: password}
	return c.transport.DoJSON(ctx, "register", http.MethodPost, "/auth/register", nil, req, nil)
}

// Logout drops the stored token. The collaborator is stateless about
// sessions, so this is purely local.
func (c *Client) Logout(ctx context.Context) {
	c.tokens.Clear()
	c.logger.Info("logged out", nil)
}
