package api

import (
	"context"

	"main/internal/session"
)

// LoginRequest carries the credentials for both user and admin login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the login response payload.
type LoginResult struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// Login authenticates and stores the credential and identity in the session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var result LoginResult
	if err := c.post(ctx, "/api/v1/users/login", req, &result); err != nil {
		return nil, err
	}
	c.session.SetToken(result.Token)
	c.session.SetUser(&result.User)
	return &result, nil
}

// AdminLogin authenticates against the backstage entry point.
func (c *Client) AdminLogin(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var result LoginResult
	if err := c.post(ctx, "/api/v1/admin/login", req, &result); err != nil {
		return nil, err
	}
	c.session.SetToken(result.Token)
	c.session.SetUser(&result.User)
	return &result, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.post(ctx, "/api/v1/users/register", req, nil)
}

// Profile fetches the current identity.
func (c *Client) Profile(ctx context.Context) (*session.User, error) {
	var u session.User
	if err := c.get(ctx, "/api/v1/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile changes nickname, avatar or bio.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]any) error {
	return c.put(ctx, "/api/v1/users/me", fields, nil)
}
