package api

import (
	"context"
	"errors"

	"carteira/internal/core"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.post(ctx, "/users/login", map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("api: login response without token")
	}
	return out.Token, nil
}

func (c *Client) Register(ctx context.Context, r core.Registration) error {
	return c.post(ctx, "/users/register", r, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.post(ctx, "/auth/forgot-password", map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.post(ctx, "/auth/reset-password", map[string]string{"token": token, "newPassword": newPassword}, nil)
}

func (c *Client) Me(ctx context.Context) (core.UserInfo, error) {
	var u core.UserInfo
	err := c.get(ctx, "/users/me", nil, &u)
	return u, err
}

func (c *Client) UpdateProfile(ctx context.Context, p core.ProfileUpdate) error {
	return c.put(ctx, "/users/me", p, nil)
}

func (c *Client) Missions(ctx context.Context) ([]core.Mission, error) {
	var out []core.Mission
	err := c.get(ctx, "/missions", nil, &out)
	return out, err
}

func (c *Client) Achievements(ctx context.Context) ([]core.Achievement, error) {
	var out []core.Achievement
	err := c.get(ctx, "/archivement/arch", nil, &out)
	return out, err
}
