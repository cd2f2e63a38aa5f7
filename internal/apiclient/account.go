package apiclient

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-storefront/internal/domain/auth"
)

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, creds auth.Credentials) (*auth.UserInfo, error) {
	var u auth.UserInfo
	if err := c.do(ctx, http.MethodPost, "/api/users/login", nil, creds, &u); err != nil {
		return nil, errors.Wrap(err, "login")
	}
	return &u, nil
}

// Register creates an account and returns its session.
func (c *Client) Register(ctx context.Context, reg auth.Registration) (*auth.UserInfo, error) {
	var u auth.UserInfo
	if err := c.do(ctx, http.MethodPost, "/api/users/register", nil, reg, &u); err != nil {
		return nil, errors.Wrap(err, "register")
	}
	return &u, nil
}

// Profile returns the logged-in user's profile.
func (c *Client) Profile(ctx context.Context) (*auth.UserInfo, error) {
	var u auth.UserInfo
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, nil, &u); err != nil {
		return nil, errors.Wrap(err, "get profile")
	}
	return &u, nil
}

// UpdateProfile changes the logged-in user's name or email.
func (c *Client) UpdateProfile(ctx context.Context, upd auth.ProfileUpdate) (*auth.UserInfo, error) {
	var u auth.UserInfo
	if err := c.do(ctx, http.MethodPut, "/api/users/profile", nil, upd, &u); err != nil {
		return nil, errors.Wrap(err, "update profile")
	}
	return &u, nil
}
