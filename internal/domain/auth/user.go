package auth

import (
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Guard errors returned when an action needs a session the caller lacks.
var (
	ErrNotLoggedIn     = errors.New("login required")
	ErrForbidden       = errors.New("admin role required")
	ErrSessionExpired  = errors.New("session expired")
	ErrMissingPassword = errors.New("email and password are required")
)

// RoleAdmin is the role that unlocks the admin console.
const RoleAdmin = "admin"

// UserInfo is the logged-in user as returned by login and register.
type UserInfo struct {
	ID    string `json:"_id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Role  string `json:"role" yaml:"role"`
	Token string `json:"token" yaml:"token"`
}

// UnmarshalJSON accepts the token under "token", "accessToken" or
// "data.token"; deployments of the API disagree on the key.
func (u *UserInfo) UnmarshalJSON(data []byte) error {
	var v struct {
		ID          string `json:"_id"`
		Name        string `json:"name"`
		Email       string `json:"email"`
		Role        string `json:"role"`
		Token       string `json:"token"`
		AccessToken string `json:"accessToken"`
		Data        *struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.Wrap(err, "decode user info")
	}
	*u = UserInfo{
		ID:    v.ID,
		Name:  v.Name,
		Email: v.Email,
		Role:  v.Role,
		Token: v.Token,
	}
	if u.Token == "" {
		u.Token = v.AccessToken
	}
	if u.Token == "" && v.Data != nil {
		u.Token = v.Data.Token
	}
	return nil
}

// IsAdmin reports whether the user has the admin role.
func (u *UserInfo) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Merge overlays non-empty profile fields onto u, keeping the token when the
// profile response omits it.
func (u UserInfo) Merge(p UserInfo) UserInfo {
	if p.ID != "" {
		u.ID = p.ID
	}
	if p.Name != "" {
		u.Name = p.Name
	}
	if p.Email != "" {
		u.Email = p.Email
	}
	if p.Role != "" {
		u.Role = p.Role
	}
	if p.Token != "" {
		u.Token = p.Token
	}
	return u
}

// Expired reports whether the session token carries an exp claim in the past.
// Tokens that are not JWTs, or carry no exp, are left for the API to judge.
// The signature is not verified: the client never holds the signing key.
func (u *UserInfo) Expired(now time.Time) bool {
	if u == nil || u.Token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(u.Token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks both fields are present.
func (c Credentials) Validate() error {
	if c.Email == "" || c.Password == "" {
		return ErrMissingPassword
	}
	return nil
}

// Registration is the register request body.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the body for updating the logged-in user's profile.
type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}
