package shop

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/auth"
	"github.com/xenking/kart-storefront/internal/store"
)

func authRejected(err error) store.Action { return store.AuthRejected{Err: err} }

// Login logs in and persists the session.
func (s *Service) Login(ctx context.Context, creds auth.Credentials) (*auth.UserInfo, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	u, err := run(ctx, s, "login", store.AuthPending{},
		func(ctx context.Context) (*auth.UserInfo, error) { return s.api.Login(ctx, creds) },
		func(u *auth.UserInfo) store.Action { return store.AuthFulfilled{User: *u} },
		authRejected,
	)
	if err != nil {
		return nil, err
	}
	s.persist(ctx, *u)
	return u, nil
}

// Register creates an account, logs in as it and persists the session.
func (s *Service) Register(ctx context.Context, reg auth.Registration) (*auth.UserInfo, error) {
	if reg.Email == "" || reg.Password == "" {
		return nil, auth.ErrMissingPassword
	}
	u, err := run(ctx, s, "register", store.AuthPending{},
		func(ctx context.Context) (*auth.UserInfo, error) { return s.api.Register(ctx, reg) },
		func(u *auth.UserInfo) store.Action { return store.AuthFulfilled{User: *u} },
		authRejected,
	)
	if err != nil {
		return nil, err
	}
	s.persist(ctx, *u)
	return u, nil
}

// Logout forgets the session.
func (s *Service) Logout(ctx context.Context) {
	s.store.Dispatch(store.Logout{})
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Clear(); err != nil {
		zctx.From(ctx).Warn("Clear session", zap.Error(err))
	}
}

// Profile refreshes the logged-in user from the API, keeping the token.
func (s *Service) Profile(ctx context.Context) (*auth.UserInfo, error) {
	if _, err := s.RequireLogin(ctx); err != nil {
		return nil, err
	}
	if _, err := run(ctx, s, "profile", store.AuthPending{},
		func(ctx context.Context) (*auth.UserInfo, error) { return s.api.Profile(ctx) },
		func(u *auth.UserInfo) store.Action { return store.AuthFulfilled{User: *u, Merge: true} },
		authRejected,
	); err != nil {
		return nil, err
	}
	u := s.store.State().Auth.User
	s.persist(ctx, *u)
	return u, nil
}

// UpdateProfile changes the user's name or email.
func (s *Service) UpdateProfile(ctx context.Context, upd auth.ProfileUpdate) (*auth.UserInfo, error) {
	if _, err := s.RequireLogin(ctx); err != nil {
		return nil, err
	}
	if _, err := run(ctx, s, "update profile", store.AuthPending{},
		func(ctx context.Context) (*auth.UserInfo, error) { return s.api.UpdateProfile(ctx, upd) },
		func(u *auth.UserInfo) store.Action { return store.AuthFulfilled{User: *u, Merge: true} },
		authRejected,
	); err != nil {
		return nil, err
	}
	u := s.store.State().Auth.User
	s.persist(ctx, *u)
	return u, nil
}

// RequireLogin returns the logged-in user. An expired token logs the user
// out and returns auth.ErrSessionExpired.
func (s *Service) RequireLogin(ctx context.Context) (*auth.UserInfo, error) {
	u := s.store.State().Auth.User
	if u == nil {
		return nil, auth.ErrNotLoggedIn
	}
	if u.Expired(s.now()) {
		zctx.From(ctx).Info("Session expired", zap.String("user", u.Email))
		s.Logout(ctx)
		return nil, auth.ErrSessionExpired
	}
	return u, nil
}

// RequireAdmin is RequireLogin for admin-only actions.
func (s *Service) RequireAdmin(ctx context.Context) (*auth.UserInfo, error) {
	u, err := s.RequireLogin(ctx)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, auth.ErrForbidden
	}
	return u, nil
}

func (s *Service) persist(ctx context.Context, u auth.UserInfo) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Save(u); err != nil {
		zctx.From(ctx).Warn("Save session", zap.Error(err))
	}
}
