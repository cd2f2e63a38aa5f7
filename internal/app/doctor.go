package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/xenking/kart-storefront/internal/domain/auth"
	"github.com/xenking/kart-storefront/pkg/health"
)

// Doctor returns the diagnostic checks for this installation. The API check
// bypasses the client's retries and breaker so it reports the raw state.
func (a *App) Doctor() *health.Checker {
	c := health.New()
	c.Add("api", 5*time.Second, health.HTTPCheck(nil, a.Client.BaseURL()+"/api/categories"))
	c.Add("session dir", time.Second, health.WritableDirCheck(filepath.Dir(a.Session.Path())))
	c.Add("session", time.Second, func(_ context.Context) error {
		u, err := a.Session.Load()
		if err != nil {
			return err
		}
		if u.Expired(time.Now()) {
			return auth.ErrSessionExpired
		}
		return nil
	})
	return c
}
