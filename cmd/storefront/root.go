package main

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appkg "github.com/xenking/kart-storefront/internal/app"
)

// cli builds the App on first use so that commands which fail flag parsing
// never touch the config or the session.
type cli struct {
	lg *zap.Logger
	m  *app.Telemetry

	apiURL      string
	sessionFile string

	a *appkg.App
}

func (c *cli) app() (*appkg.App, error) {
	if c.a != nil {
		return c.a, nil
	}
	cfg, err := appkg.LoadConfig(func(cfg *appkg.Config) {
		if c.apiURL != "" {
			cfg.APIURL = c.apiURL
		}
		if c.sessionFile != "" {
			cfg.SessionFile = c.sessionFile
		}
	})
	if err != nil {
		return nil, err
	}
	a, err := appkg.New(c.lg, c.m, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init")
	}
	c.a = a
	return a, nil
}

func newRootCmd(lg *zap.Logger, m *app.Telemetry) *cobra.Command {
	c := &cli{lg: lg, m: m}

	root := &cobra.Command{
		Use:          "storefront",
		Short:        "Browse and shop the storefront from the terminal",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "API origin (overrides STOREFRONT_API_URL)")
	root.PersistentFlags().StringVar(&c.sessionFile, "session-file", "", "Session file (overrides STOREFRONT_SESSION_FILE)")

	root.AddCommand(
		c.productsCmd(),
		c.productCmd(),
		c.reviewCmd(),
		c.categoriesCmd(),
		c.imageCmd(),
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.profileCmd(),
		c.cartCmd(),
		c.wishlistCmd(),
		c.ordersCmd(),
		c.checkoutCmd(),
		c.adminCmd(),
		c.doctorCmd(),
	)
	return root
}
