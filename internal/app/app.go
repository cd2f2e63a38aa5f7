// Package app wires the storefront components from a Config.
package app

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/admin"
	"github.com/xenking/kart-storefront/internal/apiclient"
	"github.com/xenking/kart-storefront/internal/catalog"
	"github.com/xenking/kart-storefront/internal/checkout"
	"github.com/xenking/kart-storefront/internal/imageref"
	"github.com/xenking/kart-storefront/internal/session"
	"github.com/xenking/kart-storefront/internal/shop"
	"github.com/xenking/kart-storefront/internal/store"
	"github.com/xenking/kart-storefront/pkg/roundtrip"
)

// App holds the wired components. Build it with New.
type App struct {
	Config   *Config
	Log      *zap.Logger
	Session  *session.File
	Store    *store.Store
	Client   *apiclient.Client
	Images   *imageref.Resolver
	Shop     *shop.Service
	Checkout *checkout.Service
	Admin    *admin.Service

	meterProvider metric.MeterProvider
}

// New creates all dependencies. The saved session, if any, becomes the
// initial logged-in user. m may be nil, in which case telemetry is disabled.
func New(lg *zap.Logger, m *app.Telemetry, cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	a := &App{
		Config:        cfg,
		Log:           lg,
		meterProvider: noop.NewMeterProvider(),
	}
	var tracerProvider trace.TracerProvider
	if m != nil {
		tracerProvider = m.TracerProvider()
		a.meterProvider = m.MeterProvider()
	}

	sessionPath := cfg.SessionFile
	if sessionPath == "" {
		p, err := session.DefaultPath()
		if err != nil {
			return nil, errors.Wrap(err, "session path")
		}
		sessionPath = p
	}
	a.Session = session.NewFile(sessionPath)

	user, err := a.Session.Load()
	if err != nil {
		// A corrupt session only costs a login.
		lg.Warn("Ignoring unreadable session", zap.String("path", sessionPath), zap.Error(err))
		user = nil
	}
	var initial store.State
	initial.Auth.User = user
	a.Store = store.New(store.WithState(initial), store.WithLogger(lg.Named("store")))

	breaker := roundtrip.DefaultBreakerConfig("")
	breaker.FailureRatio = cfg.Breaker.FailureRatio
	breaker.MinRequests = cfg.Breaker.MinRequests
	breaker.Timeout = cfg.Breaker.Timeout

	a.Client, err = apiclient.New(apiclient.Options{
		BaseURL: cfg.APIURL,
		Token:   func() string { return a.Shop.Token() },
		Timeout: cfg.HTTP.Timeout,
		Retry: roundtrip.RetryConfig{
			MaxRetries: cfg.HTTP.MaxRetries,
			WaitMin:    cfg.HTTP.RetryWaitMin,
			WaitMax:    cfg.HTTP.RetryWaitMax,
		},
		Breaker: breaker,
		Throttle: roundtrip.ThrottleConfig{
			Max:    cfg.HTTP.RateLimit,
			Window: cfg.HTTP.RateWindow,
		},
		Logger:         lg.Named("api"),
		TracerProvider: tracerProvider,
		MeterProvider:  a.meterProvider,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create api client")
	}

	a.Images = imageref.New(imageref.Config{
		BaseURL:     cfg.ImageBaseURL,
		Production:  cfg.Production(),
		Placeholder: cfg.Placeholder,
	})
	a.Shop = shop.NewService(a.Client, a.Store, a.Session)
	a.Checkout = checkout.NewService(a.Shop)
	a.Admin = admin.NewService(a.Client, a.Shop)

	lg.Debug("Initialized",
		zap.String("api", a.Client.BaseURL()),
		zap.String("session", sessionPath),
		zap.Bool("logged_in", user != nil),
	)
	return a, nil
}

// CatalogView creates a product listing view over the API. opts are applied
// after the configured defaults.
func (a *App) CatalogView(opts ...catalog.Option) (*catalog.View, error) {
	base := []catalog.Option{
		catalog.WithPageSize(a.Config.PageSize),
		catalog.WithLogger(a.Log.Named("catalog")),
		catalog.WithMeterProvider(a.meterProvider),
	}
	if a.Config.ClientPaging {
		base = append(base, catalog.WithClientPaging())
	}
	return catalog.NewView(a.Client, a.Images, append(base, opts...)...)
}
