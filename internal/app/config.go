package app

import (
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"

	"github.com/xenking/kart-storefront/internal/catalog"
	"github.com/xenking/kart-storefront/internal/imageref"
)

// EnvProduction is the environment that upgrades image URLs to https.
const EnvProduction = "production"

// DefaultConfigFiles are read in order when present.
var DefaultConfigFiles = []string{"storefront.yaml", "/etc/storefront/config.yaml"}

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), a .env file, or YAML config
// files.
type Config struct {
	APIURL       string        `env:"API_URL" yaml:"api_url" usage:"Storefront API origin (STOREFRONT_API_URL, VITE_API_URL or API_URL)"`
	Environment  string        `env:"ENVIRONMENT" yaml:"environment" default:"development" usage:"Deployment environment; production serves images over https"`
	ImageBaseURL string        `env:"IMAGE_BASE_URL" yaml:"image_base_url" usage:"Base URL for relative image paths (defaults to the API origin)"`
	Placeholder  string        `env:"PLACEHOLDER" yaml:"placeholder" default:"/placeholder.png" usage:"Image shown when a reference cannot be resolved"`
	PageSize     int           `env:"PAGE_SIZE" yaml:"page_size" default:"15" usage:"Products per listing page"`
	ClientPaging bool          `env:"CLIENT_PAGING" yaml:"client_paging" default:"false" usage:"Fetch each filtered set once and page it locally"`
	SessionFile  string        `env:"SESSION_FILE" yaml:"session_file" usage:"Session file path (defaults to the user config dir)"`
	HTTP         HTTPConfig    `env:"HTTP" yaml:"http"`
	Breaker      BreakerConfig `env:"BREAKER" yaml:"breaker"`
}

// HTTPConfig controls the API client transport.
type HTTPConfig struct {
	Timeout      time.Duration `env:"TIMEOUT" yaml:"timeout" default:"30s" usage:"Bound on a whole API call including retries"`
	MaxRetries   int           `env:"MAX_RETRIES" yaml:"max_retries" default:"2" usage:"Retries after the first attempt"`
	RetryWaitMin time.Duration `env:"RETRY_WAIT_MIN" yaml:"retry_wait_min" default:"200ms" usage:"Wait before the first retry"`
	RetryWaitMax time.Duration `env:"RETRY_WAIT_MAX" yaml:"retry_wait_max" default:"5s" usage:"Cap on the retry wait"`
	RateLimit    int           `env:"RATE_LIMIT" yaml:"rate_limit" default:"0" usage:"Max calls per window; 0 disables throttling"`
	RateWindow   time.Duration `env:"RATE_WINDOW" yaml:"rate_window" default:"1s" usage:"Throttle window"`
}

// BreakerConfig controls the circuit breaker in front of the API.
type BreakerConfig struct {
	FailureRatio float64       `env:"FAILURE_RATIO" yaml:"failure_ratio" default:"0.5" usage:"Failed call ratio that trips the breaker"`
	MinRequests  uint32        `env:"MIN_REQUESTS" yaml:"min_requests" default:"5" usage:"Calls needed before the ratio is evaluated"`
	Timeout      time.Duration `env:"TIMEOUT" yaml:"timeout" default:"30s" usage:"Time the breaker stays open"`
}

// LoadConfig loads configuration from a .env file, environment variables and
// YAML config files, and applies platform-specific defaults. overrides run
// before defaults and validation, so command-line flags win over every source.
func LoadConfig(overrides ...func(*Config)) (*Config, error) {
	return loadConfig(DefaultConfigFiles, overrides...)
}

func loadConfig(files []string, overrides ...func(*Config)) (*Config, error) {
	// A missing .env file is the normal case outside development.
	_ = godotenv.Load()

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	for _, override := range overrides {
		override(&cfg)
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the API URL variables used by frontend build
// tooling and hosting platforms to the STOREFRONT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	for _, key := range []string{"VITE_API_URL", "API_URL"} {
		if c.APIURL != "" {
			break
		}
		c.APIURL = os.Getenv(key)
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	if c.ImageBaseURL == "" {
		c.ImageBaseURL = c.APIURL
	}
	if c.PageSize <= 0 {
		c.PageSize = catalog.DefaultPageSize
	}
	if c.Placeholder == "" {
		c.Placeholder = imageref.DefaultPlaceholder
	}
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("API URL is required: set STOREFRONT_API_URL, VITE_API_URL or API_URL")
	}
	if c.HTTP.MaxRetries < 0 {
		return errors.Errorf("max retries must not be negative, got %d", c.HTTP.MaxRetries)
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return errors.Errorf("breaker failure ratio must be in (0, 1], got %v", c.Breaker.FailureRatio)
	}
	return nil
}

// Production reports whether the app runs in production.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}
