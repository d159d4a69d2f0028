// Package config loads the panel's runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix namespaces every environment variable read by Load.
const Prefix = "PANEL"

// Config captures all runtime configuration.
type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	BasePath    string `envconfig:"BASE_PATH" default:"/"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	BackendURL       string        `envconfig:"BACKEND_URL" required:"true"`
	BackendPublicURL string        `envconfig:"BACKEND_PUBLIC_URL"`
	BackendTimeout   time.Duration `envconfig:"BACKEND_TIMEOUT" default:"15s"`
	BackendRPS       float64       `envconfig:"BACKEND_RPS" default:"20"`
	BackendBurst     int           `envconfig:"BACKEND_BURST" default:"40"`

	SessionHashKey  string `envconfig:"SESSION_HASH_KEY" required:"true"`
	SessionBlockKey string `envconfig:"SESSION_BLOCK_KEY"`
	CookieSecure    bool   `envconfig:"COOKIE_SECURE" default:"false"`

	RedisAddr    string        `envconfig:"REDIS_ADDR"`
	ReferenceTTL time.Duration `envconfig:"REFERENCE_TTL" default:"6h"`

	DefaultLocale   string `envconfig:"DEFAULT_LOCALE" default:"fa"`
	CourierProvider string `envconfig:"COURIER_PROVIDER" default:"postex"`
	CountryCode     string `envconfig:"COUNTRY_CODE" default:"ir"`
	LoginRate       int    `envconfig:"LOGIN_RATE" default:"10"`
}

// ValidationError is returned when fields are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile string
}

// WithEnvFile loads a dotenv file before reading the environment. An empty
// path disables dotenv loading.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// Load reads PANEL_* variables. CONFIG_FILE, when set, names the dotenv file;
// otherwise .env is tried. Existing environment variables are never overridden.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{envFile: ".env"}
	if file := os.Getenv("CONFIG_FILE"); file != "" {
		options.envFile = file
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.envFile != "" {
		if err := godotenv.Load(options.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", options.envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.BackendURL = strings.TrimRight(strings.TrimSpace(c.BackendURL), "/")
	c.BackendPublicURL = strings.TrimRight(strings.TrimSpace(c.BackendPublicURL), "/")
	if c.BackendPublicURL == "" {
		c.BackendPublicURL = c.BackendURL
	}
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.CountryCode = strings.ToLower(strings.TrimSpace(c.CountryCode))
	c.DefaultLocale = strings.ToLower(strings.TrimSpace(c.DefaultLocale))
}

// Validate reports every missing or invalid field at once.
func (c Config) Validate() error {
	var invalid []string

	if strings.TrimSpace(c.HTTPAddr) == "" {
		invalid = append(invalid, "HTTPAddr")
	}
	if u, err := url.Parse(c.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
		invalid = append(invalid, "BackendURL")
	}
	if u, err := url.Parse(c.BackendPublicURL); err != nil || u.Scheme == "" || u.Host == "" {
		invalid = append(invalid, "BackendPublicURL")
	}
	if c.BackendTimeout <= 0 {
		invalid = append(invalid, "BackendTimeout")
	}
	if c.BackendRPS <= 0 {
		invalid = append(invalid, "BackendRPS")
	}
	if c.BackendBurst <= 0 {
		invalid = append(invalid, "BackendBurst")
	}
	if n := len(c.SessionHashKey); n < 32 {
		invalid = append(invalid, "SessionHashKey")
	}
	if n := len(c.SessionBlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		invalid = append(invalid, "SessionBlockKey")
	}
	if c.ReferenceTTL <= 0 {
		invalid = append(invalid, "ReferenceTTL")
	}
	if c.DefaultLocale != "fa" && c.DefaultLocale != "en" {
		invalid = append(invalid, "DefaultLocale")
	}
	if strings.TrimSpace(c.CourierProvider) == "" {
		invalid = append(invalid, "CourierProvider")
	}
	if c.CountryCode == "" {
		invalid = append(invalid, "CountryCode")
	}
	if c.LoginRate <= 0 {
		invalid = append(invalid, "LoginRate")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

// IsProduction reports whether the panel runs in production.
func (c Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
