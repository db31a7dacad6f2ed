package config

import (
	"io"
	"os"
	"time"

	"github.com/bbernstein/uktides/pkg/uktides"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Environment string
	LogLevel    zerolog.Level
	HTTPTimeout time.Duration
	UKHOBaseURL string
	// LogOutput is where console logs go in local/dev. The CLI points this
	// at stderr so stdout only carries results.
	LogOutput io.Writer
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// WithUKHOBaseURL points the fetchers at another EasyTide host.
func WithUKHOBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.UKHOBaseURL = baseURL
	}
}

func WithLogOutput(w io.Writer) Option {
	return func(c *Config) {
		c.LogOutput = w
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment: "production",
		LogLevel:    zerolog.InfoLevel,
		HTTPTimeout: 10 * time.Second,
		UKHOBaseURL: uktides.DefaultBaseURL,
		LogOutput:   os.Stdout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// IsLocal reports whether console-friendly logging should be used.
func (c *Config) IsLocal() bool {
	return c.Environment == "local" || c.Environment == "development"
}

// ParseEndpoints returns the URL builder for the configured host.
func (c *Config) ParseEndpoints() (uktides.Endpoints, error) {
	return uktides.NewEndpoints(c.UKHOBaseURL)
}

// Endpoints is ParseEndpoints falling back to the public service when the
// configured base URL is unusable.
func (c *Config) Endpoints() uktides.Endpoints {
	endpoints, err := c.ParseEndpoints()
	if err != nil {
		log.Warn().Err(err).Str("base_url", c.UKHOBaseURL).Msg("Invalid UKHO base URL, using default")
		endpoints, _ = uktides.NewEndpoints(uktides.DefaultBaseURL)
	}
	return endpoints
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	if c.IsLocal() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: c.LogOutput})
		return
	}
	log.Logger = zerolog.New(c.LogOutput).
		With().
		Timestamp().
		Logger()
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv(opts ...Option) *Config {
	envOpts := []Option{
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
		WithUKHOBaseURL(getEnvOrDefault("UKHO_BASE_URL", uktides.DefaultBaseURL)),
	}
	return New(append(envOpts, opts...)...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
