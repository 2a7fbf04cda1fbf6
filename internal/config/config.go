package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/Amund211/fetchonce/internal/constants"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

const defaultFetchTimeout = 10 * time.Second

type Config struct {
	itemsBaseURL       string
	fetchConcurrency   int
	fetchRatePerSecond float64
	fetchTimeout       time.Duration
	drainTimeout       time.Duration
	sentryDSN          string
	otlpEndpoint       string
	mockItems          bool
	env                environment
}

func (c *Config) ItemsBaseURL() string {
	return c.itemsBaseURL
}

func (c *Config) FetchConcurrency() int {
	return c.fetchConcurrency
}

// 0 means no rate limit
func (c *Config) FetchRatePerSecond() float64 {
	return c.fetchRatePerSecond
}

func (c *Config) FetchTimeout() time.Duration {
	return c.fetchTimeout
}

// 0 means wait for outstanding requests forever
func (c *Config) DrainTimeout() time.Duration {
	return c.drainTimeout
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

func (c *Config) OTLPEndpoint() string {
	return c.otlpEndpoint
}

func (c *Config) TelemetryEnabled() bool {
	return c.otlpEndpoint != ""
}

func (c *Config) MockItems() bool {
	return c.mockItems
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a copy of the config with the fetch concurrency replaced
func (c Config) WithFetchConcurrency(concurrency int) (Config, error) {
	if concurrency <= 0 {
		return Config{}, fmt.Errorf("%w: fetch concurrency must be positive (%d)", ErrInvalidValue, concurrency)
	}
	c.fetchConcurrency = concurrency
	return c, nil
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, itemsBaseURL: %s, fetchConcurrency: %d, fetchRatePerSecond: %g, fetchTimeout: %s, drainTimeout: %s, telemetry: %t, mockItems: %t, ...}",
		string(c.env),
		c.itemsBaseURL,
		c.fetchConcurrency,
		c.fetchRatePerSecond,
		c.fetchTimeout,
		c.drainTimeout,
		c.TelemetryEnabled(),
		c.mockItems,
	)
}

func ConfigFromEnv() (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}
	invalidValue := func(key, value string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s (%s)", ErrInvalidValue, key, value)
	}

	var env environment
	rawEnv, ok := os.LookupEnv("FETCHONCE_ENVIRONMENT")
	if !ok {
		return missingKey("FETCHONCE_ENVIRONMENT")
	}
	switch rawEnv {
	case "production":
		env = production
	case "staging":
		env = staging
	case "development":
		env = development
	default:
		return invalidValue("FETCHONCE_ENVIRONMENT", rawEnv)
	}
	if string(env) == "" {
		panic("logic error: env is empty")
	}

	itemsBaseURL := os.Getenv("ITEMS_BASE_URL")
	if itemsBaseURL == "" {
		itemsBaseURL = constants.DEFAULT_ITEMS_BASE_URL
	}
	parsedURL, err := url.Parse(itemsBaseURL)
	if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
		return invalidValue("ITEMS_BASE_URL", itemsBaseURL)
	}

	fetchConcurrency := constants.DEFAULT_FETCH_CONCURRENCY
	if raw := os.Getenv("FETCH_CONCURRENCY"); raw != "" {
		fetchConcurrency, err = strconv.Atoi(raw)
		if err != nil || fetchConcurrency <= 0 {
			return invalidValue("FETCH_CONCURRENCY", raw)
		}
	}

	fetchRatePerSecond := 0.0
	if raw := os.Getenv("FETCH_RATE_PER_SECOND"); raw != "" {
		fetchRatePerSecond, err = strconv.ParseFloat(raw, 64)
		if err != nil || fetchRatePerSecond < 0 {
			return invalidValue("FETCH_RATE_PER_SECOND", raw)
		}
	}

	fetchTimeout := defaultFetchTimeout
	if raw := os.Getenv("FETCH_TIMEOUT"); raw != "" {
		fetchTimeout, err = time.ParseDuration(raw)
		if err != nil || fetchTimeout <= 0 {
			return invalidValue("FETCH_TIMEOUT", raw)
		}
	}

	var drainTimeout time.Duration
	if raw := os.Getenv("DRAIN_TIMEOUT"); raw != "" {
		drainTimeout, err = time.ParseDuration(raw)
		if err != nil || drainTimeout < 0 {
			return invalidValue("DRAIN_TIMEOUT", raw)
		}
	}

	mockItems := false
	if raw := os.Getenv("FETCHONCE_MOCK_ITEMS"); raw != "" {
		mockItems, err = strconv.ParseBool(raw)
		if err != nil {
			return invalidValue("FETCHONCE_MOCK_ITEMS", raw)
		}
		if mockItems && env != development {
			return invalidValue("FETCHONCE_MOCK_ITEMS", "only allowed in development")
		}
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	if env == production || env == staging {
		if sentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
	}

	return Config{
		itemsBaseURL:       itemsBaseURL,
		fetchConcurrency:   fetchConcurrency,
		fetchRatePerSecond: fetchRatePerSecond,
		fetchTimeout:       fetchTimeout,
		drainTimeout:       drainTimeout,
		sentryDSN:          sentryDSN,
		otlpEndpoint:       otlpEndpoint,
		mockItems:          mockItems,
		env:                env,
	}, nil
}
