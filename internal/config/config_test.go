package config_test

import (
	"testing"
	"time"

	"github.com/Amund211/fetchonce/internal/config"
	"github.com/stretchr/testify/require"
)

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

var allVariablesExceptEnv = []string{
	"ITEMS_BASE_URL",
	"FETCH_CONCURRENCY",
	"FETCH_RATE_PER_SECOND",
	"FETCH_TIMEOUT",
	"DRAIN_TIMEOUT",
	"SENTRY_DSN",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"FETCHONCE_MOCK_ITEMS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, variable := range allVariablesExceptEnv {
		t.Setenv(variable, "")
	}
}

func TestGetConfig(t *testing.T) {
	t.Run("environment is missing", func(t *testing.T) {
		// FETCHONCE_ENVIRONMENT is required, so this should fail
		_, err := config.ConfigFromEnv()
		require.ErrorIs(t, err, config.ErrMissingRequiredValue)
	})

	t.Run("development defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FETCHONCE_ENVIRONMENT", "development")

		conf, err := config.ConfigFromEnv()
		require.NoError(t, err)

		require.Equal(t, "https://challenges.qluv.io/items/", conf.ItemsBaseURL())
		require.Equal(t, 5, conf.FetchConcurrency())
		require.Equal(t, 0.0, conf.FetchRatePerSecond())
		require.Equal(t, 10*time.Second, conf.FetchTimeout())
		require.Equal(t, time.Duration(0), conf.DrainTimeout())
		require.Equal(t, "", conf.SentryDSN())
		require.False(t, conf.TelemetryEnabled())
		require.False(t, conf.MockItems())
		require.True(t, conf.IsDevelopment())
		require.False(t, conf.IsProduction())
		require.False(t, conf.IsStaging())
	})

	t.Run("values are read correctly", func(t *testing.T) {
		t.Setenv("ITEMS_BASE_URL", "http://localhost:8080/items/")
		t.Setenv("FETCH_CONCURRENCY", "12")
		t.Setenv("FETCH_RATE_PER_SECOND", "2.5")
		t.Setenv("FETCH_TIMEOUT", "3s")
		t.Setenv("DRAIN_TIMEOUT", "1m")
		t.Setenv("SENTRY_DSN", "SENTRY_DSN")
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4317")
		t.Setenv("FETCHONCE_MOCK_ITEMS", "")

		for _, env := range []environment{production, staging, development} {
			t.Run(string(env), func(t *testing.T) {
				t.Setenv("FETCHONCE_ENVIRONMENT", string(env))

				conf, err := config.ConfigFromEnv()
				require.NoError(t, err)

				require.Equal(t, "http://localhost:8080/items/", conf.ItemsBaseURL())
				require.Equal(t, 12, conf.FetchConcurrency())
				require.Equal(t, 2.5, conf.FetchRatePerSecond())
				require.Equal(t, 3*time.Second, conf.FetchTimeout())
				require.Equal(t, 1*time.Minute, conf.DrainTimeout())
				require.Equal(t, "SENTRY_DSN", conf.SentryDSN())
				require.Equal(t, "http://localhost:4317", conf.OTLPEndpoint())
				require.True(t, conf.TelemetryEnabled())
				require.Equal(t, env == production, conf.IsProduction())
				require.Equal(t, env == staging, conf.IsStaging())
				require.Equal(t, env == development, conf.IsDevelopment())
			})
		}
	})

	t.Run("production and staging fail when missing sentry dsn", func(t *testing.T) {
		clearEnv(t)

		for _, env := range []environment{production, staging} {
			t.Run(string(env), func(t *testing.T) {
				t.Setenv("FETCHONCE_ENVIRONMENT", string(env))

				_, err := config.ConfigFromEnv()
				require.ErrorIs(t, err, config.ErrMissingRequiredValue)
			})
		}
	})

	t.Run("mock items only in development", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SENTRY_DSN", "placeholder_value")
		t.Setenv("FETCHONCE_MOCK_ITEMS", "true")

		t.Setenv("FETCHONCE_ENVIRONMENT", "development")
		conf, err := config.ConfigFromEnv()
		require.NoError(t, err)
		require.True(t, conf.MockItems())

		t.Setenv("FETCHONCE_ENVIRONMENT", "production")
		_, err = config.ConfigFromEnv()
		require.ErrorIs(t, err, config.ErrInvalidValue)
	})

	t.Run("invalid values", func(t *testing.T) {
		cases := []struct {
			variable string
			value    string
		}{
			{variable: "ITEMS_BASE_URL", value: "ftp://example.com/items/"},
			{variable: "ITEMS_BASE_URL", value: "not a url"},
			{variable: "ITEMS_BASE_URL", value: "https://"},
			{variable: "FETCH_CONCURRENCY", value: "0"},
			{variable: "FETCH_CONCURRENCY", value: "-3"},
			{variable: "FETCH_CONCURRENCY", value: "five"},
			{variable: "FETCH_RATE_PER_SECOND", value: "-1"},
			{variable: "FETCH_RATE_PER_SECOND", value: "fast"},
			{variable: "FETCH_TIMEOUT", value: "0s"},
			{variable: "FETCH_TIMEOUT", value: "10"},
			{variable: "DRAIN_TIMEOUT", value: "-1s"},
			{variable: "FETCHONCE_MOCK_ITEMS", value: "maybe"},
		}

		for _, c := range cases {
			t.Run(c.variable+"="+c.value, func(t *testing.T) {
				clearEnv(t)
				t.Setenv("FETCHONCE_ENVIRONMENT", "development")
				t.Setenv(c.variable, c.value)

				_, err := config.ConfigFromEnv()
				require.ErrorIs(t, err, config.ErrInvalidValue)
			})
		}
	})

	t.Run("invalid environment", func(t *testing.T) {
		for _, env := range []string{"", "invalid", "my-env"} {
			t.Run(env, func(t *testing.T) {
				t.Setenv("FETCHONCE_ENVIRONMENT", env)
				_, err := config.ConfigFromEnv()
				require.ErrorIs(t, err, config.ErrInvalidValue)
			})
		}
	})

	t.Run("with fetch concurrency", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FETCHONCE_ENVIRONMENT", "development")

		conf, err := config.ConfigFromEnv()
		require.NoError(t, err)

		updated, err := conf.WithFetchConcurrency(1)
		require.NoError(t, err)
		require.Equal(t, 1, updated.FetchConcurrency())
		require.Equal(t, 5, conf.FetchConcurrency())

		_, err = conf.WithFetchConcurrency(0)
		require.ErrorIs(t, err, config.ErrInvalidValue)
	})
}
