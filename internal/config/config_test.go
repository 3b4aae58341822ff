package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func lookupFrom(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{"JWT_SECRET": testSecret}))

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "static", cfg.Catalog.Source)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, "@every 5m", cfg.Session.SweepSchedule)
	assert.Equal(t, 30*24*time.Hour, cfg.Dynamo.Retention)

	pricing := cfg.Pricing.Pricing()
	assert.Equal(t, 50000, pricing.FreeShippingThreshold)
	assert.Equal(t, 5000, pricing.ShippingFee)
	assert.Equal(t, "0.1", pricing.TaxRate.String())
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"JWT_SECRET":          testSecret,
		"EVENT_STORE":         "postgres",
		"DATABASE_URL":        "postgres://localhost/storefront",
		"KAFKA_BROKERS":       "kafka-1:9092, kafka-2:9092,",
		"SESSION_IDLE_TTL":    "90s",
		"PRICING_TAX_RATE":    "0.08",
		"LOG_LEVEL":           "DEBUG",
		"CATALOG_FETCH_DELAY": "250ms",
		"DYNAMODB_RETENTION":  "72h",
	}))

	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 90*time.Second, cfg.Session.IdleTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Catalog.FetchDelay)
	assert.Equal(t, 72*time.Hour, cfg.Dynamo.Retention)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "0.08", cfg.Pricing.Pricing().TaxRate.String())
}

func TestFromLookup_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"short secret", map[string]string{"JWT_SECRET": "short"}},
		{"unknown backend", map[string]string{"JWT_SECRET": testSecret, "EVENT_STORE": "redis"}},
		{"postgres without url", map[string]string{"JWT_SECRET": testSecret, "EVENT_STORE": "postgres"}},
		{"yaml without file", map[string]string{"JWT_SECRET": testSecret, "CATALOG_SOURCE": "yaml"}},
		{"postgres catalog without url", map[string]string{"JWT_SECRET": testSecret, "CATALOG_SOURCE": "postgres"}},
		{"bad duration", map[string]string{"JWT_SECRET": testSecret, "SESSION_IDLE_TTL": "soon"}},
		{"bad int", map[string]string{"JWT_SECRET": testSecret, "PRICING_SHIPPING_FEE": "five"}},
		{"tax above one", map[string]string{"JWT_SECRET": testSecret, "PRICING_TAX_RATE": "1.5"}},
		{"log file without name", map[string]string{"JWT_SECRET": testSecret, "LOG_FILE_ENABLE": "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(tt.vars))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestRequireJWT(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{}))
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.RequireJWT(), ErrInvalidConfig)

	cfg, err = FromLookup(lookupFrom(map[string]string{"JWT_SECRET": testSecret}))
	require.NoError(t, err)
	assert.NoError(t, cfg.RequireJWT())
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET="+testSecret+"\nSERVER_ADDR=:9000\nKAFKA_TOPIC=from-file\n"), 0o600))
	t.Setenv("KAFKA_TOPIC", "from-env")
	t.Cleanup(func() {
		_ = os.Unsetenv("JWT_SECRET")
		_ = os.Unsetenv("SERVER_ADDR")
	})

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "from-env", cfg.Kafka.Topic)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))

	assert.NoError(t, err)
}
