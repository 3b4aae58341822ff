package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Environment string `validate:"oneof=development production test"`
	Server      ServerConfig
	Log         LogConfig
	Store       StoreConfig
	Kafka       KafkaConfig
	Dynamo      DynamoConfig
	Catalog     CatalogConfig
	Pricing     PricingConfig
	JWT         JWTConfig
	Session     SessionConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Addr            string        `validate:"required"`
	ReadTimeout     time.Duration `validate:"gt=0"`
	WriteTimeout    time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

type LogConfig struct {
	Level      string `validate:"oneof=debug info warn error"`
	Mode       string `validate:"oneof=development production"`
	FileEnable bool
	Filename   string `validate:"required_if=FileEnable true"`
	MaxSizeMB  int    `validate:"gte=0"`
	MaxBackups int    `validate:"gte=0"`
	MaxAgeDays int    `validate:"gte=0"`
}

// StoreConfig picks the event store backend. Read models follow it: the
// postgres backend projects into postgres, the others into memory.
type StoreConfig struct {
	Backend     string `validate:"oneof=memory postgres dynamo"`
	DatabaseURL string `validate:"required_if=Backend postgres"`
	Rebuild     bool
}

type KafkaConfig struct {
	Brokers []string
	Topic   string `validate:"required_with=Brokers"`
	GroupID string `validate:"required_with=Brokers"`
}

// Enabled reports whether events go through Kafka instead of the in-process
// projector.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type DynamoConfig struct {
	Region         string
	Endpoint       string
	EventsTable    string
	SnapshotsTable string
	Retention      time.Duration `validate:"gte=0"`
}

type CatalogConfig struct {
	Source       string        `validate:"oneof=static yaml postgres"`
	SeedFile     string        `validate:"required_if=Source yaml"`
	FetchDelay   time.Duration `validate:"gte=0"`
	PriceCeiling int           `validate:"gt=0"`
}

type PricingConfig struct {
	FreeShippingThreshold int     `validate:"gte=0"`
	ShippingFee           int     `validate:"gte=0"`
	TaxRate               float64 `validate:"gte=0,lte=1"`
}

func (p PricingConfig) Pricing() cart.Pricing {
	return cart.Pricing{
		FreeShippingThreshold: p.FreeShippingThreshold,
		ShippingFee:           p.ShippingFee,
		TaxRate:               decimal.NewFromFloat(p.TaxRate),
	}
}

type JWTConfig struct {
	Secret     string        `validate:"omitempty,min=32"`
	SessionTTL time.Duration `validate:"gt=0"`
	AdminTTL   time.Duration `validate:"gt=0"`
}

// RequireJWT reports an error when no signing secret is configured. Only
// the binaries that issue or check tokens need one.
func (c *Config) RequireJWT() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required", ErrInvalidConfig)
	}
	return nil
}

type SessionConfig struct {
	IdleTTL       time.Duration `validate:"gt=0"`
	SweepSchedule string        `validate:"required"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `validate:"gte=0"`
	Burst             int     `validate:"gte=0"`
}

var validate = validator.New()

// Load reads .env files (if present) into the environment without
// overriding variables that are already set, then builds and validates the
// configuration.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds the configuration from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	e := env{lookup: lookup}
	defaults := cart.DefaultPricing()

	cfg := &Config{
		Environment: e.str("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Addr:            e.str("SERVER_ADDR", ":8080"),
			ReadTimeout:     e.duration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    e.duration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: e.duration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Log: LogConfig{
			Level:      strings.ToLower(e.str("LOG_LEVEL", "info")),
			Mode:       e.str("LOG_MODE", "development"),
			FileEnable: e.bool("LOG_FILE_ENABLE", false),
			Filename:   e.str("LOG_FILENAME", ""),
			MaxSizeMB:  e.int("LOG_MAX_SIZE_MB", 64),
			MaxBackups: e.int("LOG_MAX_BACKUPS", 7),
			MaxAgeDays: e.int("LOG_MAX_AGE_DAYS", 7),
		},
		Store: StoreConfig{
			Backend:     e.str("EVENT_STORE", "memory"),
			DatabaseURL: e.str("DATABASE_URL", ""),
			Rebuild:     e.bool("REBUILD_READ_MODELS", false),
		},
		Kafka: KafkaConfig{
			Brokers: e.list("KAFKA_BROKERS"),
			Topic:   e.str("KAFKA_TOPIC", "storefront-events"),
			GroupID: e.str("KAFKA_GROUP_ID", "cart-projector"),
		},
		Dynamo: DynamoConfig{
			Region:         e.str("AWS_REGION", "us-east-1"),
			Endpoint:       e.str("DYNAMODB_ENDPOINT", ""),
			EventsTable:    e.str("DYNAMODB_EVENTS_TABLE", "storefront-events"),
			SnapshotsTable: e.str("DYNAMODB_SNAPSHOTS_TABLE", "storefront-snapshots"),
			Retention:      e.duration("DYNAMODB_RETENTION", 30*24*time.Hour),
		},
		Catalog: CatalogConfig{
			Source:       e.str("CATALOG_SOURCE", "static"),
			SeedFile:     e.str("CATALOG_SEED_FILE", ""),
			FetchDelay:   e.duration("CATALOG_FETCH_DELAY", 0),
			PriceCeiling: e.int("CATALOG_PRICE_CEILING", 200000),
		},
		Pricing: PricingConfig{
			FreeShippingThreshold: e.int("PRICING_FREE_SHIPPING_THRESHOLD", defaults.FreeShippingThreshold),
			ShippingFee:           e.int("PRICING_SHIPPING_FEE", defaults.ShippingFee),
			TaxRate:               e.float("PRICING_TAX_RATE", defaults.TaxRate.InexactFloat64()),
		},
		JWT: JWTConfig{
			Secret:     e.str("JWT_SECRET", ""),
			SessionTTL: e.duration("JWT_SESSION_TTL", 7*24*time.Hour),
			AdminTTL:   e.duration("JWT_ADMIN_TTL", time.Hour),
		},
		Session: SessionConfig{
			IdleTTL:       e.duration("SESSION_IDLE_TTL", 30*time.Minute),
			SweepSchedule: e.str("SESSION_SWEEP_SCHEDULE", "@every 5m"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: e.float("RATE_LIMIT_RPS", 20),
			Burst:             e.int("RATE_LIMIT_BURST", 40),
		},
	}

	if len(e.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(e.errs...))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Catalog.Source == "postgres" && c.Store.DatabaseURL == "" {
		return fmt.Errorf("%w: CATALOG_SOURCE=postgres needs DATABASE_URL", ErrInvalidConfig)
	}
	return nil
}

type env struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *env) raw(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *env) str(key, def string) string {
	if v, ok := e.raw(key); ok {
		return v
	}
	return def
}

func (e *env) int(key string, def int) int {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (e *env) float(key string, def float64) float64 {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func (e *env) bool(key string, def bool) bool {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

// list splits a comma separated value, dropping blanks.
func (e *env) list(key string) []string {
	v, ok := e.raw(key)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range cast.ToStringSlice(strings.Split(v, ",")) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
