package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "garahub"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Mirror       MirrorConfig
	Redis        RedisConfig
	Sync         SyncConfig
	Idempotency  IdempotencyConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GARAHUB_APP_ENV" default:"dev"`
	Port         string `envconfig:"GARAHUB_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GARAHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GARAHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig describes the local document store. The workshop runs on a
// single-user SQLite file by default; Postgres is supported for shops that
// host the back office centrally.
type DBConfig struct {
	Driver string `envconfig:"GARAHUB_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"GARAHUB_DB_DSN" default:"garahub.db"`

	MaxOpenConns    int           `envconfig:"GARAHUB_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"GARAHUB_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"GARAHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GARAHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d DBConfig) validate() error {
	switch d.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported db driver %q", d.Driver)
	}
	if d.DSN == "" {
		return fmt.Errorf("db dsn is required")
	}
	return nil
}

// MirrorConfig points at the optional remote relational mirror the sync
// worker pushes document snapshots to.
type MirrorConfig struct {
	Enabled bool   `envconfig:"GARAHUB_MIRROR_ENABLED" default:"false"`
	DSN     string `envconfig:"GARAHUB_MIRROR_DSN"`

	MaxOpenConns int `envconfig:"GARAHUB_MIRROR_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns int `envconfig:"GARAHUB_MIRROR_MAX_IDLE_CONNS" default:"2"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GARAHUB_REDIS_URL"`
	Address      string        `envconfig:"GARAHUB_REDIS_ADDR"`
	Password     string        `envconfig:"GARAHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"GARAHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GARAHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GARAHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GARAHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GARAHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GARAHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SyncConfig tunes the outbox drain loop in cmd/sync-worker.
type SyncConfig struct {
	BatchSize      int           `envconfig:"GARAHUB_SYNC_BATCH_SIZE" default:"50"`
	PollInterval   time.Duration `envconfig:"GARAHUB_SYNC_POLL_INTERVAL" default:"2s"`
	MaxAttempts    int           `envconfig:"GARAHUB_SYNC_MAX_ATTEMPTS" default:"10"`
	PublishTimeout time.Duration `envconfig:"GARAHUB_SYNC_PUBLISH_TIMEOUT" default:"15s"`
	MetricsPort    string        `envconfig:"GARAHUB_SYNC_METRICS_PORT" default:"9091"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"GARAHUB_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GARAHUB_AUTO_MIGRATE" default:"true"`
}
