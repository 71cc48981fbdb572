package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"totoforecast/pkg/errors"
)

type Config struct {
	App           AppConfig
	Features      FeaturesConfig
	Artifacts     ArtifactsConfig
	Redis         RedisConfig
	ClickHouse    ClickHouseConfig
	Model         ModelConfig
	Metrics       MetricsConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"totoforecast"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

// FeaturesConfig holds the pipeline knobs that may differ between deployments.
// Scale constants and the km-time divisor are compiled in.
type FeaturesConfig struct {
	HistoryCap int `envconfig:"FEATURES_HISTORY_CAP" default:"8"`
}

// ArtifactsConfig selects where the identity maps and imputation statistics live
type ArtifactsConfig struct {
	Backend   string `envconfig:"ARTIFACTS_BACKEND" default:"file"` // file|redis
	Dir       string `envconfig:"ARTIFACTS_DIR" default:"./artifacts"`
	KeyPrefix string `envconfig:"ARTIFACTS_KEY_PREFIX" default:"toto:snapshot"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type ClickHouseConfig struct {
	Enabled      bool          `envconfig:"CLICKHOUSE_EXPORT_ENABLED" default:"false"`
	Host         string        `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port         int           `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User         string        `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password     string        `envconfig:"CLICKHOUSE_PASSWORD"`
	Database     string        `envconfig:"CLICKHOUSE_DB" default:"toto"`
	MaxBatchSize int           `envconfig:"CLICKHOUSE_MAX_BATCH_SIZE" default:"500"`
	MaxBatchAge  time.Duration `envconfig:"CLICKHOUSE_MAX_BATCH_AGE" default:"5s"`
}

type ModelConfig struct {
	Path           string  `envconfig:"MODEL_PATH" default:"./models/top3.onnx"`
	RuntimeLibrary string  `envconfig:"ONNXRUNTIME_LIB"`
	SignalCutoff   float64 `envconfig:"MODEL_SIGNAL_CUTOFF" default:"0.5"`
}

type MetricsConfig struct {
	Addr string `envconfig:"METRICS_ADDR" default:":9102"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Validate rejects settings the pipeline cannot honor
func (c *Config) Validate() error {
	var errs errors.MultiError

	if c.Features.HistoryCap <= 0 {
		errs.Add(errors.NewValidationError("FEATURES_HISTORY_CAP", "must be positive", c.Features.HistoryCap))
	}
	switch c.Artifacts.Backend {
	case "file", "redis":
	default:
		errs.Add(errors.NewValidationError("ARTIFACTS_BACKEND", "must be file or redis", c.Artifacts.Backend))
	}
	if c.Model.SignalCutoff <= 0 || c.Model.SignalCutoff >= 1 {
		errs.Add(errors.NewValidationError("MODEL_SIGNAL_CUTOFF", "must be in (0, 1)", c.Model.SignalCutoff))
	}

	return errs.ToError()
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &cfg, nil
}
