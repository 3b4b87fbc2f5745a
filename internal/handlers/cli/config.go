package cli

import (
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces every environment variable the CLI reads,
// e.g. WALLETSYNC_REDIS_ADDR.
const envPrefix = "walletsync"

// appConfig is the environment-driven configuration for all commands.
type appConfig struct {
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	SecureLogs       bool   `envconfig:"SECURE_LOGS" default:"false"`
	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED" default:"false"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379" validate:"required"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	NodeRPCEndpoint string `envconfig:"NODE_RPC_ENDPOINT" validate:"required,url"`

	KeystorePath       string `envconfig:"KEYSTORE_PATH" validate:"required"`
	KeystorePassphrase string `envconfig:"KEYSTORE_PASSPHRASE" validate:"required"`

	ReportEndpoint string `envconfig:"REPORT_ENDPOINT" validate:"omitempty,url"`

	SystemStart   time.Time     `envconfig:"SYSTEM_START" validate:"required"`
	SlotsPerEpoch uint64        `envconfig:"SLOTS_PER_EPOCH" default:"21600"`
	SlotDuration  time.Duration `envconfig:"SLOT_DURATION" default:"20s"`

	PollInterval  time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	MaxReorgDepth int           `envconfig:"MAX_REORG_DEPTH" default:"64"`
}

// loadConfig reads the environment and validates the result.
func loadConfig() (appConfig, error) {
	var cfg appConfig
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return appConfig{}, err
	}

	if err := validator.Validate(cfg); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}
