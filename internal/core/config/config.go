package config

import (
	redisclient "github.com/vietddude/requeue/internal/infra/redis"
	"github.com/vietddude/requeue/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Queues   []QueueConfig      `yaml:"queues"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// QueueConfig holds settings for a single consumed queue.
type QueueConfig struct {
	Name            string            `yaml:"name"             mapstructure:"name"`
	BatchSize       int               `yaml:"batch_size"       mapstructure:"batch_size"`
	Workers         int               `yaml:"workers"          mapstructure:"workers"`
	PollInterval    Duration          `yaml:"poll_interval"    mapstructure:"poll_interval"`
	MessageTimeout  Duration          `yaml:"message_timeout"  mapstructure:"message_timeout"`
	RetentionPeriod Duration          `yaml:"retention_period" mapstructure:"retention_period"` // 0 = infinite
	Handler         HandlerConfig     `yaml:"handler"          mapstructure:"handler"`
	Ack             AckStrategyConfig `yaml:"ack"              mapstructure:"ack"`
}

// HandlerConfig selects the delivery handler for a queue.
type HandlerConfig struct {
	Type    string   `yaml:"type"    mapstructure:"type"` // e.g., "webhook", "log"
	URL     string   `yaml:"url"     mapstructure:"url"`
	Timeout Duration `yaml:"timeout" mapstructure:"timeout"`
}

// AckStrategyConfig declares the acknowledgment policy for a queue.
type AckStrategyConfig struct {
	// Type is one of SKIP_ALL, RETRY_ALL, RETRY_FAILED, RETRY_TIMED_OUT,
	// RETRY_FAILED_AND_TIMED_OUT.
	Type string `yaml:"type" mapstructure:"type"`
	// Retries bounds reprocessing passes. 0 = unbounded.
	Retries int `yaml:"retries" mapstructure:"retries"`
	// FailurePercentage in (0,1] stops reprocessing once the failing
	// fraction of the original pack exceeds it. 0 = disabled.
	FailurePercentage float64 `yaml:"failure_percentage" mapstructure:"failure_percentage"`
	// PauseBetweenRetries is the delay in seconds applied before each
	// reprocess decision. 0 = disabled.
	PauseBetweenRetries int `yaml:"pause_between_retries" mapstructure:"pause_between_retries"`
}

// Recognized acknowledgment strategy types.
const (
	StrategySkipAll                = "SKIP_ALL"
	StrategyRetryAll               = "RETRY_ALL"
	StrategyRetryFailed            = "RETRY_FAILED"
	StrategyRetryTimedOut          = "RETRY_TIMED_OUT"
	StrategyRetryFailedAndTimedOut = "RETRY_FAILED_AND_TIMED_OUT"
)

// Recognized handler types.
const (
	HandlerWebhook = "webhook"
	HandlerLog     = "log"
)
