// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Storage       StorageConfig           `mapstructure:"storage"`
	Elasticsearch ElasticsearchConfig     `mapstructure:"elasticsearch"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Feedback      FeedbackConfig          `mapstructure:"feedback"`
	Seed          SeedConfig              `mapstructure:"seed"`
	Integrations  IntegrationConfig       `mapstructure:"integrations"`
	Tracing       TracingConfig           `mapstructure:"tracing"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig is the ops listener for health, readiness and metrics.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// StorageConfig selects where the four partitions live.
type StorageConfig struct {
	Backend   string         `mapstructure:"backend"`
	KeyPrefix string         `mapstructure:"key_prefix"`
	Redis     RedisConfig    `mapstructure:"redis"`
	Postgres  PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	Table          string `mapstructure:"table"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ElasticsearchConfig controls the optional review event index.
type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// FeedbackConfig tunes the feedback engine and public flow.
type FeedbackConfig struct {
	ReplyDelay       int    `mapstructure:"reply_delay"` // milliseconds
	UndoWindow       int    `mapstructure:"undo_window"` // milliseconds
	DefaultThreshold int    `mapstructure:"default_threshold"`
	PublicOrigin     string `mapstructure:"public_origin"`
	ResolveOnReply   bool   `mapstructure:"resolve_on_reply"`
	SummaryWindow    int    `mapstructure:"summary_window_days"`
}

// ReplyDelayDuration is ReplyDelay as a duration.
func (f FeedbackConfig) ReplyDelayDuration() time.Duration {
	return GetDuration(f.ReplyDelay)
}

// UndoWindowDuration is UndoWindow as a duration.
func (f FeedbackConfig) UndoWindowDuration() time.Duration {
	return GetDuration(f.UndoWindow)
}

// SeedConfig points at an optional YAML file of starter businesses and links.
// An empty path uses the built-in set.
type SeedConfig struct {
	Path string `mapstructure:"path"`
}

// IntegrationConfig holds settings for AWS delivery channels.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled            bool   `mapstructure:"enabled"`
			DefaultSMSSenderID string `mapstructure:"default_sms_sender_id"`
			AlertTopicARN      string `mapstructure:"alert_topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

// TracingConfig controls the OpenTelemetry tracer provider.
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
