// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// expands ${VAR} placeholders and applies defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working
// directory, so tests in nested packages pick up the repo root file.
func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env", "../../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets that are commonly injected without the
// nested env key naming.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Storage.Postgres.User == "" {
		cfg.Storage.Postgres.User = os.Getenv("DB_USER")
	}
	if cfg.Storage.Postgres.Password == "" {
		cfg.Storage.Postgres.Password = os.Getenv("DB_PASSWORD")
	}
	if cfg.Storage.Redis.Password == "" {
		cfg.Storage.Redis.Password = os.Getenv("REDIS_PASSWORD")
	}
	if cfg.Integrations.AWS.Region == "" {
		cfg.Integrations.AWS.Region = os.Getenv("AWS_REGION")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "reviewgate"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendMemory
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "rf_"
	}
	if cfg.Storage.Postgres.Port == 0 {
		cfg.Storage.Postgres.Port = 5432
	}
	if cfg.Storage.Postgres.MaxConnections == 0 {
		cfg.Storage.Postgres.MaxConnections = 10
	}
	if cfg.Storage.Postgres.MaxIdle == 0 {
		cfg.Storage.Postgres.MaxIdle = 2
	}
	if cfg.Storage.Postgres.SSLMode == "" {
		cfg.Storage.Postgres.SSLMode = "disable"
	}
	if cfg.Storage.Postgres.Table == "" {
		cfg.Storage.Postgres.Table = "kv_partitions"
	}

	if cfg.Elasticsearch.Index == "" {
		cfg.Elasticsearch.Index = "review-events"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Feedback.ReplyDelay == 0 {
		cfg.Feedback.ReplyDelay = 250
	}
	if cfg.Feedback.UndoWindow == 0 {
		cfg.Feedback.UndoWindow = 5000
	}
	if cfg.Feedback.DefaultThreshold == 0 {
		cfg.Feedback.DefaultThreshold = 4
	}
	if cfg.Feedback.SummaryWindow == 0 {
		cfg.Feedback.SummaryWindow = 30
	}
	if cfg.Feedback.PublicOrigin == "" {
		cfg.Feedback.PublicOrigin = "http://localhost:3000"
	}

	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = 1
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Storage.Backend {
	case BackendMemory:
	case BackendRedis:
		if cfg.Storage.Redis.Address == "" {
			return fmt.Errorf("storage.redis.address is required for the redis backend")
		}
	case BackendPostgres:
		if cfg.Storage.Postgres.Host == "" {
			return fmt.Errorf("storage.postgres.host is required for the postgres backend")
		}
		if cfg.Storage.Postgres.Database == "" {
			return fmt.Errorf("storage.postgres.database is required for the postgres backend")
		}
		if cfg.Storage.Postgres.User == "" {
			return fmt.Errorf("storage.postgres.user is required for the postgres backend")
		}
	default:
		return fmt.Errorf("storage.backend %q is not one of memory, redis, postgres", cfg.Storage.Backend)
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	if cfg.Elasticsearch.Enabled && len(cfg.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("elasticsearch.addresses is required when elasticsearch is enabled")
	}

	if cfg.Feedback.DefaultThreshold < 1 || cfg.Feedback.DefaultThreshold > 5 {
		return fmt.Errorf("feedback.default_threshold must be between 1 and 5")
	}

	if cfg.Integrations.AWS.SES.Enabled && cfg.Integrations.AWS.SES.FromEmail == "" {
		return fmt.Errorf("integrations.aws.ses.from_email is required when ses is enabled")
	}

	if cfg.Tracing.Enabled && cfg.Tracing.JaegerEndpoint == "" {
		return fmt.Errorf("tracing.jaeger_endpoint is required when tracing is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
