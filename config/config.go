package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Stores
	RedisURL  string
	AppDBPath string

	// API Server
	APIPort string
	APIHost string

	// Logging
	LogLevel string

	// TTLs
	SessionTTLHours       int
	ReportCacheTTLMinutes int

	// Worker Pool
	WorkerPoolSize int

	// Report settings from YAML
	Reports ReportsConfig `mapstructure:"reports"`

	// Mock data settings
	MockData MockDataConfig `mapstructure:"mock_data"`

	// Scheduler
	Scheduler SchedulerConfig `mapstructure:"scheduler"`

	// Retention
	Retention RetentionConfig `mapstructure:"retention"`
}

// ReportsConfig holds UI-controllable report settings
type ReportsConfig struct {
	WarmList           []string `mapstructure:"warm_list"`
	DefaultGranularity string   `mapstructure:"default_granularity"`
}

// SchedulerConfig holds scheduler settings
type SchedulerConfig struct {
	Enabled         bool `mapstructure:"enabled" json:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes" json:"interval_minutes"`
}

// RetentionConfig holds cleanup settings
type RetentionConfig struct {
	JobDays     int    `mapstructure:"job_days"`
	LogDays     int    `mapstructure:"log_days"`
	CleanupTime string `mapstructure:"cleanup_time"` // Format: "15:04"
}

// MockDataConfig holds mock data generation settings
type MockDataConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Records        int      `mapstructure:"records"`
	TimeRangeDays  int      `mapstructure:"time_range_days"`
	Channels       []string `mapstructure:"channels"`
	Couriers       []string `mapstructure:"couriers"`
	States         []string `mapstructure:"states"`
	SKUs           []string `mapstructure:"skus"`
	PaymentMethods []string `mapstructure:"payment_methods"`
}

// LoadConfig loads configuration from .env and config.yaml
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional, only warn
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	config := &Config{
		RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AppDBPath:             getEnv("APP_DB_PATH", "./data/shipstat.db"),
		APIPort:               getEnv("API_PORT", "8080"),
		APIHost:               getEnv("API_HOST", "0.0.0.0"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		SessionTTLHours:       getEnvAsInt("SESSION_TTL_HOURS", 24),
		ReportCacheTTLMinutes: getEnvAsInt("REPORT_CACHE_TTL_MINUTES", 30),
		WorkerPoolSize:        getEnvAsInt("WORKER_POOL_SIZE", 4),
	}

	if err := viper.UnmarshalKey("reports", &config.Reports); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reports config: %w", err)
	}
	if err := viper.UnmarshalKey("mock_data", &config.MockData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mock_data config: %w", err)
	}
	if err := viper.UnmarshalKey("scheduler", &config.Scheduler); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scheduler config: %w", err)
	}
	if err := viper.UnmarshalKey("retention", &config.Retention); err != nil {
		return nil, fmt.Errorf("failed to unmarshal retention config: %w", err)
	}

	if config.Retention.JobDays <= 0 {
		config.Retention.JobDays = 30
	}
	if config.Retention.LogDays <= 0 {
		config.Retention.LogDays = 90
	}

	return config, nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
