package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the services
type Config struct {
	Environment string
	LogLevel    string

	Redis  RedisConfig
	API    APIConfig
	Stream StreamConfig
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// APIConfig holds the calculation API configuration
type APIConfig struct {
	Port            int
	HealthCheckPort int
	RateLimitRPS    int
	MaxRequestBars  int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration

	// WebSocket streaming
	WSPingInterval  time.Duration
	WSWriteTimeout  time.Duration
	WSMaxConnection int
}

// StreamConfig holds the streaming worker configuration
type StreamConfig struct {
	HealthCheckPort int
	BarStream       string
	ResultStream    string
	ConsumerGroup   string
	ConsumerName    string
	BatchSize       int
	BatchTimeout    time.Duration
	MaxBars         int
	Indicators      []string
}

// Load loads configuration from environment variables
// It automatically loads .env file if it exists in the current directory or parent directories
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		API: APIConfig{
			Port:            getEnvAsInt("API_PORT", 8080),
			HealthCheckPort: getEnvAsInt("API_HEALTH_PORT", 8081),
			RateLimitRPS:    getEnvAsInt("API_RATE_LIMIT_RPS", 100),
			MaxRequestBars:  getEnvAsInt("API_MAX_REQUEST_BARS", 10000),
			ReadTimeout:     getEnvAsDuration("API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("API_WRITE_TIMEOUT", 30*time.Second),
			WSPingInterval:  getEnvAsDuration("API_WS_PING_INTERVAL", 30*time.Second),
			WSWriteTimeout:  getEnvAsDuration("API_WS_WRITE_TIMEOUT", 10*time.Second),
			WSMaxConnection: getEnvAsInt("API_WS_MAX_CONNECTIONS", 1000),
		},
		Stream: StreamConfig{
			HealthCheckPort: getEnvAsInt("STREAM_HEALTH_PORT", 8083),
			BarStream:       getEnv("STREAM_BAR_STREAM", "bars.finalized"),
			ResultStream:    getEnv("STREAM_RESULT_STREAM", "indicators.results"),
			ConsumerGroup:   getEnv("STREAM_CONSUMER_GROUP", "ta-engine"),
			ConsumerName:    getEnv("STREAM_CONSUMER_NAME", fmt.Sprintf("ta-worker-%d", os.Getpid())),
			BatchSize:       getEnvAsInt("STREAM_BATCH_SIZE", 100),
			BatchTimeout:    getEnvAsDuration("STREAM_BATCH_TIMEOUT", 100*time.Millisecond),
			MaxBars:         getEnvAsInt("STREAM_MAX_BARS", 200),
			Indicators:      getEnvAsStringSlice("STREAM_INDICATORS", []string{}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.API.Port == c.API.HealthCheckPort {
		return fmt.Errorf("API_PORT and API_HEALTH_PORT must differ")
	}
	if c.Stream.BarStream == "" || c.Stream.ResultStream == "" {
		return fmt.Errorf("STREAM_BAR_STREAM and STREAM_RESULT_STREAM are required")
	}
	if c.Stream.MaxBars < 1 {
		return fmt.Errorf("STREAM_MAX_BARS must be positive")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
