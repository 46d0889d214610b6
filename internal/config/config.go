package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Query     QueryConfig
	Tracing   TracingConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
	AutoMigrate     bool
}

type QueryConfig struct {
	// MaxResults caps the result argument of the search operations.
	MaxResults int
}

type TracingConfig struct {
	Enabled       bool
	SlowThreshold time.Duration
}

type RateLimitConfig struct {
	Enabled        bool
	Prefix         string
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	UseSSL          bool
	Prefix          string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("SERVER_PORT", "8010"),
			ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnvOrDefault("DB_HOST", "localhost"),
			Port:            getEnvOrDefault("DB_PORT", "5432"),
			User:            getEnvOrDefault("DB_USER", "postgres"),
			Password:        getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:          getEnvOrDefault("DB_NAME", "imdb"),
			SSLMode:         getEnvOrDefault("DB_SSLMODE", "disable"),
			MaxOpenConns:    getIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationOrDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			QueryTimeout:    getDurationOrDefault("DB_QUERY_TIMEOUT", 10*time.Second),
			AutoMigrate:     getBoolOrDefault("DB_AUTO_MIGRATE", true),
		},
		Query: QueryConfig{
			MaxResults: getIntOrDefault("QUERY_MAX_RESULTS", 100),
		},
		Tracing: TracingConfig{
			Enabled:       getBoolOrDefault("TRACE_QUERIES", true),
			SlowThreshold: getDurationOrDefault("TRACE_SLOW_THRESHOLD", 500*time.Millisecond),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getBoolOrDefault("RATE_LIMIT_ENABLED", false),
			Prefix:         getEnvOrDefault("RATE_LIMIT_PREFIX", "imdb:rl"),
			Capacity:       getIntOrDefault("RATE_LIMIT_CAPACITY", 60),
			RefillTokens:   getIntOrDefault("RATE_LIMIT_REFILL_TOKENS", 1),
			RefillInterval: getDurationOrDefault("RATE_LIMIT_REFILL_INTERVAL", time.Second),
			TTL:            getDurationOrDefault("RATE_LIMIT_TTL", 10*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntOrDefault("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Enabled:         getBoolOrDefault("PERSISTED_QUERIES_ENABLED", false),
			Endpoint:        getEnvOrDefault("AWS_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnvOrDefault("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnvOrDefault("AWS_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnvOrDefault("AWS_BUCKET", "imdb-queries"),
			Region:          getEnvOrDefault("AWS_DEFAULT_REGION", "us-east-1"),
			UseSSL:          getBoolOrDefault("AWS_USE_SSL", false),
			Prefix:          getEnvOrDefault("PERSISTED_QUERY_PREFIX", "queries"),
		},
	}
}

// GetDSN returns PostgreSQL connection string
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC connect_timeout=10",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		c.SSLMode,
	)
}

func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Query.MaxResults < 1 {
		return fmt.Errorf("QUERY_MAX_RESULTS must be positive, got %d", c.Query.MaxResults)
	}
	if c.RateLimit.Enabled && c.RateLimit.Capacity < 1 {
		return fmt.Errorf("RATE_LIMIT_CAPACITY must be positive when rate limiting is enabled")
	}
	if c.MinIO.Enabled {
		if c.MinIO.AccessKeyID == "" {
			return fmt.Errorf("AWS_ACCESS_KEY_ID is required for persisted queries")
		}
		if c.MinIO.SecretAccessKey == "" {
			return fmt.Errorf("AWS_SECRET_ACCESS_KEY is required for persisted queries")
		}
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("AWS_ENDPOINT is required for persisted queries")
		}
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
