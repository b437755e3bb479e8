package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Audit   AuditConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
}

// StorageConfig holds the directories for transient uploads and artifacts.
type StorageConfig struct {
	UploadDir string
	ChartDir  string
	ReportDir string
}

// AuditConfig holds pipeline defaults.
type AuditConfig struct {
	Seed          int64
	TestRatio     float64
	MinRows       int
	MaxMissing    float64
	Encoding      string
	PositiveLabel string
	Timeout       time.Duration
}

// LogConfig selects log level ("debug", "info", "warn", "error") and format
// ("text" or "json").
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables, reading a .env file
// first when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", getEnvAsInt("PORT", 8080)),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 2*time.Minute),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 32<<20)),
		},
		Storage: StorageConfig{
			UploadDir: getEnv("UPLOAD_DIR", "uploads"),
			ChartDir:  getEnv("CHART_DIR", "static/charts"),
			ReportDir: getEnv("REPORT_DIR", "reports"),
		},
		Audit: AuditConfig{
			Seed:          int64(getEnvAsInt("AUDIT_SEED", 42)),
			TestRatio:     getEnvAsFloat("AUDIT_TEST_RATIO", 0.2),
			MinRows:       getEnvAsInt("AUDIT_MIN_ROWS", 10),
			MaxMissing:    getEnvAsFloat("AUDIT_MAX_MISSING", 0.5),
			Encoding:      getEnv("AUDIT_ENCODING", "onehot"),
			PositiveLabel: getEnv("AUDIT_POSITIVE_LABEL", ""),
			Timeout:       getEnvAsDuration("AUDIT_TIMEOUT", 90*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Audit.TestRatio <= 0 || c.Audit.TestRatio >= 1 {
		return fmt.Errorf("AUDIT_TEST_RATIO must be in (0,1), got %g", c.Audit.TestRatio)
	}
	if c.Audit.MinRows < 2 {
		return fmt.Errorf("AUDIT_MIN_ROWS must be at least 2, got %d", c.Audit.MinRows)
	}
	if c.Audit.MaxMissing < 0 || c.Audit.MaxMissing > 1 {
		return fmt.Errorf("AUDIT_MAX_MISSING must be in [0,1], got %g", c.Audit.MaxMissing)
	}
	if c.Audit.Encoding != "onehot" && c.Audit.Encoding != "label" {
		return fmt.Errorf("AUDIT_ENCODING must be onehot or label, got %q", c.Audit.Encoding)
	}
	if c.Audit.Timeout < 0 {
		return fmt.Errorf("AUDIT_TIMEOUT must not be negative, got %s", c.Audit.Timeout)
	}
	return nil
}

// Addr returns the server address.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
