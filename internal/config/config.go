package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevFallbackEncryptionKey is a fixed, non-production key used only
// when ENVIRONMENT=development and no key is configured. Validate
// refuses to start with this key anywhere else.
const DevFallbackEncryptionKey = "6465762d6f6e6c792d6b65792d646f2d6e6f742d7573652d696e2d70726f6421"

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Staging (pre-auth reservation) configuration
	Staging StagingConfig

	// Availability engine configuration
	Availability AvailabilityConfig

	// Discount configuration
	Discount DiscountConfig

	// JWT configuration (operator endpoints)
	JWT JWTConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// StagingConfig holds staging-related configuration
type StagingConfig struct {
	EncryptionKey   string        // hex or base64 encoded 32-byte key (SECRET)
	TTL             time.Duration // lifetime of a staged booking
	LoginURL        string        // login flow base URL for resume links
	CleanupInterval time.Duration // background sweeper interval
}

// AvailabilityConfig holds slot-generation configuration
type AvailabilityConfig struct {
	OperatingStart  string // "06:00"
	OperatingEnd    string // "24:00"
	SlotGranularity time.Duration
	GracePeriod     time.Duration
}

// DiscountConfig holds discount calculation configuration
type DiscountConfig struct {
	BlockMinutes   int   // minimum block size that counts toward a discount
	PerBlockAmount int64 // flat amount credited per whole block
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// RateLimitConfig holds staging-create rate limiting configuration
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Staging: StagingConfig{
			EncryptionKey:   getEnv("STAGING_ENCRYPTION_KEY", ""),
			TTL:             time.Duration(getEnvAsInt("STAGING_TTL_MINUTES", 30)) * time.Minute,
			LoginURL:        getEnv("LOGIN_URL", "/login"),
			CleanupInterval: time.Duration(getEnvAsInt("STAGING_CLEANUP_INTERVAL_MINUTES", 5)) * time.Minute,
		},
		Availability: AvailabilityConfig{
			OperatingStart:  getEnv("OPERATING_HOURS_START", "06:00"),
			OperatingEnd:    getEnv("OPERATING_HOURS_END", "24:00"),
			SlotGranularity: time.Duration(getEnvAsInt("SLOT_GRANULARITY_MINUTES", 30)) * time.Minute,
			GracePeriod:     time.Duration(getEnvAsInt("GRACE_PERIOD_MINUTES", 10)) * time.Minute,
		},
		Discount: DiscountConfig{
			BlockMinutes:   getEnvAsInt("DISCOUNT_BLOCK_MINUTES", 30),
			PerBlockAmount: int64(getEnvAsInt("DISCOUNT_PER_BLOCK_AMOUNT", 11000)),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
			RefreshTokenExpiry: time.Duration(getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY", 604800)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 10),
			Window:      time.Duration(getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 600)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	// Apply the development-only encryption key fallback before validation
	if config.Staging.EncryptionKey == "" && config.Server.Environment == "development" {
		log.Println("WARNING: STAGING_ENCRYPTION_KEY not set, using DEV-ONLY fallback key")
		config.Staging.EncryptionKey = DevFallbackEncryptionKey
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Staging.EncryptionKey == "" {
		return fmt.Errorf("STAGING_ENCRYPTION_KEY is required outside development")
	}

	// The fallback key must never leave local development
	if c.Staging.EncryptionKey == DevFallbackEncryptionKey && c.Server.Environment != "development" {
		return fmt.Errorf("dev fallback encryption key is not allowed in %s environment", c.Server.Environment)
	}

	if c.Staging.TTL <= 0 {
		return fmt.Errorf("STAGING_TTL_MINUTES must be positive")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	if c.Availability.SlotGranularity <= 0 {
		return fmt.Errorf("SLOT_GRANULARITY_MINUTES must be positive")
	}

	if c.Discount.BlockMinutes <= 0 {
		return fmt.Errorf("DISCOUNT_BLOCK_MINUTES must be positive")
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
