package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	Library  LibraryConfig
	Schedule ScheduleConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// LibraryConfig holds the lending rules. Services receive this at
// construction time; nothing reads rule values from ambient state.
type LibraryConfig struct {
	DefaultBorrowDays int
	MaxBooksPerMember int
	FinePerDay        float64
	GracePeriodDays   int
	FineCeiling       float64
	MinExtendDays     int
	MaxExtendDays     int
}

// ScheduleConfig holds cron schedules for background jobs
type ScheduleConfig struct {
	Enabled      bool
	SweepCron    string
	ReminderCron string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		Library:  loadLibraryConfig(),
		Schedule: loadScheduleConfig(),
	}

	if err := config.Library.Validate(); err != nil {
		return nil, err
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "libralend"),
	}
}

// loadLibraryConfig loads the lending rules
func loadLibraryConfig() LibraryConfig {
	return LibraryConfig{
		DefaultBorrowDays: getEnvInt("DEFAULT_BORROW_DAYS", 14),
		MaxBooksPerMember: getEnvInt("MAX_BOOKS_PER_MEMBER", 5),
		FinePerDay:        getEnvFloat("FINE_PER_DAY", 1.00),
		GracePeriodDays:   getEnvInt("GRACE_PERIOD_DAYS", 1),
		FineCeiling:       getEnvFloat("FINE_CEILING", 50.00),
		MinExtendDays:     getEnvInt("MIN_EXTEND_DAYS", 1),
		MaxExtendDays:     getEnvInt("MAX_EXTEND_DAYS", 14),
	}
}

// Validate rejects rule combinations that make borrowing impossible
func (lc LibraryConfig) Validate() error {
	if lc.DefaultBorrowDays < 1 {
		return fmt.Errorf("DEFAULT_BORROW_DAYS must be at least 1, got %d", lc.DefaultBorrowDays)
	}
	if lc.MaxBooksPerMember < 1 {
		return fmt.Errorf("MAX_BOOKS_PER_MEMBER must be at least 1, got %d", lc.MaxBooksPerMember)
	}
	if lc.FinePerDay < 0 || lc.FineCeiling < 0 {
		return fmt.Errorf("fine rate and ceiling must not be negative")
	}
	if lc.GracePeriodDays < 0 {
		return fmt.Errorf("GRACE_PERIOD_DAYS must not be negative, got %d", lc.GracePeriodDays)
	}
	if lc.MinExtendDays < 1 || lc.MaxExtendDays < lc.MinExtendDays {
		return fmt.Errorf("extension range %d-%d is invalid", lc.MinExtendDays, lc.MaxExtendDays)
	}
	return nil
}

// loadScheduleConfig loads cron schedules for the sweep and reminders
func loadScheduleConfig() ScheduleConfig {
	enabled, _ := strconv.ParseBool(getEnv("SCHEDULING_ENABLED", "true"))

	return ScheduleConfig{
		Enabled:      enabled,
		SweepCron:    getEnv("OVERDUE_SWEEP_CRON", "0 0 * * *"),
		ReminderCron: getEnv("DUE_REMINDER_CRON", "0 18 * * *"),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
		log.Printf("Warning: invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid number for %s, using default %.2f", key, defaultValue)
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		// Default production origin
		return "https://library.libralend.io"
	}
	return origins
}
