package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Simulation portfolio count bounds
const (
	MinPortfolios = 100
	MaxPortfolios = 5000
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port      string
	Env       string // development, staging, production
	RateLimit int    // simulation requests per client per minute (0 = off)

	// Database (optional: 미설정 시 run 저장 비활성)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Simulation defaults
	Simulation SimulationConfig

	// Market data
	MarketData MarketDataConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// SimulationConfig holds simulation defaults
type SimulationConfig struct {
	Portfolios int
	Workers    int
	Seed       uint64        // 0 = 비결정적
	ResultTTL  time.Duration // recommendation cache TTL
}

// MarketDataConfig holds country risk data sources
type MarketDataConfig struct {
	CountryFile     string // optional YAML override of the built-in table
	DamodaranURL    string
	DefaultCountry  string
	RefreshSchedule string // cron expression (with seconds)
	RequestsPerSec  float64
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port:      getEnv("PORT", "8089"),
		Env:       getEnv("ENV", "development"),
		RateLimit: getEnvAsInt("API_RATE_LIMIT", 30),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Simulation
		Simulation: SimulationConfig{
			Portfolios: getEnvAsInt("SIM_PORTFOLIOS", 500),
			Workers:    getEnvAsInt("SIM_WORKERS", runtime.NumCPU()),
			Seed:       getEnvAsUint64("SIM_SEED", 0),
			ResultTTL:  getEnvAsDuration("SIM_RESULT_TTL", "1h"),
		},

		// Market data
		MarketData: MarketDataConfig{
			CountryFile:     getEnv("COUNTRY_DATA_FILE", ""),
			DamodaranURL:    getEnv("DAMODARAN_URL", "https://pages.stern.nyu.edu/~adamodar/New_Home_Page/datafile/ctryprem.html"),
			DefaultCountry:  getEnv("DEFAULT_COUNTRY", "India"),
			RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 0 6 1 * *"),
			RequestsPerSec:  getEnvAsFloat("DAMODARAN_RPS", 1),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks configuration values
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Simulation.Portfolios < MinPortfolios || c.Simulation.Portfolios > MaxPortfolios {
		return fmt.Errorf("SIM_PORTFOLIOS must be between %d and %d, got %d",
			MinPortfolios, MaxPortfolios, c.Simulation.Portfolios)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("API_RATE_LIMIT must be >= 0, got %d", c.RateLimit)
	}

	if c.Simulation.Workers < 1 {
		return fmt.Errorf("SIM_WORKERS must be >= 1, got %d", c.Simulation.Workers)
	}

	if c.MarketData.RequestsPerSec <= 0 {
		return fmt.Errorf("DAMODARAN_RPS must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

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

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
