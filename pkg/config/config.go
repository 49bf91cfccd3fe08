package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Files
	Storage StorageConfig

	// Screening run behaviour (thresholds are not configuration)
	Screening ScreeningConfig

	// Redis
	Redis RedisConfig

	// External APIs
	Yahoo     YahooConfig
	Wikipedia WikipediaConfig
	Nasdaq    NasdaqConfig

	// Notification
	Mail  MailConfig
	OAuth OAuthConfig

	// Scheduler (daemon mode)
	ScheduleCron        string
	UniverseRefreshCron string // empty disables the refresh job

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled  bool
	MetricsPort     string
	MetricsTextfile string
}

// StorageConfig holds flat-file locations
type StorageConfig struct {
	TickerCachePath string
	AuditLogPath    string
	ResultsDir      string
	MaxSnapshots    int
}

// ScreeningConfig holds fetch retry and pacing parameters
type ScreeningConfig struct {
	MaxRetries      int
	InitialBackoff  time.Duration
	SymbolPause     time.Duration
	LookbackYears   int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// YahooConfig holds Yahoo Finance configuration
type YahooConfig struct {
	BaseURL           string
	RequestsPerSecond float64
	BreakerFailures   int // 0 = circuit breaker disabled
}

// WikipediaConfig holds index constituents page configuration
type WikipediaConfig struct {
	BaseURL string
}

// NasdaqConfig holds NASDAQ Trader symbol directory configuration
type NasdaqConfig struct {
	ListedURL string
}

// MailConfig holds SMTP configuration
type MailConfig struct {
	SMTPHost    string
	SMTPPort    int
	User        string
	Subject     string
	NotifyOnRun bool
}

// OAuthConfig holds Google OAuth2 credential file locations
type OAuthConfig struct {
	ClientSecretPath string
	TokenPath        string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit .env file
// that must exist and parse.
func LoadFrom(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Storage: StorageConfig{
			TickerCachePath: getEnv("TICKER_CACHE_PATH", "us_stocks.txt"),
			AuditLogPath:    getEnv("AUDIT_LOG_PATH", "all_stocks_results.txt"),
			ResultsDir:      getEnv("RESULTS_DIR", "results"),
			MaxSnapshots:    getEnvAsInt("MAX_SNAPSHOTS", 7),
		},

		Screening: ScreeningConfig{
			MaxRetries:     getEnvAsInt("FETCH_MAX_RETRIES", 3),
			InitialBackoff: getEnvAsDuration("FETCH_INITIAL_BACKOFF", "1s"),
			SymbolPause:    getEnvAsDuration("SYMBOL_PAUSE", "1s"),
			LookbackYears:  getEnvAsInt("HISTORY_LOOKBACK", 3),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Yahoo: YahooConfig{
			BaseURL:           getEnv("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
			RequestsPerSecond: getEnvAsFloat("YAHOO_REQUESTS_PER_SECOND", 2),
			BreakerFailures:   getEnvAsInt("YAHOO_BREAKER_FAILURES", 0),
		},

		Wikipedia: WikipediaConfig{
			BaseURL: getEnv("WIKIPEDIA_BASE_URL", "https://en.wikipedia.org"),
		},

		Nasdaq: NasdaqConfig{
			ListedURL: getEnv("NASDAQ_LISTED_URL", "https://www.nasdaqtrader.com/dynamic/SymDir/nasdaqlisted.txt"),
		},

		Mail: MailConfig{
			SMTPHost:    getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:    getEnvAsInt("SMTP_PORT", 587),
			User:        getEnv("MAIL_USER", ""),
			Subject:     getEnv("MAIL_SUBJECT", "Daily Walter Schloss Stock Screener Results"),
			NotifyOnRun: getEnvAsBool("NOTIFY_ON_RUN", false),
		},

		OAuth: OAuthConfig{
			ClientSecretPath: getEnv("OAUTH_CLIENT_SECRET_PATH", "client_secret.json"),
			TokenPath:        getEnv("OAUTH_TOKEN_PATH", "token.json"),
		},

		ScheduleCron:        getEnv("SCHEDULE_CRON", "0 0 18 * * MON-FRI"),
		UniverseRefreshCron: getEnv("UNIVERSE_REFRESH_CRON", ""),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		// Monitoring
		MetricsEnabled:  getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Storage.MaxSnapshots < 1 {
		return fmt.Errorf("MAX_SNAPSHOTS must be at least 1")
	}

	if c.Screening.MaxRetries < 1 {
		return fmt.Errorf("FETCH_MAX_RETRIES must be at least 1")
	}

	if c.Screening.InitialBackoff < 0 || c.Screening.SymbolPause < 0 {
		return fmt.Errorf("FETCH_INITIAL_BACKOFF and SYMBOL_PAUSE must not be negative")
	}

	if c.Screening.LookbackYears < 1 {
		return fmt.Errorf("HISTORY_LOOKBACK must be at least 1")
	}

	if c.Mail.NotifyOnRun && c.Mail.User == "" {
		return fmt.Errorf("MAIL_USER is required when NOTIFY_ON_RUN is set")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile loads explicit, or else the first .env found in the usual
// locations. Only the explicit file is required to exist.
func loadEnvFile(explicit string) error {
	if explicit != "" {
		if err := godotenv.Load(explicit); err != nil {
			return fmt.Errorf("load config file %s: %w", explicit, err)
		}
		return nil
	}

	paths := []string{".env"}

	// Also try relative to executable
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
			return nil
		}
	}
	return nil
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
