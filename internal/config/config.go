package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// State backends
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the bot
type Config struct {
	// Kalshi API
	KalshiAPIKey string
	KalshiAPIURL string
	HTTPTimeout  time.Duration

	// Strategy
	MarketSuffix    string
	MinProbability  decimal.Decimal // e.g., 0.94 = 94% implied probability
	InitialBankroll decimal.Decimal

	// Mode
	DryRun bool
	Debug  bool

	// Notifications
	DiscordWebhookURL string
	TelegramToken     string
	TelegramChatID    int64

	// State
	DataDir      string
	StateBackend string
	DatabasePath string // sqlite path or postgres DSN
	ChartPath    string
	MetricsPath  string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	dataDir := getEnv("DATA_DIR", "data")

	httpTimeout, err := getEnvDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	minProb, err := getEnvDecimal("MIN_PROBABILITY", decimal.RequireFromString("0.94"))
	if err != nil {
		return nil, err
	}
	bankroll, err := getEnvDecimal("INITIAL_BANKROLL", decimal.NewFromInt(125))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		// Kalshi API
		KalshiAPIKey: os.Getenv("KALSHI_API_KEY"),
		KalshiAPIURL: getEnv("KALSHI_API_URL", "https://demo.kalshi.com/trade-api/v2"),
		HTTPTimeout:  httpTimeout,

		// Strategy
		MarketSuffix:    getEnv("MARKET_SUFFIX", "INX"),
		MinProbability:  minProb,
		InitialBankroll: bankroll,

		// Mode
		DryRun: getEnvBool("DRY_RUN", true),
		Debug:  getEnvBool("DEBUG", false),

		// Notifications
		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		TelegramToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),

		// State
		DataDir:      dataDir,
		StateBackend: getEnv("STATE_BACKEND", BackendFile),
		DatabasePath: getEnv("DATABASE_PATH", filepath.Join(dataDir, "kalshibot.db")),
		ChartPath:    getEnv("CHART_PATH", filepath.Join(dataDir, "bankroll_graph.png")),
		MetricsPath:  os.Getenv("METRICS_PATH"),
	}

	// Parse chat ID
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks ranges and required fields
func (c *Config) Validate() error {
	one := decimal.NewFromInt(1)
	if !c.MinProbability.IsPositive() || c.MinProbability.GreaterThan(one) {
		return fmt.Errorf("MIN_PROBABILITY must be in (0,1], got %s", c.MinProbability)
	}
	if c.InitialBankroll.IsNegative() {
		return fmt.Errorf("INITIAL_BANKROLL must not be negative, got %s", c.InitialBankroll)
	}
	switch c.StateBackend {
	case BackendFile, BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("unknown STATE_BACKEND %q", c.StateBackend)
	}
	if !c.DryRun && c.KalshiAPIKey == "" {
		return fmt.Errorf("KALSHI_API_KEY is required when DRY_RUN=false")
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required with TELEGRAM_BOT_TOKEN")
	}
	return nil
}

// Mode returns "PAPER" or "LIVE" for logs
func (c *Config) Mode() string {
	if c.DryRun {
		return "PAPER"
	}
	return "LIVE"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

// getEnvDecimal returns the default only when key is unset; a malformed value
// is an error.
func getEnvDecimal(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

// LoadEnvFile loads .env style files into the environment without overriding
// variables that are already set. With no paths it reads ./.env.
func LoadEnvFile(paths ...string) error {
	return godotenv.Load(paths...)
}
