package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/mohamedkhairy/market-finance/pkg/models"
)

// Config holds all configuration for the application
type Config struct {
	Environment string `validate:"required,oneof=development production test"`
	LogLevel    string `validate:"required,oneof=debug info warn error"`

	Indicator IndicatorConfig
	Feed      FeedConfig
	Metrics   MetricsConfig
}

// IndicatorConfig selects the indicators computed for every symbol
type IndicatorConfig struct {
	EMAPeriods   []int  `validate:"dive,min=1"`
	RSIPeriods   []int  `validate:"dive,min=1"`
	RSIFlatSteps string `validate:"oneof=skip feed"`
	MACDFast     int    `validate:"min=1"`
	MACDSlow     int    `validate:"min=1"`
	MACDSignal   int    `validate:"min=1"`
	SMAPeriods   []int  `validate:"dive,min=1"`
	ATRPeriods   []int  `validate:"dive,min=1"`
	VWAPMinutes  []int  `validate:"dive,min=1"`
	MaxBars      int    `validate:"min=1"`
}

// FeedConfig holds bar source configuration
type FeedConfig struct {
	Symbols  []string `validate:"dive,required"`
	Interval string   `validate:"required"`
}

// MetricsConfig holds the health/metrics server configuration
type MetricsConfig struct {
	Port int `validate:"min=1,max=65535"`
}

// Load loads configuration from environment variables
// It automatically loads .env file if it exists in the current directory
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Indicator: IndicatorConfig{
			EMAPeriods:   getEnvAsIntSlice("INDICATOR_EMA_PERIODS", []int{9, 12, 26}),
			RSIPeriods:   getEnvAsIntSlice("INDICATOR_RSI_PERIODS", []int{14}),
			RSIFlatSteps: getEnv("INDICATOR_RSI_FLAT_STEPS", "skip"),
			MACDFast:     getEnvAsInt("INDICATOR_MACD_FAST", 12),
			MACDSlow:     getEnvAsInt("INDICATOR_MACD_SLOW", 26),
			MACDSignal:   getEnvAsInt("INDICATOR_MACD_SIGNAL", 9),
			SMAPeriods:   getEnvAsIntSlice("INDICATOR_SMA_PERIODS", []int{20}),
			ATRPeriods:   getEnvAsIntSlice("INDICATOR_ATR_PERIODS", []int{14}),
			VWAPMinutes:  getEnvAsIntSlice("INDICATOR_VWAP_MINUTES", []int{15}),
			MaxBars:      getEnvAsInt("INDICATOR_MAX_BARS", 200),
		},
		Feed: FeedConfig{
			Symbols:  getEnvAsStringSlice("FEED_SYMBOLS", []string{}),
			Interval: getEnv("FEED_INTERVAL", "1m"),
		},
		Metrics: MetricsConfig{
			Port: getEnvAsInt("METRICS_PORT", 9102),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Indicator.MACDFast >= c.Indicator.MACDSlow {
		return fmt.Errorf("INDICATOR_MACD_FAST (%d) must be below INDICATOR_MACD_SLOW (%d)",
			c.Indicator.MACDFast, c.Indicator.MACDSlow)
	}
	if _, err := c.Feed.ParsedInterval(); err != nil {
		return fmt.Errorf("FEED_INTERVAL: %w", err)
	}
	return nil
}

// ParsedInterval returns the feed interval as a models.Interval.
func (f FeedConfig) ParsedInterval() (models.Interval, error) {
	return models.ParseInterval(f.Interval)
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

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Split by comma and trim spaces
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

// getEnvAsIntSlice falls back to the default when any element fails to parse.
func getEnvAsIntSlice(key string, defaultValue []int) []int {
	parts := getEnvAsStringSlice(key, nil)
	if parts == nil {
		return defaultValue
	}
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return defaultValue
		}
		result = append(result, n)
	}
	return result
}
