package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Yahoo    Yahoo    `mapstructure:"yahoo"`
	Trading  Trading  `mapstructure:"trading"`
	Logger   Logger   `mapstructure:"logger"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
// An empty DSN selects the in-memory account store (practice mode).
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Yahoo holds the configuration for the Yahoo Finance quote API.
type Yahoo struct {
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// Trading holds the configuration for the paper-trading ledger.
type Trading struct {
	InitialBalance float64 `mapstructure:"initial_balance"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("yahoo.base_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("yahoo.rate_limit", 5) // requests per second
	viper.SetDefault("yahoo.rate_limit_burst", 2)
	viper.SetDefault("yahoo.timeout_seconds", 10)
	viper.SetDefault("trading.initial_balance", 1000000) // virtual starting cash
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
