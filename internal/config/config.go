package config

import (
	"time"

	"auction-house/utils"

	"github.com/spf13/viper"
)

// Config holds all runtime settings
type Config struct {
	Port      string
	DBDriver  string
	DBDSN     string
	JWTSecret string
	TokenTTL  time.Duration
	GinMode   string
}

// Load reads settings from an optional .env file and the environment
func Load() *Config {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		utils.Debug("no config file found, using environment only", map[string]any{"error": err.Error()})
	}

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_DSN", "auction.sqlite")
	viper.SetDefault("JWT_SECRET", "dev-only-secret")
	viper.SetDefault("TOKEN_TTL_HOURS", 24)
	viper.SetDefault("GIN_MODE", "debug")

	return &Config{
		Port:      ":" + viper.GetString("PORT"),
		DBDriver:  viper.GetString("DB_DRIVER"),
		DBDSN:     viper.GetString("DB_DSN"),
		JWTSecret: viper.GetString("JWT_SECRET"),
		TokenTTL:  time.Duration(viper.GetInt("TOKEN_TTL_HOURS")) * time.Hour,
		GinMode:   viper.GetString("GIN_MODE"),
	}
}
