package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the runtime configuration of the site.
type Config struct {
	Address           string
	Version           string
	APIBaseURL        string
	FetchTimeout      time.Duration
	PgDSN             string
	AdminJWTPublicKey string
	TgToken           string
	TgChatID          int64
	PreviewTTL        time.Duration
	LogLevel          string
	Location          *time.Location
}

// Load reads an optional .env file and the environment. Every key has a default.
func Load(dotEnvPath string) (Config, error) {
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return Config{}, fmt.Errorf("config.godotenv(%s): %w", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config.os.Stat(%s): %w", dotEnvPath, err)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("ADDRESS", ":8080")
	v.SetDefault("VERSION", "0.0.1")
	v.SetDefault("API_BASE_URL", "http://localhost:3000")
	v.SetDefault("FETCH_TIMEOUT", 10*time.Second)
	v.SetDefault("PG_DSN", "")
	v.SetDefault("ADMIN_JWT_PUBLIC_KEY", "")
	v.SetDefault("TG_TOKEN", "")
	v.SetDefault("TG_CHAT_ID", int64(0))
	v.SetDefault("PREVIEW_TTL", 30*time.Minute)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOCATION", "America/Chicago")
	v.AutomaticEnv()

	loc, err := time.LoadLocation(v.GetString("LOCATION"))
	if err != nil {
		return Config{}, fmt.Errorf("config.LOCATION: %w", err)
	}
	cfg := Config{
		Address:           v.GetString("ADDRESS"),
		Version:           v.GetString("VERSION"),
		APIBaseURL:        strings.TrimSuffix(v.GetString("API_BASE_URL"), "/"),
		FetchTimeout:      v.GetDuration("FETCH_TIMEOUT"),
		PgDSN:             v.GetString("PG_DSN"),
		AdminJWTPublicKey: v.GetString("ADMIN_JWT_PUBLIC_KEY"),
		TgToken:           v.GetString("TG_TOKEN"),
		TgChatID:          v.GetInt64("TG_CHAT_ID"),
		PreviewTTL:        v.GetDuration("PREVIEW_TTL"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		Location:          loc,
	}
	if cfg.FetchTimeout <= 0 {
		return Config{}, fmt.Errorf("config.FETCH_TIMEOUT must be positive, got %s", cfg.FetchTimeout)
	}
	if cfg.PreviewTTL <= 0 {
		return Config{}, fmt.Errorf("config.PREVIEW_TTL must be positive, got %s", cfg.PreviewTTL)
	}
	return cfg, nil
}
