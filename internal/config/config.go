package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	EventChannelBase string
	IdentitySecret   string
	IdentityTimeout  time.Duration
	StatusCacheTTL   time.Duration
	PublicRateLimit  int
	PublicRateWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RESQ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "ResQ API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("events.channel_base", "resq")
	v.SetDefault("identity.timeout", "3s")
	v.SetDefault("auth.status_cache_ttl", "30s")
	v.SetDefault("public.rate_limit", 20)
	v.SetDefault("public.rate_window", "1m")

	identityTimeout, err := time.ParseDuration(v.GetString("identity.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid identity timeout: %w", err)
	}

	statusTTL, err := time.ParseDuration(v.GetString("auth.status_cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid auth status cache ttl: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("public.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid public rate window: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		EventChannelBase: v.GetString("events.channel_base"),
		IdentitySecret:   v.GetString("identity.jwt_secret"),
		IdentityTimeout:  identityTimeout,
		StatusCacheTTL:   statusTTL,
		PublicRateLimit:  v.GetInt("public.rate_limit"),
		PublicRateWindow: rateWindow,
	}

	if cfg.IdentitySecret == "" {
		return Config{}, fmt.Errorf("identity jwt secret must be provided")
	}

	if cfg.PublicRateLimit <= 0 {
		cfg.PublicRateLimit = 20
	}

	return cfg, nil
}
