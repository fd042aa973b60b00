package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is loaded once at startup and treated as immutable afterwards.
// A local .env file is honored when present; real environment variables win.
type Config struct {
	Env     string `env:"APP_ENV" env-default:"local"`
	Address string `env:"ADDRESS" env-default:":8081"`

	DatabaseDSN string `env:"DB_DSN" env-required:"true"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" env-default:"true"`

	JWTSecret string        `env:"JWT_SECRET" env-required:"true"`
	TokenTTL  time.Duration `env:"JWT_EXPIRES_IN" env-default:"8760h"` // 365 days

	AdminUsername string `env:"ADMIN_USERNAME" env-default:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" env-default:"admin123"`

	CORSOrigin string `env:"CORS_ORIGIN" env-default:"*"`

	RateWindow  time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"15m"`
	RateMax     int           `env:"RATE_LIMIT_MAX" env-default:"1000"`
	AuthRateMax int           `env:"AUTH_RATE_LIMIT_MAX" env-default:"20"`
}

func MustLoadConfig() *Config {
	cfg, err := loadConfig()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func loadConfig() (*Config, error) {
	var cfg Config
	if _, err := os.Stat(".env"); err == nil {
		if err := cleanenv.ReadConfig(".env", &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
