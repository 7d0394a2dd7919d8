package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort           string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL        string `env:"DATABASE_URL,required"`
	CatalogDatabaseURL string `env:"CATALOG_DATABASE_URL,required"`
	JWTSecret          string `env:"JWT_SECRET,required"`
	JWTAccessTTLHours  int    `env:"JWT_ACCESS_TTL_HOURS" envDefault:"24"`
	JWTRefreshTTLHours int    `env:"JWT_REFRESH_TTL_HOURS" envDefault:"168"`
	RedisAddr          string `env:"REDIS_ADDR"`
	RedisPassword      string `env:"REDIS_PASSWORD"`
	RedisDB            int    `env:"REDIS_DB" envDefault:"0"`
	SMTPHost           string `env:"SMTP_HOST"`
	SMTPPort           int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser           string `env:"SMTP_USER"`
	SMTPPass           string `env:"SMTP_PASS"`
	SMTPFrom           string `env:"SMTP_FROM"`
	SMTPFromName       string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS         bool   `env:"SMTP_USE_TLS" envDefault:"false"`
	AIBaseURL          string `env:"AI_BASE_URL" envDefault:"http://localhost:8000"`
	LogPath            string `env:"LOG_PATH" envDefault:"logs/"`
	Debug              bool   `env:"DEBUG" envDefault:"false"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
