package config

import "time"

type App struct {
	Port            string        `env:"APP_PORT" default:"8080"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	JWTSecret       string        `env:"JWT_SECRET,required"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" default:"168h"`
	OverdueCronSpec string        `env:"OVERDUE_CRON" default:"0 0 * * *"`
	Env             string        `env:"APP_ENV" default:"dev"`
}
