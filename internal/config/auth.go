package config

import "time"

type Auth struct {
	SigningKey string        `env:"AUTH_SIGNING_KEY" require:"true"`
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"720h"`
}
