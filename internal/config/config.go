package config

type App struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DB         DB
	Nats       Nats
	API        API
	Auth       Auth
	AI         AI
	Vault      Vault
	Prometheus Prometheus
	Health     Health
}
