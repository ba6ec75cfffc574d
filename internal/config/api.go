package config

type API struct {
	Bind           string   `env:"API_HTTP_SERVER_BIND" envDefault:":8080"`
	AllowedOrigins []string `env:"API_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}
