package config

type AI struct {
	APIKey           string `env:"AI_API_KEY"`
	Model            string `env:"AI_MODEL" envDefault:"gpt-3.5-turbo"`
	MonthlyRateLimit int64  `env:"AI_MONTHLY_RATE_LIMIT" envDefault:"10"`
}
