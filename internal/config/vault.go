package config

type Vault struct {
	Enabled    bool   `env:"VAULT_ENABLED" envDefault:"false"`
	Address    string `env:"VAULT_ADDR" envDefault:"http://127.0.0.1:8200"`
	Token      string `env:"VAULT_TOKEN"`
	SecretPath string `env:"VAULT_SECRET_PATH" envDefault:"secret/data/hive-timebank"`
}
