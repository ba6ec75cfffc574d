package config

import (
	"fmt"

	vault "github.com/hashicorp/vault/api"
)

// LoadSecrets overrides sensitive settings from Vault when it is enabled.
// Environment values stay in place for anything the secret does not carry.
func LoadSecrets(cfg *App) error {
	if !cfg.Vault.Enabled {
		return nil
	}

	vc, err := vault.NewClient(&vault.Config{Address: cfg.Vault.Address})
	if err != nil {
		return fmt.Errorf("create vault client: %w", err)
	}
	vc.SetToken(cfg.Vault.Token)

	secret, err := vc.Logical().Read(cfg.Vault.SecretPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", cfg.Vault.SecretPath, err)
	}
	if secret == nil || secret.Data == nil {
		return nil
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		data = secret.Data
	}

	if v, ok := data["database_dsn"].(string); ok && v != "" {
		cfg.DB.DSN = v
	}
	if v, ok := data["auth_signing_key"].(string); ok && v != "" {
		cfg.Auth.SigningKey = v
	}
	if v, ok := data["ai_api_key"].(string); ok && v != "" {
		cfg.AI.APIKey = v
	}

	return nil
}
