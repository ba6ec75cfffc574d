package main

import (
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/the-hive-labs/hive-timebank/internal"
	"github.com/the-hive-labs/hive-timebank/internal/config"
)

func main() {
	// missing .env is fine, variables may come from the environment
	_ = godotenv.Load()

	var cfg config.App
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("parse config")
	}

	if err := config.LoadSecrets(&cfg); err != nil {
		log.Fatal().Err(err).Msg("load secrets")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	app, err := internal.NewApplication(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap application")
	}

	log.Info().Msg("application is running")

	app.Run()
}
