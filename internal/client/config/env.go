package config

import (
	"os"

	"github.com/dmitrijs2005/expensekeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. When a .env
// file path is given via -e/-env (or ./.env exists), it is loaded first
// without overriding variables already present in the environment.
//
// Recognized variables:
//
//	SERVER_ADDRESS  base URL of the backend HTTP API
func parseEnv(config *Config) {
	envFile := flagx.EnvFileFlag()
	if envFile == "" {
		if _, err := os.Stat(".env"); err == nil {
			envFile = ".env"
		}
	}
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	if v, ok := os.LookupEnv("SERVER_ADDRESS"); ok {
		config.ServerEndpointAddr = v
	}
}
