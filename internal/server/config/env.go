package config

import (
	"os"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with environment variables. A .env file in the
// working directory is loaded first when present, so development setups can
// keep settings out of the shell profile. Unset variables leave the current
// values untouched.
//
// Recognized variables:
//
//	CREWDESK_HTTP_ADDR
//	CREWDESK_DATABASE_DSN
//	CREWDESK_REDIS_URL
//	CREWDESK_ENV
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("CREWDESK_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("CREWDESK_DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("CREWDESK_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("CREWDESK_ENV"); v != "" {
		cfg.Env = v
	}
}
