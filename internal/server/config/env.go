package config

import "github.com/dmitrijs2005/medmind-auth/internal/flagx"

// Environment variables read by parseEnv.
const (
	EnvSecretKey   = "JWT_SECRET"
	EnvDatabaseDSN = "DATABASE_DSN"
	EnvBaseURL     = "BASE_URL"
	EnvLogLevel    = "LOG_LEVEL"
	EnvMailDriver  = "MAIL_DRIVER"
	EnvMailFrom    = "MAIL_FROM"
)

// parseEnv overlays non-empty environment values onto config.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	flagx.OverlayEnv(lookup, map[string]*string{
		EnvSecretKey:   &config.SecretKey,
		EnvDatabaseDSN: &config.DatabaseDSN,
		EnvBaseURL:     &config.BaseURL,
		EnvLogLevel:    &config.LogLevel,
		EnvMailDriver:  &config.Mail.Driver,
		EnvMailFrom:    &config.Mail.From,
	})
}
