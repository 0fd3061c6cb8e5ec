package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/medmind-auth/internal/flagx"
	"github.com/dmitrijs2005/medmind-auth/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so they may be written as "24h" or integer nanoseconds.
// Zero values leave the corresponding setting untouched.
type JsonConfig struct {
	EndpointAddrGRPC     string         `json:"endpoint_addr_grpc"`
	DatabaseDSN          string         `json:"database_dsn"`
	SecretKey            string         `json:"secret_key"`
	BaseURL              string         `json:"base_url"`
	SessionTTL           timex.Duration `json:"session_ttl"`
	VerificationTokenTTL timex.Duration `json:"verification_token_ttl"`
	ResetTokenTTL        timex.Duration `json:"reset_token_ttl"`
	BcryptCost           int            `json:"bcrypt_cost"`
	MinPasswordLength    int            `json:"min_password_length"`
	LogLevel             string         `json:"log_level"`
	LogFormat            string         `json:"log_format"`
	Mail                 struct {
		Driver          string `json:"driver"`
		From            string `json:"from"`
		FromName        string `json:"from_name"`
		Region          string `json:"region"`
		AccessKeyID     string `json:"access_key_id"`
		SecretAccessKey string `json:"secret_access_key"`
		BaseEndpoint    string `json:"base_endpoint"`
	} `json:"mail"`
	BootstrapAdmin struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"bootstrap_admin"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson loads the file named by -c/-config (if any) and overlays its
// non-zero values onto config. An unreadable or invalid file panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.BaseURL, c.BaseURL)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.SessionTTL.Duration > 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.VerificationTokenTTL.Duration > 0 {
		config.VerificationTokenTTL = c.VerificationTokenTTL.Duration
	}
	if c.ResetTokenTTL.Duration > 0 {
		config.ResetTokenTTL = c.ResetTokenTTL.Duration
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.MinPasswordLength > 0 {
		config.MinPasswordLength = c.MinPasswordLength
	}

	setString(&config.Mail.Driver, c.Mail.Driver)
	setString(&config.Mail.From, c.Mail.From)
	setString(&config.Mail.FromName, c.Mail.FromName)
	setString(&config.Mail.Region, c.Mail.Region)
	setString(&config.Mail.AccessKeyID, c.Mail.AccessKeyID)
	setString(&config.Mail.SecretAccessKey, c.Mail.SecretAccessKey)
	setString(&config.Mail.BaseEndpoint, c.Mail.BaseEndpoint)

	setString(&config.BootstrapAdmin.Name, c.BootstrapAdmin.Name)
	setString(&config.BootstrapAdmin.Username, c.BootstrapAdmin.Username)
	setString(&config.BootstrapAdmin.Email, c.BootstrapAdmin.Email)
	setString(&config.BootstrapAdmin.Password, c.BootstrapAdmin.Password)
}
