package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port                    int    `env:"PORT" envDefault:"8080"`
	DatabaseURL             string `env:"DATABASE_URL,required"`
	RedisURL                string `env:"REDIS_URL,required"`
	AuthTokenSecret         string `env:"AUTH_TOKEN_SECRET,required"`
	PortalMarkerSecret      string `env:"PORTAL_MARKER_SECRET"`
	CredentialEncryptionKey string `env:"CREDENTIAL_ENCRYPTION_KEY"`
	PortalSessionTTLHours   int    `env:"PORTAL_SESSION_TTL_HOURS" envDefault:"24"`
	LogLevel                string `env:"LOG_LEVEL" envDefault:"info"`
	BaseURL                 string `env:"BASE_URL" envDefault:""`
}

func (c *Config) PortalSessionTTL() time.Duration {
	return time.Duration(c.PortalSessionTTLHours) * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if c.CredentialEncryptionKey != "" && len(c.CredentialEncryptionKey) != 64 {
		return fmt.Errorf("CREDENTIAL_ENCRYPTION_KEY must be 64 hex characters (generate with: openssl rand -hex 32)")
	}

	if isProduction {
		if err := validateSecret("AUTH_TOKEN_SECRET", c.AuthTokenSecret); err != nil {
			return err
		}
		if err := validateSecret("PORTAL_MARKER_SECRET", c.PortalMarkerSecret); err != nil {
			return err
		}
		if c.CredentialEncryptionKey == "" {
			return fmt.Errorf("CREDENTIAL_ENCRYPTION_KEY is required in production: portal passwords cannot be stored without it")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
