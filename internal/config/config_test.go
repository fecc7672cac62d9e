package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("PortalSessionTTL converts hours to duration", func(t *testing.T) {
		cfg := &Config{PortalSessionTTLHours: 24}
		assert.Equal(t, 24*time.Hour, cfg.PortalSessionTTL())
	})
}

func TestValidate_EncryptionKeyLength(t *testing.T) {
	cfg := &Config{CredentialEncryptionKey: "tooshort"}
	require.Error(t, cfg.Validate(false))

	cfg.CredentialEncryptionKey = strings.Repeat("ab", 32)
	assert.NoError(t, cfg.Validate(false))

	cfg.CredentialEncryptionKey = ""
	assert.NoError(t, cfg.Validate(false))
}

func TestValidate_ProductionRequirements(t *testing.T) {
	strongSecret := strings.Repeat("x", 32)

	cfg := &Config{
		AuthTokenSecret:         strongSecret,
		PortalMarkerSecret:      strongSecret,
		CredentialEncryptionKey: strings.Repeat("ab", 32),
		RedisURL:                "rediss://prod:6379",
	}
	assert.NoError(t, cfg.Validate(true))

	t.Run("weak auth secret rejected", func(t *testing.T) {
		bad := *cfg
		bad.AuthTokenSecret = "secret"
		assert.Error(t, bad.Validate(true))
	})

	t.Run("short marker secret rejected", func(t *testing.T) {
		bad := *cfg
		bad.PortalMarkerSecret = "short"
		assert.Error(t, bad.Validate(true))
	})

	t.Run("missing encryption key rejected", func(t *testing.T) {
		bad := *cfg
		bad.CredentialEncryptionKey = ""
		assert.Error(t, bad.Validate(true))
	})
}
