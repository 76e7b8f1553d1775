package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, DefaultLocation, cfg.Location)
	assert.True(t, cfg.AutoShare.Enabled)
	assert.Equal(t, "writer", cfg.AutoShare.Role)
	assert.False(t, cfg.AutoShare.SendNotificationEmail)
	assert.Equal(t, DefaultRequestsPerSecond, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, DefaultBurst, cfg.RateLimit.Burst)
	assert.Empty(t, cfg.OwnerEmail)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		EnvOwnerEmail:            " owner@example.com ",
		EnvServiceAccountKeyPath: "credentials/sa.json",
		EnvApplicationCreds:      "ignored.json",
		EnvProjectID:             "my-project",
		EnvLocation:              "europe-west1",
		EnvAutoShareEnabled:      "false",
		EnvAutoShareRole:         "reader",
		EnvAutoShareNotify:       "1",
		EnvRequestsPerSecond:     "2.5",
		EnvBurst:                 "3",
		EnvVertexModel:           "gemini-pro",
		EnvStorageBucket:         "bucket",
	}))
	require.NoError(t, err)

	assert.Equal(t, "owner@example.com", cfg.OwnerEmail)
	assert.Equal(t, "credentials/sa.json", cfg.CredentialsPath)
	assert.Equal(t, "my-project", cfg.ProjectID)
	assert.Equal(t, "europe-west1", cfg.Location)
	assert.False(t, cfg.AutoShare.Enabled)
	assert.Equal(t, "reader", cfg.AutoShare.Role)
	assert.True(t, cfg.AutoShare.SendNotificationEmail)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
	assert.Equal(t, "gemini-pro", cfg.VertexModel)
	assert.Equal(t, "bucket", cfg.StorageBucket)
}

func TestFromLookup_ApplicationCredentialsFallback(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{EnvApplicationCreds: "/keys/adc.json"}))
	require.NoError(t, err)
	assert.Equal(t, "/keys/adc.json", cfg.CredentialsPath)
}

func TestFromLookup_InvalidValues(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		EnvAutoShareEnabled:  "maybe",
		EnvRequestsPerSecond: "fast",
		EnvBurst:             "lots",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvAutoShareEnabled)
	assert.Contains(t, err.Error(), EnvRequestsPerSecond)
	assert.Contains(t, err.Error(), EnvBurst)

	// Defaults survive invalid input.
	assert.True(t, cfg.AutoShare.Enabled)
	assert.Equal(t, DefaultBurst, cfg.RateLimit.Burst)
}

func TestConfig_Validate(t *testing.T) {
	valid := Default()
	valid.OwnerEmail = "owner@example.com"

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "invalid role", mutate: func(c *Config) { c.AutoShare.Role = "admin" }, wantErr: "invalid auto-share role"},
		{name: "missing owner", mutate: func(c *Config) { c.OwnerEmail = "" }, wantErr: "OWNER_EMAIL is required"},
		{name: "malformed owner", mutate: func(c *Config) { c.OwnerEmail = "owner" }, wantErr: "invalid OWNER_EMAIL"},
		{name: "owner optional when disabled", mutate: func(c *Config) { c.OwnerEmail = ""; c.AutoShare.Enabled = false }},
		{name: "negative rps", mutate: func(c *Config) { c.RateLimit.RequestsPerSecond = -1 }, wantErr: EnvRequestsPerSecond},
		{name: "negative burst", mutate: func(c *Config) { c.RateLimit.Burst = -1 }, wantErr: EnvBurst},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range ValidRoles {
		assert.True(t, IsValidRole(role), role)
	}
	assert.False(t, IsValidRole("owner"))
	assert.False(t, IsValidRole(""))
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")))
	})

	t.Run("loads without overriding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("OWNER_EMAIL=file@example.com\nGOOGLE_CLOUD_LOCATION=asia-east1\n"), 0o600))

		t.Setenv(EnvOwnerEmail, "env@example.com")
		t.Setenv(EnvLocation, "")
		require.NoError(t, os.Unsetenv(EnvLocation))

		require.NoError(t, LoadEnvFile(path))

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "env@example.com", cfg.OwnerEmail)
		assert.Equal(t, "asia-east1", cfg.Location)
	})
}
