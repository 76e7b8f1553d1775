// Package config holds the explicitly passed configuration of the automation
// engine. There is no package-level instance: callers Load a Config once and
// hand it to the components that need it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvOwnerEmail            = "OWNER_EMAIL"
	EnvServiceAccountKeyPath = "SERVICE_ACCOUNT_KEY_PATH"
	EnvApplicationCreds      = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvProjectID             = "GOOGLE_CLOUD_PROJECT"
	EnvLocation              = "GOOGLE_CLOUD_LOCATION"
	EnvAutoShareEnabled      = "AUTO_SHARE_ENABLED"
	EnvAutoShareRole         = "AUTO_SHARE_ROLE"
	EnvAutoShareNotify       = "AUTO_SHARE_NOTIFY"
	EnvRequestsPerSecond     = "GOOGLE_API_RPS"
	EnvBurst                 = "GOOGLE_API_BURST"
	EnvVertexModel           = "VERTEX_MODEL"
	EnvStorageBucket         = "STORAGE_BUCKET"
)

// Defaults.
const (
	DefaultLocation          = "us-central1"
	DefaultRole              = "writer"
	DefaultRequestsPerSecond = 8.0
	DefaultBurst             = 10
	DefaultVertexModel       = "gemini-2.5-flash"
	DefaultEnvFile           = ".env"
)

// ValidRoles are the Drive permission roles a grant may use.
var ValidRoles = []string{"reader", "commenter", "writer", "fileOrganizer", "organizer"}

// AutoShare controls the owner grant issued after a resource is created.
type AutoShare struct {
	Enabled               bool
	Role                  string
	SendNotificationEmail bool
}

// RateLimit bounds the request rate of the shared Google API transport.
type RateLimit struct {
	RequestsPerSecond float64
	Burst             int
}

// Config is the engine configuration.
type Config struct {
	// OwnerEmail is the human account that receives access to created resources.
	OwnerEmail string

	// CredentialsPath points at a service account key file. Empty means
	// Application Default Credentials.
	CredentialsPath string

	ProjectID string
	Location  string

	AutoShare AutoShare
	RateLimit RateLimit

	VertexModel   string
	StorageBucket string
}

// Default returns a Config with defaults applied and nothing read from the
// environment.
func Default() Config {
	return Config{
		Location: DefaultLocation,
		AutoShare: AutoShare{
			Enabled: true,
			Role:    DefaultRole,
		},
		RateLimit: RateLimit{
			RequestsPerSecond: DefaultRequestsPerSecond,
			Burst:             DefaultBurst,
		},
		VertexModel: DefaultVertexModel,
	}
}

// LoadEnvFile loads variables from a dotenv file without overriding values
// already present in the environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from the process environment.
func Load() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from the given lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg.OwnerEmail = get(EnvOwnerEmail)
	cfg.CredentialsPath = get(EnvServiceAccountKeyPath)
	if cfg.CredentialsPath == "" {
		cfg.CredentialsPath = get(EnvApplicationCreds)
	}
	cfg.ProjectID = get(EnvProjectID)
	if v := get(EnvLocation); v != "" {
		cfg.Location = v
	}
	if v := get(EnvAutoShareRole); v != "" {
		cfg.AutoShare.Role = v
	}
	if v := get(EnvVertexModel); v != "" {
		cfg.VertexModel = v
	}
	cfg.StorageBucket = get(EnvStorageBucket)

	var errs []error
	if v := get(EnvAutoShareEnabled); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", EnvAutoShareEnabled, v, err))
		} else {
			cfg.AutoShare.Enabled = b
		}
	}
	if v := get(EnvAutoShareNotify); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", EnvAutoShareNotify, v, err))
		} else {
			cfg.AutoShare.SendNotificationEmail = b
		}
	}
	if v := get(EnvRequestsPerSecond); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", EnvRequestsPerSecond, v, err))
		} else {
			cfg.RateLimit.RequestsPerSecond = f
		}
	}
	if v := get(EnvBurst); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", EnvBurst, v, err))
		} else {
			cfg.RateLimit.Burst = n
		}
	}

	return cfg, errors.Join(errs...)
}

// Validate checks the configuration for values that would make API calls fail.
func (c Config) Validate() error {
	var errs []error

	if !IsValidRole(c.AutoShare.Role) {
		errs = append(errs, fmt.Errorf("invalid auto-share role %q, must be one of: %s", c.AutoShare.Role, strings.Join(ValidRoles, ", ")))
	}
	if c.AutoShare.Enabled {
		if c.OwnerEmail == "" {
			errs = append(errs, fmt.Errorf("%s is required when auto-share is enabled", EnvOwnerEmail))
		} else if !strings.Contains(c.OwnerEmail, "@") {
			errs = append(errs, fmt.Errorf("invalid %s %q", EnvOwnerEmail, c.OwnerEmail))
		}
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", EnvRequestsPerSecond))
	}
	if c.RateLimit.Burst < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", EnvBurst))
	}

	return errors.Join(errs...)
}

// IsValidRole reports whether role is a Drive permission role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
