package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ServiceAccountType is the "type" of a service account key file.
const ServiceAccountType = "service_account"

// ServiceAccountKey holds the identifying fields of a service account key file.
type ServiceAccountKey struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// ReadServiceAccountKey reads and parses the key file at path.
func ReadServiceAccountKey(path string) (*ServiceAccountKey, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read service account key: %w", err)
	}

	var key ServiceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, nil, fmt.Errorf("failed to parse service account key %s: %w", path, err)
	}
	if key.Type != ServiceAccountType {
		return nil, nil, fmt.Errorf("%s is not a service account key (type %q)", path, key.Type)
	}
	if key.ClientEmail == "" {
		return nil, nil, fmt.Errorf("%s has no client_email", path)
	}

	return &key, data, nil
}

// ClientConfig configures NewHTTPClient.
type ClientConfig struct {
	// CredentialsPath is a service account key file. Empty selects
	// Application Default Credentials.
	CredentialsPath string

	// Scopes requested for the token. Defaults to DefaultScopes.
	Scopes []string

	// RateLimit for the shared transport. A zero RequestsPerSecond disables limiting.
	RateLimit RateLimitConfig

	// Base is the underlying transport. Defaults to http.DefaultTransport.
	Base http.RoundTripper
}

// Client is an authenticated HTTP client plus what callers need to know about
// the identity behind it.
type Client struct {
	HTTP *http.Client

	// ProjectID from the key file or the default credentials, if known.
	ProjectID string

	// ClientEmail of the service account, if known.
	ClientEmail string

	Limiter *RateLimiter
}

// NewHTTPClient builds an authenticated HTTP client.
func NewHTTPClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}

	var limiter *RateLimiter
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter = NewRateLimiterWithConfig(cfg.RateLimit)
		base = NewRateLimitedTransport(base, limiter)
	}

	client := &Client{Limiter: limiter}

	var ts oauth2.TokenSource
	if cfg.CredentialsPath != "" {
		key, data, err := ReadServiceAccountKey(cfg.CredentialsPath)
		if err != nil {
			return nil, err
		}
		jwtConfig, err := google.JWTConfigFromJSON(data, scopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to build service account config: %w", err)
		}
		ts = jwtConfig.TokenSource(ctx)
		client.ProjectID = key.ProjectID
		client.ClientEmail = key.ClientEmail
	} else {
		creds, err := google.FindDefaultCredentials(ctx, scopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to find application default credentials: %w", err)
		}
		ts = creds.TokenSource
		client.ProjectID = creds.ProjectID
		if len(creds.JSON) > 0 {
			var key ServiceAccountKey
			if err := json.Unmarshal(creds.JSON, &key); err == nil {
				client.ClientEmail = key.ClientEmail
			}
		}
	}

	client.HTTP = &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, ts),
			Base:   base,
		},
	}

	return client, nil
}
