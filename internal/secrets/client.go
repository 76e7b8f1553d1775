// Package secrets reads and writes Secret Manager secrets.
package secrets

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	secretmanager "google.golang.org/api/secretmanager/v1"
)

// LatestVersion selects the newest enabled version of a secret.
const LatestVersion = "latest"

// Client is a Secret Manager client bound to a project.
type Client struct {
	service   *secretmanager.Service
	projectID string
}

// NewClient creates a Secret Manager client for projectID.
func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	srv, err := secretmanager.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create secret manager service: %w", err)
	}
	return &Client{service: srv, projectID: projectID}, nil
}

// SecretName returns the full resource name of a secret.
func (c *Client) SecretName(secret string) string {
	if strings.HasPrefix(secret, "projects/") {
		return secret
	}
	return fmt.Sprintf("projects/%s/secrets/%s", c.projectID, secret)
}

// AccessSecret returns the payload of a secret version. An empty version
// means LatestVersion.
func (c *Client) AccessSecret(ctx context.Context, secret, version string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("secret is required")
	}
	if version == "" {
		version = LatestVersion
	}

	name := c.SecretName(secret) + "/versions/" + version
	resp, err := c.service.Projects.Secrets.Versions.Access(name).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", name, err)
	}
	if resp.Payload == nil {
		return nil, fmt.Errorf("secret version %s has no payload", name)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Payload.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload of %s: %w", name, err)
	}
	return data, nil
}

// CreateSecret creates an empty secret with automatic replication.
func (c *Client) CreateSecret(ctx context.Context, secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret is required")
	}
	s, err := c.service.Projects.Secrets.Create("projects/"+c.projectID, &secretmanager.Secret{
		Replication: &secretmanager.Replication{Automatic: &secretmanager.Automatic{}},
	}).SecretId(secret).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create secret %s: %w", secret, err)
	}
	return s.Name, nil
}

// AddVersion stores data as a new version of secret and returns the
// version's resource name.
func (c *Client) AddVersion(ctx context.Context, secret string, data []byte) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret is required")
	}
	v, err := c.service.Projects.Secrets.AddVersion(c.SecretName(secret), &secretmanager.AddSecretVersionRequest{
		Payload: &secretmanager.SecretPayload{Data: base64.StdEncoding.EncodeToString(data)},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to add version to %s: %w", secret, err)
	}
	return v.Name, nil
}
