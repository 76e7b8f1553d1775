// Package vertex generates text with Gemini models on Vertex AI.
package vertex

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	"google.golang.org/genai"

	googleauth "github.com/teemow/automation-engine/internal/google"
)

// Config configures a Vertex AI client.
type Config struct {
	ProjectID string
	Location  string

	// Model is the default model, e.g. "gemini-2.5-flash".
	Model string

	// CredentialsPath is a service account key file. Empty selects
	// Application Default Credentials.
	CredentialsPath string

	// Credentials, when set, is used instead of CredentialsPath.
	Credentials *auth.Credentials

	// HTTPClient and BaseURL override the transport and endpoint.
	HTTPClient *http.Client
	BaseURL    string
}

// Client generates content on Vertex AI.
type Client struct {
	client *genai.Client
	model  string
}

// GenerateOptions tunes a single generation.
type GenerateOptions struct {
	// Model overrides the client's default model.
	Model             string
	SystemInstruction string
	Temperature       *float32
	MaxOutputTokens   int32
}

// Result is the outcome of a generation.
type Result struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	PromptTokens int32  `json:"promptTokens"`
	OutputTokens int32  `json:"outputTokens"`
	TotalTokens  int32  `json:"totalTokens"`
}

// NewClient creates a Vertex AI client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ProjectID == "" || cfg.Location == "" {
		return nil, fmt.Errorf("project id and location are required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	creds := cfg.Credentials
	if creds == nil {
		var err error
		creds, err = credentials.DetectDefault(&credentials.DetectOptions{
			Scopes:          []string{googleauth.ScopeCloudPlatform},
			CredentialsFile: cfg.CredentialsPath,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to detect vertex ai credentials: %w", err)
		}
	}

	clientConfig := &genai.ClientConfig{
		Backend:     genai.BackendVertexAI,
		Project:     cfg.ProjectID,
		Location:    cfg.Location,
		Credentials: creds,
		HTTPClient:  cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}
	return &Client{client: client, model: cfg.Model}, nil
}

// Model returns the default model.
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt to the model and returns the text of the reply.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	model := opts.Model
	if model == "" {
		model = c.model
	}

	config := &genai.GenerateContentConfig{
		Temperature:     opts.Temperature,
		MaxOutputTokens: opts.MaxOutputTokens,
	}
	if opts.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(opts.SystemInstruction, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("vertex ai generation failed: %w", err)
	}

	result := &Result{Text: resp.Text(), Model: model}
	if resp.UsageMetadata != nil {
		result.PromptTokens = resp.UsageMetadata.PromptTokenCount
		result.OutputTokens = resp.UsageMetadata.CandidatesTokenCount
		result.TotalTokens = resp.UsageMetadata.TotalTokenCount
	}
	return result, nil
}
