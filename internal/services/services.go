// Package services is the facade the CLI and the MCP tools use to reach
// Google Workspace. It owns one authenticated HTTP client, builds the Drive,
// Sheets and Docs clients on first use, and auto-shares every resource it
// creates with the configured owner.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/api/option"

	"github.com/teemow/automation-engine/internal/autoshare"
	"github.com/teemow/automation-engine/internal/config"
	"github.com/teemow/automation-engine/internal/docs"
	"github.com/teemow/automation-engine/internal/drive"
	"github.com/teemow/automation-engine/internal/google"
	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/logging"
	"github.com/teemow/automation-engine/internal/sheets"
)

// DefaultPageSize is used by ListFiles when no page size is given.
const DefaultPageSize = 100

// Services holds the configuration and the lazily created API clients.
type Services struct {
	cfg        config.Config
	clientOpts []option.ClientOption
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	audit      *instrumentation.AuditLogger

	mu     sync.Mutex
	drive  *drive.Client
	sheets *sheets.Client
	docs   *docs.Client

	sharer *autoshare.Sharer
}

// Option customises Services.
type Option func(*Services)

// WithClientOptions sets the google.golang.org/api options used for every
// client, typically option.WithHTTPClient.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(s *Services) {
		s.clientOpts = append(s.clientOpts, opts...)
	}
}

// WithLogger sets the logger. A nil logger keeps slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Services) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(s *Services) {
		s.metrics = metrics
	}
}

// WithAuditLogger sets the audit logger used for share grants.
func WithAuditLogger(audit *instrumentation.AuditLogger) Option {
	return func(s *Services) {
		s.audit = audit
	}
}

// New returns Services for cfg. No API client is built until it is needed.
func New(cfg config.Config, opts ...Option) *Services {
	s := &Services{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	shareOpts := autoshare.OptionsFromConfig(cfg)
	shareOpts.Logger = s.logger
	shareOpts.Metrics = s.metrics
	shareOpts.Audit = s.audit
	s.sharer = autoshare.New(driveGranter{s}, shareOpts)

	return s
}

// NewFromCredentials authenticates with the configured service account key,
// or Application Default Credentials when no key path is set, and returns
// Services using that identity. A missing project id in cfg is filled in
// from the credentials.
func NewFromCredentials(ctx context.Context, cfg config.Config, opts ...Option) (*Services, error) {
	client, err := google.NewHTTPClient(ctx, google.ClientConfig{
		CredentialsPath: cfg.CredentialsPath,
		Scopes:          google.DefaultScopes,
		RateLimit: google.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		},
	})
	if err != nil {
		return nil, err
	}

	if cfg.ProjectID == "" {
		cfg.ProjectID = client.ProjectID
	}

	opts = append([]Option{WithClientOptions(option.WithHTTPClient(client.HTTP))}, opts...)
	return New(cfg, opts...), nil
}

// Config returns the configuration the services were built with.
func (s *Services) Config() config.Config {
	return s.cfg
}

// ClientOptions returns the options every API client is built with.
func (s *Services) ClientOptions() []option.ClientOption {
	return s.clientOpts
}

// Sharer returns the auto-share sharer.
func (s *Services) Sharer() *autoshare.Sharer {
	return s.sharer
}

// Drive returns the Drive client, creating it on first use.
func (s *Services) Drive(ctx context.Context) (*drive.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.drive != nil {
		return s.drive, nil
	}
	client, err := drive.NewClient(ctx, s.clientOpts...)
	if err != nil {
		return nil, err
	}
	s.drive = client
	return client, nil
}

// Sheets returns the Sheets client, creating it on first use.
func (s *Services) Sheets(ctx context.Context) (*sheets.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sheets != nil {
		return s.sheets, nil
	}
	client, err := sheets.NewClient(ctx, s.clientOpts...)
	if err != nil {
		return nil, err
	}
	s.sheets = client
	return client, nil
}

// Docs returns the Docs client, creating it on first use.
func (s *Services) Docs(ctx context.Context) (*docs.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs != nil {
		return s.docs, nil
	}
	client, err := docs.NewClient(ctx, s.clientOpts...)
	if err != nil {
		return nil, err
	}
	s.docs = client
	return client, nil
}

// Observe wraps one Google API call in a span and records its outcome in
// google_api_operations_total.
func (s *Services) Observe(ctx context.Context, service, operation, resourceID string, call func(context.Context) error) error {
	b := instrumentation.NewSpanAttributeBuilder()
	if resourceID != "" {
		b.WithResource(service, resourceID)
	}
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, service, operation, b.Build()...)
	start := time.Now()

	err := call(ctx)

	instrumentation.EndSpan(span, err)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		s.logger.DebugContext(ctx, "google api call failed",
			logging.Service(service),
			logging.Operation(operation),
			logging.Resource(resourceID),
			logging.Err(err))
	}
	s.metrics.RecordGoogleAPIOperation(ctx, service, operation, status, time.Since(start))
	return err
}

// driveGranter defers building the Drive client until the first grant.
type driveGranter struct {
	s *Services
}

func (g driveGranter) ShareFile(ctx context.Context, fileID string, options *drive.ShareOptions) (*drive.Permission, error) {
	client, err := g.s.Drive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}
	return client.ShareFile(ctx, fileID, options)
}
