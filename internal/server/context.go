package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/automation-engine/internal/bigquery"
	"github.com/teemow/automation-engine/internal/config"
	"github.com/teemow/automation-engine/internal/firestore"
	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/pubsub"
	"github.com/teemow/automation-engine/internal/scheduler"
	"github.com/teemow/automation-engine/internal/secrets"
	"github.com/teemow/automation-engine/internal/services"
	"github.com/teemow/automation-engine/internal/serviceusage"
	"github.com/teemow/automation-engine/internal/storage"
	"github.com/teemow/automation-engine/internal/tasks"
	"github.com/teemow/automation-engine/internal/vertex"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	services *services.Services
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger

	mu           sync.RWMutex
	storage      *storage.Client
	pubsub       *pubsub.Client
	scheduler    *scheduler.Client
	tasks        *tasks.Client
	secrets      *secrets.Client
	serviceUsage *serviceusage.Client
	vertex       *vertex.Client
	firestore    *firestore.Client
	bigquery     *bigquery.Client
	shutdown     bool
}

// NewServerContext creates a new server context around svc.
func NewServerContext(ctx context.Context, svc *services.Services, logger *slog.Logger) (*ServerContext, error) {
	if svc == nil {
		return nil, fmt.Errorf("services are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		services: svc,
		logger:   logger,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Services returns the Workspace facade.
func (sc *ServerContext) Services() *services.Services {
	return sc.services
}

// Config returns the engine configuration.
func (sc *ServerContext) Config() config.Config {
	return sc.services.Config()
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// SetMetrics sets the metrics recorder used by tool handlers.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger used by tool handlers.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.audit = al
}

// AuditLogger returns the audit logger, or nil when auditing is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.audit
}

// lazy returns the cached client in *slot or builds it. Failed builds are not
// cached so a later call can retry with fixed configuration.
func lazy[T any](sc *ServerContext, slot **T, build func(context.Context) (*T, error)) (*T, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil, fmt.Errorf("server is shutting down")
	}
	if *slot != nil {
		return *slot, nil
	}
	c, err := build(sc.ctx)
	if err != nil {
		return nil, err
	}
	*slot = c
	return c, nil
}

func (sc *ServerContext) projectID() (string, error) {
	project := sc.Config().ProjectID
	if project == "" {
		return "", fmt.Errorf("no Google Cloud project configured (set %s)", config.EnvProjectID)
	}
	return project, nil
}

// Storage returns the Cloud Storage client.
func (sc *ServerContext) Storage() (*storage.Client, error) {
	return lazy(sc, &sc.storage, func(ctx context.Context) (*storage.Client, error) {
		project, err := sc.projectID()
		if err != nil {
			return nil, err
		}
		return storage.NewClient(ctx, project, sc.services.ClientOptions()...)
	})
}

// PubSub returns the Pub/Sub client.
func (sc *ServerContext) PubSub() (*pubsub.Client, error) {
	return lazy(sc, &sc.pubsub, func(ctx context.Context) (*pubsub.Client, error) {
		project, err := sc.projectID()
		if err != nil {
			return nil, err
		}
		return pubsub.NewClient(ctx, project, sc.services.ClientOptions()...)
	})
}

// Scheduler returns the Cloud Scheduler client for the configured location.
func (sc *ServerContext) Scheduler() (*scheduler.Client, error) {
	return lazy(sc, &sc.scheduler, func(ctx context.Context) (*scheduler.Client, error) {
		project, err := sc.projectID()
		if err != nil {
			return nil, err
		}
		return scheduler.NewClient(ctx, project, sc.Config().Location, sc.services.ClientOptions()...)
	})
}

// Tasks returns the Cloud Tasks client for the configured location.
func (sc *ServerContext) Tasks() (*tasks.Client, error) {
	return lazy(sc, &sc.tasks, func(ctx context.Context) (*tasks.Client, error) {
		project, err := sc.projectID()
		if err != nil {
			return nil, err
		}
		return tasks.NewClient(ctx, project, sc.Config().Location, sc.services.ClientOptions()...)
	})
}

// Secrets returns the Secret Manager client.
func (sc *ServerContext) Secrets() (*secrets.Client, error) {
	return lazy(sc, &sc.secrets, func(ctx context.Context) (*secrets.Client, error) {
		project, err := sc.projectID()
		if err != nil {
			return nil, err
		}
		return secrets.NewClient(ctx, project, sc.services.ClientOptions()...)
	})
}

// ServiceUsage returns the Service Usage client.
func (sc *ServerContext) ServiceUsage() (*serviceusage.Client, error) {
	return lazy(sc, &sc.serviceUsage, func(ctx context.Context) (*serviceusage.Client, error) {
		project, err := sc.projectID()
		if err != nil {
			return nil, err
		}
		return serviceusage.NewClient(ctx, project, sc.services.ClientOptions()...)
	})
}

// Firestore returns the Firestore client for the default database.
func (sc *ServerContext) Firestore() (*firestore.Client, error) {
	return lazy(sc, &sc.firestore, func(ctx context.Context) (*firestore.Client, error) {
		project, err := sc.projectID()
		if err != nil {
			return nil, err
		}
		return firestore.NewClient(ctx, project, sc.services.ClientOptions()...)
	})
}

// BigQuery returns the BigQuery client. Queries run in the default
// location of their datasets.
func (sc *ServerContext) BigQuery() (*bigquery.Client, error) {
	return lazy(sc, &sc.bigquery, func(ctx context.Context) (*bigquery.Client, error) {
		project, err := sc.projectID()
		if err != nil {
			return nil, err
		}
		return bigquery.NewClient(ctx, project, "", sc.services.ClientOptions()...)
	})
}

// Vertex returns the Vertex AI client.
func (sc *ServerContext) Vertex() (*vertex.Client, error) {
	return lazy(sc, &sc.vertex, func(ctx context.Context) (*vertex.Client, error) {
		cfg := sc.Config()
		project, err := sc.projectID()
		if err != nil {
			return nil, err
		}
		return vertex.NewClient(ctx, vertex.Config{
			ProjectID:       project,
			Location:        cfg.Location,
			Model:           cfg.VertexModel,
			CredentialsPath: cfg.CredentialsPath,
		})
	})
}

// SetVertex injects a Vertex AI client.
func (sc *ServerContext) SetVertex(c *vertex.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.vertex = c
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
