// Package server provides the MCP server context and the HTTP plumbing around
// it for the automation engine.
//
// # Key Components
//
// ServerContext wraps the Workspace facade (services.Services) and lazily
// builds the Cloud clients (Storage, Pub/Sub, Scheduler, Tasks, Secret
// Manager, Service Usage, Vertex AI) on first use. A failed build is not
// cached.
//
// HTTPServer serves the MCP streamable HTTP transport on /mcp together with
// the health endpoints. It has no authentication layer of its own.
//
// HealthChecker implements /healthz, /readyz and /healthz/detailed. Readiness
// also fails when the configuration would make owner grants fail.
//
// MetricsServer exposes the Prometheus registry of the instrumentation
// provider on a separate port.
package server
