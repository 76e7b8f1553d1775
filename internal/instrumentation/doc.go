// Package instrumentation provides OpenTelemetry instrumentation for the
// automation engine: metrics, tracing and an audit logger.
//
// # Metrics
//
// Server/HTTP:
//   - http_requests_total: HTTP requests by method, path and status
//   - http_request_duration_seconds: HTTP request durations
//
// Google API:
//   - google_api_operations_total: operations by service, operation and status
//   - google_api_operation_duration_seconds: operation durations
//
// Auto-share:
//   - autoshare_grants_total: owner grants issued after resource creation, by result and role
//
// MCP tools:
//   - mcp_tool_invocations_total: invocations by tool name and status
//   - mcp_tool_duration_seconds: tool execution durations
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>) and Google API
// calls (google.<service>.<operation>).
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: automation-engine)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_PII: audit logger switches
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordGoogleAPIOperation(ctx, instrumentation.ServiceSheets, instrumentation.OperationCreate, instrumentation.StatusSuccess, time.Since(start))
//	recorder.RecordAutoShare(ctx, instrumentation.ShareResultGranted, "writer")
package instrumentation
