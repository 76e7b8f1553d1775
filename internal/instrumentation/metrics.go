package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrMethod       = "method"
	attrPath         = "path"
	attrStatus       = "status"
	attrOperation    = "operation"
	attrService      = "service"
	attrResult       = "result"
	attrRole         = "role"
	attrTool         = "tool"
	attrResourceKind = "resource_kind"
)

var (
	httpBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0}
	callBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
)

// Metrics records the engine's counters and latency histograms.
//
// All Record methods are safe to call on a nil *Metrics, which lets callers
// run without instrumentation.
type Metrics struct {
	httpRequests        metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	apiCalls        metric.Int64Counter
	apiCallDuration metric.Float64Histogram

	autoShareGrants metric.Int64Counter

	toolCalls    metric.Int64Counter
	toolDuration metric.Float64Histogram

	// detailedLabels adds the resource kind to auto-share counts.
	detailedLabels bool
}

// instruments creates counters and histograms on one meter and keeps the
// first error.
type instruments struct {
	meter metric.Meter
	err   error
}

func (in *instruments) counter(name, description, unit string) metric.Int64Counter {
	if in.err != nil {
		return nil
	}
	c, err := in.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		in.err = fmt.Errorf("failed to create %s counter: %w", name, err)
	}
	return c
}

func (in *instruments) histogram(name, description string, buckets []float64) metric.Float64Histogram {
	if in.err != nil {
		return nil
	}
	h, err := in.meter.Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		in.err = fmt.Errorf("failed to create %s histogram: %w", name, err)
	}
	return h
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	in := &instruments{meter: meter}
	m := &Metrics{
		httpRequests:        in.counter("http_requests_total", "HTTP requests served", "{request}"),
		httpRequestDuration: in.histogram("http_request_duration_seconds", "HTTP request duration", httpBuckets),

		apiCalls:        in.counter("google_api_operations_total", "Calls to Google Workspace and Cloud APIs", "{operation}"),
		apiCallDuration: in.histogram("google_api_operation_duration_seconds", "Google API call duration", callBuckets),

		autoShareGrants: in.counter("autoshare_grants_total", "Owner grants attempted after resource creation", "{grant}"),

		toolCalls:    in.counter("mcp_tool_invocations_total", "MCP tool invocations", "{invocation}"),
		toolDuration: in.histogram("mcp_tool_duration_seconds", "MCP tool execution duration", callBuckets),

		detailedLabels: detailedLabels,
	}
	if in.err != nil {
		return nil, in.err
	}
	return m, nil
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequests.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGoogleAPIOperation records one Google API call. Service is one of
// the Service constants, status StatusSuccess or StatusError.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.apiCalls == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.apiCalls.Add(ctx, 1, attrs)
	m.apiCallDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordAutoShare records the outcome of one owner grant. Result is one of
// ShareResultGranted, ShareResultFailed or ShareResultDisabled.
func (m *Metrics) RecordAutoShare(ctx context.Context, result, role string) {
	m.RecordAutoShareForKind(ctx, result, role, "")
}

// RecordAutoShareForKind is RecordAutoShare with the kind of the created
// resource (spreadsheet, document, folder, file) attached when detailed
// labels are enabled.
func (m *Metrics) RecordAutoShareForKind(ctx context.Context, result, role, kind string) {
	if m == nil || m.autoShareGrants == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
		attribute.String(attrRole, role),
	}
	if m.detailedLabels && kind != "" {
		attrs = append(attrs, attribute.String(attrResourceKind, kind))
	}
	m.autoShareGrants.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordToolInvocation records one MCP tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolCalls == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)
	m.toolCalls.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}
