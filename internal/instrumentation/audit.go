package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/automation-engine/internal/logging"
)

// ToolInvocation is one MCP tool call in the audit trail.
type ToolInvocation struct {
	Tool        string
	ServiceName string
	Operation   string
	// ResourceID is the file, spreadsheet, bucket, topic, job, secret,
	// document path or table the call named.
	ResourceID string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts timing a call of tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{Tool: tool, StartTime: time.Now()}
}

// WithService tags the invocation with a Service and Operation constant.
func (ti *ToolInvocation) WithService(serviceName, operation string) *ToolInvocation {
	ti.ServiceName = serviceName
	ti.Operation = operation
	return ti
}

// WithResource records what the call acted on.
func (ti *ToolInvocation) WithResource(id string) *ToolInvocation {
	ti.ResourceID = id
	return ti
}

// WithSpanContext copies the trace and span id of the active span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID, ti.SpanID = spanIDs(ctx)
	return ti
}

// Complete stops the clock.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation { return ti.Complete(false, err) }
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation            { return ti.Complete(true, nil) }

// Status returns StatusSuccess or StatusError.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns the audit attributes. Empty optional fields are left out.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		logging.Tool(ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	attrs = appendSet(attrs, logging.KeyService, ti.ServiceName)
	attrs = appendSet(attrs, logging.KeyOperation, ti.Operation)
	attrs = appendSet(attrs, logging.KeyResourceID, ti.ResourceID)
	attrs = appendTrace(attrs, ti.TraceID, ti.SpanID)
	return appendSet(attrs, logging.KeyError, ti.Error)
}

// ShareGrant is one automatic owner grant after a resource was created.
//
// Principal is the owner e-mail address and therefore PII. It is only
// written in clear when the audit logger is configured with IncludePII.
type ShareGrant struct {
	FileID       string
	Principal    string
	Role         string
	Success      bool
	Error        string
	PermissionID string

	TraceID string
	SpanID  string
}

// Result maps the outcome onto the autoshare_grants_total result label.
func (sg *ShareGrant) Result() string {
	if sg.Success {
		return ShareResultGranted
	}
	return ShareResultFailed
}

// WithSpanContext copies the trace and span id of the active span.
func (sg *ShareGrant) WithSpanContext(ctx context.Context) *ShareGrant {
	sg.TraceID, sg.SpanID = spanIDs(ctx)
	return sg
}

// LogAttrs returns the audit attributes. The principal is hashed unless
// includePII is set; its domain is always logged.
func (sg *ShareGrant) LogAttrs(includePII bool) []slog.Attr {
	principal := logging.AnonymizeEmail(sg.Principal)
	if includePII {
		principal = sg.Principal
	}
	attrs := []slog.Attr{
		logging.FileID(sg.FileID),
		logging.Role(sg.Role),
		slog.String("principal", principal),
		slog.String("principal_domain", ExtractUserDomain(sg.Principal)),
		slog.Bool("success", sg.Success),
	}
	attrs = appendSet(attrs, "permission_id", sg.PermissionID)
	attrs = appendTrace(attrs, sg.TraceID, sg.SpanID)
	return appendSet(attrs, logging.KeyError, sg.Error)
}

func appendSet(attrs []slog.Attr, key, value string) []slog.Attr {
	if value == "" {
		return attrs
	}
	return append(attrs, slog.String(key, value))
}

func appendTrace(attrs []slog.Attr, traceID, spanID string) []slog.Attr {
	return appendSet(appendSet(attrs, "trace_id", traceID), "span_id", spanID)
}

func spanIDs(ctx context.Context) (string, string) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}

// AuditLogger writes tool calls and owner grants as structured log lines.
// Failures are logged at warn level. A nil *AuditLogger discards everything.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger returns an enabled audit logger that hashes the owner
// address.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig returns an audit logger configured by config.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

func (al *AuditLogger) log(success bool, okMsg, failMsg string, attrs []slog.Attr) {
	level, msg := slog.LevelInfo, okMsg
	if !success {
		level, msg = slog.LevelWarn, failMsg
	}
	al.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogToolInvocation logs a completed tool call.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled || ti == nil {
		return
	}
	al.log(ti.Success, "tool_executed", "tool_failed", ti.LogAttrs())
}

// LogShareGrant logs the outcome of an owner grant.
func (al *AuditLogger) LogShareGrant(sg *ShareGrant) {
	if al == nil || !al.enabled || sg == nil {
		return
	}
	al.log(sg.Success, "share_granted", "share_grant_failed", sg.LogAttrs(al.includePII))
}
