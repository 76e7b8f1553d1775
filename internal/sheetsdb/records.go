package sheetsdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Execution status values.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Log levels.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Execution is a row of the executions table.
type Execution struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	Code        string    `json:"code"`
	Status      string    `json:"status"`
	Result      string    `json:"result,omitempty"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
	DurationMS  int64     `json:"durationMs"`
	Metadata    string    `json:"metadata,omitempty"`
}

// Row returns the execution as a sheet row.
func (e Execution) Row() []interface{} {
	return []interface{}{
		e.ID, e.TenantID, e.Code, e.Status, e.Result, e.Error,
		formatTime(e.StartedAt), formatTime(e.CompletedAt),
		strconv.FormatInt(e.DurationMS, 10), e.Metadata,
	}
}

// Tenant is a row of the tenants table.
type Tenant struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	APIKey     string    `json:"apiKey,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	Status     string    `json:"status"`
	QuotaUsed  int64     `json:"quotaUsed"`
	QuotaLimit int64     `json:"quotaLimit"`
	Settings   string    `json:"settings,omitempty"`
}

// Row returns the tenant as a sheet row.
func (t Tenant) Row() []interface{} {
	return []interface{}{
		t.ID, t.Name, t.APIKey, formatTime(t.CreatedAt), t.Status,
		strconv.FormatInt(t.QuotaUsed, 10), strconv.FormatInt(t.QuotaLimit, 10), t.Settings,
	}
}

// LogEntry is a row of the logs table.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	TenantID  string    `json:"tenantId,omitempty"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Source    string    `json:"source,omitempty"`
}

// Row returns the log entry as a sheet row.
func (l LogEntry) Row() []interface{} {
	return []interface{}{formatTime(l.Timestamp), l.Level, l.TenantID, l.Message, l.Details, l.Source}
}

// Stats summarises the executions table.
type Stats struct {
	Count             int     `json:"count"`
	AverageDurationMS float64 `json:"averageDurationMs"`
}

// InsertExecutions appends executions, generating ids for those without one.
// It returns the executions as written.
func (db *DB) InsertExecutions(ctx context.Context, executions ...Execution) ([]Execution, error) {
	rows := make([][]interface{}, 0, len(executions))
	out := make([]Execution, 0, len(executions))
	for _, e := range executions {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.Status == "" {
			e.Status = StatusPending
		}
		rows = append(rows, e.Row())
		out = append(out, e)
	}
	if _, err := db.Insert(ctx, TableExecutions, rows); err != nil {
		return nil, fmt.Errorf("failed to insert executions: %w", err)
	}
	return out, nil
}

// InsertTenants appends tenants, generating ids for those without one and
// stamping CreatedAt when it is zero.
func (db *DB) InsertTenants(ctx context.Context, tenants ...Tenant) ([]Tenant, error) {
	rows := make([][]interface{}, 0, len(tenants))
	out := make([]Tenant, 0, len(tenants))
	for _, t := range tenants {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = db.now().UTC()
		}
		rows = append(rows, t.Row())
		out = append(out, t)
	}
	if _, err := db.Insert(ctx, TableTenants, rows); err != nil {
		return nil, fmt.Errorf("failed to insert tenants: %w", err)
	}
	return out, nil
}

// AppendLogs appends log entries, stamping Timestamp when it is zero.
func (db *DB) AppendLogs(ctx context.Context, entries ...LogEntry) error {
	rows := make([][]interface{}, 0, len(entries))
	for _, l := range entries {
		if l.Timestamp.IsZero() {
			l.Timestamp = db.now().UTC()
		}
		if l.Level == "" {
			l.Level = LevelInfo
		}
		rows = append(rows, l.Row())
	}
	if _, err := db.Insert(ctx, TableLogs, rows); err != nil {
		return fmt.Errorf("failed to append logs: %w", err)
	}
	return nil
}

// Executions returns every execution.
func (db *DB) Executions(ctx context.Context) ([]Execution, error) {
	rows, err := db.Query(ctx, TableExecutions, "")
	if err != nil {
		return nil, err
	}
	out := make([]Execution, 0, len(rows))
	for _, r := range rows {
		out = append(out, Execution{
			ID:          cell(r, 0),
			TenantID:    cell(r, 1),
			Code:        cell(r, 2),
			Status:      cell(r, 3),
			Result:      cell(r, 4),
			Error:       cell(r, 5),
			StartedAt:   parseTime(cell(r, 6)),
			CompletedAt: parseTime(cell(r, 7)),
			DurationMS:  parseInt(cell(r, 8)),
			Metadata:    cell(r, 9),
		})
	}
	return out, nil
}

// Tenants returns every tenant.
func (db *DB) Tenants(ctx context.Context) ([]Tenant, error) {
	rows, err := db.Query(ctx, TableTenants, "")
	if err != nil {
		return nil, err
	}
	out := make([]Tenant, 0, len(rows))
	for _, r := range rows {
		out = append(out, Tenant{
			ID:         cell(r, 0),
			Name:       cell(r, 1),
			APIKey:     cell(r, 2),
			CreatedAt:  parseTime(cell(r, 3)),
			Status:     cell(r, 4),
			QuotaUsed:  parseInt(cell(r, 5)),
			QuotaLimit: parseInt(cell(r, 6)),
			Settings:   cell(r, 7),
		})
	}
	return out, nil
}

// ExecutionStats counts executions and averages the durations that are set.
func (db *DB) ExecutionStats(ctx context.Context) (Stats, error) {
	rows, err := db.Query(ctx, TableExecutions, "")
	if err != nil {
		return Stats{}, err
	}
	return executionStats(rows), nil
}

func executionStats(rows [][]interface{}) Stats {
	stats := Stats{Count: len(rows)}
	var total, n int64
	for _, r := range rows {
		d, ok := parseCount(cell(r, 8))
		if !ok {
			continue
		}
		total += d
		n++
	}
	if n > 0 {
		stats.AverageDurationMS = float64(total) / float64(n)
	}
	return stats
}

// cell returns column i of a row as a string. Sheets omits trailing empty
// cells, so short rows are normal.
func cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}

// parseCount parses an integer cell as Sheets may display it, with
// thousands separators. Empty and malformed cells report false.
func parseCount(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	return n, err == nil
}

func parseInt(s string) int64 {
	n, _ := parseCount(s)
	return n
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// Sheets may render a USER_ENTERED timestamp in its own date format.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
