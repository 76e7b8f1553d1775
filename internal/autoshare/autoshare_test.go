package autoshare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/automation-engine/internal/config"
	"github.com/teemow/automation-engine/internal/drive"
	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/sheets"
)

const (
	testOwner = "owner@example.com"
	testID    = "sheet-123"
)

type grantCall struct {
	FileID  string
	Options drive.ShareOptions
}

type fakeGranter struct {
	mu    sync.Mutex
	calls []grantCall
	err   error
}

func (f *fakeGranter) ShareFile(_ context.Context, fileID string, options *drive.ShareOptions) (*drive.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, grantCall{FileID: fileID, Options: *options})
	if f.err != nil {
		return nil, f.err
	}
	return &drive.Permission{ID: "perm-1", Type: options.Type, Role: options.Role, EmailAddress: options.EmailAddress}, nil
}

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func createSpreadsheet(id string, err error) func(context.Context) (*sheets.SpreadsheetInfo, error) {
	return func(context.Context) (*sheets.SpreadsheetInfo, error) {
		if err != nil {
			return nil, err
		}
		return &sheets.SpreadsheetInfo{ID: id, Title: "Budget"}, nil
	}
}

func spreadsheetID(s *sheets.SpreadsheetInfo) string { return s.ID }

func TestCreated_GrantsExactlyOnce(t *testing.T) {
	granter := &fakeGranter{}
	sharer := New(granter, Options{Enabled: true, Owner: testOwner, Role: "writer"})

	result, err := Created(context.Background(), sharer, spreadsheetID, createSpreadsheet(testID, nil))
	require.NoError(t, err)
	assert.Equal(t, testID, result.ID)

	require.Len(t, granter.calls, 1)
	call := granter.calls[0]
	assert.Equal(t, testID, call.FileID)
	assert.Equal(t, drive.PermissionTypeUser, call.Options.Type)
	assert.Equal(t, testOwner, call.Options.EmailAddress)
	assert.Equal(t, "writer", call.Options.Role)
	assert.False(t, call.Options.SendNotificationEmail)
}

func TestCreated_ConfiguredRoleAndNotification(t *testing.T) {
	granter := &fakeGranter{}
	sharer := New(granter, Options{Enabled: true, Owner: testOwner, Role: "commenter", SendNotificationEmail: true})

	_, err := Created(context.Background(), sharer, spreadsheetID, createSpreadsheet(testID, nil))
	require.NoError(t, err)

	require.Len(t, granter.calls, 1)
	assert.Equal(t, "commenter", granter.calls[0].Options.Role)
	assert.True(t, granter.calls[0].Options.SendNotificationEmail)
}

func TestCreated_GrantFailureIsSwallowed(t *testing.T) {
	var logs bytes.Buffer
	granter := &fakeGranter{err: errors.New("403 insufficient permissions")}
	sharer := New(granter, Options{Enabled: true, Owner: testOwner, Logger: newLogger(&logs)})

	result, err := Created(context.Background(), sharer, spreadsheetID, createSpreadsheet(testID, nil))
	require.NoError(t, err, "grant failure must not surface")
	require.NotNil(t, result)
	assert.Equal(t, testID, result.ID)

	assert.Len(t, granter.calls, 1, "failed grants are not retried")
	assert.Contains(t, logs.String(), "auto-share failed")
	assert.Contains(t, logs.String(), "403 insufficient permissions")
	assert.NotContains(t, logs.String(), testOwner, "owner address stays out of general logs")
}

func TestCreated_Disabled(t *testing.T) {
	granter := &fakeGranter{}
	sharer := New(granter, Options{Enabled: false, Owner: testOwner})

	result, err := Created(context.Background(), sharer, spreadsheetID, createSpreadsheet(testID, nil))
	require.NoError(t, err)
	assert.Equal(t, testID, result.ID)
	assert.Empty(t, granter.calls)
}

func TestCreated_NilSharer(t *testing.T) {
	result, err := Created(context.Background(), nil, spreadsheetID, createSpreadsheet(testID, nil))
	require.NoError(t, err)
	assert.Equal(t, testID, result.ID)
}

func TestCreated_CreateErrorSkipsGrant(t *testing.T) {
	granter := &fakeGranter{}
	sharer := New(granter, Options{Enabled: true, Owner: testOwner})
	createErr := errors.New("quota exceeded")

	_, err := Created(context.Background(), sharer, spreadsheetID, createSpreadsheet("", createErr))
	assert.ErrorIs(t, err, createErr)
	assert.Empty(t, granter.calls)
}

func TestCreated_EmptyIDSkipsGrant(t *testing.T) {
	var logs bytes.Buffer
	granter := &fakeGranter{}
	sharer := New(granter, Options{Enabled: true, Owner: testOwner, Logger: newLogger(&logs)})

	_, err := Created(context.Background(), sharer, spreadsheetID, createSpreadsheet("", nil))
	require.NoError(t, err)
	assert.Empty(t, granter.calls)
	assert.Contains(t, logs.String(), "no id")
}

func TestCreated_DefaultIDExtraction(t *testing.T) {
	granter := &fakeGranter{}
	sharer := New(granter, Options{Enabled: true, Owner: testOwner})

	_, err := Created(context.Background(), sharer, nil, createSpreadsheet(testID, nil))
	require.NoError(t, err)
	require.Len(t, granter.calls, 1)
	assert.Equal(t, testID, granter.calls[0].FileID)
}

func TestShare_NoOwner(t *testing.T) {
	granter := &fakeGranter{}
	sharer := New(granter, Options{Enabled: true})

	assert.Nil(t, sharer.Share(context.Background(), testID))
	assert.Empty(t, granter.calls)
}

func TestShare_ReturnsPermission(t *testing.T) {
	sharer := New(&fakeGranter{}, Options{Enabled: true, Owner: testOwner})

	perm := sharer.Share(context.Background(), testID)
	require.NotNil(t, perm)
	assert.Equal(t, "perm-1", perm.ID)
	assert.Equal(t, "writer", perm.Role, "role defaults to writer")
}

func TestShare_RecordsMetricsAndAudit(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()
	metrics, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	require.NoError(t, err)

	var auditBuf bytes.Buffer
	audit := instrumentation.NewAuditLogger(slog.New(slog.NewJSONHandler(&auditBuf, nil)))

	ctx := context.Background()
	ok := New(&fakeGranter{}, Options{Enabled: true, Owner: testOwner, Metrics: metrics, Audit: audit})
	failing := New(&fakeGranter{err: errors.New("boom")}, Options{Enabled: true, Owner: testOwner, Metrics: metrics, Audit: audit})
	disabled := New(&fakeGranter{}, Options{Enabled: false, Owner: testOwner, Metrics: metrics, Audit: audit})

	ok.Share(ctx, "a")
	ok.Share(ctx, "b")
	failing.Share(ctx, "c")
	disabled.Share(ctx, "d")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	results := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "autoshare_grants_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				v, _ := dp.Attributes.Value("result")
				results[v.AsString()] = dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), results[instrumentation.ShareResultGranted])
	assert.Equal(t, int64(1), results[instrumentation.ShareResultFailed])
	assert.Equal(t, int64(1), results[instrumentation.ShareResultDisabled])

	lines := strings.Split(strings.TrimSpace(auditBuf.String()), "\n")
	assert.Len(t, lines, 3, "disabled sharers write no audit entry")
	assert.Contains(t, lines[0], "share_granted")
	assert.Contains(t, lines[2], "share_grant_failed")
}

func TestSharer_Validate(t *testing.T) {
	assert.NoError(t, New(&fakeGranter{}, Options{Enabled: true, Owner: testOwner}).Validate())
	assert.Error(t, New(&fakeGranter{}, Options{Enabled: true}).Validate())
	assert.Error(t, New(&fakeGranter{}, Options{Enabled: true, Owner: testOwner, Role: "owner"}).Validate())
	assert.NoError(t, New(&fakeGranter{}, Options{Enabled: false}).Validate())
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.OwnerEmail = testOwner
	cfg.AutoShare.Role = "reader"
	cfg.AutoShare.SendNotificationEmail = true

	opts := OptionsFromConfig(cfg)
	assert.True(t, opts.Enabled)
	assert.Equal(t, testOwner, opts.Owner)
	assert.Equal(t, "reader", opts.Role)
	assert.True(t, opts.SendNotificationEmail)
}

// The grant reaches the Drive permissions endpoint with the file id, the
// owner and role in the body, and notifications switched off.
func TestShare_DrivePermissionRequest(t *testing.T) {
	type seen struct {
		path   string
		notify string
		body   map[string]any
	}
	var requests []seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		requests = append(requests, seen{path: r.URL.Path, notify: r.URL.Query().Get("sendNotificationEmail"), body: body})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"perm-9","type":"user","role":"writer","emailAddress":"owner@example.com"}`))
	}))
	defer srv.Close()

	client, err := drive.NewClient(context.Background(),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)

	sharer := New(client, Options{Enabled: true, Owner: testOwner, Role: "writer"})
	perm := sharer.Share(context.Background(), testID)
	require.NotNil(t, perm)
	assert.Equal(t, "perm-9", perm.ID)

	require.Len(t, requests, 1)
	assert.True(t, strings.HasSuffix(requests[0].path, "/files/"+testID+"/permissions"))
	assert.Equal(t, "false", requests[0].notify)
	assert.Equal(t, "user", requests[0].body["type"])
	assert.Equal(t, "writer", requests[0].body["role"])
	assert.Equal(t, testOwner, requests[0].body["emailAddress"])
}
