package docs_tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	docsapi "google.golang.org/api/docs/v1"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/teemow/automation-engine/internal/config"
	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/services"
)

type fakeDocs struct {
	mu        sync.Mutex
	grants    int
	appended  []string
	failGrant bool
}

func (f *fakeDocs) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == "/v1/documents" && r.Method == http.MethodPost:
		var doc docsapi.Document
		_ = json.Unmarshal(raw, &doc)
		doc.DocumentId = "doc-1"
		_ = json.NewEncoder(w).Encode(doc)
	case strings.HasSuffix(r.URL.Path, ":batchUpdate"):
		var req docsapi.BatchUpdateDocumentRequest
		_ = json.Unmarshal(raw, &req)
		for _, rq := range req.Requests {
			if rq.InsertText != nil {
				f.appended = append(f.appended, rq.InsertText.Text)
			}
		}
		_ = json.NewEncoder(w).Encode(docsapi.BatchUpdateDocumentResponse{DocumentId: "doc-1"})
	case strings.HasPrefix(r.URL.Path, "/v1/documents/"):
		_ = json.NewEncoder(w).Encode(docsapi.Document{
			DocumentId: "doc-1",
			Title:      "Notes",
			Body: &docsapi.Body{Content: []*docsapi.StructuralElement{
				{Paragraph: &docsapi.Paragraph{Elements: []*docsapi.ParagraphElement{{TextRun: &docsapi.TextRun{Content: "agenda\n"}}}}},
			}},
		})
	case strings.HasSuffix(r.URL.Path, "/permissions"):
		f.grants++
		if f.failGrant {
			http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(driveapi.Permission{Id: "perm-1", Role: "writer"})
	case strings.HasPrefix(r.URL.Path, "/files/"):
		_ = json.NewEncoder(w).Encode(driveapi.File{Id: "doc-1", Name: "Notes", MimeType: "application/vnd.google-apps.document"})
	default:
		http.NotFound(w, r)
	}
}

func newTestContext(t *testing.T, fake *fakeDocs) *server.ServerContext {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.OwnerEmail = "owner@example.com"
	svc := services.New(cfg, services.WithClientOptions(
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	))
	sc, err := server.NewServerContext(context.Background(), svc, nil)
	require.NoError(t, err)
	return sc
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestRegisterDocsTools(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
		want     int
	}{
		{name: "read only", readOnly: true, want: 2},
		{name: "write enabled", readOnly: false, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
			require.NoError(t, RegisterDocsTools(s, newTestContext(t, &fakeDocs{}), tt.readOnly))
			assert.Len(t, s.ListTools(), tt.want)
		})
	}
}

func TestHandleCreateDocument(t *testing.T) {
	fake := &fakeDocs{}
	sc := newTestContext(t, fake)

	result, err := handleCreateDocument(context.Background(), callRequest(map[string]interface{}{
		"title": "Notes",
		"text":  "first line",
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError, resultText(t, result))
	assert.Contains(t, resultText(t, result), `"documentId": "doc-1"`)
	assert.Equal(t, 1, fake.grants)
	assert.Equal(t, []string{"first line"}, fake.appended)
}

func TestHandleCreateDocument_GrantFailureIsSwallowed(t *testing.T) {
	fake := &fakeDocs{failGrant: true}
	sc := newTestContext(t, fake)

	result, err := handleCreateDocument(context.Background(), callRequest(map[string]interface{}{"title": "Notes"}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, 1, fake.grants)
}

func TestHandleReadDocument(t *testing.T) {
	sc := newTestContext(t, &fakeDocs{})

	result, err := handleReadDocument(context.Background(), callRequest(map[string]interface{}{"documentId": "doc-1"}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "agenda")
}

func TestHandleAppendText_Validation(t *testing.T) {
	fake := &fakeDocs{}
	sc := newTestContext(t, fake)

	result, err := handleAppendText(context.Background(), callRequest(map[string]interface{}{"documentId": "doc-1"}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "text is required", resultText(t, result))
	assert.Empty(t, fake.appended)
}

func TestHandleGetMetadata(t *testing.T) {
	sc := newTestContext(t, &fakeDocs{})

	result, err := handleGetMetadata(context.Background(), callRequest(map[string]interface{}{"documentId": "doc-1"}), sc)
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Document metadata")
}
