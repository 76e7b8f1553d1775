package docs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return client
}

func TestClient_CreateDocument(t *testing.T) {
	var gotPath string
	var got docs.Document
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(docs.Document{DocumentId: "doc-1", Title: got.Title, RevisionId: "rev"})
	})

	info, err := client.CreateDocument(context.Background(), "Meeting notes")
	require.NoError(t, err)

	assert.Equal(t, "doc-1", info.ID)
	assert.Equal(t, "Meeting notes", info.Title)
	assert.Equal(t, "https://docs.google.com/document/d/doc-1/edit", info.URL)
	assert.True(t, strings.HasSuffix(gotPath, "/v1/documents"))
	assert.Equal(t, "Meeting notes", got.Title)
}

func TestClient_CreateDocument_RequiresTitle(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := client.CreateDocument(context.Background(), "")
	assert.Error(t, err)
}

func TestClient_GetPlainText(t *testing.T) {
	var query string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(docs.Document{
			DocumentId: "doc-1",
			Title:      "T",
			Body: &docs.Body{Content: []*docs.StructuralElement{
				{Paragraph: &docs.Paragraph{Elements: []*docs.ParagraphElement{{TextRun: &docs.TextRun{Content: "hello\n"}}}}},
			}},
		})
	})

	text, err := client.GetPlainText(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "T\n\nhello\n", text)
	assert.Contains(t, query, "includeTabsContent=true")
}

func TestClient_AppendText(t *testing.T) {
	var path string
	var body []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(docs.BatchUpdateDocumentResponse{DocumentId: "doc-1"})
	})

	require.NoError(t, client.AppendText(context.Background(), "doc-1", "more text"))
	assert.True(t, strings.HasSuffix(path, "/v1/documents/doc-1:batchUpdate"))

	var req docs.BatchUpdateDocumentRequest
	require.NoError(t, json.Unmarshal(body, &req))
	require.Len(t, req.Requests, 1)
	require.NotNil(t, req.Requests[0].InsertText)
	assert.Equal(t, "more text", req.Requests[0].InsertText.Text)
	assert.NotNil(t, req.Requests[0].InsertText.EndOfSegmentLocation)
}

func TestClient_AppendText_Validation(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})
	assert.Error(t, client.AppendText(context.Background(), "", "x"))
	assert.Error(t, client.AppendText(context.Background(), "doc", ""))
}

func TestClient_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
	})

	_, err := client.GetDocument(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get document missing")
}
