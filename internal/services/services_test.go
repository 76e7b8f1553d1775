package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	docsapi "google.golang.org/api/docs/v1"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/teemow/automation-engine/internal/config"
	"github.com/teemow/automation-engine/internal/drive"
	"github.com/teemow/automation-engine/internal/sheets"
)

const owner = "owner@example.com"

type request struct {
	Method string
	Path   string
	Query  map[string][]string
	Body   string
}

// fakeWorkspace answers Drive, Sheets and Docs calls on one server.
type fakeWorkspace struct {
	mu          sync.Mutex
	requests    []request
	failShare   bool
	failCreate  bool
	listedFiles []*driveapi.File
}

func (f *fakeWorkspace) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, request{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Body: string(raw)})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path

	switch {
	case strings.HasSuffix(path, "/permissions") && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(driveapi.PermissionList{Permissions: []*driveapi.Permission{
			{Id: "perm-1", Type: "user", Role: "writer", EmailAddress: owner},
		}})
	case strings.Contains(path, "/permissions/") && r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	case strings.HasSuffix(path, "/permissions"):
		if f.failShare {
			http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
			return
		}
		var p driveapi.Permission
		_ = json.Unmarshal(raw, &p)
		p.Id = "perm-1"
		_ = json.NewEncoder(w).Encode(p)
	case f.failCreate && r.Method == http.MethodPost:
		http.Error(w, `{"error":{"code":400,"message":"bad request"}}`, http.StatusBadRequest)
	case strings.HasPrefix(path, "/v4/spreadsheets") && r.Method == http.MethodPost && !strings.Contains(path, ":"):
		var body sheetsapi.Spreadsheet
		_ = json.Unmarshal(raw, &body)
		body.SpreadsheetId = "sheet-1"
		_ = json.NewEncoder(w).Encode(body)
	case strings.HasPrefix(path, "/v4/spreadsheets") && strings.Contains(path, "/values/") && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(sheetsapi.ValueRange{Values: [][]interface{}{{"a", "b"}, {"1", "2"}}})
	case strings.HasPrefix(path, "/v4/spreadsheets") && strings.HasSuffix(path, ":append"):
		_ = json.NewEncoder(w).Encode(sheetsapi.AppendValuesResponse{Updates: &sheetsapi.UpdateValuesResponse{UpdatedRange: "Sheet1!A3:B3", UpdatedRows: 1, UpdatedCells: 2}})
	case strings.HasPrefix(path, "/v4/spreadsheets") && r.Method == http.MethodPut:
		_ = json.NewEncoder(w).Encode(sheetsapi.UpdateValuesResponse{UpdatedRange: "Sheet1!A1:B2", UpdatedRows: 2, UpdatedCells: 4})
	case strings.HasPrefix(path, "/v1/documents") && r.Method == http.MethodPost:
		var doc docsapi.Document
		_ = json.Unmarshal(raw, &doc)
		doc.DocumentId = "doc-1"
		_ = json.NewEncoder(w).Encode(doc)
	case strings.HasSuffix(path, "/files") && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(driveapi.FileList{Files: f.listedFiles})
	case strings.HasSuffix(path, "/files") && r.Method == http.MethodPost:
		name := "uploaded"
		mime := ""
		var file driveapi.File
		if err := json.Unmarshal(raw, &file); err == nil {
			name = file.Name
			mime = file.MimeType
		}
		_ = json.NewEncoder(w).Encode(driveapi.File{Id: "file-1", Name: name, MimeType: mime})
	case strings.HasPrefix(path, "/files/") && r.Method == http.MethodGet && r.URL.Query().Get("alt") == "media":
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("file body"))
	case strings.HasPrefix(path, "/files/") && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(driveapi.File{Id: strings.TrimPrefix(path, "/files/"), Name: "report.txt"})
	case strings.HasPrefix(path, "/files/") && r.Method == http.MethodPatch:
		var file driveapi.File
		_ = json.Unmarshal(raw, &file)
		file.Id = strings.TrimPrefix(path, "/files/")
		file.Parents = []string{r.URL.Query().Get("addParents")}
		_ = json.NewEncoder(w).Encode(file)
	case strings.HasPrefix(path, "/files/") && r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeWorkspace) shareRequests() []request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []request
	for _, r := range f.requests {
		if strings.HasSuffix(r.Path, "/permissions") && r.Method == http.MethodPost {
			out = append(out, r)
		}
	}
	return out
}

func newTestServices(t *testing.T, cfg config.Config) (*Services, *fakeWorkspace) {
	t.Helper()
	fake := &fakeWorkspace{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc := New(cfg, WithClientOptions(
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	))
	return svc, fake
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.OwnerEmail = owner
	return cfg
}

func assertOwnerGrant(t *testing.T, r request, fileID string) {
	t.Helper()
	assert.True(t, strings.HasSuffix(r.Path, "/files/"+fileID+"/permissions"), "path %s", r.Path)
	assert.Equal(t, []string{"false"}, r.Query["sendNotificationEmail"])

	var p driveapi.Permission
	require.NoError(t, json.Unmarshal([]byte(r.Body), &p))
	assert.Equal(t, "user", p.Type)
	assert.Equal(t, "writer", p.Role)
	assert.Equal(t, owner, p.EmailAddress)
}

func TestServices_CreateSpreadsheetAutoShares(t *testing.T) {
	svc, fake := newTestServices(t, testConfig())

	info, err := svc.CreateSpreadsheet(context.Background(), "Budget", []sheets.SheetSpec{{Title: "data"}})
	require.NoError(t, err)
	assert.Equal(t, "sheet-1", info.ID)

	shares := fake.shareRequests()
	require.Len(t, shares, 1)
	assertOwnerGrant(t, shares[0], "sheet-1")
}

func TestServices_CreateFolderAutoShares(t *testing.T) {
	svc, fake := newTestServices(t, testConfig())

	folder, err := svc.CreateFolder(context.Background(), "Reports", "parent-1")
	require.NoError(t, err)
	assert.Equal(t, "file-1", folder.ID)

	shares := fake.shareRequests()
	require.Len(t, shares, 1)
	assertOwnerGrant(t, shares[0], "file-1")
}

func TestServices_CreateDocumentAutoShares(t *testing.T) {
	svc, fake := newTestServices(t, testConfig())

	doc, err := svc.CreateDocument(context.Background(), "Notes")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.ID)

	shares := fake.shareRequests()
	require.Len(t, shares, 1)
	assertOwnerGrant(t, shares[0], "doc-1")
}

func TestServices_UploadFileDefaultsToTextPlain(t *testing.T) {
	svc, fake := newTestServices(t, testConfig())

	file, err := svc.UploadFile(context.Background(), "notes.txt", strings.NewReader("hello"), "", "")
	require.NoError(t, err)
	assert.Equal(t, "file-1", file.ID)

	var upload *request
	for i := range fake.requests {
		if strings.Contains(fake.requests[i].Path, "/upload/") {
			upload = &fake.requests[i]
		}
	}
	require.NotNil(t, upload, "content goes through the upload endpoint")
	assert.Contains(t, upload.Body, "hello")
	assert.Contains(t, upload.Body, "text/plain")

	require.Len(t, fake.shareRequests(), 1)
}

func TestServices_CreateFileRequiresMimeType(t *testing.T) {
	svc, fake := newTestServices(t, testConfig())

	_, err := svc.CreateFile(context.Background(), "form", "", "")
	assert.Error(t, err)
	assert.Empty(t, fake.requests)
}

func TestServices_GrantFailureStillReturnsResource(t *testing.T) {
	svc, fake := newTestServices(t, testConfig())
	fake.failShare = true

	info, err := svc.CreateSpreadsheet(context.Background(), "Budget", nil)
	require.NoError(t, err)
	assert.Equal(t, "sheet-1", info.ID)
	assert.Len(t, fake.shareRequests(), 1, "no retry after a failed grant")
}

func TestServices_CreateFailureSkipsGrant(t *testing.T) {
	svc, fake := newTestServices(t, testConfig())
	fake.failCreate = true

	_, err := svc.CreateDocument(context.Background(), "Notes")
	assert.Error(t, err)
	assert.Empty(t, fake.shareRequests())
}

func TestServices_AutoShareDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.AutoShare.Enabled = false
	svc, fake := newTestServices(t, cfg)

	_, err := svc.CreateFolder(context.Background(), "Reports", "")
	require.NoError(t, err)
	assert.Empty(t, fake.shareRequests())
}

func TestServices_ReadWriteAppend(t *testing.T) {
	svc, fake := newTestServices(t, testConfig())
	ctx := context.Background()

	values, err := svc.ReadSpreadsheet(ctx, "sheet-1", "Sheet1!A1:B2")
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{{"a", "b"}, {"1", "2"}}, values)

	written, err := svc.WriteSpreadsheet(ctx, "sheet-1", "Sheet1!A1:B2", [][]interface{}{{"x", "y"}, {1, 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), written.UpdatedCells)

	appended, err := svc.AppendSpreadsheet(ctx, "sheet-1", "Sheet1!A:B", [][]interface{}{{"z", 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), appended.UpdatedRows)

	for _, r := range fake.requests[1:] {
		assert.Equal(t, []string{"USER_ENTERED"}, r.Query["valueInputOption"])
	}
	assert.Empty(t, fake.shareRequests(), "reads and writes never share")
}

func TestServices_ListFilesDefaultPageSize(t *testing.T) {
	svc, fake := newTestServices(t, testConfig())
	fake.listedFiles = []*driveapi.File{{Id: "f1", Name: "one"}, {Id: "f2", Name: "two"}}

	files, err := svc.ListFiles(context.Background(), "name contains 'o'", 0)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "f1", files[0].ID)

	require.Len(t, fake.requests, 1)
	assert.Equal(t, []string{"100"}, fake.requests[0].Query["pageSize"])
}

func TestServices_ShareExistingFile(t *testing.T) {
	svc, fake := newTestServices(t, testConfig())

	perm, err := svc.ShareExistingFile(context.Background(), "file-9", "", "")
	require.NoError(t, err)
	assert.Equal(t, "perm-1", perm.ID)

	shares := fake.shareRequests()
	require.Len(t, shares, 1)
	assert.Equal(t, []string{"true"}, shares[0].Query["sendNotificationEmail"])

	var p driveapi.Permission
	require.NoError(t, json.Unmarshal([]byte(shares[0].Body), &p))
	assert.Equal(t, owner, p.EmailAddress)
	assert.Equal(t, "writer", p.Role)
}

func TestServices_ShareExistingFilePropagatesErrors(t *testing.T) {
	svc, fake := newTestServices(t, testConfig())
	fake.failShare = true

	_, err := svc.ShareExistingFile(context.Background(), "file-9", "someone@example.com", "reader")
	assert.Error(t, err)
}

func TestServices_ShareExistingFileNeedsRecipient(t *testing.T) {
	cfg := config.Default()
	svc, fake := newTestServices(t, cfg)

	_, err := svc.ShareExistingFile(context.Background(), "file-9", "", "")
	assert.Error(t, err)
	assert.Empty(t, fake.requests)
}

func TestServices_ClientsAreReused(t *testing.T) {
	svc, _ := newTestServices(t, testConfig())
	ctx := context.Background()

	d1, err := svc.Drive(ctx)
	require.NoError(t, err)
	d2, err := svc.Drive(ctx)
	require.NoError(t, err)
	assert.Same(t, d1, d2)

	s1, err := svc.Sheets(ctx)
	require.NoError(t, err)
	s2, err := svc.Sheets(ctx)
	require.NoError(t, err)
	assert.Same(t, s1, s2)
}

func TestServices_FileLifecycle(t *testing.T) {
	svc, fake := newTestServices(t, testConfig())
	ctx := context.Background()

	file, err := svc.GetFile(ctx, "file-9")
	require.NoError(t, err)
	assert.Equal(t, "file-9", file.ID)

	body, err := svc.DownloadFile(ctx, "file-9")
	require.NoError(t, err)
	content, err := io.ReadAll(body)
	require.NoError(t, body.Close())
	require.NoError(t, err)
	assert.Equal(t, "file body", string(content))

	moved, err := svc.MoveFile(ctx, "file-9", &drive.MoveOptions{NewName: "renamed.txt", AddParents: []string{"folder-2"}})
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt", moved.Name)
	assert.Equal(t, []string{"folder-2"}, moved.Parents)

	perms, err := svc.ListPermissions(ctx, "file-9")
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.Equal(t, owner, perms[0].EmailAddress)

	require.NoError(t, svc.RemovePermission(ctx, "file-9", "perm-1"))
	require.NoError(t, svc.DeleteFile(ctx, "file-9"))

	// None of these create anything, so no grant is issued.
	assert.Empty(t, fake.shareRequests())
}

func TestServices_SearchFilesPassesOptions(t *testing.T) {
	svc, fake := newTestServices(t, testConfig())
	fake.listedFiles = []*driveapi.File{{Id: "a"}}

	files, _, err := svc.SearchFiles(context.Background(), &drive.ListOptions{
		Query:      "name contains 'q'",
		MaxResults: 5,
		OrderBy:    "name",
	})
	require.NoError(t, err)
	require.Len(t, files, 1)

	fake.mu.Lock()
	last := fake.requests[len(fake.requests)-1]
	fake.mu.Unlock()
	assert.Equal(t, []string{"5"}, last.Query["pageSize"])
	assert.Equal(t, []string{"name"}, last.Query["orderBy"])
	require.Len(t, last.Query["q"], 1)
	assert.Equal(t, "(name contains 'q') and trashed=false", last.Query["q"][0])
}
