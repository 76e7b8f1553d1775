package storage

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
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

type captured struct {
	method string
	path   string
	query  map[string][]string
	body   string
}

func newTestClient(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*Client, *[]captured) {
	t.Helper()
	var calls []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, captured{method: r.Method, path: r.URL.Path, query: r.URL.Query(), body: string(body)})
		w.Header().Set("Content-Type", "application/json")
		respond(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), "proj-1",
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return client, &calls
}

func TestNewClient_RequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), "", option.WithoutAuthentication())
	assert.Error(t, err)
}

func TestClient_CreateBucket(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(storage.Bucket{Name: "data", Location: "US", StorageClass: "STANDARD", TimeCreated: "2026-10-16T09:00:00Z"})
	})

	b, err := client.CreateBucket(context.Background(), "data", "")
	require.NoError(t, err)
	assert.Equal(t, "data", b.Name)
	assert.Equal(t, 2026, b.Created.Year())

	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodPost, c.method)
	assert.True(t, strings.HasSuffix(c.path, "/b"))
	assert.Equal(t, []string{"proj-1"}, c.query["project"])
	assert.Contains(t, c.body, `"location":"US"`)
}

func TestClient_CreateBucketRequiresName(t *testing.T) {
	client, calls := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
	_, err := client.CreateBucket(context.Background(), "", "EU")
	assert.Error(t, err)
	assert.Empty(t, *calls)
}

func TestClient_UploadObject(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(storage.Object{Bucket: "data", Name: "results/out.json", ContentType: "application/json", Size: 13})
	})

	obj, err := client.UploadObject(context.Background(), "data", "results/out.json", strings.NewReader(`{"ok": true}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, uint64(13), obj.Size)
	assert.Equal(t, "results/out.json", obj.Name)

	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Contains(t, c.path, "/upload/storage/v1/b/data/o")
	assert.Contains(t, c.body, `{"ok": true}`)
}

func TestClient_ListObjects(t *testing.T) {
	page := 0
	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		page++
		if page == 1 {
			_ = json.NewEncoder(w).Encode(storage.Objects{
				Items:         []*storage.Object{{Name: "a"}, {Name: "b"}},
				NextPageToken: "next",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(storage.Objects{Items: []*storage.Object{{Name: "c"}}})
	})

	objects, err := client.ListObjects(context.Background(), "data", "logs/", 0)
	require.NoError(t, err)
	require.Len(t, objects, 3)
	assert.Equal(t, "c", objects[2].Name)

	require.Len(t, *calls, 2)
	assert.Equal(t, []string{"logs/"}, (*calls)[0].query["prefix"])
	assert.Equal(t, []string{"next"}, (*calls)[1].query["pageToken"])
}

func TestClient_ListObjectsLimit(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(storage.Objects{
			Items:         []*storage.Object{{Name: "a"}, {Name: "b"}},
			NextPageToken: "next",
		})
	})

	objects, err := client.ListObjects(context.Background(), "data", "", 1)
	require.NoError(t, err)
	assert.Len(t, objects, 1)
	assert.Len(t, *calls, 1)
}

func TestClient_DownloadObject(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("payload"))
	})

	rc, err := client.DownloadObject(context.Background(), "data", "file.txt")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, []string{"media"}, (*calls)[0].query["alt"])
}
