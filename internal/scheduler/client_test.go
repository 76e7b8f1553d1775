package scheduler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cloudscheduler "google.golang.org/api/cloudscheduler/v1"
	"google.golang.org/api/option"
)

type captured struct {
	method string
	path   string
	body   []byte
}

func newTestClient(t *testing.T, respond func(w http.ResponseWriter, r *http.Request, body []byte)) (*Client, *[]captured) {
	t.Helper()
	var calls []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, captured{method: r.Method, path: r.URL.Path, body: body})
		w.Header().Set("Content-Type", "application/json")
		respond(w, r, body)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), "proj-1", "us-central1",
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return client, &calls
}

func TestClient_CreateHTTPJob(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, body []byte) {
		var job cloudscheduler.Job
		_ = json.Unmarshal(body, &job)
		job.State = "ENABLED"
		_ = json.NewEncoder(w).Encode(job)
	})

	info, err := client.CreateHTTPJob(context.Background(), HTTPJob{
		Name:                "nightly",
		Schedule:            "0 2 * * *",
		URL:                 "https://example.com/run",
		Body:                []byte(`{"report":"daily"}`),
		ServiceAccountEmail: "runner@proj-1.iam.gserviceaccount.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "projects/proj-1/locations/us-central1/jobs/nightly", info.Name)
	assert.Equal(t, "UTC", info.TimeZone)
	assert.Equal(t, "ENABLED", info.State)
	assert.Equal(t, "https://example.com/run", info.TargetURL)

	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodPost, c.method)
	assert.Equal(t, "/v1/projects/proj-1/locations/us-central1/jobs", c.path)

	var sent cloudscheduler.Job
	require.NoError(t, json.Unmarshal(c.body, &sent))
	assert.Equal(t, "POST", sent.HttpTarget.HttpMethod)
	body, err := base64.StdEncoding.DecodeString(sent.HttpTarget.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"report":"daily"}`, string(body))
	require.NotNil(t, sent.HttpTarget.OidcToken)
}

func TestClient_CreateHTTPJobValidation(t *testing.T) {
	client, calls := newTestClient(t, func(http.ResponseWriter, *http.Request, []byte) {})

	_, err := client.CreateHTTPJob(context.Background(), HTTPJob{Name: "x", URL: "https://example.com"})
	assert.Error(t, err)
	assert.Empty(t, *calls)
}

func TestClient_ListJobs(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		_ = json.NewEncoder(w).Encode(cloudscheduler.ListJobsResponse{Jobs: []*cloudscheduler.Job{
			{Name: "projects/proj-1/locations/us-central1/jobs/a", Schedule: "* * * * *", State: "PAUSED"},
		}})
	})

	jobs, err := client.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "PAUSED", jobs[0].State)
}

func TestClient_RunAndDeleteJob(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		_ = json.NewEncoder(w).Encode(cloudscheduler.Job{Name: "projects/proj-1/locations/us-central1/jobs/a"})
	})
	ctx := context.Background()

	_, err := client.RunJob(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, client.DeleteJob(ctx, "a"))

	require.Len(t, *calls, 2)
	assert.Equal(t, "/v1/projects/proj-1/locations/us-central1/jobs/a:run", (*calls)[0].path)
	assert.Equal(t, http.MethodDelete, (*calls)[1].method)
}
