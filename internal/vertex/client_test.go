package vertex

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cloud.google.com/go/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken struct{}

func (staticToken) Token(context.Context) (*auth.Token, error) {
	return &auth.Token{Value: "test-token", Type: "Bearer", Expiry: time.Now().Add(time.Hour)}, nil
}

func testCredentials() *auth.Credentials {
	return auth.NewCredentials(&auth.CredentialsOptions{TokenProvider: staticToken{}})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), Config{
		ProjectID:   "proj-1",
		Location:    "us-central1",
		Model:       "gemini-2.5-flash",
		Credentials: testCredentials(),
		HTTPClient:  srv.Client(),
		BaseURL:     srv.URL + "/",
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Location: "us-central1", Model: "m", Credentials: testCredentials()})
	assert.Error(t, err)
	_, err = NewClient(context.Background(), Config{ProjectID: "p", Location: "us-central1", Credentials: testCredentials()})
	assert.Error(t, err)
}

func TestClient_Generate(t *testing.T) {
	var path string
	var raw map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "Hello "}, {"text": "there"}]}}],
			"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 2, "totalTokenCount": 5}
		}`))
	})

	result, err := client.Generate(context.Background(), "Say hello", GenerateOptions{SystemInstruction: "Be brief"})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", result.Text)
	assert.Equal(t, "gemini-2.5-flash", result.Model)
	assert.Equal(t, int32(5), result.TotalTokens)
	assert.Equal(t, int32(2), result.OutputTokens)

	assert.Contains(t, path, "projects/proj-1/locations/us-central1/publishers/google/models/gemini-2.5-flash:generateContent")
	assert.Contains(t, raw, "contents")
	assert.Contains(t, raw, "systemInstruction")
}

func TestClient_GenerateModelOverride(t *testing.T) {
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`))
	})

	result, err := client.Generate(context.Background(), "hi", GenerateOptions{Model: "gemini-2.5-pro"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", result.Model)
	assert.Contains(t, path, "models/gemini-2.5-pro:generateContent")
}

func TestClient_GenerateRequiresPrompt(t *testing.T) {
	called := false
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) { called = true })

	_, err := client.Generate(context.Background(), "  ", GenerateOptions{})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestClient_GenerateError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "invalid model", "status": "INVALID_ARGUMENT"}}`))
	})

	_, err := client.Generate(context.Background(), "hi", GenerateOptions{})
	assert.Error(t, err)
}
