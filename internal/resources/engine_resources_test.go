package resources

import (
	"context"
	"encoding/json"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/automation-engine/internal/config"
	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/services"
)

func newTestServer(t *testing.T, cfg config.Config) *mcpserver.MCPServer {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), services.New(cfg), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithResourceCapabilities(false, false))
	require.NoError(t, RegisterEngineResources(s, sc))
	return s
}

// readResource sends resources/read and returns the text of the first content.
func readResource(t *testing.T, s *mcpserver.MCPServer, uri string) string {
	t.Helper()
	msg := `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"` + uri + `"}}`
	resp := s.HandleMessage(context.Background(), json.RawMessage(msg))

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded struct {
		Result struct {
			Contents []struct {
				URI      string `json:"uri"`
				MIMEType string `json:"mimeType"`
				Text     string `json:"text"`
			} `json:"contents"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	require.Nil(t, decoded.Error, string(raw))
	require.Len(t, decoded.Result.Contents, 1)
	assert.Equal(t, uri, decoded.Result.Contents[0].URI)
	assert.Equal(t, "application/json", decoded.Result.Contents[0].MIMEType)
	return decoded.Result.Contents[0].Text
}

func TestConfigResource(t *testing.T) {
	cfg := config.Default()
	cfg.OwnerEmail = "owner@example.com"
	cfg.ProjectID = "proj-1"
	cfg.CredentialsPath = "/secret/key.json"

	text := readResource(t, newTestServer(t, cfg), ConfigURI)

	var view engineConfigView
	require.NoError(t, json.Unmarshal([]byte(text), &view))
	assert.Equal(t, "owner@example.com", view.OwnerEmail)
	assert.Equal(t, "proj-1", view.ProjectID)
	assert.Equal(t, config.DefaultLocation, view.Location)
	assert.Equal(t, "service-account-key", view.Credentials)
	assert.Equal(t, autoShareView{Enabled: true, Role: config.DefaultRole}, view.AutoShare)
	assert.True(t, view.Valid)
	assert.NotContains(t, text, "/secret/key.json")
}

func TestConfigResource_ReportsMissingOwner(t *testing.T) {
	text := readResource(t, newTestServer(t, config.Default()), ConfigURI)

	var view engineConfigView
	require.NoError(t, json.Unmarshal([]byte(text), &view))
	assert.False(t, view.Valid)
	assert.Contains(t, view.Problem, config.EnvOwnerEmail)
	assert.Equal(t, "application-default", view.Credentials)
}

func TestDBSchemaResource(t *testing.T) {
	text := readResource(t, newTestServer(t, config.Default()), DBSchemaURI)

	var tables []tableView
	require.NoError(t, json.Unmarshal([]byte(text), &tables))
	require.Len(t, tables, 3)
	assert.Equal(t, "executions", tables[0].Name)
	assert.Len(t, tables[0].Columns, 10)
	assert.Equal(t, "'executions'!A2:J", tables[0].DataRange)
	assert.Equal(t, "tenants", tables[1].Name)
	assert.Equal(t, "logs", tables[2].Name)
	assert.Equal(t, "'logs'!A2:F", tables[2].DataRange)
}
