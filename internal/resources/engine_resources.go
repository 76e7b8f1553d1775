package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/sheetsdb"
)

// Resource URIs.
const (
	ConfigURI   = "engine://config"
	DBSchemaURI = "engine://db/schema"
)

// RegisterEngineResources registers the config and database schema resources.
func RegisterEngineResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	configResource := mcp.NewResource(
		ConfigURI,
		"Engine Configuration",
		mcp.WithResourceDescription("Owner, project, location and auto-share settings the tools act with"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(configResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonContents(request.Params.URI, configView(sc))
	})

	schemaResource := mcp.NewResource(
		DBSchemaURI,
		"Database Schema",
		mcp.WithResourceDescription("Tables and columns of the spreadsheet database used by the db_* tools"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(schemaResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonContents(request.Params.URI, schemaView(sheetsdb.DefaultSchema()))
	})

	return nil
}

type autoShareView struct {
	Enabled bool   `json:"enabled"`
	Role    string `json:"role"`
	Notify  bool   `json:"notify"`
}

type engineConfigView struct {
	OwnerEmail    string        `json:"ownerEmail"`
	ProjectID     string        `json:"projectId,omitempty"`
	Location      string        `json:"location"`
	StorageBucket string        `json:"storageBucket,omitempty"`
	VertexModel   string        `json:"vertexModel"`
	Credentials   string        `json:"credentials"`
	AutoShare     autoShareView `json:"autoShare"`
	Valid         bool          `json:"valid"`
	Problem       string        `json:"problem,omitempty"`
}

// configView leaves out the key path. Only its kind is reported.
func configView(sc *server.ServerContext) engineConfigView {
	cfg := sc.Config()
	view := engineConfigView{
		OwnerEmail:    cfg.OwnerEmail,
		ProjectID:     cfg.ProjectID,
		Location:      cfg.Location,
		StorageBucket: cfg.StorageBucket,
		VertexModel:   cfg.VertexModel,
		Credentials:   "application-default",
		AutoShare: autoShareView{
			Enabled: cfg.AutoShare.Enabled,
			Role:    cfg.AutoShare.Role,
			Notify:  cfg.AutoShare.SendNotificationEmail,
		},
		Valid: true,
	}
	if cfg.CredentialsPath != "" {
		view.Credentials = "service-account-key"
	}
	if err := cfg.Validate(); err != nil {
		view.Valid = false
		view.Problem = err.Error()
	}
	return view
}

type tableView struct {
	Name      string   `json:"name"`
	Columns   []string `json:"columns"`
	DataRange string   `json:"dataRange"`
}

func schemaView(schema []sheetsdb.Table) []tableView {
	out := make([]tableView, len(schema))
	for i, t := range schema {
		out[i] = tableView{Name: t.Name, Columns: t.Columns, DataRange: t.DataRange()}
	}
	return out
}

func jsonContents(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
