package cloud_tools

import (
	"context"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/server"
)

// RegisterCloudTools registers the Cloud tools with the MCP server.
func RegisterCloudTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	for _, register := range []func(*mcpserver.MCPServer, *server.ServerContext, bool) error{
		registerStorageTools,
		registerPubSubTools,
		registerSchedulerTools,
		registerSecretTools,
		registerDataTools,
		registerPlatformTools,
	} {
		if err := register(s, sc, readOnly); err != nil {
			return err
		}
	}
	return nil
}

// observe runs call as a Google API operation of service.
func observe(ctx context.Context, sc *server.ServerContext, service, operation, resourceID string, call func(context.Context) error) error {
	return sc.Services().Observe(ctx, service, operation, resourceID, call)
}
