package cloud_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/tools/common"
)

// registerSecretTools registers Secret Manager tools. Reading a secret hands
// its plaintext to the model, so even secrets_access is a write-mode tool.
func registerSecretTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	createTool := mcp.NewTool("secrets_create",
		mcp.WithDescription("Create a secret with automatic replication, optionally storing a first version"),
		mcp.WithString("secret",
			mcp.Required(),
			mcp.Description("Secret id"),
		),
		mcp.WithString("value",
			mcp.Description("Initial secret value"),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandlerWithService("secrets_create",
		instrumentation.ServiceSecrets, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateSecret(ctx, request, sc)
		}))

	addVersionTool := mcp.NewTool("secrets_add_version",
		mcp.WithDescription("Store a new version of an existing secret"),
		mcp.WithString("secret",
			mcp.Required(),
			mcp.Description("Secret id or full name"),
		),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("Secret value"),
		),
	)
	s.AddTool(addVersionTool, common.InstrumentedToolHandlerWithService("secrets_add_version",
		instrumentation.ServiceSecrets, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAddSecretVersion(ctx, request, sc)
		}))

	accessTool := mcp.NewTool("secrets_access",
		mcp.WithDescription("Read the value of a secret version"),
		mcp.WithString("secret",
			mcp.Required(),
			mcp.Description("Secret id or full name"),
		),
		mcp.WithString("version",
			mcp.Description("Version number (default: latest)"),
		),
	)
	s.AddTool(accessTool, common.InstrumentedToolHandlerWithService("secrets_access",
		instrumentation.ServiceSecrets, instrumentation.OperationAccess, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAccessSecret(ctx, request, sc)
		}))

	return nil
}

func handleCreateSecret(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	secret, err := common.RequiredString(args, "secret")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.Secrets()
	if err != nil {
		return common.ErrorResult("create secret manager client", err)
	}

	var name string
	err = observe(ctx, sc, instrumentation.ServiceSecrets, instrumentation.OperationCreate, secret, func(ctx context.Context) error {
		var err error
		name, err = client.CreateSecret(ctx, secret)
		return err
	})
	if err != nil {
		return common.ErrorResult("create secret", err)
	}

	value := common.OptionalString(args, "value", "")
	if value == "" {
		return mcp.NewToolResultText(fmt.Sprintf("Secret created: %s", name)), nil
	}

	var version string
	err = observe(ctx, sc, instrumentation.ServiceSecrets, instrumentation.OperationUpdate, secret, func(ctx context.Context) error {
		var err error
		version, err = client.AddVersion(ctx, secret, []byte(value))
		return err
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Secret %s created but storing the value failed: %v", name, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Secret created: %s", version)), nil
}

func handleAddSecretVersion(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	secret, err := common.RequiredString(args, "secret")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := common.RequiredString(args, "value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.Secrets()
	if err != nil {
		return common.ErrorResult("create secret manager client", err)
	}

	var version string
	err = observe(ctx, sc, instrumentation.ServiceSecrets, instrumentation.OperationUpdate, secret, func(ctx context.Context) error {
		var err error
		version, err = client.AddVersion(ctx, secret, []byte(value))
		return err
	})
	if err != nil {
		return common.ErrorResult("add secret version", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Version stored: %s", version)), nil
}

func handleAccessSecret(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	secret, err := common.RequiredString(args, "secret")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.Secrets()
	if err != nil {
		return common.ErrorResult("create secret manager client", err)
	}

	var data []byte
	err = observe(ctx, sc, instrumentation.ServiceSecrets, instrumentation.OperationAccess, secret, func(ctx context.Context) error {
		var err error
		data, err = client.AccessSecret(ctx, secret, common.OptionalString(args, "version", ""))
		return err
	})
	if err != nil {
		return common.ErrorResult("access secret", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
