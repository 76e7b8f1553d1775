package drive_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/config"
	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/tools/batch"
	"github.com/teemow/automation-engine/internal/tools/common"
)

// registerShareTools registers file sharing and permission management tools
func registerShareTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listPermissionsTool := mcp.NewTool("drive_list_permissions",
		mcp.WithDescription("List all permissions for a file in Google Drive"),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
	)
	s.AddTool(listPermissionsTool, common.InstrumentedToolHandlerWithService("drive_list_permissions",
		instrumentation.ServiceDrive, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListPermissions(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	shareFilesTool := mcp.NewTool("drive_share_files",
		mcp.WithDescription("Share one or more existing files with a user. The recipient is notified by e-mail."),
		mcp.WithString("fileIds",
			mcp.Required(),
			mcp.Description("File ID (string) or array of file IDs to share"),
		),
		mcp.WithString("emailAddress",
			mcp.Description("Email address of the recipient (default: the configured owner)"),
		),
		mcp.WithString("role",
			mcp.Description(fmt.Sprintf("The role to grant: %s (default: %s)", strings.Join(config.ValidRoles, ", "), config.DefaultRole)),
		),
	)
	s.AddTool(shareFilesTool, common.InstrumentedToolHandlerWithService("drive_share_files",
		instrumentation.ServiceDrive, instrumentation.OperationShare, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleShareFiles(ctx, request, sc)
		}))

	shareWithOwnerTool := mcp.NewTool("drive_share_with_owner",
		mcp.WithDescription("Repeat the automatic owner grant for resources created earlier, e.g. after a failed auto-share. No notification is sent unless configured."),
		mcp.WithString("fileIds",
			mcp.Required(),
			mcp.Description("File, spreadsheet or document ID (string) or array of IDs"),
		),
	)
	s.AddTool(shareWithOwnerTool, common.InstrumentedToolHandlerWithService("drive_share_with_owner",
		instrumentation.ServiceDrive, instrumentation.OperationShare, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleShareWithOwner(ctx, request, sc)
		}))

	removePermissionTool := mcp.NewTool("drive_remove_permission",
		mcp.WithDescription("Remove a permission from a file in Google Drive"),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
		mcp.WithString("permissionId",
			mcp.Required(),
			mcp.Description("The ID of the permission to remove (get this from drive_list_permissions)"),
		),
	)
	s.AddTool(removePermissionTool, common.InstrumentedToolHandlerWithService("drive_remove_permission",
		instrumentation.ServiceDrive, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRemovePermission(ctx, request, sc)
		}))

	return nil
}

func handleListPermissions(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, err := common.RequiredString(request.GetArguments(), "fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	permissions, err := sc.Services().ListPermissions(ctx, fileID)
	if err != nil {
		return common.ErrorResult("list permissions", err)
	}
	return common.JSONResult("", permissions)
}

func handleShareFiles(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileIDs, err := batch.ParseStringOrArray(args["fileIds"], "fileIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	role := common.OptionalString(args, "role", config.DefaultRole)
	if !config.IsValidRole(role) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid role %q, must be one of: %s", role, strings.Join(config.ValidRoles, ", "))), nil
	}
	email := common.OptionalString(args, "emailAddress", "")

	results := batch.ProcessBatch(ctx, fileIDs, func(ctx context.Context, fileID string) (string, error) {
		permission, err := sc.Services().ShareExistingFile(ctx, fileID, email, role)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("File %s shared as %s (permission %s)", fileID, permission.Role, permission.ID), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleShareWithOwner(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileIDs, err := batch.ParseStringOrArray(request.GetArguments()["fileIds"], "fileIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sharer := sc.Services().Sharer()
	if err := sharer.Validate(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("auto-share is not usable: %v", err)), nil
	}
	if !sharer.Enabled() {
		return mcp.NewToolResultError("auto-share is disabled (AUTO_SHARE_ENABLED=false)"), nil
	}

	results := batch.ProcessBatch(ctx, fileIDs, func(ctx context.Context, fileID string) (string, error) {
		permission := sharer.Share(ctx, fileID)
		if permission == nil {
			return "", fmt.Errorf("grant failed, see server log")
		}
		return fmt.Sprintf("Owner granted %s on %s", permission.Role, fileID), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleRemovePermission(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID, err := common.RequiredString(args, "fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	permissionID, err := common.RequiredString(args, "permissionId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := sc.Services().RemovePermission(ctx, fileID, permissionID); err != nil {
		return common.ErrorResult("remove permission", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Permission %s removed successfully from file %s", permissionID, fileID)), nil
}
