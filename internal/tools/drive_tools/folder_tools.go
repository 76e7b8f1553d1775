package drive_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/drive"
	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/tools/common"
)

// registerFolderTools registers folder and move tools. All of them write.
func registerFolderTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	createFolderTool := mcp.NewTool("drive_create_folder",
		mcp.WithDescription("Create a folder in Google Drive. The folder is shared with the configured owner."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The name of the folder"),
		),
		mcp.WithString("parentId",
			mcp.Description("ID of the parent folder (default: the service account's root)"),
		),
	)
	s.AddTool(createFolderTool, common.InstrumentedToolHandlerWithService("drive_create_folder",
		instrumentation.ServiceDrive, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateFolder(ctx, request, sc)
		}))

	moveFileTool := mcp.NewTool("drive_move_file",
		mcp.WithDescription("Move or rename a file in Google Drive"),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The ID of the file to move or rename"),
		),
		mcp.WithString("newName",
			mcp.Description("The new name for the file (leave empty to keep current name)"),
		),
		mcp.WithString("addParents",
			mcp.Description("Comma-separated list of folder IDs to add as parents"),
		),
		mcp.WithString("removeParents",
			mcp.Description("Comma-separated list of folder IDs to remove as parents"),
		),
	)
	s.AddTool(moveFileTool, common.InstrumentedToolHandlerWithService("drive_move_file",
		instrumentation.ServiceDrive, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMoveFile(ctx, request, sc)
		}))

	return nil
}

func handleCreateFolder(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, err := common.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	folder, err := sc.Services().CreateFolder(ctx, name, common.OptionalString(args, "parentId", ""))
	if err != nil {
		return common.ErrorResult("create folder", err)
	}
	return common.JSONResult("Folder created successfully", folder)
}

func handleMoveFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID, err := common.RequiredString(args, "fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	options := &drive.MoveOptions{
		NewName:       common.OptionalString(args, "newName", ""),
		AddParents:    common.ParseCommaList(common.OptionalString(args, "addParents", "")),
		RemoveParents: common.ParseCommaList(common.OptionalString(args, "removeParents", "")),
	}
	if options.NewName == "" && len(options.AddParents) == 0 && len(options.RemoveParents) == 0 {
		return mcp.NewToolResultError("at least one of newName, addParents, or removeParents must be specified"), nil
	}

	fileInfo, err := sc.Services().MoveFile(ctx, fileID, options)
	if err != nil {
		return common.ErrorResult("move file", err)
	}
	return common.JSONResult("File moved/renamed successfully", fileInfo)
}
