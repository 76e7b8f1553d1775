package drive_tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/drive"
	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/services"
	"github.com/teemow/automation-engine/internal/tools/batch"
	"github.com/teemow/automation-engine/internal/tools/common"
)

// maxDownloadBytes caps how much file content a single download returns.
const maxDownloadBytes = 1 << 20

// registerFileTools registers file management tools
func registerFileTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listFilesTool := mcp.NewTool("drive_list_files",
		mcp.WithDescription("List files in Google Drive with optional filtering"),
		mcp.WithString("query",
			mcp.Description("Query in Google Drive's query language (e.g., \"name contains 'report'\", \"mimeType='application/pdf'\")"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description(fmt.Sprintf("Maximum number of files to return (default: %d, max: 1000)", services.DefaultPageSize)),
		),
		mcp.WithString("orderBy",
			mcp.Description("Sort order (e.g., 'folder,modifiedTime desc,name')"),
		),
		mcp.WithBoolean("includeTrashed",
			mcp.Description("Include trashed files in results (default: false)"),
		),
		mcp.WithString("pageToken",
			mcp.Description("Page token for retrieving the next page of results"),
		),
	)
	s.AddTool(listFilesTool, common.InstrumentedToolHandlerWithService("drive_list_files",
		instrumentation.ServiceDrive, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListFiles(ctx, request, sc)
		}))

	getFilesTool := mcp.NewTool("drive_get_files",
		mcp.WithDescription("Get metadata for one or more files in Google Drive"),
		mcp.WithString("fileIds",
			mcp.Required(),
			mcp.Description("File ID (string) or array of file IDs to retrieve"),
		),
	)
	s.AddTool(getFilesTool, common.InstrumentedToolHandlerWithService("drive_get_files",
		instrumentation.ServiceDrive, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetFiles(ctx, request, sc)
		}))

	downloadFileTool := mcp.NewTool("drive_download_file",
		mcp.WithDescription("Download the content of a binary file from Google Drive (Google Docs, Sheets and Slides must be read with their own tools)"),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
		mcp.WithBoolean("asBase64",
			mcp.Description("Return content as base64-encoded string (default: false)"),
		),
	)
	s.AddTool(downloadFileTool, common.InstrumentedToolHandlerWithService("drive_download_file",
		instrumentation.ServiceDrive, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDownloadFile(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	uploadFileTool := mcp.NewTool("drive_upload_file",
		mcp.WithDescription("Upload a file to Google Drive. The new file is shared with the configured owner."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The name of the file"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The file content (plain text, or base64 when isBase64 is true)"),
		),
		mcp.WithString("mimeType",
			mcp.Description(fmt.Sprintf("The MIME type of the file (default: %s)", services.DefaultUploadMimeType)),
		),
		mcp.WithString("parentId",
			mcp.Description("ID of the folder to place the file in"),
		),
		mcp.WithBoolean("isBase64",
			mcp.Description("Whether the content is base64-encoded (default: false)"),
		),
	)
	s.AddTool(uploadFileTool, common.InstrumentedToolHandlerWithService("drive_upload_file",
		instrumentation.ServiceDrive, instrumentation.OperationUpload, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUploadFile(ctx, request, sc)
		}))

	createFileTool := mcp.NewTool("drive_create_file",
		mcp.WithDescription("Create an empty file of any MIME type, e.g. a Google Form or Slides deck. The new file is shared with the configured owner."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The name of the file"),
		),
		mcp.WithString("mimeType",
			mcp.Required(),
			mcp.Description("The MIME type (e.g., 'application/vnd.google-apps.form', 'application/vnd.google-apps.presentation')"),
		),
		mcp.WithString("parentId",
			mcp.Description("ID of the folder to place the file in"),
		),
	)
	s.AddTool(createFileTool, common.InstrumentedToolHandlerWithService("drive_create_file",
		instrumentation.ServiceDrive, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateFile(ctx, request, sc)
		}))

	deleteFilesTool := mcp.NewTool("drive_delete_files",
		mcp.WithDescription("Permanently delete one or more files from Google Drive"),
		mcp.WithString("fileIds",
			mcp.Required(),
			mcp.Description("File ID (string) or array of file IDs to delete"),
		),
	)
	s.AddTool(deleteFilesTool, common.InstrumentedToolHandlerWithService("drive_delete_files",
		instrumentation.ServiceDrive, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteFiles(ctx, request, sc)
		}))

	return nil
}

func handleListFiles(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	options := &drive.ListOptions{
		Query:          common.OptionalString(args, "query", ""),
		MaxResults:     common.OptionalInt(args, "maxResults", services.DefaultPageSize),
		OrderBy:        common.OptionalString(args, "orderBy", ""),
		IncludeTrashed: common.OptionalBool(args, "includeTrashed", false),
		PageToken:      common.OptionalString(args, "pageToken", ""),
	}

	files, nextPageToken, err := sc.Services().SearchFiles(ctx, options)
	if err != nil {
		return common.ErrorResult("list files", err)
	}

	return common.JSONResult("", map[string]interface{}{
		"files":         files,
		"nextPageToken": nextPageToken,
	})
}

func handleGetFiles(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileIDs, err := batch.ParseStringOrArray(request.GetArguments()["fileIds"], "fileIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := batch.ProcessBatch(ctx, fileIDs, func(ctx context.Context, fileID string) (string, error) {
		fileInfo, err := sc.Services().GetFile(ctx, fileID)
		if err != nil {
			return "", err
		}
		jsonBytes, err := json.Marshal(fileInfo)
		if err != nil {
			return "", err
		}
		return string(jsonBytes), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleDownloadFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	fileID, err := common.RequiredString(args, "fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	reader, err := sc.Services().DownloadFile(ctx, fileID)
	if err != nil {
		return common.ErrorResult("download file", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(io.LimitReader(reader, maxDownloadBytes+1))
	if err != nil {
		return common.ErrorResult("read file content", err)
	}
	truncated := len(content) > maxDownloadBytes
	if truncated {
		content = content[:maxDownloadBytes]
	}

	var text string
	if common.OptionalBool(args, "asBase64", false) {
		text = fmt.Sprintf("File content (base64, %d bytes):\n%s", len(content), base64.StdEncoding.EncodeToString(content))
	} else {
		text = fmt.Sprintf("File content (text, %d bytes):\n%s", len(content), string(content))
	}
	if truncated {
		text += fmt.Sprintf("\n[truncated at %d bytes]", maxDownloadBytes)
	}
	return mcp.NewToolResultText(text), nil
}

func handleUploadFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, err := common.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	contentStr, ok := args["content"].(string)
	if !ok {
		return mcp.NewToolResultError("content is required"), nil
	}

	var content io.Reader = strings.NewReader(contentStr)
	if common.OptionalBool(args, "isBase64", false) {
		decoded, err := base64.StdEncoding.DecodeString(contentStr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to decode base64 content: %v", err)), nil
		}
		content = strings.NewReader(string(decoded))
	}

	fileInfo, err := sc.Services().UploadFile(ctx, name, content,
		common.OptionalString(args, "mimeType", ""),
		common.OptionalString(args, "parentId", ""))
	if err != nil {
		return common.ErrorResult("upload file", err)
	}
	return common.JSONResult("File uploaded successfully", fileInfo)
}

func handleCreateFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, err := common.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mimeType, err := common.RequiredString(args, "mimeType")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fileInfo, err := sc.Services().CreateFile(ctx, name, mimeType, common.OptionalString(args, "parentId", ""))
	if err != nil {
		return common.ErrorResult("create file", err)
	}
	return common.JSONResult("File created successfully", fileInfo)
}

func handleDeleteFiles(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileIDs, err := batch.ParseStringOrArray(request.GetArguments()["fileIds"], "fileIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := batch.ProcessBatch(ctx, fileIDs, func(ctx context.Context, fileID string) (string, error) {
		if err := sc.Services().DeleteFile(ctx, fileID); err != nil {
			return "", err
		}
		return fmt.Sprintf("File %s deleted successfully", fileID), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
