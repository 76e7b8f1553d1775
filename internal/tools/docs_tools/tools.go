package docs_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/tools/common"
)

// RegisterDocsTools registers all Google Docs-related tools with the MCP server
func RegisterDocsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	readDocumentTool := mcp.NewTool("docs_read_document",
		mcp.WithDescription("Get the plain text of a Google Doc, including all tabs"),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("The ID of the Google Doc"),
		),
	)
	s.AddTool(readDocumentTool, common.InstrumentedToolHandlerWithService("docs_read_document",
		instrumentation.ServiceDocs, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadDocument(ctx, request, sc)
		}))

	getMetadataTool := mcp.NewTool("docs_get_document_metadata",
		mcp.WithDescription("Get Drive metadata (owners, sharing, modified time) of a Google Doc"),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("The ID of the Google Doc or Drive file"),
		),
	)
	s.AddTool(getMetadataTool, common.InstrumentedToolHandlerWithService("docs_get_document_metadata",
		instrumentation.ServiceDrive, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMetadata(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createDocumentTool := mcp.NewTool("docs_create_document",
		mcp.WithDescription("Create an empty Google Doc. It is shared with the configured owner."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the new document"),
		),
		mcp.WithString("text",
			mcp.Description("Optional initial text"),
		),
	)
	s.AddTool(createDocumentTool, common.InstrumentedToolHandlerWithService("docs_create_document",
		instrumentation.ServiceDocs, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateDocument(ctx, request, sc)
		}))

	appendTextTool := mcp.NewTool("docs_append_text",
		mcp.WithDescription("Append text at the end of a Google Doc"),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("The ID of the Google Doc"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to append. Include a leading newline to start a new paragraph."),
		),
	)
	s.AddTool(appendTextTool, common.InstrumentedToolHandlerWithService("docs_append_text",
		instrumentation.ServiceDocs, instrumentation.OperationAppend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAppendText(ctx, request, sc)
		}))

	return nil
}

func handleReadDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	documentID, err := common.RequiredString(request.GetArguments(), "documentId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, err := sc.Services().ReadDocument(ctx, documentID)
	if err != nil {
		return common.ErrorResult("get document", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Document content (plain text, %d bytes):\n%s", len(content), content)), nil
}

func handleGetMetadata(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	documentID, err := common.RequiredString(request.GetArguments(), "documentId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	metadata, err := sc.Services().GetFile(ctx, documentID)
	if err != nil {
		return common.ErrorResult("get metadata", err)
	}
	return common.JSONResult("Document metadata", metadata)
}

func handleCreateDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	title, err := common.RequiredString(args, "title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := sc.Services().CreateDocument(ctx, title)
	if err != nil {
		return common.ErrorResult("create document", err)
	}

	// The document exists at this point. A failed append is reported but
	// the caller still gets the id.
	if text := common.OptionalString(args, "text", ""); text != "" {
		if err := sc.Services().AppendToDocument(ctx, doc.ID, text); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Document %s created but initial text failed: %v", doc.ID, err)), nil
		}
	}
	return common.JSONResult("Document created successfully", doc)
}

func handleAppendText(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	documentID, err := common.RequiredString(args, "documentId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, ok := args["text"].(string)
	if !ok || text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	if err := sc.Services().AppendToDocument(ctx, documentID, text); err != nil {
		return common.ErrorResult("append text", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Appended %d characters to document %s", len(text), documentID)), nil
}
