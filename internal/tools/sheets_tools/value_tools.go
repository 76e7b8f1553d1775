package sheets_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/sheets"
	"github.com/teemow/automation-engine/internal/tools/common"
)

const valuesDescription = `Rows as a JSON array of arrays, e.g. [["Name","Count"],["a",1]]`

func registerValueTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getSpreadsheetTool := mcp.NewTool("sheets_get_spreadsheet",
		mcp.WithDescription("Get the title, URL and sheets of a spreadsheet"),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
	)
	s.AddTool(getSpreadsheetTool, common.InstrumentedToolHandlerWithService("sheets_get_spreadsheet",
		instrumentation.ServiceSheets, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetSpreadsheet(ctx, request, sc)
		}))

	readValuesTool := mcp.NewTool("sheets_read_values",
		mcp.WithDescription("Read cell values from a spreadsheet range"),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range, e.g. 'Sheet1!A1:C10'"),
		),
	)
	s.AddTool(readValuesTool, common.InstrumentedToolHandlerWithService("sheets_read_values",
		instrumentation.ServiceSheets, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadValues(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createTool := mcp.NewTool("sheets_create_spreadsheet",
		mcp.WithDescription("Create a spreadsheet. It is shared with the configured owner."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the new spreadsheet"),
		),
		mcp.WithString("sheets",
			mcp.Description("Comma-separated sheet (tab) names to create instead of the default sheet"),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandlerWithService("sheets_create_spreadsheet",
		instrumentation.ServiceSheets, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateSpreadsheet(ctx, request, sc)
		}))

	writeValuesTool := mcp.NewTool("sheets_write_values",
		mcp.WithDescription("Overwrite a range with values. Values are parsed as if typed by a user."),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range of the top-left cell or the whole area, e.g. 'Sheet1!A1'"),
		),
		mcp.WithString("values",
			mcp.Required(),
			mcp.Description(valuesDescription),
		),
	)
	s.AddTool(writeValuesTool, common.InstrumentedToolHandlerWithService("sheets_write_values",
		instrumentation.ServiceSheets, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWriteValues(ctx, request, sc)
		}))

	appendValuesTool := mcp.NewTool("sheets_append_values",
		mcp.WithDescription("Append rows after the last row of the table in a range"),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range locating the table, e.g. 'Sheet1!A:C'"),
		),
		mcp.WithString("values",
			mcp.Required(),
			mcp.Description(valuesDescription),
		),
	)
	s.AddTool(appendValuesTool, common.InstrumentedToolHandlerWithService("sheets_append_values",
		instrumentation.ServiceSheets, instrumentation.OperationAppend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAppendValues(ctx, request, sc)
		}))

	batchWriteTool := mcp.NewTool("sheets_batch_write",
		mcp.WithDescription("Overwrite several ranges of a spreadsheet in one call"),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("data",
			mcp.Required(),
			mcp.Description(`JSON object mapping A1 ranges to rows, e.g. {"Sheet1!A1":[["a",1]],"Sheet2!B2":[["b"]]}`),
		),
	)
	s.AddTool(batchWriteTool, common.InstrumentedToolHandlerWithService("sheets_batch_write",
		instrumentation.ServiceSheets, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBatchWrite(ctx, request, sc)
		}))

	return nil
}

func handleGetSpreadsheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID, err := common.RequiredString(request.GetArguments(), "spreadsheetId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := sc.Services().GetSpreadsheet(ctx, spreadsheetID)
	if err != nil {
		return common.ErrorResult("get spreadsheet", err)
	}
	return common.JSONResult("", info)
}

func handleReadValues(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	spreadsheetID, err := common.RequiredString(args, "spreadsheetId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rng, err := common.RequiredString(args, "range")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	values, err := sc.Services().ReadSpreadsheet(ctx, spreadsheetID, rng)
	if err != nil {
		return common.ErrorResult("read values", err)
	}
	return common.JSONResult("", map[string]interface{}{
		"range":  rng,
		"rows":   len(values),
		"values": values,
	})
}

func handleCreateSpreadsheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	title, err := common.RequiredString(args, "title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var specs []sheets.SheetSpec
	for _, name := range common.ParseCommaList(common.OptionalString(args, "sheets", "")) {
		specs = append(specs, sheets.SheetSpec{Title: name})
	}

	info, err := sc.Services().CreateSpreadsheet(ctx, title, specs)
	if err != nil {
		return common.ErrorResult("create spreadsheet", err)
	}
	return common.JSONResult("Spreadsheet created successfully", info)
}

// rangeAndValues reads the arguments shared by the write and append tools.
func rangeAndValues(args map[string]interface{}) (string, string, [][]interface{}, error) {
	spreadsheetID, err := common.RequiredString(args, "spreadsheetId")
	if err != nil {
		return "", "", nil, err
	}
	rng, err := common.RequiredString(args, "range")
	if err != nil {
		return "", "", nil, err
	}
	values, err := common.Values(args, "values")
	if err != nil {
		return "", "", nil, err
	}
	return spreadsheetID, rng, values, nil
}

func handleWriteValues(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID, rng, values, err := rangeAndValues(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := sc.Services().WriteSpreadsheet(ctx, spreadsheetID, rng, values)
	if err != nil {
		return common.ErrorResult("write values", err)
	}
	return common.JSONResult("Values written", result)
}

func handleAppendValues(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID, rng, values, err := rangeAndValues(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := sc.Services().AppendSpreadsheet(ctx, spreadsheetID, rng, values)
	if err != nil {
		return common.ErrorResult("append values", err)
	}
	return common.JSONResult("Values appended", result)
}

func handleBatchWrite(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	spreadsheetID, err := common.RequiredString(args, "spreadsheetId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ranges, err := common.Object(args, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data := make(map[string][][]interface{}, len(ranges))
	for rng := range ranges {
		values, err := common.Values(ranges, rng)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data[rng] = values
	}

	if err := sc.Services().BatchWriteSpreadsheet(ctx, spreadsheetID, data); err != nil {
		return common.ErrorResult("batch write values", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Wrote %d ranges", len(data))), nil
}
