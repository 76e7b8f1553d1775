package sheets_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/sheetsdb"
	"github.com/teemow/automation-engine/internal/tools/common"
)

var tableNames = strings.Join([]string{sheetsdb.TableExecutions, sheetsdb.TableTenants, sheetsdb.TableLogs}, ", ")

func registerDatabaseTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	queryTool := mcp.NewTool("db_query",
		mcp.WithDescription("Read rows from a database table"),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the database spreadsheet"),
		),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("Table name: "+tableNames),
		),
		mcp.WithString("cells",
			mcp.Description("Optional A1 cells within the table, e.g. 'A2:C20'. Default: every row below the header"),
		),
	)
	s.AddTool(queryTool, common.InstrumentedToolHandlerWithService("db_query",
		instrumentation.ServiceSheets, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleQuery(ctx, request, sc)
		}))

	statsTool := mcp.NewTool("db_execution_stats",
		mcp.WithDescription("Count executions and average their durations"),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the database spreadsheet"),
		),
	)
	s.AddTool(statsTool, common.InstrumentedToolHandlerWithService("db_execution_stats",
		instrumentation.ServiceSheets, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleExecutionStats(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createTool := mcp.NewTool("db_create",
		mcp.WithDescription("Create a database spreadsheet with the executions, tenants and logs tables. It is shared with the configured owner."),
		mcp.WithString("title",
			mcp.Description("Spreadsheet title (default: 'Automation Database - <date>')"),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandlerWithService("db_create",
		instrumentation.ServiceSheets, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateDatabase(ctx, request, sc)
		}))

	insertTool := mcp.NewTool("db_insert",
		mcp.WithDescription("Append rows to a database table. Columns follow the table header."),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the database spreadsheet"),
		),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("Table name: "+tableNames),
		),
		mcp.WithString("rows",
			mcp.Required(),
			mcp.Description(valuesDescription),
		),
	)
	s.AddTool(insertTool, common.InstrumentedToolHandlerWithService("db_insert",
		instrumentation.ServiceSheets, instrumentation.OperationAppend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleInsert(ctx, request, sc)
		}))

	logTool := mcp.NewTool("db_log",
		mcp.WithDescription("Append an entry to the logs table. The timestamp is set by the server."),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the database spreadsheet"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Log message"),
		),
		mcp.WithString("level",
			mcp.Description("DEBUG, INFO, WARN or ERROR (default: INFO)"),
		),
		mcp.WithString("tenantId",
			mcp.Description("Tenant the entry belongs to"),
		),
		mcp.WithString("details",
			mcp.Description("Free-form details"),
		),
		mcp.WithString("source",
			mcp.Description("Component that produced the entry"),
		),
	)
	s.AddTool(logTool, common.InstrumentedToolHandlerWithService("db_log",
		instrumentation.ServiceSheets, instrumentation.OperationAppend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleLog(ctx, request, sc)
		}))

	tenantTool := mcp.NewTool("db_add_tenant",
		mcp.WithDescription("Add a tenant to the tenants table. The id and creation time are set by the server."),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the database spreadsheet"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Tenant name"),
		),
		mcp.WithString("status",
			mcp.Description("Tenant status (default: active)"),
		),
		mcp.WithNumber("quotaLimit",
			mcp.Description("Execution quota (default: 0, unlimited)"),
		),
		mcp.WithString("settings",
			mcp.Description("Free-form settings, typically JSON"),
		),
	)
	s.AddTool(tenantTool, common.InstrumentedToolHandlerWithService("db_add_tenant",
		instrumentation.ServiceSheets, instrumentation.OperationAppend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAddTenant(ctx, request, sc)
		}))

	deleteRowsTool := mcp.NewTool("db_delete_rows",
		mcp.WithDescription("Delete rows from a database table. Row numbers are 1-based and the header row 1 is protected."),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the database spreadsheet"),
		),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("Table name: "+tableNames),
		),
		mcp.WithNumber("startRow",
			mcp.Required(),
			mcp.Description("First row to delete (2 or greater)"),
		),
		mcp.WithNumber("endRow",
			mcp.Description("Last row to delete, inclusive (default: startRow)"),
		),
	)
	s.AddTool(deleteRowsTool, common.InstrumentedToolHandlerWithService("db_delete_rows",
		instrumentation.ServiceSheets, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteRows(ctx, request, sc)
		}))

	return nil
}

// openDatabase opens the database named by the spreadsheetId argument.
func openDatabase(args map[string]interface{}, sc *server.ServerContext) (*sheetsdb.DB, error) {
	spreadsheetID, err := common.RequiredString(args, "spreadsheetId")
	if err != nil {
		return nil, err
	}
	return sheetsdb.Open(sc.Services(), spreadsheetID, sheetsdb.DefaultSchema())
}

func handleQuery(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	db, err := openDatabase(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	table, err := common.RequiredString(args, "table")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rows, err := db.Query(ctx, table, common.OptionalString(args, "cells", ""))
	if err != nil {
		return common.ErrorResult("query "+table, err)
	}
	return common.JSONResult("", map[string]interface{}{
		"table": table,
		"count": len(rows),
		"rows":  rows,
	})
}

func handleExecutionStats(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	db, err := openDatabase(request.GetArguments(), sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	stats, err := db.ExecutionStats(ctx)
	if err != nil {
		return common.ErrorResult("compute execution stats", err)
	}
	return common.JSONResult("", stats)
}

func handleCreateDatabase(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	title := common.OptionalString(request.GetArguments(), "title", "")

	db, err := sheetsdb.Create(ctx, sc.Services(), title, sheetsdb.DefaultSchema())
	if err != nil {
		return common.ErrorResult("create database", err)
	}
	return common.JSONResult("Database created successfully", map[string]string{
		"spreadsheetId": db.SpreadsheetID(),
		"url":           db.URL(),
	})
}

func handleInsert(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	db, err := openDatabase(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	table, err := common.RequiredString(args, "table")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, err := common.Values(args, "rows")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := db.Insert(ctx, table, rows)
	if err != nil {
		return common.ErrorResult("insert into "+table, err)
	}
	return common.JSONResult(fmt.Sprintf("Inserted %d rows into %s", len(rows), table), result)
}

func handleLog(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	db, err := openDatabase(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	message, err := common.RequiredString(args, "message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	level := strings.ToUpper(common.OptionalString(args, "level", sheetsdb.LevelInfo))
	switch level {
	case sheetsdb.LevelDebug, sheetsdb.LevelInfo, sheetsdb.LevelWarn, sheetsdb.LevelError:
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid level %q", level)), nil
	}

	err = db.AppendLogs(ctx, sheetsdb.LogEntry{
		Level:    level,
		TenantID: common.OptionalString(args, "tenantId", ""),
		Message:  message,
		Details:  common.OptionalString(args, "details", ""),
		Source:   common.OptionalString(args, "source", ""),
	})
	if err != nil {
		return common.ErrorResult("append log entry", err)
	}
	return mcp.NewToolResultText("Log entry appended"), nil
}

func handleAddTenant(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	db, err := openDatabase(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := common.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tenants, err := db.InsertTenants(ctx, sheetsdb.Tenant{
		Name:       name,
		Status:     common.OptionalString(args, "status", "active"),
		QuotaLimit: int64(common.OptionalInt(args, "quotaLimit", 0)),
		Settings:   common.OptionalString(args, "settings", ""),
	})
	if err != nil {
		return common.ErrorResult("add tenant", err)
	}
	return common.JSONResult("Tenant added", tenants[0])
}

func handleDeleteRows(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	db, err := openDatabase(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	table, err := common.RequiredString(args, "table")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	startRow := common.OptionalInt(args, "startRow", 0)
	endRow := common.OptionalInt(args, "endRow", startRow)

	if err := db.DeleteRows(ctx, table, startRow, endRow); err != nil {
		return common.ErrorResult("delete rows", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted rows %d-%d from %s", startRow, endRow, table)), nil
}
