package cloud_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/bigquery"
	"github.com/teemow/automation-engine/internal/firestore"
	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/tools/common"
)

const (
	defaultDocumentLimit = 50
	defaultQueryRows     = 1000
)

func registerDataTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getDocumentTool := mcp.NewTool("firestore_get_document",
		mcp.WithDescription("Read a Firestore document from the default database"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection path, e.g. executions or tenants/t-1/jobs"),
		),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("Document ID"),
		),
	)
	s.AddTool(getDocumentTool, common.InstrumentedToolHandlerWithService("firestore_get_document",
		instrumentation.ServiceFirestore, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetDocument(ctx, request, sc)
		}))

	listDocumentsTool := mcp.NewTool("firestore_list_documents",
		mcp.WithDescription("List documents of a Firestore collection"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection path"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of documents (default: %d)", defaultDocumentLimit)),
		),
	)
	s.AddTool(listDocumentsTool, common.InstrumentedToolHandlerWithService("firestore_list_documents",
		instrumentation.ServiceFirestore, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListDocuments(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	setDocumentTool := mcp.NewTool("firestore_set_document",
		mcp.WithDescription("Create or replace a Firestore document"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection path"),
		),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("Document ID"),
		),
		mcp.WithString("fields",
			mcp.Required(),
			mcp.Description(`Document fields as a JSON object, e.g. {"status":"running","progress":45}`),
		),
	)
	s.AddTool(setDocumentTool, common.InstrumentedToolHandlerWithService("firestore_set_document",
		instrumentation.ServiceFirestore, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSetDocument(ctx, request, sc)
		}))

	deleteDocumentTool := mcp.NewTool("firestore_delete_document",
		mcp.WithDescription("Delete a Firestore document"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection path"),
		),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("Document ID"),
		),
	)
	s.AddTool(deleteDocumentTool, common.InstrumentedToolHandlerWithService("firestore_delete_document",
		instrumentation.ServiceFirestore, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteDocument(ctx, request, sc)
		}))

	// Queries may run DML and always spend quota, so they are write tools.
	queryTool := mcp.NewTool("bigquery_query",
		mcp.WithDescription("Run a standard SQL query in BigQuery and return the rows"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Standard SQL, e.g. SELECT tenant_id, COUNT(*) FROM analytics.executions GROUP BY 1"),
		),
		mcp.WithNumber("maxRows",
			mcp.Description(fmt.Sprintf("Maximum number of rows to return (default: %d)", defaultQueryRows)),
		),
		mcp.WithNumber("timeoutSeconds",
			mcp.Description(fmt.Sprintf("How long to wait for the query (default: %d)", int(bigquery.DefaultQueryTimeout.Seconds()))),
		),
	)
	s.AddTool(queryTool, common.InstrumentedToolHandlerWithService("bigquery_query",
		instrumentation.ServiceBigQuery, instrumentation.OperationQuery, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleQuery(ctx, request, sc)
		}))

	insertRowsTool := mcp.NewTool("bigquery_insert_rows",
		mcp.WithDescription("Stream rows into a BigQuery table"),
		mcp.WithString("dataset",
			mcp.Required(),
			mcp.Description("Dataset ID"),
		),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("Table ID"),
		),
		mcp.WithString("rows",
			mcp.Required(),
			mcp.Description(`Rows as a JSON array of objects, e.g. [{"metric":"cpu_usage","value":0.75}]`),
		),
	)
	s.AddTool(insertRowsTool, common.InstrumentedToolHandlerWithService("bigquery_insert_rows",
		instrumentation.ServiceBigQuery, instrumentation.OperationAppend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleInsertRows(ctx, request, sc)
		}))

	return nil
}

func documentArgs(args map[string]interface{}) (string, string, error) {
	collection, err := common.RequiredString(args, "collection")
	if err != nil {
		return "", "", err
	}
	id, err := common.RequiredString(args, "documentId")
	if err != nil {
		return "", "", err
	}
	return collection, id, nil
}

func handleGetDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	collection, id, err := documentArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.Firestore()
	if err != nil {
		return common.ErrorResult("create firestore client", err)
	}

	var doc *firestore.Document
	err = observe(ctx, sc, instrumentation.ServiceFirestore, instrumentation.OperationGet, collection+"/"+id, func(ctx context.Context) error {
		var err error
		doc, err = client.Get(ctx, collection, id)
		return err
	})
	if err != nil {
		return common.ErrorResult("get document", err)
	}
	return common.JSONResult("", doc)
}

func handleListDocuments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	collection, err := common.RequiredString(args, "collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := common.OptionalInt(args, "limit", defaultDocumentLimit)
	client, err := sc.Firestore()
	if err != nil {
		return common.ErrorResult("create firestore client", err)
	}

	var docs []*firestore.Document
	err = observe(ctx, sc, instrumentation.ServiceFirestore, instrumentation.OperationList, collection, func(ctx context.Context) error {
		var err error
		docs, err = client.List(ctx, collection, limit)
		return err
	})
	if err != nil {
		return common.ErrorResult("list documents", err)
	}
	return common.JSONResult("", map[string]interface{}{
		"collection": collection,
		"count":      len(docs),
		"documents":  docs,
	})
}

func handleSetDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	collection, id, err := documentArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, err := common.Object(args, "fields")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.Firestore()
	if err != nil {
		return common.ErrorResult("create firestore client", err)
	}

	var doc *firestore.Document
	err = observe(ctx, sc, instrumentation.ServiceFirestore, instrumentation.OperationUpdate, collection+"/"+id, func(ctx context.Context) error {
		var err error
		doc, err = client.Set(ctx, collection, id, fields)
		return err
	})
	if err != nil {
		return common.ErrorResult("write document", err)
	}
	return common.JSONResult("Document written", doc)
}

func handleDeleteDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	collection, id, err := documentArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.Firestore()
	if err != nil {
		return common.ErrorResult("create firestore client", err)
	}

	err = observe(ctx, sc, instrumentation.ServiceFirestore, instrumentation.OperationDelete, collection+"/"+id, func(ctx context.Context) error {
		return client.Delete(ctx, collection, id)
	})
	if err != nil {
		return common.ErrorResult("delete document", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Document deleted: %s/%s", collection, id)), nil
}

func handleQuery(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	query, err := common.RequiredString(args, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxRows := common.OptionalInt(args, "maxRows", defaultQueryRows)
	timeout := time.Duration(common.OptionalInt(args, "timeoutSeconds", int(bigquery.DefaultQueryTimeout.Seconds()))) * time.Second
	client, err := sc.BigQuery()
	if err != nil {
		return common.ErrorResult("create bigquery client", err)
	}

	var result *bigquery.Result
	err = observe(ctx, sc, instrumentation.ServiceBigQuery, instrumentation.OperationQuery, "", func(ctx context.Context) error {
		var err error
		result, err = client.Query(ctx, query, maxRows, timeout)
		return err
	})
	if err != nil {
		return common.ErrorResult("run query", err)
	}
	return common.JSONResult("", map[string]interface{}{
		"jobId":   result.JobID,
		"columns": result.Columns,
		"count":   len(result.Rows),
		"rows":    result.Rows,
	})
}

func handleInsertRows(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	dataset, err := common.RequiredString(args, "dataset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	table, err := common.RequiredString(args, "table")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, err := common.Objects(args, "rows")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.BigQuery()
	if err != nil {
		return common.ErrorResult("create bigquery client", err)
	}

	var rejected []bigquery.InsertError
	err = observe(ctx, sc, instrumentation.ServiceBigQuery, instrumentation.OperationAppend, dataset+"."+table, func(ctx context.Context) error {
		var err error
		rejected, err = client.InsertRows(ctx, dataset, table, rows, nil)
		return err
	})
	if err != nil {
		return common.ErrorResult("insert rows", err)
	}

	summary := map[string]interface{}{
		"table":    dataset + "." + table,
		"inserted": len(rows) - len(rejected),
		"rejected": rejected,
	}
	if len(rejected) > 0 {
		result, _ := common.JSONResult("Some rows were rejected", summary)
		result.IsError = true
		return result, nil
	}
	return common.JSONResult("Rows inserted", summary)
}
