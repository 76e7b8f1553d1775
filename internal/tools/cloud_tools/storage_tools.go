package cloud_tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/storage"
	"github.com/teemow/automation-engine/internal/tools/common"
)

const maxObjectBytes = 1 << 20

func registerStorageTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listObjectsTool := mcp.NewTool("storage_list_objects",
		mcp.WithDescription("List objects in a Cloud Storage bucket"),
		mcp.WithString("bucket",
			mcp.Description("Bucket name (default: STORAGE_BUCKET)"),
		),
		mcp.WithString("prefix",
			mcp.Description("Only list objects whose name starts with this prefix"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of objects to return (default: 100)"),
		),
	)
	s.AddTool(listObjectsTool, common.InstrumentedToolHandlerWithService("storage_list_objects",
		instrumentation.ServiceStorage, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListObjects(ctx, request, sc)
		}))

	readObjectTool := mcp.NewTool("storage_read_object",
		mcp.WithDescription("Read the content of a Cloud Storage object (up to 1 MB)"),
		mcp.WithString("bucket",
			mcp.Description("Bucket name (default: STORAGE_BUCKET)"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Object name"),
		),
		mcp.WithBoolean("asBase64",
			mcp.Description("Return the content base64 encoded (for binary objects)"),
		),
	)
	s.AddTool(readObjectTool, common.InstrumentedToolHandlerWithService("storage_read_object",
		instrumentation.ServiceStorage, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadObject(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createBucketTool := mcp.NewTool("storage_create_bucket",
		mcp.WithDescription("Create a Cloud Storage bucket with uniform bucket-level access"),
		mcp.WithString("bucket",
			mcp.Required(),
			mcp.Description("Globally unique bucket name"),
		),
		mcp.WithString("location",
			mcp.Description("Bucket location (default: US)"),
		),
	)
	s.AddTool(createBucketTool, common.InstrumentedToolHandlerWithService("storage_create_bucket",
		instrumentation.ServiceStorage, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateBucket(ctx, request, sc)
		}))

	uploadObjectTool := mcp.NewTool("storage_upload_object",
		mcp.WithDescription("Upload content to a Cloud Storage object, replacing any existing object"),
		mcp.WithString("bucket",
			mcp.Description("Bucket name (default: STORAGE_BUCKET)"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Object name"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Object content, text or base64"),
		),
		mcp.WithString("contentType",
			mcp.Description("MIME type of the content"),
		),
		mcp.WithBoolean("isBase64",
			mcp.Description("Whether content is base64 encoded"),
		),
	)
	s.AddTool(uploadObjectTool, common.InstrumentedToolHandlerWithService("storage_upload_object",
		instrumentation.ServiceStorage, instrumentation.OperationUpload, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUploadObject(ctx, request, sc)
		}))

	return nil
}

// bucketArg returns the bucket argument or the configured default bucket.
func bucketArg(args map[string]interface{}, sc *server.ServerContext) (string, error) {
	if bucket := common.OptionalString(args, "bucket", sc.Config().StorageBucket); bucket != "" {
		return bucket, nil
	}
	return "", fmt.Errorf("bucket is required (no STORAGE_BUCKET configured)")
}

func handleListObjects(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	bucket, err := bucketArg(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.Storage()
	if err != nil {
		return common.ErrorResult("create storage client", err)
	}

	var objects []*storage.ObjectInfo
	err = observe(ctx, sc, instrumentation.ServiceStorage, instrumentation.OperationList, bucket, func(ctx context.Context) error {
		var err error
		objects, err = client.ListObjects(ctx, bucket, common.OptionalString(args, "prefix", ""), common.OptionalInt(args, "maxResults", 100))
		return err
	})
	if err != nil {
		return common.ErrorResult("list objects", err)
	}
	return common.JSONResult("", map[string]interface{}{
		"bucket":  bucket,
		"count":   len(objects),
		"objects": objects,
	})
}

func handleReadObject(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	bucket, err := bucketArg(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := common.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.Storage()
	if err != nil {
		return common.ErrorResult("create storage client", err)
	}

	var content []byte
	err = observe(ctx, sc, instrumentation.ServiceStorage, instrumentation.OperationGet, bucket, func(ctx context.Context) error {
		body, err := client.DownloadObject(ctx, bucket, name)
		if err != nil {
			return err
		}
		defer body.Close()
		content, err = io.ReadAll(io.LimitReader(body, maxObjectBytes+1))
		return err
	})
	if err != nil {
		return common.ErrorResult("read object", err)
	}

	truncated := len(content) > maxObjectBytes
	if truncated {
		content = content[:maxObjectBytes]
	}
	var text string
	if common.OptionalBool(args, "asBase64", false) {
		text = fmt.Sprintf("gs://%s/%s (base64, %d bytes):\n%s", bucket, name, len(content), base64.StdEncoding.EncodeToString(content))
	} else {
		text = fmt.Sprintf("gs://%s/%s (%d bytes):\n%s", bucket, name, len(content), string(content))
	}
	if truncated {
		text += fmt.Sprintf("\n[truncated at %d bytes]", maxObjectBytes)
	}
	return mcp.NewToolResultText(text), nil
}

func handleCreateBucket(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	bucket, err := common.RequiredString(args, "bucket")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.Storage()
	if err != nil {
		return common.ErrorResult("create storage client", err)
	}

	var info *storage.BucketInfo
	err = observe(ctx, sc, instrumentation.ServiceStorage, instrumentation.OperationCreate, bucket, func(ctx context.Context) error {
		var err error
		info, err = client.CreateBucket(ctx, bucket, common.OptionalString(args, "location", ""))
		return err
	})
	if err != nil {
		return common.ErrorResult("create bucket", err)
	}
	return common.JSONResult("Bucket created successfully", info)
}

func handleUploadObject(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	bucket, err := bucketArg(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := common.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, ok := args["content"].(string)
	if !ok {
		return mcp.NewToolResultError("content is required"), nil
	}
	if common.OptionalBool(args, "isBase64", false) {
		decoded, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to decode base64 content: %v", err)), nil
		}
		content = string(decoded)
	}
	client, err := sc.Storage()
	if err != nil {
		return common.ErrorResult("create storage client", err)
	}

	var info *storage.ObjectInfo
	err = observe(ctx, sc, instrumentation.ServiceStorage, instrumentation.OperationUpload, bucket, func(ctx context.Context) error {
		var err error
		info, err = client.UploadObject(ctx, bucket, name, strings.NewReader(content), common.OptionalString(args, "contentType", ""))
		return err
	})
	if err != nil {
		return common.ErrorResult("upload object", err)
	}
	return common.JSONResult("Object uploaded successfully", info)
}
