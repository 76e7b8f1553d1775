package cloud_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/serviceusage"
	"github.com/teemow/automation-engine/internal/setup"
	"github.com/teemow/automation-engine/internal/tools/common"
	"github.com/teemow/automation-engine/internal/vertex"
)

// registerPlatformTools registers the API status tools and Vertex AI
// generation.
func registerPlatformTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	statusTool := mcp.NewTool("api_status",
		mcp.WithDescription("Report which of the Google APIs the engine needs are enabled on the project"),
	)
	s.AddTool(statusTool, common.InstrumentedToolHandlerWithService("api_status",
		instrumentation.ServiceServiceUsage, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAPIStatus(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	enableTool := mcp.NewTool("api_enable",
		mcp.WithDescription("Enable Google APIs on the project"),
		mcp.WithString("apis",
			mcp.Description("Comma-separated service names, e.g. 'drive.googleapis.com' (default: all required APIs that are disabled)"),
		),
	)
	s.AddTool(enableTool, common.InstrumentedToolHandlerWithService("api_enable",
		instrumentation.ServiceServiceUsage, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAPIEnable(ctx, request, sc)
		}))

	generateTool := mcp.NewTool("vertex_generate",
		mcp.WithDescription("Generate text with a Gemini model on Vertex AI"),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("The prompt"),
		),
		mcp.WithString("model",
			mcp.Description("Model name (default: VERTEX_MODEL)"),
		),
		mcp.WithString("systemInstruction",
			mcp.Description("Optional system instruction"),
		),
		mcp.WithNumber("temperature",
			mcp.Description("Sampling temperature between 0 and 2"),
		),
		mcp.WithNumber("maxOutputTokens",
			mcp.Description("Maximum number of tokens to generate"),
		),
	)
	s.AddTool(generateTool, common.InstrumentedToolHandlerWithService("vertex_generate",
		instrumentation.ServiceVertex, instrumentation.OperationGenerate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGenerate(ctx, request, sc)
		}))

	return nil
}

func apiStates(ctx context.Context, sc *server.ServerContext, client *serviceusage.Client) ([]serviceusage.APIState, error) {
	var states []serviceusage.APIState
	err := observe(ctx, sc, instrumentation.ServiceServiceUsage, instrumentation.OperationGet, "", func(ctx context.Context) error {
		var err error
		states, err = client.States(ctx, setup.RequiredAPINames())
		return err
	})
	return states, err
}

func handleAPIStatus(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, err := sc.ServiceUsage()
	if err != nil {
		return common.ErrorResult("create service usage client", err)
	}
	states, err := apiStates(ctx, sc, client)
	if err != nil {
		return common.ErrorResult("check APIs", err)
	}

	var disabled []string
	for _, s := range states {
		if !s.Enabled {
			disabled = append(disabled, s.Name)
		}
	}
	return common.JSONResult("", map[string]interface{}{
		"project":  sc.Config().ProjectID,
		"apis":     states,
		"disabled": disabled,
	})
}

func handleAPIEnable(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, err := sc.ServiceUsage()
	if err != nil {
		return common.ErrorResult("create service usage client", err)
	}

	apis := common.ParseCommaList(common.OptionalString(request.GetArguments(), "apis", ""))
	if len(apis) == 0 {
		states, err := apiStates(ctx, sc, client)
		if err != nil {
			return common.ErrorResult("check APIs", err)
		}
		for _, s := range states {
			if !s.Enabled {
				apis = append(apis, s.Name)
			}
		}
	}
	if len(apis) == 0 {
		return mcp.NewToolResultText("All required APIs are already enabled"), nil
	}

	var ops []string
	err = observe(ctx, sc, instrumentation.ServiceServiceUsage, instrumentation.OperationUpdate, "", func(ctx context.Context) error {
		var err error
		ops, err = client.Enable(ctx, apis)
		return err
	})
	if err != nil {
		return common.ErrorResult("enable APIs", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Enabling %s (operations: %s). This can take a few minutes.",
		strings.Join(apis, ", "), strings.Join(ops, ", "))), nil
}

func handleGenerate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	prompt, err := common.RequiredString(args, "prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := vertex.GenerateOptions{
		Model:             common.OptionalString(args, "model", ""),
		SystemInstruction: common.OptionalString(args, "systemInstruction", ""),
		MaxOutputTokens:   int32(common.OptionalInt(args, "maxOutputTokens", 0)),
	}
	if t, ok := args["temperature"].(float64); ok {
		if t < 0 || t > 2 {
			return mcp.NewToolResultError("temperature must be between 0 and 2"), nil
		}
		temp := float32(t)
		opts.Temperature = &temp
	}

	client, err := sc.Vertex()
	if err != nil {
		return common.ErrorResult("create Vertex AI client", err)
	}

	var result *vertex.Result
	err = observe(ctx, sc, instrumentation.ServiceVertex, instrumentation.OperationGenerate, "", func(ctx context.Context) error {
		var err error
		result, err = client.Generate(ctx, prompt, opts)
		return err
	})
	if err != nil {
		return common.ErrorResult("generate content", err)
	}
	return common.JSONResult("", result)
}
