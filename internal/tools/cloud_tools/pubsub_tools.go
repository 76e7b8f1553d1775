package cloud_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/pubsub"
	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/tools/common"
)

func registerPubSubTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTopicsTool := mcp.NewTool("pubsub_list_topics",
		mcp.WithDescription("List the Pub/Sub topics of the project"),
	)
	s.AddTool(listTopicsTool, common.InstrumentedToolHandlerWithService("pubsub_list_topics",
		instrumentation.ServicePubSub, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListTopics(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createTopicTool := mcp.NewTool("pubsub_create_topic",
		mcp.WithDescription("Create a Pub/Sub topic"),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Topic id or full name (projects/<project>/topics/<id>)"),
		),
		mcp.WithString("labels",
			mcp.Description(`Optional labels as a JSON object, e.g. {"team":"ops"}`),
		),
	)
	s.AddTool(createTopicTool, common.InstrumentedToolHandlerWithService("pubsub_create_topic",
		instrumentation.ServicePubSub, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateTopic(ctx, request, sc)
		}))

	publishTool := mcp.NewTool("pubsub_publish",
		mcp.WithDescription("Publish a message to a Pub/Sub topic"),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Topic id or full name"),
		),
		mcp.WithString("data",
			mcp.Required(),
			mcp.Description("Message payload"),
		),
		mcp.WithString("attributes",
			mcp.Description(`Optional attributes as a JSON object, e.g. {"type":"report"}`),
		),
		mcp.WithString("orderingKey",
			mcp.Description("Optional ordering key"),
		),
	)
	s.AddTool(publishTool, common.InstrumentedToolHandlerWithService("pubsub_publish",
		instrumentation.ServicePubSub, instrumentation.OperationPublish, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handlePublish(ctx, request, sc)
		}))

	return nil
}

func handleListTopics(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, err := sc.PubSub()
	if err != nil {
		return common.ErrorResult("create pubsub client", err)
	}

	var topics []string
	err = observe(ctx, sc, instrumentation.ServicePubSub, instrumentation.OperationList, "", func(ctx context.Context) error {
		var err error
		topics, err = client.ListTopics(ctx)
		return err
	})
	if err != nil {
		return common.ErrorResult("list topics", err)
	}
	return common.JSONResult("", map[string]interface{}{
		"count":  len(topics),
		"topics": topics,
	})
}

func handleCreateTopic(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	topic, err := common.RequiredString(args, "topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	labels, err := common.StringMap(args, "labels")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.PubSub()
	if err != nil {
		return common.ErrorResult("create pubsub client", err)
	}

	var name string
	err = observe(ctx, sc, instrumentation.ServicePubSub, instrumentation.OperationCreate, topic, func(ctx context.Context) error {
		var err error
		name, err = client.CreateTopic(ctx, topic, labels)
		return err
	})
	if err != nil {
		return common.ErrorResult("create topic", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Topic created: %s", name)), nil
}

func handlePublish(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	topic, err := common.RequiredString(args, "topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, ok := args["data"].(string)
	if !ok || data == "" {
		return mcp.NewToolResultError("data is required"), nil
	}
	attributes, err := common.StringMap(args, "attributes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.PubSub()
	if err != nil {
		return common.ErrorResult("create pubsub client", err)
	}

	var ids []string
	err = observe(ctx, sc, instrumentation.ServicePubSub, instrumentation.OperationPublish, topic, func(ctx context.Context) error {
		var err error
		ids, err = client.Publish(ctx, topic, pubsub.Message{
			Data:        []byte(data),
			Attributes:  attributes,
			OrderingKey: common.OptionalString(args, "orderingKey", ""),
		})
		return err
	})
	if err != nil {
		return common.ErrorResult("publish message", err)
	}
	return common.JSONResult("Message published", map[string]interface{}{
		"topic":      client.TopicName(topic),
		"messageIds": ids,
	})
}
