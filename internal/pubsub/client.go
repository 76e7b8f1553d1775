// Package pubsub publishes messages to Cloud Pub/Sub topics over the REST API.
package pubsub

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	pubsub "google.golang.org/api/pubsub/v1"
)

// Message is a message to publish.
type Message struct {
	Data        []byte            `json:"data"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	OrderingKey string            `json:"orderingKey,omitempty"`
}

// Client is a Pub/Sub client bound to a project.
type Client struct {
	service   *pubsub.Service
	projectID string
}

// NewClient creates a Pub/Sub client for projectID.
func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	srv, err := pubsub.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create pubsub service: %w", err)
	}
	return &Client{service: srv, projectID: projectID}, nil
}

// TopicName returns the full resource name of a topic. Names that are
// already qualified are returned unchanged.
func (c *Client) TopicName(topic string) string {
	if strings.HasPrefix(topic, "projects/") {
		return topic
	}
	return fmt.Sprintf("projects/%s/topics/%s", c.projectID, topic)
}

// CreateTopic creates a topic and returns its full name.
func (c *Client) CreateTopic(ctx context.Context, topic string, labels map[string]string) (string, error) {
	if topic == "" {
		return "", fmt.Errorf("topic is required")
	}
	t, err := c.service.Projects.Topics.Create(c.TopicName(topic), &pubsub.Topic{Labels: labels}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create topic %s: %w", topic, err)
	}
	return t.Name, nil
}

// ListTopics returns the full names of the project's topics.
func (c *Client) ListTopics(ctx context.Context) ([]string, error) {
	var names []string
	err := c.service.Projects.Topics.List("projects/"+c.projectID).Pages(ctx, func(page *pubsub.ListTopicsResponse) error {
		for _, t := range page.Topics {
			names = append(names, t.Name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return names, nil
}

// Publish publishes messages to a topic and returns their server ids in order.
func (c *Client) Publish(ctx context.Context, topic string, messages ...Message) ([]string, error) {
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("at least one message is required")
	}

	req := &pubsub.PublishRequest{Messages: make([]*pubsub.PubsubMessage, 0, len(messages))}
	for _, m := range messages {
		if len(m.Data) == 0 && len(m.Attributes) == 0 {
			return nil, fmt.Errorf("message needs data or attributes")
		}
		req.Messages = append(req.Messages, &pubsub.PubsubMessage{
			Data:        base64.StdEncoding.EncodeToString(m.Data),
			Attributes:  m.Attributes,
			OrderingKey: m.OrderingKey,
		})
	}

	resp, err := c.service.Projects.Topics.Publish(c.TopicName(topic), req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return resp.MessageIds, nil
}
