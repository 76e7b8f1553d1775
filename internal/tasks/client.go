package tasks

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	cloudtasks "google.golang.org/api/cloudtasks/v2"
	"google.golang.org/api/option"
)

// HTTPTask describes a task that calls an HTTP endpoint.
type HTTPTask struct {
	// Name is an optional task id used for deduplication.
	Name string

	URL     string
	Method  string
	Body    []byte
	Headers map[string]string

	// ScheduleAt delays delivery. Zero means as soon as possible.
	ScheduleAt time.Time

	// ServiceAccountEmail, when set, attaches an OIDC token for that account.
	ServiceAccountEmail string
}

// TaskInfo describes an enqueued task.
type TaskInfo struct {
	Name         string `json:"name"`
	ScheduleTime string `json:"scheduleTime,omitempty"`
	CreateTime   string `json:"createTime,omitempty"`
	URL          string `json:"url,omitempty"`
}

// Client is a Cloud Tasks client bound to a project and location.
type Client struct {
	service *cloudtasks.Service
	parent  string
}

// NewClient creates a Cloud Tasks client for projectID in location.
func NewClient(ctx context.Context, projectID, location string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("project id and location are required")
	}
	srv, err := cloudtasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create cloud tasks service: %w", err)
	}
	return &Client{
		service: srv,
		parent:  fmt.Sprintf("projects/%s/locations/%s", projectID, location),
	}, nil
}

// QueueName returns the full resource name of a queue.
func (c *Client) QueueName(queue string) string {
	if strings.HasPrefix(queue, "projects/") {
		return queue
	}
	return c.parent + "/queues/" + queue
}

// CreateQueue creates a queue with default settings.
func (c *Client) CreateQueue(ctx context.Context, queue string) (string, error) {
	if queue == "" {
		return "", fmt.Errorf("queue is required")
	}
	q, err := c.service.Projects.Locations.Queues.Create(c.parent, &cloudtasks.Queue{
		Name: c.QueueName(queue),
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create queue %s: %w", queue, err)
	}
	return q.Name, nil
}

// EnqueueHTTPTask adds task to queue.
func (c *Client) EnqueueHTTPTask(ctx context.Context, queue string, task HTTPTask) (*TaskInfo, error) {
	if queue == "" || task.URL == "" {
		return nil, fmt.Errorf("queue and url are required")
	}
	method := strings.ToUpper(task.Method)
	if method == "" {
		method = http.MethodPost
	}

	req := &cloudtasks.HttpRequest{
		Url:        task.URL,
		HttpMethod: method,
		Headers:    task.Headers,
	}
	if len(task.Body) > 0 {
		req.Body = base64.StdEncoding.EncodeToString(task.Body)
	}
	if task.ServiceAccountEmail != "" {
		req.OidcToken = &cloudtasks.OidcToken{ServiceAccountEmail: task.ServiceAccountEmail}
	}

	queueName := c.QueueName(queue)
	t := &cloudtasks.Task{HttpRequest: req}
	if task.Name != "" {
		t.Name = queueName + "/tasks/" + task.Name
	}
	if !task.ScheduleAt.IsZero() {
		t.ScheduleTime = task.ScheduleAt.UTC().Format(time.RFC3339Nano)
	}

	created, err := c.service.Projects.Locations.Queues.Tasks.Create(queueName, &cloudtasks.CreateTaskRequest{Task: t}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task on %s: %w", queue, err)
	}

	info := &TaskInfo{
		Name:         created.Name,
		ScheduleTime: created.ScheduleTime,
		CreateTime:   created.CreateTime,
	}
	if created.HttpRequest != nil {
		info.URL = created.HttpRequest.Url
	}
	return info, nil
}
