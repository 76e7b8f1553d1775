// Package serviceusage reports and changes which Google APIs are enabled on
// a project.
package serviceusage

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	serviceusage "google.golang.org/api/serviceusage/v1"
)

// batchLimit is the most services BatchGet and BatchEnable accept per call.
const batchLimit = 20

// StateEnabled is the state of an enabled service.
const StateEnabled = "ENABLED"

// APIState is the state of one API on the project.
type APIState struct {
	// Name is the service name, e.g. "drive.googleapis.com".
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	Enabled bool   `json:"enabled"`
}

// Client is a Service Usage client bound to a project.
type Client struct {
	service *serviceusage.Service
	parent  string
}

// NewClient creates a Service Usage client for projectID.
func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	srv, err := serviceusage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create service usage service: %w", err)
	}
	return &Client{service: srv, parent: "projects/" + projectID}, nil
}

// States returns the state of each API, in the order given.
func (c *Client) States(ctx context.Context, apis []string) ([]APIState, error) {
	byName := make(map[string]APIState, len(apis))

	for _, chunk := range chunks(apis, batchLimit) {
		names := make([]string, len(chunk))
		for i, api := range chunk {
			names[i] = c.parent + "/services/" + api
		}
		resp, err := c.service.Services.BatchGet(c.parent).Names(names...).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get service states: %w", err)
		}
		for _, svc := range resp.Services {
			state := APIState{
				Name:    serviceID(svc.Name),
				Enabled: svc.State == StateEnabled,
			}
			if svc.Config != nil {
				state.Title = svc.Config.Title
				if svc.Config.Name != "" {
					state.Name = svc.Config.Name
				}
			}
			byName[state.Name] = state
		}
	}

	out := make([]APIState, 0, len(apis))
	for _, api := range apis {
		state, ok := byName[api]
		if !ok {
			state = APIState{Name: api}
		}
		out = append(out, state)
	}
	return out, nil
}

// Enable enables the given APIs. It returns the names of the long-running
// operations started, one per batch.
func (c *Client) Enable(ctx context.Context, apis []string) ([]string, error) {
	var ops []string
	for _, chunk := range chunks(apis, batchLimit) {
		op, err := c.service.Services.BatchEnable(c.parent, &serviceusage.BatchEnableServicesRequest{
			ServiceIds: chunk,
		}).Context(ctx).Do()
		if err != nil {
			return ops, fmt.Errorf("failed to enable %s: %w", strings.Join(chunk, ", "), err)
		}
		ops = append(ops, op.Name)
	}
	return ops, nil
}

// serviceID strips "projects/123/services/" from a service resource name.
func serviceID(name string) string {
	if i := strings.LastIndex(name, "/services/"); i >= 0 {
		return name[i+len("/services/"):]
	}
	return name
}

func chunks(items []string, size int) [][]string {
	var out [][]string
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
