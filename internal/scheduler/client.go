// Package scheduler manages Cloud Scheduler cron jobs that call HTTP targets.
package scheduler

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	cloudscheduler "google.golang.org/api/cloudscheduler/v1"
	"google.golang.org/api/option"
)

// DefaultTimeZone is used when a job has no time zone.
const DefaultTimeZone = "UTC"

// HTTPJob describes a cron job that calls an HTTP endpoint.
type HTTPJob struct {
	// Name is the short job id, e.g. "nightly-report".
	Name        string
	Description string

	// Schedule is a unix-cron expression such as "0 9 * * 1".
	Schedule string
	TimeZone string

	URL     string
	Method  string
	Body    []byte
	Headers map[string]string

	// ServiceAccountEmail, when set, makes the scheduler attach an OIDC
	// token for that account.
	ServiceAccountEmail string
}

// JobInfo describes an existing job.
type JobInfo struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Schedule     string `json:"schedule"`
	TimeZone     string `json:"timeZone"`
	State        string `json:"state"`
	TargetURL    string `json:"targetUrl,omitempty"`
	LastAttempt  string `json:"lastAttemptTime,omitempty"`
	NextSchedule string `json:"scheduleTime,omitempty"`
}

// Client is a Cloud Scheduler client bound to a project and location.
type Client struct {
	service *cloudscheduler.Service
	parent  string
}

// NewClient creates a Cloud Scheduler client for projectID in location.
func NewClient(ctx context.Context, projectID, location string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("project id and location are required")
	}
	srv, err := cloudscheduler.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create cloud scheduler service: %w", err)
	}
	return &Client{
		service: srv,
		parent:  fmt.Sprintf("projects/%s/locations/%s", projectID, location),
	}, nil
}

// JobName returns the full resource name of a job.
func (c *Client) JobName(name string) string {
	if strings.HasPrefix(name, "projects/") {
		return name
	}
	return c.parent + "/jobs/" + name
}

// CreateHTTPJob creates a cron job calling job.URL.
func (c *Client) CreateHTTPJob(ctx context.Context, job HTTPJob) (*JobInfo, error) {
	if job.Name == "" || job.Schedule == "" || job.URL == "" {
		return nil, fmt.Errorf("job name, schedule and url are required")
	}
	method := strings.ToUpper(job.Method)
	if method == "" {
		method = http.MethodPost
	}
	tz := job.TimeZone
	if tz == "" {
		tz = DefaultTimeZone
	}

	target := &cloudscheduler.HttpTarget{
		Uri:        job.URL,
		HttpMethod: method,
		Headers:    job.Headers,
	}
	if len(job.Body) > 0 {
		target.Body = base64.StdEncoding.EncodeToString(job.Body)
	}
	if job.ServiceAccountEmail != "" {
		target.OidcToken = &cloudscheduler.OidcToken{ServiceAccountEmail: job.ServiceAccountEmail}
	}

	created, err := c.service.Projects.Locations.Jobs.Create(c.parent, &cloudscheduler.Job{
		Name:        c.JobName(job.Name),
		Description: job.Description,
		Schedule:    job.Schedule,
		TimeZone:    tz,
		HttpTarget:  target,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create job %s: %w", job.Name, err)
	}
	return toJobInfo(created), nil
}

// ListJobs lists the jobs in the client's location.
func (c *Client) ListJobs(ctx context.Context) ([]*JobInfo, error) {
	var jobs []*JobInfo
	err := c.service.Projects.Locations.Jobs.List(c.parent).Pages(ctx, func(page *cloudscheduler.ListJobsResponse) error {
		for _, j := range page.Jobs {
			jobs = append(jobs, toJobInfo(j))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// RunJob forces a job to run now.
func (c *Client) RunJob(ctx context.Context, name string) (*JobInfo, error) {
	j, err := c.service.Projects.Locations.Jobs.Run(c.JobName(name), &cloudscheduler.RunJobRequest{}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to run job %s: %w", name, err)
	}
	return toJobInfo(j), nil
}

// DeleteJob deletes a job.
func (c *Client) DeleteJob(ctx context.Context, name string) error {
	if _, err := c.service.Projects.Locations.Jobs.Delete(c.JobName(name)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete job %s: %w", name, err)
	}
	return nil
}

func toJobInfo(j *cloudscheduler.Job) *JobInfo {
	info := &JobInfo{
		Name:         j.Name,
		Description:  j.Description,
		Schedule:     j.Schedule,
		TimeZone:     j.TimeZone,
		State:        j.State,
		LastAttempt:  j.LastAttemptTime,
		NextSchedule: j.ScheduleTime,
	}
	if j.HttpTarget != nil {
		info.TargetURL = j.HttpTarget.Uri
	}
	return info
}
