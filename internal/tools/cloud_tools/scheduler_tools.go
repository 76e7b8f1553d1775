package cloud_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/scheduler"
	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/tasks"
	"github.com/teemow/automation-engine/internal/tools/common"
)

// registerSchedulerTools registers Cloud Scheduler cron jobs and Cloud Tasks
// queues. Both deliver HTTP requests to automation endpoints.
func registerSchedulerTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listJobsTool := mcp.NewTool("scheduler_list_jobs",
		mcp.WithDescription("List Cloud Scheduler jobs in the configured location"),
	)
	s.AddTool(listJobsTool, common.InstrumentedToolHandlerWithService("scheduler_list_jobs",
		instrumentation.ServiceScheduler, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListJobs(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createJobTool := mcp.NewTool("scheduler_create_job",
		mcp.WithDescription("Create a cron job that sends an HTTP request on a schedule"),
		mcp.WithString("job",
			mcp.Required(),
			mcp.Description("Job id, e.g. 'nightly-report'"),
		),
		mcp.WithString("schedule",
			mcp.Required(),
			mcp.Description("unix-cron schedule, e.g. '0 9 * * 1'"),
		),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Target URL"),
		),
		mcp.WithString("method",
			mcp.Description("HTTP method (default: POST)"),
		),
		mcp.WithString("body",
			mcp.Description("Request body"),
		),
		mcp.WithString("headers",
			mcp.Description("Request headers as a JSON object"),
		),
		mcp.WithString("timeZone",
			mcp.Description("IANA time zone of the schedule (default: UTC)"),
		),
		mcp.WithString("description",
			mcp.Description("Job description"),
		),
		mcp.WithString("serviceAccountEmail",
			mcp.Description("Attach an OIDC token for this service account"),
		),
	)
	s.AddTool(createJobTool, common.InstrumentedToolHandlerWithService("scheduler_create_job",
		instrumentation.ServiceScheduler, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateJob(ctx, request, sc)
		}))

	runJobTool := mcp.NewTool("scheduler_run_job",
		mcp.WithDescription("Run a Cloud Scheduler job now"),
		mcp.WithString("job",
			mcp.Required(),
			mcp.Description("Job id or full name"),
		),
	)
	s.AddTool(runJobTool, common.InstrumentedToolHandlerWithService("scheduler_run_job",
		instrumentation.ServiceScheduler, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRunJob(ctx, request, sc)
		}))

	deleteJobTool := mcp.NewTool("scheduler_delete_job",
		mcp.WithDescription("Delete a Cloud Scheduler job"),
		mcp.WithString("job",
			mcp.Required(),
			mcp.Description("Job id or full name"),
		),
	)
	s.AddTool(deleteJobTool, common.InstrumentedToolHandlerWithService("scheduler_delete_job",
		instrumentation.ServiceScheduler, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteJob(ctx, request, sc)
		}))

	createQueueTool := mcp.NewTool("tasks_create_queue",
		mcp.WithDescription("Create a Cloud Tasks queue in the configured location"),
		mcp.WithString("queue",
			mcp.Required(),
			mcp.Description("Queue id"),
		),
	)
	s.AddTool(createQueueTool, common.InstrumentedToolHandlerWithService("tasks_create_queue",
		instrumentation.ServiceTasks, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateQueue(ctx, request, sc)
		}))

	enqueueTool := mcp.NewTool("tasks_enqueue_http",
		mcp.WithDescription("Enqueue a task that sends an HTTP request"),
		mcp.WithString("queue",
			mcp.Required(),
			mcp.Description("Queue id or full name"),
		),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Target URL"),
		),
		mcp.WithString("method",
			mcp.Description("HTTP method (default: POST)"),
		),
		mcp.WithString("body",
			mcp.Description("Request body"),
		),
		mcp.WithString("headers",
			mcp.Description("Request headers as a JSON object"),
		),
		mcp.WithString("taskId",
			mcp.Description("Optional task id; a repeated id is rejected by the queue"),
		),
		mcp.WithNumber("delaySeconds",
			mcp.Description("Delay delivery by this many seconds"),
		),
		mcp.WithString("serviceAccountEmail",
			mcp.Description("Attach an OIDC token for this service account"),
		),
	)
	s.AddTool(enqueueTool, common.InstrumentedToolHandlerWithService("tasks_enqueue_http",
		instrumentation.ServiceTasks, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleEnqueueHTTP(ctx, request, sc)
		}))

	return nil
}

func handleListJobs(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, err := sc.Scheduler()
	if err != nil {
		return common.ErrorResult("create scheduler client", err)
	}

	var jobs []*scheduler.JobInfo
	err = observe(ctx, sc, instrumentation.ServiceScheduler, instrumentation.OperationList, "", func(ctx context.Context) error {
		var err error
		jobs, err = client.ListJobs(ctx)
		return err
	})
	if err != nil {
		return common.ErrorResult("list jobs", err)
	}
	return common.JSONResult("", map[string]interface{}{
		"count": len(jobs),
		"jobs":  jobs,
	})
}

func handleCreateJob(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	job := scheduler.HTTPJob{
		Description:         common.OptionalString(args, "description", ""),
		TimeZone:            common.OptionalString(args, "timeZone", ""),
		Method:              common.OptionalString(args, "method", ""),
		Body:                []byte(common.OptionalString(args, "body", "")),
		ServiceAccountEmail: common.OptionalString(args, "serviceAccountEmail", ""),
	}
	var err error
	if job.Name, err = common.RequiredString(args, "job"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if job.Schedule, err = common.RequiredString(args, "schedule"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if job.URL, err = common.RequiredString(args, "url"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if job.Headers, err = common.StringMap(args, "headers"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := sc.Scheduler()
	if err != nil {
		return common.ErrorResult("create scheduler client", err)
	}

	var info *scheduler.JobInfo
	err = observe(ctx, sc, instrumentation.ServiceScheduler, instrumentation.OperationCreate, job.Name, func(ctx context.Context) error {
		var err error
		info, err = client.CreateHTTPJob(ctx, job)
		return err
	})
	if err != nil {
		return common.ErrorResult("create job", err)
	}
	return common.JSONResult("Job created successfully", info)
}

func handleRunJob(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	name, err := common.RequiredString(request.GetArguments(), "job")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.Scheduler()
	if err != nil {
		return common.ErrorResult("create scheduler client", err)
	}

	var info *scheduler.JobInfo
	err = observe(ctx, sc, instrumentation.ServiceScheduler, instrumentation.OperationUpdate, name, func(ctx context.Context) error {
		var err error
		info, err = client.RunJob(ctx, name)
		return err
	})
	if err != nil {
		return common.ErrorResult("run job", err)
	}
	return common.JSONResult("Job triggered", info)
}

func handleDeleteJob(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	name, err := common.RequiredString(request.GetArguments(), "job")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.Scheduler()
	if err != nil {
		return common.ErrorResult("create scheduler client", err)
	}

	err = observe(ctx, sc, instrumentation.ServiceScheduler, instrumentation.OperationDelete, name, func(ctx context.Context) error {
		return client.DeleteJob(ctx, name)
	})
	if err != nil {
		return common.ErrorResult("delete job", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Job %s deleted", name)), nil
}

func handleCreateQueue(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	queue, err := common.RequiredString(request.GetArguments(), "queue")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.Tasks()
	if err != nil {
		return common.ErrorResult("create tasks client", err)
	}

	var name string
	err = observe(ctx, sc, instrumentation.ServiceTasks, instrumentation.OperationCreate, queue, func(ctx context.Context) error {
		var err error
		name, err = client.CreateQueue(ctx, queue)
		return err
	})
	if err != nil {
		return common.ErrorResult("create queue", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Queue created: %s", name)), nil
}

func handleEnqueueHTTP(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	queue, err := common.RequiredString(args, "queue")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	task := tasks.HTTPTask{
		Name:                common.OptionalString(args, "taskId", ""),
		Method:              common.OptionalString(args, "method", ""),
		Body:                []byte(common.OptionalString(args, "body", "")),
		ServiceAccountEmail: common.OptionalString(args, "serviceAccountEmail", ""),
	}
	if task.URL, err = common.RequiredString(args, "url"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if task.Headers, err = common.StringMap(args, "headers"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if delay := common.OptionalInt(args, "delaySeconds", 0); delay > 0 {
		task.ScheduleAt = time.Now().Add(time.Duration(delay) * time.Second)
	}

	client, err := sc.Tasks()
	if err != nil {
		return common.ErrorResult("create tasks client", err)
	}

	var info *tasks.TaskInfo
	err = observe(ctx, sc, instrumentation.ServiceTasks, instrumentation.OperationCreate, queue, func(ctx context.Context) error {
		var err error
		info, err = client.EnqueueHTTPTask(ctx, queue, task)
		return err
	})
	if err != nil {
		return common.ErrorResult("enqueue task", err)
	}
	return common.JSONResult("Task enqueued", info)
}
