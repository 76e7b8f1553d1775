// Package tasks enqueues HTTP tasks on Cloud Tasks queues.
//
// Queues and tasks are addressed by short names relative to the project and
// location the client was created for; fully qualified resource names are
// accepted as well.
//
//	client, err := tasks.NewClient(ctx, projectID, "us-central1", option.WithHTTPClient(httpClient))
//	if err != nil {
//	    return err
//	}
//	task, err := client.EnqueueHTTPTask(ctx, "work", tasks.HTTPTask{URL: "https://example.com/hook"})
package tasks
