// Package bigquery runs standard SQL queries and streams rows into BigQuery
// tables over the REST API.
package bigquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	bigquery "google.golang.org/api/bigquery/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultQueryTimeout bounds how long a query may run before Query gives up
// waiting for it.
const DefaultQueryTimeout = 30 * time.Second

// Result is the outcome of a query.
type Result struct {
	JobID   string                   `json:"jobId,omitempty"`
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

// InsertError describes a row the streaming insert rejected.
type InsertError struct {
	Index    int64  `json:"index"`
	Messages string `json:"messages"`
}

// Client is a BigQuery client bound to a project.
type Client struct {
	service   *bigquery.Service
	projectID string
	location  string
}

// NewClient creates a BigQuery client for projectID. Queries run in location
// when it is set.
func NewClient(ctx context.Context, projectID, location string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	srv, err := bigquery.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create bigquery service: %w", err)
	}
	return &Client{service: srv, projectID: projectID, location: location}, nil
}

// Query runs sql as standard SQL and returns up to maxRows rows. A query that
// does not finish within timeout is an error naming the job.
func (c *Client) Query(ctx context.Context, sql string, maxRows int, timeout time.Duration) (*Result, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, fmt.Errorf("query is required")
	}
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}

	req := &bigquery.QueryRequest{
		Query:        sql,
		UseLegacySql: googleapi.Bool(false),
		TimeoutMs:    timeout.Milliseconds(),
		Location:     c.location,
	}
	if maxRows > 0 {
		req.MaxResults = int64(maxRows)
	}

	resp, err := c.service.Jobs.Query(c.projectID, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}

	result := &Result{}
	if resp.JobReference != nil {
		result.JobID = resp.JobReference.JobId
	}
	if !resp.JobComplete {
		return nil, fmt.Errorf("query job %s did not complete within %s", result.JobID, timeout)
	}

	if resp.Schema != nil {
		for _, f := range resp.Schema.Fields {
			result.Columns = append(result.Columns, f.Name)
		}
	}
	result.Rows = make([]map[string]interface{}, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		record := make(map[string]interface{}, len(result.Columns))
		for i, cell := range row.F {
			if i < len(result.Columns) {
				record[result.Columns[i]] = cell.V
			}
		}
		result.Rows = append(result.Rows, record)
	}
	return result, nil
}

// InsertRows streams rows into dataset.table. insertIDs, when given, must
// match rows one to one and lets BigQuery drop duplicate deliveries.
func (c *Client) InsertRows(ctx context.Context, dataset, table string, rows []map[string]interface{}, insertIDs []string) ([]InsertError, error) {
	if dataset == "" || table == "" {
		return nil, fmt.Errorf("dataset and table are required")
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("at least one row is required")
	}
	if len(insertIDs) > 0 && len(insertIDs) != len(rows) {
		return nil, fmt.Errorf("got %d insert ids for %d rows", len(insertIDs), len(rows))
	}

	req := &bigquery.TableDataInsertAllRequest{
		Rows: make([]*bigquery.TableDataInsertAllRequestRows, len(rows)),
	}
	for i, row := range rows {
		values := make(map[string]bigquery.JsonValue, len(row))
		for k, v := range row {
			values[k] = v
		}
		req.Rows[i] = &bigquery.TableDataInsertAllRequestRows{Json: values}
		if len(insertIDs) > 0 {
			req.Rows[i].InsertId = insertIDs[i]
		}
	}

	resp, err := c.service.Tabledata.InsertAll(c.projectID, dataset, table, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to insert rows into %s.%s: %w", dataset, table, err)
	}

	var rejected []InsertError
	for _, e := range resp.InsertErrors {
		var msgs []string
		for _, p := range e.Errors {
			msgs = append(msgs, p.Message)
		}
		rejected = append(rejected, InsertError{Index: e.Index, Messages: strings.Join(msgs, "; ")})
	}
	return rejected, nil
}
