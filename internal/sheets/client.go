package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// ValueInputUserEntered parses input as if typed into the UI, so formulas
// and dates are interpreted.
const ValueInputUserEntered = "USER_ENTERED"

// Client wraps the Google Sheets API service
type Client struct {
	service *sheets.Service
}

// NewClient creates a Sheets client from API options.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return &Client{service: svc}, nil
}

// CreateSpreadsheet creates a spreadsheet with the given title and,
// optionally, a set of sheets.
func (c *Client) CreateSpreadsheet(ctx context.Context, title string, specs []SheetSpec) (*SpreadsheetInfo, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	body := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}
	for _, spec := range specs {
		body.Sheets = append(body.Sheets, &sheets.Sheet{Properties: sheetProperties(spec)})
	}

	created, err := c.service.Spreadsheets.Create(body).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create spreadsheet: %w", err)
	}

	return toSpreadsheetInfo(created), nil
}

func sheetProperties(spec SheetSpec) *sheets.SheetProperties {
	props := &sheets.SheetProperties{Title: spec.Title}
	if spec.ID != nil {
		props.SheetId = *spec.ID
		// Sheet id 0 is a valid id and would otherwise be dropped.
		props.ForceSendFields = []string{"SheetId"}
	}
	if spec.Rows > 0 || spec.Columns > 0 {
		props.GridProperties = &sheets.GridProperties{
			RowCount:    spec.Rows,
			ColumnCount: spec.Columns,
		}
	}
	return props
}

// GetSpreadsheet retrieves spreadsheet metadata without cell data
func (c *Client) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*SpreadsheetInfo, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}

	s, err := c.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}

	return toSpreadsheetInfo(s), nil
}

// GetValues reads the values of an A1 range. An empty range yields no rows.
func (c *Client) GetValues(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if rng == "" {
		return nil, fmt.Errorf("range is required")
	}

	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from spreadsheet %s: %w", rng, spreadsheetID, err)
	}

	return resp.Values, nil
}

// UpdateValues overwrites an A1 range
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (*UpdateResult, error) {
	if err := checkWrite(spreadsheetID, rng, values); err != nil {
		return nil, err
	}

	resp, err := c.service.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		Context(ctx).
		ValueInputOption(ValueInputUserEntered).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to write %s in spreadsheet %s: %w", rng, spreadsheetID, err)
	}

	return &UpdateResult{
		UpdatedRange:   resp.UpdatedRange,
		UpdatedRows:    resp.UpdatedRows,
		UpdatedColumns: resp.UpdatedColumns,
		UpdatedCells:   resp.UpdatedCells,
	}, nil
}

// AppendValues appends rows after the last row of the table found in rng
func (c *Client) AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (*UpdateResult, error) {
	if err := checkWrite(spreadsheetID, rng, values); err != nil {
		return nil, err
	}

	resp, err := c.service.Spreadsheets.Values.Append(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		Context(ctx).
		ValueInputOption(ValueInputUserEntered).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to append to %s in spreadsheet %s: %w", rng, spreadsheetID, err)
	}

	result := &UpdateResult{}
	if u := resp.Updates; u != nil {
		result.UpdatedRange = u.UpdatedRange
		result.UpdatedRows = u.UpdatedRows
		result.UpdatedColumns = u.UpdatedColumns
		result.UpdatedCells = u.UpdatedCells
	}
	return result, nil
}

// BatchUpdateValues writes several ranges in one call
func (c *Client) BatchUpdateValues(ctx context.Context, spreadsheetID string, data map[string][][]interface{}) error {
	if spreadsheetID == "" {
		return fmt.Errorf("spreadsheetID is required")
	}
	if len(data) == 0 {
		return nil
	}

	rq := &sheets.BatchUpdateValuesRequest{ValueInputOption: ValueInputUserEntered}
	for rng, values := range data {
		rq.Data = append(rq.Data, &sheets.ValueRange{Range: rng, Values: values})
	}

	if _, err := c.service.Spreadsheets.Values.BatchUpdate(spreadsheetID, rq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to batch write spreadsheet %s: %w", spreadsheetID, err)
	}
	return nil
}

// BatchUpdate applies structural requests (formatting, frozen rows,
// deleting dimensions) to a spreadsheet
func (c *Client) BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("at least one request is required")
	}

	resp, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update spreadsheet %s: %w", spreadsheetID, err)
	}
	return resp, nil
}

func checkWrite(spreadsheetID, rng string, values [][]interface{}) error {
	if spreadsheetID == "" {
		return fmt.Errorf("spreadsheetID is required")
	}
	if rng == "" {
		return fmt.Errorf("range is required")
	}
	if len(values) == 0 {
		return fmt.Errorf("values are required")
	}
	return nil
}

func toSpreadsheetInfo(s *sheets.Spreadsheet) *SpreadsheetInfo {
	info := &SpreadsheetInfo{
		ID:  s.SpreadsheetId,
		URL: s.SpreadsheetUrl,
	}
	if info.URL == "" && info.ID != "" {
		info.URL = SpreadsheetURL(info.ID)
	}
	if s.Properties != nil {
		info.Title = s.Properties.Title
	}
	for _, sh := range s.Sheets {
		if sh.Properties == nil {
			continue
		}
		si := SheetInfo{
			ID:    sh.Properties.SheetId,
			Title: sh.Properties.Title,
			Index: sh.Properties.Index,
		}
		if gp := sh.Properties.GridProperties; gp != nil {
			si.RowCount = gp.RowCount
			si.ColumnCount = gp.ColumnCount
		}
		info.Sheets = append(info.Sheets, si)
	}
	return info
}
