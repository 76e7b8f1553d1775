package sheetsdb

import (
	"fmt"

	"google.golang.org/api/googleapi"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/teemow/automation-engine/internal/sheets"
)

// Table names of the default schema.
const (
	TableExecutions = "executions"
	TableTenants    = "tenants"
	TableLogs       = "logs"
)

// Table is one sheet used as a table. Row 1 holds the column headers.
type Table struct {
	Name    string
	SheetID int64
	Columns []string

	// Rows and ColumnCount size the sheet grid when it is created.
	Rows        int64
	ColumnCount int64
}

// LastColumn returns the column letter of the last header column.
func (t Table) LastColumn() string {
	n := len(t.Columns)
	if int64(n) < t.ColumnCount {
		n = int(t.ColumnCount)
	}
	if n == 0 {
		return "Z"
	}
	return sheets.ColumnLetter(n)
}

// DataRange returns the A1 range covering every row below the header.
func (t Table) DataRange() string {
	return sheets.Range(t.Name, "A2:"+t.LastColumn())
}

// DefaultSchema returns the executions, tenants and logs tables.
func DefaultSchema() []Table {
	return []Table{
		{
			Name:    TableExecutions,
			SheetID: 0,
			Columns: []string{"ID", "Tenant ID", "Code", "Status", "Result", "Error", "Started At", "Completed At", "Duration (ms)", "Metadata"},
			Rows:    10000, ColumnCount: 10,
		},
		{
			Name:    TableTenants,
			SheetID: 1,
			Columns: []string{"ID", "Name", "API Key", "Created At", "Status", "Quota Used", "Quota Limit", "Settings"},
			Rows:    1000, ColumnCount: 8,
		},
		{
			Name:    TableLogs,
			SheetID: 2,
			Columns: []string{"Timestamp", "Level", "Tenant ID", "Message", "Details", "Source"},
			Rows:    50000, ColumnCount: 6,
		},
	}
}

func validateSchema(schema []Table) error {
	if len(schema) == 0 {
		return fmt.Errorf("schema has no tables")
	}
	names := make(map[string]bool, len(schema))
	ids := make(map[int64]bool, len(schema))
	for _, t := range schema {
		if t.Name == "" {
			return fmt.Errorf("table with sheet id %d has no name", t.SheetID)
		}
		if names[t.Name] {
			return fmt.Errorf("duplicate table %q", t.Name)
		}
		if ids[t.SheetID] {
			return fmt.Errorf("duplicate sheet id %d", t.SheetID)
		}
		if len(t.Columns) == 0 {
			return fmt.Errorf("table %q has no columns", t.Name)
		}
		names[t.Name] = true
		ids[t.SheetID] = true
	}
	return nil
}

// sheetSpecs pins the sheet ids so the header requests can address them.
func sheetSpecs(schema []Table) []sheets.SheetSpec {
	specs := make([]sheets.SheetSpec, 0, len(schema))
	for _, t := range schema {
		specs = append(specs, sheets.SheetSpec{
			ID:      googleapi.Int64(t.SheetID),
			Title:   t.Name,
			Rows:    t.Rows,
			Columns: t.ColumnCount,
		})
	}
	return specs
}

// SchemaRequests returns the batch update that writes the header rows and
// then formats and freezes them: all header writes first, then a bold grey
// header and a frozen first row for each table.
func SchemaRequests(schema []Table) []*sheetsapi.Request {
	requests := make([]*sheetsapi.Request, 0, len(schema)*3)

	for _, t := range schema {
		cells := make([]*sheetsapi.CellData, 0, len(t.Columns))
		for _, c := range t.Columns {
			c := c
			cells = append(cells, &sheetsapi.CellData{
				UserEnteredValue: &sheetsapi.ExtendedValue{StringValue: &c},
			})
		}
		requests = append(requests, &sheetsapi.Request{
			UpdateCells: &sheetsapi.UpdateCellsRequest{
				Range:  headerRange(t.SheetID),
				Rows:   []*sheetsapi.RowData{{Values: cells}},
				Fields: "userEnteredValue",
			},
		})
	}

	for _, t := range schema {
		requests = append(requests,
			&sheetsapi.Request{
				RepeatCell: &sheetsapi.RepeatCellRequest{
					Range: headerRange(t.SheetID),
					Cell: &sheetsapi.CellData{
						UserEnteredFormat: &sheetsapi.CellFormat{
							TextFormat:      &sheetsapi.TextFormat{Bold: true},
							BackgroundColor: &sheetsapi.Color{Red: 0.9, Green: 0.9, Blue: 0.9},
						},
					},
					Fields: "userEnteredFormat",
				},
			},
			&sheetsapi.Request{
				UpdateSheetProperties: &sheetsapi.UpdateSheetPropertiesRequest{
					Properties: &sheetsapi.SheetProperties{
						SheetId:         t.SheetID,
						GridProperties:  &sheetsapi.GridProperties{FrozenRowCount: 1},
						ForceSendFields: []string{"SheetId"},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		)
	}

	return requests
}

func headerRange(sheetID int64) *sheetsapi.GridRange {
	return &sheetsapi.GridRange{
		SheetId:         sheetID,
		StartRowIndex:   0,
		EndRowIndex:     1,
		ForceSendFields: []string{"SheetId", "StartRowIndex"},
	}
}

// deleteRowsRequest deletes 1-based rows startRow through endRow inclusive.
func deleteRowsRequest(sheetID int64, startRow, endRow int) *sheetsapi.Request {
	return &sheetsapi.Request{
		DeleteDimension: &sheetsapi.DeleteDimensionRequest{
			Range: &sheetsapi.DimensionRange{
				SheetId:         sheetID,
				Dimension:       "ROWS",
				StartIndex:      int64(startRow - 1),
				EndIndex:        int64(endRow),
				ForceSendFields: []string{"SheetId", "StartIndex"},
			},
		},
	}
}
