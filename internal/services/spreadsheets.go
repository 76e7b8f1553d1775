package services

import (
	"context"

	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/teemow/automation-engine/internal/autoshare"
	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/sheets"
)

// CreateSpreadsheet creates a spreadsheet with optional sheets and shares it
// with the owner.
func (s *Services) CreateSpreadsheet(ctx context.Context, title string, specs []sheets.SheetSpec) (*sheets.SpreadsheetInfo, error) {
	return autoshare.Created(ctx, s.sharer, spreadsheetID, func(ctx context.Context) (*sheets.SpreadsheetInfo, error) {
		var info *sheets.SpreadsheetInfo
		err := s.Observe(ctx, instrumentation.ServiceSheets, instrumentation.OperationCreate, "", func(ctx context.Context) error {
			client, err := s.Sheets(ctx)
			if err != nil {
				return err
			}
			info, err = client.CreateSpreadsheet(ctx, title, specs)
			return err
		})
		return info, err
	})
}

func spreadsheetID(info *sheets.SpreadsheetInfo) string {
	if info == nil {
		return ""
	}
	return info.ID
}

// GetSpreadsheet returns spreadsheet metadata including its sheets.
func (s *Services) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*sheets.SpreadsheetInfo, error) {
	var info *sheets.SpreadsheetInfo
	err := s.Observe(ctx, instrumentation.ServiceSheets, instrumentation.OperationGet, spreadsheetID, func(ctx context.Context) error {
		client, err := s.Sheets(ctx)
		if err != nil {
			return err
		}
		info, err = client.GetSpreadsheet(ctx, spreadsheetID)
		return err
	})
	return info, err
}

// ReadSpreadsheet returns the values in rng. An empty range yields no rows.
func (s *Services) ReadSpreadsheet(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	var values [][]interface{}
	err := s.Observe(ctx, instrumentation.ServiceSheets, instrumentation.OperationGet, spreadsheetID, func(ctx context.Context) error {
		client, err := s.Sheets(ctx)
		if err != nil {
			return err
		}
		values, err = client.GetValues(ctx, spreadsheetID, rng)
		return err
	})
	return values, err
}

// WriteSpreadsheet overwrites rng with values, parsed as if typed by a user.
func (s *Services) WriteSpreadsheet(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (*sheets.UpdateResult, error) {
	var result *sheets.UpdateResult
	err := s.Observe(ctx, instrumentation.ServiceSheets, instrumentation.OperationUpdate, spreadsheetID, func(ctx context.Context) error {
		client, err := s.Sheets(ctx)
		if err != nil {
			return err
		}
		result, err = client.UpdateValues(ctx, spreadsheetID, rng, values)
		return err
	})
	return result, err
}

// AppendSpreadsheet appends values after the table found in rng.
func (s *Services) AppendSpreadsheet(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (*sheets.UpdateResult, error) {
	var result *sheets.UpdateResult
	err := s.Observe(ctx, instrumentation.ServiceSheets, instrumentation.OperationAppend, spreadsheetID, func(ctx context.Context) error {
		client, err := s.Sheets(ctx)
		if err != nil {
			return err
		}
		result, err = client.AppendValues(ctx, spreadsheetID, rng, values)
		return err
	})
	return result, err
}

// BatchWriteSpreadsheet writes several ranges in one call.
func (s *Services) BatchWriteSpreadsheet(ctx context.Context, spreadsheetID string, data map[string][][]interface{}) error {
	return s.Observe(ctx, instrumentation.ServiceSheets, instrumentation.OperationUpdate, spreadsheetID, func(ctx context.Context) error {
		client, err := s.Sheets(ctx)
		if err != nil {
			return err
		}
		return client.BatchUpdateValues(ctx, spreadsheetID, data)
	})
}

// BatchUpdateSpreadsheet applies structural requests such as formatting or
// row deletion.
func (s *Services) BatchUpdateSpreadsheet(ctx context.Context, spreadsheetID string, requests []*sheetsapi.Request) error {
	return s.Observe(ctx, instrumentation.ServiceSheets, instrumentation.OperationUpdate, spreadsheetID, func(ctx context.Context) error {
		client, err := s.Sheets(ctx)
		if err != nil {
			return err
		}
		_, err = client.BatchUpdate(ctx, spreadsheetID, requests)
		return err
	})
}
