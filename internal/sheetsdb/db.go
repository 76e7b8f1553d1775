// Package sheetsdb uses a spreadsheet as a small database: each sheet is a
// table whose first row holds the column names.
package sheetsdb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/teemow/automation-engine/internal/logging"
	"github.com/teemow/automation-engine/internal/sheets"
)

// Backend is the subset of the services facade the database needs.
// *services.Services implements it.
type Backend interface {
	CreateSpreadsheet(ctx context.Context, title string, specs []sheets.SheetSpec) (*sheets.SpreadsheetInfo, error)
	ReadSpreadsheet(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
	WriteSpreadsheet(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (*sheets.UpdateResult, error)
	AppendSpreadsheet(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (*sheets.UpdateResult, error)
	BatchUpdateSpreadsheet(ctx context.Context, spreadsheetID string, requests []*sheetsapi.Request) error
}

// DB is a spreadsheet-backed database.
type DB struct {
	backend       Backend
	spreadsheetID string
	tables        map[string]Table
	logger        *slog.Logger
	now           func() time.Time
}

// DefaultTitle returns the title Create uses when none is given.
func DefaultTitle(now time.Time) string {
	return "Automation Database - " + now.Format("2006-01-02")
}

// Open returns a DB for an existing spreadsheet laid out as schema.
func Open(backend Backend, spreadsheetID string, schema []Table) (*DB, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if err := validateSchema(schema); err != nil {
		return nil, err
	}
	tables := make(map[string]Table, len(schema))
	for _, t := range schema {
		tables[t.Name] = t
	}
	return &DB{
		backend:       backend,
		spreadsheetID: spreadsheetID,
		tables:        tables,
		logger:        slog.Default(),
		now:           time.Now,
	}, nil
}

// Create creates a spreadsheet with one sheet per table, writes the header
// rows, and formats and freezes them in a single batch update. The
// spreadsheet is shared with the owner by the backend.
func Create(ctx context.Context, backend Backend, title string, schema []Table) (*DB, error) {
	if err := validateSchema(schema); err != nil {
		return nil, err
	}
	if title == "" {
		title = DefaultTitle(time.Now())
	}

	info, err := backend.CreateSpreadsheet(ctx, title, sheetSpecs(schema))
	if err != nil {
		return nil, fmt.Errorf("failed to create database spreadsheet: %w", err)
	}

	if err := backend.BatchUpdateSpreadsheet(ctx, info.ID, SchemaRequests(schema)); err != nil {
		return nil, fmt.Errorf("failed to set up schema for %s: %w", info.ID, err)
	}

	db, err := Open(backend, info.ID, schema)
	if err != nil {
		return nil, err
	}
	db.logger.InfoContext(ctx, "database created",
		logging.FileID(info.ID),
		slog.Int("tables", len(schema)))
	return db, nil
}

// SpreadsheetID returns the id of the backing spreadsheet.
func (db *DB) SpreadsheetID() string {
	return db.spreadsheetID
}

// URL returns the spreadsheet URL.
func (db *DB) URL() string {
	return sheets.SpreadsheetURL(db.spreadsheetID)
}

// Table returns the named table.
func (db *DB) Table(name string) (Table, error) {
	t, ok := db.tables[name]
	if !ok {
		return Table{}, fmt.Errorf("unknown table %q", name)
	}
	return t, nil
}

// Insert appends rows to a table.
func (db *DB) Insert(ctx context.Context, table string, rows [][]interface{}) (*sheets.UpdateResult, error) {
	t, err := db.Table(table)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &sheets.UpdateResult{}, nil
	}
	return db.backend.AppendSpreadsheet(ctx, db.spreadsheetID, sheets.Range(t.Name, "A:"+t.LastColumn()), rows)
}

// Query reads cells from a table. Empty cells means every row below the
// header.
func (db *DB) Query(ctx context.Context, table, cells string) ([][]interface{}, error) {
	t, err := db.Table(table)
	if err != nil {
		return nil, err
	}
	rng := t.DataRange()
	if cells != "" {
		rng = sheets.Range(t.Name, cells)
	}
	return db.backend.ReadSpreadsheet(ctx, db.spreadsheetID, rng)
}

// Update overwrites cells in a table.
func (db *DB) Update(ctx context.Context, table, cells string, rows [][]interface{}) (*sheets.UpdateResult, error) {
	t, err := db.Table(table)
	if err != nil {
		return nil, err
	}
	if cells == "" {
		return nil, fmt.Errorf("cells are required")
	}
	return db.backend.WriteSpreadsheet(ctx, db.spreadsheetID, sheets.Range(t.Name, cells), rows)
}

// DeleteRows removes rows startRow through endRow, 1-based and inclusive.
// Row 1 is the header and cannot be deleted.
func (db *DB) DeleteRows(ctx context.Context, table string, startRow, endRow int) error {
	t, err := db.Table(table)
	if err != nil {
		return err
	}
	if startRow < 2 {
		return fmt.Errorf("start row must be 2 or greater, got %d", startRow)
	}
	if endRow < startRow {
		return fmt.Errorf("end row %d is before start row %d", endRow, startRow)
	}
	return db.backend.BatchUpdateSpreadsheet(ctx, db.spreadsheetID, []*sheetsapi.Request{
		deleteRowsRequest(t.SheetID, startRow, endRow),
	})
}
