package autoshare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	docsapi "google.golang.org/api/docs/v1"
	driveapi "google.golang.org/api/drive/v3"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/teemow/automation-engine/internal/docs"
	"github.com/teemow/automation-engine/internal/drive"
	"github.com/teemow/automation-engine/internal/sheets"
)

type custom struct{ id string }

func (c custom) ResourceID() string { return c.id }

func TestResourceID(t *testing.T) {
	var nilSheet *sheets.SpreadsheetInfo

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "typed nil", in: nilSheet, want: ""},
		{name: "spreadsheet info", in: &sheets.SpreadsheetInfo{ID: "s1"}, want: "s1"},
		{name: "drive file info", in: &drive.FileInfo{ID: "f1"}, want: "f1"},
		{name: "document info", in: &docs.DocumentInfo{ID: "d1"}, want: "d1"},
		{name: "api spreadsheet", in: &sheetsapi.Spreadsheet{SpreadsheetId: "s2"}, want: "s2"},
		{name: "api file", in: &driveapi.File{Id: "f2"}, want: "f2"},
		{name: "api document", in: &docsapi.Document{DocumentId: "d2"}, want: "d2"},
		{name: "identifier", in: custom{id: "c1"}, want: "c1"},
		{name: "map spreadsheet", in: map[string]any{"spreadsheetId": "s3"}, want: "s3"},
		{name: "map document", in: map[string]string{"documentId": "d3"}, want: "d3"},
		{name: "map drive file", in: map[string]any{"id": "f3", "kind": "drive#file"}, want: "f3"},
		{name: "map id without drive kind", in: map[string]any{"id": "x", "kind": "calendar#event"}, want: ""},
		{name: "map id without kind", in: map[string]any{"id": "x"}, want: ""},
		{name: "unrelated", in: 42, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResourceID(tt.in))
		})
	}
}

func TestResourceKind(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: &sheets.SpreadsheetInfo{ID: "s1"}, want: "spreadsheet"},
		{in: &docsapi.Document{DocumentId: "d1"}, want: "document"},
		{in: &drive.FileInfo{ID: "f1", MimeType: drive.FolderMimeType}, want: "folder"},
		{in: &drive.FileInfo{ID: "f2", MimeType: "text/csv"}, want: "file"},
		{in: &driveapi.File{Id: "f3", MimeType: drive.SpreadsheetMimeType}, want: "spreadsheet"},
		{in: map[string]any{"spreadsheetId": "s3"}, want: ""},
		{in: nil, want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResourceKind(tt.in), "%T", tt.in)
	}
}
