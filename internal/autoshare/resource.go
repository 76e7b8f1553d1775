package autoshare

import (
	"strings"

	docsapi "google.golang.org/api/docs/v1"
	driveapi "google.golang.org/api/drive/v3"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/teemow/automation-engine/internal/docs"
	"github.com/teemow/automation-engine/internal/drive"
	"github.com/teemow/automation-engine/internal/sheets"
)

// Identifier is implemented by results that know their Drive file id.
type Identifier interface {
	ResourceID() string
}

// ResourceID returns the Drive file id of a created resource, or "" when v
// is not something that lives in Drive.
//
// Generic maps are sniffed the way raw API responses look: a spreadsheetId
// or documentId key, or an id key together with a kind naming drive.
func ResourceID(v any) string {
	switch r := v.(type) {
	case nil:
		return ""
	case Identifier:
		return r.ResourceID()
	case *sheets.SpreadsheetInfo:
		if r != nil {
			return r.ID
		}
	case *drive.FileInfo:
		if r != nil {
			return r.ID
		}
	case *docs.DocumentInfo:
		if r != nil {
			return r.ID
		}
	case *sheetsapi.Spreadsheet:
		if r != nil {
			return r.SpreadsheetId
		}
	case *driveapi.File:
		if r != nil {
			return r.Id
		}
	case *docsapi.Document:
		if r != nil {
			return r.DocumentId
		}
	case map[string]any:
		return idFromMap(func(k string) (string, bool) {
			s, ok := r[k].(string)
			return s, ok
		})
	case map[string]string:
		return idFromMap(func(k string) (string, bool) {
			s, ok := r[k]
			return s, ok
		})
	}
	return ""
}

func idFromMap(get func(string) (string, bool)) string {
	if id, ok := get("spreadsheetId"); ok && id != "" {
		return id
	}
	if id, ok := get("documentId"); ok && id != "" {
		return id
	}
	if id, ok := get("id"); ok && id != "" {
		if kind, _ := get("kind"); strings.Contains(kind, "drive") {
			return id
		}
	}
	return ""
}

// ResourceKind names the kind of a created resource for metrics:
// spreadsheet, document, folder or file. It returns "" for anything else.
func ResourceKind(v any) string {
	switch r := v.(type) {
	case *sheets.SpreadsheetInfo, *sheetsapi.Spreadsheet:
		return "spreadsheet"
	case *docs.DocumentInfo, *docsapi.Document:
		return "document"
	case *drive.FileInfo:
		if r != nil {
			return fileKind(r.MimeType)
		}
	case *driveapi.File:
		if r != nil {
			return fileKind(r.MimeType)
		}
	}
	return ""
}

func fileKind(mimeType string) string {
	switch mimeType {
	case drive.FolderMimeType:
		return "folder"
	case drive.SpreadsheetMimeType:
		return "spreadsheet"
	case drive.DocumentMimeType:
		return "document"
	default:
		return "file"
	}
}
