package sheets

import "fmt"

// SheetSpec describes a sheet (tab) to create along with a spreadsheet.
type SheetSpec struct {
	// ID pins the sheet id. Nil lets the API choose one.
	ID *int64 `json:"sheetId,omitempty"`

	Title string `json:"title"`

	// Rows and Columns size the grid; zero keeps the API default.
	Rows    int64 `json:"rows,omitempty"`
	Columns int64 `json:"columns,omitempty"`
}

// SheetInfo describes an existing sheet.
type SheetInfo struct {
	ID          int64  `json:"sheetId"`
	Title       string `json:"title"`
	Index       int64  `json:"index"`
	RowCount    int64  `json:"rowCount"`
	ColumnCount int64  `json:"columnCount"`
}

// SpreadsheetInfo describes a spreadsheet.
type SpreadsheetInfo struct {
	ID     string      `json:"spreadsheetId"`
	Title  string      `json:"title"`
	URL    string      `json:"url"`
	Sheets []SheetInfo `json:"sheets,omitempty"`
}

// Sheet returns the sheet with the given title.
func (s *SpreadsheetInfo) Sheet(title string) (SheetInfo, bool) {
	for _, sh := range s.Sheets {
		if sh.Title == title {
			return sh, true
		}
	}
	return SheetInfo{}, false
}

// UpdateResult summarises a values update or append.
type UpdateResult struct {
	UpdatedRange   string `json:"updatedRange"`
	UpdatedRows    int64  `json:"updatedRows"`
	UpdatedColumns int64  `json:"updatedColumns"`
	UpdatedCells   int64  `json:"updatedCells"`
}

// Range builds an A1 range such as 'Sheet 1'!A1:C3. The sheet title is
// always quoted so titles with spaces or punctuation work.
func Range(sheet, cells string) string {
	quoted := "'" + escapeTitle(sheet) + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}

func escapeTitle(title string) string {
	out := make([]rune, 0, len(title))
	for _, r := range title {
		if r == '\'' {
			out = append(out, '\'')
		}
		out = append(out, r)
	}
	return string(out)
}

// ColumnLetter converts a 1-based column index into its A1 letters
// (1 -> A, 26 -> Z, 27 -> AA).
func ColumnLetter(n int) string {
	if n <= 0 {
		return ""
	}
	var letters []byte
	for n > 0 {
		n--
		letters = append([]byte{byte('A' + n%26)}, letters...)
		n /= 26
	}
	return string(letters)
}

// SpreadsheetURL returns the editor URL of a spreadsheet.
func SpreadsheetURL(spreadsheetID string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit", spreadsheetID)
}
