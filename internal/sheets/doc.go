// Package sheets provides a client for the Google Sheets v4 API.
//
// Value writes use USER_ENTERED input so formulas and dates behave as if
// typed into the spreadsheet UI. Ranges are A1 notation; Range and
// ColumnLetter help build them.
package sheets
