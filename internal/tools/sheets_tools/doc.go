// Package sheets_tools provides MCP tools for Google Sheets and for the
// spreadsheet-backed database in the sheetsdb package.
//
// Spreadsheet tools work on plain A1 ranges. The db_* tools address the
// executions, tenants and logs tables of a database spreadsheet created by
// db_create or the "db init" command.
package sheets_tools
