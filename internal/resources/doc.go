// Package resources provides MCP resources describing the running engine.
// Resources are read-only data sources that MCP clients can fetch before
// calling tools:
//
//   - engine://config: the effective configuration without credentials
//   - engine://db/schema: the tables of the spreadsheet database
package resources
