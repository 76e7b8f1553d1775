// Package cmd implements the command-line interface for automation-engine.
//
// This package provides the following commands:
//   - setup: Check the service account key, .env file and enabled APIs
//   - drive: Create folders, upload, list and share Drive files
//   - sheets: Create spreadsheets and read or write ranges
//   - docs: Create documents and print their text
//   - db init: Create the spreadsheet database
//   - serve: Start the MCP server to provide tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// Everything the CLI creates in Drive is shared with OWNER_EMAIL.
package cmd
