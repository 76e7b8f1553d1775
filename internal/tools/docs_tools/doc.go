// Package docs_tools provides MCP tools for Google Docs.
//
// docs_read_document and docs_get_document_metadata are always available.
// docs_create_document and docs_append_text are registered only when write
// tools are enabled. New documents are shared with the configured owner.
package docs_tools
