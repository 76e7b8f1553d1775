package sheets_tools

import (
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/server"
)

// RegisterSheetsTools registers the spreadsheet and database tools. Tools that
// modify data are only registered when readOnly is false.
func RegisterSheetsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerValueTools(s, sc, readOnly); err != nil {
		return err
	}
	return registerDatabaseTools(s, sc, readOnly)
}
