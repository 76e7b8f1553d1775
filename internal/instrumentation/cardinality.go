package instrumentation

import "strings"

// ExtractUserDomain extracts the domain part from an email address so metrics
// and general logs never carry a full address.
//
//	ExtractUserDomain("jane@example.com")  // "example.com"
//	ExtractUserDomain("invalid")           // "unknown"
func ExtractUserDomain(email string) string {
	if email == "" {
		return "unknown"
	}

	parts := strings.Split(email, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}

	return "unknown"
}

// Operation types for Google API metrics.
const (
	OperationList     = "list"
	OperationGet      = "get"
	OperationCreate   = "create"
	OperationUpdate   = "update"
	OperationAppend   = "append"
	OperationDelete   = "delete"
	OperationShare    = "share"
	OperationUpload   = "upload"
	OperationPublish  = "publish"
	OperationAccess   = "access"
	OperationGenerate = "generate"
	OperationQuery    = "query"
)
