package google

// OAuth scopes requested by the service account.
const (
	ScopeDrive         = "https://www.googleapis.com/auth/drive"
	ScopeSpreadsheets  = "https://www.googleapis.com/auth/spreadsheets"
	ScopeDocuments     = "https://www.googleapis.com/auth/documents"
	ScopeGmailSend     = "https://www.googleapis.com/auth/gmail.send"
	ScopeCloudPlatform = "https://www.googleapis.com/auth/cloud-platform"
)

// WorkspaceScopes cover Drive, Sheets, Docs and sending mail.
var WorkspaceScopes = []string{
	ScopeDrive,
	ScopeSpreadsheets,
	ScopeDocuments,
	ScopeGmailSend,
}

// DefaultScopes are the Workspace scopes plus cloud-platform, which covers
// Storage, Pub/Sub, Cloud Tasks, Cloud Scheduler, Secret Manager, Service
// Usage and Vertex AI.
var DefaultScopes = append(append([]string{}, WorkspaceScopes...), ScopeCloudPlatform)
