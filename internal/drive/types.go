package drive

import "time"

// FileInfo is the subset of Drive file metadata the engine reports back.
// Size is zero for folders and Workspace files.
type FileInfo struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	MimeType     string     `json:"mimeType"`
	Size         int64      `json:"size,omitempty"`
	CreatedTime  time.Time  `json:"createdTime"`
	ModifiedTime time.Time  `json:"modifiedTime"`
	WebViewLink  string     `json:"webViewLink,omitempty"`
	Parents      []string   `json:"parents,omitempty"`
	Owners       []User     `json:"owners,omitempty"`
	Shared       bool       `json:"shared"`
	Trashed      bool       `json:"trashed"`
	TrashedTime  *time.Time `json:"trashedTime,omitempty"`

	// Permissions is only filled by GetFile.
	Permissions []Permission `json:"permissions,omitempty"`
}

// User is a file owner.
type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// Permission is a grant on a file. EmailAddress is set for user and group
// grants, Domain for domain grants.
type Permission struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Role         string `json:"role"`
	EmailAddress string `json:"emailAddress,omitempty"`
	Domain       string `json:"domain,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
}

// ListOptions filters ListFiles. Query uses the Drive search syntax, e.g.
// "name contains 'report' and mimeType='application/pdf'". Trashed files
// are excluded unless IncludeTrashed is set.
type ListOptions struct {
	Query          string
	MaxResults     int
	OrderBy        string
	PageToken      string
	IncludeTrashed bool
	Spaces         string
}

// UploadOptions describe a new file. Drive sniffs the MIME type when
// MimeType is empty.
type UploadOptions struct {
	ParentFolders []string
	Description   string
	MimeType      string
	ModifiedTime  *time.Time
}

// MoveOptions rename a file and change its parents. An empty NewName keeps
// the current name.
type MoveOptions struct {
	NewName       string
	AddParents    []string
	RemoveParents []string
}

// Permission grantee types.
const (
	PermissionTypeUser   = "user"
	PermissionTypeGroup  = "group"
	PermissionTypeDomain = "domain"
	PermissionTypeAnyone = "anyone"
)

// ShareOptions describe a grant. Role is one of owner, organizer,
// fileOrganizer, writer, commenter or reader.
type ShareOptions struct {
	Type         string
	Role         string
	EmailAddress string
	Domain       string

	// SendNotificationEmail is always sent to Drive. False suppresses the
	// notification Drive would otherwise send for user and group grants.
	SendNotificationEmail bool
	EmailMessage          string
}
