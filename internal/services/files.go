package services

import (
	"context"
	"fmt"
	"io"

	"github.com/teemow/automation-engine/internal/autoshare"
	"github.com/teemow/automation-engine/internal/config"
	"github.com/teemow/automation-engine/internal/drive"
	"github.com/teemow/automation-engine/internal/instrumentation"
)

// DefaultUploadMimeType is used by UploadFile when no MIME type is given.
const DefaultUploadMimeType = "text/plain"

func fileID(f *drive.FileInfo) string {
	if f == nil {
		return ""
	}
	return f.ID
}

func parents(parentID string) []string {
	if parentID == "" {
		return nil
	}
	return []string{parentID}
}

// CreateFolder creates a folder, optionally inside parentID, and shares it
// with the owner.
func (s *Services) CreateFolder(ctx context.Context, name, parentID string) (*drive.FileInfo, error) {
	return autoshare.Created(ctx, s.sharer, fileID, func(ctx context.Context) (*drive.FileInfo, error) {
		var folder *drive.FileInfo
		err := s.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationCreate, "", func(ctx context.Context) error {
			client, err := s.Drive(ctx)
			if err != nil {
				return err
			}
			folder, err = client.CreateFolder(ctx, name, parents(parentID))
			return err
		})
		return folder, err
	})
}

// UploadFile uploads content as a new file and shares it with the owner.
// An empty mimeType means text/plain.
func (s *Services) UploadFile(ctx context.Context, name string, content io.Reader, mimeType, parentID string) (*drive.FileInfo, error) {
	if mimeType == "" {
		mimeType = DefaultUploadMimeType
	}
	return autoshare.Created(ctx, s.sharer, fileID, func(ctx context.Context) (*drive.FileInfo, error) {
		var file *drive.FileInfo
		err := s.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationUpload, "", func(ctx context.Context) error {
			client, err := s.Drive(ctx)
			if err != nil {
				return err
			}
			file, err = client.UploadFile(ctx, name, content, &drive.UploadOptions{
				ParentFolders: parents(parentID),
				MimeType:      mimeType,
			})
			return err
		})
		return file, err
	})
}

// CreateFile creates an empty file of any MIME type, such as a Google Form
// or Slides deck, and shares it with the owner.
func (s *Services) CreateFile(ctx context.Context, name, mimeType, parentID string) (*drive.FileInfo, error) {
	if mimeType == "" {
		return nil, fmt.Errorf("mime type is required")
	}
	return autoshare.Created(ctx, s.sharer, fileID, func(ctx context.Context) (*drive.FileInfo, error) {
		var file *drive.FileInfo
		err := s.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationCreate, "", func(ctx context.Context) error {
			client, err := s.Drive(ctx)
			if err != nil {
				return err
			}
			file, err = client.CreateFile(ctx, name, mimeType, parents(parentID))
			return err
		})
		return file, err
	})
}

// ListFiles lists files matching a Drive query. A pageSize of zero or less
// means DefaultPageSize.
func (s *Services) ListFiles(ctx context.Context, query string, pageSize int) ([]*drive.FileInfo, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	var files []*drive.FileInfo
	err := s.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationList, "", func(ctx context.Context) error {
		client, err := s.Drive(ctx)
		if err != nil {
			return err
		}
		files, _, err = client.ListFiles(ctx, &drive.ListOptions{Query: query, MaxResults: pageSize})
		return err
	})
	return files, err
}

// ShareExistingFile grants email the role on fileID. Unlike auto-share it
// notifies the recipient and returns errors. An empty email means the owner
// and an empty role means writer.
func (s *Services) ShareExistingFile(ctx context.Context, fileID, email, role string) (*drive.Permission, error) {
	if fileID == "" {
		return nil, fmt.Errorf("file id is required")
	}
	if email == "" {
		email = s.cfg.OwnerEmail
	}
	if email == "" {
		return nil, fmt.Errorf("no email given and no owner email configured")
	}
	if role == "" {
		role = config.DefaultRole
	}

	var perm *drive.Permission
	err := s.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationShare, fileID, func(ctx context.Context) error {
		client, err := s.Drive(ctx)
		if err != nil {
			return err
		}
		perm, err = client.ShareFile(ctx, fileID, &drive.ShareOptions{
			Type:                  drive.PermissionTypeUser,
			Role:                  role,
			EmailAddress:          email,
			SendNotificationEmail: true,
		})
		return err
	})
	return perm, err
}

// SearchFiles lists one page of files with full list options and returns the
// token of the next page.
func (s *Services) SearchFiles(ctx context.Context, options *drive.ListOptions) ([]*drive.FileInfo, string, error) {
	var (
		files []*drive.FileInfo
		next  string
	)
	err := s.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationList, "", func(ctx context.Context) error {
		client, err := s.Drive(ctx)
		if err != nil {
			return err
		}
		files, next, err = client.ListFiles(ctx, options)
		return err
	})
	return files, next, err
}

// GetFile returns file metadata.
func (s *Services) GetFile(ctx context.Context, fileID string) (*drive.FileInfo, error) {
	var file *drive.FileInfo
	err := s.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationGet, fileID, func(ctx context.Context) error {
		client, err := s.Drive(ctx)
		if err != nil {
			return err
		}
		file, err = client.GetFile(ctx, fileID)
		return err
	})
	return file, err
}

// DownloadFile returns the content of a binary file. The caller closes it.
func (s *Services) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	var body io.ReadCloser
	err := s.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationGet, fileID, func(ctx context.Context) error {
		client, err := s.Drive(ctx)
		if err != nil {
			return err
		}
		body, err = client.DownloadFile(ctx, fileID)
		return err
	})
	return body, err
}

// DeleteFile permanently deletes a file.
func (s *Services) DeleteFile(ctx context.Context, fileID string) error {
	return s.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationDelete, fileID, func(ctx context.Context) error {
		client, err := s.Drive(ctx)
		if err != nil {
			return err
		}
		return client.DeleteFile(ctx, fileID)
	})
}

// MoveFile renames a file or changes its parents.
func (s *Services) MoveFile(ctx context.Context, fileID string, options *drive.MoveOptions) (*drive.FileInfo, error) {
	var file *drive.FileInfo
	err := s.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationUpdate, fileID, func(ctx context.Context) error {
		client, err := s.Drive(ctx)
		if err != nil {
			return err
		}
		file, err = client.MoveFile(ctx, fileID, options)
		return err
	})
	return file, err
}

// ListPermissions lists the permissions of a file.
func (s *Services) ListPermissions(ctx context.Context, fileID string) ([]*drive.Permission, error) {
	var perms []*drive.Permission
	err := s.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationList, fileID, func(ctx context.Context) error {
		client, err := s.Drive(ctx)
		if err != nil {
			return err
		}
		perms, err = client.ListPermissions(ctx, fileID)
		return err
	})
	return perms, err
}

// RemovePermission revokes one permission of a file.
func (s *Services) RemovePermission(ctx context.Context, fileID, permissionID string) error {
	return s.Observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationDelete, fileID, func(ctx context.Context) error {
		client, err := s.Drive(ctx)
		if err != nil {
			return err
		}
		return client.RemovePermission(ctx, fileID, permissionID)
	})
}
