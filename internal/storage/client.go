// Package storage provides a small client for Cloud Storage buckets and
// objects over the JSON API.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

// DefaultLocation is used by CreateBucket when no location is given.
const DefaultLocation = "US"

// BucketInfo describes a bucket.
type BucketInfo struct {
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	StorageClass string    `json:"storageClass,omitempty"`
	Created      time.Time `json:"created"`
}

// ObjectInfo describes an object.
type ObjectInfo struct {
	Bucket      string    `json:"bucket"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType,omitempty"`
	Size        uint64    `json:"size"`
	Updated     time.Time `json:"updated"`
	MediaLink   string    `json:"mediaLink,omitempty"`
}

// Client is a Cloud Storage client bound to a project.
type Client struct {
	service   *storage.Service
	projectID string
}

// NewClient creates a Cloud Storage client for projectID.
func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	srv, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create storage service: %w", err)
	}
	return &Client{service: srv, projectID: projectID}, nil
}

// CreateBucket creates a bucket. An empty location means DefaultLocation.
func (c *Client) CreateBucket(ctx context.Context, name, location string) (*BucketInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if location == "" {
		location = DefaultLocation
	}

	b, err := c.service.Buckets.Insert(c.projectID, &storage.Bucket{
		Name:     name,
		Location: location,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket %s: %w", name, err)
	}

	return &BucketInfo{
		Name:         b.Name,
		Location:     b.Location,
		StorageClass: b.StorageClass,
		Created:      parseTime(b.TimeCreated),
	}, nil
}

// UploadObject writes content to bucket/name.
func (c *Client) UploadObject(ctx context.Context, bucket, name string, content io.Reader, contentType string) (*ObjectInfo, error) {
	if bucket == "" || name == "" {
		return nil, fmt.Errorf("bucket and object name are required")
	}

	call := c.service.Objects.Insert(bucket, &storage.Object{
		Name:        name,
		ContentType: contentType,
	})
	if contentType != "" {
		call = call.Media(content, googleapi.ContentType(contentType))
	} else {
		call = call.Media(content)
	}

	obj, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to upload gs://%s/%s: %w", bucket, name, err)
	}
	return toObjectInfo(obj), nil
}

// DownloadObject returns the content of bucket/name. The caller must close it.
func (c *Client) DownloadObject(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	resp, err := c.service.Objects.Get(bucket, name).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download gs://%s/%s: %w", bucket, name, err)
	}
	return resp.Body, nil
}

// ListObjects lists objects under prefix, up to limit (zero means all).
func (c *Client) ListObjects(ctx context.Context, bucket, prefix string, limit int) ([]*ObjectInfo, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	var out []*ObjectInfo
	call := c.service.Objects.List(bucket)
	if prefix != "" {
		call = call.Prefix(prefix)
	}
	err := call.Pages(ctx, func(page *storage.Objects) error {
		for _, obj := range page.Items {
			out = append(out, toObjectInfo(obj))
			if limit > 0 && len(out) >= limit {
				return errLimitReached
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		return nil, fmt.Errorf("failed to list gs://%s/%s: %w", bucket, prefix, err)
	}
	return out, nil
}

var errLimitReached = errors.New("limit reached")

func toObjectInfo(obj *storage.Object) *ObjectInfo {
	return &ObjectInfo{
		Bucket:      obj.Bucket,
		Name:        obj.Name,
		ContentType: obj.ContentType,
		Size:        obj.Size,
		Updated:     parseTime(obj.Updated),
		MediaLink:   obj.MediaLink,
	}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
