package docs

import (
	"context"
	"fmt"

	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// Client wraps the Google Docs API service
type Client struct {
	service *docs.Service
}

// NewClient creates a Docs client from API options.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}
	return &Client{service: svc}, nil
}

// CreateDocument creates an empty document with the given title
func (c *Client) CreateDocument(ctx context.Context, title string) (*DocumentInfo, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	doc, err := c.service.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	return toDocumentInfo(doc), nil
}

// GetDocument retrieves a document including the content of all tabs
func (c *Client) GetDocument(ctx context.Context, documentID string) (*docs.Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("documentID is required")
	}

	doc, err := c.service.Documents.Get(documentID).
		Context(ctx).
		IncludeTabsContent(true).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", documentID, err)
	}

	return doc, nil
}

// GetPlainText returns the text of a document
func (c *Client) GetPlainText(ctx context.Context, documentID string) (string, error) {
	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	return PlainText(doc)
}

// AppendText inserts text at the end of the document body
func (c *Client) AppendText(ctx context.Context, documentID, text string) error {
	if documentID == "" {
		return fmt.Errorf("documentID is required")
	}
	if text == "" {
		return fmt.Errorf("text is required")
	}

	req := &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Text:                 text,
				EndOfSegmentLocation: &docs.EndOfSegmentLocation{},
			},
		}},
	}

	if _, err := c.service.Documents.BatchUpdate(documentID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to append to document %s: %w", documentID, err)
	}

	return nil
}

func toDocumentInfo(doc *docs.Document) *DocumentInfo {
	return &DocumentInfo{
		ID:         doc.DocumentId,
		Title:      doc.Title,
		RevisionID: doc.RevisionId,
		URL:        DocumentURL(doc.DocumentId),
	}
}
