package services

import (
	"context"

	"github.com/teemow/automation-engine/internal/autoshare"
	"github.com/teemow/automation-engine/internal/docs"
	"github.com/teemow/automation-engine/internal/instrumentation"
)

// CreateDocument creates a Google Doc and shares it with the owner.
func (s *Services) CreateDocument(ctx context.Context, title string) (*docs.DocumentInfo, error) {
	return autoshare.Created(ctx, s.sharer, func(d *docs.DocumentInfo) string {
		if d == nil {
			return ""
		}
		return d.ID
	}, func(ctx context.Context) (*docs.DocumentInfo, error) {
		var doc *docs.DocumentInfo
		err := s.Observe(ctx, instrumentation.ServiceDocs, instrumentation.OperationCreate, "", func(ctx context.Context) error {
			client, err := s.Docs(ctx)
			if err != nil {
				return err
			}
			doc, err = client.CreateDocument(ctx, title)
			return err
		})
		return doc, err
	})
}

// ReadDocument returns the plain text of a document.
func (s *Services) ReadDocument(ctx context.Context, documentID string) (string, error) {
	var text string
	err := s.Observe(ctx, instrumentation.ServiceDocs, instrumentation.OperationGet, documentID, func(ctx context.Context) error {
		client, err := s.Docs(ctx)
		if err != nil {
			return err
		}
		text, err = client.GetPlainText(ctx, documentID)
		return err
	})
	return text, err
}

// AppendToDocument appends text at the end of the document body.
func (s *Services) AppendToDocument(ctx context.Context, documentID, text string) error {
	return s.Observe(ctx, instrumentation.ServiceDocs, instrumentation.OperationAppend, documentID, func(ctx context.Context) error {
		client, err := s.Docs(ctx)
		if err != nil {
			return err
		}
		return client.AppendText(ctx, documentID, text)
	})
}
