package docs

import "fmt"

// DocumentInfo describes a Google Doc
type DocumentInfo struct {
	ID         string `json:"documentId"`
	Title      string `json:"title"`
	RevisionID string `json:"revisionId,omitempty"`
	URL        string `json:"url"`
}

// DocumentURL returns the editor URL of a document.
func DocumentURL(documentID string) string {
	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", documentID)
}
