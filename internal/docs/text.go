package docs

import (
	"fmt"
	"strings"

	docs "google.golang.org/api/docs/v1"
)

// PlainText extracts the text of a document. Tabbed documents are rendered
// tab by tab with a "=== title ===" banner; table cells are tab separated.
func PlainText(doc *docs.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}

	var b strings.Builder
	if doc.Title != "" {
		b.WriteString(doc.Title)
		b.WriteString("\n\n")
	}

	if len(doc.Tabs) == 0 {
		if doc.Body != nil {
			writeContent(&b, doc.Body.Content)
		}
		return b.String(), nil
	}

	writeTabs(&b, doc.Tabs, 0)
	return b.String(), nil
}

func writeTabs(b *strings.Builder, tabs []*docs.Tab, depth int) {
	for i, tab := range tabs {
		title := ""
		if tab.TabProperties != nil {
			title = tab.TabProperties.Title
		}
		if title == "" && (i > 0 || depth > 0) {
			title = fmt.Sprintf("Tab %d", i+1)
		}
		if title != "" {
			b.WriteString(strings.Repeat("  ", depth))
			b.WriteString("=== " + title + " ===\n\n")
		}

		if tab.DocumentTab != nil && tab.DocumentTab.Body != nil {
			writeContent(b, tab.DocumentTab.Body.Content)
		}
		writeTabs(b, tab.ChildTabs, depth+1)
		b.WriteString("\n")
	}
}

func writeContent(b *strings.Builder, content []*docs.StructuralElement) {
	for _, el := range content {
		switch {
		case el.Paragraph != nil:
			b.WriteString(paragraphText(el.Paragraph))
		case el.Table != nil:
			for _, row := range el.Table.TableRows {
				for _, cell := range row.TableCells {
					for _, cellEl := range cell.Content {
						if cellEl.Paragraph != nil {
							b.WriteString(strings.TrimRight(paragraphText(cellEl.Paragraph), "\n"))
						}
					}
					b.WriteString("\t")
				}
				b.WriteString("\n")
			}
		}
	}
}

func paragraphText(p *docs.Paragraph) string {
	var s strings.Builder
	for _, el := range p.Elements {
		if el.TextRun != nil {
			s.WriteString(el.TextRun.Content)
		}
	}
	return s.String()
}
