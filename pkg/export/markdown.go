package export

import (
	"bytes"

	"github.com/aretw0/patchlore/pkg/core"
)

// MarkdownEncoder renders a document as markdown.
type MarkdownEncoder struct{}

func (e *MarkdownEncoder) MimeType() string  { return "text/markdown" }
func (e *MarkdownEncoder) Extension() string { return ".md" }

func (e *MarkdownEncoder) Encode(doc *core.Document, _ core.ExportOptions) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Patch Notes ")
	buf.WriteString(doc.Version)
	buf.WriteString("\n\n")
	buf.WriteString("_Released ")
	buf.WriteString(doc.Date.Format("2006-01-02"))
	buf.WriteString("_\n")

	for _, s := range doc.Sections {
		buf.WriteString("\n## ")
		buf.WriteString(s.Title)
		buf.WriteString("\n")

		for _, entry := range s.Entries {
			buf.WriteString("\n**")
			buf.WriteString(entry.ThemedText)
			buf.WriteString("**\n")
			buf.WriteString("Original: ")
			buf.WriteString(entry.OriginalText)
			buf.WriteString("\n")
			buf.WriteString("Commit: ")
			buf.WriteString(core.ShortHash(entry.CommitHash))
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}
