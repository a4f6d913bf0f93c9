package export

import (
	"bytes"
	"encoding/csv"

	"github.com/aretw0/patchlore/pkg/core"
)

var csvHeader = []string{"section", "type", "themed", "original", "commit"}

// CSVEncoder renders one row per entry.
type CSVEncoder struct{}

func (e *CSVEncoder) MimeType() string  { return "text/csv" }
func (e *CSVEncoder) Extension() string { return ".csv" }

func (e *CSVEncoder) Encode(doc *core.Document, _ core.ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, s := range doc.Sections {
		for _, entry := range s.Entries {
			row := []string{s.Title, string(s.Type), entry.ThemedText, entry.OriginalText, entry.CommitHash}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
