package export

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/patchlore/pkg/core"
)

// documentDTO is the wire shape shared by the JSON and YAML encoders.
type documentDTO struct {
	Version         string       `json:"version" yaml:"version"`
	Date            string       `json:"date" yaml:"date"`
	Sections        []sectionDTO `json:"sections" yaml:"sections"`
	OriginalCommits []commitDTO  `json:"originalCommits" yaml:"originalCommits"`
}

type sectionDTO struct {
	Title   string     `json:"title" yaml:"title"`
	Type    string     `json:"type" yaml:"type"`
	Entries []entryDTO `json:"entries" yaml:"entries"`
}

type entryDTO struct {
	Themed     string `json:"themed" yaml:"themed"`
	Original   string `json:"original" yaml:"original"`
	CommitHash string `json:"commitHash" yaml:"commitHash"`
}

type commitDTO struct {
	Hash         string   `json:"hash" yaml:"hash"`
	Author       string   `json:"author" yaml:"author"`
	Email        string   `json:"email" yaml:"email"`
	Timestamp    string   `json:"timestamp" yaml:"timestamp"`
	Message      string   `json:"message" yaml:"message"`
	ChangedFiles []string `json:"changedFiles" yaml:"changedFiles"`
}

// formatTime renders instants as RFC 3339 UTC with full precision so the
// round trip preserves them exactly.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func toDTO(doc *core.Document) documentDTO {
	out := documentDTO{
		Version:         doc.Version,
		Date:            formatTime(doc.Date),
		Sections:        make([]sectionDTO, 0, len(doc.Sections)),
		OriginalCommits: make([]commitDTO, 0, len(doc.OriginalCommits)),
	}
	for _, s := range doc.Sections {
		sec := sectionDTO{Title: s.Title, Type: string(s.Type), Entries: make([]entryDTO, 0, len(s.Entries))}
		for _, e := range s.Entries {
			sec.Entries = append(sec.Entries, entryDTO{Themed: e.ThemedText, Original: e.OriginalText, CommitHash: e.CommitHash})
		}
		out.Sections = append(out.Sections, sec)
	}
	for _, c := range doc.OriginalCommits {
		files := append([]string{}, c.ChangedFiles...)
		out.OriginalCommits = append(out.OriginalCommits, commitDTO{
			Hash:         c.Hash,
			Author:       c.Author,
			Email:        c.Email,
			Timestamp:    formatTime(c.Timestamp),
			Message:      c.Message,
			ChangedFiles: files,
		})
	}
	return out
}

func fromDTO(in documentDTO) (*core.Document, error) {
	date, err := time.Parse(time.RFC3339Nano, in.Date)
	if err != nil {
		return nil, errors.Wrap(err, "invalid document date")
	}

	doc := &core.Document{Version: in.Version, Date: date}
	for i, s := range in.Sections {
		t := core.ChangeType(s.Type)
		if !t.Valid() {
			return nil, errors.Newf("section %d has unknown type %q", i, s.Type)
		}
		sec := core.Section{Title: s.Title, Type: t}
		for _, e := range s.Entries {
			sec.Entries = append(sec.Entries, core.NarrativeEntry{ThemedText: e.Themed, OriginalText: e.Original, CommitHash: e.CommitHash})
		}
		doc.Sections = append(doc.Sections, sec)
	}
	for _, c := range in.OriginalCommits {
		ts, err := time.Parse(time.RFC3339Nano, c.Timestamp)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid timestamp for commit %s", c.Hash)
		}
		doc.OriginalCommits = append(doc.OriginalCommits, core.CommitRecord{
			Hash:         c.Hash,
			Author:       c.Author,
			Email:        c.Email,
			Timestamp:    ts,
			Message:      c.Message,
			ChangedFiles: c.ChangedFiles,
		})
	}
	return doc, nil
}

// JSONEncoder renders the document structure as JSON.
type JSONEncoder struct{}

func (e *JSONEncoder) MimeType() string  { return "application/json" }
func (e *JSONEncoder) Extension() string { return ".json" }

func (e *JSONEncoder) Encode(doc *core.Document, opts core.ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// Keep <, > and & literal so commit text survives verbatim.
	enc.SetEscapeHTML(false)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(toDTO(doc)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeJSON parses output of the JSON encoder back into a Document.
func DecodeJSON(data []byte) (*core.Document, error) {
	var dto documentDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, errors.Wrap(err, "invalid json")
	}
	return fromDTO(dto)
}

// YAMLEncoder renders the document structure as YAML.
type YAMLEncoder struct{}

func (e *YAMLEncoder) MimeType() string  { return "application/yaml" }
func (e *YAMLEncoder) Extension() string { return ".yaml" }

func (e *YAMLEncoder) Encode(doc *core.Document, _ core.ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toDTO(doc)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeYAML parses output of the YAML encoder back into a Document.
func DecodeYAML(data []byte) (*core.Document, error) {
	var dto documentDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, errors.Wrap(err, "invalid yaml")
	}
	return fromDTO(dto)
}
