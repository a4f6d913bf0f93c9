// Package core holds the patch-note domain: commit records, the classifier,
// the narrative generator and the uniform error envelope.
package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

// ChangeType is the coarse category assigned to a commit.
type ChangeType string

const (
	ChangeFeature  ChangeType = "feature"
	ChangeFix      ChangeType = "fix"
	ChangeBreaking ChangeType = "breaking"
	ChangeOther    ChangeType = "other"
)

// ChangeTypes returns every change type in section order.
func ChangeTypes() []ChangeType {
	return []ChangeType{ChangeFeature, ChangeFix, ChangeBreaking, ChangeOther}
}

// Valid reports whether t is one of the known change types.
func (t ChangeType) Valid() bool {
	switch t {
	case ChangeFeature, ChangeFix, ChangeBreaking, ChangeOther:
		return true
	default:
		return false
	}
}

// CommitRecord is one parsed version-control change.
// It is produced by a history reader and treated as immutable afterwards.
type CommitRecord struct {
	Hash         string
	Author       string
	Email        string
	Timestamp    time.Time
	Message      string
	ChangedFiles []string
}

// Validate checks the fields a history reader must always populate.
func (c CommitRecord) Validate() error {
	if strings.TrimSpace(c.Hash) == "" {
		return &ValidationError{Subject: "commit", Field: "hash", Reason: "commit hash is required"}
	}
	if strings.TrimSpace(c.Message) == "" {
		return &ValidationError{Subject: "commit", Field: "message", Reason: "commit " + c.Hash + " has an empty message"}
	}
	if !utf8.ValidString(c.Message) {
		return &ValidationError{Subject: "commit", Field: "message", Reason: "commit " + c.Hash + " message is not valid UTF-8"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Subject: "commit", Field: "timestamp", Reason: "commit " + c.Hash + " has no timestamp"}
	}
	return nil
}

// ShortHash returns the first seven characters of the hash.
func (c CommitRecord) ShortHash() string {
	return ShortHash(c.Hash)
}

// ShortHash truncates a commit hash to its abbreviated form.
func ShortHash(hash string) string {
	if len(hash) <= 7 {
		return hash
	}
	return hash[:7]
}

// NarrativeEntry pairs the themed rendering of a commit with its verbatim message.
type NarrativeEntry struct {
	ThemedText   string
	OriginalText string
	CommitHash   string
}

// Section groups entries sharing one change type.
type Section struct {
	Title   string
	Type    ChangeType
	Entries []NarrativeEntry
}

// Document is the assembled patch note.
// It must not be mutated once Generate returns it.
type Document struct {
	Version         string
	Date            time.Time
	Sections        []Section
	OriginalCommits []CommitRecord
}

// EntryCount returns the number of entries across all sections.
func (d *Document) EntryCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Entries)
	}
	return n
}

// Format identifies an export encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
)

// ExportOptions controls a single export.
type ExportOptions struct {
	Format        Format
	IncludeStyles bool
	Pretty        bool
}

// ExportResult is a serialized rendering of a Document.
type ExportResult struct {
	Content  string
	MimeType string
	Filename string
}
