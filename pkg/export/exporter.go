// Package export serializes patch-note documents into markdown, HTML, JSON,
// YAML and CSV. Exporting performs no randomness: the same document always
// produces the same bytes.
package export

import (
	"regexp"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/aretw0/patchlore/pkg/core"
)

// Encoder renders a document in one format. Encoders must not mutate doc.
type Encoder interface {
	Encode(doc *core.Document, opts core.ExportOptions) ([]byte, error)
	MimeType() string
	Extension() string
}

// DefaultEncoders returns the standard set of encoders.
func DefaultEncoders() map[core.Format]Encoder {
	return map[core.Format]Encoder{
		core.FormatMarkdown: &MarkdownEncoder{},
		core.FormatHTML:     &HTMLEncoder{},
		core.FormatJSON:     &JSONEncoder{},
		core.FormatYAML:     &YAMLEncoder{},
		core.FormatCSV:      &CSVEncoder{},
	}
}

// Exporter dispatches documents to encoders by format.
type Exporter struct {
	encoders map[core.Format]Encoder
	logger   *zap.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the exporter logger.
func WithLogger(logger *zap.Logger) Option {
	return func(x *Exporter) {
		x.logger = logger
	}
}

// WithEncoder registers or replaces the encoder for a format.
func WithEncoder(format core.Format, enc Encoder) Option {
	return func(x *Exporter) {
		x.encoders[format] = enc
	}
}

// New creates an Exporter with the default encoders.
func New(opts ...Option) *Exporter {
	x := &Exporter{encoders: DefaultEncoders()}
	for _, opt := range opts {
		opt(x)
	}
	if x.logger == nil {
		x.logger = zap.NewNop()
	}
	return x
}

// Formats lists the registered formats, sorted.
func (x *Exporter) Formats() []core.Format {
	out := make([]core.Format, 0, len(x.encoders))
	for f := range x.encoders {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Export renders doc. An unknown format fails with INVALID_FORMAT and no output.
func (x *Exporter) Export(doc *core.Document, opts core.ExportOptions) (core.ExportResult, error) {
	if doc == nil {
		return core.ExportResult{}, core.WithCode(core.ErrNilDocument, core.CodeExportFailed)
	}

	enc, ok := x.encoders[opts.Format]
	if !ok {
		err := errors.WithHint(
			errors.Wrapf(core.ErrUnsupportedFormat, "format %q", opts.Format),
			"supported formats are markdown, html, json, yaml and csv",
		)
		return core.ExportResult{}, core.WithCode(err, core.CodeInvalidFormat)
	}

	data, err := enc.Encode(doc, opts)
	if err != nil {
		return core.ExportResult{}, core.WithCode(errors.Wrapf(err, "export %s", opts.Format), core.CodeExportFailed)
	}

	x.logger.Debug("exported document",
		zap.String("format", string(opts.Format)),
		zap.String("version", doc.Version),
		zap.Int("bytes", len(data)),
	)

	return core.ExportResult{
		Content:  string(data),
		MimeType: enc.MimeType(),
		Filename: Filename(doc, enc.Extension()),
	}, nil
}

var unsafeSlugChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename returns patch-notes-<slug><ext>, where slug is the sanitized
// version or, for an unversioned document, its date.
func Filename(doc *core.Document, ext string) string {
	slug := strings.Trim(unsafeSlugChars.ReplaceAllString(doc.Version, "-"), "-")
	if slug == "" {
		slug = doc.Date.Format("2006-01-02")
	}
	return "patch-notes-" + slug + ext
}

var _ core.Exporter = (*Exporter)(nil)
