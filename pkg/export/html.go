package export

import (
	"bytes"
	"html/template"
	"time"

	"github.com/aretw0/patchlore/pkg/core"
)

const pageStyles = `
body { background: #0d0b12; color: #d8d2e6; font-family: Georgia, "Times New Roman", serif; margin: 0; }
.patch-notes { max-width: 760px; margin: 0 auto; padding: 2rem 1.5rem; }
h1 { color: #b48ef0; letter-spacing: 0.05em; }
h2 { color: #e36f6f; border-bottom: 1px solid #3a2f4d; padding-bottom: 0.3rem; }
.date { color: #857a99; font-style: italic; }
.entry { list-style: none; margin: 0 0 1.2rem; padding: 0.8rem 1rem; background: #17131f; border-left: 3px solid #6b4fa3; }
.section-breaking .entry { border-left-color: #e36f6f; }
.themed { margin: 0 0 0.4rem; }
.original, .commit { margin: 0; color: #9d93b1; font-size: 0.9rem; }
code { color: #c9b3ff; }
`

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"short": core.ShortHash,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Patch Notes {{.Version}}</title>
{{- if .IncludeStyles}}
<style>{{.Styles}}</style>
{{- end}}
</head>
<body>
<main class="patch-notes">
<header>
<h1>Patch Notes {{.Version}}</h1>
<p class="date"><time datetime="{{.DateISO}}">{{.DateHuman}}</time></p>
</header>
{{- range .Sections}}
<section class="section section-{{.Type}}">
<h2>{{.Title}}</h2>
<ul>
{{- range .Entries}}
<li class="entry">
<p class="themed"><strong>{{.ThemedText}}</strong></p>
<p class="original">Original: {{.OriginalText}}</p>
<p class="commit">Commit: <code>{{short .CommitHash}}</code></p>
</li>
{{- end}}
</ul>
</section>
{{- end}}
</main>
</body>
</html>
`))

type pageData struct {
	Version       string
	DateISO       string
	DateHuman     string
	IncludeStyles bool
	Styles        template.CSS
	Sections      []core.Section
}

// HTMLEncoder renders a standalone HTML page. All document text is escaped.
type HTMLEncoder struct{}

func (e *HTMLEncoder) MimeType() string  { return "text/html" }
func (e *HTMLEncoder) Extension() string { return ".html" }

func (e *HTMLEncoder) Encode(doc *core.Document, opts core.ExportOptions) ([]byte, error) {
	data := pageData{
		Version:       doc.Version,
		DateISO:       doc.Date.UTC().Format(time.RFC3339),
		DateHuman:     doc.Date.Format("January 2, 2006"),
		IncludeStyles: opts.IncludeStyles,
		Styles:        template.CSS(pageStyles),
		Sections:      doc.Sections,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
