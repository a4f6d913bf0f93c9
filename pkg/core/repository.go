package core

import "context"

// Rand is the random source used for template and vocabulary draws.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// Themer turns plain commit text into themed narrative text.
// A Themer is bound to one generation call and must not change underneath it.
type Themer interface {
	// Apply themes text for the given change type, returning text unchanged
	// when no rule applies or theming fails.
	Apply(text string, t ChangeType) string

	// Adjective draws a vocabulary adjective for section titles.
	Adjective() string

	// Noun draws a vocabulary noun for section titles.
	Noun() string
}

// ThemeResolver produces a Themer for a single generation call.
// An empty name resolves the currently active theme; an unknown name falls
// back to the built-in theme without failing.
type ThemeResolver interface {
	Resolve(name string, rng Rand) Themer
}

// Exporter serializes documents. Implementations must not mutate doc.
type Exporter interface {
	Export(doc *Document, opts ExportOptions) (ExportResult, error)
}

// CommitQuery selects commits from a history reader.
type CommitQuery struct {
	// Range is a revision range such as "v1.2.0..HEAD". Empty means all history.
	Range string
	// Paths restricts the log to commits touching these paths.
	Paths []string
	// Limit caps the number of commits; zero means no cap.
	Limit int
}

// CommitSource reads commit records from version control.
type CommitSource interface {
	Commits(ctx context.Context, q CommitQuery) ([]CommitRecord, error)
}
