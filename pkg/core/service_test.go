package core_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aretw0/patchlore/pkg/core"
	"github.com/aretw0/patchlore/pkg/export"
	"github.com/aretw0/patchlore/pkg/theme"
)

var now = time.Date(2025, time.February, 9, 15, 4, 5, 0, time.UTC)

func clock() time.Time { return now }

func commit(hash, msg string) core.CommitRecord {
	return core.CommitRecord{Hash: hash, Author: "Test", Email: "t@example.com", Timestamp: now, Message: msg}
}

// MockThemer prefixes text with its change type.
type MockThemer struct {
	adjective, noun string
	panics          bool
	vocabPanics     bool
}

func (m MockThemer) Apply(text string, t core.ChangeType) string {
	if m.panics {
		panic("themer exploded")
	}
	return fmt.Sprintf("[%s] %s", t, text)
}
func (m MockThemer) Adjective() string {
	if m.vocabPanics {
		panic("no adjectives")
	}
	return m.adjective
}

func (m MockThemer) Noun() string {
	if m.vocabPanics {
		panic("no nouns")
	}
	return m.noun
}

// MockResolver records requested theme names.
type MockResolver struct {
	themer core.Themer
	asked  []string
}

func (m *MockResolver) Resolve(name string, _ core.Rand) core.Themer {
	m.asked = append(m.asked, name)
	return m.themer
}

// MockSource returns canned commits.
type MockSource struct {
	commits []core.CommitRecord
	err     error
}

func (m MockSource) Commits(context.Context, core.CommitQuery) ([]core.CommitRecord, error) {
	return m.commits, m.err
}

func sectionTypes(doc *core.Document) []core.ChangeType {
	var out []core.ChangeType
	for _, s := range doc.Sections {
		out = append(out, s.Type)
	}
	return out
}

func TestGenerate_ThreeKinds(t *testing.T) {
	svc := core.NewService(core.Config{Themes: &MockResolver{themer: MockThemer{adjective: "eerie", noun: "ghoul"}}, Now: clock})

	doc, err := svc.Generate(context.Background(), []core.CommitRecord{
		commit("a1", "Add login"),
		commit("b2", "Fix crash"),
		commit("c3", "Breaking: remove v1 API"),
	}, core.GenerateOptions{})
	require.NoError(t, err)

	assert.Equal(t, []core.ChangeType{core.ChangeFeature, core.ChangeFix, core.ChangeBreaking}, sectionTypes(doc))
	assert.Equal(t, 3, doc.EntryCount())
	for _, s := range doc.Sections {
		assert.Len(t, s.Entries, 1)
	}

	assert.Equal(t, "Eerie Summonings", doc.Sections[0].Title)
	assert.Equal(t, "Banished Ghouls", doc.Sections[1].Title)
	assert.Equal(t, core.BreakingTitle, doc.Sections[2].Title)

	assert.Equal(t, "[feature] Add login", doc.Sections[0].Entries[0].ThemedText)
	assert.Equal(t, "Add login", doc.Sections[0].Entries[0].OriginalText)
	assert.Equal(t, "a1", doc.Sections[0].Entries[0].CommitHash)

	assert.Equal(t, "v2025.2.9", doc.Version)
	assert.Equal(t, now, doc.Date)
}

func TestGenerate_Partition(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	words := []string{"add", "fix", "breaking", "docs", "new", "bug", "chore", "implement", "refactor"}

	var commits []core.CommitRecord
	for i := range 200 {
		msg := words[rng.IntN(len(words))] + " " + words[rng.IntN(len(words))]
		commits = append(commits, commit(fmt.Sprintf("h%03d", i), msg))
	}

	svc := core.NewService(core.Config{Themes: theme.NewRegistry(), Now: clock})
	doc, err := svc.Generate(context.Background(), commits, core.GenerateOptions{Version: "v1"})
	require.NoError(t, err)

	seen := map[string]core.ChangeType{}
	for _, s := range doc.Sections {
		require.NotEmpty(t, s.Entries, "empty sections are omitted")
		for _, e := range s.Entries {
			_, dup := seen[e.CommitHash]
			require.False(t, dup, "commit %s appears twice", e.CommitHash)
			seen[e.CommitHash] = s.Type
		}
	}
	require.Len(t, seen, len(commits))
	for _, c := range commits {
		assert.Equal(t, core.Classify(c.Message), seen[c.Hash], "commit %s", c.Hash)
	}

	if diff := cmp.Diff(commits, doc.OriginalCommits); diff != "" {
		t.Errorf("original commits changed (-want +got):\n%s", diff)
	}
}

func TestGenerate_Empty(t *testing.T) {
	svc := core.NewService(core.Config{Now: clock})

	doc, err := svc.Generate(context.Background(), nil, core.GenerateOptions{Version: "v0"})
	require.NoError(t, err)
	assert.Empty(t, doc.Sections)
	assert.Empty(t, doc.OriginalCommits)
	assert.Equal(t, 0, doc.EntryCount())
}

func TestGenerate_ThemerPanicKeepsOriginal(t *testing.T) {
	svc := core.NewService(core.Config{Themes: &MockResolver{themer: MockThemer{panics: true}}})

	doc, err := svc.Generate(context.Background(), []core.CommitRecord{commit("a", "Fix crash")}, core.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Fix crash", doc.Sections[0].Entries[0].ThemedText)
	assert.Equal(t, "Banished Bugs", doc.Sections[0].Title, "empty noun falls back")
}

func TestGenerate_VocabularyPanicFallsBack(t *testing.T) {
	svc := core.NewService(core.Config{Themes: &MockResolver{themer: MockThemer{vocabPanics: true}}})

	doc, err := svc.Generate(context.Background(), []core.CommitRecord{
		commit("a", "feat: add map"),
		commit("b", "fix: crash"),
		commit("c", "chore: tidy"),
	}, core.GenerateOptions{})
	require.NoError(t, err)
	require.Len(t, doc.Sections, 3)
	assert.Equal(t, "Assorted Summonings", doc.Sections[0].Title)
	assert.Equal(t, "Banished Bugs", doc.Sections[1].Title)
	assert.Equal(t, "Assorted Transformations", doc.Sections[2].Title)
}

func TestGenerate_TitleCasing(t *testing.T) {
	tests := []struct {
		adjective string
		want      string
	}{
		{"eerie", "Eerie Summonings"},
		{"émigré", "Émigré Summonings"},
		{"ǆinnic", "ǅinnic Summonings"},
		{"mcGuffin", "McGuffin Summonings"},
		{"  ", "Assorted Summonings"},
	}
	for _, tc := range tests {
		t.Run(tc.adjective, func(t *testing.T) {
			svc := core.NewService(core.Config{Themes: &MockResolver{themer: MockThemer{adjective: tc.adjective}}})
			doc, err := svc.Generate(context.Background(), []core.CommitRecord{commit("a", "feat: add map")}, core.GenerateOptions{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, doc.Sections[0].Title)
		})
	}
}

func TestGenerate_PassesThemeName(t *testing.T) {
	res := &MockResolver{themer: MockThemer{}}
	svc := core.NewService(core.Config{Themes: res})

	_, err := svc.Generate(context.Background(), nil, core.GenerateOptions{Theme: "pirate"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pirate"}, res.asked)
}

func TestGenerate_NoResolverIsIdentity(t *testing.T) {
	svc := core.NewService(core.Config{})

	doc, err := svc.Generate(context.Background(), []core.CommitRecord{commit("a", "chore: tidy")}, core.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "chore: tidy", doc.Sections[0].Entries[0].ThemedText)
	assert.Equal(t, "Assorted Transformations", doc.Sections[0].Title)
}

func TestGenerate_Cancelled(t *testing.T) {
	svc := core.NewService(core.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx, nil, core.GenerateOptions{})
	var se *core.SystemError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, core.ComponentGenerator, se.Component)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGenerateFromSource(t *testing.T) {
	t.Run("Skips Invalid Records", func(t *testing.T) {
		src := MockSource{commits: []core.CommitRecord{
			commit("a", "Add login"),
			{Hash: "b", Timestamp: now, Message: "   "},
			{Hash: "", Timestamp: now, Message: "Fix crash"},
			{Hash: "c", Timestamp: now, Message: "Fix caf\xe9 crash"},
		}}
		svc := core.NewService(core.Config{Source: src})

		doc, err := svc.GenerateFromSource(context.Background(), core.CommitQuery{}, core.GenerateOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, doc.EntryCount())
		assert.Len(t, doc.OriginalCommits, 1)
	})

	t.Run("Source Error Is Reported", func(t *testing.T) {
		svc := core.NewService(core.Config{Source: MockSource{err: errors.New("git log failed")}})

		_, err := svc.GenerateFromSource(context.Background(), core.CommitQuery{Range: "x..y"}, core.GenerateOptions{})
		var se *core.SystemError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, core.CodeGitOperationFailed, se.Code)
		assert.Equal(t, "x..y", se.Details["range"])
	})

	t.Run("No Source", func(t *testing.T) {
		svc := core.NewService(core.Config{})
		_, err := svc.GenerateFromSource(context.Background(), core.CommitQuery{}, core.GenerateOptions{})
		assert.True(t, core.HasCode(err, core.CodeMissingParameter))
	})
}

func TestExport_SameDocumentTwiceIsIdentical(t *testing.T) {
	svc := core.NewService(core.Config{Themes: theme.NewRegistry(), Exporter: export.New(), Now: clock})

	doc, err := svc.Generate(context.Background(), []core.CommitRecord{
		commit("a1", "Add login"),
		commit("b2", "Fix crash"),
	}, core.GenerateOptions{Version: "v1.0.0"})
	require.NoError(t, err)

	first, err := svc.Export(doc, core.ExportOptions{Format: core.FormatMarkdown})
	require.NoError(t, err)
	second, err := svc.Export(doc, core.ExportOptions{Format: core.FormatMarkdown})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExport_NoExporter(t *testing.T) {
	svc := core.NewService(core.Config{})
	_, err := svc.Export(&core.Document{}, core.ExportOptions{Format: core.FormatMarkdown})

	var se *core.SystemError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, core.CodeExportFailed, se.Code)
}

func TestGenerate_ConcurrentThemesDoNotMix(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := theme.NewRegistry()
	for _, name := range []string{"alpha", "beta"} {
		require.NoError(t, reg.Register(theme.Config{
			Name:       name,
			Vocabulary: &theme.Vocabulary{Verbs: []string{}, Adjectives: []string{name}, Nouns: []string{name}},
			Patterns: []theme.Pattern{
				{Type: theme.PatternAddition, Templates: []string{name + ": {feature}"}},
				{Type: theme.PatternFix, Templates: []string{name + " fixed {bug}"}},
			},
		}))
	}
	svc := core.NewService(core.Config{Themes: reg})
	commits := []core.CommitRecord{commit("a", "Add login"), commit("b", "Fix crash")}

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := range 100 {
		name := []string{"alpha", "beta"}[i%2]
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := svc.Generate(context.Background(), commits, core.GenerateOptions{Theme: name})
			if err != nil {
				errs <- err
				return
			}
			for _, s := range doc.Sections {
				for _, e := range s.Entries {
					if !strings.HasPrefix(e.ThemedText, name) {
						errs <- fmt.Errorf("theme %s produced %q", name, e.ThemedText)
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
