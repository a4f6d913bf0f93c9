package platform_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/patchlore/internal/platform"
	"github.com/aretw0/patchlore/pkg/core"
	"github.com/aretw0/patchlore/pkg/export"
	"github.com/aretw0/patchlore/pkg/git"
)

func setupRepo(t *testing.T) string {
	t.Helper()
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	ctx := context.Background()
	client := git.NewClient(dir, nil)
	require.NoError(t, client.Init(ctx))
	_, err := client.Run(ctx, "config", "user.email", "test@example.com")
	require.NoError(t, err)
	_, err = client.Run(ctx, "config", "user.name", "Test")
	require.NoError(t, err)

	for _, msg := range []string{"feat: add dashboard", "fix: resolve login bug", "chore: tidy readme"} {
		_, err := client.Run(ctx, "commit", "--allow-empty", "-m", msg)
		require.NoError(t, err)
	}
	return dir
}

func TestPipeline_GitToJSON(t *testing.T) {
	dir := setupRepo(t)

	p, err := platform.New(platform.WithRepoPath(dir), platform.WithSeed(1, 1))
	require.NoError(t, err)

	res, err := p.Run(context.Background(), platform.Request{
		Generate: core.GenerateOptions{Version: "v0.1.0"},
		Export:   core.ExportOptions{Format: core.FormatJSON, Pretty: true},
	})
	require.NoError(t, err)

	doc, err := export.DecodeJSON([]byte(res.Export.Content))
	require.NoError(t, err)
	assert.Equal(t, "v0.1.0", doc.Version)
	assert.Len(t, doc.OriginalCommits, 3)

	types := make([]core.ChangeType, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		types = append(types, s.Type)
	}
	assert.Equal(t, []core.ChangeType{core.ChangeFeature, core.ChangeFix, core.ChangeOther}, types)
}

func TestPipeline_NotARepository(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}

	p, err := platform.New(platform.WithRepoPath(t.TempDir()))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), platform.Request{Export: core.ExportOptions{Format: core.FormatMarkdown}})
	var se *core.SystemError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, core.CodeInvalidRepository, se.Code)
}
