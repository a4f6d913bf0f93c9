package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aretw0/patchlore/internal/platform"
	"github.com/aretw0/patchlore/pkg/core"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate themed patch notes from git history",
	Example: `  patchlore generate --range v1.2.0..HEAD
  patchlore generate --theme pirate --themes-dir ./themes --format html --styles --out dist
  PATCHLORE_FORMAT=json patchlore generate --pretty`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newViper(cmd)
		if err != nil {
			return err
		}
		s, err := loadSettings(v)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runGenerate(ctx, cmd, s)
	},
}

func runGenerate(ctx context.Context, cmd *cobra.Command, s settings) error {
	opts := []platform.Option{
		platform.WithLogger(logger),
		platform.WithRepoPath(s.Repo),
		platform.WithStrict(s.Strict),
	}
	if s.ThemesDir != "" {
		opts = append(opts, platform.WithThemesDir(s.ThemesDir))
	}
	if s.Seed != 0 {
		opts = append(opts, platform.WithSeed(s.Seed, s.Seed))
	}

	p, err := platform.New(opts...)
	if err != nil {
		return err
	}
	defer p.Close()

	res, err := p.Run(ctx, platform.Request{
		Query:    core.CommitQuery{Range: s.Range, Paths: s.Paths, Limit: s.Limit},
		Generate: core.GenerateOptions{Version: s.Version, Theme: s.Theme},
		Export: core.ExportOptions{
			Format:        core.Format(s.Format),
			IncludeStyles: s.Styles,
			Pretty:        s.Pretty,
		},
		OutDir: s.Out,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Path != "" {
		fmt.Fprintf(out, "Wrote %d entries to %s\n", res.Document.EntryCount(), res.Path)
		return nil
	}

	content := res.Export.Content
	if s.Render && core.Format(s.Format) == core.FormatMarkdown {
		rendered, err := render(content)
		if err != nil {
			logger.Warn("render failed, printing raw markdown", zap.Error(err))
		} else {
			content = rendered
		}
	}
	fmt.Fprintln(out, content)
	return nil
}

func render(markdown string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", errors.Wrap(err, "failed to create renderer")
	}
	return renderer.Render(markdown)
}

func init() {
	f := generateCmd.Flags()
	f.String("repo", ".", "Path to the git repository")
	f.String("range", "", "Revision range, e.g. v1.2.0..HEAD (default: full history)")
	f.Int("limit", 0, "Maximum number of commits (0 = no limit)")
	f.StringSlice("paths", nil, "Only include commits touching these paths")
	f.String("theme", "", "Theme to use (default: the active theme)")
	f.String("themes-dir", "", "Directory with additional theme files")
	f.Bool("strict", false, "Reject unknown fields in theme files")
	f.String("version", "", "Version label (default: v{year}.{month}.{day})")
	f.StringP("format", "f", string(core.FormatMarkdown), "Output format: markdown, html, json, yaml or csv")
	f.Bool("styles", false, "Embed CSS in HTML output")
	f.Bool("pretty", false, "Indent JSON output")
	f.StringP("out", "o", "", "Write the result into this directory instead of stdout")
	f.Bool("render", false, "Render markdown output for the terminal")
	f.Uint64("seed", 0, "Seed for deterministic output (0 = random)")
	rootCmd.AddCommand(generateCmd)
}
