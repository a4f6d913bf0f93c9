package platform

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/aretw0/patchlore/pkg/adapters/fs"
	"github.com/aretw0/patchlore/pkg/core"
	"github.com/aretw0/patchlore/pkg/theme"
)

// Request describes one end-to-end run: read commits, generate, export.
type Request struct {
	Query    core.CommitQuery
	Generate core.GenerateOptions
	Export   core.ExportOptions
	// OutDir, when set, receives the exported file.
	OutDir string
}

// Result is the outcome of Run.
type Result struct {
	Document *core.Document
	Export   core.ExportResult
	// Path is the written file, empty when OutDir was not set.
	Path string
}

// Run executes the whole pipeline against the configured commit source.
func (p *Platform) Run(ctx context.Context, req Request) (*Result, error) {
	doc, err := p.Service.GenerateFromSource(ctx, req.Query, req.Generate)
	if err != nil {
		return nil, err
	}
	return p.finish(doc, req)
}

// RunCommits executes generate and export for commits already in memory.
func (p *Platform) RunCommits(ctx context.Context, commits []core.CommitRecord, req Request) (*Result, error) {
	doc, err := p.Service.Generate(ctx, commits, req.Generate)
	if err != nil {
		return nil, err
	}
	return p.finish(doc, req)
}

func (p *Platform) finish(doc *core.Document, req Request) (*Result, error) {
	res, err := p.Service.Export(doc, req.Export)
	if err != nil {
		return nil, err
	}

	out := &Result{Document: doc, Export: res}
	if req.OutDir == "" {
		return out, nil
	}

	path, err := fs.WriteExport(req.OutDir, res)
	if err != nil {
		return nil, p.Reporter.Report(err, core.ComponentExporter, map[string]any{"dir": req.OutDir})
	}
	p.Logger.Info("patch notes written", zap.String("path", path), zap.Int("entries", doc.EntryCount()))
	out.Path = path
	return out, nil
}

// ValidateThemeFile parses and validates a theme file without registering it.
func (p *Platform) ValidateThemeFile(path string, strict bool) (theme.Config, error) {
	loader := fs.NewLoader(filepath.Dir(path), fs.WithStrict(strict), fs.WithLoaderLogger(p.Logger))
	if !loader.Supports(path) {
		return theme.Config{}, p.Reporter.Report(
			core.WithCode(errors.Newf("unsupported theme file %s", filepath.Base(path)), core.CodeThemeLoadFailed),
			core.ComponentTheme, map[string]any{"path": path})
	}

	cfg, err := loader.LoadFile(path)
	if err != nil {
		return theme.Config{}, p.Reporter.Report(err, core.ComponentTheme, map[string]any{"path": path})
	}
	if err := theme.Validate(cfg); err != nil {
		return cfg, p.Reporter.Report(err, core.ComponentTheme, map[string]any{"path": path, "theme": cfg.Name})
	}
	return cfg, nil
}
