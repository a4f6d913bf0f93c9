// Package patchlore is the Composition Root for the patchlore pipeline.
//
// It turns a list of commits into themed patch notes: every commit is
// classified (feature, fix, breaking, other), rewritten through the active
// theme's vocabulary and templates, grouped into sections and exported as
// Markdown, HTML, JSON, YAML or CSV.
//
// The core domain (pkg/core) knows nothing about files or git. Themes live
// in pkg/theme, encoders in pkg/export, and the adapters in pkg/git and
// pkg/adapters wire them to the outside world.
//
// Usage:
//
//	p, err := patchlore.New(
//		patchlore.WithRepoPath("."),
//		patchlore.WithThemesDir("./themes"),
//		patchlore.WithLogger(logger),
//	)
//
//	res, err := p.Run(ctx, patchlore.Request{
//		Query:  core.CommitQuery{Range: "v1.2.0..HEAD"},
//		Export: core.ExportOptions{Format: core.FormatMarkdown},
//	})
package patchlore
