package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/aretw0/patchlore/internal/platform"
	"github.com/aretw0/patchlore/pkg/theme"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#b48ef0"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7ee787"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#857a99"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#7ee787"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e36f6f"))
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "Inspect and validate themes",
}

var themesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newViper(cmd)
		if err != nil {
			return err
		}

		opts := []platform.Option{platform.WithLogger(logger), platform.WithStrict(v.GetBool("strict"))}
		if dir := v.GetString("themes-dir"); dir != "" {
			opts = append(opts, platform.WithThemesDir(dir))
		}
		if name := v.GetString("theme"); name != "" {
			opts = append(opts, platform.WithActiveTheme(name))
		}

		p, err := platform.New(opts...)
		if err != nil {
			return err
		}
		defer p.Close()

		printThemes(cmd.OutOrStdout(), p.Themes)
		return nil
	},
}

var themesValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check theme files without loading them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newViper(cmd)
		if err != nil {
			return err
		}

		p, err := platform.New(platform.WithLogger(logger))
		if err != nil {
			return err
		}

		var result *multierror.Error
		out := cmd.OutOrStdout()
		for _, path := range args {
			cfg, err := p.ValidateThemeFile(path, v.GetBool("strict"))
			if err != nil {
				fmt.Fprintf(out, "%s %s\n", failStyle.Render("✗"), path)
				fmt.Fprintf(out, "  %s\n", mutedStyle.Render(strings.ReplaceAll(describe(err), "\n", "\n  ")))
				result = multierror.Append(result, err)
				continue
			}
			fmt.Fprintf(out, "%s %s (%s)\n", okStyle.Render("✓"), path, cfg.Name)
		}
		if result != nil {
			return fmt.Errorf("%d of %d theme files are invalid", len(result.Errors), len(args))
		}
		return nil
	},
}

var themesWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload a themes directory on change and print registry events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newViper(cmd)
		if err != nil {
			return err
		}
		dir := v.GetString("themes-dir")
		if dir == "" {
			return errors.WithHint(errors.New("no themes directory to watch"),
				"pass --themes-dir or set "+EnvPrefix+"_THEMES_DIR")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		failures := make(chan error, 8)
		p, err := platform.New(
			platform.WithLogger(logger),
			platform.WithThemesDir(dir),
			platform.WithStrict(v.GetBool("strict")),
			platform.WithWatch(true),
			platform.WithWatcherErrorHandler(func(err error) {
				select {
				case failures <- err:
				default:
				}
			}),
		)
		if err != nil {
			return err
		}
		defer p.Close()

		return watchThemes(ctx, cmd.OutOrStdout(), p, failures)
	},
}

func watchThemes(ctx context.Context, w io.Writer, p *platform.Platform, failures <-chan error) error {
	events := p.ThemeEvents()
	if err := events.Start(ctx); err != nil {
		return err
	}
	if err := p.Start(ctx); err != nil {
		return err
	}

	printThemes(w, p.Themes)
	fmt.Fprintln(w, mutedStyle.Render("watching "+p.Loader.Dir+" (ctrl+c to stop)"))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-failures:
			fmt.Fprintf(w, "%s %s\n", failStyle.Render("✗"), describe(err))
		case e, ok := <-events.Events():
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "%s %s\n", okStyle.Render("•"), e.String())
		}
	}
}

func printThemes(w io.Writer, reg *theme.Registry) {
	active := reg.ActiveTheme().Name
	fmt.Fprintln(w, headerStyle.Render("Themes"))
	for _, name := range reg.ListAvailableThemes() {
		cfg, _ := reg.Get(name)
		line := "  " + name
		if name == active {
			line = activeStyle.Render("* " + name)
		}

		var templates int
		for _, p := range cfg.Patterns {
			templates += len(p.Templates)
		}
		fmt.Fprintf(w, "%s %s\n", line, mutedStyle.Render(fmt.Sprintf("(%d patterns, %d templates)", len(cfg.Patterns), templates)))
	}
}

func init() {
	themesListCmd.Flags().String("themes-dir", "", "Directory with additional theme files")
	themesListCmd.Flags().String("theme", "", "Mark this theme as active")
	themesListCmd.Flags().Bool("strict", false, "Reject unknown fields in theme files")
	themesValidateCmd.Flags().Bool("strict", false, "Reject unknown fields in theme files")
	themesWatchCmd.Flags().String("themes-dir", "", "Directory to watch")
	themesWatchCmd.Flags().Bool("strict", false, "Reject unknown fields in theme files")

	themesCmd.AddCommand(themesListCmd, themesValidateCmd, themesWatchCmd)
	rootCmd.AddCommand(themesCmd)
}
