package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/wesm/csvpeek/internal/config"
	"github.com/wesm/csvpeek/internal/query"
	"github.com/wesm/csvpeek/internal/tui"
	"github.com/wesm/csvpeek/internal/view"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile  string
	verbose  bool
	pageSize int
	cfg      *config.Config
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "csvpeek <file>",
	Short: "Interactive terminal viewer for delimited tabular files",
	Long: `csvpeek is an interactive terminal viewer for delimited tabular files.
It pages through, filters, sorts, and selects ranges of large datasets
without loading the whole file into memory: every view is a bounded query
against an embedded DuckDB scan of the file.

Keys:
  ↑/↓/←/→          Move cursor
  shift+arrows     Extend selection
  ctrl+d / ctrl+u  Next / previous page
  /                Filter columns (prefix value with / for regex)
  r                Reset filters and sort
  s                Sort by the cursor's column (press again to flip)
  c                Copy selection (or cell) to clipboard
  w                Save selection to a CSV file
  q                Quit`,
	Args: cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("stdout is not a terminal; csvpeek is interactive")
		}

		size := cfg.Viewer.PageSize
		if pageSize > 0 {
			size = pageSize
		}

		adapter, err := query.Open(path)
		if err != nil {
			return err
		}
		defer adapter.Close()
		logger.Debug("opened dataset", "path", path, "columns", len(adapter.Columns()), "page_size", size)

		ctrl, err := view.NewController(adapter, size, cfg.Viewer.CachePages)
		if err != nil {
			return err
		}
		// Initial fetch happens before the interactive loop so an
		// unreadable file fails with a non-zero exit, not a blank UI.
		if err := ctrl.Load(cmd.Context()); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}

		model := tui.New(ctrl, tui.Options{
			FileName: filepath.Base(path),
			Version:  Version,
		})
		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("run tui: %w", err)
		}
		return nil
	},
}

// ExecuteContext runs the root command with the given context,
// enabling graceful shutdown when the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.csvpeek/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().IntVar(&pageSize, "page-size", 0, "rows per page (overrides config)")
}
