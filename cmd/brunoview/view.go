package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cli/go-gh/v2/pkg/browser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/altin/brunoview/internal/logging"
	"github.com/altin/brunoview/internal/tui"
	"github.com/altin/brunoview/internal/watch"
)

func newViewCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Open the terminal viewer",
		Long: `Open the terminal viewer on a results file.

Examples:
  brunoview view results.json
  brunoview view -f results.json --status issues --watch
  brunoview view --server http://ci.internal:4000 --token $TOKEN`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, opts, args)
		},
	}
	addFilterFlags(cmd.Flags(), &opts.query)
	return cmd
}

func runView(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, err := opts.config(args)
	if err != nil {
		return err
	}
	filters, err := opts.filters(cfg)
	if err != nil {
		return err
	}
	src, err := requireSource(cfg)
	if err != nil {
		return err
	}

	// The alt screen owns the terminal, so logs go to a file.
	log, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	appOpts := tui.Options{
		Source:  src,
		Engine:  engine,
		Filters: filters,
		Browser: browser.New("", io.Discard, io.Discard),
		Log:     log,
	}

	if cfg.Watch && cfg.File != "" {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		w, err := watch.New(cfg.File, watch.DefaultDebounce, log)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
		appOpts.Changes = w.Changes()
	}

	log.Info("starting viewer", zap.String("source", src.Describe()), zap.Bool("watch", cfg.Watch))
	p := tea.NewProgram(tui.NewApp(appOpts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
