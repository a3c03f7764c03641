package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cli/go-gh/v2/pkg/browser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/altin/brunoview/internal/logging"
	"github.com/altin/brunoview/internal/server"
	"github.com/altin/brunoview/internal/watch"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve the web viewer and JSON API",
		Long: `Serve the results file over HTTP.

Endpoints:
  GET  /api/results      raw results file
  GET  /api/normalized   normalized runs and results
  GET  /api/query        filtered results (search, status, method, http, run, path, scope, sort)
  GET  /api/summary      summary cards and facets
  POST /api/reload       reload from disk

Static files are served from --public when set.

Examples:
  brunoview serve results.json
  brunoview serve -f results.json --port 4000 --no-open --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.flags.Host, "host", "", "Address to bind (default 127.0.0.1)")
	f.IntVar(&opts.flags.Port, "port", 0, "Port to listen on, 0 picks a free one")
	f.StringVar(&opts.flags.PublicDir, "public", "", "Directory of static files for the web viewer")
	f.BoolVar(&opts.flags.NoOpen, "no-open", false, "Do not open the browser")
	return cmd
}

func runServe(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, err := opts.config(args)
	if err != nil {
		return err
	}
	src, err := newSource(cfg)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, "")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := server.NewStore(src, cfg.CacheSize, log)
	if err := store.Reload(ctx); err != nil {
		return err
	}

	var changes <-chan struct{}
	if cfg.Watch && cfg.File != "" {
		w, err := watch.New(cfg.File, watch.DefaultDebounce, log)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
		changes = w.Changes()
	}

	srv := server.New(server.Options{
		Addr:      cfg.Addr(),
		File:      cfg.File,
		PublicDir: cfg.PublicDir,
		Token:     cfg.Token,
	}, store, log)
	if err := srv.Listen(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "BrunoView running at %s\n", srv.URL())
	if src != nil {
		fmt.Fprintf(out, "Loaded %s\n", src.Describe())
	}

	if !cfg.NoOpen {
		if err := browser.New("", out, cmd.ErrOrStderr()).Browse(srv.URL()); err != nil {
			log.Warn("could not open browser", zap.Error(err))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Serve)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	if changes != nil {
		g.Go(func() error {
			reloadOnChange(gctx, changes, store, log)
			return nil
		})
	}

	return g.Wait()
}

// reloadOnChange keeps the store in step with the file until ctx ends. A
// failed reload leaves the previous dataset in place.
func reloadOnChange(ctx context.Context, changes <-chan struct{}, store *server.Store, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			log.Info("results file changed, reloading")
			_ = store.Reload(ctx)
		}
	}
}
