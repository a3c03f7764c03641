package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/altin/brunoview/internal/api"
	"github.com/altin/brunoview/internal/cache"
	"github.com/altin/brunoview/internal/config"
	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/search"
)

var errFileNotFound = errors.New("results file not found")

// rootOptions collects flag values shared by every subcommand. Zero values
// leave the configured value in place.
type rootOptions struct {
	flags config.Config
	query search.Query
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "brunoview [file]",
		Short: "Browse and filter API test-run results",
		Long: `brunoview loads a results JSON file produced by an API test runner,
normalizes runs and results, and lets you search, filter and inspect them.

Commands:
  view       Terminal viewer (default)
  serve      Web viewer and JSON API
  list       Print filtered results as a table or JSON
  validate   Check that a file is a results document

Configuration is read from ~/.config/brunoview/config.yaml, ./.brunoview.yaml,
.env and BRUNOVIEW_* variables. Flags win over all of them.`,
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, opts, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.flags.File, "file", "f", "", "Results JSON file")
	pf.StringVar(&opts.flags.Server, "server", "", "Read results from a running brunoview server")
	pf.StringVar(&opts.flags.Token, "token", "", "Bearer token for the server API")
	pf.StringVar(&opts.flags.Sort, "sort", "", "Sort key: status, stream, name, path, duration, http")
	pf.BoolVar(&opts.flags.Watch, "watch", false, "Reload when the results file changes")
	pf.StringVar(&opts.flags.Log.Level, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&opts.flags.Log.File, "log-file", "", "Log file for the terminal viewer")

	addFilterFlags(cmd.Flags(), &opts.query)

	cmd.AddCommand(
		newViewCmd(opts),
		newServeCmd(opts),
		newListCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func addFilterFlags(fs *pflag.FlagSet, q *search.Query) {
	fs.StringVar(&q.Search, "search", "", "Substring to search for")
	fs.StringVar(&q.Status, "status", "", "Status filter: issues, all, pass, fail, error")
	fs.StringSliceVar(&q.Methods, "method", nil, "HTTP methods to keep")
	fs.StringSliceVar(&q.HTTP, "http", nil, "HTTP buckets to keep: 2xx, 3xx, 4xx, 5xx, other")
	fs.StringSliceVar(&q.Runs, "run", nil, "Run indexes to keep, starting at 0")
	fs.StringSliceVar(&q.Paths, "path", nil, "Path groups to keep")
	fs.StringSliceVar(&q.Scopes, "scope", nil, "Search scopes: name, path, url, method, data")
}

// config layers flags (and a positional file argument) over the configured
// sources and validates the result.
func (o *rootOptions) config(args []string) (*config.Config, error) {
	overrides := o.flags
	if len(args) > 0 {
		overrides.File = args[0]
	}
	cfg, err := config.Load(&overrides)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) filters(cfg *config.Config) (model.Filters, error) {
	q := o.query
	q.Sort = cfg.Sort
	return q.Filters()
}

// newSource picks the remote server when one is configured, otherwise the
// local file. It returns a nil source when neither is set.
func newSource(cfg *config.Config) (api.Source, error) {
	if cfg.Server != "" {
		client, err := api.NewClient(cfg.Server, api.ClientOptions{Token: cfg.Token})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	if cfg.File == "" {
		return nil, nil
	}
	if _, err := os.Stat(cfg.File); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errFileNotFound, cfg.File)
		}
		return nil, err
	}
	return api.FileSource{Path: cfg.File}, nil
}

func requireSource(cfg *config.Config) (api.Source, error) {
	src, err := newSource(cfg)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, errors.New("no results file: pass one as an argument or with --file")
	}
	return src, nil
}

func newEngine(cfg *config.Config) (*search.Engine, error) {
	sd, err := cache.NewSearchData(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return search.New(sd), nil
}
