package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cli/go-gh/v2/pkg/jq"
	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/spf13/cobra"

	"github.com/altin/brunoview/internal/api"
	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/summary"
)

type listOptions struct {
	json bool
	jq   string
}

func newListCmd(opts *rootOptions) *cobra.Command {
	lo := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list [file]",
		Short: "Print filtered results",
		Long: `Print the results that pass the filters, in sort order.

Examples:
  brunoview list results.json --status issues
  brunoview list results.json --method GET,POST --http 5xx --sort duration
  brunoview list results.json --json --jq '.[] | .name'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, lo, args)
		},
	}
	addFilterFlags(cmd.Flags(), &opts.query)
	cmd.Flags().BoolVar(&lo.json, "json", false, "Print results as a JSON array")
	cmd.Flags().StringVarP(&lo.jq, "jq", "q", "", "Filter JSON output with a jq expression")
	return cmd
}

func runList(cmd *cobra.Command, opts *rootOptions, lo *listOptions, args []string) error {
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
	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	loaded, err := api.Load(cmd.Context(), src)
	if err != nil {
		return err
	}
	all := loaded.Dataset.Results
	visible := engine.Filter(all, filters)

	out := cmd.OutOrStdout()
	if lo.json || lo.jq != "" {
		return writeJSON(out, visible, lo.jq)
	}

	isTTY, width := terminal(out)
	tp := tableprinter.New(out, isTTY, width)
	tp.AddHeader([]string{"OUTCOME", "METHOD", "HTTP", "DURATION", "RUN", "NAME", "PATH"})
	for _, r := range visible {
		tp.AddField(string(r.Outcome))
		tp.AddField(orDash(r.Method))
		tp.AddField(httpLabel(r.HTTPStatus))
		tp.AddField(summary.FormatDuration(r.RunDuration))
		tp.AddField(strconv.Itoa(r.RunIndex + 1))
		tp.AddField(r.Name)
		tp.AddField(r.Path)
		tp.EndRow()
	}
	if err := tp.Render(); err != nil {
		return err
	}
	if isTTY {
		fmt.Fprintf(cmd.ErrOrStderr(), "\n%d of %d results\n", len(visible), len(all))
	}
	return nil
}

func writeJSON(w io.Writer, results []model.Result, expr string) error {
	if results == nil {
		results = []model.Result{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if expr != "" {
		return jq.Evaluate(&buf, w, expr)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// terminal reports whether w is an interactive terminal and its width.
func terminal(w io.Writer) (bool, int) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(f) {
		return false, 0
	}
	width, _, err := term.FromEnv().Size()
	if err != nil || width <= 0 {
		width = 80
	}
	return true, width
}

func httpLabel(status any) string {
	if status == nil {
		return "-"
	}
	return fmt.Sprint(status)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
