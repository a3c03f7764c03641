package main

import (
	"bytes"
	"fmt"

	"github.com/cli/go-gh/v2/pkg/jsonpretty"
	"github.com/spf13/cobra"

	"github.com/altin/brunoview/internal/api"
	"github.com/altin/brunoview/internal/summary"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check that a file is a results document",
		Long: `Check the shape of a results file and report what it holds.
Exits non-zero when the file cannot be read or is not a results document.

Examples:
  brunoview validate results.json
  brunoview validate results.json --pretty`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(args)
			if err != nil {
				return err
			}
			src, err := requireSource(cfg)
			if err != nil {
				return err
			}
			loaded, err := api.Load(cmd.Context(), src)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ds := loaded.Dataset
			s := summary.Summarize(ds.Results)
			fmt.Fprintf(out, "%s: valid (%s, %s)\n",
				loaded.Document.Name, loaded.Shape, summary.FormatBytes(loaded.Document.Size))
			fmt.Fprintf(out, "  runs:     %d\n", ds.RunCount())
			fmt.Fprintf(out, "  results:  %d (%d pass, %d fail, %d error)\n", s.Total, s.Pass, s.Fail, s.Error)
			fmt.Fprintf(out, "  skipped:  %d\n", ds.Skipped)

			if pretty {
				isTTY, _ := terminal(out)
				fmt.Fprintln(out)
				return jsonpretty.Format(out, bytes.NewReader(loaded.Document.Body), "  ", isTTY)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Also print the document, indented")
	return cmd
}
