package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/evalpanel/internal/report"
	"github.com/dotcommander/evalpanel/internal/types"
)

type reportOptions struct {
	template string
	from     string
}

var reportOpts reportOptions

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the evaluation report for a snapshot",
	Long: `Reopens a snapshot against the template and renders the report: one summary row
per group, the justifications of Bad and Critical answers, and the overall score.
Use --format json or markdown and --output to write a file.`,
	Example: `  evalpanel report -t painel.xlsx --from "2024-05-01 14:30" -f markdown -o relatorio.md`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runReport(cmd.Context(), reportOpts, cmd.OutOrStdout()); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportOpts.template, "template", "t", "", "Template file (.xlsx or .yaml)")
	reportCmd.Flags().StringVar(&reportOpts.from, "from", "", "Snapshot key to report on")
	_ = reportCmd.MarkFlagRequired("template")
	_ = reportCmd.MarkFlagRequired("from")
}

func runReport(ctx context.Context, opts reportOptions, out io.Writer) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	es, err := s.evaluate(ctx, opts.template, opts.from, os.Stderr)
	if err != nil {
		return err
	}
	e, err := es.Active()
	if err != nil {
		return err
	}

	formatter, err := report.NewFormatter(s.cfg.Format, report.Options{
		Quiet:      s.cfg.Quiet,
		Verbose:    s.cfg.Verbose,
		Colorize:   s.cfg.Format == types.FormatConsole && out == os.Stdout,
		OutputFile: s.cfg.Output,
	}, out)
	if err != nil {
		return err
	}
	return formatter.Format(report.Build(e, opts.from))
}
