package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dotcommander/evalpanel/internal/evaluation"
	"github.com/dotcommander/evalpanel/internal/types"
)

type statusOptions struct {
	template string
	from     string
}

var statusOpts statusOptions

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show live scores and the numbered questions of an evaluation",
	Long: `Reopens a snapshot against the template and prints every group with its score and
status. With --verbose every question is listed with its number, which is the value
answer --item expects.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runStatus(cmd.Context(), statusOpts, cmd.OutOrStdout()); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.template, "template", "t", "", "Template file (.xlsx or .yaml)")
	statusCmd.Flags().StringVar(&statusOpts.from, "from", "", "Snapshot key to reopen (default: fresh evaluation)")
	_ = statusCmd.MarkFlagRequired("template")
}

func runStatus(ctx context.Context, opts statusOptions, out io.Writer) error {
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

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	bold := lipgloss.NewStyle().Bold(true)

	for _, g := range e.Groups() {
		d := evaluation.GroupDisplay(g)
		fmt.Fprintf(out, "%s %s  %s %s  (%d/%d answered)\n",
			d.Status.Icon(), bold.Render(g.ID), d.Score, d.Status, d.Answered, d.Total)

		if !s.cfg.Verbose {
			continue
		}
		for i, it := range g.Items {
			line := fmt.Sprintf("  %3d. [%-7s] %s", i+1, it.Response.Label(), it.Question)
			if it.Response == types.ResponseNotApplicable {
				line = dim.Render(line)
			}
			fmt.Fprintln(out, line)
			if it.Justification != "" {
				fmt.Fprintf(out, "        %s\n", it.Justification)
			}
		}
	}

	overall, status := evaluation.Overall(e)
	fmt.Fprintf(out, "\n%s Overall: %s (%s)\n", status.Icon(), overall, status)
	return nil
}
