package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotcommander/evalpanel/internal/evaluation"
)

type initOptions struct {
	template    string
	key         string
	project     string
	client      string
	responsible string
	date        string
	force       bool
}

var initOpts initOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Start a new evaluation from a template",
	Long: `Parses the template, creates an evaluation with every question unanswered (NA),
and saves it as a new snapshot. The snapshot key defaults to the current date and time.`,
	Example: `  evalpanel init --template painel.xlsx --project "Obra Norte" --client ACME`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runInit(cmd.Context(), initOpts, cmd.OutOrStdout()); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initOpts.template, "template", "t", "", "Template file (.xlsx or .yaml)")
	initCmd.Flags().StringVarP(&initOpts.key, "key", "k", "", "Snapshot key (default: current date and time)")
	initCmd.Flags().StringVar(&initOpts.project, "project", "", "Project name")
	initCmd.Flags().StringVar(&initOpts.client, "client", "", "Client name")
	initCmd.Flags().StringVar(&initOpts.responsible, "responsible", "", "Person responsible for the evaluation")
	initCmd.Flags().StringVar(&initOpts.date, "date", "", "Evaluation date (YYYY-MM-DD)")
	initCmd.Flags().BoolVar(&initOpts.force, "force", false, "Overwrite an existing snapshot with the same key")
	_ = initCmd.MarkFlagRequired("template")
}

func runInit(ctx context.Context, opts initOptions, out io.Writer) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	es, err := s.evaluate(ctx, opts.template, "", os.Stderr)
	if err != nil {
		return err
	}

	at, err := evaluation.ParseDate(strings.TrimSpace(opts.date))
	if err != nil {
		return err
	}
	if err := es.SetHeader(evaluation.Header{
		Project:     opts.project,
		Client:      opts.client,
		Responsible: opts.responsible,
		EvaluatedAt: at,
	}); err != nil {
		return err
	}

	key, err := s.save(ctx, es, opts.key, opts.force)
	if err != nil {
		return err
	}

	if !s.cfg.Quiet {
		e, _ := es.Active()
		items := 0
		for _, g := range e.Groups() {
			items += len(g.Items)
		}
		fmt.Fprintf(out, "Saved snapshot %q (%d groups, %d items)\n", key, len(e.GroupIDs()), items)
	}
	return nil
}
