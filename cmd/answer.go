package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/evalpanel/internal/evaluation"
	"github.com/dotcommander/evalpanel/internal/types"
)

type answerOptions struct {
	template      string
	from          string
	group         string
	item          int
	response      string
	justification string
	key           string
	force         bool
}

var answerOpts answerOptions

var answerCmd = &cobra.Command{
	Use:   "answer",
	Short: "Record a response on one question",
	Long: `Reopens a snapshot against the template, records the response on one question,
and saves the result. Responses accept good, medium, bad, critical, na or the sheet
labels Bom, Médio, Ruim, Crítico, NA. A justification is kept only for Bad and
Critical responses.

The result is saved under a new key unless --key is given. Saving onto an existing
key requires --force.`,
	Example: `  evalpanel answer -t painel.xlsx --from "2024-05-01 14:30" -g Contratos -i 2 -r Ruim -j "aditivo sem registro"`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAnswer(cmd.Context(), answerOpts, cmd.OutOrStdout()); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(answerCmd)

	answerCmd.Flags().StringVarP(&answerOpts.template, "template", "t", "", "Template file (.xlsx or .yaml)")
	answerCmd.Flags().StringVar(&answerOpts.from, "from", "", "Snapshot key to reopen")
	answerCmd.Flags().StringVarP(&answerOpts.group, "group", "g", "", "Group (sheet) name")
	answerCmd.Flags().IntVarP(&answerOpts.item, "item", "i", 0, "Question number within the group, starting at 1")
	answerCmd.Flags().StringVarP(&answerOpts.response, "response", "r", "", "Response (good|medium|bad|critical|na)")
	answerCmd.Flags().StringVarP(&answerOpts.justification, "justification", "j", "", "Justification for Bad or Critical responses")
	answerCmd.Flags().StringVarP(&answerOpts.key, "key", "k", "", "Key to save under (default: current date and time)")
	answerCmd.Flags().BoolVar(&answerOpts.force, "force", false, "Overwrite an existing snapshot with the same key")
	for _, name := range []string{"template", "from", "group", "item", "response"} {
		_ = answerCmd.MarkFlagRequired(name)
	}
}

func runAnswer(ctx context.Context, opts answerOptions, out io.Writer) error {
	if opts.from == "" {
		return errors.New("--from is required")
	}
	resp, err := types.ParseResponse(opts.response)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	es, err := s.evaluate(ctx, opts.template, opts.from, os.Stderr)
	if err != nil {
		return err
	}

	if err := es.SetResponse(opts.group, opts.item-1, resp, opts.justification); err != nil {
		return err
	}
	if opts.justification != "" && !resp.RequiresJustification() && !s.cfg.Quiet {
		fmt.Fprintf(os.Stderr, "Warning: justification ignored for response %s\n", resp.Label())
	}

	key, err := s.save(ctx, es, opts.key, opts.force)
	if err != nil {
		return err
	}

	if !s.cfg.Quiet {
		e, _ := es.Active()
		g, _ := e.Group(opts.group)
		d := evaluation.GroupDisplay(g)
		fmt.Fprintf(out, "Saved snapshot %q: %s %s %s (%s)\n", key, d.Status.Icon(), g.Code, d.Score, d.Status)
	}
	return nil
}
