package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/evalpanel/internal/snapshot"
	"github.com/dotcommander/evalpanel/internal/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved snapshot keys",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runList(cmd.Context(), cmd.OutOrStdout()); err != nil {
			fail(err)
		}
	},
}

var exportYAML bool

var exportCmd = &cobra.Command{
	Use:   "export KEY",
	Short: "Export one snapshot as JSON or YAML",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runExport(cmd.Context(), args[0], exportYAML, cmd.OutOrStdout()); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().BoolVar(&exportYAML, "yaml", false, "Export as YAML instead of JSON")
}

func runList(ctx context.Context, out io.Writer) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	keys, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing snapshots: %w", err)
	}
	if len(keys) == 0 && !s.cfg.Quiet {
		fmt.Fprintln(os.Stderr, "No snapshots saved yet")
	}
	for _, key := range keys {
		fmt.Fprintln(out, key)
	}
	return nil
}

func runExport(ctx context.Context, key string, asYAML bool, out io.Writer) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.store.Load(ctx, key)
	if err != nil {
		return err
	}

	format := types.FormatJSON
	if asYAML {
		format = types.FormatYAML
	}

	if s.cfg.Output == "" {
		return snapshot.Encode(out, key, rec, format)
	}
	f, err := os.Create(s.cfg.Output)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", s.cfg.Output, err)
	}
	if err := snapshot.Encode(f, key, rec, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
