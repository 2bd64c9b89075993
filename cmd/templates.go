package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dotcommander/evalpanel/internal/config"
	"github.com/dotcommander/evalpanel/internal/template"
)

var templatesCmd = &cobra.Command{
	Use:   "templates [DIR]",
	Short: "Find template files under a directory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		if err := runTemplates(root, cmd.OutOrStdout()); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(root string, out io.Writer) error {
	cfg, err := config.LoadConfig(dataDir)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	files, err := template.Discover(root, cfg.TemplateGlob)
	if err != nil {
		return err
	}

	width := 0
	for _, f := range files {
		width = max(width, len(f.Path))
	}
	for _, f := range files {
		if cfg.Verbose {
			fmt.Fprintf(out, "%-*s  %-4s  %8d  %s\n", width, f.Path, f.Format, f.Size, f.ModTime)
		} else {
			fmt.Fprintf(out, "%-*s  %s\n", width, f.Path, f.Format)
		}
	}
	return nil
}
