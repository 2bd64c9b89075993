package report

import (
	"fmt"
	"io"

	"github.com/dotcommander/evalpanel/internal/types"
)

// Formatter renders a report.
type Formatter interface {
	Format(r *Report) error
}

// Options controls formatter construction.
type Options struct {
	Quiet      bool
	Verbose    bool
	Colorize   bool
	OutputFile string
}

// NewFormatter creates the formatter for format
func NewFormatter(format string, opts Options, w io.Writer) (Formatter, error) {
	switch format {
	case types.FormatConsole, "":
		return NewConsoleFormatter(opts.Quiet, opts.Verbose, opts.Colorize, w), nil
	case types.FormatJSON:
		return NewJSONFormatter(true, opts.OutputFile, w), nil
	case types.FormatMarkdown:
		return NewMarkdownFormatter(opts.Verbose, opts.OutputFile, w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
