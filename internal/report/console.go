package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/evalpanel/internal/types"
)

// ConsoleFormatter formats output for console display
type ConsoleFormatter struct {
	quiet    bool
	verbose  bool
	colorize bool
	w        io.Writer
}

// NewConsoleFormatter creates a new ConsoleFormatter
func NewConsoleFormatter(quiet, verbose, colorize bool, w io.Writer) *ConsoleFormatter {
	return &ConsoleFormatter{
		quiet:    quiet,
		verbose:  verbose,
		colorize: colorize,
		w:        w,
	}
}

// statusColors maps statuses to ANSI palette colors.
var statusColors = map[types.Status]string{
	types.StatusGood:         "10",  // green
	types.StatusMedium:       "11",  // yellow
	types.StatusBad:          "208", // orange
	types.StatusCritical:     "9",   // red
	types.StatusUndetermined: "7",   // gray
}

// Format writes the report to the console
func (f *ConsoleFormatter) Format(r *Report) error {
	if f.quiet {
		// Quiet mode only prints the overall line
		fmt.Fprintf(f.w, "%s %s\n", r.OverallStatus.Icon(), r.Overall)
		return nil
	}

	f.printHeader(r)
	f.printGroups(r)
	f.printFindings(r)
	f.printConclusion(r)
	return nil
}

func (f *ConsoleFormatter) style(s types.Status) lipgloss.Style {
	if !f.colorize {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(statusColors[s]))
}

// printHeader prints the evaluation metadata
func (f *ConsoleFormatter) printHeader(r *Report) {
	var parts []string
	if r.Header.Project != "" {
		parts = append(parts, r.Header.Project)
	}
	if r.Header.Client != "" {
		parts = append(parts, r.Header.Client)
	}
	if r.Header.EvaluatedAt != "" {
		parts = append(parts, r.Header.EvaluatedAt)
	}
	if r.Key != "" {
		parts = append(parts, "snapshot "+r.Key)
	}
	if len(parts) == 0 {
		return
	}

	title := strings.Join(parts, " · ")
	if f.colorize {
		title = lipgloss.NewStyle().Bold(true).Render(title)
	}
	fmt.Fprintf(f.w, "%s\n\n", title)
}

// printGroups prints one line per group, plus type partitions in verbose mode
func (f *ConsoleFormatter) printGroups(r *Report) {
	for _, g := range r.Summary {
		label := g.Code
		if g.Description != "" {
			label += " – " + g.Description
		}
		fmt.Fprintf(f.w, "%s %s  %s (%d/%d answered)\n",
			g.Status.Icon(), label, f.style(g.Status).Render(fmt.Sprintf("%s %s", g.Score, g.Status)), g.Answered, g.Total)

		if !f.verbose {
			continue
		}
		for _, ts := range g.PerType {
			name := ts.Type
			if name == "" {
				name = "(untyped)"
			}
			fmt.Fprintf(f.w, "    %s %s  %s\n", ts.Status.Icon(), name, f.style(ts.Status).Render(ts.Score.String()))
		}
	}
}

// printFindings prints the justifications of Bad and Critical items
func (f *ConsoleFormatter) printFindings(r *Report) {
	if len(r.Findings) == 0 {
		return
	}
	fmt.Fprintln(f.w)
	for _, fd := range r.Findings {
		status := types.StatusBad
		if fd.Response == types.ResponseCritical {
			status = types.StatusCritical
		}
		prefix := fd.Code
		if fd.Type != "" {
			prefix += " / " + fd.Type
		}
		fmt.Fprintf(f.w, "    %s %s: %s\n", f.style(status).Render(fd.Response.Label()), prefix, fd.Question)
		fmt.Fprintf(f.w, "        %s\n", fd.Justification)
	}
}

// printConclusion prints the overall score
func (f *ConsoleFormatter) printConclusion(r *Report) {
	fmt.Fprintln(f.w)
	line := fmt.Sprintf("%s Overall: %s (%s)", r.OverallStatus.Icon(), r.Overall, r.OverallStatus)
	if f.colorize {
		line = f.style(r.OverallStatus).Bold(true).Render(line)
	}
	fmt.Fprintln(f.w, line)
}
