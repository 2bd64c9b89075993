package report

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	verbose    bool
	outputFile string
	w          io.Writer
}

// NewMarkdownFormatter creates a new MarkdownFormatter
func NewMarkdownFormatter(verbose bool, outputFile string, w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{
		verbose:    verbose,
		outputFile: outputFile,
		w:          w,
	}
}

// Format writes the report as Markdown to the output file or writer
func (f *MarkdownFormatter) Format(r *Report) error {
	var builder strings.Builder

	builder.WriteString("# Relatório de Avaliação Contratual\n\n")
	if r.Header.Project != "" {
		builder.WriteString(fmt.Sprintf("**Projeto:** %s\n\n", r.Header.Project))
	}
	if r.Header.Client != "" {
		builder.WriteString(fmt.Sprintf("**Cliente:** %s\n\n", r.Header.Client))
	}
	if r.Header.Responsible != "" {
		builder.WriteString(fmt.Sprintf("**Responsável:** %s\n\n", r.Header.Responsible))
	}
	if r.Header.EvaluatedAt != "" {
		builder.WriteString(fmt.Sprintf("**Data da avaliação:** %s\n\n", r.Header.EvaluatedAt))
	}
	if r.Key != "" {
		builder.WriteString(fmt.Sprintf("**Snapshot:** %s\n\n", r.Key))
	}
	builder.WriteString(fmt.Sprintf("**Generated:** %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05")))
	builder.WriteString(strings.Repeat("-", 50) + "\n\n")

	// Summary table
	builder.WriteString("## Summary\n\n")
	builder.WriteString("| Status | Code | Description | Score | Answered |\n")
	builder.WriteString("|--------|------|-------------|-------|----------|\n")
	for _, g := range r.Summary {
		builder.WriteString(fmt.Sprintf("| %s %s | %s | %s | %s | %d/%d |\n",
			g.Status.Icon(), g.Status, escapeCell(g.Code), escapeCell(g.Description), g.Score, g.Answered, g.Total))
	}
	builder.WriteString("\n")

	if f.verbose {
		for _, g := range r.Summary {
			if len(g.PerType) == 0 {
				continue
			}
			builder.WriteString(fmt.Sprintf("### %s\n\n", g.Code))
			for _, ts := range g.PerType {
				name := ts.Type
				if name == "" {
					name = "(untyped)"
				}
				builder.WriteString(fmt.Sprintf("- %s %s: %s\n", ts.Status.Icon(), name, ts.Score))
			}
			builder.WriteString("\n")
		}
	}

	// Findings
	builder.WriteString("## Justifications\n\n")
	if len(r.Findings) == 0 {
		builder.WriteString("*No Bad or Critical items with justification.*\n\n")
	}
	for _, fd := range r.Findings {
		builder.WriteString(fmt.Sprintf("- **%s**", fd.Code))
		if fd.Type != "" {
			builder.WriteString(fmt.Sprintf(" / %s", fd.Type))
		}
		builder.WriteString(fmt.Sprintf(" [%s] %s\n", fd.Response.Label(), fd.Question))
		builder.WriteString(fmt.Sprintf("  > %s\n", fd.Justification))
	}
	if len(r.Findings) > 0 {
		builder.WriteString("\n")
	}

	// Conclusion
	builder.WriteString("## Conclusion\n\n")
	builder.WriteString(fmt.Sprintf("%s Overall: %s (%s)\n", r.OverallStatus.Icon(), r.Overall, r.OverallStatus))

	content := builder.String()
	if f.outputFile != "" {
		if err := os.WriteFile(f.outputFile, []byte(content), 0644); err != nil {
			return fmt.Errorf("error writing to file %s: %w", f.outputFile, err)
		}
		return nil
	}
	_, err := fmt.Fprint(f.w, content)
	return err
}

// escapeCell keeps pipes and newlines from breaking a table row
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
