package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	indent     bool
	outputFile string
	w          io.Writer
}

// NewJSONFormatter creates a new JSONFormatter
func NewJSONFormatter(indent bool, outputFile string, w io.Writer) *JSONFormatter {
	return &JSONFormatter{
		indent:     indent,
		outputFile: outputFile,
		w:          w,
	}
}

// Format writes the report as JSON to the output file or writer
func (f *JSONFormatter) Format(r *Report) error {
	var jsonBytes []byte
	var err error

	if f.indent {
		jsonBytes, err = json.MarshalIndent(r, "", "  ")
	} else {
		jsonBytes, err = json.Marshal(r)
	}
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	if f.outputFile != "" {
		if err := os.WriteFile(f.outputFile, jsonBytes, 0644); err != nil {
			return fmt.Errorf("error writing to file %s: %w", f.outputFile, err)
		}
		return nil
	}

	_, err = fmt.Fprintln(f.w, string(jsonBytes))
	return err
}
