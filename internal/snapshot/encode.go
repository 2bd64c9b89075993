package snapshot

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/evalpanel/internal/evaluation"
	"github.com/dotcommander/evalpanel/internal/types"
)

// Export is a single snapshot in portable form.
type Export struct {
	Key    string            `json:"key" yaml:"key"`
	Record evaluation.Record `json:"record" yaml:"record"`
}

// Encode writes one snapshot as JSON or YAML.
func Encode(w io.Writer, key string, rec evaluation.Record, format string) error {
	doc := Export{Key: key, Record: rec}
	switch format {
	case types.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		return nil
	case types.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("error encoding YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}
