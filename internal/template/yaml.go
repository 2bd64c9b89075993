package template

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/evalpanel/internal/cue"
)

// yamlTemplate is the authored YAML form of a template.
type yamlTemplate struct {
	Groups []struct {
		ID          string `yaml:"id"`
		Code        string `yaml:"code"`
		Description string `yaml:"description"`
		Items       []struct {
			Type     string   `yaml:"type"`
			Question string   `yaml:"question"`
			Weight   *float64 `yaml:"weight"`
		} `yaml:"items"`
	} `yaml:"groups"`
}

// ParseYAML reads a YAML template and validates it against the embedded
// #Template schema before building groups.
func ParseYAML(r io.Reader) ([]Group, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}

	validator, err := cue.NewLoadedValidator()
	if err != nil {
		return nil, err
	}
	errs, err := validator.ValidateTemplate(raw)
	if err != nil {
		return nil, err
	}
	if err := cue.Join(errs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var doc yamlTemplate
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	seen := make(map[string]bool)
	groups := make([]Group, 0, len(doc.Groups))
	for _, yg := range doc.Groups {
		if seen[yg.ID] {
			return nil, fmt.Errorf("%w: duplicate group id %q", ErrMalformed, yg.ID)
		}
		seen[yg.ID] = true

		g := Group{ID: yg.ID, Code: yg.Code, Description: yg.Description}
		if g.Code == "" {
			g.Code = yg.ID
		}
		for _, it := range yg.Items {
			row := Row{Type: it.Type, Question: it.Question}
			if it.Weight != nil {
				row.Weight = *it.Weight
				row.HasWeight = true
			}
			g.Rows = append(g.Rows, row)
		}
		groups = append(groups, g)
	}
	return groups, nil
}
