// Package template turns an evaluation spreadsheet into parsed groups.
//
// Parsing runs once per upload; the result is passed explicitly to the
// evaluation store and never re-parsed per edit.
package template

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrMalformed is returned when a template cannot be read as a set of groups.
var ErrMalformed = errors.New("malformed template")

// Row is one question row of a template sheet.
type Row struct {
	Type      string
	Question  string
	Weight    float64
	HasWeight bool // false when the weight cell is empty, non-numeric, or negative
}

// Group is one sheet of the template: a discipline or process.
type Group struct {
	ID          string
	Code        string
	Description string
	Rows        []Row
	Warnings    []string
}

// Format identifies a template file encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatYAML Format = "yaml"
)

// DetectFormat derives the template format from a file name.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported template extension %q", ErrMalformed, filepath.Ext(path))
	}
}

// Load parses the template file at path.
func Load(path string) ([]Group, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer f.Close()

	return Parse(f, format)
}

// Parse reads a template of the given format from r.
func Parse(r io.Reader, format Format) ([]Group, error) {
	switch format {
	case FormatXLSX:
		return ParseXLSX(r)
	case FormatYAML:
		return ParseYAML(r)
	default:
		return nil, fmt.Errorf("%w: unsupported template format %q", ErrMalformed, format)
	}
}

// Warnings collects the parse warnings of every group, prefixed by group id.
func Warnings(groups []Group) []string {
	var out []string
	for _, g := range groups {
		for _, w := range g.Warnings {
			out = append(out, g.ID+": "+w)
		}
	}
	return out
}
