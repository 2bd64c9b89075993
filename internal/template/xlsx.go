package template

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Column keys recognised in a sheet header row.
const (
	colCode        = "code"
	colDescription = "description"
	colType        = "type"
	colQuestion    = "question"
	colWeight      = "weight"
)

// columnAliases maps normalised header labels to column keys.
var columnAliases = map[string]string{
	"codigo":      colCode,
	"code":        colCode,
	"descricao":   colDescription,
	"description": colDescription,
	"tipo":        colType,
	"type":        colType,
	"pergunta":    colQuestion,
	"question":    colQuestion,
	"peso":        colWeight,
	"weight":      colWeight,
}

// ParseXLSX reads a workbook where every sheet is one group. The first row of
// each sheet is the header; rows without a question are skipped.
func ParseXLSX(r io.Reader) ([]Group, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer f.Close()

	var groups []Group
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		groups = append(groups, parseSheet(sheet, rows))
	}

	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformed)
	}
	return groups, nil
}

// parseSheet converts raw sheet rows into a Group. Structural problems are
// recorded as warnings so one bad sheet never fails the whole workbook.
func parseSheet(sheet string, rows [][]string) Group {
	g := Group{ID: sheet, Code: sheet}
	if len(rows) == 0 {
		g.Warnings = append(g.Warnings, "sheet is empty")
		return g
	}

	cols := headerColumns(rows[0])
	data := rows[1:]

	if len(data) > 0 {
		if code := cell(data[0], cols, colCode); code != "" {
			g.Code = code
		}
		g.Description = cell(data[0], cols, colDescription)
	}

	if _, ok := cols[colQuestion]; !ok {
		g.Warnings = append(g.Warnings, "column 'Pergunta' not found")
		return g
	}
	if _, ok := cols[colWeight]; !ok {
		g.Warnings = append(g.Warnings, "column 'Peso' not found; score is undetermined")
	}

	for i, row := range data {
		question := cell(row, cols, colQuestion)
		if question == "" {
			continue
		}
		weight, ok := parseWeight(cell(row, cols, colWeight))
		if !ok && cell(row, cols, colWeight) != "" {
			g.Warnings = append(g.Warnings, fmt.Sprintf("row %d: invalid weight %q", i+2, cell(row, cols, colWeight)))
		}
		g.Rows = append(g.Rows, Row{
			Type:      cell(row, cols, colType),
			Question:  question,
			Weight:    weight,
			HasWeight: ok,
		})
	}

	return g
}

// headerColumns maps column keys to their index in the header row.
// The first occurrence of a column wins.
func headerColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for i, label := range header {
		key, ok := columnAliases[normalizeLabel(label)]
		if !ok {
			continue
		}
		if _, seen := cols[key]; !seen {
			cols[key] = i
		}
	}
	return cols
}

func cell(row []string, cols map[string]int, key string) string {
	i, ok := cols[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseWeight accepts both "1.5" and the comma decimal form "1,5".
func parseWeight(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	w, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, false
	}
	return w, true
}

// normalizeLabel lowercases a header label and strips accents.
func normalizeLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
