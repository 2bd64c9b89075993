// Package types provides shared types used across the evalpanel codebase.
// This package is at the bottom of the dependency graph and should not import
// any other internal packages to avoid circular dependencies.
package types

import (
	"fmt"
	"strings"
)

// Response is the qualitative answer given to one evaluation item.
type Response string

// Response constants. The set is closed.
const (
	ResponseGood          Response = "good"
	ResponseMedium        Response = "medium"
	ResponseBad           Response = "bad"
	ResponseCritical      Response = "critical"
	ResponseNotApplicable Response = "na"
)

// Responses lists every valid response in display order.
var Responses = []Response{
	ResponseGood,
	ResponseMedium,
	ResponseBad,
	ResponseCritical,
	ResponseNotApplicable,
}

// responseAliases maps accepted spellings to canonical responses.
// The Portuguese labels are the ones used on the evaluation sheets.
var responseAliases = map[string]Response{
	"good":           ResponseGood,
	"bom":            ResponseGood,
	"medium":         ResponseMedium,
	"médio":          ResponseMedium,
	"medio":          ResponseMedium,
	"bad":            ResponseBad,
	"ruim":           ResponseBad,
	"critical":       ResponseCritical,
	"crítico":        ResponseCritical,
	"critico":        ResponseCritical,
	"na":             ResponseNotApplicable,
	"n/a":            ResponseNotApplicable,
	"notapplicable":  ResponseNotApplicable,
	"not_applicable": ResponseNotApplicable,
}

// Valid reports whether r is a member of the closed response set.
func (r Response) Valid() bool {
	switch r {
	case ResponseGood, ResponseMedium, ResponseBad, ResponseCritical, ResponseNotApplicable:
		return true
	}
	return false
}

// RequiresJustification reports whether a justification may be attached to r.
func (r Response) RequiresJustification() bool {
	return r == ResponseBad || r == ResponseCritical
}

// Label returns the sheet label for r.
func (r Response) Label() string {
	switch r {
	case ResponseGood:
		return "Bom"
	case ResponseMedium:
		return "Médio"
	case ResponseBad:
		return "Ruim"
	case ResponseCritical:
		return "Crítico"
	case ResponseNotApplicable:
		return "NA"
	}
	return string(r)
}

// ParseResponse resolves a user-supplied response, accepting canonical names
// and sheet labels case-insensitively. Unknown values are rejected, never coerced.
func ParseResponse(s string) (Response, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if r, ok := responseAliases[key]; ok {
		return r, nil
	}
	valid := make([]string, len(Responses))
	for i, r := range Responses {
		valid[i] = string(r)
	}
	return "", fmt.Errorf("unknown response %q: must be one of: %s", s, strings.Join(valid, ", "))
}

// Status is the severity bucket derived from a score.
type Status string

// Status constants, ordered from least to most severe. Undetermined means no
// conclusion is possible and must never be read as Good.
const (
	StatusUndetermined Status = "undetermined"
	StatusGood         Status = "good"
	StatusMedium       Status = "medium"
	StatusBad          Status = "bad"
	StatusCritical     Status = "critical"
)

// Icon returns the traffic-light marker used in reports.
func (s Status) Icon() string {
	switch s {
	case StatusGood:
		return "🟢"
	case StatusMedium:
		return "🟡"
	case StatusBad:
		return "🟠"
	case StatusCritical:
		return "🔴"
	default:
		return "⚪"
	}
}

// Output format constants.
const (
	FormatConsole  = "console"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatYAML     = "yaml"
)

// Store backend constants.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)
