package scoring

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/dotcommander/evalpanel/internal/types"
)

// Score is a badness index in [0,1]: 0 is best, 1 is worst.
// An invalid Score means no conclusion is possible (no answered items,
// or answered items whose weights sum to zero).
type Score struct {
	Value float64
	Valid bool
}

// Undefined is the score of a group with nothing to aggregate.
var Undefined = Score{}

// Defined wraps v as a valid score.
func Defined(v float64) Score {
	return Score{Value: v, Valid: true}
}

// String renders the score with two decimals, or a dash when undefined.
func (s Score) String() string {
	if !s.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", s.Value)
}

// MarshalJSON encodes an undefined score as null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON decodes null as an undefined score.
func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid score: %w", err)
	}
	*s = Defined(v)
	return nil
}

// Entry is the scoring view of one evaluation item.
type Entry struct {
	Type      string
	Response  types.Response
	Weight    float64
	HasWeight bool // false when the template row carried no usable weight
}

// StatusThresholds defines the upper bounds of each status bucket.
// Good and Medium are inclusive, Bad is exclusive: a score equal to Bad
// is already Critical.
type StatusThresholds struct {
	Good   float64
	Medium float64
	Bad    float64
}

// DefaultThresholds is the threshold table used by every report.
var DefaultThresholds = StatusThresholds{
	Good:   0.25,
	Medium: 0.50,
	Bad:    0.75,
}

// Classify maps a score to its status bucket.
func (t StatusThresholds) Classify(s Score) types.Status {
	if !s.Valid || math.IsNaN(s.Value) {
		return types.StatusUndetermined
	}
	switch {
	case s.Value <= t.Good:
		return types.StatusGood
	case s.Value <= t.Medium:
		return types.StatusMedium
	case s.Value < t.Bad:
		return types.StatusBad
	default:
		return types.StatusCritical
	}
}

// StatusOf classifies a score using DefaultThresholds.
func StatusOf(s Score) types.Status {
	return DefaultThresholds.Classify(s)
}
