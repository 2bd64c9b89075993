package scoring

import (
	"math"
	"sort"

	"github.com/dotcommander/evalpanel/internal/types"
)

// responseValues is the badness value of each answerable response.
// NotApplicable is deliberately absent: it is excluded from aggregation.
var responseValues = map[types.Response]float64{
	types.ResponseGood:     0.0,
	types.ResponseMedium:   0.3333,
	types.ResponseBad:      0.6667,
	types.ResponseCritical: 1.0,
}

// ItemValue returns the badness value of a response. The boolean is false
// for NotApplicable and for anything outside the closed set.
func ItemValue(r types.Response) (float64, bool) {
	v, ok := responseValues[r]
	return v, ok
}

// GroupScore computes the weighted average badness of the answered entries.
// It is undefined when nothing was answered, when the answered weights sum
// to zero, or when an answered entry has no usable weight.
func GroupScore(entries []Entry) Score {
	var sum, totalWeight float64
	for _, e := range entries {
		v, ok := ItemValue(e.Response)
		if !ok {
			continue
		}
		if !usableWeight(e) {
			return Undefined
		}
		sum += v * e.Weight
		totalWeight += e.Weight
	}
	if totalWeight == 0 {
		return Undefined
	}
	return Defined(sum / totalWeight)
}

// MissingWeight reports whether an answered entry has no usable weight.
// Such an entry leaves the whole group without a conclusion.
func MissingWeight(entries []Entry) bool {
	for _, e := range entries {
		if _, ok := ItemValue(e.Response); ok && !usableWeight(e) {
			return true
		}
	}
	return false
}

func usableWeight(e Entry) bool {
	return e.HasWeight && e.Weight >= 0 && !math.IsNaN(e.Weight) && !math.IsInf(e.Weight, 0)
}

// AggregateByType partitions entries by type and scores each partition.
// The types are the distinct entry types; entries without a type form the
// "" partition. Use TypeOrder for their first-seen order.
func AggregateByType(entries []Entry) map[string]Score {
	partitions := make(map[string][]Entry)
	for _, e := range entries {
		partitions[e.Type] = append(partitions[e.Type], e)
	}

	scores := make(map[string]Score, len(partitions))
	for typ, part := range partitions {
		scores[typ] = GroupScore(part)
	}
	return scores
}

// TypeOrder returns the distinct entry types in first-seen order.
func TypeOrder(entries []Entry) []string {
	seen := make(map[string]bool)
	var order []string
	for _, e := range entries {
		if !seen[e.Type] {
			seen[e.Type] = true
			order = append(order, e.Type)
		}
	}
	return order
}

// CompositeScore rolls per-type scores into one figure: the unweighted mean
// of the defined partition scores. Each type counts once regardless of how
// many questions it holds.
func CompositeScore(perType map[string]Score) Score {
	keys := make([]string, 0, len(perType))
	for k := range perType {
		keys = append(keys, k)
	}
	// Sorted so the float sum is deterministic.
	sort.Strings(keys)

	scores := make([]Score, 0, len(keys))
	for _, k := range keys {
		scores = append(scores, perType[k])
	}
	return MeanScore(scores)
}

// MeanScore is the unweighted mean of the defined scores, undefined when
// none are defined. It is also used for the overall evaluation figure.
func MeanScore(scores []Score) Score {
	var sum float64
	var n int
	for _, s := range scores {
		if !s.Valid {
			continue
		}
		sum += s.Value
		n++
	}
	switch n {
	case 0:
		return Undefined
	case 1:
		return Defined(sum)
	default:
		return Defined(sum / float64(n))
	}
}
