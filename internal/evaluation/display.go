package evaluation

import (
	"github.com/dotcommander/evalpanel/internal/scoring"
	"github.com/dotcommander/evalpanel/internal/types"
)

// Display is the live score of one group.
type Display struct {
	Score    scoring.Score            `json:"score"`
	Status   types.Status             `json:"status"`
	PerType  map[string]scoring.Score `json:"per_type,omitempty"`
	Answered int                      `json:"answered"`
	Total    int                      `json:"total"`
}

// GroupDisplay scores a single group: per-type partitions, then their
// composite, then the status bucket. An answered item without a usable
// weight makes the whole group undetermined.
func GroupDisplay(g *Group) Display {
	entries := g.Entries()
	perType := scoring.AggregateByType(entries)
	score := scoring.CompositeScore(perType)
	if scoring.MissingWeight(entries) {
		score = scoring.Undefined
	}

	d := Display{
		Score:  score,
		Status: scoring.StatusOf(score),
		Total:  len(g.Items),
	}
	// A single untyped partition carries no extra information.
	if _, untyped := perType[""]; !(len(perType) == 1 && untyped) {
		d.PerType = perType
	}
	for _, it := range g.Items {
		if it.Answered() {
			d.Answered++
		}
	}
	return d
}

// ComputeDisplay scores every group from the current responses. Nothing is
// cached; each call reflects the evaluation as it is now.
func ComputeDisplay(e *Evaluation) map[string]Display {
	out := make(map[string]Display, len(e.order))
	for _, g := range e.Groups() {
		out[g.ID] = GroupDisplay(g)
	}
	return out
}

// Overall is the unweighted mean of the defined group scores.
func Overall(e *Evaluation) (scoring.Score, types.Status) {
	scores := make([]scoring.Score, 0, len(e.order))
	for _, g := range e.Groups() {
		scores = append(scores, GroupDisplay(g).Score)
	}
	s := scoring.MeanScore(scores)
	return s, scoring.StatusOf(s)
}
