// Package evaluation owns the evaluation being edited: groups of items with
// their responses and justifications, snapshot records for persistence, and
// the merge that reopens a snapshot against a freshly parsed template.
package evaluation

import (
	"fmt"
	"time"

	"github.com/dotcommander/evalpanel/internal/scoring"
	"github.com/dotcommander/evalpanel/internal/types"
)

// Item is one evaluation question. Question, Type and Weight come from the
// template and are never overwritten by persisted data.
type Item struct {
	Type          string
	Question      string
	Weight        float64
	HasWeight     bool
	Response      types.Response
	Justification string
}

// Answered reports whether the item takes part in scoring.
func (it Item) Answered() bool {
	return it.Response != types.ResponseNotApplicable
}

func (it Item) entry() scoring.Entry {
	return scoring.Entry{
		Type:      it.Type,
		Response:  it.Response,
		Weight:    it.Weight,
		HasWeight: it.HasWeight,
	}
}

// Group is a discipline or process. Code and Description are template
// metadata; only the item responses are mutable.
type Group struct {
	ID          string
	Code        string
	Description string
	Items       []Item
}

// Entries returns the scoring view of the group's items.
func (g *Group) Entries() []scoring.Entry {
	entries := make([]scoring.Entry, len(g.Items))
	for i, it := range g.Items {
		entries[i] = it.entry()
	}
	return entries
}

// Header is free-form evaluation metadata.
type Header struct {
	Project     string
	Client      string
	Responsible string
	EvaluatedAt time.Time
}

// dateLayouts are the accepted forms of a user-entered evaluation date.
var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

// ParseDate parses a user-entered evaluation date. An empty string is the
// zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC 3339", s)
}

// Evaluation is the aggregate root. It exclusively owns its groups and items.
type Evaluation struct {
	Header Header
	groups map[string]*Group
	order  []string
}

func newEvaluation() *Evaluation {
	return &Evaluation{groups: make(map[string]*Group)}
}

func (e *Evaluation) add(g *Group) {
	if _, exists := e.groups[g.ID]; !exists {
		e.order = append(e.order, g.ID)
	}
	e.groups[g.ID] = g
}

// Group returns the group with the given id.
func (e *Evaluation) Group(id string) (*Group, bool) {
	g, ok := e.groups[id]
	return g, ok
}

// Groups returns the groups in template order.
func (e *Evaluation) Groups() []*Group {
	out := make([]*Group, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.groups[id])
	}
	return out
}

// GroupIDs returns the group ids in template order.
func (e *Evaluation) GroupIDs() []string {
	return append([]string(nil), e.order...)
}

// Clone returns a deep copy sharing no mutable state with e.
func (e *Evaluation) Clone() *Evaluation {
	c := newEvaluation()
	c.Header = e.Header
	for _, g := range e.Groups() {
		gc := *g
		gc.Items = append([]Item(nil), g.Items...)
		c.add(&gc)
	}
	return c
}

// SetResponse records a response on one item. A justification is kept only
// for Bad and Critical responses; for anything else it is cleared, whatever
// the caller passed.
func (e *Evaluation) SetResponse(groupID string, index int, r types.Response, justification string) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidResponse, r)
	}
	g, ok := e.groups[groupID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrGroupNotFound, groupID)
	}
	if index < 0 || index >= len(g.Items) {
		return fmt.Errorf("%w: group %q has %d items, got index %d", ErrItemOutOfRange, groupID, len(g.Items), index)
	}

	it := &g.Items[index]
	it.Response = r
	if r.RequiresJustification() {
		it.Justification = justification
	} else {
		it.Justification = ""
	}
	return nil
}
