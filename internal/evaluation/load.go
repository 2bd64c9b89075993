package evaluation

import (
	"sort"

	"github.com/dotcommander/evalpanel/internal/template"
	"github.com/dotcommander/evalpanel/internal/types"
)

// LoadTemplate builds a fresh evaluation from parsed template groups with
// every item unanswered.
func LoadTemplate(groups []template.Group) *Evaluation {
	e := newEvaluation()
	for _, tg := range groups {
		g := &Group{
			ID:          tg.ID,
			Code:        tg.Code,
			Description: tg.Description,
			Items:       make([]Item, len(tg.Rows)),
		}
		for i, row := range tg.Rows {
			g.Items[i] = Item{
				Type:      row.Type,
				Question:  row.Question,
				Weight:    row.Weight,
				HasWeight: row.HasWeight,
				Response:  types.ResponseNotApplicable,
			}
		}
		e.add(g)
	}
	return e
}

// Hydrate rebuilds an editable evaluation from a fresh template and a
// persisted record. The template decides structure: items are matched by
// position within a group, answers are copied while both sides have an item
// at that index, and question, type and weight always come from the template.
// Record groups absent from the template are dropped.
func Hydrate(groups []template.Group, rec Record) *Evaluation {
	e := LoadTemplate(groups)
	e.Header = rec.Header.header()

	for _, g := range e.Groups() {
		saved, ok := rec.Groups[g.ID]
		if !ok {
			continue
		}
		n := min(len(g.Items), len(saved))
		for i := 0; i < n; i++ {
			r := saved[i].Response
			if !r.Valid() {
				continue
			}
			g.Items[i].Response = r
			if r.RequiresJustification() {
				g.Items[i].Justification = saved[i].Justification
			}
		}
	}
	return e
}

// DroppedGroups lists the record groups Hydrate discards because the
// template no longer has them, sorted.
func DroppedGroups(groups []template.Group, rec Record) []string {
	present := make(map[string]bool, len(groups))
	for _, g := range groups {
		present[g.ID] = true
	}
	var dropped []string
	for id := range rec.Groups {
		if !present[id] {
			dropped = append(dropped, id)
		}
	}
	sort.Strings(dropped)
	return dropped
}
