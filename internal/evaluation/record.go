package evaluation

import (
	"time"

	"github.com/dotcommander/evalpanel/internal/types"
)

// Record is the persisted form of an evaluation. It is self-contained: every
// field is a plain value, so a record can be stored and read back without
// the template it came from.
type Record struct {
	Header *HeaderRecord           `json:"header,omitempty" yaml:"header,omitempty"`
	Groups map[string][]ItemRecord `json:"groups" yaml:"groups"`
}

// HeaderRecord is the persisted evaluation header.
type HeaderRecord struct {
	Project     string `json:"project,omitempty" yaml:"project,omitempty"`
	Client      string `json:"client,omitempty" yaml:"client,omitempty"`
	Responsible string `json:"responsible,omitempty" yaml:"responsible,omitempty"`
	EvaluatedAt string `json:"evaluated_at,omitempty" yaml:"evaluated_at,omitempty"`
}

// ItemRecord is one persisted item. A nil Weight means the template row
// carried no usable weight.
type ItemRecord struct {
	Question      string         `json:"question" yaml:"question"`
	Type          string         `json:"type,omitempty" yaml:"type,omitempty"`
	Weight        *float64       `json:"weight" yaml:"weight"`
	Response      types.Response `json:"response" yaml:"response"`
	Justification string         `json:"justification,omitempty" yaml:"justification,omitempty"`
}

// Snapshot produces a record that shares no mutable state with e.
func Snapshot(e *Evaluation) Record {
	rec := Record{
		Header: headerRecord(e.Header),
		Groups: make(map[string][]ItemRecord, len(e.order)),
	}
	for _, g := range e.Groups() {
		items := make([]ItemRecord, len(g.Items))
		for i, it := range g.Items {
			items[i] = ItemRecord{
				Question:      it.Question,
				Type:          it.Type,
				Response:      it.Response,
				Justification: it.Justification,
			}
			if it.HasWeight {
				w := it.Weight
				items[i].Weight = &w
			}
		}
		rec.Groups[g.ID] = items
	}
	return rec
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	c := Record{Groups: make(map[string][]ItemRecord, len(r.Groups))}
	if r.Header != nil {
		h := *r.Header
		c.Header = &h
	}
	for id, items := range r.Groups {
		cp := make([]ItemRecord, len(items))
		for i, it := range items {
			cp[i] = it
			if it.Weight != nil {
				w := *it.Weight
				cp[i].Weight = &w
			}
		}
		c.Groups[id] = cp
	}
	return c
}

func headerRecord(h Header) *HeaderRecord {
	if h == (Header{}) {
		return nil
	}
	hr := &HeaderRecord{
		Project:     h.Project,
		Client:      h.Client,
		Responsible: h.Responsible,
	}
	if !h.EvaluatedAt.IsZero() {
		hr.EvaluatedAt = h.EvaluatedAt.Format(time.RFC3339Nano)
	}
	return hr
}

func (hr *HeaderRecord) header() Header {
	if hr == nil {
		return Header{}
	}
	h := Header{
		Project:     hr.Project,
		Client:      hr.Client,
		Responsible: hr.Responsible,
	}
	if hr.EvaluatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, hr.EvaluatedAt); err == nil {
			h.EvaluatedAt = t
		}
	}
	return h
}
