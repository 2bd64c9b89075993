package server

import (
	"time"

	"github.com/dotcommander/evalpanel/internal/evaluation"
	"github.com/dotcommander/evalpanel/internal/scoring"
	"github.com/dotcommander/evalpanel/internal/types"
)

type headerView struct {
	Project     string `json:"project"`
	Client      string `json:"client"`
	Responsible string `json:"responsible"`
	EvaluatedAt string `json:"evaluated_at,omitempty"`
}

type itemView struct {
	Index         int            `json:"index"`
	Type          string         `json:"type,omitempty"`
	Question      string         `json:"question"`
	Weight        *float64       `json:"weight"`
	Response      types.Response `json:"response"`
	Justification string         `json:"justification,omitempty"`
}

type groupView struct {
	ID          string             `json:"id"`
	Code        string             `json:"code"`
	Description string             `json:"description"`
	Items       []itemView         `json:"items"`
	Display     evaluation.Display `json:"display"`
}

type evaluationView struct {
	Key      string      `json:"key,omitempty"`
	Header   headerView  `json:"header"`
	Groups   []groupView `json:"groups"`
	Warnings []string    `json:"warnings,omitempty"`
	Dropped  []string    `json:"dropped,omitempty"`
}

type displayView struct {
	Groups        map[string]evaluation.Display `json:"groups"`
	Overall       scoring.Score                 `json:"overall"`
	OverallStatus types.Status                  `json:"overall_status"`
}

type headerPayload struct {
	Project     string `json:"project"`
	Client      string `json:"client"`
	Responsible string `json:"responsible"`
	EvaluatedAt string `json:"evaluated_at"`
}

type responsePayload struct {
	Response      string `json:"response"`
	Justification string `json:"justification"`
}

type savePayload struct {
	Key       string `json:"key"`
	Overwrite bool   `json:"overwrite"`
}

func newHeaderView(h evaluation.Header) headerView {
	v := headerView{
		Project:     h.Project,
		Client:      h.Client,
		Responsible: h.Responsible,
	}
	if !h.EvaluatedAt.IsZero() {
		v.EvaluatedAt = h.EvaluatedAt.Format(time.RFC3339)
	}
	return v
}

func newEvaluationView(e *evaluation.Evaluation, key string) evaluationView {
	v := evaluationView{
		Key:    key,
		Header: newHeaderView(e.Header),
		Groups: make([]groupView, 0, len(e.GroupIDs())),
	}
	for _, g := range e.Groups() {
		gv := groupView{
			ID:          g.ID,
			Code:        g.Code,
			Description: g.Description,
			Items:       make([]itemView, len(g.Items)),
			Display:     evaluation.GroupDisplay(g),
		}
		for i, it := range g.Items {
			iv := itemView{
				Index:         i,
				Type:          it.Type,
				Question:      it.Question,
				Response:      it.Response,
				Justification: it.Justification,
			}
			if it.HasWeight {
				w := it.Weight
				iv.Weight = &w
			}
			gv.Items[i] = iv
		}
		v.Groups = append(v.Groups, gv)
	}
	return v
}
