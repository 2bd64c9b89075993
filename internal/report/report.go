// Package report builds the evaluation summary handed to renderers and
// formats it for the console, JSON, or Markdown.
package report

import (
	"time"

	"github.com/dotcommander/evalpanel/internal/evaluation"
	"github.com/dotcommander/evalpanel/internal/scoring"
	"github.com/dotcommander/evalpanel/internal/types"
)

// Report is everything a renderer needs: one summary row per group and the
// justified findings.
type Report struct {
	Key           string         `json:"key,omitempty"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Header        Header         `json:"header"`
	Overall       scoring.Score  `json:"overall"`
	OverallStatus types.Status   `json:"overall_status"`
	Summary       []GroupSummary `json:"summary"`
	Findings      []Finding      `json:"findings"`
}

// Header is the evaluation header in display form.
type Header struct {
	Project     string `json:"project,omitempty"`
	Client      string `json:"client,omitempty"`
	Responsible string `json:"responsible,omitempty"`
	EvaluatedAt string `json:"evaluated_at,omitempty"`
}

// GroupSummary is one row of the summary section.
type GroupSummary struct {
	GroupID     string        `json:"group_id"`
	Code        string        `json:"code"`
	Description string        `json:"description"`
	Score       scoring.Score `json:"score"`
	Status      types.Status  `json:"status"`
	PerType     []TypeScore   `json:"per_type,omitempty"`
	Answered    int           `json:"answered"`
	Total       int           `json:"total"`
}

// TypeScore is the score of one item-type partition within a group.
type TypeScore struct {
	Type   string        `json:"type"`
	Score  scoring.Score `json:"score"`
	Status types.Status  `json:"status"`
}

// Finding is a Bad or Critical item carrying a justification.
type Finding struct {
	GroupID       string         `json:"group_id"`
	Code          string         `json:"code"`
	Type          string         `json:"type,omitempty"`
	Question      string         `json:"question"`
	Response      types.Response `json:"response"`
	Justification string         `json:"justification"`
}

// Build computes the report for e. key is the snapshot key, if any.
func Build(e *evaluation.Evaluation, key string) *Report {
	overall, overallStatus := evaluation.Overall(e)
	r := &Report{
		Key:           key,
		GeneratedAt:   time.Now(),
		Header:        displayHeader(e.Header),
		Overall:       overall,
		OverallStatus: overallStatus,
		Summary:       []GroupSummary{},
		Findings:      []Finding{},
	}

	for _, g := range e.Groups() {
		d := evaluation.GroupDisplay(g)
		row := GroupSummary{
			GroupID:     g.ID,
			Code:        g.Code,
			Description: g.Description,
			Score:       d.Score,
			Status:      d.Status,
			Answered:    d.Answered,
			Total:       d.Total,
		}
		if d.PerType != nil {
			for _, typ := range scoring.TypeOrder(g.Entries()) {
				s := d.PerType[typ]
				row.PerType = append(row.PerType, TypeScore{Type: typ, Score: s, Status: scoring.StatusOf(s)})
			}
		}
		r.Summary = append(r.Summary, row)

		for _, it := range g.Items {
			if !it.Response.RequiresJustification() || it.Justification == "" {
				continue
			}
			r.Findings = append(r.Findings, Finding{
				GroupID:       g.ID,
				Code:          g.Code,
				Type:          it.Type,
				Question:      it.Question,
				Response:      it.Response,
				Justification: it.Justification,
			})
		}
	}

	return r
}

func displayHeader(h evaluation.Header) Header {
	out := Header{
		Project:     h.Project,
		Client:      h.Client,
		Responsible: h.Responsible,
	}
	if !h.EvaluatedAt.IsZero() {
		out.EvaluatedAt = h.EvaluatedAt.Format("2006-01-02 15:04")
	}
	return out
}
