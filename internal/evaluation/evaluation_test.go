package evaluation

import (
	"errors"
	"testing"
	"time"

	"github.com/dotcommander/evalpanel/internal/scoring"
	"github.com/dotcommander/evalpanel/internal/template"
	"github.com/dotcommander/evalpanel/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTemplate() []template.Group {
	return []template.Group{
		{
			ID:          "Contratos",
			Code:        "ADM-01",
			Description: "Gestão contratual",
			Rows: []template.Row{
				{Type: "Procedimento", Question: "Contrato assinado?", Weight: 1, HasWeight: true},
				{Type: "Procedimento", Question: "Garantias válidas?", Weight: 1, HasWeight: true},
				{Type: "Acompanhamento", Question: "Aditivos registrados?", Weight: 2, HasWeight: true},
			},
		},
		{
			ID:   "Medicao",
			Code: "Medicao",
			Rows: []template.Row{
				{Question: "Boletim conferido?", Weight: 1, HasWeight: true},
				{Question: "Sem peso", HasWeight: false},
			},
		},
	}
}

func TestLoadTemplate(t *testing.T) {
	e := LoadTemplate(sampleTemplate())

	assert.Equal(t, []string{"Contratos", "Medicao"}, e.GroupIDs())
	g, ok := e.Group("Contratos")
	require.True(t, ok)
	assert.Equal(t, "ADM-01", g.Code)
	require.Len(t, g.Items, 3)
	for _, grp := range e.Groups() {
		for _, it := range grp.Items {
			assert.Equal(t, types.ResponseNotApplicable, it.Response)
			assert.Empty(t, it.Justification)
		}
	}
}

func TestSetResponse(t *testing.T) {
	e := LoadTemplate(sampleTemplate())

	require.NoError(t, e.SetResponse("Contratos", 0, types.ResponseCritical, "contrato vencido"))
	g, _ := e.Group("Contratos")
	assert.Equal(t, types.ResponseCritical, g.Items[0].Response)
	assert.Equal(t, "contrato vencido", g.Items[0].Justification)

	// Moving out of Bad/Critical clears the justification.
	require.NoError(t, e.SetResponse("Contratos", 0, types.ResponseMedium, "contrato vencido"))
	assert.Equal(t, types.ResponseMedium, g.Items[0].Response)
	assert.Empty(t, g.Items[0].Justification)

	require.NoError(t, e.SetResponse("Contratos", 1, types.ResponseGood, "some text"))
	assert.Empty(t, g.Items[1].Justification)

	require.NoError(t, e.SetResponse("Contratos", 2, types.ResponseBad, "atraso"))
	assert.Equal(t, "atraso", g.Items[2].Justification)
}

func TestSetResponse_Errors(t *testing.T) {
	e := LoadTemplate(sampleTemplate())

	tests := []struct {
		name    string
		group   string
		index   int
		resp    types.Response
		wantErr error
	}{
		{"invalid response", "Contratos", 0, types.Response("excelente"), ErrInvalidResponse},
		{"empty response", "Contratos", 0, types.Response(""), ErrInvalidResponse},
		{"unknown group", "Nope", 0, types.ResponseGood, ErrGroupNotFound},
		{"negative index", "Contratos", -1, types.ResponseGood, ErrItemOutOfRange},
		{"index past end", "Contratos", 3, types.ResponseGood, ErrItemOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.SetResponse(tt.group, tt.index, tt.resp, "x")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	// Rejected edits leave state untouched.
	g, _ := e.Group("Contratos")
	assert.Equal(t, types.ResponseNotApplicable, g.Items[0].Response)
}

func TestSnapshot_IsIndependent(t *testing.T) {
	e := LoadTemplate(sampleTemplate())
	require.NoError(t, e.SetResponse("Contratos", 0, types.ResponseBad, "motivo"))

	rec := Snapshot(e)
	require.NoError(t, e.SetResponse("Contratos", 0, types.ResponseGood, ""))

	assert.Equal(t, types.ResponseBad, rec.Groups["Contratos"][0].Response)
	assert.Equal(t, "motivo", rec.Groups["Contratos"][0].Justification)

	// Mutating the record does not leak back either.
	*rec.Groups["Contratos"][0].Weight = 99
	g, _ := e.Group("Contratos")
	assert.Equal(t, 1.0, g.Items[0].Weight)
	assert.Nil(t, rec.Groups["Medicao"][1].Weight)
}

func TestRecord_Clone(t *testing.T) {
	e := LoadTemplate(sampleTemplate())
	e.Header = Header{Project: "Obra"}
	rec := Snapshot(e)

	c := rec.Clone()
	assert.Equal(t, rec, c)

	c.Header.Project = "Outra"
	*c.Groups["Contratos"][0].Weight = 5
	c.Groups["Contratos"][1].Response = types.ResponseCritical

	assert.Equal(t, "Obra", rec.Header.Project)
	assert.Equal(t, 1.0, *rec.Groups["Contratos"][0].Weight)
	assert.Equal(t, types.ResponseNotApplicable, rec.Groups["Contratos"][1].Response)
}

func TestHydrate_RoundTripFreshTemplate(t *testing.T) {
	tmpl := sampleTemplate()
	fresh := LoadTemplate(tmpl)

	assert.Equal(t, fresh, Hydrate(tmpl, Snapshot(fresh)))
}

func TestHydrate_RoundTripAnswered(t *testing.T) {
	tmpl := sampleTemplate()
	e := LoadTemplate(tmpl)
	e.Header = Header{
		Project:     "Obra Norte",
		Client:      "ACME",
		Responsible: "Equipe de contratos",
		EvaluatedAt: time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC),
	}
	require.NoError(t, e.SetResponse("Contratos", 0, types.ResponseCritical, "vencido"))
	require.NoError(t, e.SetResponse("Contratos", 2, types.ResponseGood, ""))
	require.NoError(t, e.SetResponse("Medicao", 0, types.ResponseBad, "divergência"))

	reopened := Hydrate(tmpl, Snapshot(e))
	assert.Equal(t, e, reopened)
	assert.Equal(t, Snapshot(e), Snapshot(reopened))
}

func TestHydrate_PositionalMergeUnderDrift(t *testing.T) {
	old := LoadTemplate([]template.Group{{
		ID: "A",
		Rows: []template.Row{
			{Question: "q1", Weight: 1, HasWeight: true},
			{Question: "q2", Weight: 1, HasWeight: true},
			{Question: "q3", Weight: 1, HasWeight: true},
		},
	}})
	require.NoError(t, old.SetResponse("A", 0, types.ResponseBad, "j1"))
	require.NoError(t, old.SetResponse("A", 1, types.ResponseCritical, "j2"))
	require.NoError(t, old.SetResponse("A", 2, types.ResponseCritical, "j3"))
	rec := Snapshot(old)

	newTmpl := []template.Group{{
		ID: "A",
		Rows: []template.Row{
			{Question: "q1 reworded", Type: "Procedimento", Weight: 4, HasWeight: true},
			{Question: "q2", Weight: 2, HasWeight: true},
		},
	}}
	e := Hydrate(newTmpl, rec)

	g, ok := e.Group("A")
	require.True(t, ok)
	require.Len(t, g.Items, 2)
	assert.Equal(t, types.ResponseBad, g.Items[0].Response)
	assert.Equal(t, "j1", g.Items[0].Justification)
	assert.Equal(t, types.ResponseCritical, g.Items[1].Response)
	assert.Equal(t, "j2", g.Items[1].Justification)

	// Template fields win.
	assert.Equal(t, "q1 reworded", g.Items[0].Question)
	assert.Equal(t, "Procedimento", g.Items[0].Type)
	assert.Equal(t, 4.0, g.Items[0].Weight)
}

func TestHydrate_TemplateLongerAndNewGroups(t *testing.T) {
	rec := Record{Groups: map[string][]ItemRecord{
		"A":       {{Question: "q1", Response: types.ResponseMedium}},
		"Removed": {{Question: "old", Response: types.ResponseCritical, Justification: "x"}},
	}}
	tmpl := []template.Group{
		{ID: "A", Rows: []template.Row{{Question: "q1"}, {Question: "q2"}}},
		{ID: "B", Rows: []template.Row{{Question: "q1"}}},
	}

	e := Hydrate(tmpl, rec)
	a, _ := e.Group("A")
	assert.Equal(t, types.ResponseMedium, a.Items[0].Response)
	assert.Equal(t, types.ResponseNotApplicable, a.Items[1].Response)
	b, _ := e.Group("B")
	assert.Equal(t, types.ResponseNotApplicable, b.Items[0].Response)
	_, ok := e.Group("Removed")
	assert.False(t, ok)

	assert.Equal(t, []string{"Removed"}, DroppedGroups(tmpl, rec))
}

func TestHydrate_SanitizesRecord(t *testing.T) {
	rec := Record{Groups: map[string][]ItemRecord{
		"A": {
			{Question: "q1", Response: types.ResponseGood, Justification: "stale"},
			{Question: "q2", Response: types.Response("bogus"), Justification: "x"},
		},
	}}
	e := Hydrate([]template.Group{{ID: "A", Rows: []template.Row{{Question: "q1"}, {Question: "q2"}}}}, rec)

	a, _ := e.Group("A")
	assert.Equal(t, types.ResponseGood, a.Items[0].Response)
	assert.Empty(t, a.Items[0].Justification)
	assert.Equal(t, types.ResponseNotApplicable, a.Items[1].Response)
	assert.Empty(t, a.Items[1].Justification)
}

func TestHydrate_DoesNotShareRecordState(t *testing.T) {
	tmpl := sampleTemplate()
	rec := Snapshot(LoadTemplate(tmpl))
	e := Hydrate(tmpl, rec)

	require.NoError(t, e.SetResponse("Contratos", 0, types.ResponseBad, "novo"))
	assert.Equal(t, types.ResponseNotApplicable, rec.Groups["Contratos"][0].Response)
}

func TestEvaluation_Clone(t *testing.T) {
	e := LoadTemplate(sampleTemplate())
	c := e.Clone()
	assert.Equal(t, e, c)

	require.NoError(t, c.SetResponse("Contratos", 0, types.ResponseBad, "x"))
	g, _ := e.Group("Contratos")
	assert.Equal(t, types.ResponseNotApplicable, g.Items[0].Response)
}

func TestComputeDisplay(t *testing.T) {
	e := LoadTemplate(sampleTemplate())

	d := ComputeDisplay(e)
	assert.Equal(t, types.StatusUndetermined, d["Contratos"].Status)
	assert.False(t, d["Contratos"].Score.Valid)
	assert.Equal(t, 0, d["Contratos"].Answered)
	assert.Equal(t, 3, d["Contratos"].Total)

	// Procedimento: Good(1) + Medium(1) -> 0.16665; Acompanhamento: Critical -> 1.0
	require.NoError(t, e.SetResponse("Contratos", 0, types.ResponseGood, ""))
	require.NoError(t, e.SetResponse("Contratos", 1, types.ResponseMedium, ""))
	require.NoError(t, e.SetResponse("Contratos", 2, types.ResponseCritical, "grave"))

	d = ComputeDisplay(e)
	c := d["Contratos"]
	assert.InDelta(t, 0.16665, c.PerType["Procedimento"].Value, 1e-9)
	assert.Equal(t, scoring.Defined(1.0), c.PerType["Acompanhamento"])
	assert.InDelta(t, (0.16665+1.0)/2, c.Score.Value, 1e-9)
	assert.Equal(t, types.StatusBad, c.Status)
	assert.Equal(t, 3, c.Answered)

	// Recomputed on every call.
	require.NoError(t, e.SetResponse("Contratos", 2, types.ResponseGood, ""))
	assert.Equal(t, types.StatusGood, ComputeDisplay(e)["Contratos"].Status)
}

func TestComputeDisplay_MissingWeightDegrades(t *testing.T) {
	e := LoadTemplate(sampleTemplate())
	require.NoError(t, e.SetResponse("Medicao", 0, types.ResponseGood, ""))
	d := ComputeDisplay(e)["Medicao"]
	assert.Equal(t, types.StatusGood, d.Status)
	assert.Nil(t, d.PerType, "single untyped partition is not broken out")

	require.NoError(t, e.SetResponse("Medicao", 1, types.ResponseGood, ""))
	assert.Equal(t, types.StatusUndetermined, ComputeDisplay(e)["Medicao"].Status)

	// A weightless critical answer in one type must not leave the group good.
	typed := LoadTemplate([]template.Group{{ID: "A", Rows: []template.Row{
		{Type: "Procedimento", Question: "sem peso", HasWeight: false},
		{Type: "Acompanhamento", Question: "com peso", Weight: 1, HasWeight: true},
	}}})
	require.NoError(t, typed.SetResponse("A", 0, types.ResponseCritical, "falha"))
	require.NoError(t, typed.SetResponse("A", 1, types.ResponseGood, ""))

	d = ComputeDisplay(typed)["A"]
	assert.False(t, d.Score.Valid)
	assert.Equal(t, types.StatusUndetermined, d.Status)
	assert.Equal(t, 2, d.Answered)
	assert.False(t, d.PerType["Procedimento"].Valid)
	assert.True(t, d.PerType["Acompanhamento"].Valid)

	s, status := Overall(typed)
	assert.False(t, s.Valid)
	assert.Equal(t, types.StatusUndetermined, status)

	// Unanswered weightless items do not block the group.
	require.NoError(t, typed.SetResponse("A", 0, types.ResponseNotApplicable, ""))
	assert.Equal(t, types.StatusGood, ComputeDisplay(typed)["A"].Status)
}

func TestComputeDisplay_ZeroWeightCountsAsAnswered(t *testing.T) {
	e := LoadTemplate([]template.Group{{ID: "Z", Rows: []template.Row{{Question: "q", Weight: 0, HasWeight: true}}}})
	require.NoError(t, e.SetResponse("Z", 0, types.ResponseGood, ""))

	d := ComputeDisplay(e)["Z"]
	assert.Equal(t, 1, d.Answered)
	assert.Equal(t, types.StatusUndetermined, d.Status)
}

func TestOverall(t *testing.T) {
	e := LoadTemplate(sampleTemplate())
	s, status := Overall(e)
	assert.False(t, s.Valid)
	assert.Equal(t, types.StatusUndetermined, status)

	require.NoError(t, e.SetResponse("Contratos", 0, types.ResponseCritical, "x"))
	require.NoError(t, e.SetResponse("Medicao", 0, types.ResponseGood, ""))
	s, status = Overall(e)
	assert.InDelta(t, 0.5, s.Value, 1e-9)
	assert.Equal(t, types.StatusMedium, status)
}

func TestStore(t *testing.T) {
	s := NewStore()

	_, err := s.Active()
	assert.True(t, errors.Is(err, ErrNoActive))
	assert.True(t, errors.Is(s.SetResponse("A", 0, types.ResponseGood, ""), ErrNoActive))
	_, err = s.Snapshot()
	assert.True(t, errors.Is(err, ErrNoActive))
	_, err = s.ComputeDisplay()
	assert.True(t, errors.Is(err, ErrNoActive))
	assert.True(t, errors.Is(s.SetHeader(Header{}), ErrNoActive))

	tmpl := sampleTemplate()
	s.LoadTemplate(tmpl)
	require.NoError(t, s.SetHeader(Header{Project: "Obra"}))
	require.NoError(t, s.SetResponse("Contratos", 0, types.ResponseBad, "x"))

	rec, err := s.Snapshot()
	require.NoError(t, err)
	rec.Groups["Gone"] = []ItemRecord{{Question: "q", Response: types.ResponseGood}}

	// Reopening produces a new live evaluation, leaving the record alone.
	e, dropped := s.Hydrate(tmpl, rec)
	assert.Equal(t, []string{"Gone"}, dropped)
	assert.Equal(t, "Obra", e.Header.Project)
	require.NoError(t, s.SetResponse("Contratos", 0, types.ResponseGood, ""))
	assert.Equal(t, types.ResponseBad, rec.Groups["Contratos"][0].Response)

	d, err := s.ComputeDisplay()
	require.NoError(t, err)
	assert.Equal(t, types.StatusGood, d["Contratos"].Status)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"", time.Time{}, false},
		{"2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), false},
		{"2024-05-01 14:30", time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC), false},
		{"2024-05-01T14:30:00Z", time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC), false},
		{"01/05/2024", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}
