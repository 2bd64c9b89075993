package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/evalpanel/internal/evaluation"
	"github.com/dotcommander/evalpanel/internal/snapshot"
)

const testTemplate = `
groups:
  - id: Contratos
    code: ADM-01
    description: Gestão contratual
    items:
      - type: Procedimento
        question: Contrato assinado?
        weight: 1
      - type: Procedimento
        question: Aditivos registrados?
        weight: 1
  - id: Medicao
    items:
      - question: Boletim conferido?
        weight: 2
`

// setupWorkspace isolates config, data directory and clock for one test.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	tmpDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	oldDataDir, oldNow := dataDir, now
	dataDir = filepath.Join(tmpDir, "data")
	now = func() time.Time { return time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { dataDir, now = oldDataDir, oldNow })

	require.NoError(t, os.WriteFile("painel.yaml", []byte(testTemplate), 0644))
	return tmpDir
}

func loadSaved(t *testing.T, key string) evaluation.Record {
	t.Helper()
	store, err := snapshot.NewFileStore(dataDir)
	require.NoError(t, err)
	rec, err := store.Load(context.Background(), key)
	require.NoError(t, err)
	return rec
}

func TestInitAndAnswer(t *testing.T) {
	setupWorkspace(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, runInit(ctx, initOptions{template: "painel.yaml", project: "Obra Norte", date: "2024-05-01"}, &out))
	assert.Contains(t, out.String(), `Saved snapshot "2024-05-01 14:30" (2 groups, 3 items)`)

	rec := loadSaved(t, "2024-05-01 14:30")
	assert.Equal(t, "Obra Norte", rec.Header.Project)
	assert.Equal(t, "na", string(rec.Groups["Contratos"][0].Response))

	// Same minute, no --key: the derived key collides and needs --force.
	answer := answerOptions{
		template:      "painel.yaml",
		from:          "2024-05-01 14:30",
		group:         "Contratos",
		item:          2,
		response:      "Crítico",
		justification: "sem registro",
	}
	err := runAnswer(ctx, answer, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, snapshot.ErrExists))
	assert.Contains(t, err.Error(), "--force")

	now = func() time.Time { return time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC) }
	out.Reset()
	require.NoError(t, runAnswer(ctx, answer, &out))
	assert.Contains(t, out.String(), `Saved snapshot "2024-05-01 15:00"`)
	assert.Contains(t, out.String(), "1.00 (critical)")

	rec = loadSaved(t, "2024-05-01 15:00")
	assert.Equal(t, "critical", string(rec.Groups["Contratos"][1].Response))
	assert.Equal(t, "sem registro", rec.Groups["Contratos"][1].Justification)
	assert.Equal(t, "Obra Norte", rec.Header.Project, "header survives reopen")

	// The original snapshot is untouched.
	rec = loadSaved(t, "2024-05-01 14:30")
	assert.Equal(t, "na", string(rec.Groups["Contratos"][1].Response))

	// Explicit overwrite of the same key.
	answer.from, answer.key, answer.force = "2024-05-01 15:00", "2024-05-01 15:00", true
	answer.item, answer.response, answer.justification = 1, "good", "ignored"
	require.NoError(t, runAnswer(ctx, answer, &out))
	rec = loadSaved(t, "2024-05-01 15:00")
	assert.Equal(t, "good", string(rec.Groups["Contratos"][0].Response))
	assert.Empty(t, rec.Groups["Contratos"][0].Justification)
	assert.Equal(t, "critical", string(rec.Groups["Contratos"][1].Response))
}

func TestAnswerErrors(t *testing.T) {
	setupWorkspace(t)
	ctx := context.Background()
	var out bytes.Buffer
	require.NoError(t, runInit(ctx, initOptions{template: "painel.yaml", key: "base"}, &out))

	tests := []struct {
		name    string
		opts    answerOptions
		wantErr error
	}{
		{"unknown response", answerOptions{template: "painel.yaml", from: "base", group: "Contratos", item: 1, response: "excellent"}, nil},
		{"unknown group", answerOptions{template: "painel.yaml", from: "base", group: "Nope", item: 1, response: "good"}, evaluation.ErrGroupNotFound},
		{"item zero", answerOptions{template: "painel.yaml", from: "base", group: "Contratos", item: 0, response: "good"}, evaluation.ErrItemOutOfRange},
		{"item past end", answerOptions{template: "painel.yaml", from: "base", group: "Medicao", item: 2, response: "good"}, evaluation.ErrItemOutOfRange},
		{"missing snapshot", answerOptions{template: "painel.yaml", from: "nope", group: "Contratos", item: 1, response: "good"}, snapshot.ErrNotFound},
		{"missing from", answerOptions{template: "painel.yaml", group: "Contratos", item: 1, response: "good"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runAnswer(ctx, tt.opts, &out)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	setupWorkspace(t)
	ctx := context.Background()
	var out bytes.Buffer
	require.NoError(t, runInit(ctx, initOptions{template: "painel.yaml", key: "base"}, &out))
	require.NoError(t, runAnswer(ctx, answerOptions{
		template: "painel.yaml", from: "base", key: "base", force: true,
		group: "Medicao", item: 1, response: "medium",
	}, &out))

	out.Reset()
	require.NoError(t, runStatus(ctx, statusOptions{template: "painel.yaml", from: "base"}, &out))
	assert.Contains(t, out.String(), "0.33 medium  (1/1 answered)")
	assert.Contains(t, out.String(), "- undetermined  (0/2 answered)")
	assert.Contains(t, out.String(), "Overall: 0.33 (medium)")
	assert.NotContains(t, out.String(), "Boletim conferido?")

	viper.Set("verbose", true)
	out.Reset()
	require.NoError(t, runStatus(ctx, statusOptions{template: "painel.yaml"}, &out))
	assert.Contains(t, out.String(), "Boletim conferido?")
	assert.Contains(t, out.String(), "1. [NA")
	assert.Contains(t, out.String(), "Overall: - (undetermined)")
}

func TestReport(t *testing.T) {
	setupWorkspace(t)
	ctx := context.Background()
	var out bytes.Buffer
	require.NoError(t, runInit(ctx, initOptions{template: "painel.yaml", key: "base", project: "Obra Norte"}, &out))
	require.NoError(t, runAnswer(ctx, answerOptions{
		template: "painel.yaml", from: "base", key: "base", force: true,
		group: "Contratos", item: 1, response: "bad", justification: "atrasado",
	}, &out))

	viper.Set("format", "json")
	out.Reset()
	require.NoError(t, runReport(ctx, reportOptions{template: "painel.yaml", from: "base"}, &out))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "base", decoded["key"])
	assert.Equal(t, "bad", decoded["overall_status"])
	findings := decoded["findings"].([]any)
	require.Len(t, findings, 1)
	assert.Equal(t, "atrasado", findings[0].(map[string]any)["justification"])

	viper.Set("format", "markdown")
	viper.Set("output", filepath.Join(t.TempDir(), "relatorio.md"))
	out.Reset()
	require.NoError(t, runReport(ctx, reportOptions{template: "painel.yaml", from: "base"}, &out))
	assert.Empty(t, out.String())
	data, err := os.ReadFile(viper.GetString("output"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "**Projeto:** Obra Norte")
}

func TestListAndExport(t *testing.T) {
	setupWorkspace(t)
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, runList(ctx, &out))
	assert.Empty(t, out.String())

	require.NoError(t, runInit(ctx, initOptions{template: "painel.yaml", key: "b"}, &out))
	require.NoError(t, runInit(ctx, initOptions{template: "painel.yaml", key: "a"}, &out))

	out.Reset()
	require.NoError(t, runList(ctx, &out))
	assert.Equal(t, "a\nb\n", out.String())

	out.Reset()
	require.NoError(t, runExport(ctx, "a", false, &out))
	assert.Contains(t, out.String(), `"key": "a"`)

	out.Reset()
	require.NoError(t, runExport(ctx, "a", true, &out))
	assert.Contains(t, out.String(), "key: a")

	assert.True(t, errors.Is(runExport(ctx, "missing", false, &out), snapshot.ErrNotFound))
}

func TestListWithSQLiteStore(t *testing.T) {
	setupWorkspace(t)
	viper.Set("store", "sqlite")
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, runInit(ctx, initOptions{template: "painel.yaml"}, &out))
	out.Reset()
	require.NoError(t, runList(ctx, &out))
	assert.Equal(t, "2024-05-01 14:30\n", out.String())
	assert.FileExists(t, filepath.Join(dataDir, snapshot.DBFileName))
}

func TestTemplates(t *testing.T) {
	tmpDir := setupWorkspace(t)
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "obra"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "obra", "painel.yml"), []byte(testTemplate), 0644))

	var out bytes.Buffer
	require.NoError(t, runTemplates(tmpDir, &out))
	assert.Equal(t, "obra/painel.yml  yaml\npainel.yaml      yaml\n", out.String())
}

func TestInitRequiresTemplate(t *testing.T) {
	setupWorkspace(t)
	var out bytes.Buffer
	err := runInit(context.Background(), initOptions{}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--template is required")

	err = runInit(context.Background(), initOptions{template: "painel.yaml", date: "ontem"}, &out)
	assert.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"init", "answer", "status", "report", "list", "export", "templates", "serve"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
