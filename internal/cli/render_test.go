package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanviz/bean/internal/diff"
	"github.com/beanviz/bean/internal/model"
)

func sampleSnapshot() *model.Snapshot {
	snap := &model.Snapshot{
		Meta: model.Metadata{BuildID: "test", Root: "/repo"},
		Modules: []model.Module{
			{
				ID: "app", Path: "app.py", Language: "python", Lines: 40,
				Functions: []model.Function{{ID: "app:run", Name: "run", QualName: "run", Module: "app", Complexity: 7, StartLine: 1, EndLine: 20}},
			},
			{ID: "util", Path: "util.py", Language: "python", Lines: 10},
		},
		Errors: []model.ParseError{{File: "bad.py", Message: "syntax error"}},
	}
	snap.Seal()
	return snap
}

func TestWriteSnapshotText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, writeSnapshot(&buf, sampleSnapshot(), "text", false))

	out := buf.String()
	assert.Contains(t, out, "modules:    2")
	assert.Contains(t, out, "bad.py: syntax error")
	assert.Contains(t, out, "app")
}

func TestWriteSnapshotJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, writeSnapshot(&buf, sampleSnapshot(), "json", true))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "modules")
	assert.Contains(t, decoded, "_metadata")
}

func TestWriteReportText(t *testing.T) {
	t.Parallel()

	report := &diff.Report{
		Meta: diff.Meta{ModulesChanged: 1, ModulesAdded: 1, TotalLineDelta: 12, TotalComplexityDelta: -2},
		ModulesAdded: []string{"shiny"},
		ModulesChanged: []diff.ModuleDelta{{
			ID: "app", LineDelta: 12, ComplexityDelta: -2,
			FunctionDiffs: []diff.FunctionDelta{
				{Name: "run", Status: diff.StatusChanged, RenamedFrom: "go", ComplexityDelta: -2},
				{Name: "helper", Status: diff.StatusUnchanged},
			},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, report, "text", false))

	out := buf.String()
	assert.Contains(t, out, "A  shiny")
	assert.Contains(t, out, "M  app")
	assert.Contains(t, out, "renamed from go")
	assert.NotContains(t, out, "helper", "unchanged entries stay out of the text view")
}

func TestWriteReportEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, &diff.Report{}, "text", false))
	assert.Contains(t, buf.String(), "No structural changes")
}

func TestWriteReportJSON(t *testing.T) {
	t.Parallel()

	report := &diff.Report{ModulesAdded: []string{"shiny"}}
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, report, "json", true))

	var decoded diff.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []string{"shiny"}, decoded.ModulesAdded)
}
