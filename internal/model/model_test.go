package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncID(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "app.models:User.save", FuncID("app.models", "User.save"))
}

func TestFunctionLineSpan(t *testing.T) {
	t.Parallel()
	f := Function{StartLine: 10, EndLine: 14}
	assert.Equal(t, 5, f.LineSpan())

	oneLiner := Function{StartLine: 3, EndLine: 3}
	assert.Equal(t, 1, oneLiner.LineSpan())
}

func TestModuleAggregates(t *testing.T) {
	t.Parallel()
	m := Module{
		ID: "app",
		Functions: []Function{
			{Name: "a", Complexity: 2},
		},
		Classes: []Class{
			{
				Name: "C",
				Methods: []Function{
					{Name: "m1", Complexity: 3},
					{Name: "m2", Complexity: 1},
				},
			},
		},
	}

	assert.Equal(t, 4, m.SymbolCount())
	assert.Equal(t, 6, m.ComplexitySum())

	all := m.AllFunctions()
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, "m1", all[1].Name)
}

func TestModuleFailed(t *testing.T) {
	t.Parallel()
	ok := Module{ID: "a"}
	assert.False(t, ok.Failed())

	bad := Module{ID: "b", Error: &ParseError{File: "b.py", Message: "syntax error"}}
	assert.True(t, bad.Failed())
	assert.Equal(t, "b.py: syntax error", bad.Error.Error())
}

func TestSnapshotSeal(t *testing.T) {
	t.Parallel()
	snap := &Snapshot{
		Modules: []Module{
			{
				ID: "app", Lines: 40,
				Functions: []Function{{ID: "app:run", Name: "run", QualName: "run", Module: "app"}},
				Classes: []Class{{
					ID: "app:User", Name: "User", QualName: "User", Module: "app",
					Methods: []Function{{ID: "app:User.save", Name: "save", QualName: "User.save", Module: "app"}},
				}},
			},
			{ID: "util", Lines: 10},
		},
	}
	snap.Seal()

	assert.Equal(t, 2, snap.Meta.ModuleCount)
	assert.Equal(t, 2, snap.Meta.FuncCount)
	assert.Equal(t, 1, snap.Meta.ClassCount)
	assert.Equal(t, 50, snap.Meta.TotalLines)

	require.NotNil(t, snap.ModuleByID("app"))
	require.NotNil(t, snap.FunctionByID("app:User.save"))
	require.NotNil(t, snap.ClassByID("app:User"))
	assert.Nil(t, snap.ModuleByID("missing"))
	assert.Equal(t, []string{"app", "util"}, snap.ModuleIDs())
}

func TestOutgoingCalls(t *testing.T) {
	t.Parallel()
	snap := &Snapshot{
		Modules: []Module{{ID: "app"}, {ID: "util"}},
		CallEdges: []CallEdge{
			{Caller: "app:run", Callee: "util:helper", Count: 1, Resolved: true},
			{Caller: "app", Callee: "print", Count: 2},
			{Caller: "util:helper", Callee: "len", Count: 1},
		},
	}
	snap.Seal()

	out := snap.OutgoingCalls("app")
	require.Len(t, out, 2)
	assert.Equal(t, "app:run", out[0].Caller)
	assert.Equal(t, "app", out[1].Caller)
}

func TestSnapshotEntrypoints(t *testing.T) {
	t.Parallel()
	snap := &Snapshot{
		Modules: []Module{
			{ID: "api", Entrypoints: []Entrypoint{
				{Kind: EntrypointRoute, Module: "api", Target: "api:list_users", Line: 3},
			}},
			{ID: "util"},
		},
	}
	snap.Seal()

	eps := snap.Entrypoints()
	require.Len(t, eps, 1)
	assert.Equal(t, EntrypointRoute, eps[0].Kind)
	assert.Equal(t, "api:list_users", eps[0].Target)
}
