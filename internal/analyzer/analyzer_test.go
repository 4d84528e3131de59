package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanviz/bean/internal/model"
)

const modelsPy = `import os
from app.util import helper


class User:
    table = "users"

    def __init__(self, name):
        self.name = name

    def save(self):
        if self.name:
            helper(self.name)
        return True


def create(name, age=0):
    user = User(name)
    user.save()
    return user
`

const utilPy = `def helper(value):
    if value and len(value) > 1:
        return value
    return None
`

func fixtureSources() []Source {
	return []Source{
		{Path: "app/__init__.py", Text: []byte("")},
		{Path: "app/models.py", Text: []byte(modelsPy)},
		{Path: "app/util.py", Text: []byte(utilPy)},
	}
}

func analyzeFixture(t *testing.T, opts ...Option) *model.Snapshot {
	t.Helper()
	a := New(opts...)
	defer a.Close()
	snap, err := a.Analyze(context.Background(), "testroot", fixtureSources())
	require.NoError(t, err)
	return snap
}

func TestAnalyzeExtractsModules(t *testing.T) {
	t.Parallel()
	snap := analyzeFixture(t)

	assert.Equal(t, []string{"app", "app.models", "app.util"}, snap.ModuleIDs())

	models := snap.ModuleByID("app.models")
	require.NotNil(t, models)
	assert.Equal(t, "app/models.py", models.Path)
	assert.Equal(t, "python", models.Language)
	assert.False(t, models.Failed())
}

func TestAnalyzeExtractsClass(t *testing.T) {
	t.Parallel()
	snap := analyzeFixture(t)

	cls := snap.ClassByID("app.models:User")
	require.NotNil(t, cls)
	assert.Equal(t, "User", cls.Name)
	assert.Equal(t, []string{"__init__", "save"}, cls.MethodNames())

	fieldNames := make([]string, 0, len(cls.Fields))
	for _, f := range cls.Fields {
		fieldNames = append(fieldNames, f.Name)
	}
	assert.ElementsMatch(t, []string{"table", "name"}, fieldNames)
}

func TestAnalyzeExtractsFunctions(t *testing.T) {
	t.Parallel()
	snap := analyzeFixture(t)

	create := snap.FunctionByID("app.models:create")
	require.NotNil(t, create)
	assert.Equal(t, "create", create.Name)
	assert.Equal(t, "app.models", create.Module)
	require.Len(t, create.Params, 2)
	assert.Equal(t, "name", create.Params[0].Name)
	assert.Equal(t, "age", create.Params[1].Name)
	assert.True(t, create.Params[1].HasDefault)

	// The implicit receiver is not a parameter.
	init := snap.FunctionByID("app.models:User.__init__")
	require.NotNil(t, init)
	require.Len(t, init.Params, 1)
	assert.Equal(t, "name", init.Params[0].Name)
}

func TestAnalyzeComplexity(t *testing.T) {
	t.Parallel()
	snap := analyzeFixture(t)

	// baseline 1, +1 for the if, +1 for the boolean operator
	helper := snap.FunctionByID("app.util:helper")
	require.NotNil(t, helper)
	assert.Equal(t, 3, helper.Complexity)

	save := snap.FunctionByID("app.models:User.save")
	require.NotNil(t, save)
	assert.Equal(t, 2, save.Complexity)

	create := snap.FunctionByID("app.models:create")
	require.NotNil(t, create)
	assert.Equal(t, 1, create.Complexity)
}

func TestComplexityCounting(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
		want int
	}{
		{"straight line", "def f():\n    return 1\n", 1},
		{"if elif else", "def f(x):\n    if x > 0:\n        return 1\n    elif x < 0:\n        return 2\n    else:\n        return 3\n", 3},
		{"try except", "def f():\n    try:\n        work()\n    except ValueError:\n        pass\n    except KeyError:\n        pass\n", 3},
		{"ternary", "def f(x):\n    return 1 if x else 2\n", 2},
		// one path per generator; filter clauses do not count
		{"comprehension", "def f(xs):\n    return [x for x in xs if x]\n", 2},
		{"nested comprehension", "def f(xss):\n    return [x for xs in xss for x in xs]\n", 3},
		{"assert", "def f(x):\n    assert x\n    return x\n", 2},
		{"match", "def f(x):\n    match x:\n        case 1:\n            return 1\n        case _:\n            return 2\n", 3},
		{"nested loops", "def f(xs):\n    for x in xs:\n        while x:\n            x -= 1\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := New()
			defer a.Close()
			snap, err := a.Analyze(context.Background(), "t", []Source{{Path: "m.py", Text: []byte(tt.body)}})
			require.NoError(t, err)
			fn := snap.FunctionByID("m:f")
			require.NotNil(t, fn)
			assert.Equal(t, tt.want, fn.Complexity)
		})
	}
}

func TestAnalyzeResolvesImports(t *testing.T) {
	t.Parallel()
	snap := analyzeFixture(t)

	models := snap.ModuleByID("app.models")
	require.NotNil(t, models)
	require.Len(t, models.Imports, 2)

	osImport := models.Imports[0]
	assert.Equal(t, "os", osImport.Target)
	assert.Equal(t, model.ImportExternal, osImport.Status)
	assert.Empty(t, osImport.Resolved)

	utilImport := models.Imports[1]
	assert.Equal(t, "app.util", utilImport.Target)
	assert.Equal(t, model.ImportResolved, utilImport.Status)
	assert.Equal(t, "app.util", utilImport.Resolved)
	assert.Equal(t, []string{"helper"}, utilImport.Names)
}

func TestAnalyzeCallEdges(t *testing.T) {
	t.Parallel()
	snap := analyzeFixture(t)

	byPair := map[[2]string]model.CallEdge{}
	for _, e := range snap.CallEdges {
		byPair[[2]string{e.Caller, e.Callee}] = e
	}

	ctor, ok := byPair[[2]string{"app.models:create", "app.models:User"}]
	require.True(t, ok, "constructor call should resolve to the class")
	assert.True(t, ctor.Resolved)

	save, ok := byPair[[2]string{"app.models:create", "app.models:User.save"}]
	require.True(t, ok)
	assert.True(t, save.Resolved)

	helper, ok := byPair[[2]string{"app.models:User.save", "app.util:helper"}]
	require.True(t, ok, "cross-module call should resolve through the import")
	assert.True(t, helper.Resolved)

	builtin, ok := byPair[[2]string{"app.util:helper", "len"}]
	require.True(t, ok, "unresolved calls are recorded, not dropped")
	assert.False(t, builtin.Resolved)
	assert.Equal(t, 1, builtin.Count)
}

func TestAnalyzeDeterministic(t *testing.T) {
	t.Parallel()

	first := analyzeFixture(t, WithWorkers(1))
	second := analyzeFixture(t, WithWorkers(8))

	// Build metadata varies per run; the model itself must not.
	assert.Equal(t, first.Modules, second.Modules)
	assert.Equal(t, first.CallEdges, second.CallEdges)
	assert.Equal(t, first.Cycles, second.Cycles)
}

func TestAnalyzePartialFailure(t *testing.T) {
	t.Parallel()

	sources := append(fixtureSources(), Source{Path: "app/broken.py", Text: []byte("def broken(:\n")})
	a := New()
	defer a.Close()
	snap, err := a.Analyze(context.Background(), "testroot", sources)
	require.NoError(t, err, "one bad file must not fail the run")

	require.Len(t, snap.Errors, 1)
	assert.Equal(t, "app/broken.py", snap.Errors[0].File)

	broken := snap.ModuleByID("app.broken")
	require.NotNil(t, broken)
	assert.True(t, broken.Failed())
	assert.Empty(t, broken.Functions)

	// Healthy files are unaffected.
	assert.NotNil(t, snap.FunctionByID("app.util:helper"))
}

func TestAnalyzeAllFilesFailed(t *testing.T) {
	t.Parallel()

	a := New()
	defer a.Close()
	_, err := a.Analyze(context.Background(), "t", []Source{{Path: "bad.py", Text: []byte("def (:\n")}})
	assert.ErrorIs(t, err, model.ErrEmptySnapshot)
}

func TestAnalyzeNoSources(t *testing.T) {
	t.Parallel()

	a := New()
	defer a.Close()
	_, err := a.Analyze(context.Background(), "t", nil)
	assert.ErrorIs(t, err, model.ErrEmptySnapshot)
}

func TestAnalyzeSkipsUnsupportedExtensions(t *testing.T) {
	t.Parallel()

	a := New()
	defer a.Close()
	sources := []Source{
		{Path: "m.py", Text: []byte("def f():\n    return 1\n")},
		{Path: "notes.txt", Text: []byte("not code")},
	}
	snap, err := a.Analyze(context.Background(), "t", sources)
	require.NoError(t, err)
	assert.Equal(t, []string{"m"}, snap.ModuleIDs())
}

func TestAnalyzeCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New()
	defer a.Close()
	_, err := a.Analyze(ctx, "t", fixtureSources())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFingerprintIgnoresPositionAndComments(t *testing.T) {
	t.Parallel()

	shifted := "# header comment\n\n\n" + utilPy

	a := New()
	defer a.Close()
	base, err := a.Analyze(context.Background(), "t", []Source{{Path: "util.py", Text: []byte(utilPy)}})
	require.NoError(t, err)
	moved, err := a.Analyze(context.Background(), "t", []Source{{Path: "util.py", Text: []byte(shifted)}})
	require.NoError(t, err)

	before := base.FunctionByID("util:helper")
	after := moved.FunctionByID("util:helper")
	require.NotNil(t, before)
	require.NotNil(t, after)

	assert.NotEqual(t, before.StartLine, after.StartLine)
	assert.Equal(t, before.Fingerprint, after.Fingerprint)
}

func TestFingerprintIgnoresIdentifierRenames(t *testing.T) {
	t.Parallel()

	renamed := `def helper(v):
    if v and len(v) > 1:
        return v
    return None
`
	a := New()
	defer a.Close()
	base, err := a.Analyze(context.Background(), "t", []Source{{Path: "util.py", Text: []byte(utilPy)}})
	require.NoError(t, err)
	other, err := a.Analyze(context.Background(), "t", []Source{{Path: "util.py", Text: []byte(renamed)}})
	require.NoError(t, err)

	assert.Equal(t,
		base.FunctionByID("util:helper").Fingerprint,
		other.FunctionByID("util:helper").Fingerprint)
}

func TestAnalyzeImportCycles(t *testing.T) {
	t.Parallel()

	sources := []Source{
		{Path: "a.py", Text: []byte("import b\n\n\ndef fa():\n    return 1\n")},
		{Path: "b.py", Text: []byte("import a\n\n\ndef fb():\n    return 2\n")},
		{Path: "c.py", Text: []byte("def fc():\n    return 3\n")},
	}
	a := New()
	defer a.Close()
	snap, err := a.Analyze(context.Background(), "t", sources)
	require.NoError(t, err)

	require.Len(t, snap.Cycles, 1)
	assert.Equal(t, []string{"a", "b"}, snap.Cycles[0])
}

func TestAnalyzeWithCacheIsStable(t *testing.T) {
	t.Parallel()

	a := New(WithCache(64))
	defer a.Close()

	first, err := a.Analyze(context.Background(), "t", fixtureSources())
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), "t", fixtureSources())
	require.NoError(t, err)

	assert.Equal(t, first.Modules, second.Modules)
	assert.Equal(t, first.CallEdges, second.CallEdges)
}

func TestAnalyzeDuplicateModuleIDs(t *testing.T) {
	t.Parallel()

	// pkg.py and pkg/__init__.py collapse to the same module ID.
	sources := []Source{
		{Path: "pkg.py", Text: []byte("def from_file():\n    return 1\n")},
		{Path: "pkg/__init__.py", Text: []byte("def from_package():\n    return 2\n")},
	}
	a := New()
	defer a.Close()
	snap, err := a.Analyze(context.Background(), "t", sources)
	require.NoError(t, err)

	assert.Equal(t, []string{"pkg"}, snap.ModuleIDs())
	assert.NotNil(t, snap.FunctionByID("pkg:from_file"), "first record in sorted path order wins")
}

func TestAnalyzeCachedFilesStayIndependent(t *testing.T) {
	t.Parallel()

	a := New(WithCache(64))
	defer a.Close()

	x := Source{Path: "x.py", Text: []byte("import y\n")}
	y := Source{Path: "y.py", Text: []byte("def helper():\n    return 1\n")}

	first, err := a.Analyze(context.Background(), "t", []Source{x, y})
	require.NoError(t, err)
	require.Equal(t, model.ImportResolved, first.ModuleByID("x").Imports[0].Status)

	// Same file, cached, now analyzed without its import target.
	second, err := a.Analyze(context.Background(), "t", []Source{x})
	require.NoError(t, err)
	got := second.ModuleByID("x").Imports[0]
	assert.Equal(t, model.ImportExternal, got.Status)
	assert.Empty(t, got.Resolved)

	// The earlier snapshot keeps its own resolution.
	kept := first.ModuleByID("x").Imports[0]
	assert.Equal(t, model.ImportResolved, kept.Status)
	assert.Equal(t, "y", kept.Resolved)
}

func TestAnalyzeDetectsEntrypoints(t *testing.T) {
	t.Parallel()

	src := `@app.get("/users")
def list_users():
    return []


@cli.command()
def sync():
    pass


@shared_task
def rebuild():
    pass


if __name__ == "__main__":
    sync()
`
	a := New()
	defer a.Close()
	snap, err := a.Analyze(context.Background(), "t", []Source{{Path: "api/handlers.py", Text: []byte(src)}})
	require.NoError(t, err)

	mod := snap.ModuleByID("api.handlers")
	require.NotNil(t, mod)
	assert.Equal(t, "api", mod.Layer)

	eps := mod.Entrypoints
	require.Len(t, eps, 4)
	assert.Equal(t, model.EntrypointRoute, eps[0].Kind)
	assert.Equal(t, "api.handlers:list_users", eps[0].Target)
	assert.Equal(t, []string{`app.get("/users")`}, eps[0].Decorators)
	assert.Equal(t, model.EntrypointCLI, eps[1].Kind)
	assert.Equal(t, model.EntrypointTask, eps[2].Kind)
	assert.Equal(t, model.EntrypointMainGuard, eps[3].Kind)
	assert.Equal(t, "api.handlers:__main__", eps[3].Target)

	assert.Len(t, snap.Entrypoints(), 4)
}

func TestLayerInference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		moduleID string
		want     string
	}{
		{"api.handlers", "api"},
		{"routes.user", "api"},
		{"models.user", "db"},
		{"tasks.email", "worker"},
		{"utils.strings", "core"},
		{"tests.test_user", "test"},
		{"cli.main", "script"},
		{"settings", "config"},
		{"billing.invoice", "billing"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, layerFor(tt.moduleID), tt.moduleID)
	}
}
