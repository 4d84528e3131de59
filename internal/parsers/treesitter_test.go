package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanviz/bean/internal/model"
)

func TestSpecForPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		lang string
	}{
		{"app/main.py", "python"},
		{"src/index.ts", "typescript"},
		{"src/App.tsx", "tsx"},
		{"src/util.js", "typescript"},
		{"lib/worker.rb", "ruby"},
		{"com/example/App.java", "java"},
		{"src/lib.rs", "rust"},
		{"public/index.php", "php"},
		{"src/main.c", "c"},
	}
	for _, tt := range tests {
		spec := SpecForPath(tt.path)
		require.NotNil(t, spec, tt.path)
		assert.Equal(t, tt.lang, spec.Name, tt.path)
	}

	assert.Nil(t, SpecForPath("README.md"))
	assert.Nil(t, SpecForPath("Makefile"))
}

func TestSupportedExtensions(t *testing.T) {
	t.Parallel()

	exts := SupportedExtensions()
	for _, want := range []string{".py", ".ts", ".tsx", ".js", ".rb", ".java", ".rs", ".php", ".c"} {
		assert.Contains(t, exts, want)
	}
}

func TestParseValidFile(t *testing.T) {
	t.Parallel()

	pf, err := Parse("m.py", []byte("def f():\n    return 1\n"))
	require.NoError(t, err)
	defer pf.Close()

	assert.Equal(t, "python", pf.Spec.Name)
	assert.Equal(t, 2, pf.Lines)
	assert.NotNil(t, pf.Root())
	assert.False(t, pf.Root().HasError())
}

func TestParseUnsupportedExtension(t *testing.T) {
	t.Parallel()

	_, err := Parse("notes.txt", []byte("hello"))
	require.Error(t, err)
	var pe *model.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "notes.txt", pe.File)
}

func TestParseSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := Parse("bad.py", []byte("def broken(:\n    pass\n"))
	require.Error(t, err)
	var pe *model.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bad.py", pe.File)
	assert.Positive(t, pe.Line)
}

func TestPythonModuleID(t *testing.T) {
	t.Parallel()

	spec := SpecForLanguage("python")
	require.NotNil(t, spec)

	tests := []struct {
		path string
		want string
	}{
		{"top.py", "top"},
		{"a/b.py", "a.b"},
		{"pkg/__init__.py", "pkg"},
		{"a/b/__init__.py", "a.b"},
		{"__init__.py", "__root__"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, spec.PathModuleID(tt.path), tt.path)
	}
}

func TestDefaultModuleID(t *testing.T) {
	t.Parallel()

	spec := SpecForLanguage("typescript")
	require.NotNil(t, spec)

	assert.Equal(t, "src.index", spec.PathModuleID("src/index.ts"))
	assert.Equal(t, "main", spec.PathModuleID("main.ts"))
}

func TestTypescriptExtraction(t *testing.T) {
	t.Parallel()

	src := `import { helper } from "./util";

export class Greeter {
  private name: string;

  greet(who: string): string {
    if (who === "") {
      return helper();
    }
    return "hi " + who;
  }
}

function main(count: number): void {
  for (let i = 0; i < count; i++) {
    console.log(i);
  }
}
`
	pf, err := Parse("src/app.ts", []byte(src))
	require.NoError(t, err)
	defer pf.Close()

	imports := pf.Spec.Imports(pf.Root(), pf.Source)
	require.Len(t, imports, 1)
	assert.Equal(t, "./util", imports[0].Target)
	assert.Equal(t, []string{"helper"}, imports[0].Names)
}

func TestRubyParse(t *testing.T) {
	t.Parallel()

	src := `require "json"

class Greeter
  def greet(who)
    if who.empty?
      return nil
    end
    "hi " + who
  end
end
`
	pf, err := Parse("lib/greeter.rb", []byte(src))
	require.NoError(t, err)
	defer pf.Close()

	imports := pf.Spec.Imports(pf.Root(), pf.Source)
	require.Len(t, imports, 1)
	assert.Equal(t, "json", imports[0].Target)
}
