package gitsnap

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourcesAt(t *testing.T) {
	t.Parallel()

	ops := NewMockOperations()
	ops.AddFile("main", "app/models.py", []byte("class User:\n    pass\n"))
	ops.AddFile("main", "app/util.py", []byte("def helper():\n    return 1\n"))
	ops.AddFile("main", "README.md", []byte("# readme\n"))

	p := NewProvider(ops)
	sources, ref, err := p.SourcesAt("/repo", "main", func(path string) bool {
		return strings.HasSuffix(path, ".py")
	})
	require.NoError(t, err)

	assert.Equal(t, "main", ref.Name)
	assert.NotEmpty(t, ref.Commit)
	require.Len(t, sources, 2)
	assert.Equal(t, "app/models.py", sources[0].Path)
	assert.Equal(t, "app/util.py", sources[1].Path)
	assert.Equal(t, []byte("def helper():\n    return 1\n"), sources[1].Text)
}

func TestSourcesAtNilFilter(t *testing.T) {
	t.Parallel()

	ops := NewMockOperations()
	ops.AddFile("main", "a.py", []byte("x = 1\n"))
	ops.AddFile("main", "b.md", []byte("# b\n"))

	p := NewProvider(ops)
	sources, _, err := p.SourcesAt("/repo", "main", nil)
	require.NoError(t, err)
	assert.Len(t, sources, 2)
}

func TestSourcesAtUnknownRef(t *testing.T) {
	t.Parallel()

	p := NewProvider(NewMockOperations())
	_, _, err := p.SourcesAt("/repo", "no-such-branch", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-branch")
}

func TestSourcesAtNotARepository(t *testing.T) {
	t.Parallel()

	ops := NewMockOperations()
	ops.Repo = false

	p := NewProvider(ops)
	_, _, err := p.SourcesAt("/tmp/plain-dir", "main", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a git repository")
}

func TestSourcesAtReadFailure(t *testing.T) {
	t.Parallel()

	ops := NewMockOperations()
	ops.AddFile("main", "a.py", []byte("x = 1\n"))
	ops.ReadError = errors.New("object store corrupt")

	p := NewProvider(ops)
	_, _, err := p.SourcesAt("/repo", "main", nil)
	assert.ErrorContains(t, err, "object store corrupt")
}
