package gitsnap

import (
	"fmt"

	"github.com/beanviz/bean/internal/analyzer"
)

// Ref identifies one resolved snapshot source.
type Ref struct {
	Name   string // ref as given, e.g. "main" or "HEAD~3"
	Commit string // resolved full commit hash
}

// Provider reads the source set of a ref straight from the object store.
type Provider struct {
	ops Operations
}

// NewProvider creates a Provider. A nil ops uses real git commands.
func NewProvider(ops Operations) *Provider {
	if ops == nil {
		ops = NewOperations()
	}
	return &Provider{ops: ops}
}

// IsRepository reports whether repoPath is inside a git worktree.
func (p *Provider) IsRepository(repoPath string) bool {
	return p.ops.IsRepository(repoPath)
}

// SourcesAt returns every tracked file at ref that passes the include
// filter, with paths relative to the repository root. Reading from the
// object store rather than checking out keeps the working tree untouched.
func (p *Provider) SourcesAt(repoPath, ref string, include func(path string) bool) ([]analyzer.Source, Ref, error) {
	if !p.ops.IsRepository(repoPath) {
		return nil, Ref{}, fmt.Errorf("%s is not a git repository", repoPath)
	}

	commit, err := p.ops.ResolveRef(repoPath, ref)
	if err != nil {
		return nil, Ref{}, err
	}

	files, err := p.ops.ListFiles(repoPath, commit)
	if err != nil {
		return nil, Ref{}, err
	}

	var sources []analyzer.Source
	for _, path := range files {
		if include != nil && !include(path) {
			continue
		}
		text, err := p.ops.ReadFile(repoPath, commit, path)
		if err != nil {
			return nil, Ref{}, err
		}
		sources = append(sources, analyzer.Source{Path: path, Text: text})
	}
	return sources, Ref{Name: ref, Commit: commit}, nil
}
