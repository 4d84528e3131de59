package gitsnap

import (
	"fmt"
	"sort"
)

// MockOperations is an in-memory Operations implementation for testing.
// Files maps ref → path → content.
type MockOperations struct {
	Repo      bool
	Refs      map[string]string // ref → commit hash
	Files     map[string]map[string][]byte
	Root      string
	ListError error
	ReadError error
}

// NewMockOperations creates a mock with a single empty "HEAD" ref.
func NewMockOperations() *MockOperations {
	return &MockOperations{
		Repo:  true,
		Refs:  map[string]string{"HEAD": "0000000000000000000000000000000000000000"},
		Files: map[string]map[string][]byte{"HEAD": {}},
		Root:  "/tmp/test-repo",
	}
}

// AddFile registers a file's content at a ref, creating the ref if needed.
// The tree is reachable both by ref name and by its resolved hash, matching
// real git.
func (m *MockOperations) AddFile(ref, path string, content []byte) {
	if m.Files[ref] == nil {
		m.Files[ref] = map[string][]byte{}
	}
	m.Files[ref][path] = content
	if _, ok := m.Refs[ref]; !ok {
		m.Refs[ref] = fmt.Sprintf("%040x", len(m.Refs)+1)
	}
	m.Files[m.Refs[ref]] = m.Files[ref]
}

func (m *MockOperations) IsRepository(string) bool {
	return m.Repo
}

func (m *MockOperations) ResolveRef(_, ref string) (string, error) {
	hash, ok := m.Refs[ref]
	if !ok {
		return "", fmt.Errorf("resolving ref %q: unknown revision", ref)
	}
	return hash, nil
}

func (m *MockOperations) ListFiles(_, ref string) ([]string, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	tree, ok := m.Files[ref]
	if !ok {
		return nil, fmt.Errorf("listing files at %q: unknown revision", ref)
	}
	var files []string
	for path := range tree {
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

func (m *MockOperations) ReadFile(_, ref, path string) ([]byte, error) {
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	content, ok := m.Files[ref][path]
	if !ok {
		return nil, fmt.Errorf("reading %s at %q: no such file", path, ref)
	}
	return content, nil
}

func (m *MockOperations) WorktreeRoot(string) string {
	return m.Root
}
