// Package gitsnap materializes the source set of a git ref without touching
// the working tree, so a diff against a base ref never needs a checkout.
package gitsnap

import (
	"fmt"
	"os/exec"
	"strings"
)

// Operations defines the interface for git operations.
// This allows mocking git commands in tests.
type Operations interface {
	// IsRepository reports whether repoPath is inside a git worktree.
	IsRepository(repoPath string) bool

	// ResolveRef resolves a ref ("HEAD", branch, tag, sha) to a full
	// commit hash.
	ResolveRef(repoPath, ref string) (string, error)

	// ListFiles returns all file paths tracked at the given ref,
	// relative to the repository root.
	ListFiles(repoPath, ref string) ([]string, error)

	// ReadFile returns the content of one tracked file at the given ref.
	ReadFile(repoPath, ref, path string) ([]byte, error)

	// WorktreeRoot returns the repository root path.
	// Falls back to repoPath if not a git repository.
	WorktreeRoot(repoPath string) string
}

// gitOps is the real implementation using exec.Command.
type gitOps struct{}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{}
}

func (g *gitOps) IsRepository(repoPath string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = repoPath
	output, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(output)) == "true"
}

func (g *gitOps) ResolveRef(repoPath, ref string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--verify", ref+"^{commit}")
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("resolving ref %q: %w", ref, err)
	}
	return strings.TrimSpace(string(output)), nil
}

func (g *gitOps) ListFiles(repoPath, ref string) ([]string, error) {
	cmd := exec.Command("git", "ls-tree", "-r", "--name-only", "-z", ref)
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("listing files at %q: %w", ref, err)
	}

	var files []string
	for _, name := range strings.Split(string(output), "\x00") {
		if name == "" {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}

func (g *gitOps) ReadFile(repoPath, ref, path string) ([]byte, error) {
	cmd := exec.Command("git", "show", ref+":"+path)
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("reading %s at %q: %w", path, ref, err)
	}
	return output, nil
}

func (g *gitOps) WorktreeRoot(repoPath string) string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return repoPath
	}
	return strings.TrimSpace(string(output))
}
