// Package discover enumerates the analyzable source files under a root
// directory, applying include/exclude globs and .gitignore rules.
package discover

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/beanviz/bean/internal/analyzer"
	"github.com/beanviz/bean/internal/parsers"
)

// DefaultExcludes are directory trees that never contain first-party source.
var DefaultExcludes = []string{
	".git/**",
	".bean/**",
	"node_modules/**",
	"vendor/**",
	"dist/**",
	"build/**",
	"target/**",
	"__pycache__/**",
	".venv/**",
	"venv/**",
}

// DefaultMaxFileSize caps the size of files read during discovery.
// Generated bundles and vendored blobs above it are skipped.
const DefaultMaxFileSize = 2 << 20

// compiledPattern holds both the pattern string and compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery matches and reads source files under one root.
type Discovery struct {
	root        string
	include     []compiledPattern
	exclude     []compiledPattern
	ignorer     *ignore.GitIgnore
	maxFileSize int64
}

// Option configures a Discovery.
type Option func(*Discovery)

// WithMaxFileSize overrides the file-size cap. Values below 1 are ignored.
func WithMaxFileSize(n int64) Option {
	return func(d *Discovery) {
		if n >= 1 {
			d.maxFileSize = n
		}
	}
}

// New creates a Discovery rooted at root. Empty include defaults to every
// supported source extension; exclude patterns are applied on top of
// DefaultExcludes and the root .gitignore, if one exists.
func New(root string, include, exclude []string, opts ...Option) (*Discovery, error) {
	d := &Discovery{
		root:        root,
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(d)
	}

	if len(include) == 0 {
		for _, ext := range parsers.SupportedExtensions() {
			include = append(include, "**/*"+ext)
		}
	}
	for _, pattern := range include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		d.include = append(d.include, compiledPattern{pattern: pattern, glob: g})
	}

	for _, pattern := range append(append([]string{}, DefaultExcludes...), exclude...) {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		d.exclude = append(d.exclude, compiledPattern{pattern: pattern, glob: g})
	}

	// A missing .gitignore is the common case, not an error.
	if ignorer, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		d.ignorer = ignorer
	}

	return d, nil
}

// Match reports whether a slash-separated relative path is an analyzable
// source file under the configured patterns. It is also the include filter
// handed to the git snapshot provider, so worktree and ref snapshots see
// the same file set.
func (d *Discovery) Match(relPath string) bool {
	if d.shouldIgnore(relPath) {
		return false
	}
	return matchesAnyPattern(relPath, d.include)
}

// Sources walks the root and reads every matching file.
func (d *Discovery) Sources() ([]analyzer.Source, error) {
	var sources []analyzer.Source

	err := filepath.Walk(d.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && d.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Size() > d.maxFileSize || !d.Match(relPath) {
			return nil
		}

		text, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		sources = append(sources, analyzer.Source{Path: relPath, Text: text})
		return nil
	})

	return sources, err
}

// shouldIgnore checks exclude globs and .gitignore rules. Directory paths
// are also tried with a /** suffix so "node_modules" matches the pattern
// "node_modules/**".
func (d *Discovery) shouldIgnore(relPath string) bool {
	if matchesAnyPattern(relPath, d.exclude) {
		return true
	}
	if matchesAnyPattern(relPath+"/**", d.exclude) {
		return true
	}
	return d.ignorer != nil && d.ignorer.MatchesPath(relPath)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
// A root-level path (no slash) also matches patterns with their leading
// **/ stripped, so "**/*.py" covers "setup.py".
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if simplified, ok := strings.CutPrefix(cp.pattern, "**/"); ok {
				if g, err := glob.Compile(simplified, '/'); err == nil && g.Match(path) {
					return true
				}
			}
		}
	}

	return false
}
