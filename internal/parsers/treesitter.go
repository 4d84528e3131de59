// Package parsers turns one file's text into a syntax tree. Grammars come
// from the official tree-sitter bindings; everything else the analyzer needs
// to know about a language (which node kinds are functions, classes, decision
// points, and so on) lives in a LanguageSpec table so the extractor stays
// language-agnostic.
package parsers

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/beanviz/bean/internal/model"
)

// ParsedFile is one file's syntax tree plus everything needed to walk it.
type ParsedFile struct {
	Path   string
	Spec   *LanguageSpec
	Tree   *sitter.Tree
	Source []byte
	Lines  int
}

// Close releases the underlying tree. Safe to call more than once.
func (p *ParsedFile) Close() {
	if p.Tree != nil {
		p.Tree.Close()
		p.Tree = nil
	}
}

// Root returns the tree's root node.
func (p *ParsedFile) Root() *sitter.Node {
	return p.Tree.RootNode()
}

// Parse parses source text for the given path. The language is chosen by
// file extension. A syntactically broken file yields a *model.ParseError
// carrying the first error position; callers record it and continue, so one
// malformed file never aborts a run.
func Parse(path string, source []byte) (*ParsedFile, error) {
	spec := SpecForPath(path)
	if spec == nil {
		return nil, &model.ParseError{File: path, Message: "unsupported language"}
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(spec.Language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &model.ParseError{File: path, Message: "parser produced no tree"}
	}

	root := tree.RootNode()
	if root.HasError() {
		line, msg := firstError(root)
		tree.Close()
		return nil, &model.ParseError{File: path, Line: line, Message: msg}
	}

	return &ParsedFile{
		Path:   path,
		Spec:   spec,
		Tree:   tree,
		Source: source,
		Lines:  countLines(source),
	}, nil
}

// countLines counts lines the way splitlines does: a trailing newline does
// not open an extra empty line.
func countLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := strings.Count(string(source), "\n")
	if source[len(source)-1] != '\n' {
		n++
	}
	return n
}

// firstError locates the first ERROR or MISSING node in the tree.
func firstError(root *sitter.Node) (line int, msg string) {
	line, msg = 1, "syntax error"
	found := false
	Walk(root, func(n *sitter.Node) bool {
		if found {
			return false
		}
		if n.IsError() || n.IsMissing() {
			line = int(n.StartPosition().Row) + 1
			if n.IsMissing() {
				msg = "missing " + n.Kind()
			} else {
				msg = "syntax error near line " + strconv.Itoa(line)
			}
			found = true
			return false
		}
		return true
	})
	return line, msg
}

// Walk visits node and its children depth-first, in source order. Returning
// false from the visitor skips the node's children. Anonymous nodes are
// included; several specs key decision points off operator tokens like "&&".
func Walk(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		Walk(node.Child(uint(i)), visitor)
	}
}

// NodeText extracts the text content of a node.
func NodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// StartLine and EndLine return 1-indexed line positions.
func StartLine(node *sitter.Node) int { return int(node.StartPosition().Row) + 1 }
func EndLine(node *sitter.Node) int   { return int(node.EndPosition().Row) + 1 }

// FindChildByKind finds the first direct child with the given kind.
func FindChildByKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

// NamedChildren returns all named direct children.
func NamedChildren(node *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	if node == nil {
		return out
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		out = append(out, node.NamedChild(uint(i)))
	}
	return out
}
