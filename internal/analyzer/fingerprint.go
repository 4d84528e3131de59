package analyzer

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/beanviz/bean/internal/parsers"
)

// idToken is the placeholder emitted for every identifier, which makes the
// fingerprint insensitive to renames of locals, parameters, and callees.
const idToken = "$id"

// bodyFingerprint produces the normalized structural signature of a
// definition body: the depth-first stream of node kinds with comments
// dropped, identifiers collapsed to a placeholder, and literals keyed by
// kind plus value. Whitespace and formatting never appear in the tree, so
// the fingerprint is stable under reformatting and line shifts by
// construction.
func bodyFingerprint(body *sitter.Node, spec *parsers.LanguageSpec, src []byte) string {
	if body == nil {
		return ""
	}
	var tokens []string
	parsers.Walk(body, func(n *sitter.Node) bool {
		k := n.Kind()
		switch {
		case spec.CommentKinds[k]:
			return false
		case spec.IdentifierKinds[k]:
			tokens = append(tokens, idToken)
			return false
		case spec.LiteralKinds[k]:
			tokens = append(tokens, k+"="+squashSpace(parsers.NodeText(n, src)))
			return false
		}
		tokens = append(tokens, k)
		return true
	})
	return strings.Join(tokens, " ")
}

// squashSpace keeps literal tokens single-token: fingerprints are
// space-delimited, so embedded whitespace is folded away.
func squashSpace(s string) string {
	return strings.Join(strings.Fields(s), "_")
}
