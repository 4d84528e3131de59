package analyzer

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/beanviz/bean/internal/parsers"
)

// cyclomaticComplexity counts decision points in a definition's subtree plus
// one baseline path. Conditionals, loops, exception handlers, pattern-match
// arms, comprehension generators, asserts, and short-circuit boolean
// operators each add a path. The count is purely structural; nested
// definitions contribute to their enclosing definition's score as well as
// their own.
func cyclomaticComplexity(def *sitter.Node, spec *parsers.LanguageSpec) int {
	score := 1
	parsers.Walk(def, func(n *sitter.Node) bool {
		k := n.Kind()
		if spec.CommentKinds[k] {
			return false
		}
		if spec.DecisionKinds[k] || spec.HandlerKinds[k] || spec.ArmKinds[k] ||
			spec.BoolOpKinds[k] || spec.GenKinds[k] || spec.AssertKinds[k] {
			score++
		}
		return true
	})
	return score
}
