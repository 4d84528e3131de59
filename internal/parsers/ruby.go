package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"

	"github.com/beanviz/bean/internal/model"
)

func init() {
	register(&LanguageSpec{
		Name:       "ruby",
		Extensions: []string{".rb"},
		Language:   sitter.NewLanguage(ruby.Language()),

		FunctionKinds: set("method", "singleton_method"),
		ClassKinds:    set("class", "module"),
		CallKinds:     set("call"),

		DecisionKinds: set("if", "elsif", "unless", "while", "until", "for", "conditional", "if_modifier", "unless_modifier", "while_modifier", "until_modifier"),
		HandlerKinds:  set("rescue"),
		ArmKinds:      set("when", "in_clause"),
		BoolOpKinds:   set("&&", "||", "and", "or"),

		CommentKinds:    set("comment"),
		IdentifierKinds: set("identifier", "constant", "instance_variable", "class_variable", "global_variable"),
		LiteralKinds:    set("string", "string_content", "integer", "float", "simple_symbol", "symbol", "true", "false", "nil"),

		ParamsField: "parameters",

		Imports: rubyImports,
		Bases:   rubyBases,
		CallTarget: func(call *sitter.Node, src []byte) string {
			method := call.ChildByFieldName("method")
			if method == nil {
				return ""
			}
			if recv := call.ChildByFieldName("receiver"); recv != nil {
				return NodeText(recv, src) + "." + NodeText(method, src)
			}
			return NodeText(method, src)
		},
	})
}

// rubyImports records require/require_relative calls as imports.
func rubyImports(root *sitter.Node, src []byte) []model.Import {
	var imports []model.Import
	Walk(root, func(n *sitter.Node) bool {
		if n.Kind() != "call" {
			return true
		}
		method := NodeText(n.ChildByFieldName("method"), src)
		if method != "require" && method != "require_relative" {
			return true
		}
		args := n.ChildByFieldName("arguments")
		if args == nil {
			return true
		}
		for _, arg := range NamedChildren(args) {
			if arg.Kind() != "string" {
				continue
			}
			target := strings.Trim(NodeText(arg, src), `"'`)
			imports = append(imports, model.Import{
				Target: target,
				Names:  []string{target},
				Line:   StartLine(n),
				Status: model.ImportPending,
			})
		}
		return false
	})
	return imports
}

func rubyBases(class *sitter.Node, src []byte) []string {
	super := class.ChildByFieldName("superclass")
	if super == nil {
		return nil
	}
	if base := super.NamedChild(0); base != nil {
		return []string{NodeText(base, src)}
	}
	return nil
}
