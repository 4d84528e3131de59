package parsers

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"

	"github.com/beanviz/bean/internal/model"
)

func init() {
	register(&LanguageSpec{
		Name:       "php",
		Extensions: []string{".php"},
		Language:   sitter.NewLanguage(php.LanguagePHP()),

		FunctionKinds: set("function_definition", "method_declaration"),
		ClassKinds:    set("class_declaration", "interface_declaration", "trait_declaration", "enum_declaration"),
		CallKinds:     set("function_call_expression", "member_call_expression", "scoped_call_expression", "object_creation_expression"),

		DecisionKinds: set("if_statement", "else_if_clause", "while_statement", "for_statement", "foreach_statement", "do_statement", "conditional_expression"),
		HandlerKinds:  set("catch_clause"),
		ArmKinds:      set("case_statement", "match_conditional_expression"),
		BoolOpKinds:   set("&&", "||", "and", "or", "??"),

		CommentKinds:    set("comment"),
		IdentifierKinds: set("name", "variable_name"),
		LiteralKinds:    set("string", "encapsed_string", "string_content", "integer", "float", "boolean", "null"),

		ParamsField: "parameters",
		ReturnField: "return_type",

		Imports: phpImports,
		Bases:   phpBases,
		Fields:  phpFields,
		CallTarget: func(call *sitter.Node, src []byte) string {
			switch call.Kind() {
			case "function_call_expression":
				return NodeText(call.ChildByFieldName("function"), src)
			case "member_call_expression", "scoped_call_expression":
				return NodeText(call.ChildByFieldName("name"), src)
			case "object_creation_expression":
				if n := call.NamedChild(0); n != nil {
					return NodeText(n, src)
				}
			}
			return ""
		},
	})
}

func phpImports(root *sitter.Node, src []byte) []model.Import {
	var imports []model.Import
	Walk(root, func(n *sitter.Node) bool {
		if n.Kind() != "namespace_use_declaration" {
			return n.Kind() == "program"
		}
		for _, clause := range NamedChildren(n) {
			if clause.Kind() != "namespace_use_clause" {
				continue
			}
			target := NodeText(clause.NamedChild(0), src)
			imports = append(imports, model.Import{
				Target: target,
				Names:  []string{lastSegment(target, '\\')},
				Line:   StartLine(n),
				Status: model.ImportPending,
			})
		}
		return false
	})
	return imports
}

func lastSegment(s string, sep byte) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == sep {
			return s[i+1:]
		}
	}
	return s
}

func phpBases(class *sitter.Node, src []byte) []string {
	var bases []string
	if clause := FindChildByKind(class, "base_clause"); clause != nil {
		for _, base := range NamedChildren(clause) {
			bases = append(bases, NodeText(base, src))
		}
	}
	if clause := FindChildByKind(class, "class_interface_clause"); clause != nil {
		for _, base := range NamedChildren(clause) {
			bases = append(bases, NodeText(base, src))
		}
	}
	return bases
}

func phpFields(class *sitter.Node, src []byte) []model.Field {
	body := class.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var fields []model.Field
	for _, member := range NamedChildren(body) {
		if member.Kind() != "property_declaration" {
			continue
		}
		annotation := NodeText(member.ChildByFieldName("type"), src)
		Walk(member, func(n *sitter.Node) bool {
			if n.Kind() == "variable_name" {
				fields = append(fields, model.Field{Name: NodeText(n, src), Annotation: annotation})
				return false
			}
			return true
		})
	}
	return fields
}
