package parsers

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/beanviz/bean/internal/model"
)

func init() {
	register(&LanguageSpec{
		Name:       "java",
		Extensions: []string{".java"},
		Language:   sitter.NewLanguage(java.Language()),

		FunctionKinds: set("method_declaration", "constructor_declaration"),
		ClassKinds:    set("class_declaration", "interface_declaration", "enum_declaration", "record_declaration"),
		CallKinds:     set("method_invocation", "object_creation_expression"),

		DecisionKinds: set("if_statement", "while_statement", "for_statement", "enhanced_for_statement", "do_statement", "ternary_expression"),
		HandlerKinds:  set("catch_clause"),
		ArmKinds:      set("switch_block_statement_group", "switch_rule"),
		BoolOpKinds:   set("&&", "||"),
		AssertKinds:   set("assert_statement"),

		CommentKinds:    set("line_comment", "block_comment"),
		IdentifierKinds: set("identifier", "type_identifier"),
		LiteralKinds: set("string_literal", "decimal_integer_literal", "hex_integer_literal",
			"decimal_floating_point_literal", "character_literal", "true", "false", "null_literal"),

		ParamsField: "parameters",
		ReturnField: "type",

		Imports: javaImports,
		Bases:   javaBases,
		Fields:  javaFields,
		CallTarget: func(call *sitter.Node, src []byte) string {
			if call.Kind() == "object_creation_expression" {
				return NodeText(call.ChildByFieldName("type"), src)
			}
			name := NodeText(call.ChildByFieldName("name"), src)
			if obj := call.ChildByFieldName("object"); obj != nil {
				return NodeText(obj, src) + "." + name
			}
			return name
		},
	})
}

func javaImports(root *sitter.Node, src []byte) []model.Import {
	var imports []model.Import
	Walk(root, func(n *sitter.Node) bool {
		if n.Kind() != "import_declaration" {
			return n.Kind() == "program"
		}
		var target string
		for _, child := range NamedChildren(n) {
			if child.Kind() == "scoped_identifier" || child.Kind() == "identifier" {
				target = NodeText(child, src)
			}
		}
		if target != "" {
			imports = append(imports, model.Import{
				Target: target,
				Names:  []string{lastDotSegment(target)},
				Line:   StartLine(n),
				Status: model.ImportPending,
			})
		}
		return false
	})
	return imports
}

func lastDotSegment(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[i+1:]
		}
	}
	return s
}

func javaBases(class *sitter.Node, src []byte) []string {
	var bases []string
	for _, kind := range []string{"superclass", "super_interfaces", "extends_interfaces"} {
		clause := FindChildByKind(class, kind)
		if clause == nil {
			continue
		}
		Walk(clause, func(n *sitter.Node) bool {
			if n.Kind() == "type_identifier" || n.Kind() == "generic_type" || n.Kind() == "scoped_type_identifier" {
				bases = append(bases, NodeText(n, src))
				return false
			}
			return true
		})
	}
	return bases
}

func javaFields(class *sitter.Node, src []byte) []model.Field {
	body := class.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var fields []model.Field
	for _, member := range NamedChildren(body) {
		if member.Kind() != "field_declaration" {
			continue
		}
		annotation := NodeText(member.ChildByFieldName("type"), src)
		for _, decl := range NamedChildren(member) {
			if decl.Kind() != "variable_declarator" {
				continue
			}
			fields = append(fields, model.Field{
				Name:       NodeText(decl.ChildByFieldName("name"), src),
				Annotation: annotation,
			})
		}
	}
	return fields
}
