package parsers

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/beanviz/bean/internal/model"
)

func init() {
	register(&LanguageSpec{
		Name:       "rust",
		Extensions: []string{".rs"},
		Language:   sitter.NewLanguage(rust.Language()),

		FunctionKinds: set("function_item"),
		ClassKinds:    set("struct_item", "enum_item", "trait_item", "impl_item"),
		CallKinds:     set("call_expression"),

		DecisionKinds: set("if_expression", "while_expression", "for_expression", "loop_expression"),
		ArmKinds:      set("match_arm"),
		BoolOpKinds:   set("&&", "||"),

		CommentKinds:    set("line_comment", "block_comment"),
		IdentifierKinds: set("identifier", "field_identifier", "type_identifier"),
		LiteralKinds:    set("string_literal", "string_content", "integer_literal", "float_literal", "char_literal", "boolean_literal"),

		ParamsField: "parameters",
		ReturnField: "return_type",

		Imports: rustImports,
		Params:  rustParams,
		Fields:  rustFields,
		NameOf: func(n *sitter.Node, src []byte) string {
			// impl blocks are named after the implemented type
			if n.Kind() == "impl_item" {
				return NodeText(n.ChildByFieldName("type"), src)
			}
			return NodeText(n.ChildByFieldName("name"), src)
		},
		IsAsync: func(def *sitter.Node, _ []byte) bool {
			return FindChildByKind(def, "async") != nil
		},
	})
}

func rustImports(root *sitter.Node, src []byte) []model.Import {
	var imports []model.Import
	Walk(root, func(n *sitter.Node) bool {
		if n.Kind() != "use_declaration" {
			return n.Kind() == "source_file"
		}
		target := NodeText(n.ChildByFieldName("argument"), src)
		imports = append(imports, model.Import{
			Target: target,
			Names:  []string{target},
			Line:   StartLine(n),
			Status: model.ImportPending,
		})
		return false
	})
	return imports
}

// rustParams skips the self receiver and reads pattern/type fields.
func rustParams(params *sitter.Node, src []byte) []model.Param {
	var out []model.Param
	for _, child := range NamedChildren(params) {
		if child.Kind() == "self_parameter" {
			continue
		}
		if child.Kind() != "parameter" {
			continue
		}
		out = append(out, model.Param{
			Name:       NodeText(child.ChildByFieldName("pattern"), src),
			Annotation: NodeText(child.ChildByFieldName("type"), src),
		})
	}
	return out
}

func rustFields(class *sitter.Node, src []byte) []model.Field {
	body := class.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var fields []model.Field
	for _, member := range NamedChildren(body) {
		if member.Kind() != "field_declaration" {
			continue
		}
		fields = append(fields, model.Field{
			Name:       NodeText(member.ChildByFieldName("name"), src),
			Annotation: NodeText(member.ChildByFieldName("type"), src),
		})
	}
	return fields
}
