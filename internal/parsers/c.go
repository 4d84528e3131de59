package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"

	"github.com/beanviz/bean/internal/model"
)

func init() {
	register(&LanguageSpec{
		Name:       "c",
		Extensions: []string{".c", ".h"},
		Language:   sitter.NewLanguage(c.Language()),

		FunctionKinds:  set("function_definition"),
		ClassKinds:     set("struct_specifier", "union_specifier", "enum_specifier"),
		ClassNeedsBody: true,
		CallKinds:     set("call_expression"),

		DecisionKinds: set("if_statement", "while_statement", "for_statement", "do_statement", "conditional_expression"),
		ArmKinds:      set("case_statement"),
		BoolOpKinds:   set("&&", "||"),

		CommentKinds:    set("comment"),
		IdentifierKinds: set("identifier", "field_identifier", "type_identifier"),
		LiteralKinds:    set("string_literal", "string_content", "number_literal", "char_literal"),

		// The parameter list hangs off the function declarator.
		ParamsField: "declarator",
		ReturnField: "type",

		Imports: cImports,
		Params:  cParams,
		Fields:  cFields,
		NameOf:  cDefName,
	})
}

// cDefName digs through pointer/function declarators to the identifier.
func cDefName(n *sitter.Node, src []byte) string {
	if n.Kind() == "struct_specifier" || n.Kind() == "union_specifier" || n.Kind() == "enum_specifier" {
		return NodeText(n.ChildByFieldName("name"), src)
	}
	decl := n.ChildByFieldName("declarator")
	for decl != nil {
		switch decl.Kind() {
		case "identifier", "field_identifier":
			return NodeText(decl, src)
		}
		decl = decl.ChildByFieldName("declarator")
	}
	return ""
}

func cImports(root *sitter.Node, src []byte) []model.Import {
	var imports []model.Import
	Walk(root, func(n *sitter.Node) bool {
		if n.Kind() != "preproc_include" {
			return n.Kind() == "translation_unit"
		}
		target := strings.Trim(NodeText(n.ChildByFieldName("path"), src), `"<>`)
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

// cParams receives the function declarator and reads its parameter list.
func cParams(declarator *sitter.Node, src []byte) []model.Param {
	for declarator != nil && declarator.Kind() != "function_declarator" {
		declarator = declarator.ChildByFieldName("declarator")
	}
	if declarator == nil {
		return nil
	}
	params := declarator.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []model.Param
	for _, child := range NamedChildren(params) {
		if child.Kind() != "parameter_declaration" {
			continue
		}
		p := model.Param{Annotation: NodeText(child.ChildByFieldName("type"), src)}
		decl := child.ChildByFieldName("declarator")
		for decl != nil && decl.Kind() != "identifier" {
			decl = decl.ChildByFieldName("declarator")
		}
		p.Name = NodeText(decl, src)
		if p.Name == "" && p.Annotation == "void" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func cFields(class *sitter.Node, src []byte) []model.Field {
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
		decl := member.ChildByFieldName("declarator")
		for decl != nil && decl.Kind() != "field_identifier" && decl.Kind() != "identifier" {
			decl = decl.ChildByFieldName("declarator")
		}
		if decl != nil {
			fields = append(fields, model.Field{Name: NodeText(decl, src), Annotation: annotation})
		}
	}
	return fields
}
