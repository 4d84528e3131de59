package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/beanviz/bean/internal/model"
)

func init() {
	register(tsSpec("typescript", []string{".ts", ".js", ".mjs"}, sitter.NewLanguage(typescript.LanguageTypescript())))
	register(tsSpec("tsx", []string{".tsx", ".jsx"}, sitter.NewLanguage(typescript.LanguageTSX())))
}

func tsSpec(name string, extensions []string, lang *sitter.Language) *LanguageSpec {
	return &LanguageSpec{
		Name:       name,
		Extensions: extensions,
		Language:   lang,

		FunctionKinds: set("function_declaration", "generator_function_declaration", "method_definition"),
		ClassKinds:    set("class_declaration"),
		CallKinds:     set("call_expression", "new_expression"),

		DecisionKinds: set("if_statement", "for_statement", "for_in_statement", "while_statement", "do_statement", "ternary_expression"),
		HandlerKinds:  set("catch_clause"),
		ArmKinds:      set("switch_case"),
		BoolOpKinds:   set("&&", "||", "??"),

		CommentKinds:    set("comment"),
		IdentifierKinds: set("identifier", "property_identifier", "shorthand_property_identifier", "type_identifier"),
		LiteralKinds:    set("string", "string_fragment", "template_string", "number", "true", "false", "null", "undefined", "regex"),

		ParamsField: "parameters",
		ReturnField: "return_type",

		Imports: tsImports,
		Params:  tsParams,
		Bases:   tsBases,
		Fields:  tsFields,
		IsAsync: func(def *sitter.Node, _ []byte) bool {
			return FindChildByKind(def, "async") != nil
		},
		CallTarget: func(call *sitter.Node, src []byte) string {
			if fn := call.ChildByFieldName("function"); fn != nil {
				return NodeText(fn, src)
			}
			// new_expression keeps the constructor under "constructor"
			return NodeText(call.ChildByFieldName("constructor"), src)
		},
	}
}

func tsImports(root *sitter.Node, src []byte) []model.Import {
	var imports []model.Import
	Walk(root, func(n *sitter.Node) bool {
		if n.Kind() != "import_statement" {
			return n.Kind() == "program"
		}
		imp := model.Import{
			Target: strings.Trim(NodeText(n.ChildByFieldName("source"), src), `"'`),
			Line:   StartLine(n),
			Status: model.ImportPending,
		}
		if clause := FindChildByKind(n, "import_clause"); clause != nil {
			Walk(clause, func(c *sitter.Node) bool {
				if c.Kind() == "identifier" {
					imp.Names = append(imp.Names, NodeText(c, src))
				}
				return true
			})
		}
		imports = append(imports, imp)
		return false
	})
	return imports
}

func tsParams(params *sitter.Node, src []byte) []model.Param {
	var out []model.Param
	for _, child := range NamedChildren(params) {
		kind := child.Kind()
		if kind != "required_parameter" && kind != "optional_parameter" && kind != "rest_pattern" && kind != "identifier" {
			continue
		}
		p := model.Param{Name: NodeText(child, src)}
		if pattern := child.ChildByFieldName("pattern"); pattern != nil {
			p.Name = NodeText(pattern, src)
		}
		if typ := child.ChildByFieldName("type"); typ != nil {
			p.Annotation = strings.TrimSpace(strings.TrimPrefix(NodeText(typ, src), ":"))
		}
		if child.ChildByFieldName("value") != nil || kind == "optional_parameter" {
			p.HasDefault = true
		}
		out = append(out, p)
	}
	return out
}

func tsBases(class *sitter.Node, src []byte) []string {
	heritage := FindChildByKind(class, "class_heritage")
	if heritage == nil {
		return nil
	}
	var bases []string
	Walk(heritage, func(n *sitter.Node) bool {
		if n.Kind() == "identifier" || n.Kind() == "member_expression" {
			bases = append(bases, NodeText(n, src))
			return false
		}
		return true
	})
	return bases
}

func tsFields(class *sitter.Node, src []byte) []model.Field {
	body := class.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var fields []model.Field
	for _, member := range NamedChildren(body) {
		if member.Kind() != "public_field_definition" {
			continue
		}
		f := model.Field{Name: NodeText(member.ChildByFieldName("name"), src)}
		if typ := member.ChildByFieldName("type"); typ != nil {
			f.Annotation = strings.TrimSpace(strings.TrimPrefix(NodeText(typ, src), ":"))
		}
		fields = append(fields, f)
	}
	return fields
}
