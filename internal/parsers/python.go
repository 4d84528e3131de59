package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/beanviz/bean/internal/model"
)

func init() {
	register(&LanguageSpec{
		Name:       "python",
		Extensions: []string{".py"},
		Language:   sitter.NewLanguage(python.Language()),

		FunctionKinds: set("function_definition"),
		ClassKinds:    set("class_definition"),
		CallKinds:     set("call"),

		DecisionKinds: set("if_statement", "elif_clause", "while_statement", "for_statement", "conditional_expression"),
		HandlerKinds:  set("except_clause", "except_group_clause"),
		ArmKinds:      set("case_clause"),
		BoolOpKinds:   set("boolean_operator"),
		GenKinds:      set("for_in_clause"),
		AssertKinds:   set("assert_statement"),

		CommentKinds:    set("comment"),
		IdentifierKinds: set("identifier"),
		LiteralKinds:    set("string", "string_content", "integer", "float", "true", "false", "none"),

		Receivers: set("self", "cls"),

		ReturnField: "return_type",

		Imports:    pythonImports,
		Params:     pythonParams,
		Decorators: pythonDecorators,
		Bases:      pythonBases,
		Fields:     pythonFields,
		IsAsync:    pythonIsAsync,
		ModuleID:   pythonModuleID,
		MainGuard:  pythonMainGuard,
	})
}

// pythonModuleID converts "pkg/mod.py" to "pkg.mod". Package __init__ files
// collapse to the package itself.
func pythonModuleID(relPath string) string {
	p := strings.TrimSuffix(relPath, ".py")
	parts := strings.Split(p, "/")
	if parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 || (len(parts) == 1 && parts[0] == "") {
		return "__root__"
	}
	return strings.Join(parts, ".")
}

// pythonImports extracts import and from-import statements in declaration
// order. Relative imports keep their leading dots; the assembler strips them
// during resolution.
func pythonImports(root *sitter.Node, src []byte) []model.Import {
	var imports []model.Import
	Walk(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			for _, child := range NamedChildren(n) {
				switch child.Kind() {
				case "dotted_name":
					target := NodeText(child, src)
					imports = append(imports, model.Import{
						Target: target,
						Names:  []string{target},
						Line:   StartLine(n),
						Status: model.ImportPending,
					})
				case "aliased_import":
					target := NodeText(child.ChildByFieldName("name"), src)
					imports = append(imports, model.Import{
						Target: target,
						Names:  []string{target},
						Alias:  NodeText(child.ChildByFieldName("alias"), src),
						Line:   StartLine(n),
						Status: model.ImportPending,
					})
				}
			}
			return false
		case "import_from_statement":
			moduleNode := n.ChildByFieldName("module_name")
			imp := model.Import{
				Target: NodeText(moduleNode, src),
				Line:   StartLine(n),
				Status: model.ImportPending,
			}
			for _, child := range NamedChildren(n) {
				if moduleNode != nil && child.StartByte() == moduleNode.StartByte() {
					continue
				}
				switch child.Kind() {
				case "dotted_name":
					imp.Names = append(imp.Names, NodeText(child, src))
				case "aliased_import":
					imp.Names = append(imp.Names, NodeText(child.ChildByFieldName("name"), src))
				case "wildcard_import":
					imp.Names = append(imp.Names, "*")
				}
			}
			imports = append(imports, imp)
			return false
		}
		return true
	})
	return imports
}

// pythonParams extracts the ordered parameter list, excluding the implicit
// self/cls receiver wherever it appears, matching the reference behavior.
func pythonParams(params *sitter.Node, src []byte) []model.Param {
	var out []model.Param
	for _, child := range NamedChildren(params) {
		var p model.Param
		switch child.Kind() {
		case "identifier":
			p.Name = NodeText(child, src)
		case "typed_parameter":
			if pattern := child.NamedChild(0); pattern != nil {
				p.Name = strings.TrimLeft(NodeText(pattern, src), "*")
			}
			p.Annotation = NodeText(child.ChildByFieldName("type"), src)
		case "default_parameter":
			p.Name = NodeText(child.ChildByFieldName("name"), src)
			p.HasDefault = true
		case "typed_default_parameter":
			p.Name = NodeText(child.ChildByFieldName("name"), src)
			p.Annotation = NodeText(child.ChildByFieldName("type"), src)
			p.HasDefault = true
		case "list_splat_pattern", "dictionary_splat_pattern":
			p.Name = NodeText(child, src)
		default:
			continue
		}
		if p.Name == "" || p.Name == "*" || p.Name == "/" {
			continue
		}
		if p.Name == "self" || p.Name == "cls" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// pythonDecorators reads decorators off the enclosing decorated_definition.
func pythonDecorators(def *sitter.Node, src []byte) []string {
	parent := def.Parent()
	if parent == nil || parent.Kind() != "decorated_definition" {
		return nil
	}
	var decorators []string
	for _, child := range NamedChildren(parent) {
		if child.Kind() == "decorator" {
			decorators = append(decorators, strings.TrimPrefix(NodeText(child, src), "@"))
		}
	}
	return decorators
}

func pythonBases(class *sitter.Node, src []byte) []string {
	supers := class.ChildByFieldName("superclasses")
	if supers == nil {
		return nil
	}
	var bases []string
	for _, child := range NamedChildren(supers) {
		if child.Kind() == "keyword_argument" {
			// metaclass=... and friends are not base classes
			continue
		}
		bases = append(bases, NodeText(child, src))
	}
	return bases
}

// pythonFields collects class-level annotated assignments and self.x
// assignments inside methods, first occurrence wins.
func pythonFields(class *sitter.Node, src []byte) []model.Field {
	body := class.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var fields []model.Field
	seen := map[string]bool{}
	add := func(name, annotation string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		fields = append(fields, model.Field{Name: name, Annotation: annotation})
	}

	// Class-body assignments, annotated or not (dataclass style).
	for _, stmt := range NamedChildren(body) {
		if stmt.Kind() != "expression_statement" {
			continue
		}
		for _, expr := range NamedChildren(stmt) {
			if expr.Kind() != "assignment" {
				continue
			}
			left := expr.ChildByFieldName("left")
			if left != nil && left.Kind() == "identifier" {
				add(NodeText(left, src), NodeText(expr.ChildByFieldName("type"), src))
			}
		}
	}

	// self.x = ... anywhere inside the class body.
	Walk(body, func(n *sitter.Node) bool {
		if n.Kind() != "assignment" {
			return true
		}
		left := n.ChildByFieldName("left")
		if left == nil || left.Kind() != "attribute" {
			return true
		}
		obj := left.ChildByFieldName("object")
		attr := left.ChildByFieldName("attribute")
		if obj != nil && attr != nil && NodeText(obj, src) == "self" {
			add(NodeText(attr, src), "")
		}
		return true
	})

	return fields
}

func pythonIsAsync(def *sitter.Node, _ []byte) bool {
	return FindChildByKind(def, "async") != nil
}

// pythonMainGuard recognizes `if __name__ == "__main__":` blocks.
func pythonMainGuard(n *sitter.Node, src []byte) bool {
	if n.Kind() != "if_statement" {
		return false
	}
	cond := NodeText(n.ChildByFieldName("condition"), src)
	return strings.Contains(cond, "__name__") && strings.Contains(cond, "__main__")
}
