package parsers

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/beanviz/bean/internal/model"
)

// LanguageSpec names the node kinds and conventions the extractor needs for
// one language. Hooks left nil fall back to defaults that cover the common
// tree-sitter grammar shape (name/parameters/body field names); languages
// with unusual grammars override them.
type LanguageSpec struct {
	Name       string
	Extensions []string
	Language   *sitter.Language

	// Structural node kinds.
	FunctionKinds map[string]bool // function/method definitions
	ClassKinds    map[string]bool // class-like declarations
	CallKinds     map[string]bool // call expressions

	// Decision-point kinds for cyclomatic complexity. Each occurrence
	// inside a function body adds one path. BoolOpKinds count short-circuit
	// operators (one per operator node, matching len(operands)-1 for a
	// chain). ArmKinds are pattern-match/switch arms.
	DecisionKinds map[string]bool
	HandlerKinds  map[string]bool
	ArmKinds      map[string]bool
	BoolOpKinds   map[string]bool
	GenKinds      map[string]bool // comprehension generators
	AssertKinds   map[string]bool

	// Token classification for body fingerprints.
	CommentKinds    map[string]bool
	IdentifierKinds map[string]bool
	LiteralKinds    map[string]bool

	// Implicit receiver parameter names excluded from parameter counts.
	Receivers map[string]bool

	// ClassNeedsBody skips class-kind nodes without a body field. C-style
	// grammars reuse struct_specifier for both declarations and type
	// references; only the declaration carries a body.
	ClassNeedsBody bool

	// Grammar field names, defaulted in the accessors below.
	NameField   string // default "name"
	ParamsField string // default "parameters"
	ReturnField string // default "return_type"
	BodyField   string // default "body"

	// Hooks. Only Imports is mandatory; the rest have generic defaults.
	Imports    func(root *sitter.Node, src []byte) []model.Import
	NameOf     func(n *sitter.Node, src []byte) string
	Params     func(params *sitter.Node, src []byte) []model.Param
	Decorators func(def *sitter.Node, src []byte) []string
	Bases      func(class *sitter.Node, src []byte) []string
	Fields     func(class *sitter.Node, src []byte) []model.Field
	IsAsync    func(def *sitter.Node, src []byte) bool
	CallTarget func(call *sitter.Node, src []byte) string
	ModuleID   func(relPath string) string
	MainGuard  func(n *sitter.Node, src []byte) bool // module-level main guard test
}

// Name returns the symbol name of a definition node.
func (s *LanguageSpec) DefName(n *sitter.Node, src []byte) string {
	if s.NameOf != nil {
		return s.NameOf(n, src)
	}
	field := s.NameField
	if field == "" {
		field = "name"
	}
	return NodeText(n.ChildByFieldName(field), src)
}

// ParamsNode returns the parameter-list node of a definition.
func (s *LanguageSpec) ParamsNode(n *sitter.Node) *sitter.Node {
	field := s.ParamsField
	if field == "" {
		field = "parameters"
	}
	return n.ChildByFieldName(field)
}

// ReturnTypeOf returns the declared return annotation, verbatim.
func (s *LanguageSpec) ReturnTypeOf(n *sitter.Node, src []byte) string {
	field := s.ReturnField
	if field == "" {
		field = "return_type"
	}
	return NodeText(n.ChildByFieldName(field), src)
}

// BodyNode returns the body node of a definition, or the definition itself
// when the grammar has no body field.
func (s *LanguageSpec) BodyNode(n *sitter.Node) *sitter.Node {
	field := s.BodyField
	if field == "" {
		field = "body"
	}
	if body := n.ChildByFieldName(field); body != nil {
		return body
	}
	return n
}

// ExtractParams returns the declared parameters, receiver excluded.
func (s *LanguageSpec) ExtractParams(def *sitter.Node, src []byte) []model.Param {
	params := s.ParamsNode(def)
	if params == nil {
		return nil
	}
	if s.Params != nil {
		return s.Params(params, src)
	}
	var out []model.Param
	for _, child := range NamedChildren(params) {
		if s.CommentKinds[child.Kind()] {
			continue
		}
		name := NodeText(child, src)
		if nameNode := child.ChildByFieldName("name"); nameNode != nil {
			name = NodeText(nameNode, src)
		} else if s.IdentifierKinds[child.Kind()] {
			name = NodeText(child, src)
		}
		if s.Receivers[name] {
			continue
		}
		out = append(out, model.Param{
			Name:       name,
			Annotation: NodeText(child.ChildByFieldName("type"), src),
		})
	}
	return out
}

// ResolveCallTarget returns the textual call target (e.g. "obj.method").
func (s *LanguageSpec) ResolveCallTarget(call *sitter.Node, src []byte) string {
	if s.CallTarget != nil {
		return s.CallTarget(call, src)
	}
	if fn := call.ChildByFieldName("function"); fn != nil {
		return NodeText(fn, src)
	}
	return ""
}

// PathModuleID converts a normalized relative path to a module identifier.
func (s *LanguageSpec) PathModuleID(relPath string) string {
	if s.ModuleID != nil {
		return s.ModuleID(relPath)
	}
	return defaultModuleID(relPath)
}

func defaultModuleID(relPath string) string {
	p := filepath.ToSlash(relPath)
	p = strings.TrimSuffix(p, filepath.Ext(p))
	return strings.ReplaceAll(p, "/", ".")
}

// languages is the registry of supported languages, populated by the
// per-language init functions.
var languages = map[string]*LanguageSpec{}

// byExtension maps file extensions (with dot) to specs.
var byExtension = map[string]*LanguageSpec{}

func register(spec *LanguageSpec) {
	languages[spec.Name] = spec
	for _, ext := range spec.Extensions {
		byExtension[ext] = spec
	}
}

// SpecForPath returns the language spec for a file path, or nil when the
// extension is not supported.
func SpecForPath(path string) *LanguageSpec {
	return byExtension[strings.ToLower(filepath.Ext(path))]
}

// SpecForLanguage returns the spec registered under the given name, or nil.
func SpecForLanguage(name string) *LanguageSpec {
	return languages[name]
}

// SupportedExtensions returns every registered file extension.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(byExtension))
	for ext := range byExtension {
		exts = append(exts, ext)
	}
	return exts
}

func set(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}
