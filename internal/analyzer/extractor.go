package analyzer

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/beanviz/bean/internal/model"
	"github.com/beanviz/bean/internal/parsers"
)

// Source is one file handed to the analyzer: an identifier and its text.
// The core places no constraint on where the text came from (working tree,
// git object, in-memory fixture).
type Source struct {
	Path string
	Text []byte
}

// rawCall is an unresolved call site recorded during extraction. The
// assembler resolves targets once all modules are known.
type rawCall struct {
	Caller string // function ID, or the module ID for module-level calls
	Target string // call target expression as written
	Line   int
}

// fileResult is the extraction output for one file. Workers produce these
// independently; the assembler merges them.
type fileResult struct {
	Module model.Module
	Calls  []rawCall
}

// clone deep-copies the result. The assembler writes import resolutions into
// the module it is handed, so a result that lives in the cache must never
// share backing arrays with an assembled snapshot.
func (r fileResult) clone() fileResult {
	out := fileResult{Module: r.Module}
	out.Module.Imports = cloneImports(r.Module.Imports)
	out.Module.Functions = cloneFunctions(r.Module.Functions)
	out.Module.Entrypoints = cloneEntrypoints(r.Module.Entrypoints)
	if r.Module.Classes != nil {
		out.Module.Classes = make([]model.Class, len(r.Module.Classes))
		for i, c := range r.Module.Classes {
			c.Methods = cloneFunctions(c.Methods)
			c.Fields = append([]model.Field(nil), c.Fields...)
			c.Bases = append([]string(nil), c.Bases...)
			c.Decorators = append([]string(nil), c.Decorators...)
			out.Module.Classes[i] = c
		}
	}
	out.Calls = append([]rawCall(nil), r.Calls...)
	return out
}

func cloneImports(imports []model.Import) []model.Import {
	if imports == nil {
		return nil
	}
	out := make([]model.Import, len(imports))
	for i, imp := range imports {
		imp.Names = append([]string(nil), imp.Names...)
		out[i] = imp
	}
	return out
}

func cloneFunctions(fns []model.Function) []model.Function {
	if fns == nil {
		return nil
	}
	out := make([]model.Function, len(fns))
	for i, f := range fns {
		f.Params = append([]model.Param(nil), f.Params...)
		f.Decorators = append([]string(nil), f.Decorators...)
		out[i] = f
	}
	return out
}

func cloneEntrypoints(eps []model.Entrypoint) []model.Entrypoint {
	if eps == nil {
		return nil
	}
	out := make([]model.Entrypoint, len(eps))
	for i, ep := range eps {
		ep.Decorators = append([]string(nil), ep.Decorators...)
		out[i] = ep
	}
	return out
}

// extractFile walks one parsed file and emits its structural record.
// Unrecognized node kinds are skipped without affecting siblings, so
// extraction degrades gracefully on constructs the spec tables don't cover.
func extractFile(pf *parsers.ParsedFile, relPath string) fileResult {
	spec := pf.Spec
	moduleID := spec.PathModuleID(filepath.ToSlash(relPath))

	ex := &extractor{
		spec:     spec,
		src:      pf.Source,
		moduleID: moduleID,
	}
	ex.module = model.Module{
		ID:       moduleID,
		Path:     filepath.ToSlash(relPath),
		Language: spec.Name,
		Layer:    layerFor(moduleID),
		Lines:    pf.Lines,
	}
	if spec.Imports != nil {
		ex.module.Imports = spec.Imports(pf.Root(), pf.Source)
	}

	ex.walk(pf.Root(), -1)

	return fileResult{Module: ex.module, Calls: ex.calls}
}

type extractor struct {
	spec          *parsers.LanguageSpec
	src           []byte
	moduleID      string
	scope         []string // enclosing definition names, innermost last
	module        model.Module
	calls         []rawCall
	mainGuardSeen bool
}

// walk visits a subtree. classIdx is the index into module.Classes of the
// class whose body is being visited, or -1 outside any class body; it
// decides whether a function becomes a method or a module-scope function.
func (e *extractor) walk(n *sitter.Node, classIdx int) {
	kind := n.Kind()

	switch {
	case e.spec.FunctionKinds[kind]:
		fn, ok := e.buildFunction(n, classIdx)
		if ok {
			if classIdx >= 0 {
				e.module.Classes[classIdx].Methods = append(e.module.Classes[classIdx].Methods, fn)
			} else {
				e.module.Functions = append(e.module.Functions, fn)
			}
			if epKind := classifyEntrypoint(fn.Decorators); epKind != "" {
				e.module.Entrypoints = append(e.module.Entrypoints, model.Entrypoint{
					Kind:       epKind,
					Module:     e.moduleID,
					Target:     fn.ID,
					Line:       fn.StartLine,
					Decorators: fn.Decorators,
				})
			}
			e.scope = append(e.scope, fn.Name)
			e.walkChildren(n, -1)
			e.scope = e.scope[:len(e.scope)-1]
			return
		}

	case e.spec.ClassKinds[kind]:
		cls, ok := e.buildClass(n)
		if ok {
			idx := len(e.module.Classes)
			e.module.Classes = append(e.module.Classes, cls)
			e.scope = append(e.scope, cls.Name)
			e.walkChildren(n, idx)
			e.scope = e.scope[:len(e.scope)-1]
			return
		}

	case e.spec.CallKinds[kind]:
		if target := e.spec.ResolveCallTarget(n, e.src); target != "" {
			e.calls = append(e.calls, rawCall{
				Caller: e.callerID(),
				Target: target,
				Line:   parsers.StartLine(n),
			})
		}

	default:
		// At most one main guard per module; the first block wins.
		if !e.mainGuardSeen && e.spec.MainGuard != nil && e.spec.MainGuard(n, e.src) {
			e.mainGuardSeen = true
			e.module.Entrypoints = append(e.module.Entrypoints, model.Entrypoint{
				Kind:   model.EntrypointMainGuard,
				Module: e.moduleID,
				Target: e.moduleID + ":__main__",
				Line:   parsers.StartLine(n),
			})
		}
	}

	e.walkChildren(n, classIdx)
}

func (e *extractor) walkChildren(n *sitter.Node, classIdx int) {
	for i := 0; i < int(n.ChildCount()); i++ {
		e.walk(n.Child(uint(i)), classIdx)
	}
}

// callerID identifies the enclosing definition, or the module itself for
// module-level code.
func (e *extractor) callerID() string {
	if len(e.scope) == 0 {
		return e.moduleID
	}
	return model.FuncID(e.moduleID, strings.Join(e.scope, "."))
}

func (e *extractor) qualify(name string) string {
	if len(e.scope) == 0 {
		return name
	}
	return strings.Join(e.scope, ".") + "." + name
}

func (e *extractor) buildFunction(n *sitter.Node, classIdx int) (model.Function, bool) {
	name := e.spec.DefName(n, e.src)
	if name == "" {
		return model.Function{}, false
	}
	qual := e.qualify(name)
	fn := model.Function{
		ID:          model.FuncID(e.moduleID, qual),
		Name:        name,
		QualName:    qual,
		Module:      e.moduleID,
		StartLine:   parsers.StartLine(n),
		EndLine:     parsers.EndLine(n),
		Complexity:  cyclomaticComplexity(n, e.spec),
		Params:      e.spec.ExtractParams(n, e.src),
		ReturnType:  cleanAnnotation(e.spec.ReturnTypeOf(n, e.src)),
		Fingerprint: bodyFingerprint(e.spec.BodyNode(n), e.spec, e.src),
	}
	if classIdx >= 0 {
		fn.Class = e.module.Classes[classIdx].Name
	}
	if e.spec.IsAsync != nil {
		fn.IsAsync = e.spec.IsAsync(n, e.src)
	}
	if e.spec.Decorators != nil {
		fn.Decorators = e.spec.Decorators(n, e.src)
	}
	return fn, true
}

func (e *extractor) buildClass(n *sitter.Node) (model.Class, bool) {
	name := e.spec.DefName(n, e.src)
	if name == "" {
		// anonymous class-like nodes (e.g. inline struct references)
		return model.Class{}, false
	}
	if e.spec.ClassNeedsBody && n.ChildByFieldName("body") == nil {
		return model.Class{}, false
	}
	qual := e.qualify(name)
	cls := model.Class{
		ID:        model.FuncID(e.moduleID, qual),
		Name:      name,
		QualName:  qual,
		Module:    e.moduleID,
		StartLine: parsers.StartLine(n),
		EndLine:   parsers.EndLine(n),
	}
	if e.spec.Bases != nil {
		cls.Bases = e.spec.Bases(n, e.src)
	}
	if e.spec.Fields != nil {
		cls.Fields = e.spec.Fields(n, e.src)
	}
	if e.spec.Decorators != nil {
		cls.Decorators = e.spec.Decorators(n, e.src)
	}
	return cls, true
}

// cleanAnnotation strips the leading colon some grammars keep in type
// annotation nodes. Annotations are otherwise recorded verbatim.
func cleanAnnotation(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), ":"))
}
