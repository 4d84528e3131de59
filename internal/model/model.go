// Package model defines the structural model extracted from one source-tree
// snapshot: modules, symbols, edges, and metrics. Cross-references between
// entities are plain string identifiers resolved through the owning
// Snapshot's index, never pointers, so a model is trivially serializable
// and comparable.
package model

import "fmt"

// ImportStatus tracks what happened when an import was matched against the
// snapshot's own module set.
type ImportStatus string

const (
	// ImportPending means resolution has not run yet (pre-assembly).
	ImportPending ImportStatus = "pending"
	// ImportResolved means the target is a module inside the snapshot.
	ImportResolved ImportStatus = "resolved"
	// ImportExternal means resolution ran and found no in-snapshot target.
	// This is a recorded state, not an error.
	ImportExternal ImportStatus = "external"
)

// Import is a single import declaration in a module.
type Import struct {
	Target   string       `json:"target"`             // target as written in source
	Names    []string     `json:"names,omitempty"`    // imported names, declaration order
	Alias    string       `json:"alias,omitempty"`    // alias, if any
	Line     int          `json:"line"`               // declaration line
	Resolved string       `json:"resolved,omitempty"` // in-snapshot module ID when Status == resolved
	Status   ImportStatus `json:"status"`
}

// Param is one declared parameter. An absent annotation is recorded as the
// empty string, which is distinct from "unknown due to error" (a file that
// failed to parse produces no Function records at all).
type Param struct {
	Name       string `json:"name"`
	Annotation string `json:"annotation,omitempty"` // declared type, verbatim
	HasDefault bool   `json:"has_default,omitempty"`
}

// Function is a free function or a method (Class is non-empty for methods).
type Function struct {
	ID          string   `json:"id"`              // module:qualname, unique per snapshot
	Name        string   `json:"name"`            // unqualified name
	QualName    string   `json:"qualname"`        // optional enclosing class + name
	Module      string   `json:"module"`          // owning module ID
	Class       string   `json:"class,omitempty"` // enclosing class name, "" for free functions
	StartLine   int      `json:"start_line"`
	EndLine     int      `json:"end_line"`
	Complexity  int      `json:"complexity"` // cyclomatic, baseline 1
	Params      []Param  `json:"params,omitempty"`
	ReturnType  string   `json:"return_type,omitempty"` // declared return annotation, verbatim
	IsAsync     bool     `json:"is_async,omitempty"`
	Decorators  []string `json:"decorators,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"` // normalized body signature for matching
}

// LineSpan returns the inclusive line count of the function body.
func (f *Function) LineSpan() int {
	return f.EndLine - f.StartLine + 1
}

// EntrypointKind classifies how control can enter a module from outside.
type EntrypointKind string

const (
	// EntrypointRoute is an HTTP/WebSocket handler registered by decorator.
	EntrypointRoute EntrypointKind = "route"
	// EntrypointCLI is a command registered with a CLI framework.
	EntrypointCLI EntrypointKind = "cli"
	// EntrypointTask is a background-task or job registration.
	EntrypointTask EntrypointKind = "task"
	// EntrypointMainGuard is a module-level main guard block.
	EntrypointMainGuard EntrypointKind = "main_guard"
)

// Entrypoint marks a place where execution can enter the analyzed code:
// a decorated handler function or a main guard. Target is the function ID,
// or "<module>:__main__" for main guards.
type Entrypoint struct {
	Kind       EntrypointKind `json:"kind"`
	Module     string         `json:"module"`
	Target     string         `json:"target"`
	Line       int            `json:"line"`
	Decorators []string       `json:"decorators,omitempty"`
}

// Field is a declared class field.
type Field struct {
	Name       string `json:"name"`
	Annotation string `json:"annotation,omitempty"`
}

// Class is a class declared at module scope or nested.
type Class struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	QualName   string     `json:"qualname"`
	Module     string     `json:"module"`
	StartLine  int        `json:"start_line"`
	EndLine    int        `json:"end_line"`
	Methods    []Function `json:"methods,omitempty"` // declaration order
	Fields     []Field    `json:"fields,omitempty"`  // declaration order
	Bases      []string   `json:"bases,omitempty"`   // base-class names, best-effort, may stay unresolved
	Decorators []string   `json:"decorators,omitempty"`
}

// MethodNames returns the unqualified method names in declaration order.
func (c *Class) MethodNames() []string {
	names := make([]string, len(c.Methods))
	for i := range c.Methods {
		names[i] = c.Methods[i].Name
	}
	return names
}

// Module is one source file's structural record. Identity is the normalized
// relative path converted to a dotted ID.
type Module struct {
	ID          string       `json:"id"`   // dotted identifier, e.g. "app.routes.user"
	Path        string       `json:"path"` // normalized relative path
	Language    string       `json:"language"`
	Layer       string       `json:"layer,omitempty"` // architectural layer inferred from the ID
	Lines       int          `json:"lines"`
	Imports     []Import     `json:"imports,omitempty"`     // declaration order
	Functions   []Function   `json:"functions,omitempty"`   // module scope, declaration order
	Classes     []Class      `json:"classes,omitempty"`     // declaration order
	Entrypoints []Entrypoint `json:"entrypoints,omitempty"` // declaration order
	Error       *ParseError  `json:"error,omitempty"`       // set on failed-parse placeholders
}

// Failed reports whether this module is a failed-parse placeholder.
func (m *Module) Failed() bool {
	return m.Error != nil
}

// SymbolCount counts module-level functions, classes, and methods.
func (m *Module) SymbolCount() int {
	n := len(m.Functions) + len(m.Classes)
	for i := range m.Classes {
		n += len(m.Classes[i].Methods)
	}
	return n
}

// ComplexitySum sums cyclomatic complexity over all functions and methods.
func (m *Module) ComplexitySum() int {
	sum := 0
	for i := range m.Functions {
		sum += m.Functions[i].Complexity
	}
	for i := range m.Classes {
		for j := range m.Classes[i].Methods {
			sum += m.Classes[i].Methods[j].Complexity
		}
	}
	return sum
}

// AllFunctions returns module-level functions followed by methods, in
// declaration order.
func (m *Module) AllFunctions() []*Function {
	out := make([]*Function, 0, len(m.Functions))
	for i := range m.Functions {
		out = append(out, &m.Functions[i])
	}
	for i := range m.Classes {
		for j := range m.Classes[i].Methods {
			out = append(out, &m.Classes[i].Methods[j])
		}
	}
	return out
}

// CallEdge is an aggregated caller → callee relation. Multiple call sites
// between the same pair collapse into one edge with a count; Line is the
// first call site seen in source order.
type CallEdge struct {
	Caller   string `json:"caller"` // function ID, always present in the same snapshot
	Callee   string `json:"callee"` // function/class ID, or external name when unresolved
	Line     int    `json:"line"`
	Count    int    `json:"count"`
	Resolved bool   `json:"resolved"`
}

// FuncID builds a function identifier from its module ID and qualified name.
func FuncID(moduleID, qualname string) string {
	return fmt.Sprintf("%s:%s", moduleID, qualname)
}
