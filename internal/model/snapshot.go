package model

import (
	"errors"
	"time"
)

// ErrEmptySnapshot is returned when no file in a snapshot could be parsed.
// Individual parse failures are recorded on the snapshot instead; only the
// all-files-failed case is fatal, since no meaningful model exists.
var ErrEmptySnapshot = errors.New("no file in the snapshot could be parsed")

// ParseError records a single file's parse failure. It is attached to the
// snapshot and to the failed module's placeholder; it never aborts a run.
type ParseError struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (e *ParseError) Error() string {
	return e.File + ": " + e.Message
}

// Metadata describes how and when a snapshot was built.
type Metadata struct {
	BuildID     string    `json:"build_id"` // unique per assembly run
	Root        string    `json:"root"`
	GeneratedAt time.Time `json:"generated_at"`
	ModuleCount int       `json:"module_count"`
	FuncCount   int       `json:"function_count"`
	ClassCount  int       `json:"class_count"`
	TotalLines  int       `json:"total_lines"`
}

// Snapshot is the whole-program structural model for one source tree.
// It owns all modules and aggregated call edges, keeps O(1) lookup indexes,
// and is immutable once sealed by the assembler.
type Snapshot struct {
	Meta      Metadata     `json:"_metadata"`
	Modules   []Module     `json:"modules"`    // sorted by ID
	CallEdges []CallEdge   `json:"call_edges"` // sorted by (caller, callee)
	Cycles    [][]string   `json:"cycles,omitempty"` // module import cycles, if any
	Errors    []ParseError `json:"errors,omitempty"`

	modules   map[string]*Module
	functions map[string]*Function
	classes   map[string]*Class
}

// Seal builds the lookup indexes and fills aggregate metadata. The assembler
// calls it exactly once; afterwards the snapshot is read-only.
func (s *Snapshot) Seal() {
	s.modules = make(map[string]*Module, len(s.Modules))
	s.functions = make(map[string]*Function)
	s.classes = make(map[string]*Class)

	for i := range s.Modules {
		m := &s.Modules[i]
		s.modules[m.ID] = m
		for _, f := range m.AllFunctions() {
			s.functions[f.ID] = f
		}
		for j := range m.Classes {
			c := &m.Classes[j]
			s.classes[c.ID] = c
		}
		s.Meta.FuncCount += len(m.Functions)
		for j := range m.Classes {
			s.Meta.FuncCount += len(m.Classes[j].Methods)
		}
		s.Meta.ClassCount += len(m.Classes)
		s.Meta.TotalLines += m.Lines
	}
	s.Meta.ModuleCount = len(s.Modules)
}

// ModuleByID returns the module with the given ID, or nil.
func (s *Snapshot) ModuleByID(id string) *Module {
	return s.modules[id]
}

// FunctionByID returns the function with the given ID, or nil.
func (s *Snapshot) FunctionByID(id string) *Function {
	return s.functions[id]
}

// ClassByID returns the class with the given ID, or nil.
func (s *Snapshot) ClassByID(id string) *Class {
	return s.classes[id]
}

// ModuleIDs returns all module IDs in sorted order.
func (s *Snapshot) ModuleIDs() []string {
	ids := make([]string, len(s.Modules))
	for i := range s.Modules {
		ids[i] = s.Modules[i].ID
	}
	return ids
}

// Entrypoints returns every entrypoint in the snapshot, in module order.
func (s *Snapshot) Entrypoints() []Entrypoint {
	var out []Entrypoint
	for i := range s.Modules {
		out = append(out, s.Modules[i].Entrypoints...)
	}
	return out
}

// OutgoingCalls returns the aggregated edges whose caller belongs to the
// given module.
func (s *Snapshot) OutgoingCalls(moduleID string) []CallEdge {
	var out []CallEdge
	prefix := moduleID + ":"
	for _, e := range s.CallEdges {
		if e.Caller == moduleID || len(e.Caller) > len(prefix) && e.Caller[:len(prefix)] == prefix {
			out = append(out, e)
		}
	}
	return out
}
