// Package diff compares two structural models and produces a per-entity
// delta report: added/removed/changed/unchanged at module, class, and
// function granularity, with rename detection over body fingerprints.
package diff

import "time"

// Status classifies one entity in the report.
type Status string

const (
	StatusAdded     Status = "added"
	StatusRemoved   Status = "removed"
	StatusChanged   Status = "changed"
	StatusUnchanged Status = "unchanged"
)

// statusOrder sorts changed entries first for reviewability.
var statusOrder = map[Status]int{
	StatusChanged:   0,
	StatusAdded:     1,
	StatusRemoved:   2,
	StatusUnchanged: 3,
}

// ParamChangeKind names one structural parameter change.
type ParamChangeKind string

const (
	ParamAdded          ParamChangeKind = "added"
	ParamRemoved        ParamChangeKind = "removed"
	ParamRetyped        ParamChangeKind = "retyped"
	ParamReordered      ParamChangeKind = "reordered"
	ParamDefaultChanged ParamChangeKind = "default_changed"
)

// ParamChange records one parameter-level change, not just a count.
type ParamChange struct {
	Kind  ParamChangeKind `json:"kind"`
	Name  string          `json:"name"`
	From  string          `json:"from,omitempty"` // previous annotation (retyped) or index (reordered)
	To    string          `json:"to,omitempty"`
	Index int             `json:"index"`
}

// FunctionDelta is the per-function entry in a module or class diff.
type FunctionDelta struct {
	Name        string  `json:"name"`
	RenamedFrom string  `json:"renamed_from,omitempty"`
	Status      Status  `json:"status"`
	Similarity  float64 `json:"similarity,omitempty"` // fingerprint similarity for renames

	Complexity      int           `json:"complexity"`
	ComplexityDelta int           `json:"complexity_delta"`
	Lines           int           `json:"lines"`
	LineDelta       int           `json:"line_delta"`
	Params          int           `json:"params"`
	ParamChanges    []ParamChange `json:"param_changes,omitempty"`

	ReturnType        string   `json:"return_type,omitempty"`
	ReturnTypeChanged bool     `json:"return_type_changed,omitempty"`
	IsAsync           bool     `json:"is_async,omitempty"`
	AsyncChanged      bool     `json:"async_changed,omitempty"`
	DecoratorsAdded   []string `json:"decorators_added,omitempty"`
	DecoratorsRemoved []string `json:"decorators_removed,omitempty"`
	BodyChanged       bool     `json:"body_changed,omitempty"`
}

// ClassDelta is the per-class entry in a module diff.
type ClassDelta struct {
	Name        string `json:"name"`
	RenamedFrom string `json:"renamed_from,omitempty"`
	Status      Status `json:"status"`

	Methods     int `json:"methods"`
	MethodDelta int `json:"method_delta"`
	Fields      int `json:"fields"`
	FieldDelta  int `json:"field_delta"`

	MethodsAdded   []string `json:"methods_added,omitempty"`
	MethodsRemoved []string `json:"methods_removed,omitempty"`
	FieldsAdded    []string `json:"fields_added,omitempty"`
	FieldsRemoved  []string `json:"fields_removed,omitempty"`
	BasesAdded     []string `json:"bases_added,omitempty"`
	BasesRemoved   []string `json:"bases_removed,omitempty"`

	MethodDiffs []FunctionDelta `json:"method_diffs,omitempty"`
}

// ImportDelta is the per-import-target entry in a module diff.
type ImportDelta struct {
	Target       string   `json:"target"`
	Status       Status   `json:"status"`
	NamesAdded   []string `json:"names_added,omitempty"`
	NamesRemoved []string `json:"names_removed,omitempty"`
	NamesAll     []string `json:"names_all,omitempty"`
}

// ModuleDelta is one changed module's full delta.
type ModuleDelta struct {
	ID              string `json:"id"`
	LineDelta       int    `json:"line_delta"`
	ComplexityDelta int    `json:"complexity_delta"`

	FunctionsAdded   []string `json:"functions_added,omitempty"`
	FunctionsRemoved []string `json:"functions_removed,omitempty"`
	ClassesAdded     []string `json:"classes_added,omitempty"`
	ClassesRemoved   []string `json:"classes_removed,omitempty"`

	FunctionDiffs []FunctionDelta `json:"function_diffs,omitempty"`
	ClassDiffs    []ClassDelta    `json:"class_diffs,omitempty"`
	ImportDiffs   []ImportDelta   `json:"import_diffs,omitempty"`
}

// Meta summarizes the comparison.
type Meta struct {
	BaseBuildID string    `json:"base_build_id"`
	HeadBuildID string    `json:"head_build_id"`
	BaseRef     string    `json:"base_ref,omitempty"`
	HeadRef     string    `json:"head_ref,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	ModulesAdded     int `json:"modules_added"`
	ModulesRemoved   int `json:"modules_removed"`
	ModulesChanged   int `json:"modules_changed"`
	ModulesUnchanged int `json:"modules_unchanged"`

	TotalLineDelta       int `json:"total_line_delta"`
	TotalComplexityDelta int `json:"total_complexity_delta"`
}

// Report is the immutable result of comparing a base and a head snapshot.
// All collections are sorted for stable, reviewable output.
type Report struct {
	Meta Meta `json:"_metadata"`

	ModulesAdded     []string      `json:"modules_added"`
	ModulesRemoved   []string      `json:"modules_removed"`
	ModulesUnchanged []string      `json:"modules_unchanged"`
	ModulesChanged   []ModuleDelta `json:"modules_changed"`

	// Coarse external-dependency signal: unresolved call targets present
	// in only one of the two snapshots. Not matched entity-by-entity.
	ExternalsAdded   []string `json:"externals_added,omitempty"`
	ExternalsRemoved []string `json:"externals_removed,omitempty"`
}

// Empty reports whether the diff found no structural change at all.
func (r *Report) Empty() bool {
	return len(r.ModulesAdded) == 0 && len(r.ModulesRemoved) == 0 && len(r.ModulesChanged) == 0
}
