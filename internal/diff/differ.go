package diff

import (
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/beanviz/bean/internal/model"
)

// Differ compares two snapshots. Matching is structural: modules pair by ID,
// symbols pair by qualified name, and a bounded fingerprint-similarity pass
// reclassifies unique removed/added pairs as renames. Line positions are
// never compared, so shifting a function down a file does not mark it
// changed.
type Differ struct {
	threshold float64
	sim       Similarity
	workers   int
}

// Option configures a Differ.
type Option func(*Differ)

// WithThreshold overrides the rename similarity threshold. Values outside
// (0, 1] are ignored.
func WithThreshold(t float64) Option {
	return func(d *Differ) {
		if t > 0 && t <= 1 {
			d.threshold = t
		}
	}
}

// WithSimilarity swaps the fingerprint similarity function.
func WithSimilarity(fn Similarity) Option {
	return func(d *Differ) {
		if fn != nil {
			d.sim = fn
		}
	}
}

// WithWorkers bounds per-module comparison parallelism.
func WithWorkers(n int) Option {
	return func(d *Differ) {
		if n >= 1 {
			d.workers = n
		}
	}
}

// New creates a Differ with the default Dice-bigram similarity.
func New(opts ...Option) *Differ {
	d := &Differ{
		threshold: DefaultRenameThreshold,
		sim:       DiceBigram,
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Compare diffs head against base. Module pairs are compared in parallel;
// each goroutine writes only its own slot in the results slice, so no
// locking is needed beyond the semaphore. Comparing a snapshot against
// itself yields an empty report.
func (d *Differ) Compare(base, head *model.Snapshot) *Report {
	report := &Report{
		Meta: Meta{
			BaseBuildID: base.Meta.BuildID,
			HeadBuildID: head.Meta.BuildID,
			GeneratedAt: time.Now().UTC(),
		},
	}

	baseIDs := base.ModuleIDs()
	headIDs := head.ModuleIDs()
	report.ModulesAdded = setDifference(headIDs, baseIDs)
	report.ModulesRemoved = setDifference(baseIDs, headIDs)
	common := setIntersection(baseIDs, headIDs)

	deltas := make([]*ModuleDelta, len(common))
	var wg sync.WaitGroup
	sem := make(chan struct{}, d.workers)
	for i, id := range common {
		wg.Add(1)
		sem <- struct{}{}
		go func(slot int, moduleID string) {
			defer wg.Done()
			defer func() { <-sem }()
			deltas[slot] = d.compareModule(base.ModuleByID(moduleID), head.ModuleByID(moduleID))
		}(i, id)
	}
	wg.Wait()

	for i, delta := range deltas {
		if delta == nil {
			report.ModulesUnchanged = append(report.ModulesUnchanged, common[i])
			continue
		}
		report.ModulesChanged = append(report.ModulesChanged, *delta)
	}
	sort.Slice(report.ModulesChanged, func(i, j int) bool {
		return report.ModulesChanged[i].ID < report.ModulesChanged[j].ID
	})

	report.ExternalsAdded, report.ExternalsRemoved = externalDiff(base, head)

	report.Meta.ModulesAdded = len(report.ModulesAdded)
	report.Meta.ModulesRemoved = len(report.ModulesRemoved)
	report.Meta.ModulesChanged = len(report.ModulesChanged)
	report.Meta.ModulesUnchanged = len(report.ModulesUnchanged)
	// Totals compare the whole snapshots, added and removed modules
	// included, not just the changed set.
	report.Meta.TotalLineDelta = head.Meta.TotalLines - base.Meta.TotalLines
	report.Meta.TotalComplexityDelta = complexityTotal(head) - complexityTotal(base)
	return report
}

// compareModule returns nil when the pair is structurally identical. A module
// that failed to parse contributes no entities, so its counterpart's symbols
// all show up as added or removed rather than silently vanishing.
func (d *Differ) compareModule(bm, hm *model.Module) *ModuleDelta {
	delta := &ModuleDelta{
		ID:              hm.ID,
		LineDelta:       hm.Lines - bm.Lines,
		ComplexityDelta: hm.ComplexitySum() - bm.ComplexitySum(),
	}

	baseFuncs := functionsByQual(bm)
	headFuncs := functionsByQual(hm)
	delta.FunctionDiffs, delta.FunctionsAdded, delta.FunctionsRemoved =
		d.diffFunctions(baseFuncs, headFuncs)

	baseClasses := classesByQual(bm)
	headClasses := classesByQual(hm)
	delta.ClassDiffs, delta.ClassesAdded, delta.ClassesRemoved =
		d.diffClasses(baseClasses, headClasses)

	delta.ImportDiffs = diffImports(bm.Imports, hm.Imports)

	if !moduleChanged(delta) {
		return nil
	}
	return delta
}

func moduleChanged(delta *ModuleDelta) bool {
	if delta.LineDelta != 0 || delta.ComplexityDelta != 0 {
		return true
	}
	if len(delta.FunctionsAdded)+len(delta.FunctionsRemoved) > 0 {
		return true
	}
	if len(delta.ClassesAdded)+len(delta.ClassesRemoved) > 0 {
		return true
	}
	for _, fd := range delta.FunctionDiffs {
		if fd.Status != StatusUnchanged {
			return true
		}
	}
	for _, cd := range delta.ClassDiffs {
		if cd.Status != StatusUnchanged {
			return true
		}
	}
	for _, id := range delta.ImportDiffs {
		if id.Status != StatusUnchanged {
			return true
		}
	}
	return false
}

// diffFunctions pairs functions by qualified name, then runs the rename
// heuristic over the leftovers: an added function adopts a removed one only
// when exactly one removed candidate clears the similarity threshold. Ties
// and near-misses stay plain added/removed.
func (d *Differ) diffFunctions(base, head map[string]*model.Function) (diffs []FunctionDelta, added, removed []string) {
	var pairs []functionPair
	for _, name := range sortedKeys(head) {
		if bf, ok := base[name]; ok {
			pairs = append(pairs, functionPair{base: bf, head: head[name]})
			continue
		}
		added = append(added, name)
	}
	for _, name := range sortedKeys(base) {
		if _, ok := head[name]; !ok {
			removed = append(removed, name)
		}
	}

	pairs, added, removed = d.detectRenames(pairs, added, removed, base, head)

	for _, p := range pairs {
		diffs = append(diffs, functionDelta(p))
	}
	for _, name := range added {
		diffs = append(diffs, addedFunctionDelta(head[name]))
	}
	for _, name := range removed {
		diffs = append(diffs, removedFunctionDelta(base[name]))
	}
	sortFunctionDeltas(diffs)
	return diffs, added, removed
}

type functionPair struct {
	base, head  *model.Function
	renamedFrom string
	similarity  float64
}

func (d *Differ) detectRenames(pairs []functionPair, added, removed []string, base, head map[string]*model.Function) ([]functionPair, []string, []string) {
	if len(added) == 0 || len(removed) == 0 {
		return pairs, added, removed
	}
	claimed := map[string]bool{}
	var stillAdded []string
	for _, addName := range added {
		af := head[addName]
		match := ""
		score := 0.0
		hits := 0
		for _, remName := range removed {
			if claimed[remName] {
				continue
			}
			s := d.sim(base[remName].Fingerprint, af.Fingerprint)
			if s >= d.threshold {
				hits++
				match = remName
				score = s
			}
		}
		if hits != 1 {
			stillAdded = append(stillAdded, addName)
			continue
		}
		claimed[match] = true
		pairs = append(pairs, functionPair{
			base:        base[match],
			head:        af,
			renamedFrom: match,
			similarity:  score,
		})
	}
	var stillRemoved []string
	for _, name := range removed {
		if !claimed[name] {
			stillRemoved = append(stillRemoved, name)
		}
	}
	return pairs, stillAdded, stillRemoved
}

// functionDelta compares a matched pair. Start lines are deliberately not
// part of the comparison.
func functionDelta(p functionPair) FunctionDelta {
	bf, hf := p.base, p.head
	fd := FunctionDelta{
		Name:            hf.QualName,
		RenamedFrom:     p.renamedFrom,
		Similarity:      p.similarity,
		Complexity:      hf.Complexity,
		ComplexityDelta: hf.Complexity - bf.Complexity,
		Lines:           hf.LineSpan(),
		LineDelta:       hf.LineSpan() - bf.LineSpan(),
		Params:          len(hf.Params),
		ParamChanges:    paramChanges(bf.Params, hf.Params),
		ReturnType:      hf.ReturnType,
		IsAsync:         hf.IsAsync,
	}
	fd.ReturnTypeChanged = bf.ReturnType != hf.ReturnType
	fd.AsyncChanged = bf.IsAsync != hf.IsAsync
	fd.DecoratorsAdded = setDifference(hf.Decorators, bf.Decorators)
	fd.DecoratorsRemoved = setDifference(bf.Decorators, hf.Decorators)
	fd.BodyChanged = bf.Fingerprint != hf.Fingerprint

	changed := p.renamedFrom != "" ||
		fd.ComplexityDelta != 0 || fd.LineDelta != 0 ||
		len(fd.ParamChanges) > 0 ||
		fd.ReturnTypeChanged || fd.AsyncChanged ||
		len(fd.DecoratorsAdded)+len(fd.DecoratorsRemoved) > 0 ||
		fd.BodyChanged
	if changed {
		fd.Status = StatusChanged
	} else {
		fd.Status = StatusUnchanged
	}
	return fd
}

func addedFunctionDelta(f *model.Function) FunctionDelta {
	return FunctionDelta{
		Name:            f.QualName,
		Status:          StatusAdded,
		Complexity:      f.Complexity,
		ComplexityDelta: f.Complexity,
		Lines:           f.LineSpan(),
		LineDelta:       f.LineSpan(),
		Params:          len(f.Params),
		ReturnType:      f.ReturnType,
		IsAsync:         f.IsAsync,
	}
}

func removedFunctionDelta(f *model.Function) FunctionDelta {
	return FunctionDelta{
		Name:            f.QualName,
		Status:          StatusRemoved,
		ComplexityDelta: -f.Complexity,
		LineDelta:       -f.LineSpan(),
	}
}

// paramChanges records each structural parameter change individually:
// additions, removals, annotation changes, default changes, and reorders.
func paramChanges(base, head []model.Param) []ParamChange {
	baseIdx := make(map[string]int, len(base))
	for i, p := range base {
		baseIdx[p.Name] = i
	}
	headIdx := make(map[string]int, len(head))
	for i, p := range head {
		headIdx[p.Name] = i
	}

	var changes []ParamChange
	for i, hp := range head {
		bi, ok := baseIdx[hp.Name]
		if !ok {
			changes = append(changes, ParamChange{Kind: ParamAdded, Name: hp.Name, Index: i})
			continue
		}
		bp := base[bi]
		if bp.Annotation != hp.Annotation {
			changes = append(changes, ParamChange{
				Kind: ParamRetyped, Name: hp.Name,
				From: bp.Annotation, To: hp.Annotation, Index: i,
			})
		}
		if bp.HasDefault != hp.HasDefault {
			changes = append(changes, ParamChange{Kind: ParamDefaultChanged, Name: hp.Name, Index: i})
		}
		if bi != i && sameSurvivorOrder(base, head, baseIdx, headIdx, bi, i) {
			changes = append(changes, ParamChange{
				Kind: ParamReordered, Name: hp.Name,
				From: strconv.Itoa(bi), To: strconv.Itoa(i), Index: i,
			})
		}
	}
	for i, bp := range base {
		if _, ok := headIdx[bp.Name]; !ok {
			changes = append(changes, ParamChange{Kind: ParamRemoved, Name: bp.Name, Index: i})
		}
	}
	return changes
}

// sameSurvivorOrder reports whether a raw index shift is a genuine reorder
// rather than a side effect of a neighbor being added or removed: the
// parameter must also have moved relative to the parameters present in both
// versions.
func sameSurvivorOrder(base, head []model.Param, baseIdx, headIdx map[string]int, bi, hi int) bool {
	rankBase, rankHead := 0, 0
	for i := 0; i < bi; i++ {
		if _, ok := headIdx[base[i].Name]; ok {
			rankBase++
		}
	}
	for i := 0; i < hi; i++ {
		if _, ok := baseIdx[head[i].Name]; ok {
			rankHead++
		}
	}
	return rankBase != rankHead
}

func (d *Differ) diffClasses(base, head map[string]*model.Class) (diffs []ClassDelta, added, removed []string) {
	for _, name := range sortedKeys(head) {
		hc := head[name]
		bc, ok := base[name]
		if !ok {
			added = append(added, name)
			diffs = append(diffs, ClassDelta{
				Name:        hc.QualName,
				Status:      StatusAdded,
				Methods:     len(hc.Methods),
				MethodDelta: len(hc.Methods),
				Fields:      len(hc.Fields),
				FieldDelta:  len(hc.Fields),
			})
			continue
		}
		diffs = append(diffs, d.classDelta(bc, hc))
	}
	for _, name := range sortedKeys(base) {
		if _, ok := head[name]; !ok {
			removed = append(removed, name)
			bc := base[name]
			diffs = append(diffs, ClassDelta{
				Name:        bc.QualName,
				Status:      StatusRemoved,
				MethodDelta: -len(bc.Methods),
				FieldDelta:  -len(bc.Fields),
			})
		}
	}
	sort.SliceStable(diffs, func(i, j int) bool {
		if statusOrder[diffs[i].Status] != statusOrder[diffs[j].Status] {
			return statusOrder[diffs[i].Status] < statusOrder[diffs[j].Status]
		}
		return diffs[i].Name < diffs[j].Name
	})
	return diffs, added, removed
}

func (d *Differ) classDelta(bc, hc *model.Class) ClassDelta {
	cd := ClassDelta{
		Name:        hc.QualName,
		Methods:     len(hc.Methods),
		MethodDelta: len(hc.Methods) - len(bc.Methods),
		Fields:      len(hc.Fields),
		FieldDelta:  len(hc.Fields) - len(bc.Fields),
	}

	baseMethods := methodsByName(bc)
	headMethods := methodsByName(hc)
	var methodDiffs []FunctionDelta
	methodDiffs, cd.MethodsAdded, cd.MethodsRemoved = d.diffFunctions(baseMethods, headMethods)
	for _, md := range methodDiffs {
		if md.Status != StatusUnchanged {
			cd.MethodDiffs = append(cd.MethodDiffs, md)
		}
	}

	cd.FieldsAdded = setDifference(fieldNames(hc), fieldNames(bc))
	cd.FieldsRemoved = setDifference(fieldNames(bc), fieldNames(hc))
	cd.BasesAdded = setDifference(hc.Bases, bc.Bases)
	cd.BasesRemoved = setDifference(bc.Bases, hc.Bases)

	changed := len(cd.MethodDiffs) > 0 ||
		len(cd.MethodsAdded)+len(cd.MethodsRemoved) > 0 ||
		len(cd.FieldsAdded)+len(cd.FieldsRemoved) > 0 ||
		len(cd.BasesAdded)+len(cd.BasesRemoved) > 0
	if changed {
		cd.Status = StatusChanged
	} else {
		cd.Status = StatusUnchanged
	}
	return cd
}

// diffImports groups imports by target and diffs the imported-name sets.
// An unresolved import present in both snapshots compares clean; pending
// resolution is a recorded state, not a change.
func diffImports(base, head []model.Import) []ImportDelta {
	baseNames := importNames(base)
	headNames := importNames(head)

	var diffs []ImportDelta
	for _, target := range sortedKeys(headNames) {
		hn := headNames[target]
		bn, ok := baseNames[target]
		if !ok {
			diffs = append(diffs, ImportDelta{
				Target: target, Status: StatusAdded, NamesAll: sortedKeys(hn),
			})
			continue
		}
		id := ImportDelta{
			Target:       target,
			NamesAdded:   setDifference(sortedKeys(hn), sortedKeys(bn)),
			NamesRemoved: setDifference(sortedKeys(bn), sortedKeys(hn)),
			NamesAll:     sortedKeys(hn),
		}
		if len(id.NamesAdded)+len(id.NamesRemoved) > 0 {
			id.Status = StatusChanged
		} else {
			id.Status = StatusUnchanged
		}
		diffs = append(diffs, id)
	}
	for _, target := range sortedKeys(baseNames) {
		if _, ok := headNames[target]; !ok {
			diffs = append(diffs, ImportDelta{
				Target: target, Status: StatusRemoved, NamesAll: sortedKeys(baseNames[target]),
			})
		}
	}
	sort.SliceStable(diffs, func(i, j int) bool {
		if statusOrder[diffs[i].Status] != statusOrder[diffs[j].Status] {
			return statusOrder[diffs[i].Status] < statusOrder[diffs[j].Status]
		}
		return diffs[i].Target < diffs[j].Target
	})
	return diffs
}

func importNames(imports []model.Import) map[string]map[string]bool {
	grouped := map[string]map[string]bool{}
	for _, imp := range imports {
		names, ok := grouped[imp.Target]
		if !ok {
			names = map[string]bool{}
			grouped[imp.Target] = names
		}
		for _, n := range imp.Names {
			names[n] = true
		}
		if imp.Alias != "" {
			names[imp.Alias] = true
		}
	}
	return grouped
}

// externalDiff compares the sets of unresolved call targets. These edges
// point outside the analyzed tree, so they are diffed coarsely as a
// dependency-surface signal rather than entity by entity.
func externalDiff(base, head *model.Snapshot) (added, removed []string) {
	return setDifference(externalTargets(head), externalTargets(base)),
		setDifference(externalTargets(base), externalTargets(head))
}

func externalTargets(snap *model.Snapshot) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range snap.CallEdges {
		if e.Resolved || seen[e.Callee] {
			continue
		}
		seen[e.Callee] = true
		out = append(out, e.Callee)
	}
	sort.Strings(out)
	return out
}

func complexityTotal(snap *model.Snapshot) int {
	total := 0
	for i := range snap.Modules {
		total += snap.Modules[i].ComplexitySum()
	}
	return total
}

func functionsByQual(m *model.Module) map[string]*model.Function {
	out := make(map[string]*model.Function, len(m.Functions))
	for i := range m.Functions {
		out[m.Functions[i].QualName] = &m.Functions[i]
	}
	return out
}

func classesByQual(m *model.Module) map[string]*model.Class {
	out := make(map[string]*model.Class, len(m.Classes))
	for i := range m.Classes {
		out[m.Classes[i].QualName] = &m.Classes[i]
	}
	return out
}

func methodsByName(c *model.Class) map[string]*model.Function {
	out := make(map[string]*model.Function, len(c.Methods))
	for i := range c.Methods {
		out[c.Methods[i].Name] = &c.Methods[i]
	}
	return out
}

func fieldNames(c *model.Class) []string {
	names := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		names = append(names, f.Name)
	}
	return names
}

func sortFunctionDeltas(diffs []FunctionDelta) {
	sort.SliceStable(diffs, func(i, j int) bool {
		if statusOrder[diffs[i].Status] != statusOrder[diffs[j].Status] {
			return statusOrder[diffs[i].Status] < statusOrder[diffs[j].Status]
		}
		return diffs[i].Name < diffs[j].Name
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// setDifference returns the sorted elements of a not present in b.
func setDifference(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	var out []string
	seen := map[string]bool{}
	for _, s := range a {
		if !inB[s] && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func setIntersection(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	var out []string
	for _, s := range a {
		if inB[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
