package analyzer

import (
	"sort"
	"strings"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/google/uuid"

	"github.com/beanviz/bean/internal/model"
)

// assemble merges per-file extraction results into one sealed Snapshot.
// Results may arrive in any order; everything is sorted before resolution so
// the final model is identical regardless of worker completion order.
func assemble(root string, results []fileResult) (*model.Snapshot, error) {
	if len(results) == 0 {
		return nil, model.ErrEmptySnapshot
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Module.ID != results[j].Module.ID {
			return results[i].Module.ID < results[j].Module.ID
		}
		return results[i].Module.Path < results[j].Module.Path
	})

	// Duplicate module IDs (e.g. pkg.py next to pkg/__init__.py) keep the
	// first record in sorted path order.
	deduped := results[:0]
	seen := map[string]bool{}
	for _, r := range results {
		if seen[r.Module.ID] {
			continue
		}
		seen[r.Module.ID] = true
		deduped = append(deduped, r)
	}
	results = deduped

	parsed := 0
	var errs []model.ParseError
	for _, r := range results {
		if r.Module.Failed() {
			errs = append(errs, *r.Module.Error)
		} else {
			parsed++
		}
	}
	if parsed == 0 {
		return nil, model.ErrEmptySnapshot
	}

	known := make(map[string]bool, len(results))
	for _, r := range results {
		known[r.Module.ID] = true
	}
	suffixes := buildSuffixIndex(known)

	symbols := newSymbolIndex(results)

	snap := &model.Snapshot{
		Meta: model.Metadata{
			BuildID:     uuid.NewString(),
			Root:        root,
			GeneratedAt: time.Now().UTC(),
		},
		Errors: errs,
	}

	edges := map[[2]string]*model.CallEdge{}
	var edgeOrder [][2]string

	for i := range results {
		m := &results[i].Module

		for j := range m.Imports {
			imp := &m.Imports[j]
			resolved := resolveImport(imp.Target, known, suffixes)
			if resolved != "" && resolved != m.ID {
				imp.Resolved = resolved
				imp.Status = model.ImportResolved
			} else {
				imp.Resolved = ""
				imp.Status = model.ImportExternal
			}
		}

		aliases := importAliases(m)
		for _, call := range results[i].Calls {
			callee, resolved := symbols.resolve(m.ID, call.Caller, call.Target, aliases)
			if resolved && callee == call.Caller {
				continue // direct recursion is not an edge
			}
			key := [2]string{call.Caller, callee}
			if e, ok := edges[key]; ok {
				e.Count++
				continue
			}
			edges[key] = &model.CallEdge{
				Caller:   call.Caller,
				Callee:   callee,
				Line:     call.Line,
				Count:    1,
				Resolved: resolved,
			}
			edgeOrder = append(edgeOrder, key)
		}

		snap.Modules = append(snap.Modules, *m)
	}

	snap.CallEdges = make([]model.CallEdge, 0, len(edgeOrder))
	for _, key := range edgeOrder {
		snap.CallEdges = append(snap.CallEdges, *edges[key])
	}
	sort.Slice(snap.CallEdges, func(i, j int) bool {
		a, b := snap.CallEdges[i], snap.CallEdges[j]
		if a.Caller != b.Caller {
			return a.Caller < b.Caller
		}
		return a.Callee < b.Callee
	})

	snap.Cycles = importCycles(snap.Modules)
	snap.Seal()
	return snap, nil
}

// buildSuffixIndex indexes every module ID under each of its dotted
// suffixes, enabling monorepo-style resolution where the import path omits
// the service prefix (e.g. "app.models" → "backend.app.models").
func buildSuffixIndex(known map[string]bool) map[string][]string {
	idx := map[string][]string{}
	for id := range known {
		parts := strings.Split(id, ".")
		for i := 1; i <= len(parts); i++ {
			suffix := strings.Join(parts[len(parts)-i:], ".")
			idx[suffix] = append(idx[suffix], id)
		}
	}
	for _, ids := range idx {
		sort.Strings(ids)
	}
	return idx
}

// resolveImport matches an import target against the snapshot's own module
// set: exact, then longest dotted prefix, then unique suffix. Anything else
// stays external.
func resolveImport(target string, known map[string]bool, suffixes map[string][]string) string {
	t := strings.TrimLeft(target, ".")
	if t == "" {
		return ""
	}
	if known[t] {
		return t
	}
	parts := strings.Split(t, ".")
	for i := len(parts) - 1; i > 0; i-- {
		candidate := strings.Join(parts[:i], ".")
		if known[candidate] {
			return candidate
		}
	}
	for i := len(parts); i > 0; i-- {
		suffix := strings.Join(parts[:i], ".")
		if matches := suffixes[suffix]; len(matches) == 1 {
			return matches[0]
		}
	}
	return ""
}

// importAliases maps the local names a module can use in call expressions to
// the resolved in-snapshot module they refer to.
func importAliases(m *model.Module) map[string]string {
	aliases := map[string]string{}
	for _, imp := range m.Imports {
		if imp.Status != model.ImportResolved {
			continue
		}
		name := imp.Alias
		if name == "" {
			parts := strings.Split(imp.Target, ".")
			name = parts[len(parts)-1]
		}
		if _, taken := aliases[name]; !taken {
			aliases[name] = imp.Resolved
		}
	}
	return aliases
}

// importCycles reports module-level import cycles using the resolved import
// edges. Each strongly connected component larger than one module is a
// cycle.
func importCycles(modules []model.Module) [][]string {
	g := graph.New(graph.StringHash, graph.Directed())
	for i := range modules {
		_ = g.AddVertex(modules[i].ID)
	}
	for i := range modules {
		for _, imp := range modules[i].Imports {
			if imp.Status == model.ImportResolved {
				_ = g.AddEdge(modules[i].ID, imp.Resolved)
			}
		}
	}
	sccs, err := graph.StronglyConnectedComponents(g)
	if err != nil {
		return nil
	}
	var cycles [][]string
	for _, scc := range sccs {
		if len(scc) > 1 {
			sort.Strings(scc)
			cycles = append(cycles, scc)
		}
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}
