package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/beanviz/bean/internal/diff"
	"github.com/beanviz/bean/internal/model"
)

// writeSnapshot renders an analysis result as JSON or a text summary.
func writeSnapshot(w io.Writer, snap *model.Snapshot, format string, pretty bool) error {
	if strings.EqualFold(format, "json") {
		return writeJSON(w, snap, pretty)
	}

	fmt.Fprintf(w, "Snapshot of %s\n", snap.Meta.Root)
	fmt.Fprintf(w, "  modules:    %d\n", snap.Meta.ModuleCount)
	fmt.Fprintf(w, "  functions:  %d\n", snap.Meta.FuncCount)
	fmt.Fprintf(w, "  classes:    %d\n", snap.Meta.ClassCount)
	fmt.Fprintf(w, "  lines:      %d\n", snap.Meta.TotalLines)
	fmt.Fprintf(w, "  call edges: %d\n", len(snap.CallEdges))
	if eps := snap.Entrypoints(); len(eps) > 0 {
		fmt.Fprintf(w, "  entrypoints: %d\n", len(eps))
	}

	if len(snap.Errors) > 0 {
		fmt.Fprintf(w, "\n%d file(s) failed to parse:\n", len(snap.Errors))
		for _, e := range snap.Errors {
			fmt.Fprintf(w, "  %s: %s\n", e.File, e.Message)
		}
	}

	if len(snap.Cycles) > 0 {
		fmt.Fprintf(w, "\n%d import cycle(s):\n", len(snap.Cycles))
		for _, cycle := range snap.Cycles {
			fmt.Fprintf(w, "  %s\n", strings.Join(cycle, " -> "))
		}
	}

	fmt.Fprintln(w, "\nHighest-complexity modules:")
	for _, m := range topByComplexity(snap, 10) {
		fmt.Fprintf(w, "  %4d  %s\n", m.ComplexitySum(), m.ID)
	}
	return nil
}

// writeReport renders a diff report as JSON or a text summary.
func writeReport(w io.Writer, report *diff.Report, format string, pretty bool) error {
	if strings.EqualFold(format, "json") {
		return writeJSON(w, report, pretty)
	}

	if report.Empty() {
		fmt.Fprintln(w, "No structural changes.")
		return nil
	}

	meta := report.Meta
	fmt.Fprintf(w, "Modules: %d changed, %d added, %d removed, %d unchanged\n",
		meta.ModulesChanged, meta.ModulesAdded, meta.ModulesRemoved, meta.ModulesUnchanged)
	fmt.Fprintf(w, "Lines: %+d  Complexity: %+d\n", meta.TotalLineDelta, meta.TotalComplexityDelta)

	for _, id := range report.ModulesAdded {
		fmt.Fprintf(w, "A  %s\n", id)
	}
	for _, id := range report.ModulesRemoved {
		fmt.Fprintf(w, "D  %s\n", id)
	}
	for _, md := range report.ModulesChanged {
		fmt.Fprintf(w, "M  %s  (lines %+d, complexity %+d)\n", md.ID, md.LineDelta, md.ComplexityDelta)
		writeModuleDelta(w, &md)
	}

	if len(report.ExternalsAdded)+len(report.ExternalsRemoved) > 0 {
		fmt.Fprintln(w, "External call targets:")
		for _, name := range report.ExternalsAdded {
			fmt.Fprintf(w, "   + %s\n", name)
		}
		for _, name := range report.ExternalsRemoved {
			fmt.Fprintf(w, "   - %s\n", name)
		}
	}
	return nil
}

func writeModuleDelta(w io.Writer, md *diff.ModuleDelta) {
	for _, fd := range md.FunctionDiffs {
		if fd.Status == diff.StatusUnchanged {
			continue
		}
		fmt.Fprintf(w, "   %s %s%s\n", statusMark(fd.Status), fd.Name, functionDetail(&fd))
	}
	for _, cd := range md.ClassDiffs {
		if cd.Status == diff.StatusUnchanged {
			continue
		}
		fmt.Fprintf(w, "   %s class %s\n", statusMark(cd.Status), cd.Name)
		for _, fd := range cd.MethodDiffs {
			fmt.Fprintf(w, "      %s %s%s\n", statusMark(fd.Status), fd.Name, functionDetail(&fd))
		}
	}
	for _, id := range md.ImportDiffs {
		if id.Status == diff.StatusUnchanged {
			continue
		}
		fmt.Fprintf(w, "   %s import %s\n", statusMark(id.Status), id.Target)
	}
}

func functionDetail(fd *diff.FunctionDelta) string {
	var parts []string
	if fd.RenamedFrom != "" {
		parts = append(parts, fmt.Sprintf("renamed from %s", fd.RenamedFrom))
	}
	if fd.ComplexityDelta != 0 {
		parts = append(parts, fmt.Sprintf("complexity %+d", fd.ComplexityDelta))
	}
	if len(fd.ParamChanges) > 0 {
		parts = append(parts, fmt.Sprintf("%d param change(s)", len(fd.ParamChanges)))
	}
	if fd.ReturnTypeChanged {
		parts = append(parts, "return type")
	}
	if fd.AsyncChanged {
		parts = append(parts, "async")
	}
	if len(parts) == 0 {
		return ""
	}
	return "  (" + strings.Join(parts, ", ") + ")"
}

func statusMark(s diff.Status) string {
	switch s {
	case diff.StatusAdded:
		return "+"
	case diff.StatusRemoved:
		return "-"
	default:
		return "~"
	}
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func topByComplexity(snap *model.Snapshot, n int) []*model.Module {
	modules := make([]*model.Module, 0, len(snap.Modules))
	for i := range snap.Modules {
		modules = append(modules, &snap.Modules[i])
	}
	sort.Slice(modules, func(i, j int) bool {
		ci, cj := modules[i].ComplexitySum(), modules[j].ComplexitySum()
		if ci != cj {
			return ci > cj
		}
		return modules[i].ID < modules[j].ID
	})
	if len(modules) > n {
		modules = modules[:n]
	}
	return modules
}
