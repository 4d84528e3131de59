package analyzer

import (
	"strings"

	"github.com/beanviz/bean/internal/model"
)

// symbolIndex is the whole-snapshot lookup table used for call resolution.
// It is built once from sorted extraction results, so collisions resolve
// deterministically (first module in sorted order wins).
type symbolIndex struct {
	ids     map[string]bool   // every function/class ID
	byQual  map[string]string // "mod.qualname" and "qualname" → ID
	byShort map[string]string // unqualified name → ID
}

func newSymbolIndex(results []fileResult) *symbolIndex {
	idx := &symbolIndex{
		ids:     map[string]bool{},
		byQual:  map[string]string{},
		byShort: map[string]string{},
	}
	for i := range results {
		m := &results[i].Module
		for _, f := range m.AllFunctions() {
			idx.add(m.ID, f.QualName, f.Name, f.ID)
		}
		for j := range m.Classes {
			c := &m.Classes[j]
			idx.add(m.ID, c.QualName, c.Name, c.ID)
		}
	}
	return idx
}

func (idx *symbolIndex) add(moduleID, qualname, name, id string) {
	idx.ids[id] = true
	put(idx.byQual, moduleID+"."+qualname, id)
	put(idx.byQual, qualname, id)
	put(idx.byShort, name, id)
}

func put(m map[string]string, key, val string) {
	if _, taken := m[key]; !taken {
		m[key] = val
	}
}

// resolve maps a call-target expression to a known symbol ID. Lookup is
// scoped: enclosing class chain first (innermost wins), then the enclosing
// module, then modules reachable through resolved imports, then global
// qualified and short names. Targets that match nothing are returned as-is
// with resolved=false; they still count as outgoing edges.
func (idx *symbolIndex) resolve(moduleID, callerID, target string, aliases map[string]string) (string, bool) {
	name := target
	viaReceiver := false
	for _, recv := range []string{"self.", "cls.", "this."} {
		if strings.HasPrefix(name, recv) {
			name = strings.TrimPrefix(name, recv)
			viaReceiver = true
			break
		}
	}

	// Enclosing scope chain, innermost first.
	if scopes := callerScopes(moduleID, callerID); len(scopes) > 0 {
		for _, scope := range scopes {
			if id := model.FuncID(moduleID, scope+"."+name); idx.ids[id] {
				return id, true
			}
		}
	}
	if viaReceiver {
		// A receiver call that did not land in the class chain stays
		// unresolved rather than accidentally matching a free function.
		return target, false
	}

	// Module scope.
	if id := model.FuncID(moduleID, name); idx.ids[id] {
		return id, true
	}

	// Imported modules: "alias.symbol" via the importing module's aliases.
	if head, rest, ok := strings.Cut(name, "."); ok {
		if targetModule, imported := aliases[head]; imported {
			if id := model.FuncID(targetModule, rest); idx.ids[id] {
				return id, true
			}
		}
	}

	// Global qualified name, then global short name.
	if id, ok := idx.byQual[name]; ok {
		return id, true
	}
	short := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		short = name[i+1:]
	}
	if id, ok := idx.byShort[short]; ok {
		return id, true
	}

	return target, false
}

// callerScopes returns the caller's enclosing definition scopes within its
// module, innermost first. A caller "mod:A.B.m" yields ["A.B", "A"].
func callerScopes(moduleID, callerID string) []string {
	prefix := moduleID + ":"
	if !strings.HasPrefix(callerID, prefix) {
		return nil
	}
	qual := strings.TrimPrefix(callerID, prefix)
	parts := strings.Split(qual, ".")
	var scopes []string
	for i := len(parts) - 1; i >= 1; i-- {
		scopes = append(scopes, strings.Join(parts[:i], "."))
	}
	return scopes
}
