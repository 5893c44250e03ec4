package mapping

import (
	"github.com/emirpasic/gods/sets/linkedhashset"
)

// RenameNamespaces replaces the namespace labels of m with to, which must
// have the same length. Entity name tuples are untouched — only the labels
// change.
func RenameNamespaces(m *Mappings, to []string) (*Mappings, error) {
	if len(to) != len(m.Namespaces) {
		return nil, errInvariant("rename_namespaces: expected %d namespaces, got %d", len(m.Namespaces), len(to))
	}
	out := m.Clone()
	out.Namespaces = append([]string(nil), to...)
	return out, nil
}

// permutationIndices resolves, for each namespace in order, its index in
// current, failing if any name in order is missing from current.
func permutationIndices(current []string, order []string) ([]int, error) {
	idx := make([]int, len(order))
	for i, name := range order {
		pos := -1
		for j, cur := range current {
			if cur == name {
				pos = j
				break
			}
		}
		if pos < 0 {
			return nil, errNamespace("namespace %q not found", name)
		}
		idx[i] = pos
	}
	return idx, nil
}

func permuteStrings(names []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, p := range idx {
		out[i] = names[p]
	}
	return out
}

// ReorderNamespaces permutes every entity's name tuple according to order
// and rewrites every member descriptor to the first namespace of the new
// order.
func ReorderNamespaces(m *Mappings, order []string) (*Mappings, error) {
	idx, err := permutationIndices(m.Namespaces, order)
	if err != nil {
		return nil, err
	}

	lookup := firstNamespaceRemapLookup(m, order[0])

	out := &Mappings{
		Namespaces:   append([]string(nil), order...),
		Classes:      make([]MappedClass, len(m.Classes)),
		IsV2:         m.IsV2,
		IsExtended:   m.IsExtended,
		CompactedVer: m.CompactedVer,
	}
	for ci, c := range m.Classes {
		nc := MappedClass{
			Names:    permuteStrings(c.Names, idx),
			Comments: append([]string(nil), c.Comments...),
			Fields:   make([]MappedField, len(c.Fields)),
			Methods:  make([]MappedMethod, len(c.Methods)),
		}
		for fi, f := range c.Fields {
			nf := MappedField{Names: permuteStrings(f.Names, idx), Comments: append([]string(nil), f.Comments...)}
			if f.Desc != nil {
				d := MapType(*f.Desc, lookup)
				nf.Desc = &d
			}
			nc.Fields[fi] = nf
		}
		for mi, mm := range c.Methods {
			nm := MappedMethod{
				Names:    permuteStrings(mm.Names, idx),
				Comments: append([]string(nil), mm.Comments...),
				Desc:     MapMethodDesc(mm.Desc, lookup),
			}
			for _, p := range mm.Parameters {
				nm.Parameters = append(nm.Parameters, MappedParameter{Index: p.Index, Names: permuteStrings(p.Names, idx)})
			}
			for _, v := range mm.Variables {
				nm.Variables = append(nm.Variables, MappedLocal{Index: v.Index, StartOffset: v.StartOffset, LVTIndex: v.LVTIndex, Names: permuteStrings(v.Names, idx)})
			}
			nc.Methods[mi] = nm
		}
		out.Classes[ci] = nc
	}
	return out, nil
}

// firstNamespaceRemapLookup builds a map from m's current first-namespace
// class name to its name in newFirstNS, used to rewrite descriptors when
// the canonical (first) namespace changes.
func firstNamespaceRemapLookup(m *Mappings, newFirstNS string) map[string]string {
	idx := m.NamespaceIndex(newFirstNS)
	lookup := make(map[string]string, len(m.Classes))
	for _, c := range m.Classes {
		if idx >= 0 && idx < len(c.Names) && c.Names[idx] != "" {
			lookup[c.Names[0]] = c.Names[idx]
		} else {
			lookup[c.Names[0]] = c.Names[0]
		}
	}
	return lookup
}

// ExtractNamespaces is the (from, to) convenience wrapper around
// ReorderNamespaces([from, to]).
func ExtractNamespaces(m *Mappings, from, to string) (*Mappings, error) {
	return ReorderNamespaces(m, []string{from, to})
}

// FilterNamespaces keeps only the namespace columns whose label is in
// allowed. When allowDuplicates is false and a label appears more than once
// in m.Namespaces, only its first occurrence is kept.
func FilterNamespaces(m *Mappings, allowed map[string]bool, allowDuplicates bool) (*Mappings, error) {
	seen := make(map[string]bool)
	var keepIdx []int
	for i, ns := range m.Namespaces {
		if !allowed[ns] {
			continue
		}
		if !allowDuplicates && seen[ns] {
			continue
		}
		seen[ns] = true
		keepIdx = append(keepIdx, i)
	}

	out := &Mappings{
		Namespaces:   make([]string, len(keepIdx)),
		Classes:      make([]MappedClass, len(m.Classes)),
		IsV2:         m.IsV2,
		IsExtended:   m.IsExtended,
		CompactedVer: m.CompactedVer,
	}
	for i, p := range keepIdx {
		out.Namespaces[i] = m.Namespaces[p]
	}

	project := func(names []string) []string {
		r := make([]string, len(keepIdx))
		for i, p := range keepIdx {
			r[i] = names[p]
		}
		return r
	}

	for ci, c := range m.Classes {
		nc := MappedClass{Names: project(c.Names), Comments: append([]string(nil), c.Comments...)}
		for _, f := range c.Fields {
			nc.Fields = append(nc.Fields, MappedField{Names: project(f.Names), Comments: append([]string(nil), f.Comments...), Desc: f.Desc})
		}
		for _, mm := range c.Methods {
			nm := MappedMethod{Names: project(mm.Names), Comments: append([]string(nil), mm.Comments...), Desc: mm.Desc}
			for _, p := range mm.Parameters {
				nm.Parameters = append(nm.Parameters, MappedParameter{Index: p.Index, Names: project(p.Names)})
			}
			for _, v := range mm.Variables {
				nm.Variables = append(nm.Variables, MappedLocal{Index: v.Index, StartOffset: v.StartOffset, LVTIndex: v.LVTIndex, Names: project(v.Names)})
			}
			nc.Methods = append(nc.Methods, nm)
		}
		out.Classes[ci] = nc
	}
	return out, nil
}

// DeduplicateNamespaces is filter_namespaces(unique(namespaces), false).
func DeduplicateNamespaces(m *Mappings) (*Mappings, error) {
	allowed := make(map[string]bool, len(m.Namespaces))
	for _, ns := range m.Namespaces {
		allowed[ns] = true
	}
	return FilterNamespaces(m, allowed, false)
}

// MapClasses returns a new Mappings with fn applied to every class.
func MapClasses(m *Mappings, fn func(MappedClass) MappedClass) *Mappings {
	out := m.Clone()
	for i := range out.Classes {
		out.Classes[i] = fn(out.Classes[i])
	}
	return out
}

// FilterClasses returns a new Mappings keeping only classes for which pred
// returns true.
func FilterClasses(m *Mappings, pred func(MappedClass) bool) *Mappings {
	out := m.Clone()
	kept := out.Classes[:0]
	for _, c := range out.Classes {
		if pred(c) {
			kept = append(kept, c)
		}
	}
	out.Classes = kept
	return out
}

// RecoverFieldDescriptors fills in nil field descriptors by asking lookup
// for the field's declared type on the class (keyed by the field's
// first-namespace name); fields whose descriptor cannot be recovered are
// dropped.
func RecoverFieldDescriptors(m *Mappings, lookup func(ownerFirstNS, fieldFirstNS string) (desc string, ok bool)) *Mappings {
	out := m.Clone()
	for ci := range out.Classes {
		c := &out.Classes[ci]
		kept := c.Fields[:0]
		for _, f := range c.Fields {
			if f.Desc == nil {
				desc, ok := lookup(c.Names[0], f.Names[0])
				if !ok {
					continue
				}
				f.Desc = &desc
			}
			kept = append(kept, f)
		}
		c.Fields = kept
	}
	return out
}

// InheritanceProvider is the minimal surface remove_redundancy needs; the
// concrete implementation lives in package inherit and satisfies this
// interface structurally (kept here, rather than importing inherit, to
// avoid a package cycle — inherit depends on classfile/classpath, neither
// of which this package needs to know about).
type InheritanceProvider interface {
	// DirectParents returns the super class (if any, first) followed by
	// interfaces, in declared order.
	DirectParents(internalName string) []string
	// DeclaredMethods returns "name+desc" for methods declared directly on
	// internalName; when inheritableOnly, members that are PRIVATE, STATIC,
	// or FINAL are excluded.
	DeclaredMethods(internalName string, inheritableOnly bool) []string
}

// dataMethods are never kept by remove_redundancy even when they satisfy
// the "locally declared and not present on any super-type" rule.
var dataMethods = map[string]bool{
	"equals(Ljava/lang/Object;)Z":  true,
	"hashCode()I":                  true,
	"toString()Ljava/lang/String;": true,
}

func isDataMethod(nameAndDesc string, name string) bool {
	if name == "<init>" || name == "<clinit>" {
		return true
	}
	return dataMethods[nameAndDesc]
}

// RemoveRedundancy keeps only methods that are locally declared, not
// present (by name+desc) on any transitive super-type, and are not "data
// methods" (<init>, <clinit>, equals/hashCode/toString).
func RemoveRedundancy(m *Mappings, provider InheritanceProvider) *Mappings {
	out := m.Clone()
	for ci := range out.Classes {
		c := &out.Classes[ci]
		superSigs := linkedhashset.New()
		for _, parent := range allParents(provider, c.Names[0]) {
			for _, sig := range provider.DeclaredMethods(parent, true) {
				superSigs.Add(sig)
			}
		}

		kept := c.Methods[:0]
		for _, mm := range c.Methods {
			sig := mm.Names[0] + mm.Desc
			if isDataMethod(sig, mm.Names[0]) {
				continue
			}
			if superSigs.Contains(sig) {
				continue
			}
			kept = append(kept, mm)
		}
		c.Methods = kept
	}
	return out
}

// allParents performs the DFS walk of spec.md ยง4.5 using only DirectParents,
// deduplicating visited nodes.
func allParents(provider InheritanceProvider, start string) []string {
	seen := linkedhashset.New()
	var stack []string
	stack = append(stack, provider.DirectParents(start)...)
	var order []string
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == start || seen.Contains(n) {
			continue
		}
		seen.Add(n)
		order = append(order, n)
		stack = append(stack, provider.DirectParents(n)...)
	}
	return order
}
