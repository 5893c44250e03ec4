// Package remap implements the inheritance-aware name remapper (ยง4.7):
// building a flat key->replacement map from a Mappings value and using
// it, together with an inheritance provider, to resolve class/field/
// method names during whole-class rewriting.
package remap

import "github.com/swind/go-jvmmap/mapping"

// AsAsmMapping builds the flat key->replacement map a LoaderSimpleRemapper
// is configured with: classes keyed by owner, fields by "owner.name",
// methods by "owner.name(args)ret" where the descriptor is rewritten from
// the mappings' first-namespace class names into from-namespace class
// names (ยง9(c) — this matters whenever from isn't namespaces[0]).
// Returns an empty map when from == to, and omits any entry whose source
// and destination strings are identical.
func AsAsmMapping(m *mapping.Mappings, from, to string, includeMethods, includeFields bool) (map[string]string, error) {
	out := make(map[string]string)
	if from == to {
		return out, nil
	}

	fromIdx := m.NamespaceIndex(from)
	if fromIdx < 0 {
		return nil, namespaceError(from)
	}
	toIdx := m.NamespaceIndex(to)
	if toIdx < 0 {
		return nil, namespaceError(to)
	}

	// firstToFrom maps a class's first-namespace name to its from-namespace
	// name, used to normalize method descriptors (ยง9(c)): method
	// descriptors are always recorded in the mappings' first namespace.
	firstToFrom := make(map[string]string, len(m.Classes))
	for _, c := range m.Classes {
		firstToFrom[c.Names[0]] = c.Names[fromIdx]
	}

	for _, c := range m.Classes {
		ownerFrom := c.Names[fromIdx]
		ownerTo := c.Names[toIdx]
		if ownerFrom != ownerTo {
			out[ownerFrom] = ownerTo
		}

		if includeFields {
			for _, f := range c.Fields {
				nameFrom := f.Names[fromIdx]
				nameTo := f.Names[toIdx]
				if nameFrom != nameTo {
					out[ownerFrom+"."+nameFrom] = nameTo
				}
			}
		}

		if includeMethods {
			for _, mm := range c.Methods {
				nameFrom := mm.Names[fromIdx]
				nameTo := mm.Names[toIdx]
				if nameFrom == nameTo {
					continue
				}
				descFromNormalized := mapping.MapMethodDesc(mm.Desc, firstToFrom)
				out[ownerFrom+"."+nameFrom+descFromNormalized] = nameTo
			}
		}
	}
	return out, nil
}

func namespaceError(ns string) error {
	return mapping.NewNamespaceError("namespace %q not found", ns)
}
