package mapping

// MappedParameter is a method parameter's per-namespace name tuple.
type MappedParameter struct {
	Index int
	Names []string
}

// MappedLocal is a local-variable entry's per-namespace name tuple.
type MappedLocal struct {
	Index       int
	StartOffset int
	LVTIndex    int // < 0 means unset
	Names       []string
}

// MappedField is a field's per-namespace name tuple plus comments and an
// optional descriptor (nil when the owning format permits unknown field
// types and descriptor recovery has not yet run).
type MappedField struct {
	Names    []string
	Comments []string
	Desc     *string

	// descFromOther is join's internal bookkeeping: which side's
	// first-namespace the Desc is still expressed in, before the final
	// descriptor rewrite pass. Always false outside of Join.
	descFromOther bool
}

// MappedMethod is a method's per-namespace name tuple plus comments, its
// descriptor (always known in the first namespace per invariant 2), and its
// parameters/locals.
type MappedMethod struct {
	Names      []string
	Comments   []string
	Desc       string
	Parameters []MappedParameter
	Variables  []MappedLocal

	// descFromOther mirrors MappedField.descFromOther for join's bookkeeping.
	descFromOther bool
}

// MappedClass is a class's per-namespace name tuple plus its members.
type MappedClass struct {
	Names    []string
	Comments []string
	Fields   []MappedField
	Methods  []MappedMethod
}

// Mappings is an immutable snapshot of a namespace-qualified name mapping.
// Transformations never mutate a Mappings value in place; they return a new
// one.
type Mappings struct {
	Namespaces []string
	Classes    []MappedClass

	// Format-specific metadata, set by the codec that produced this value
	// and otherwise zero. None of it participates in value equality beyond
	// what the codec that reads it back cares about.
	IsV2         bool              // Tiny v2 / TSRG v2
	IsExtended   bool              // XSRG
	HeaderProps  map[string]string // Tiny v2 metadata key/value pairs
	CompactedVer int               // Compacted format version (1 or 2)
}

// NamespaceIndex returns the index of ns in m.Namespaces, or -1.
func (m *Mappings) NamespaceIndex(ns string) int {
	for i, n := range m.Namespaces {
		if n == ns {
			return i
		}
	}
	return -1
}

// validateNames checks invariant 1 (|names| == |namespaces|, no empty first
// namespace) for one entity's name tuple.
func validateNames(kind string, names []string, nsCount int) error {
	if len(names) != nsCount {
		return errInvariant("%s: expected %d namespace names, got %d", kind, nsCount, len(names))
	}
	if nsCount > 0 && names[0] == "" {
		return errInvariant("%s: empty name in first namespace", kind)
	}
	return nil
}

// Validate checks every invariant 1/3/4 enumerated in spec.md ยง3 that is
// format-independent. requireFieldDesc implements invariant 3 (formats that
// forbid null field descriptors).
func (m *Mappings) Validate(requireFieldDesc bool) error {
	nsCount := len(m.Namespaces)
	for _, c := range m.Classes {
		if err := validateNames("class", c.Names, nsCount); err != nil {
			return err
		}
		for _, f := range c.Fields {
			if err := validateNames("field", f.Names, nsCount); err != nil {
				return err
			}
			if requireFieldDesc && f.Desc == nil {
				return errInvariant("field %v: missing required descriptor", f.Names)
			}
		}
		for _, mm := range c.Methods {
			if err := validateNames("method", mm.Names, nsCount); err != nil {
				return err
			}
			for _, p := range mm.Parameters {
				if err := validateNames("parameter", p.Names, nsCount); err != nil {
					return err
				}
			}
			for _, v := range mm.Variables {
				if err := validateNames("local", v.Names, nsCount); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// materializeNames implements the "hole fix-up"-adjacent name-elision
// shorthand shared by Tiny v2/Compacted: an empty name at any position i
// stands for the previous entity's name at i, carried in prev.
func materializeNames(names []string, prev []string) {
	for i := range names {
		if names[i] == "" && i < len(prev) {
			names[i] = prev[i]
		}
	}
}

// cloneClass deep-copies a MappedClass so transformations can mutate the
// copy freely without aliasing the source Mappings.
func cloneClass(c MappedClass) MappedClass {
	out := MappedClass{
		Names:    append([]string(nil), c.Names...),
		Comments: append([]string(nil), c.Comments...),
		Fields:   make([]MappedField, len(c.Fields)),
		Methods:  make([]MappedMethod, len(c.Methods)),
	}
	for i, f := range c.Fields {
		out.Fields[i] = cloneField(f)
	}
	for i, mm := range c.Methods {
		out.Methods[i] = cloneMethod(mm)
	}
	return out
}

func cloneField(f MappedField) MappedField {
	out := MappedField{
		Names:         append([]string(nil), f.Names...),
		Comments:      append([]string(nil), f.Comments...),
		descFromOther: f.descFromOther,
	}
	if f.Desc != nil {
		d := *f.Desc
		out.Desc = &d
	}
	return out
}

func cloneMethod(mm MappedMethod) MappedMethod {
	out := MappedMethod{
		Names:      append([]string(nil), mm.Names...),
		Comments:   append([]string(nil), mm.Comments...),
		Desc:          mm.Desc,
		Parameters:    make([]MappedParameter, len(mm.Parameters)),
		Variables:     make([]MappedLocal, len(mm.Variables)),
		descFromOther: mm.descFromOther,
	}
	for i, p := range mm.Parameters {
		out.Parameters[i] = MappedParameter{Index: p.Index, Names: append([]string(nil), p.Names...)}
	}
	for i, v := range mm.Variables {
		out.Variables[i] = MappedLocal{
			Index:       v.Index,
			StartOffset: v.StartOffset,
			LVTIndex:    v.LVTIndex,
			Names:       append([]string(nil), v.Names...),
		}
	}
	return out
}

// Clone returns a deep copy of m.
func (m *Mappings) Clone() *Mappings {
	out := &Mappings{
		Namespaces:   append([]string(nil), m.Namespaces...),
		Classes:      make([]MappedClass, len(m.Classes)),
		IsV2:         m.IsV2,
		IsExtended:   m.IsExtended,
		CompactedVer: m.CompactedVer,
	}
	for i, c := range m.Classes {
		out.Classes[i] = cloneClass(c)
	}
	if m.HeaderProps != nil {
		out.HeaderProps = make(map[string]string, len(m.HeaderProps))
		for k, v := range m.HeaderProps {
			out.HeaderProps[k] = v
		}
	}
	return out
}

// FirstNamespaceClassNameMap returns a map from the first-namespace class
// name to that class's full MappedClass, for descriptor-rewrite lookups and
// join keying.
func (m *Mappings) FirstNamespaceClassNameMap() map[string]*MappedClass {
	out := make(map[string]*MappedClass, len(m.Classes))
	for i := range m.Classes {
		out[m.Classes[i].Names[0]] = &m.Classes[i]
	}
	return out
}
