package mapping

import "github.com/emirpasic/gods/sets/linkedhashset"

type nsSource struct {
	side int // 0 = self, 1 = other, 2 = intermediate key itself
	idx  int // namespace index on that side (ignored when side == 2)
}

// buildJoinLayout computes the output namespace order and, for each output
// position, where its value comes from (spec.md ยง4.4 "join").
func buildJoinLayout(self, other *Mappings, intermediate string) ([]string, []nsSource) {
	selfOrder := uniqueExcept(self.Namespaces, intermediate)
	otherOrder := uniqueExcept(other.Namespaces, intermediate)

	out := make([]string, 0, len(selfOrder)+1+len(otherOrder))
	src := make([]nsSource, 0, cap(out))

	for _, ns := range selfOrder {
		out = append(out, ns)
		src = append(src, nsSource{side: 0, idx: self.NamespaceIndex(ns)})
	}
	out = append(out, intermediate)
	src = append(src, nsSource{side: 2})
	for _, ns := range otherOrder {
		out = append(out, ns)
		src = append(src, nsSource{side: 1, idx: other.NamespaceIndex(ns)})
	}
	return out, src
}

func uniqueExcept(namespaces []string, except string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ns := range namespaces {
		if ns == except || seen[ns] {
			continue
		}
		seen[ns] = true
		out = append(out, ns)
	}
	return out
}

// namesFromSides resolves an output name tuple given the (possibly absent)
// name tuples from each side and the intermediate key, falling back to the
// intermediate key itself when one side lacks the entity.
func namesFromSides(selfNames, otherNames []string, key string, src []nsSource) []string {
	out := make([]string, len(src))
	for i, s := range src {
		switch s.side {
		case 2:
			out[i] = key
		case 0:
			if selfNames != nil && s.idx < len(selfNames) {
				out[i] = selfNames[s.idx]
			} else {
				out[i] = key
			}
		case 1:
			if otherNames != nil && s.idx < len(otherNames) {
				out[i] = otherNames[s.idx]
			} else {
				out[i] = key
			}
		}
	}
	return out
}

// Join aligns self and other by their name in the intermediate namespace
// (common to both) and merges their classes, fields, and methods.
func Join(self, other *Mappings, intermediate string, requireMatch bool) (*Mappings, error) {
	selfIdx := self.NamespaceIndex(intermediate)
	otherIdx := other.NamespaceIndex(intermediate)
	if selfIdx < 0 || otherIdx < 0 {
		return nil, errNamespace("join: intermediate namespace %q not present on both sides", intermediate)
	}

	outNamespaces, src := buildJoinLayout(self, other, intermediate)

	selfByKey := make(map[string]*MappedClass, len(self.Classes))
	for i := range self.Classes {
		selfByKey[self.Classes[i].Names[selfIdx]] = &self.Classes[i]
	}
	otherByKey := make(map[string]*MappedClass, len(other.Classes))
	for i := range other.Classes {
		otherByKey[other.Classes[i].Names[otherIdx]] = &other.Classes[i]
	}

	if requireMatch {
		if err := requireKeySetsEqual(selfByKey, otherByKey, "class"); err != nil {
			return nil, err
		}
	}

	order := linkedhashset.New()
	for k := range selfByKey {
		order.Add(k)
	}
	for k := range otherByKey {
		order.Add(k)
	}

	selfFirstOutIdx := indexOf(outNamespaces, self.Namespaces[0])
	otherFirstOutIdx := indexOf(outNamespaces, other.Namespaces[0])

	out := &Mappings{Namespaces: outNamespaces}
	for _, kv := range order.Values() {
		key := kv.(string)
		sc, sok := selfByKey[key]
		oc, ook := otherByKey[key]

		var selfNames, otherNames []string
		if sok {
			selfNames = sc.Names
		}
		if ook {
			otherNames = oc.Names
		}

		mc := MappedClass{Names: namesFromSides(selfNames, otherNames, key, src)}
		if sok {
			mc.Comments = append(mc.Comments, sc.Comments...)
		}
		if ook {
			mc.Comments = append(mc.Comments, oc.Comments...)
		}

		fields, err := joinFields(sc, oc, selfIdx, otherIdx, src, requireMatch)
		if err != nil {
			return nil, err
		}
		mc.Fields = fields

		methods, err := joinMethods(self, other, sc, oc, selfIdx, otherIdx, src, requireMatch)
		if err != nil {
			return nil, err
		}
		mc.Methods = methods

		out.Classes = append(out.Classes, mc)
	}

	// Rewrite descriptors to the output's first namespace.
	selfLookup := make(map[string]string)
	otherLookup := make(map[string]string)
	for _, c := range out.Classes {
		if selfFirstOutIdx >= 0 {
			selfLookup[c.Names[selfFirstOutIdx]] = c.Names[0]
		}
		if otherFirstOutIdx >= 0 {
			otherLookup[c.Names[otherFirstOutIdx]] = c.Names[0]
		}
	}
	for ci := range out.Classes {
		c := &out.Classes[ci]
		for fi := range c.Fields {
			f := &c.Fields[fi]
			if f.Desc == nil {
				continue
			}
			lookup := selfLookup
			if f.descFromOther {
				lookup = otherLookup
			}
			d := MapType(*f.Desc, lookup)
			f.Desc = &d
		}
		for mi := range c.Methods {
			mm := &c.Methods[mi]
			lookup := selfLookup
			if mm.descFromOther {
				lookup = otherLookup
			}
			mm.Desc = MapMethodDesc(mm.Desc, lookup)
		}
	}

	return out, nil
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

func requireKeySetsEqual[V any](a, b map[string]V, kind string) error {
	if len(a) != len(b) {
		return errInvariant("join: %s key sets differ (%d vs %d)", kind, len(a), len(b))
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return errInvariant("join: %s key %q missing on one side", kind, k)
		}
	}
	return nil
}

func joinFields(sc, oc *MappedClass, selfIdx, otherIdx int, src []nsSource, requireMatch bool) ([]MappedField, error) {
	if sc == nil && oc == nil {
		return nil, nil
	}
	selfFields := make(map[string]*MappedField)
	if sc != nil {
		for i := range sc.Fields {
			selfFields[sc.Fields[i].Names[selfIdx]] = &sc.Fields[i]
		}
	}
	otherFields := make(map[string]*MappedField)
	if oc != nil {
		for i := range oc.Fields {
			otherFields[oc.Fields[i].Names[otherIdx]] = &oc.Fields[i]
		}
	}
	if requireMatch {
		if err := requireKeySetsEqual(selfFields, otherFields, "field"); err != nil {
			return nil, err
		}
	}

	order := linkedhashset.New()
	if sc != nil {
		for i := range sc.Fields {
			order.Add(sc.Fields[i].Names[selfIdx])
		}
	}
	if oc != nil {
		for i := range oc.Fields {
			order.Add(oc.Fields[i].Names[otherIdx])
		}
	}

	var out []MappedField
	for _, kv := range order.Values() {
		key := kv.(string)
		sf := selfFields[key]
		of := otherFields[key]

		var selfNames, otherNames []string
		if sf != nil {
			selfNames = sf.Names
		}
		if of != nil {
			otherNames = of.Names
		}

		f := MappedField{Names: namesFromSides(selfNames, otherNames, key, src)}
		if sf != nil {
			f.Comments = append(f.Comments, sf.Comments...)
		}
		if of != nil {
			f.Comments = append(f.Comments, of.Comments...)
		}
		switch {
		case sf != nil && sf.Desc != nil:
			d := *sf.Desc
			f.Desc = &d
		case of != nil && of.Desc != nil:
			d := *of.Desc
			f.Desc = &d
			f.descFromOther = true
		}
		out = append(out, f)
	}
	return out, nil
}

func joinMethods(selfM, otherM *Mappings, sc, oc *MappedClass, selfIdx, otherIdx int, src []nsSource, requireMatch bool) ([]MappedMethod, error) {
	if sc == nil && oc == nil {
		return nil, nil
	}
	selfDescLookup := firstNamespaceRemapLookup(selfM, selfM.Namespaces[selfIdx])
	otherDescLookup := firstNamespaceRemapLookup(otherM, otherM.Namespaces[otherIdx])

	type key struct{ name, desc string }
	selfMethods := make(map[key]*MappedMethod)
	if sc != nil {
		for i := range sc.Methods {
			mm := &sc.Methods[i]
			k := key{mm.Names[selfIdx], MapMethodDesc(mm.Desc, selfDescLookup)}
			selfMethods[k] = mm
		}
	}
	otherMethods := make(map[key]*MappedMethod)
	if oc != nil {
		for i := range oc.Methods {
			mm := &oc.Methods[i]
			k := key{mm.Names[otherIdx], MapMethodDesc(mm.Desc, otherDescLookup)}
			otherMethods[k] = mm
		}
	}

	if requireMatch {
		if len(selfMethods) != len(otherMethods) {
			return nil, errInvariant("join: method key sets differ (%d vs %d)", len(selfMethods), len(otherMethods))
		}
		for k := range selfMethods {
			if _, ok := otherMethods[k]; !ok {
				return nil, errInvariant("join: method key %+v missing on one side", k)
			}
		}
	}

	order := linkedhashset.New()
	var orderedKeys []key
	if sc != nil {
		for i := range sc.Methods {
			mm := &sc.Methods[i]
			k := key{mm.Names[selfIdx], MapMethodDesc(mm.Desc, selfDescLookup)}
			if !order.Contains(k) {
				order.Add(k)
				orderedKeys = append(orderedKeys, k)
			}
		}
	}
	if oc != nil {
		for i := range oc.Methods {
			mm := &oc.Methods[i]
			k := key{mm.Names[otherIdx], MapMethodDesc(mm.Desc, otherDescLookup)}
			if !order.Contains(k) {
				order.Add(k)
				orderedKeys = append(orderedKeys, k)
			}
		}
	}

	var out []MappedMethod
	for _, k := range orderedKeys {
		sm := selfMethods[k]
		om := otherMethods[k]

		var selfNames, otherNames []string
		if sm != nil {
			selfNames = sm.Names
		}
		if om != nil {
			otherNames = om.Names
		}

		mm := MappedMethod{Names: namesFromSides(selfNames, otherNames, k.name, src)}
		if sm != nil {
			mm.Comments = append(mm.Comments, sm.Comments...)
		}
		if om != nil {
			mm.Comments = append(mm.Comments, om.Comments...)
		}
		switch {
		case sm != nil:
			mm.Desc = sm.Desc
		case om != nil:
			mm.Desc = om.Desc
			mm.descFromOther = true
		}
		out = append(out, mm)
	}
	return out, nil
}

// JoinAll left-folds Join over a non-empty sequence of Mappings; an empty
// sequence yields an empty Mappings with no namespaces.
func JoinAll(all []*Mappings, intermediate string, requireMatch bool) (*Mappings, error) {
	if len(all) == 0 {
		return &Mappings{}, nil
	}
	acc := all[0]
	for _, next := range all[1:] {
		joined, err := Join(acc, next, intermediate, requireMatch)
		if err != nil {
			return nil, err
		}
		acc = joined
	}
	return acc, nil
}
