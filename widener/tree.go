package widener

// ClassEntry is one owner's aggregated view in a Tree (ยง4.9's to_tree()):
// its own declared mask plus every field/method mask recorded against it,
// and the two derived masks Application actually consults.
type ClassEntry struct {
	Owner      string
	Mask       AccessMask
	Fields     map[MemberKey]AccessMask
	Methods    map[MemberKey]AccessMask
	Propagated AccessMask
	Total      AccessMask
}

// Tree groups a widener's records by owner.
type Tree map[string]*ClassEntry

func (t Tree) entry(owner string) *ClassEntry {
	e, ok := t[owner]
	if !ok {
		e = &ClassEntry{
			Owner:   owner,
			Fields:  make(map[MemberKey]AccessMask),
			Methods: make(map[MemberKey]AccessMask),
		}
		t[owner] = e
	}
	return e
}

// ToTree groups w's members by owner. propagated is the union of every
// member mask on a class minus MUTABLE (widening a member implies the
// class itself must be accessible, but widening a field's mutability
// says nothing about the class needing to be public); total is the
// class's own mask combined with propagated.
func ToTree(w *AccessWidener) Tree {
	t := make(Tree)
	for k, mask := range w.Classes {
		t.entry(k.Owner).Mask |= mask
	}
	for k, mask := range w.Fields {
		e := t.entry(k.Owner)
		e.Fields[k] |= mask
	}
	for k, mask := range w.Methods {
		e := t.entry(k.Owner)
		e.Methods[k] |= mask
	}
	for _, e := range t {
		var propagated AccessMask
		for _, mask := range e.Fields {
			propagated |= mask
		}
		for _, mask := range e.Methods {
			propagated |= mask
		}
		propagated &^= Mutable
		e.Propagated = propagated
		e.Total = e.Mask | propagated
	}
	return t
}
