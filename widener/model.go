// Package widener implements the access widener (ยง4.9): a small text
// format recording which classes/fields/methods should be widened
// (made accessible, made extendable, made mutable), the algebra to
// combine multiple widener files, remapping a widener across namespaces,
// and applying the combined result to class files.
package widener

// AccessMask is a bitmask of the three widening operations ยง4.9 names;
// duplicates on the same key OR together rather than conflict, since
// "make this accessible" twice is just "make this accessible".
type AccessMask uint8

const (
	Accessible AccessMask = 1 << iota
	Extendable
	Mutable
)

func (m AccessMask) Has(bit AccessMask) bool { return m&bit != 0 }

// ClassKey identifies a class entry by its internal name.
type ClassKey struct{ Owner string }

// MemberKey identifies a field or method entry by owner/name/descriptor.
type MemberKey struct{ Owner, Name, Desc string }

// AccessWidener is a parsed widener: version, namespace, and the three
// key->mask tables ยง4.9's Model describes. Never mutated in place once
// built — Combine returns a new value, and Remap returns a new value or,
// when the namespace already matches, w itself (ยง5's "no widener is
// mutated in place").
type AccessWidener struct {
	Version   int
	Namespace string
	Classes   map[ClassKey]AccessMask
	Fields    map[MemberKey]AccessMask
	Methods   map[MemberKey]AccessMask
}

// New returns an empty widener for namespace at version.
func New(version int, namespace string) *AccessWidener {
	return &AccessWidener{
		Version:   version,
		Namespace: namespace,
		Classes:   make(map[ClassKey]AccessMask),
		Fields:    make(map[MemberKey]AccessMask),
		Methods:   make(map[MemberKey]AccessMask),
	}
}

func (w *AccessWidener) addClass(owner string, mask AccessMask) {
	w.Classes[ClassKey{Owner: owner}] |= mask
}

func (w *AccessWidener) addField(owner, name, desc string, mask AccessMask) {
	w.Fields[MemberKey{Owner: owner, Name: name, Desc: desc}] |= mask
}

func (w *AccessWidener) addMethod(owner, name, desc string, mask AccessMask) {
	w.Methods[MemberKey{Owner: owner, Name: name, Desc: desc}] |= mask
}
