package widener

import (
	"fmt"
	"io"
	"sort"
)

// Write serializes w deterministically (ยง4.9 Serialization): the
// header, then one line per (class, mask bit), (field, mask bit),
// (method, mask bit), classes before fields before methods, each
// group sorted by key so re-serializing the same model always
// produces byte-identical output.
func Write(w io.Writer, aw *AccessWidener) error {
	if _, err := fmt.Fprintf(w, "accessWidener\tv%d\t%s\n", aw.Version, aw.Namespace); err != nil {
		return err
	}

	classKeys := make([]ClassKey, 0, len(aw.Classes))
	for k := range aw.Classes {
		classKeys = append(classKeys, k)
	}
	sort.Slice(classKeys, func(i, j int) bool { return classKeys[i].Owner < classKeys[j].Owner })
	for _, k := range classKeys {
		for _, bit := range accessOrder(aw.Classes[k]) {
			if _, err := fmt.Fprintf(w, "%s\tclass\t%s\n", accessName(bit), k.Owner); err != nil {
				return err
			}
		}
	}

	if err := writeMembers(w, "field", aw.Fields); err != nil {
		return err
	}
	if err := writeMembers(w, "method", aw.Methods); err != nil {
		return err
	}
	return nil
}

func writeMembers(w io.Writer, kind string, members map[MemberKey]AccessMask) error {
	keys := make([]MemberKey, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Owner != keys[j].Owner {
			return keys[i].Owner < keys[j].Owner
		}
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Desc < keys[j].Desc
	})
	for _, k := range keys {
		for _, bit := range accessOrder(members[k]) {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", accessName(bit), kind, k.Owner, k.Name, k.Desc); err != nil {
				return err
			}
		}
	}
	return nil
}

// accessOrder fixes a deterministic bit order for the multi-line
// expansion of a combined mask.
func accessOrder(mask AccessMask) []AccessMask {
	var out []AccessMask
	for _, bit := range []AccessMask{Accessible, Extendable, Mutable} {
		if mask.Has(bit) {
			out = append(out, bit)
		}
	}
	return out
}

func accessName(bit AccessMask) string {
	switch bit {
	case Accessible:
		return "accessible"
	case Extendable:
		return "extendable"
	case Mutable:
		return "mutable"
	default:
		return "accessible"
	}
}
