package mapping

import (
	"strconv"

	"github.com/zeebo/xxh3"
)

// StructuralHash returns a structural hash of m: two Mappings values that
// are semantically equal (same namespaces, same classes/members in the same
// order) hash identically, independent of how they were parsed. Grounded on
// the pack's content-hash idiom (xxh3.New() + io.Copy over file bytes in
// DeusData-codebase-memory-mcp/pipeline.go) adapted from "hash a file" to
// "hash a deterministic encoding of a mappings value".
func (m *Mappings) StructuralHash() uint64 {
	h := xxh3.New()
	writeString := func(s string) {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}
	writeStrings := func(ss []string) {
		writeString(strconv.Itoa(len(ss)))
		for _, s := range ss {
			writeString(s)
		}
	}

	writeStrings(m.Namespaces)
	writeString(strconv.Itoa(len(m.Classes)))
	for _, c := range m.Classes {
		writeStrings(c.Names)
		writeString(strconv.Itoa(len(c.Fields)))
		for _, f := range c.Fields {
			writeStrings(f.Names)
			if f.Desc != nil {
				writeString(*f.Desc)
			} else {
				writeString("<nil>")
			}
		}
		writeString(strconv.Itoa(len(c.Methods)))
		for _, mm := range c.Methods {
			writeStrings(mm.Names)
			writeString(mm.Desc)
		}
	}

	return h.Sum64()
}

// ClassStructuralHash hashes a single class's name tuple; unlike
// StructuralHash it does not cover the class's fields or methods.
func ClassStructuralHash(c *MappedClass) uint64 {
	h := xxh3.New()
	for _, n := range c.Names {
		_, _ = h.WriteString(n)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
