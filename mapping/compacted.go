package mapping

import (
	"bufio"
	"encoding/binary"
	"io"
	"sort"
	"strings"
)

// CompactedFormat ("ACMF") is a binary mapping encoding for cases where
// text parsing overhead matters: varint-prefixed strings, a v2 prefix
// dictionary of up to 31 common owner-package prefixes, and one-byte
// descriptor shortcuts for the handful of reference types that dominate
// real mapping sets. It is binary and never auto-detected from text
// (spec.md ยง4.3), so it intentionally does not implement the Format
// interface — Parse/WriteBinary operate on raw bytes, not text lines.
type CompactedFormat struct{}

func (CompactedFormat) Name() string { return "compacted" }

var compactedMagic = [4]byte{'A', 'C', 'M', 'F'}

const maxCompactedDictSize = 31

// descriptor shortcuts for the reference types that dominate real-world
// mapping sets, saving the varint-length + bytes of a literal descriptor.
var compactedDescShortcuts = map[byte]string{
	'A': "Ljava/lang/Object;",
	'G': "Ljava/lang/String;",
	'R': "Ljava/util/List;",
}

var compactedDescToShortcut = func() map[string]byte {
	out := make(map[string]byte, len(compactedDescShortcuts))
	for b, d := range compactedDescShortcuts {
		out[d] = b
	}
	return out
}()

func (CompactedFormat) Parse(r io.Reader) (*Mappings, error) {
	br := bufio.NewReader(r)

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, errMalformed(0, "compacted: failed reading magic: %v", err)
	}
	if magic != compactedMagic {
		return nil, errMalformed(0, "compacted: bad magic %q", magic)
	}
	version, err := br.ReadByte()
	if err != nil {
		return nil, errMalformed(0, "compacted: failed reading version: %v", err)
	}
	if version != 1 && version != 2 {
		return nil, errMalformed(0, "compacted: unsupported version %d", version)
	}

	nsCount, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, errMalformed(0, "compacted: failed reading namespace count: %v", err)
	}
	namespaces := make([]string, nsCount)
	for i := range namespaces {
		s, err := readCompactedString(br)
		if err != nil {
			return nil, errMalformed(0, "compacted: failed reading namespace %d: %v", i, err)
		}
		namespaces[i] = s
	}

	var dict []string
	if version == 2 {
		dictCount, err := br.ReadByte()
		if err != nil {
			return nil, errMalformed(0, "compacted: failed reading dictionary size: %v", err)
		}
		if dictCount > maxCompactedDictSize {
			return nil, errMalformed(0, "compacted: dictionary size %d exceeds max %d", dictCount, maxCompactedDictSize)
		}
		dict = make([]string, dictCount)
		for i := range dict {
			s, err := readCompactedString(br)
			if err != nil {
				return nil, errMalformed(0, "compacted: failed reading dictionary entry %d: %v", i, err)
			}
			dict[i] = s
		}
	}

	classCount, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, errMalformed(0, "compacted: failed reading class count: %v", err)
	}

	m := &Mappings{Namespaces: namespaces, CompactedVer: int(version)}
	m.Classes = make([]MappedClass, classCount)
	var prevClassNames []string
	for ci := range m.Classes {
		names, err := readCompactedNameTuple(br, dict, int(nsCount), prevClassNames)
		if err != nil {
			return nil, errMalformed(0, "compacted: class %d: %v", ci, err)
		}
		prevClassNames = names
		c := MappedClass{Names: names}

		fieldCount, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, errMalformed(0, "compacted: class %d: failed reading field count: %v", ci, err)
		}
		if fieldCount > 0 {
			c.Fields = make([]MappedField, fieldCount)
		}
		var prevFieldNames []string
		for fi := range c.Fields {
			names, err := readCompactedNameTuple(br, dict, int(nsCount), prevFieldNames)
			if err != nil {
				return nil, errMalformed(0, "compacted: class %d field %d: %v", ci, fi, err)
			}
			prevFieldNames = names
			desc, err := readCompactedDesc(br)
			if err != nil {
				return nil, errMalformed(0, "compacted: class %d field %d: %v", ci, fi, err)
			}
			c.Fields[fi] = MappedField{Names: names, Desc: desc}
		}

		methodCount, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, errMalformed(0, "compacted: class %d: failed reading method count: %v", ci, err)
		}
		if methodCount > 0 {
			c.Methods = make([]MappedMethod, methodCount)
		}
		var prevMethodNames []string
		for mi := range c.Methods {
			names, err := readCompactedNameTuple(br, dict, int(nsCount), prevMethodNames)
			if err != nil {
				return nil, errMalformed(0, "compacted: class %d method %d: %v", ci, mi, err)
			}
			prevMethodNames = names
			desc, err := readCompactedString(br)
			if err != nil {
				return nil, errMalformed(0, "compacted: class %d method %d: failed reading descriptor: %v", ci, mi, err)
			}
			c.Methods[mi] = MappedMethod{Names: names, Desc: desc}
		}

		m.Classes[ci] = c
	}
	return m, nil
}

func readCompactedString(r io.ByteReader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	for i := range buf {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		buf[i] = b
	}
	return string(buf), nil
}

// readCompactedNameTuple reads one name per namespace: a selector byte of
// 0 means a literal string follows; 1..31 means "dict[selector-1] + literal
// suffix". prev is the previous entity's name tuple, used for the Tiny-v2-
// style name-elision shorthand (an empty literal at position i means
// "same as prev[i]").
func readCompactedNameTuple(r *bufio.Reader, dict []string, nsCount int, prev []string) ([]string, error) {
	names := make([]string, nsCount)
	for i := 0; i < nsCount; i++ {
		sel, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		suffix, err := readCompactedString(r)
		if err != nil {
			return nil, err
		}
		switch {
		case sel == 0:
			names[i] = suffix
		case int(sel) <= len(dict):
			names[i] = dict[sel-1] + suffix
		default:
			return nil, errMalformed(0, "compacted: dictionary selector %d out of range (dict size %d)", sel, len(dict))
		}
	}
	materializeNames(names, prev)
	return names, nil
}

func readCompactedDesc(r *bufio.Reader) (*string, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	if tag == 1 {
		s, err := readCompactedString(r)
		if err != nil {
			return nil, err
		}
		return &s, nil
	}
	if d, ok := compactedDescShortcuts[tag]; ok {
		return &d, nil
	}
	return nil, errMalformed(0, "compacted: unknown descriptor tag %d", tag)
}

// WriteBinary serializes m into the compacted binary encoding, building a
// frequency-scored prefix dictionary of up to 31 owner-package prefixes
// when version is 2.
func (CompactedFormat) WriteBinary(m *Mappings, version int) ([]byte, error) {
	if version != 1 && version != 2 {
		return nil, errInvariant("compacted: unsupported version %d", version)
	}
	var buf []byte
	buf = append(buf, compactedMagic[:]...)
	buf = append(buf, byte(version))
	buf = appendUvarint(buf, uint64(len(m.Namespaces)))
	for _, ns := range m.Namespaces {
		buf = appendCompactedString(buf, ns)
	}

	var dict []string
	if version == 2 {
		dict = buildCompactedDictionary(m)
		buf = append(buf, byte(len(dict)))
		for _, d := range dict {
			buf = appendCompactedString(buf, d)
		}
	}

	buf = appendUvarint(buf, uint64(len(m.Classes)))
	for _, c := range m.Classes {
		buf = appendCompactedNameTuple(buf, c.Names, dict)
		buf = appendUvarint(buf, uint64(len(c.Fields)))
		for _, f := range c.Fields {
			buf = appendCompactedNameTuple(buf, f.Names, dict)
			buf = appendCompactedDesc(buf, f.Desc)
		}
		buf = appendUvarint(buf, uint64(len(c.Methods)))
		for _, mm := range c.Methods {
			buf = appendCompactedNameTuple(buf, mm.Names, dict)
			buf = appendCompactedString(buf, mm.Desc)
		}
	}
	return buf, nil
}

// buildCompactedDictionary scores candidate owner-package prefixes (every
// name's slash-delimited directory component) by how many times they
// recur across the mapping set and keeps the top maxCompactedDictSize.
func buildCompactedDictionary(m *Mappings) []string {
	freq := make(map[string]int)
	note := func(name string) {
		if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
			freq[name[:idx+1]]++
		}
	}
	for _, c := range m.Classes {
		for _, n := range c.Names {
			note(n)
		}
		for _, f := range c.Fields {
			for _, n := range f.Names {
				note(n)
			}
		}
		for _, mm := range c.Methods {
			for _, n := range mm.Names {
				note(n)
			}
		}
	}
	type scored struct {
		prefix string
		count  int
	}
	var candidates []scored
	for p, n := range freq {
		if n > 1 {
			candidates = append(candidates, scored{p, n})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].prefix < candidates[j].prefix
	})
	if len(candidates) > maxCompactedDictSize {
		candidates = candidates[:maxCompactedDictSize]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.prefix
	}
	return out
}

func appendCompactedNameTuple(buf []byte, names []string, dict []string) []byte {
	for _, name := range names {
		sel := 0
		suffix := name
		for i, d := range dict {
			if strings.HasPrefix(name, d) {
				sel = i + 1
				suffix = name[len(d):]
				break
			}
		}
		buf = append(buf, byte(sel))
		buf = appendCompactedString(buf, suffix)
	}
	return buf
}

func appendCompactedDesc(buf []byte, desc *string) []byte {
	if desc == nil {
		return append(buf, 0)
	}
	if tag, ok := compactedDescToShortcut[*desc]; ok {
		return append(buf, tag)
	}
	buf = append(buf, 1)
	return appendCompactedString(buf, *desc)
}

func appendCompactedString(buf []byte, s string) []byte {
	buf = appendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}
