package mapping

import (
	"io"
	"strconv"
	"strings"
)

// TSRGv1Format is SRG's indentation-based two-namespace shape: an
// unindented "old new" class line followed by tab-indented "old new" field
// lines and "old desc new" method lines, defaulting to the [obf, srg]
// namespace pair (spec.md ยง9(a)).
type TSRGv1Format struct{}

func (TSRGv1Format) Name() string { return "tsrg" }

// Detect has the weakness spec.md ยง9(a) calls out: a TSRG v1 class line
// ("old new") is shaped exactly like a CSRG class line, so Detect only
// looks for a tab-indented line following it. Since CSRGFormat.Detect
// always returns false and never competes for this input, the ambiguity
// never actually causes a misdetection in ยง4.3's fixed detection order —
// it just means a lone "old new" line with no member lines below it will
// not be recognized as TSRG v1.
func (TSRGv1Format) Detect(data string) bool {
	lines := splitAllLines(data)
	firstIdx := -1
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			firstIdx = i
			break
		}
	}
	if firstIdx < 0 {
		return false
	}
	if len(strings.Fields(lines[firstIdx])) != 2 {
		return false
	}
	if indentDepth(lines[firstIdx]) != 0 {
		return false
	}
	for _, l := range lines[firstIdx+1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		return indentDepth(l) == 1
	}
	return false
}

func (TSRGv1Format) Parse(r io.Reader) (*Mappings, error) {
	return parseTSRGv1(r)
}

func parseTSRGv1(r io.Reader) (*Mappings, error) {
	src := newLineSource(r)
	m := &Mappings{Namespaces: []string{"obf", "srg"}}

	var cur *MappedClass
	for {
		raw, ok := src.NextRaw()
		if !ok {
			break
		}
		depth := indentDepth(raw)
		fields := strings.Fields(raw)
		switch depth {
		case 0:
			if len(fields) != 2 {
				return nil, errMalformed(src.LineNo(), "tsrg v1: class line expected 2 fields, got %d", len(fields))
			}
			m.Classes = append(m.Classes, MappedClass{Names: []string{fields[0], fields[1]}})
			cur = &m.Classes[len(m.Classes)-1]
		case 1:
			if cur == nil {
				return nil, errMalformed(src.LineNo(), "tsrg v1: member line before any class line")
			}
			switch len(fields) {
			case 2:
				cur.Fields = append(cur.Fields, MappedField{Names: []string{fields[0], fields[1]}})
			case 3:
				cur.Methods = append(cur.Methods, MappedMethod{Names: []string{fields[0], fields[2]}, Desc: fields[1]})
			default:
				return nil, errMalformed(src.LineNo(), "tsrg v1: member line expected 2 or 3 fields, got %d", len(fields))
			}
		default:
			return nil, errMalformed(src.LineNo(), "tsrg v1: unexpected indent depth %d", depth)
		}
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func (TSRGv1Format) Write(m *Mappings) ([]string, error) {
	if len(m.Namespaces) != 2 {
		return nil, errInvariant("tsrg v1: requires exactly 2 namespaces, got %d", len(m.Namespaces))
	}
	var lines []string
	for _, c := range m.Classes {
		lines = append(lines, c.Names[0]+" "+c.Names[1])
		for _, f := range c.Fields {
			lines = append(lines, "\t"+f.Names[0]+" "+f.Names[1])
		}
		for _, mm := range c.Methods {
			lines = append(lines, "\t"+mm.Names[0]+" "+mm.Desc+" "+mm.Names[1])
		}
	}
	return lines, nil
}

// TSRGv2Format extends TSRG v1 to an arbitrary namespace count, with a
// "tsrg2 <namespaces...>" header, per-class member lines carrying one name
// per target namespace, method descriptors on indent-1 lines, and
// indent-2 parameter lines ("index name...").
type TSRGv2Format struct{}

func (TSRGv2Format) Name() string { return "tsrg2" }

func (TSRGv2Format) Detect(data string) bool {
	line, ok := firstNonEmptyLine(splitAllLines(data))
	if !ok {
		return false
	}
	fields := strings.Fields(line)
	return len(fields) >= 2 && fields[0] == "tsrg2"
}

func (TSRGv2Format) Parse(r io.Reader) (*Mappings, error) {
	src := newLineSource(r)

	header, ok := src.Next()
	if !ok {
		return nil, errMalformed(src.LineNo(), "tsrg v2: empty input")
	}
	headerFields := strings.Fields(header)
	if len(headerFields) < 2 || headerFields[0] != "tsrg2" {
		return nil, errMalformed(src.LineNo(), "tsrg v2: expected \"tsrg2 <namespaces...>\" header")
	}
	m := &Mappings{Namespaces: headerFields[1:], IsV2: true}
	nsCount := len(m.Namespaces)

	var cur *MappedClass
	var curMethod *MappedMethod

	for {
		raw, ok := src.NextRaw()
		if !ok {
			break
		}
		depth := indentDepth(raw)
		fields := strings.Fields(raw)
		switch depth {
		case 0:
			if len(fields) != nsCount {
				return nil, errMalformed(src.LineNo(), "tsrg v2: class line expected %d fields, got %d", nsCount, len(fields))
			}
			m.Classes = append(m.Classes, MappedClass{Names: fields})
			cur = &m.Classes[len(m.Classes)-1]
			curMethod = nil
		case 1:
			if cur == nil {
				return nil, errMalformed(src.LineNo(), "tsrg v2: member line before any class line")
			}
			if len(fields) > 0 && isMethodDescriptorToken(fields[0]) {
				return nil, errMalformed(src.LineNo(), "tsrg v2: method line missing name before descriptor")
			}
			if len(fields) >= 2 && isMethodDescriptorToken(fields[1]) {
				if len(fields) != 1+1+nsCount-1 {
					return nil, errMalformed(src.LineNo(), "tsrg v2: method line field count mismatch")
				}
				names := make([]string, nsCount)
				names[0] = fields[0]
				copy(names[1:], fields[2:])
				cur.Methods = append(cur.Methods, MappedMethod{Names: names, Desc: fields[1]})
				curMethod = &cur.Methods[len(cur.Methods)-1]
			} else {
				if len(fields) != nsCount {
					return nil, errMalformed(src.LineNo(), "tsrg v2: field line expected %d fields, got %d", nsCount, len(fields))
				}
				cur.Fields = append(cur.Fields, MappedField{Names: fields})
				curMethod = nil
			}
		case 2:
			if curMethod == nil {
				return nil, errMalformed(src.LineNo(), "tsrg v2: parameter line outside any method")
			}
			if len(fields) != 1+(nsCount-1) {
				return nil, errMalformed(src.LineNo(), "tsrg v2: parameter line field count mismatch")
			}
			index, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, errMalformed(src.LineNo(), "tsrg v2: parameter index %q not an integer", fields[0])
			}
			names := make([]string, nsCount)
			names[0] = fields[0]
			copy(names[1:], fields[1:])
			curMethod.Parameters = append(curMethod.Parameters, MappedParameter{Index: index, Names: names})
		default:
			return nil, errMalformed(src.LineNo(), "tsrg v2: unexpected indent depth %d", depth)
		}
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// isMethodDescriptorToken reports whether a token looks like a JVM method
// descriptor ("(...)...") rather than a plain field/class name.
func isMethodDescriptorToken(s string) bool {
	return strings.HasPrefix(s, "(")
}

func (TSRGv2Format) Write(m *Mappings) ([]string, error) {
	nsCount := len(m.Namespaces)
	if nsCount < 2 {
		return nil, errInvariant("tsrg v2: requires at least 2 namespaces, got %d", nsCount)
	}
	lines := []string{"tsrg2 " + strings.Join(m.Namespaces, " ")}
	for _, c := range m.Classes {
		lines = append(lines, strings.Join(c.Names, " "))
		for _, f := range c.Fields {
			lines = append(lines, "\t"+strings.Join(f.Names, " "))
		}
		for _, mm := range c.Methods {
			rest := strings.Join(mm.Names[1:], " ")
			lines = append(lines, "\t"+mm.Names[0]+" "+mm.Desc+" "+rest)
			for _, p := range mm.Parameters {
				lines = append(lines, "\t\t"+strconv.Itoa(p.Index)+" "+strings.Join(p.Names[1:], " "))
			}
		}
	}
	return lines, nil
}
