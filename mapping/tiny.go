package mapping

import (
	"io"
	"strconv"
	"strings"
)

// TinyV1Format is the Tiny v1 mapping format: a "v1\t<namespaces...>"
// header followed by tab-separated CLASS/FIELD/METHOD records, each
// carrying its full owner path rather than nesting under a class context.
type TinyV1Format struct{}

func (TinyV1Format) Name() string { return "tiny" }

func (TinyV1Format) Detect(data string) bool {
	line, ok := firstNonEmptyLine(splitAllLines(data))
	if !ok {
		return false
	}
	fields := strings.Split(line, "\t")
	return len(fields) >= 2 && fields[0] == "v1"
}

func (TinyV1Format) Parse(r io.Reader) (*Mappings, error) {
	src := newLineSource(r)

	header, ok := src.Next()
	if !ok {
		return nil, errMalformed(src.LineNo(), "tiny v1: empty input")
	}
	headerFields := strings.Split(header, "\t")
	if len(headerFields) < 2 || headerFields[0] != "v1" {
		return nil, errMalformed(src.LineNo(), "tiny v1: expected \"v1\\t<namespaces...>\" header")
	}
	m := &Mappings{Namespaces: headerFields[1:]}
	nsCount := len(m.Namespaces)
	classIdx := make(map[string]int)

	ensureClass := func(name string) int {
		if idx, ok := classIdx[name]; ok {
			return idx
		}
		idx := len(m.Classes)
		classIdx[name] = idx
		names := make([]string, nsCount)
		names[0] = name
		for i := 1; i < nsCount; i++ {
			names[i] = name
		}
		m.Classes = append(m.Classes, MappedClass{Names: names})
		return idx
	}

	for {
		raw, ok := src.Next()
		if !ok {
			break
		}
		fields := strings.Split(raw, "\t")
		switch fields[0] {
		case "CLASS":
			if len(fields) != 1+nsCount {
				return nil, errMalformed(src.LineNo(), "tiny v1: CLASS expected %d fields, got %d", nsCount, len(fields)-1)
			}
			names := fields[1:]
			idx := ensureClass(names[0])
			m.Classes[idx].Names = names
		case "FIELD":
			if len(fields) != 3+nsCount {
				return nil, errMalformed(src.LineNo(), "tiny v1: FIELD expected %d fields, got %d", 2+nsCount, len(fields)-1)
			}
			owner, desc := fields[1], fields[2]
			names := fields[3:]
			idx := ensureClass(owner)
			m.Classes[idx].Fields = append(m.Classes[idx].Fields, MappedField{Names: names, Desc: &desc})
		case "METHOD":
			if len(fields) != 3+nsCount {
				return nil, errMalformed(src.LineNo(), "tiny v1: METHOD expected %d fields, got %d", 2+nsCount, len(fields)-1)
			}
			owner, desc := fields[1], fields[2]
			names := fields[3:]
			idx := ensureClass(owner)
			m.Classes[idx].Methods = append(m.Classes[idx].Methods, MappedMethod{Names: names, Desc: desc})
		default:
			return nil, errMalformed(src.LineNo(), "tiny v1: unrecognized record %q", fields[0])
		}
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func (TinyV1Format) Write(m *Mappings) ([]string, error) {
	lines := []string{"v1\t" + strings.Join(m.Namespaces, "\t")}
	for _, c := range m.Classes {
		lines = append(lines, "CLASS\t"+strings.Join(c.Names, "\t"))
	}
	for _, c := range m.Classes {
		owner := c.Names[0]
		for _, f := range c.Fields {
			desc := ""
			if f.Desc != nil {
				desc = *f.Desc
			}
			lines = append(lines, "FIELD\t"+owner+"\t"+desc+"\t"+strings.Join(f.Names, "\t"))
		}
		for _, mm := range c.Methods {
			lines = append(lines, "METHOD\t"+owner+"\t"+mm.Desc+"\t"+strings.Join(mm.Names, "\t"))
		}
	}
	return lines, nil
}

// TinyV2Format is Tiny v2: a "tiny\t2\t0\t<namespaces...>" header, a
// tab-indented state machine nesting c/f/m/p/v/comment records under their
// owning class or method, metadata key/value pairs, and name elision
// (an empty name cell stands for the previous non-empty name in that
// namespace column).
type TinyV2Format struct{}

func (TinyV2Format) Name() string { return "tiny2" }

func (TinyV2Format) Detect(data string) bool {
	line, ok := firstNonEmptyLine(splitAllLines(data))
	if !ok {
		return false
	}
	fields := strings.Split(line, "\t")
	return len(fields) >= 4 && fields[0] == "tiny" && fields[1] == "2" && fields[2] == "0"
}

type tinyV2State struct {
	m          *Mappings
	nsCount    int
	class      *MappedClass
	field      *MappedField
	method     *MappedMethod
	param      *MappedParameter
	local      *MappedLocal
	classPrev  []string
	fieldPrev  []string
	methodPrev []string
	paramPrev  []string
	localPrev  []string
}

func (TinyV2Format) Parse(r io.Reader) (*Mappings, error) {
	src := newLineSource(r)

	header, ok := src.Next()
	if !ok {
		return nil, errMalformed(src.LineNo(), "tiny v2: empty input")
	}
	headerFields := strings.Split(header, "\t")
	if len(headerFields) < 5 || headerFields[0] != "tiny" || headerFields[1] != "2" || headerFields[2] != "0" {
		return nil, errMalformed(src.LineNo(), "tiny v2: expected \"tiny\\t2\\t0\\t<namespaces...>\" header")
	}
	st := &tinyV2State{
		m:       &Mappings{Namespaces: headerFields[3:], IsV2: true},
		nsCount: len(headerFields) - 3,
	}

	for {
		raw, ok := src.NextRaw()
		if !ok {
			break
		}
		depth := indentDepth(raw)
		fields := strings.Split(strings.TrimPrefix(raw, strings.Repeat("\t", depth)), "\t")
		if err := st.handleLine(depth, fields, src.LineNo()); err != nil {
			return nil, err
		}
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	return st.m, nil
}

func (st *tinyV2State) handleLine(depth int, fields []string, lineNo int) error {
	switch fields[0] {
	case "c":
		if depth == 0 {
			names := append([]string(nil), fields[1:]...)
			materializeNames(names, st.classPrev)
			if len(names) != st.nsCount {
				return errMalformed(lineNo, "tiny v2: class line expected %d names, got %d", st.nsCount, len(names))
			}
			st.classPrev = names
			st.m.Classes = append(st.m.Classes, MappedClass{Names: names})
			st.class = &st.m.Classes[len(st.m.Classes)-1]
			st.field, st.method, st.param, st.local = nil, nil, nil, nil
			return nil
		}
		if depth == 1 && st.class != nil {
			st.class.Comments = append(st.class.Comments, fields[1])
			return nil
		}
		if depth == 2 && st.field != nil {
			st.field.Comments = append(st.field.Comments, fields[1])
			return nil
		}
		if depth == 2 && st.method != nil && st.param == nil && st.local == nil {
			st.method.Comments = append(st.method.Comments, fields[1])
			return nil
		}
		return errMalformed(lineNo, "tiny v2: comment line in unexpected context")
	case "f":
		if st.class == nil {
			return errMalformed(lineNo, "tiny v2: field line before any class line")
		}
		desc := fields[1]
		names := append([]string(nil), fields[2:]...)
		materializeNames(names, st.fieldPrev)
		if len(names) != st.nsCount {
			return errMalformed(lineNo, "tiny v2: field line expected %d names, got %d", st.nsCount, len(names))
		}
		st.fieldPrev = names
		st.class.Fields = append(st.class.Fields, MappedField{Names: names, Desc: &desc})
		st.field = &st.class.Fields[len(st.class.Fields)-1]
		st.method, st.param, st.local = nil, nil, nil
		return nil
	case "m":
		if st.class == nil {
			return errMalformed(lineNo, "tiny v2: method line before any class line")
		}
		desc := fields[1]
		names := append([]string(nil), fields[2:]...)
		materializeNames(names, st.methodPrev)
		if len(names) != st.nsCount {
			return errMalformed(lineNo, "tiny v2: method line expected %d names, got %d", st.nsCount, len(names))
		}
		st.methodPrev = names
		st.class.Methods = append(st.class.Methods, MappedMethod{Names: names, Desc: desc})
		st.method = &st.class.Methods[len(st.class.Methods)-1]
		st.field, st.param, st.local = nil, nil, nil
		return nil
	case "p":
		if depth == 1 {
			if st.class != nil {
				return errMalformed(lineNo, "tiny v2: metadata property line after a class line")
			}
			key := fields[1]
			value := ""
			if len(fields) > 2 {
				value = fields[2]
			}
			if st.m.HeaderProps == nil {
				st.m.HeaderProps = make(map[string]string)
			}
			st.m.HeaderProps[key] = value
			return nil
		}
		if st.method == nil {
			return errMalformed(lineNo, "tiny v2: parameter line before any method line")
		}
		index, err := strconv.Atoi(fields[1])
		if err != nil {
			return errMalformed(lineNo, "tiny v2: parameter index %q not an integer", fields[1])
		}
		names := append([]string(nil), fields[2:]...)
		materializeNames(names, st.paramPrev)
		if len(names) != st.nsCount {
			return errMalformed(lineNo, "tiny v2: parameter line expected %d names, got %d", st.nsCount, len(names))
		}
		st.paramPrev = names
		st.method.Parameters = append(st.method.Parameters, MappedParameter{Index: index, Names: names})
		st.param = &st.method.Parameters[len(st.method.Parameters)-1]
		st.local = nil
		return nil
	case "v":
		if st.method == nil {
			return errMalformed(lineNo, "tiny v2: local line before any method line")
		}
		index, err := strconv.Atoi(fields[1])
		if err != nil {
			return errMalformed(lineNo, "tiny v2: local index %q not an integer", fields[1])
		}
		startOffset, err := strconv.Atoi(fields[2])
		if err != nil {
			return errMalformed(lineNo, "tiny v2: local start-offset %q not an integer", fields[2])
		}
		lvtIndex, err := strconv.Atoi(fields[3])
		if err != nil {
			return errMalformed(lineNo, "tiny v2: local lvt-index %q not an integer", fields[3])
		}
		names := append([]string(nil), fields[4:]...)
		materializeNames(names, st.localPrev)
		if len(names) != st.nsCount {
			return errMalformed(lineNo, "tiny v2: local line expected %d names, got %d", st.nsCount, len(names))
		}
		st.localPrev = names
		st.method.Variables = append(st.method.Variables, MappedLocal{
			Index: index, StartOffset: startOffset, LVTIndex: lvtIndex, Names: names,
		})
		st.local = &st.method.Variables[len(st.method.Variables)-1]
		st.param = nil
		return nil
	default:
		return errMalformed(lineNo, "tiny v2: unrecognized record %q", fields[0])
	}
}

func (TinyV2Format) Write(m *Mappings) ([]string, error) {
	lines := []string{"tiny\t2\t0\t" + strings.Join(m.Namespaces, "\t")}
	for k, v := range m.HeaderProps {
		if v == "" {
			lines = append(lines, "\tp\t"+k)
		} else {
			lines = append(lines, "\tp\t"+k+"\t"+v)
		}
	}
	for _, c := range m.Classes {
		lines = append(lines, "c\t"+strings.Join(c.Names, "\t"))
		for _, cm := range c.Comments {
			lines = append(lines, "\tc\t"+cm)
		}
		for _, f := range c.Fields {
			desc := ""
			if f.Desc != nil {
				desc = *f.Desc
			}
			lines = append(lines, "\tf\t"+desc+"\t"+strings.Join(f.Names, "\t"))
			for _, cm := range f.Comments {
				lines = append(lines, "\t\tc\t"+cm)
			}
		}
		for _, mm := range c.Methods {
			lines = append(lines, "\tm\t"+mm.Desc+"\t"+strings.Join(mm.Names, "\t"))
			for _, cm := range mm.Comments {
				lines = append(lines, "\t\tc\t"+cm)
			}
			for _, p := range mm.Parameters {
				lines = append(lines, "\t\tp\t"+strconv.Itoa(p.Index)+"\t"+strings.Join(p.Names, "\t"))
			}
			for _, v := range mm.Variables {
				lines = append(lines, "\t\tv\t"+strconv.Itoa(v.Index)+"\t"+strconv.Itoa(v.StartOffset)+"\t"+strconv.Itoa(v.LVTIndex)+"\t"+strings.Join(v.Names, "\t"))
			}
		}
	}
	return lines, nil
}
