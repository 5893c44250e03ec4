package mapping

import (
	"io"
	"strings"
)

// CSRGFormat is SRG's whitespace-only-separated compact form: no prefixes,
// arity (2/3/4 fields) selects class/field/method. Never detectable, since
// a bare "a b" line is indistinguishable from many other whitespace formats
// (spec.md ยง4.3). Grounded on the same owner-carried-by-old-name hole
// fix-up as srg.go.
type CSRGFormat struct{}

func (CSRGFormat) Name() string { return "csrg" }

func (CSRGFormat) Detect(string) bool { return false }

func (CSRGFormat) Parse(r io.Reader) (*Mappings, error) {
	src := newLineSource(r)

	m := &Mappings{Namespaces: []string{"obf", "srg"}}
	classIdx := make(map[string]int)
	fieldsByOwner := make(map[string][]MappedField)
	methodsByOwner := make(map[string][]MappedMethod)
	var fieldOwnerOrder, methodOwnerOrder []string

	for {
		line, ok := src.Next()
		if !ok {
			break
		}
		fields := strings.Fields(line)
		switch len(fields) {
		case 2:
			classIdx[fields[0]] = len(m.Classes)
			m.Classes = append(m.Classes, MappedClass{Names: []string{fields[0], fields[1]}})
		case 3:
			owner := fields[0]
			if _, seen := fieldsByOwner[owner]; !seen {
				fieldOwnerOrder = append(fieldOwnerOrder, owner)
			}
			fieldsByOwner[owner] = append(fieldsByOwner[owner], MappedField{Names: []string{fields[1], fields[2]}})
		case 4:
			owner := fields[0]
			if _, seen := methodsByOwner[owner]; !seen {
				methodOwnerOrder = append(methodOwnerOrder, owner)
			}
			methodsByOwner[owner] = append(methodsByOwner[owner], MappedMethod{
				Names: []string{fields[1], fields[3]},
				Desc:  fields[2],
			})
		default:
			return nil, errMalformed(src.LineNo(), "csrg: expected 2, 3 or 4 fields, got %d", len(fields))
		}
	}
	if err := src.Err(); err != nil {
		return nil, err
	}

	attachMembers(m, classIdx, fieldsByOwner, fieldOwnerOrder, methodsByOwner, methodOwnerOrder)
	return m, nil
}

func (CSRGFormat) Write(m *Mappings) ([]string, error) {
	if len(m.Namespaces) != 2 {
		return nil, errInvariant("csrg: requires exactly 2 namespaces, got %d", len(m.Namespaces))
	}
	var lines []string
	for _, c := range m.Classes {
		lines = append(lines, c.Names[0]+" "+c.Names[1])
		for _, f := range c.Fields {
			lines = append(lines, c.Names[0]+" "+f.Names[0]+" "+f.Names[1])
		}
		for _, mm := range c.Methods {
			lines = append(lines, c.Names[0]+" "+mm.Names[0]+" "+mm.Desc+" "+mm.Names[1])
		}
	}
	return lines, nil
}
