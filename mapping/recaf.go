package mapping

import (
	"io"
	"strings"
)

// RecafFormat fuses owner and member into a single first token:
// "owner.name newName" for fields, "owner.name(desc) newName" for methods,
// "oldOwner newOwner" for classes. Never detectable, since a bare two-token
// line can't be told apart from many other formats without context
// (spec.md ยง4.3). Grounded on the same prefix-dispatch-by-shape idiom as
// srg.go/csrg.go, dispatching on punctuation in the first token instead of
// a line prefix.
type RecafFormat struct{}

func (RecafFormat) Name() string { return "recaf" }

func (RecafFormat) Detect(string) bool { return false }

func (RecafFormat) Parse(r io.Reader) (*Mappings, error) {
	src := newLineSource(r)

	m := &Mappings{Namespaces: []string{"obf", "named"}}
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
		if len(fields) != 2 {
			return nil, errMalformed(src.LineNo(), "recaf: expected 2 fields, got %d", len(fields))
		}
		left, newName := fields[0], fields[1]

		dot := strings.IndexByte(left, '.')
		if dot < 0 {
			classIdx[left] = len(m.Classes)
			m.Classes = append(m.Classes, MappedClass{Names: []string{left, newName}})
			continue
		}
		owner, rest := left[:dot], left[dot+1:]
		if paren := strings.IndexByte(rest, '('); paren >= 0 {
			oldName, desc := rest[:paren], rest[paren:]
			if _, seen := methodsByOwner[owner]; !seen {
				methodOwnerOrder = append(methodOwnerOrder, owner)
			}
			methodsByOwner[owner] = append(methodsByOwner[owner], MappedMethod{
				Names: []string{oldName, newName},
				Desc:  desc,
			})
			continue
		}
		if _, seen := fieldsByOwner[owner]; !seen {
			fieldOwnerOrder = append(fieldOwnerOrder, owner)
		}
		fieldsByOwner[owner] = append(fieldsByOwner[owner], MappedField{Names: []string{rest, newName}})
	}
	if err := src.Err(); err != nil {
		return nil, err
	}

	attachMembers(m, classIdx, fieldsByOwner, fieldOwnerOrder, methodsByOwner, methodOwnerOrder)
	return m, nil
}

func (RecafFormat) Write(m *Mappings) ([]string, error) {
	if len(m.Namespaces) != 2 {
		return nil, errInvariant("recaf: requires exactly 2 namespaces, got %d", len(m.Namespaces))
	}
	var lines []string
	for _, c := range m.Classes {
		lines = append(lines, c.Names[0]+" "+c.Names[1])
		for _, f := range c.Fields {
			lines = append(lines, c.Names[0]+"."+f.Names[0]+" "+f.Names[1])
		}
		for _, mm := range c.Methods {
			lines = append(lines, c.Names[0]+"."+mm.Names[0]+mm.Desc+" "+mm.Names[1])
		}
	}
	return lines, nil
}
