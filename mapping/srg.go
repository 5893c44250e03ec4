package mapping

import (
	"io"
	"strings"
)

// SRGFormat is the classic Searge mapping format: line-prefixed records
// (CL:/FD:/MD:/PK:), field entries carrying no descriptor. Grounded on the
// teacher's MappingReader, generalized from ProGuard's "name -> name:" shape
// to SRG's line-prefix shape; the class-member "owner context carried across
// lines, synthesize class if missing" idiom is the same hole fix-up the
// teacher already performs implicitly (ProcessClassMemberMapping is called
// "in the context of the current old class name").
type SRGFormat struct{}

func (SRGFormat) Name() string { return "srg" }

func (SRGFormat) Detect(data string) bool {
	line, ok := firstNonEmptyLine(splitAllLines(data))
	if !ok {
		return false
	}
	return strings.HasPrefix(line, "CL:") || strings.HasPrefix(line, "FD:") ||
		strings.HasPrefix(line, "MD:") || strings.HasPrefix(line, "PK:")
}

func (f SRGFormat) Parse(r io.Reader) (*Mappings, error) {
	return parseSRGLike(r, false)
}

func (SRGFormat) Write(m *Mappings) ([]string, error) {
	return writeSRGLike(m, false)
}

// XSRGFormat is SRG extended with a field descriptor inserted after the
// source name on FD: lines.
type XSRGFormat struct{}

func (XSRGFormat) Name() string { return "xsrg" }

func (XSRGFormat) Detect(data string) bool {
	for _, line := range splitAllLines(data) {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "FD:") {
			if strings.HasPrefix(t, "CL:") || strings.HasPrefix(t, "MD:") || strings.HasPrefix(t, "PK:") {
				continue
			}
			return false
		}
		fields := strings.Fields(strings.TrimPrefix(t, "FD:"))
		return len(fields) == 3
	}
	return false
}

func (f XSRGFormat) Parse(r io.Reader) (*Mappings, error) {
	return parseSRGLike(r, true)
}

func (XSRGFormat) Write(m *Mappings) ([]string, error) {
	return writeSRGLike(m, true)
}

func parseSRGLike(r io.Reader, extended bool) (*Mappings, error) {
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
		switch {
		case strings.HasPrefix(line, "PK:"):
			continue
		case strings.HasPrefix(line, "CL:"):
			fields := strings.Fields(strings.TrimPrefix(line, "CL:"))
			if len(fields) != 2 {
				return nil, errMalformed(src.LineNo(), "CL: expected 2 fields, got %d", len(fields))
			}
			classIdx[fields[0]] = len(m.Classes)
			m.Classes = append(m.Classes, MappedClass{Names: []string{fields[0], fields[1]}})
		case strings.HasPrefix(line, "FD:"):
			fields := strings.Fields(strings.TrimPrefix(line, "FD:"))
			var oldFull, desc, newFull string
			if extended {
				if len(fields) != 3 {
					return nil, errMalformed(src.LineNo(), "FD: (xsrg) expected 3 fields, got %d", len(fields))
				}
				oldFull, desc, newFull = fields[0], fields[1], fields[2]
			} else {
				if len(fields) != 2 {
					return nil, errMalformed(src.LineNo(), "FD: expected 2 fields, got %d", len(fields))
				}
				oldFull, newFull = fields[0], fields[1]
			}
			oldOwner, oldName := splitLastSlash(oldFull)
			_, newName := splitLastSlash(newFull)
			mf := MappedField{Names: []string{oldName, newName}}
			if extended {
				mf.Desc = &desc
			}
			if _, seen := fieldsByOwner[oldOwner]; !seen {
				fieldOwnerOrder = append(fieldOwnerOrder, oldOwner)
			}
			fieldsByOwner[oldOwner] = append(fieldsByOwner[oldOwner], mf)
		case strings.HasPrefix(line, "MD:"):
			fields := strings.Fields(strings.TrimPrefix(line, "MD:"))
			if len(fields) != 4 {
				return nil, errMalformed(src.LineNo(), "MD: expected 4 fields, got %d", len(fields))
			}
			oldOwner, oldName := splitLastSlash(fields[0])
			_, newName := splitLastSlash(fields[2])
			mm := MappedMethod{Names: []string{oldName, newName}, Desc: fields[1]}
			if _, seen := methodsByOwner[oldOwner]; !seen {
				methodOwnerOrder = append(methodOwnerOrder, oldOwner)
			}
			methodsByOwner[oldOwner] = append(methodsByOwner[oldOwner], mm)
		default:
			return nil, errMalformed(src.LineNo(), "unrecognized SRG record: %q", line)
		}
	}
	if err := src.Err(); err != nil {
		return nil, err
	}

	attachMembers(m, classIdx, fieldsByOwner, fieldOwnerOrder, methodsByOwner, methodOwnerOrder)
	return m, nil
}

// splitLastSlash splits "a/b/c/Name" into owner="a/b/c" name="Name" style
// paths used by SRG/CSRG's slash-joined owner.member tokens.
func splitLastSlash(s string) (owner, name string) {
	idx := strings.LastIndexByte(s, '/')
	if idx < 0 {
		return "", s
	}
	return s[:idx], s[idx+1:]
}

// attachMembers implements the "hole fix-up" shared primitive: members
// parsed into owner-keyed maps are attached to existing classes by their
// first-namespace name, and a class is synthesized for any owner seen only
// in the member maps.
func attachMembers(
	m *Mappings,
	classIdx map[string]int,
	fieldsByOwner map[string][]MappedField,
	fieldOwnerOrder []string,
	methodsByOwner map[string][]MappedMethod,
	methodOwnerOrder []string,
) {
	ensureClass := func(owner string) int {
		if idx, ok := classIdx[owner]; ok {
			return idx
		}
		idx := len(m.Classes)
		classIdx[owner] = idx
		m.Classes = append(m.Classes, MappedClass{Names: []string{owner, owner}})
		return idx
	}

	for _, owner := range fieldOwnerOrder {
		idx := ensureClass(owner)
		m.Classes[idx].Fields = append(m.Classes[idx].Fields, fieldsByOwner[owner]...)
	}
	for _, owner := range methodOwnerOrder {
		idx := ensureClass(owner)
		m.Classes[idx].Methods = append(m.Classes[idx].Methods, methodsByOwner[owner]...)
	}
}

func writeSRGLike(m *Mappings, extended bool) ([]string, error) {
	if len(m.Namespaces) != 2 {
		return nil, errInvariant("srg: requires exactly 2 namespaces, got %d", len(m.Namespaces))
	}
	var lines []string
	for _, c := range m.Classes {
		lines = append(lines, "CL: "+c.Names[0]+" "+c.Names[1])
	}
	for _, c := range m.Classes {
		for _, f := range c.Fields {
			oldFull := joinOwner(c.Names[0], f.Names[0])
			newFull := joinOwner(c.Names[1], f.Names[1])
			if extended {
				desc := ""
				if f.Desc != nil {
					desc = *f.Desc
				}
				lines = append(lines, "FD: "+oldFull+" "+desc+" "+newFull)
			} else {
				lines = append(lines, "FD: "+oldFull+" "+newFull)
			}
		}
		for _, mm := range c.Methods {
			oldFull := joinOwner(c.Names[0], mm.Names[0])
			newFull := joinOwner(c.Names[1], mm.Names[1])
			lines = append(lines, "MD: "+oldFull+" "+mm.Desc+" "+newFull+" "+mm.Desc)
		}
	}
	return lines, nil
}

func joinOwner(owner, name string) string {
	if owner == "" {
		return name
	}
	return owner + "/" + name
}
