package mapping

import (
	"io"
	"strconv"
	"strings"
)

// EnigmaFormat nests CLASS/FIELD/METHOD/ARG/COMMENT records by tab
// indentation, with inner classes written as CLASS blocks nested inside
// their enclosing class block. The internal (first-namespace) name of a
// nested class is its enclosing chain joined with "$", matching how the
// JVM already names inner classes as separate class files.
type EnigmaFormat struct{}

func (EnigmaFormat) Name() string { return "enigma" }

func (EnigmaFormat) Detect(data string) bool {
	line, ok := firstNonEmptyLine(splitAllLines(data))
	if !ok {
		return false
	}
	return strings.HasPrefix(line, "CLASS ")
}

type enigmaFrame struct {
	depth               int
	class               *MappedClass
	field               *MappedField
	method              *MappedMethod
	oldPrefix, newPrefix string
}

func (EnigmaFormat) Parse(r io.Reader) (*Mappings, error) {
	src := newLineSource(r)
	m := &Mappings{Namespaces: []string{"obf", "named"}}

	var stack []enigmaFrame

	for {
		raw, ok := src.NextRaw()
		if !ok {
			break
		}
		depth := indentDepth(raw)
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue
		}

		for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}
		var parent *enigmaFrame
		if len(stack) > 0 {
			parent = &stack[len(stack)-1]
		}

		switch fields[0] {
		case "CLASS":
			if len(fields) < 2 || len(fields) > 3 {
				return nil, errMalformed(src.LineNo(), "enigma: CLASS expects 1 or 2 names, got %d", len(fields)-1)
			}
			obf := fields[1]
			target := obf
			if len(fields) == 3 {
				target = fields[2]
			}
			oldPrefix, newPrefix := "", ""
			if parent != nil {
				oldPrefix, newPrefix = parent.oldPrefix, parent.newPrefix
			}
			fullOld := oldPrefix + obf
			fullNew := newPrefix + target
			m.Classes = append(m.Classes, MappedClass{Names: []string{fullOld, fullNew}})
			stack = append(stack, enigmaFrame{
				depth: depth, class: &m.Classes[len(m.Classes)-1],
				oldPrefix: fullOld + "$", newPrefix: fullNew + "$",
			})
		case "FIELD":
			if parent == nil || parent.class == nil {
				return nil, errMalformed(src.LineNo(), "enigma: FIELD outside any class")
			}
			if len(fields) < 3 || len(fields) > 4 {
				return nil, errMalformed(src.LineNo(), "enigma: FIELD expects name, [target,] desc, got %d fields", len(fields)-1)
			}
			obf := fields[1]
			var target, desc string
			if len(fields) == 4 {
				target, desc = fields[2], fields[3]
			} else {
				target, desc = obf, fields[2]
			}
			parent.class.Fields = append(parent.class.Fields, MappedField{Names: []string{obf, target}, Desc: &desc})
			f := &parent.class.Fields[len(parent.class.Fields)-1]
			stack = append(stack, enigmaFrame{depth: depth, field: f})
		case "METHOD":
			if parent == nil || parent.class == nil {
				return nil, errMalformed(src.LineNo(), "enigma: METHOD outside any class")
			}
			if len(fields) < 3 || len(fields) > 4 {
				return nil, errMalformed(src.LineNo(), "enigma: METHOD expects name, [target,] desc, got %d fields", len(fields)-1)
			}
			obf := fields[1]
			var target, desc string
			if len(fields) == 4 {
				target, desc = fields[2], fields[3]
			} else {
				target, desc = obf, fields[2]
			}
			parent.class.Methods = append(parent.class.Methods, MappedMethod{Names: []string{obf, target}, Desc: desc})
			mm := &parent.class.Methods[len(parent.class.Methods)-1]
			stack = append(stack, enigmaFrame{depth: depth, method: mm})
		case "ARG":
			if parent == nil || parent.method == nil {
				return nil, errMalformed(src.LineNo(), "enigma: ARG outside any method")
			}
			if len(fields) != 3 {
				return nil, errMalformed(src.LineNo(), "enigma: ARG expects index and name, got %d fields", len(fields)-1)
			}
			index, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, errMalformed(src.LineNo(), "enigma: ARG index %q not an integer", fields[1])
			}
			parent.method.Parameters = append(parent.method.Parameters, MappedParameter{
				Index: index, Names: []string{fields[1], fields[2]},
			})
			stack = append(stack, enigmaFrame{depth: depth})
		case "COMMENT":
			text := unescapeEnigmaComment(strings.TrimPrefix(strings.TrimLeft(raw, "\t"), "COMMENT "))
			switch {
			case parent == nil:
				return nil, errMalformed(src.LineNo(), "enigma: COMMENT with no enclosing entity")
			case parent.method != nil:
				parent.method.Comments = append(parent.method.Comments, text)
			case parent.field != nil:
				parent.field.Comments = append(parent.field.Comments, text)
			case parent.class != nil:
				parent.class.Comments = append(parent.class.Comments, text)
			default:
				return nil, errMalformed(src.LineNo(), "enigma: COMMENT in unexpected context")
			}
			stack = append(stack, enigmaFrame{depth: depth})
		default:
			return nil, errMalformed(src.LineNo(), "enigma: unrecognized record %q", fields[0])
		}
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func unescapeEnigmaComment(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func escapeEnigmaComment(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}

func (EnigmaFormat) Write(m *Mappings) ([]string, error) {
	if len(m.Namespaces) != 2 {
		return nil, errInvariant("enigma: requires exactly 2 namespaces, got %d", len(m.Namespaces))
	}

	byName := make(map[string]*MappedClass, len(m.Classes))
	for i := range m.Classes {
		byName[m.Classes[i].Names[0]] = &m.Classes[i]
	}
	children := make(map[string][]*MappedClass)
	var roots []*MappedClass
	for i := range m.Classes {
		c := &m.Classes[i]
		parent := enigmaParentOf(c.Names[0], byName)
		if parent == "" {
			roots = append(roots, c)
		} else {
			children[parent] = append(children[parent], c)
		}
	}

	var lines []string
	var writeClass func(c *MappedClass, localOld, localNew string, depth int)
	writeClass = func(c *MappedClass, localOld, localNew string, depth int) {
		indent := strings.Repeat("\t", depth)
		if localOld == localNew {
			lines = append(lines, indent+"CLASS "+localOld)
		} else {
			lines = append(lines, indent+"CLASS "+localOld+" "+localNew)
		}
		memberIndent := strings.Repeat("\t", depth+1)
		for _, cm := range c.Comments {
			lines = append(lines, memberIndent+"COMMENT "+escapeEnigmaComment(cm))
		}
		for _, f := range c.Fields {
			desc := ""
			if f.Desc != nil {
				desc = *f.Desc
			}
			if f.Names[0] == f.Names[1] {
				lines = append(lines, memberIndent+"FIELD "+f.Names[0]+" "+desc)
			} else {
				lines = append(lines, memberIndent+"FIELD "+f.Names[0]+" "+f.Names[1]+" "+desc)
			}
			for _, cm := range f.Comments {
				lines = append(lines, strings.Repeat("\t", depth+2)+"COMMENT "+escapeEnigmaComment(cm))
			}
		}
		for _, mm := range c.Methods {
			if mm.Names[0] == mm.Names[1] {
				lines = append(lines, memberIndent+"METHOD "+mm.Names[0]+" "+mm.Desc)
			} else {
				lines = append(lines, memberIndent+"METHOD "+mm.Names[0]+" "+mm.Names[1]+" "+mm.Desc)
			}
			for _, cm := range mm.Comments {
				lines = append(lines, strings.Repeat("\t", depth+2)+"COMMENT "+escapeEnigmaComment(cm))
			}
			for _, p := range mm.Parameters {
				lines = append(lines, strings.Repeat("\t", depth+2)+"ARG "+strconv.Itoa(p.Index)+" "+p.Names[len(p.Names)-1])
			}
		}
		for _, child := range children[c.Names[0]] {
			childLocalOld := strings.TrimPrefix(child.Names[0], c.Names[0]+"$")
			childLocalNew := strings.TrimPrefix(child.Names[1], c.Names[1]+"$")
			writeClass(child, childLocalOld, childLocalNew, depth+1)
		}
	}

	for _, c := range roots {
		writeClass(c, c.Names[0], c.Names[1], 0)
	}
	return lines, nil
}

// enigmaParentOf returns the first-namespace name of the nearest existing
// enclosing class for name (the longest "$"-prefix that is itself a known
// class), or "" if name is top-level.
func enigmaParentOf(name string, byName map[string]*MappedClass) string {
	prefix := name
	for {
		idx := strings.LastIndexByte(prefix, '$')
		if idx < 0 {
			return ""
		}
		prefix = prefix[:idx]
		if _, ok := byName[prefix]; ok {
			return prefix
		}
	}
}
