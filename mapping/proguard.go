package mapping

import (
	"io"
	"strings"
)

// ProguardFormat is ProGuard/R8's mapping format: "named -> official:" class
// headers followed by indented member lines using Java source-style type
// names ("java.lang.String", "int[]") rather than JVM descriptors, with an
// optional "startLine:endLine:" prefix on method lines. Always exactly two
// namespaces, named first (the original, human-authored name) and official
// second (spec.md ยง4.3).
type ProguardFormat struct{}

func (ProguardFormat) Name() string { return "proguard" }

func (ProguardFormat) Detect(data string) bool {
	for _, l := range splitAllLines(data) {
		t := strings.TrimSpace(l)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		return strings.Contains(t, " -> ") && strings.HasSuffix(t, ":")
	}
	return false
}

func (ProguardFormat) Parse(r io.Reader) (*Mappings, error) {
	src := newLineSource(r)
	m := &Mappings{Namespaces: []string{"named", "official"}}

	var cur *MappedClass
	for {
		raw, ok := src.NextRaw()
		if !ok {
			break
		}
		t := strings.TrimSpace(raw)
		if strings.HasPrefix(t, "#") {
			continue
		}
		if !strings.HasPrefix(raw, " ") && !strings.HasPrefix(raw, "\t") {
			named, official, ok := splitProguardArrow(t, true)
			if !ok {
				return nil, errMalformed(src.LineNo(), "proguard: expected \" -> \" in %q", t)
			}
			m.Classes = append(m.Classes, MappedClass{
				Names: []string{javaNameToInternal(named), javaNameToInternal(official)},
			})
			cur = &m.Classes[len(m.Classes)-1]
			continue
		}
		if cur == nil {
			return nil, errMalformed(src.LineNo(), "proguard: member line before any class header")
		}
		left, newName, ok := splitProguardArrow(t, false)
		if !ok {
			return nil, errMalformed(src.LineNo(), "proguard: expected \" -> \" in %q", t)
		}
		left = stripLineNumberPrefix(left)

		if paren := strings.IndexByte(left, '('); paren >= 0 {
			closeIdx := strings.LastIndexByte(left, ')')
			if closeIdx < 0 || closeIdx < paren {
				return nil, errMalformed(src.LineNo(), "proguard: malformed method signature %q", left)
			}
			head := strings.Fields(left[:paren])
			if len(head) != 2 {
				return nil, errMalformed(src.LineNo(), "proguard: expected \"type name(\", got %q", left[:paren])
			}
			retType, name := head[0], head[1]
			argsStr := left[paren+1 : closeIdx]
			desc := "(" + proguardArgsToDescriptor(argsStr) + ")" + javaTypeToDescriptor(retType)
			cur.Methods = append(cur.Methods, MappedMethod{Names: []string{name, newName}, Desc: desc})
			continue
		}

		head := strings.Fields(left)
		if len(head) != 2 {
			return nil, errMalformed(src.LineNo(), "proguard: expected \"type name\", got %q", left)
		}
		fieldType, name := head[0], head[1]
		desc := javaTypeToDescriptor(fieldType)
		cur.Fields = append(cur.Fields, MappedField{Names: []string{name, newName}, Desc: &desc})
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// splitProguardArrow splits "lhs -> rhs" (trailingColon strips a trailing
// ":" from rhs for class headers).
func splitProguardArrow(s string, trailingColon bool) (lhs, rhs string, ok bool) {
	idx := strings.Index(s, " -> ")
	if idx < 0 {
		return "", "", false
	}
	lhs = s[:idx]
	rhs = s[idx+len(" -> "):]
	if trailingColon {
		rhs = strings.TrimSuffix(strings.TrimSpace(rhs), ":")
	}
	return lhs, rhs, true
}

// stripLineNumberPrefix removes a leading "N:M:" line-range prefix from a
// ProGuard method line, if present.
func stripLineNumberPrefix(s string) string {
	first := strings.IndexByte(s, ':')
	if first < 0 {
		return s
	}
	second := strings.IndexByte(s[first+1:], ':')
	if second < 0 {
		return s
	}
	prefix := s[:first+1+second+1]
	for _, r := range strings.TrimSuffix(prefix, ":") {
		if r != ':' && (r < '0' || r > '9') {
			return s
		}
	}
	return s[len(prefix):]
}

func proguardArgsToDescriptor(argsStr string) string {
	argsStr = strings.TrimSpace(argsStr)
	if argsStr == "" {
		return ""
	}
	var b strings.Builder
	for _, arg := range strings.Split(argsStr, ",") {
		b.WriteString(javaTypeToDescriptor(strings.TrimSpace(arg)))
	}
	return b.String()
}

// javaNameToInternal converts a dotted Java source class name to internal
// slash form.
func javaNameToInternal(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}

var primitiveDescriptors = map[string]string{
	"boolean": "Z", "byte": "B", "char": "C", "short": "S",
	"int": "I", "long": "J", "float": "F", "double": "D", "void": "V",
}

// javaTypeToDescriptor converts a Java source-style type name ("int",
// "java.lang.String", "int[][]") to its JVM descriptor form.
func javaTypeToDescriptor(t string) string {
	dims := 0
	for strings.HasSuffix(t, "[]") {
		dims++
		t = t[:len(t)-2]
	}
	var base string
	if d, ok := primitiveDescriptors[t]; ok {
		base = d
	} else {
		base = "L" + javaNameToInternal(t) + ";"
	}
	return strings.Repeat("[", dims) + base
}

// internalToJavaName converts an internal slash class name back to dotted
// Java source form, for Write.
func internalToJavaName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// descriptorToJavaType converts a single JVM descriptor type (as produced
// by descriptorTypeEnd) back to its Java source spelling.
func descriptorToJavaType(desc string) string {
	dims := 0
	for strings.HasPrefix(desc, "[") {
		dims++
		desc = desc[1:]
	}
	var base string
	switch desc {
	case "Z":
		base = "boolean"
	case "B":
		base = "byte"
	case "C":
		base = "char"
	case "S":
		base = "short"
	case "I":
		base = "int"
	case "J":
		base = "long"
	case "F":
		base = "float"
	case "D":
		base = "double"
	case "V":
		base = "void"
	default:
		base = internalToJavaName(strings.TrimSuffix(strings.TrimPrefix(desc, "L"), ";"))
	}
	return base + strings.Repeat("[]", dims)
}

func (ProguardFormat) Write(m *Mappings) ([]string, error) {
	if len(m.Namespaces) != 2 {
		return nil, errInvariant("proguard: requires exactly 2 namespaces, got %d", len(m.Namespaces))
	}
	var lines []string
	for _, c := range m.Classes {
		lines = append(lines, internalToJavaName(c.Names[0])+" -> "+internalToJavaName(c.Names[1])+":")
		for _, f := range c.Fields {
			fieldType := "java.lang.Object"
			if f.Desc != nil {
				fieldType = descriptorToJavaType(*f.Desc)
			}
			lines = append(lines, "    "+fieldType+" "+f.Names[0]+" -> "+f.Names[1])
		}
		for _, mm := range c.Methods {
			retType := descriptorToJavaType(ReturnType(mm.Desc))
			argTypes := methodArgJavaTypes(mm.Desc)
			lines = append(lines, "    "+retType+" "+mm.Names[0]+"("+strings.Join(argTypes, ", ")+") -> "+mm.Names[1])
		}
	}
	return lines, nil
}

func methodArgJavaTypes(desc string) []string {
	if !strings.HasPrefix(desc, "(") {
		return nil
	}
	closeIdx := strings.IndexByte(desc, ')')
	if closeIdx < 0 {
		return nil
	}
	args := desc[1:closeIdx]
	var out []string
	for i := 0; i < len(args); {
		end := descriptorTypeEnd(args, i)
		out = append(out, descriptorToJavaType(args[i:end]))
		i = end
	}
	return out
}
