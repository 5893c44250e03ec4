package mapping

import "strings"

// MapType rewrites every "Lowner;" object reference inside a field/type
// descriptor (e.g. "Lfoo/Bar;", "[I", "[[Lfoo/Bar;") through lookup,
// leaving primitives and array brackets untouched. It never allocates for a
// descriptor that carries no object reference.
//
// This generalizes the teacher's class_util.go ExternalClassName /
// mapping_processor.go getOriginalType, which do the same substitution for
// one source-form type at a time; here the substitution table is a full
// namespace-to-namespace map and the input is JVM-internal descriptor form.
func MapType(desc string, lookup map[string]string) string {
	if len(lookup) == 0 {
		return desc
	}

	start := strings.IndexByte(desc, 'L')
	if start < 0 {
		// Array-of-primitive or plain primitive: nothing to substitute.
		return desc
	}

	end := strings.IndexByte(desc[start:], ';')
	if end < 0 {
		return desc
	}
	end += start

	owner := desc[start+1 : end]
	mapped, ok := lookup[owner]
	if !ok {
		return desc
	}

	var b strings.Builder
	b.Grow(len(desc) - len(owner) + len(mapped))
	b.WriteString(desc[:start+1])
	b.WriteString(mapped)
	b.WriteString(desc[end:])
	return b.String()
}

// MapMethodDesc parses the argument list and return type of a method
// descriptor such as "(Ljava/lang/String;[ILfoo/Bar;)V" and rewrites every
// object-type argument and the return type through lookup.
func MapMethodDesc(desc string, lookup map[string]string) string {
	if len(lookup) == 0 {
		return desc
	}
	if len(desc) == 0 || desc[0] != '(' {
		return desc
	}

	closeIdx := strings.IndexByte(desc, ')')
	if closeIdx < 0 {
		return desc
	}

	args := desc[1:closeIdx]
	ret := desc[closeIdx+1:]

	var b strings.Builder
	b.WriteByte('(')
	i := 0
	changed := false
	for i < len(args) {
		typeEnd := descriptorTypeEnd(args, i)
		piece := args[i:typeEnd]
		mapped := MapType(piece, lookup)
		if mapped != piece {
			changed = true
		}
		b.WriteString(mapped)
		i = typeEnd
	}
	b.WriteByte(')')

	mappedRet := MapType(ret, lookup)
	if mappedRet != ret {
		changed = true
	}
	b.WriteString(mappedRet)

	if !changed {
		return desc
	}
	return b.String()
}

// descriptorTypeEnd returns the index just past a single field-descriptor
// type starting at s[i] (handling array prefixes and object references).
func descriptorTypeEnd(s string, i int) int {
	for i < len(s) && s[i] == '[' {
		i++
	}
	if i >= len(s) {
		return i
	}
	if s[i] == 'L' {
		for i < len(s) && s[i] != ';' {
			i++
		}
		if i < len(s) {
			i++ // include ';'
		}
		return i
	}
	return i + 1
}

// ReturnType extracts the return-type descriptor of a method descriptor,
// e.g. "(I)Ljava/lang/String;" -> "Ljava/lang/String;".
func ReturnType(methodDesc string) string {
	idx := strings.IndexByte(methodDesc, ')')
	if idx < 0 || idx+1 >= len(methodDesc) {
		return ""
	}
	return methodDesc[idx+1:]
}

// ReturnTypeInternalName strips the "L"/";" wrapper (and any array prefix)
// off a return-type descriptor, returning the bare internal class name, or
// "" if the return type is not an object type.
func ReturnTypeInternalName(methodDesc string) string {
	ret := ReturnType(methodDesc)
	for len(ret) > 0 && ret[0] == '[' {
		ret = ret[1:]
	}
	if len(ret) < 2 || ret[0] != 'L' || ret[len(ret)-1] != ';' {
		return ""
	}
	return ret[1 : len(ret)-1]
}

// IsMethodDescriptor reports whether desc looks like a method descriptor
// (begins with '(') as opposed to a field/type descriptor.
func IsMethodDescriptor(desc string) bool {
	return len(desc) > 0 && desc[0] == '('
}
