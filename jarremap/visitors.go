package jarremap

import "strings"

// ResourceVisitor inspects a non-class jar entry by its name and decides
// whether it survives into the output jar, optionally rewriting its
// name. Returning ok=false drops the entry entirely.
type ResourceVisitor func(name string, data []byte) (newName string, newData []byte, ok bool)

// ResourceChain runs visitors in order, short-circuiting on the first
// drop; an entry that survives every visitor unchanged keeps its
// original name and bytes.
func ResourceChain(visitors ...ResourceVisitor) ResourceVisitor {
	return func(name string, data []byte) (string, []byte, bool) {
		for _, v := range visitors {
			newName, newData, ok := v(name, data)
			if !ok {
				return "", nil, false
			}
			name, data = newName, newData
		}
		return name, data, true
	}
}

// DropSignatureFiles drops a jar's signature file entries (*.RSA, *.SF,
// *.DSA) — once a jar's classes are remapped the old signature no longer
// matches the content, so carrying it forward would just ship a jar that
// fails signature verification instead of one that was never signed.
func DropSignatureFiles(name string, data []byte) (string, []byte, bool) {
	upper := strings.ToUpper(name)
	if strings.HasPrefix(upper, "META-INF/") &&
		(strings.HasSuffix(upper, ".RSA") || strings.HasSuffix(upper, ".SF") || strings.HasSuffix(upper, ".DSA")) {
		return "", nil, false
	}
	return name, data, true
}

// DefaultResourceVisitor is the chain RemapJars applies when a task
// supplies none of its own.
var DefaultResourceVisitor = ResourceChain(DropSignatureFiles)
