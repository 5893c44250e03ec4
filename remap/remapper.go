package remap

import (
	"strings"

	"github.com/swind/go-jvmmap/inherit"
	"github.com/swind/go-jvmmap/mapping"
)

// LoaderSimpleRemapper is the inheritance-aware name remapper of ยง4.7: a
// flat key->replacement map (produced by AsAsmMapping) plus an
// InheritanceProvider to walk the class hierarchy when a field/method
// isn't declared on the exact owner the caller has in hand.
type LoaderSimpleRemapper struct {
	Mapping  map[string]string
	Provider mapping.InheritanceProvider
}

// NewLoaderSimpleRemapper constructs a remapper over an already-built
// mapping (see AsAsmMapping) and an inheritance provider (see package
// inherit).
func NewLoaderSimpleRemapper(m map[string]string, provider mapping.InheritanceProvider) *LoaderSimpleRemapper {
	return &LoaderSimpleRemapper{Mapping: m, Provider: provider}
}

// Map resolves a class's internal name. If the name is not a direct key
// and contains '$', the outer class (everything before the last '$') is
// mapped recursively and the un-mapped inner suffix (the last '$' plus
// whatever followed it) is appended unchanged.
func (r *LoaderSimpleRemapper) Map(internalName string) string {
	if v, ok := r.Mapping[internalName]; ok {
		return v
	}
	if idx := strings.LastIndexByte(internalName, '$'); idx >= 0 {
		return r.Map(internalName[:idx]) + internalName[idx:]
	}
	return internalName
}

// ownerChain returns owner followed by its ancestors in the DFS order
// ยง4.5 specifies (inherit.Parents works over any InheritanceProvider,
// including the structural mapping.InheritanceProvider interface, since
// both only require a DirectParents method).
func (r *LoaderSimpleRemapper) ownerChain(owner string) []string {
	return append([]string{owner}, inherit.Parents(r.Provider, owner)...)
}

// MapMethodName resolves a method name by walking owner's inheritance
// chain (self first, then ancestors) looking for "x.name desc" in the
// mapping. <init>/<clinit> are always returned unchanged. A non-method
// descriptor (doesn't start with '(') indicates this call is actually
// resolving a field-style reference through the same generic
// name-mapping entry point, so it falls through to MapFieldName.
func (r *LoaderSimpleRemapper) MapMethodName(owner, name, desc string) string {
	if name == "<init>" || name == "<clinit>" {
		return name
	}
	if !mapping.IsMethodDescriptor(desc) {
		return r.MapFieldName(owner, name, desc)
	}
	key := name + desc
	for _, x := range r.ownerChain(owner) {
		if v, ok := r.Mapping[x+"."+key]; ok {
			return v
		}
	}
	return name
}

// MapFieldName resolves a field name the same way MapMethodName resolves
// a method name, except keyed only by name (fields have no overload
// descriptor disambiguation in the mapping key).
func (r *LoaderSimpleRemapper) MapFieldName(owner, name, desc string) string {
	_ = desc // unused: field mapping keys never include a descriptor
	for _, x := range r.ownerChain(owner) {
		if v, ok := r.Mapping[x+"."+name]; ok {
			return v
		}
	}
	return name
}

// MapRecordComponentName behaves exactly like MapFieldName — record
// components are, for naming purposes, fields.
func (r *LoaderSimpleRemapper) MapRecordComponentName(owner, name, desc string) string {
	return r.MapFieldName(owner, name, desc)
}

// MapType rewrites every object-type reference in a field/array
// descriptor through Map. mapping.MapType/MapMethodDesc take a plain
// map[string]string lookup, so classLookup materializes one from
// Mapping's class entries (the $-inner-class fallback Map performs for
// misses never applies inside a descriptor: class names occurring there
// are always whole owners already present as keys when they've been
// remapped at all).
func (r *LoaderSimpleRemapper) MapType(desc string) string {
	return mapping.MapType(desc, r.classLookup())
}

// MapMethodDesc rewrites every argument and the return type of a method
// descriptor through Map.
func (r *LoaderSimpleRemapper) MapMethodDesc(desc string) string {
	return mapping.MapMethodDesc(desc, r.classLookup())
}

// classLookup extracts the class-name entries of Mapping (the ones with
// no '.' in the key) into the plain map mapping.MapType/MapMethodDesc
// expect.
func (r *LoaderSimpleRemapper) classLookup() map[string]string {
	out := make(map[string]string, len(r.Mapping))
	for k, v := range r.Mapping {
		if !strings.ContainsAny(k, ".(") {
			out[k] = v
		}
	}
	return out
}
