package widener

import "github.com/swind/go-jvmmap/remap"

// Remap rewrites w from its own namespace to toNamespace (ยง4.9
// Remapping): a no-op when toNamespace already matches, otherwise every
// owner goes through a name-only remap, field names go through
// MapFieldName and method names through MapMethodName (both walk the
// inheritance chain, so names declared on a supertype resolve), and every
// descriptor goes through descriptor remapping.
func Remap(w *AccessWidener, r *remap.LoaderSimpleRemapper, toNamespace string) *AccessWidener {
	if toNamespace == w.Namespace {
		return w
	}
	out := New(w.Version, toNamespace)
	for k, mask := range w.Classes {
		out.Classes[ClassKey{Owner: r.Map(k.Owner)}] |= mask
	}
	for k, mask := range w.Fields {
		newOwner := r.Map(k.Owner)
		newName := r.MapFieldName(k.Owner, k.Name, k.Desc)
		newDesc := r.MapType(k.Desc)
		out.Fields[MemberKey{Owner: newOwner, Name: newName, Desc: newDesc}] |= mask
	}
	for k, mask := range w.Methods {
		newOwner := r.Map(k.Owner)
		newName := r.MapMethodName(k.Owner, k.Name, k.Desc)
		newDesc := r.MapMethodDesc(k.Desc)
		out.Methods[MemberKey{Owner: newOwner, Name: newName, Desc: newDesc}] |= mask
	}
	return out
}
