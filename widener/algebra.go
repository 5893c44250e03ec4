package widener

import "fmt"

// Combine implements the widener algebra's `a + b`: same namespace is
// required, every map unions pointwise via mask-OR, and the resulting
// version is the lower of the two (the more permissive parser).
func Combine(a, b *AccessWidener) (*AccessWidener, error) {
	if a.Namespace != b.Namespace {
		return nil, fmt.Errorf("widener: cannot combine namespace %q with %q", a.Namespace, b.Namespace)
	}
	version := a.Version
	if b.Version < version {
		version = b.Version
	}
	out := New(version, a.Namespace)
	for k, v := range a.Classes {
		out.Classes[k] |= v
	}
	for k, v := range b.Classes {
		out.Classes[k] |= v
	}
	for k, v := range a.Fields {
		out.Fields[k] |= v
	}
	for k, v := range b.Fields {
		out.Fields[k] |= v
	}
	for k, v := range a.Methods {
		out.Methods[k] |= v
	}
	for k, v := range b.Methods {
		out.Methods[k] |= v
	}
	return out, nil
}

// Join folds a sequence of wideners with Combine; an empty sequence is
// an error since there is no identity element to fall back to (no
// namespace to anchor an empty result on).
func Join(wideners []*AccessWidener) (*AccessWidener, error) {
	if len(wideners) == 0 {
		return nil, fmt.Errorf("widener: join of zero wideners")
	}
	out := wideners[0]
	for _, w := range wideners[1:] {
		var err error
		out, err = Combine(out, w)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
