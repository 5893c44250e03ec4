// Package inherit resolves the class hierarchy (super/interfaces) and
// declared-member information the remapper's inheritance-aware lookups
// and RemoveRedundancy need, by reading class file headers through a
// classpath.Loader.
package inherit

import (
	"bytes"

	"github.com/swind/go-jvmmap/classpath"
	"github.com/swind/go-jvmmap/internal/classfile"
)

// inheritableExclusionMask is PRIVATE|STATIC|FINAL (0x02|0x08|0x10 =
// 0x1a), the bit combination a member must NOT have any of to count as
// "inheritable" per spec.
const inheritableExclusionMask = classfile.AccPrivate | classfile.AccStatic | classfile.AccFinal

// Provider is the default ClasspathLoader-backed implementation: it
// parses just the class file header (constant pool, super/interfaces,
// field/method signatures) and never decodes Code or debug attributes,
// since nothing here needs instruction bodies.
type Provider struct {
	Loader classpath.Loader
}

// NewProvider returns a Provider reading class bytes through loader.
func NewProvider(loader classpath.Loader) *Provider {
	return &Provider{Loader: loader}
}

func (p *Provider) readHeader(internalName string) (*classfile.ClassFile, bool) {
	data, ok := p.Loader(internalName)
	if !ok {
		return nil, false
	}
	cf, err := classfile.Read(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	return cf, true
}

// DirectParents returns the super class (if any, first) followed by
// interfaces, in declared order. A classpath miss or parse failure is
// treated as "no further parents" (ยง7 kind 4: resource-missing is
// non-fatal, the walk simply terminates there).
func (p *Provider) DirectParents(internalName string) []string {
	cf, ok := p.readHeader(internalName)
	if !ok {
		return nil
	}
	var out []string
	if super, err := cf.SuperClassName(); err == nil && super != "" {
		out = append(out, super)
	}
	if ifaces, err := cf.InterfaceNames(); err == nil {
		out = append(out, ifaces...)
	}
	return out
}

// DeclaredMethods returns "name+desc" for methods declared directly on
// internalName. When inheritableOnly, methods carrying any of
// PRIVATE/STATIC/FINAL are excluded.
func (p *Provider) DeclaredMethods(internalName string, inheritableOnly bool) []string {
	cf, ok := p.readHeader(internalName)
	if !ok {
		return nil
	}
	var out []string
	for _, m := range cf.Methods {
		if inheritableOnly && m.AccessFlags&inheritableExclusionMask != 0 {
			continue
		}
		name, err := cf.MemberName(m)
		if err != nil {
			continue
		}
		desc, err := cf.MemberDescriptor(m)
		if err != nil {
			continue
		}
		out = append(out, name+desc)
	}
	return out
}
