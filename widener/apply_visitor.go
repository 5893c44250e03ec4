package widener

import "github.com/swind/go-jvmmap/internal/classfile"

// Visitor observes ApplyVisitor's single streaming pass over a class
// file, one hook per node in file order — the shape ยง6 expects of a
// streaming class-file visitor, as distinct from bulk node-based
// mutation. Any hook left nil is simply skipped; none of them can
// affect the mutation itself, only observe its result per node.
type Visitor struct {
	VisitClass  func(owner string, flags classfile.AccessFlags)
	VisitField  func(owner, name, desc string, flags classfile.AccessFlags)
	VisitMethod func(owner, name, desc string, flags classfile.AccessFlags)
}

// ApplyVisitor applies t to cf (ยง4.9 Application) as a single pass that
// additionally invokes v's hooks as it visits the class, its fields,
// and its methods. This is the canonical application — ApplyToClass is
// defined in terms of it with an empty Visitor — so there is exactly
// one place the class/field/method/call-site mutation rules live.
func ApplyVisitor(cf *classfile.ClassFile, t Tree, v Visitor) error {
	owner, err := cf.ThisClassName()
	if err != nil {
		return err
	}
	e, ok := t[owner]
	if !ok {
		return nil
	}

	if e.Total != 0 {
		cf.AccessFlags = applyClassMask(cf.AccessFlags, e.Total)
		if err := applyInnerClassSelfEntry(cf, owner, e.Total); err != nil {
			return err
		}
	}
	if e.Mask.Has(Extendable) {
		clearPermittedSubclasses(cf)
	}
	if v.VisitClass != nil {
		v.VisitClass(owner, cf.AccessFlags)
	}

	for _, f := range cf.Fields {
		name, err := cf.MemberName(f)
		if err != nil {
			return err
		}
		desc, err := cf.MemberDescriptor(f)
		if err != nil {
			return err
		}
		if mask, ok := e.Fields[MemberKey{Owner: owner, Name: name, Desc: desc}]; ok {
			f.AccessFlags = applyFieldMask(f.AccessFlags, mask, cf.AccessFlags.IsInterface())
		}
		if v.VisitField != nil {
			v.VisitField(owner, name, desc, f.AccessFlags)
		}
	}

	widened := make(map[MemberKey]bool)
	for _, m := range cf.Methods {
		name, err := cf.MemberName(m)
		if err != nil {
			return err
		}
		desc, err := cf.MemberDescriptor(m)
		if err != nil {
			return err
		}
		key := MemberKey{Owner: owner, Name: name, Desc: desc}
		if mask, ok := e.Methods[key]; ok {
			m.AccessFlags = applyMethodMask(m.AccessFlags, mask, name, cf.AccessFlags.IsInterface())
			if name != "<init>" {
				widened[key] = true
			}
		}
		if v.VisitMethod != nil {
			v.VisitMethod(owner, name, desc, m.AccessFlags)
		}
	}

	if len(widened) > 0 {
		return promoteCallSites(cf, widened)
	}
	return nil
}
