package remap

import (
	"github.com/swind/go-jvmmap/internal/classfile"
	"github.com/swind/go-jvmmap/mapping"
)

// RemapClass rewrites every type/name/descriptor reference in cf through
// r, in place, and returns the class's new internal name.
//
// Ordering is the crux of this function. Every name lookup
// (MapMethodName/MapFieldName, and the invokedynamic lambda path) keys
// on the ORIGINAL, from-namespace descriptor text, because that's the
// form AsAsmMapping recorded its "owner.name(args)ret" keys in. So every
// lookup-driven rewrite — a field/method's own name, a Fieldref/
// Methodref's target name, an invokedynamic's lambda method name — has
// to happen while descriptor text in the pool is still in its original
// form. Only once every lookup has run does it become safe to rewrite
// descriptor text itself (remapDescriptorText) and the class's own name
// (last of all, since MapMethodName/MapFieldName need the pre-rename
// owner to find the right mapping entry).
func RemapClass(cf *classfile.ClassFile, r *LoaderSimpleRemapper) (string, error) {
	cp := cf.ConstantPool

	owner, err := cf.ThisClassName()
	if err != nil {
		return "", err
	}

	for _, f := range cf.Fields {
		if err := remapMemberName(cp, f, owner, r, false); err != nil {
			return "", err
		}
		if err := remapMemberAttrs(cp, f.Attributes, r); err != nil {
			return "", err
		}
	}
	for _, m := range cf.Methods {
		if err := remapMemberName(cp, m, owner, r, true); err != nil {
			return "", err
		}
		if err := remapCode(cf, cp, m, r); err != nil {
			return "", err
		}
	}

	// Field/method references (Fieldref/Methodref/InterfaceMethodref),
	// including every one reachable from a Code attribute's instruction
	// stream, since instructions reference the same shared pool entries
	// rewritten here rather than carrying their own copy. Must run before
	// remapDescriptorText below: it resolves each reference's current
	// (still-original) descriptor itself to build the lookup key.
	cp.RewriteMemberRefs(r.Map, func(memberOwner, name, desc string, isMethod bool) string {
		if isMethod {
			return r.MapMethodName(memberOwner, name, desc)
		}
		return r.MapFieldName(memberOwner, name, desc)
	})

	if err := remapSignatureAttrs(cp, cf.Attributes, r); err != nil {
		return "", err
	}
	if err := remapRecord(cp, cf.Attributes, owner, r); err != nil {
		return "", err
	}

	// Now that every name lookup has resolved against original
	// descriptor text, rewrite the descriptor text itself throughout the
	// pool (NameAndType and MethodType entries — MethodType because
	// invokedynamic bootstrap arguments describe a lambda's erased
	// method type the same way).
	remapDescriptorText(cp, r)

	// Every remaining class-name-shaped reference (super, interfaces,
	// exception table entries, instanceof/checkcast/new/anewarray
	// targets, nest host/members, permitted subclasses, the enclosing
	// class half of EnclosingMethod, inner-class table entries) is a
	// CONSTANT_Class_info in the pool; one rewrite handles all of them.
	// Runs last: only after it does cf.ThisClassName() (and every other
	// Class entry) resolve to the new name.
	cp.RewriteClassNames(r.Map)

	return r.Map(owner), nil
}

// remapMemberName rewrites a field_info/method_info's own NameIndex and
// DescriptorIndex. Renaming the class itself happens last (see
// RemapClass), so owner here is still the pre-rename name, and name/desc
// are read before any other rewrite touches this member's entries.
func remapMemberName(cp *classfile.ConstantPool, m *classfile.MemberInfo, owner string, r *LoaderSimpleRemapper, isMethod bool) error {
	name, err := cp.Utf8(m.NameIndex)
	if err != nil {
		return err
	}
	desc, err := cp.Utf8(m.DescriptorIndex)
	if err != nil {
		return err
	}

	var newName string
	if isMethod {
		newName = r.MapMethodName(owner, name, desc)
	} else {
		newName = r.MapFieldName(owner, name, desc)
	}
	if newName != name {
		m.NameIndex = cp.AddUtf8(newName)
	}
	newDesc := remapDescriptorString(r, desc)
	if newDesc != desc {
		m.DescriptorIndex = cp.AddUtf8(newDesc)
	}
	return nil
}

// remapDescriptorText rewrites the descriptor/type text carried by every
// NameAndType and MethodType entry still holding original-namespace
// class names — the Utf8 strings that aren't Class entries and so
// aren't touched by RewriteClassNames. Must run after every lookup that
// needs to see original descriptor text (member references, lambda
// resolution) has already completed.
func remapDescriptorText(cp *classfile.ConstantPool, r *LoaderSimpleRemapper) {
	count := cp.Len()
	for i := 1; i < count; i++ {
		e, err := cp.Get(uint16(i))
		if err != nil {
			continue
		}
		switch v := e.(type) {
		case classfile.NameAndTypeInfo:
			desc, err := cp.Utf8(v.DescriptorIndex)
			if err != nil {
				continue
			}
			mapped := remapDescriptorString(r, desc)
			if mapped == desc {
				continue
			}
			cp.SetEntry(uint16(i), classfile.NameAndTypeInfo{
				NameIndex:       v.NameIndex,
				DescriptorIndex: cp.AddUtf8(mapped),
			})
		case classfile.MethodTypeInfo:
			desc, err := cp.Utf8(v.DescriptorIndex)
			if err != nil {
				continue
			}
			mapped := r.MapMethodDesc(desc)
			if mapped == desc {
				continue
			}
			cp.SetEntry(uint16(i), classfile.MethodTypeInfo{DescriptorIndex: cp.AddUtf8(mapped)})
		}
	}
}

func remapDescriptorString(r *LoaderSimpleRemapper, desc string) string {
	if mapping.IsMethodDescriptor(desc) {
		return r.MapMethodDesc(desc)
	}
	return r.MapType(desc)
}

const signatureAttributeName = "Signature"

// remapSignatureAttrs rewrites the class's own Signature attribute (JVMS
// ยง4.7.9); remapMemberAttrs does the same for a field's or method's, since
// all three share the identical two-byte-Utf8-index shape.
func remapSignatureAttrs(cp *classfile.ConstantPool, attrs []*classfile.Attribute, r *LoaderSimpleRemapper) error {
	a, ok := classfile.AttributeNamed(cp, attrs, signatureAttributeName)
	if !ok {
		return nil
	}
	return rewriteSignatureAttr(cp, a, r)
}

func rewriteSignatureAttr(cp *classfile.ConstantPool, a *classfile.Attribute, r *LoaderSimpleRemapper) error {
	if len(a.Info) != 2 {
		return nil
	}
	idx := uint16(a.Info[0])<<8 | uint16(a.Info[1])
	sig, err := cp.Utf8(idx)
	if err != nil {
		return err
	}
	mapped, ok := r.MapSignature(sig)
	if !ok || mapped == sig {
		return nil
	}
	newIdx := cp.AddUtf8(mapped)
	a.Info = []byte{byte(newIdx >> 8), byte(newIdx)}
	return nil
}

func remapMemberAttrs(cp *classfile.ConstantPool, attrs []*classfile.Attribute, r *LoaderSimpleRemapper) error {
	if a, ok := classfile.AttributeNamed(cp, attrs, signatureAttributeName); ok {
		if err := rewriteSignatureAttr(cp, a, r); err != nil {
			return err
		}
	}
	return nil
}

// remapCode rewrites a method's Code attribute: its own field/method
// Signature is handled by remapMemberAttrs above, and its exception
// table's catch types are Class entries already handled by
// RewriteClassNames; what's left is local-variable debug info and
// invokedynamic call sites, which reference the pool by index but need
// bytecode-aware rewriting (a synthetic lambda name resolved through the
// bootstrap method table, not a plain owner/name/desc lookup).
func remapCode(cf *classfile.ClassFile, cp *classfile.ConstantPool, m *classfile.MemberInfo, r *LoaderSimpleRemapper) error {
	if err := remapMemberAttrs(cp, m.Attributes, r); err != nil {
		return err
	}

	code, ok, err := cf.Code(m)
	if err != nil || !ok {
		return err
	}
	if err := remapLocalVariableAttrs(cp, code.Attributes, r); err != nil {
		return err
	}
	if err := remapInvokeDynamicNames(cf, cp, code, r); err != nil {
		return err
	}
	return cf.SetCode(m, code)
}

// remapInvokeDynamicNames rewrites the NameAndType of every invokedynamic
// call site whose bootstrap is LambdaMetafactory/altMetafactory, per
// MapInvokeDynamicName. Non-lambda invokedynamic sites are left alone.
// Only the name changes here — the descriptor text is left in its
// original form (remapDescriptorText rewrites it later, pool-wide, once
// every lookup like this one has already resolved).
func remapInvokeDynamicNames(cf *classfile.ClassFile, cp *classfile.ConstantPool, code *classfile.CodeAttr, r *LoaderSimpleRemapper) error {
	instrs, err := classfile.DecodeInstructions(code.Code)
	if err != nil {
		return err
	}
	changed := false
	for _, in := range instrs {
		if in.Opcode != classfile.OpInvokeDynamic {
			continue
		}
		idx, ok := in.ConstantPoolIndex()
		if !ok {
			continue
		}
		e, err := cp.Get(idx)
		if err != nil {
			continue
		}
		id, ok := e.(classfile.InvokeDynamicInfo)
		if !ok {
			continue
		}
		name, desc, err := cp.NameAndType(id.NameAndTypeIndex)
		if err != nil {
			continue
		}
		newName, err := r.MapInvokeDynamicName(cf, name, desc, id.BootstrapMethodAttrIndex)
		if err != nil || newName == name {
			continue
		}
		newNat := cp.AddNameAndType(newName, desc)
		newIdx := cp.Add(classfile.InvokeDynamicInfo{
			BootstrapMethodAttrIndex: id.BootstrapMethodAttrIndex,
			NameAndTypeIndex:         newNat,
		})
		in.SetConstantPoolIndex(newIdx)
		changed = true
	}
	if changed {
		code.Code = classfile.EncodeInstructions(instrs)
	}
	return nil
}
