package widener

import (
	"encoding/binary"

	"github.com/swind/go-jvmmap/internal/classfile"
)

const innerClassesAttributeName = "InnerClasses"

// innerClassEntry is one classes[] entry of the InnerClasses attribute
// (JVMS ยง4.7.6). A nested class's own declared visibility (private,
// protected — bits a top-level class's own access_flags never carries)
// lives only here, in the entry a class file keeps describing itself.
type innerClassEntry struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags classfile.AccessFlags
}

// ApplyToClass mutates cf in place per tree's entry for cf's own
// internal name (ยง4.9 Application). It is a thin wrapper over
// ApplyVisitor with no hooks attached, so the in-place and streaming
// application paths are, by construction, the same implementation and
// always produce identical output for equivalent inputs.
func ApplyToClass(cf *classfile.ClassFile, t Tree) error {
	return ApplyVisitor(cf, t, Visitor{})
}

func applyClassMask(flags classfile.AccessFlags, mask AccessMask) classfile.AccessFlags {
	if mask.Has(Accessible) || mask.Has(Extendable) {
		flags = flags.Promoted()
	}
	if mask.Has(Extendable) {
		flags = flags.WithoutFinal()
	}
	return flags
}

func applyFieldMask(flags classfile.AccessFlags, mask AccessMask, ownerIsInterface bool) classfile.AccessFlags {
	if mask.Has(Accessible) {
		flags = flags.Promoted()
	}
	if mask.Has(Mutable) && !(ownerIsInterface && flags.IsStatic()) {
		flags = flags.WithoutFinal()
	}
	return flags
}

func applyMethodMask(flags classfile.AccessFlags, mask AccessMask, name string, ownerIsInterface bool) classfile.AccessFlags {
	if mask.Has(Accessible) {
		wasPrivate := flags.IsPrivate()
		flags = flags.Promoted()
		if wasPrivate && (name == "<init>" || ownerIsInterface || flags.IsStatic()) {
			flags |= classfile.AccFinal
		}
	}
	if mask.Has(Extendable) {
		if !flags.IsPublic() {
			flags = (flags &^ classfile.AccPrivate) | classfile.AccProtected
		}
		flags = flags.WithoutFinal()
	}
	return flags
}

// applyInnerClassSelfEntry applies the same class-level mask to the
// InnerClasses entry describing owner itself, if the class has one
// (only nested classes do).
func applyInnerClassSelfEntry(cf *classfile.ClassFile, owner string, mask AccessMask) error {
	a, ok := classfile.AttributeNamed(cf.ConstantPool, cf.Attributes, innerClassesAttributeName)
	if !ok {
		return nil
	}
	entries, err := decodeInnerClasses(a.Info)
	if err != nil {
		return err
	}
	changed := false
	for _, ic := range entries {
		name, err := cf.ConstantPool.ClassName(ic.InnerClassInfoIndex)
		if err != nil || name != owner {
			continue
		}
		ic.InnerClassAccessFlags = applyClassMask(ic.InnerClassAccessFlags, mask)
		changed = true
	}
	if changed {
		a.Info = encodeInnerClasses(entries)
	}
	return nil
}

func decodeInnerClasses(info []byte) ([]*innerClassEntry, error) {
	if len(info) < 2 {
		return nil, nil
	}
	count := int(binary.BigEndian.Uint16(info))
	out := make([]*innerClassEntry, count)
	off := 2
	for i := 0; i < count; i++ {
		out[i] = &innerClassEntry{
			InnerClassInfoIndex:   binary.BigEndian.Uint16(info[off:]),
			OuterClassInfoIndex:   binary.BigEndian.Uint16(info[off+2:]),
			InnerNameIndex:        binary.BigEndian.Uint16(info[off+4:]),
			InnerClassAccessFlags: classfile.AccessFlags(binary.BigEndian.Uint16(info[off+6:])),
		}
		off += 8
	}
	return out, nil
}

func encodeInnerClasses(entries []*innerClassEntry) []byte {
	var buf []byte
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(entries)))
	for _, ic := range entries {
		buf = binary.BigEndian.AppendUint16(buf, ic.InnerClassInfoIndex)
		buf = binary.BigEndian.AppendUint16(buf, ic.OuterClassInfoIndex)
		buf = binary.BigEndian.AppendUint16(buf, ic.InnerNameIndex)
		buf = binary.BigEndian.AppendUint16(buf, uint16(ic.InnerClassAccessFlags))
	}
	return buf
}

// clearPermittedSubclasses drops the PermittedSubclasses attribute
// entirely rather than zeroing its list: an empty list still seals the
// class against every subclass, whereas no attribute at all is an
// ordinary unsealed class.
func clearPermittedSubclasses(cf *classfile.ClassFile) {
	out := cf.Attributes[:0]
	for _, a := range cf.Attributes {
		name, err := cf.ConstantPool.Utf8(a.NameIndex)
		if err == nil && name == "PermittedSubclasses" {
			continue
		}
		out = append(out, a)
	}
	cf.Attributes = out
}

// promoteCallSites rewrites, within every method body of cf, an
// INVOKESPECIAL targeting a widened same-class non-constructor method
// into INVOKEVIRTUAL, and any BootstrapMethods method handle tagged
// H_INVOKESPECIAL against the same target into H_INVOKEVIRTUAL — a
// compiler emits invokespecial for a private target it can statically
// bind, and widening that target changes nothing about call-site
// behavior unless dispatch is switched to virtual too. Built on
// PromoteInvokespecial/PromoteMethodHandles, one call per widened
// member.
func promoteCallSites(cf *classfile.ClassFile, widened map[MemberKey]bool) error {
	for _, m := range cf.Methods {
		code, ok, err := cf.Code(m)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		for key := range widened {
			newCode, err := classfile.PromoteInvokespecial(cf.ConstantPool, code.Code, key.Owner, key.Name, key.Desc)
			if err != nil {
				return err
			}
			code.Code = newCode
		}
		if err := cf.SetCode(m, code); err != nil {
			return err
		}
	}

	for key := range widened {
		cf.ConstantPool.PromoteMethodHandles(key.Owner, key.Name, key.Desc)
	}
	return nil
}
