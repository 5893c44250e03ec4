package classfile

// RewriteClassNames rewrites every CONSTANT_Class_info's referenced name
// through rename, in place. rename returns the (possibly unchanged) new
// internal name; it is called once per Class entry present when the
// rewrite starts. This is the single primitive class-level remapping
// (this/super/interfaces/exception types/instanceof/checkcast/
// new/anewarray targets, all of which are just Class entries) builds on.
func (cp *ConstantPool) RewriteClassNames(rename func(internalName string) string) {
	for i, e := range cp.entries {
		c, ok := e.(ClassInfo)
		if !ok {
			continue
		}
		name, err := cp.Utf8(c.NameIndex)
		if err != nil {
			continue
		}
		newName := rename(name)
		if newName == name {
			continue
		}
		cp.entries[i] = ClassInfo{NameIndex: cp.AddUtf8(newName)}
	}
}

// MemberRef identifies a field or method by owner/name/descriptor —
// the granularity the mapping algebra remaps at.
type MemberRef struct {
	Owner, Name, Desc string
}

// RewriteMemberRefs rewrites every Fieldref/Methodref/InterfaceMethodref
// entry's owner, name, and descriptor through renameOwner/renameMember,
// in place. renameMember receives the ORIGINAL owner (not the renamed
// one) alongside the member's own name/descriptor/isMethod flag, so a
// remapper can look up the mapping by the pre-rename owner without
// needing an inverse index.
func (cp *ConstantPool) RewriteMemberRefs(
	renameOwner func(internalName string) string,
	renameMember func(owner, name, desc string, isMethod bool) string,
) {
	for i, e := range cp.entries {
		var classIndex, natIndex uint16
		var isMethod bool
		switch r := e.(type) {
		case FieldrefInfo:
			classIndex, natIndex, isMethod = r.ClassIndex, r.NameAndTypeIndex, false
		case MethodrefInfo:
			classIndex, natIndex, isMethod = r.ClassIndex, r.NameAndTypeIndex, true
		case InterfaceMethodrefInfo:
			classIndex, natIndex, isMethod = r.ClassIndex, r.NameAndTypeIndex, true
		default:
			continue
		}
		owner, err := cp.ClassName(classIndex)
		if err != nil {
			continue
		}
		name, desc, err := cp.NameAndType(natIndex)
		if err != nil {
			continue
		}
		newName := renameMember(owner, name, desc, isMethod)
		newOwner := renameOwner(owner)
		if newName == name && newOwner == owner {
			continue
		}
		newClassIndex := cp.AddClass(newOwner)
		newNatIndex := cp.AddNameAndType(newName, desc)
		switch e.(type) {
		case FieldrefInfo:
			cp.entries[i] = FieldrefInfo{ClassIndex: newClassIndex, NameAndTypeIndex: newNatIndex}
		case MethodrefInfo:
			cp.entries[i] = MethodrefInfo{ClassIndex: newClassIndex, NameAndTypeIndex: newNatIndex}
		case InterfaceMethodrefInfo:
			cp.entries[i] = InterfaceMethodrefInfo{ClassIndex: newClassIndex, NameAndTypeIndex: newNatIndex}
		}
	}
}

// PromoteInvokespecial rewrites INVOKESPECIAL call sites in code that
// target owner/name/desc into INVOKEVIRTUAL, the widener's job whenever
// a private method becomes public: javac emits invokespecial for calls
// to private/constructor/super methods, and a widened method called
// from another class must be dispatched virtually instead. Constructor
// calls (<init>) and super calls are left untouched by the caller, which
// should only invoke this for members it has actually widened.
func PromoteInvokespecial(cp *ConstantPool, code []byte, owner, name, desc string) ([]byte, error) {
	instrs, err := DecodeInstructions(code)
	if err != nil {
		return nil, err
	}
	changed := false
	for _, in := range instrs {
		if in.Opcode != OpInvokeSpecial {
			continue
		}
		idx, ok := in.ConstantPoolIndex()
		if !ok {
			continue
		}
		o, n, d, err := cp.RefOwnerNameDesc(idx)
		if err != nil {
			continue
		}
		if o == owner && n == name && d == desc {
			in.Opcode = OpInvokeVirtual
			changed = true
		}
	}
	if !changed {
		return code, nil
	}
	return EncodeInstructions(instrs), nil
}

// PromoteMethodHandles rewrites every CONSTANT_MethodHandle_info in cp
// that is tagged invokespecial and targets owner/name/desc to
// invokevirtual, in place — the second half of ยง4.9's call-site
// promotion, covering method handles captured as invokedynamic
// bootstrap arguments (e.g. a method reference passed to a lambda
// factory) rather than a plain invokespecial instruction.
func (cp *ConstantPool) PromoteMethodHandles(owner, name, desc string) {
	for i, e := range cp.entries {
		mh, ok := e.(MethodHandleInfo)
		if !ok || mh.ReferenceKind != RefInvokeSpecial {
			continue
		}
		o, n, d, err := cp.RefOwnerNameDesc(mh.ReferenceIndex)
		if err != nil || o != owner || n != name || d != desc {
			continue
		}
		cp.entries[i] = MethodHandleInfo{ReferenceKind: RefInvokeVirtual, ReferenceIndex: mh.ReferenceIndex}
	}
}

// WalkCallsites calls visit once per invokevirtual/invokespecial/
// invokestatic/invokeinterface instruction found in code, with the
// resolved owner/name/descriptor of its target, for general call-site
// auditing. invokedynamic instructions are not visited.
func WalkCallsites(cp *ConstantPool, code []byte, visit func(in *Instruction, ref MemberRef)) error {
	instrs, err := DecodeInstructions(code)
	if err != nil {
		return err
	}
	for _, in := range instrs {
		if !isCallsiteOpcode(in.Opcode) {
			continue
		}
		idx, ok := in.ConstantPoolIndex()
		if !ok {
			continue
		}
		owner, name, desc, err := cp.RefOwnerNameDesc(idx)
		if err != nil {
			continue
		}
		visit(in, MemberRef{Owner: owner, Name: name, Desc: desc})
	}
	return nil
}
