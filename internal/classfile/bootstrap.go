package classfile

import (
	"bytes"
	"fmt"
)

// BootstrapMethod is one entry of the BootstrapMethods attribute (JVMS
// ยง4.7.23), referenced by an invokedynamic instruction's
// bootstrap_method_attr_index (an index into this slice, NOT a constant
// pool index).
type BootstrapMethod struct {
	MethodRefIndex uint16 // constant pool index of a CONSTANT_MethodHandle_info
	Arguments      []uint16
}

const bootstrapMethodsAttributeName = "BootstrapMethods"

// Method handle reference kinds (JVMS ยง5.4.3.5).
const (
	RefGetField         uint8 = 1
	RefGetStatic        uint8 = 2
	RefPutField         uint8 = 3
	RefPutStatic        uint8 = 4
	RefInvokeVirtual    uint8 = 5
	RefInvokeStatic     uint8 = 6
	RefInvokeSpecial    uint8 = 7
	RefNewInvokeSpecial uint8 = 8
	RefInvokeInterface  uint8 = 9
)

// BootstrapMethods returns the class's BootstrapMethods attribute
// entries, decoded, or ok=false if the class has none (true of any
// class file with no invokedynamic instructions).
func (cf *ClassFile) BootstrapMethods() ([]BootstrapMethod, bool, error) {
	a, ok := AttributeNamed(cf.ConstantPool, cf.Attributes, bootstrapMethodsAttributeName)
	if !ok {
		return nil, false, nil
	}
	methods, err := decodeBootstrapMethods(a.Info)
	if err != nil {
		return nil, false, err
	}
	return methods, true, nil
}

// SetBootstrapMethods re-encodes methods and writes it back into the
// class's BootstrapMethods attribute, replacing the existing one if
// present or appending a new one otherwise.
func (cf *ClassFile) SetBootstrapMethods(methods []BootstrapMethod) {
	info := encodeBootstrapMethods(methods)
	if a, ok := AttributeNamed(cf.ConstantPool, cf.Attributes, bootstrapMethodsAttributeName); ok {
		a.Info = info
		return
	}
	nameIdx := cf.ConstantPool.AddUtf8(bootstrapMethodsAttributeName)
	cf.Attributes = append(cf.Attributes, &Attribute{NameIndex: nameIdx, Info: info})
}

func decodeBootstrapMethods(info []byte) ([]BootstrapMethod, error) {
	br := &reader{r: bytes.NewReader(info)}
	var count uint16
	br.read(&count)
	out := make([]BootstrapMethod, count)
	for i := range out {
		br.read(&out[i].MethodRefIndex)
		var argCount uint16
		br.read(&argCount)
		out[i].Arguments = make([]uint16, argCount)
		for j := range out[i].Arguments {
			br.read(&out[i].Arguments[j])
		}
	}
	if br.err != nil {
		return nil, br.err
	}
	return out, nil
}

func encodeBootstrapMethods(methods []BootstrapMethod) []byte {
	var buf bytes.Buffer
	bw := &writer{w: &buf}
	bw.write(uint16(len(methods)))
	for _, m := range methods {
		bw.write(m.MethodRefIndex)
		bw.write(uint16(len(m.Arguments)))
		for _, a := range m.Arguments {
			bw.write(a)
		}
	}
	return buf.Bytes()
}

// MethodHandleRef resolves a CONSTANT_MethodHandle_info at idx into its
// referenced owner/name/descriptor and JVMS ยง5.4.3.5 reference kind
// (1-9: getField/getStatic/putField/putStatic/invokeVirtual/
// invokeStatic/invokeSpecial/newInvokeSpecial/invokeInterface).
func (cp *ConstantPool) MethodHandleRef(idx uint16) (kind uint8, owner, name, desc string, err error) {
	e, err := cp.Get(idx)
	if err != nil {
		return 0, "", "", "", err
	}
	mh, ok := e.(MethodHandleInfo)
	if !ok {
		return 0, "", "", "", fmt.Errorf("classfile: constant pool index %d is not MethodHandle", idx)
	}
	owner, name, desc, err = cp.RefOwnerNameDesc(mh.ReferenceIndex)
	return mh.ReferenceKind, owner, name, desc, err
}
