// Package classfile reads and writes JVM class files (JVMS ยง4), the
// minimal ASM-like collaborator the remapper and access widener need:
// enough of the constant pool, field/method tables, and the Code
// attribute's bytecode to rewrite names and promote call-site opcodes.
package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	Magic        uint32 = 0xCAFEBABE
	DefaultMajor uint16 = 52 // Java 8
	DefaultMinor uint16 = 0
)

// ClassFile is a parsed class file, field-for-field per JVMS ยง4.1.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool *ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []*MemberInfo
	Methods      []*MemberInfo
	Attributes   []*Attribute
}

// MemberInfo is a field_info or method_info structure (JVMS ยง4.5/ยง4.6);
// the two share an identical binary shape.
type MemberInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []*Attribute
}

// Attribute is an attribute_info structure (JVMS ยง4.7). Info holds the raw
// bytes; Code attributes are additionally decoded into CodeAttr on demand
// via DecodeCode/EncodeCode so bytecode-level rewrites stay localized to
// the instruction stream instead of requiring every attribute kind to be
// understood.
type Attribute struct {
	NameIndex uint16
	Info      []byte
}

// ThisClassName resolves the class's own internal name via the constant
// pool (CONSTANT_Class_info -> CONSTANT_Utf8_info).
func (cf *ClassFile) ThisClassName() (string, error) {
	return cf.ConstantPool.ClassName(cf.ThisClass)
}

// SuperClassName resolves the superclass's internal name, or "" for
// java/lang/Object's own class file (SuperClass == 0).
func (cf *ClassFile) SuperClassName() (string, error) {
	if cf.SuperClass == 0 {
		return "", nil
	}
	return cf.ConstantPool.ClassName(cf.SuperClass)
}

// InterfaceNames resolves every implemented interface's internal name.
func (cf *ClassFile) InterfaceNames() ([]string, error) {
	out := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		name, err := cf.ConstantPool.ClassName(idx)
		if err != nil {
			return nil, err
		}
		out[i] = name
	}
	return out, nil
}

// MemberName resolves a field_info/method_info's name string.
func (cf *ClassFile) MemberName(m *MemberInfo) (string, error) {
	return cf.ConstantPool.Utf8(m.NameIndex)
}

// MemberDescriptor resolves a field_info/method_info's descriptor string.
func (cf *ClassFile) MemberDescriptor(m *MemberInfo) (string, error) {
	return cf.ConstantPool.Utf8(m.DescriptorIndex)
}

// AttributeNamed looks up the first attribute named name on a member or class,
// given the owning ConstantPool to resolve attribute name indices.
func AttributeNamed(cp *ConstantPool, attrs []*Attribute, name string) (*Attribute, bool) {
	for _, a := range attrs {
		n, err := cp.Utf8(a.NameIndex)
		if err == nil && n == name {
			return a, true
		}
	}
	return nil, false
}

// Read parses a class file from r.
func Read(r io.Reader) (*ClassFile, error) {
	br := &reader{r: r}

	var magic uint32
	br.read(&magic)
	if br.err == nil && magic != Magic {
		return nil, fmt.Errorf("classfile: bad magic %#x", magic)
	}

	cf := &ClassFile{}
	br.read(&cf.MinorVersion)
	br.read(&cf.MajorVersion)
	if br.err != nil {
		return nil, br.err
	}

	cp, err := readConstantPool(br)
	if err != nil {
		return nil, err
	}
	cf.ConstantPool = cp

	var accessFlags uint16
	br.read(&accessFlags)
	cf.AccessFlags = AccessFlags(accessFlags)
	br.read(&cf.ThisClass)
	br.read(&cf.SuperClass)

	var interfaceCount uint16
	br.read(&interfaceCount)
	cf.Interfaces = make([]uint16, interfaceCount)
	for i := range cf.Interfaces {
		br.read(&cf.Interfaces[i])
	}
	if br.err != nil {
		return nil, br.err
	}

	if cf.Fields, err = readMembers(br); err != nil {
		return nil, err
	}
	if cf.Methods, err = readMembers(br); err != nil {
		return nil, err
	}
	if cf.Attributes, err = readAttributes(br); err != nil {
		return nil, err
	}
	return cf, br.err
}

func readMembers(br *reader) ([]*MemberInfo, error) {
	var count uint16
	br.read(&count)
	out := make([]*MemberInfo, count)
	for i := range out {
		m := &MemberInfo{}
		var flags uint16
		br.read(&flags)
		m.AccessFlags = AccessFlags(flags)
		br.read(&m.NameIndex)
		br.read(&m.DescriptorIndex)
		if br.err != nil {
			return nil, br.err
		}
		attrs, err := readAttributes(br)
		if err != nil {
			return nil, err
		}
		m.Attributes = attrs
		out[i] = m
	}
	return out, br.err
}

func readAttributes(br *reader) ([]*Attribute, error) {
	var count uint16
	br.read(&count)
	out := make([]*Attribute, count)
	for i := range out {
		a := &Attribute{}
		br.read(&a.NameIndex)
		var length uint32
		br.read(&length)
		if br.err != nil {
			return nil, br.err
		}
		a.Info = make([]byte, length)
		if _, err := io.ReadFull(br.r, a.Info); err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, br.err
}

// Write serializes cf in JVMS ยง4.1 order.
func (cf *ClassFile) Write(w io.Writer) error {
	bw := &writer{w: w}
	bw.write(Magic)
	bw.write(cf.MinorVersion)
	bw.write(cf.MajorVersion)
	if bw.err != nil {
		return bw.err
	}
	if err := cf.ConstantPool.write(bw); err != nil {
		return err
	}
	bw.write(uint16(cf.AccessFlags))
	bw.write(cf.ThisClass)
	bw.write(cf.SuperClass)
	bw.write(uint16(len(cf.Interfaces)))
	for _, iface := range cf.Interfaces {
		bw.write(iface)
	}
	if err := writeMembers(bw, cf.Fields); err != nil {
		return err
	}
	if err := writeMembers(bw, cf.Methods); err != nil {
		return err
	}
	return writeAttributes(bw, cf.Attributes)
}

func writeMembers(bw *writer, members []*MemberInfo) error {
	bw.write(uint16(len(members)))
	for _, m := range members {
		bw.write(uint16(m.AccessFlags))
		bw.write(m.NameIndex)
		bw.write(m.DescriptorIndex)
		if bw.err != nil {
			return bw.err
		}
		if err := writeAttributes(bw, m.Attributes); err != nil {
			return err
		}
	}
	return bw.err
}

func writeAttributes(bw *writer, attrs []*Attribute) error {
	bw.write(uint16(len(attrs)))
	for _, a := range attrs {
		bw.write(a.NameIndex)
		bw.write(uint32(len(a.Info)))
		if bw.err != nil {
			return bw.err
		}
		if _, err := bw.w.Write(a.Info); err != nil {
			return err
		}
	}
	return bw.err
}

// ToBytes serializes cf into a byte slice.
func (cf *ClassFile) ToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := cf.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// reader/writer wrap binary.Read/Write so a sequence of field reads can
// check a single sticky error at the end instead of after every call.
type reader struct {
	r   io.Reader
	err error
}

func (r *reader) read(v any) {
	if r.err != nil {
		return
	}
	r.err = binary.Read(r.r, binary.BigEndian, v)
}

type writer struct {
	w   io.Writer
	err error
}

func (w *writer) write(v any) {
	if w.err != nil {
		return
	}
	w.err = binary.Write(w.w, binary.BigEndian, v)
}
