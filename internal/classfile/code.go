package classfile

import (
	"bytes"
	"io"
)

// ExceptionTableEntry is one exception_table entry of a Code attribute
// (JVMS ยง4.7.3).
type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// CodeAttr is a decoded Code attribute (JVMS ยง4.7.3). The raw Code
// bytes are kept undecoded here; call DecodeInstructions on Code when
// rewriting constant-pool references or promoting call-site opcodes,
// then EncodeInstructions and reassign Code before calling EncodeCode.
type CodeAttr struct {
	MaxStack     uint16
	MaxLocals    uint16
	Code         []byte
	ExceptionTable []ExceptionTableEntry
	Attributes   []*Attribute
}

// DecodeCode parses a Code attribute's raw Info bytes.
func DecodeCode(info []byte) (*CodeAttr, error) {
	br := &reader{r: bytes.NewReader(info)}
	c := &CodeAttr{}
	br.read(&c.MaxStack)
	br.read(&c.MaxLocals)

	var codeLength uint32
	br.read(&codeLength)
	if br.err != nil {
		return nil, br.err
	}
	c.Code = make([]byte, codeLength)
	if _, err := io.ReadFull(br.r, c.Code); err != nil {
		return nil, err
	}

	var excCount uint16
	br.read(&excCount)
	c.ExceptionTable = make([]ExceptionTableEntry, excCount)
	for i := range c.ExceptionTable {
		br.read(&c.ExceptionTable[i].StartPC)
		br.read(&c.ExceptionTable[i].EndPC)
		br.read(&c.ExceptionTable[i].HandlerPC)
		br.read(&c.ExceptionTable[i].CatchType)
	}
	if br.err != nil {
		return nil, br.err
	}

	attrs, err := readAttributes(br)
	if err != nil {
		return nil, err
	}
	c.Attributes = attrs
	return c, nil
}

// EncodeCode serializes a CodeAttr back into raw Info bytes suitable for
// assignment to Attribute.Info.
func (c *CodeAttr) EncodeCode() ([]byte, error) {
	var buf bytes.Buffer
	bw := &writer{w: &buf}
	bw.write(c.MaxStack)
	bw.write(c.MaxLocals)
	bw.write(uint32(len(c.Code)))
	if bw.err != nil {
		return nil, bw.err
	}
	if _, err := buf.Write(c.Code); err != nil {
		return nil, err
	}
	bw.write(uint16(len(c.ExceptionTable)))
	for _, e := range c.ExceptionTable {
		bw.write(e.StartPC)
		bw.write(e.EndPC)
		bw.write(e.HandlerPC)
		bw.write(e.CatchType)
	}
	if bw.err != nil {
		return nil, bw.err
	}
	if err := writeAttributes(bw, c.Attributes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const codeAttributeName = "Code"

// Code returns the member's decoded Code attribute, if it has one
// (abstract/native methods don't).
func (cf *ClassFile) Code(m *MemberInfo) (*CodeAttr, bool, error) {
	a, ok := AttributeNamed(cf.ConstantPool, m.Attributes, codeAttributeName)
	if !ok {
		return nil, false, nil
	}
	c, err := DecodeCode(a.Info)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// SetCode re-encodes c and writes it back into the member's Code
// attribute, replacing the existing one if present or appending a new
// one otherwise.
func (cf *ClassFile) SetCode(m *MemberInfo, c *CodeAttr) error {
	info, err := c.EncodeCode()
	if err != nil {
		return err
	}
	if a, ok := AttributeNamed(cf.ConstantPool, m.Attributes, codeAttributeName); ok {
		a.Info = info
		return nil
	}
	nameIdx := cf.ConstantPool.AddUtf8(codeAttributeName)
	m.Attributes = append(m.Attributes, &Attribute{NameIndex: nameIdx, Info: info})
	return nil
}
