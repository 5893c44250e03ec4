package remap

import (
	"encoding/binary"

	"github.com/swind/go-jvmmap/internal/classfile"
)

const recordAttributeName = "Record"

// recordComponent is one record_component_info entry (JVMS ยง4.7.30).
type recordComponent struct {
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []*classfile.Attribute
}

// remapRecord rewrites a class's Record attribute, if present: every
// component's name (through MapRecordComponentName, per ยง4.7 — record
// components resolve exactly like fields), descriptor, and nested
// Signature attribute.
func remapRecord(cp *classfile.ConstantPool, attrs []*classfile.Attribute, owner string, r *LoaderSimpleRemapper) error {
	a, ok := classfile.AttributeNamed(cp, attrs, recordAttributeName)
	if !ok {
		return nil
	}
	components, err := decodeRecordComponents(a.Info)
	if err != nil {
		return err
	}
	for _, c := range components {
		name, err := cp.Utf8(c.NameIndex)
		if err != nil {
			continue
		}
		desc, err := cp.Utf8(c.DescriptorIndex)
		if err != nil {
			continue
		}
		newName := r.MapRecordComponentName(owner, name, desc)
		if newName != name {
			c.NameIndex = cp.AddUtf8(newName)
		}
		newDesc := remapDescriptorString(r, desc)
		if newDesc != desc {
			c.DescriptorIndex = cp.AddUtf8(newDesc)
		}
		if err := remapMemberAttrs(cp, c.Attributes, r); err != nil {
			return err
		}
	}
	a.Info = encodeRecordComponents(components)
	return nil
}

func decodeRecordComponents(info []byte) ([]*recordComponent, error) {
	if len(info) < 2 {
		return nil, nil
	}
	count := int(binary.BigEndian.Uint16(info))
	off := 2
	out := make([]*recordComponent, count)
	for i := 0; i < count; i++ {
		c := &recordComponent{}
		c.NameIndex = binary.BigEndian.Uint16(info[off:])
		c.DescriptorIndex = binary.BigEndian.Uint16(info[off+2:])
		attrCount := int(binary.BigEndian.Uint16(info[off+4:]))
		off += 6
		c.Attributes = make([]*classfile.Attribute, attrCount)
		for j := 0; j < attrCount; j++ {
			nameIdx := binary.BigEndian.Uint16(info[off:])
			length := int(binary.BigEndian.Uint32(info[off+2:]))
			off += 6
			c.Attributes[j] = &classfile.Attribute{NameIndex: nameIdx, Info: append([]byte(nil), info[off:off+length]...)}
			off += length
		}
		out[i] = c
	}
	return out, nil
}

func encodeRecordComponents(components []*recordComponent) []byte {
	var buf []byte
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(components)))
	for _, c := range components {
		buf = binary.BigEndian.AppendUint16(buf, c.NameIndex)
		buf = binary.BigEndian.AppendUint16(buf, c.DescriptorIndex)
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(c.Attributes)))
		for _, a := range c.Attributes {
			buf = binary.BigEndian.AppendUint16(buf, a.NameIndex)
			buf = binary.BigEndian.AppendUint32(buf, uint32(len(a.Info)))
			buf = append(buf, a.Info...)
		}
	}
	return buf
}
