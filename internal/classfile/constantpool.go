package classfile

import (
	"fmt"
	"io"
)

// Constant pool tags (JVMS ยง4.4).
const (
	TagUtf8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldref           = 9
	TagMethodref           = 10
	TagInterfaceMethodref = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagDynamic            = 17
	TagInvokeDynamic      = 18
	TagModule             = 19
	TagPackage            = 20

	// tagPlaceholder marks the unusable slot following an 8-byte constant
	// (JVMS ยง4.4.5) and the index-0 slot; never written to a class file.
	tagPlaceholder = 255
)

// Entry is one constant_pool entry. Concrete types below mirror the JVMS
// ยง4.4 structures exactly (field names match the spec's own).
type Entry interface {
	Tag() uint8
}

type (
	Utf8Info               struct{ Value string }
	IntegerInfo             struct{ Value int32 }
	FloatInfo               struct{ Value float32 }
	LongInfo                struct{ Value int64 }
	DoubleInfo              struct{ Value float64 }
	ClassInfo               struct{ NameIndex uint16 }
	StringInfo              struct{ StringIndex uint16 }
	FieldrefInfo            struct{ ClassIndex, NameAndTypeIndex uint16 }
	MethodrefInfo           struct{ ClassIndex, NameAndTypeIndex uint16 }
	InterfaceMethodrefInfo  struct{ ClassIndex, NameAndTypeIndex uint16 }
	NameAndTypeInfo         struct{ NameIndex, DescriptorIndex uint16 }
	MethodHandleInfo        struct {
		ReferenceKind  uint8
		ReferenceIndex uint16
	}
	MethodTypeInfo   struct{ DescriptorIndex uint16 }
	DynamicInfo      struct{ BootstrapMethodAttrIndex, NameAndTypeIndex uint16 }
	InvokeDynamicInfo struct{ BootstrapMethodAttrIndex, NameAndTypeIndex uint16 }
	ModuleInfo       struct{ NameIndex uint16 }
	PackageInfo      struct{ NameIndex uint16 }
	placeholderInfo  struct{}
)

func (Utf8Info) Tag() uint8               { return TagUtf8 }
func (IntegerInfo) Tag() uint8            { return TagInteger }
func (FloatInfo) Tag() uint8              { return TagFloat }
func (LongInfo) Tag() uint8               { return TagLong }
func (DoubleInfo) Tag() uint8             { return TagDouble }
func (ClassInfo) Tag() uint8              { return TagClass }
func (StringInfo) Tag() uint8             { return TagString }
func (FieldrefInfo) Tag() uint8           { return TagFieldref }
func (MethodrefInfo) Tag() uint8          { return TagMethodref }
func (InterfaceMethodrefInfo) Tag() uint8 { return TagInterfaceMethodref }
func (NameAndTypeInfo) Tag() uint8        { return TagNameAndType }
func (MethodHandleInfo) Tag() uint8       { return TagMethodHandle }
func (MethodTypeInfo) Tag() uint8         { return TagMethodType }
func (DynamicInfo) Tag() uint8            { return TagDynamic }
func (InvokeDynamicInfo) Tag() uint8      { return TagInvokeDynamic }
func (ModuleInfo) Tag() uint8             { return TagModule }
func (PackageInfo) Tag() uint8            { return TagPackage }
func (placeholderInfo) Tag() uint8        { return tagPlaceholder }

// ConstantPool is the 1-indexed constant_pool table (index 0 and the slot
// following an 8-byte constant are unusable placeholders, JVMS ยง4.4.5).
type ConstantPool struct {
	entries []Entry
}

// NewConstantPool returns an empty pool with its reserved index-0 slot.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{entries: []Entry{placeholderInfo{}}}
}

// Get returns the entry at idx, or an error if idx is out of range or a
// placeholder slot.
func (cp *ConstantPool) Get(idx uint16) (Entry, error) {
	if int(idx) <= 0 || int(idx) >= len(cp.entries) {
		return nil, fmt.Errorf("classfile: constant pool index %d out of range", idx)
	}
	e := cp.entries[idx]
	if _, ok := e.(placeholderInfo); ok {
		return nil, fmt.Errorf("classfile: constant pool index %d is an unusable placeholder", idx)
	}
	return e, nil
}

// Len returns the number of slots, including the reserved index-0 and any
// 8-byte-constant placeholders (i.e. constant_pool_count).
func (cp *ConstantPool) Len() int { return len(cp.entries) }

// Utf8 resolves idx as a CONSTANT_Utf8_info and returns its string.
func (cp *ConstantPool) Utf8(idx uint16) (string, error) {
	e, err := cp.Get(idx)
	if err != nil {
		return "", err
	}
	u, ok := e.(Utf8Info)
	if !ok {
		return "", fmt.Errorf("classfile: constant pool index %d is not Utf8", idx)
	}
	return u.Value, nil
}

// ClassName resolves idx as a CONSTANT_Class_info and returns the
// referenced internal class name.
func (cp *ConstantPool) ClassName(idx uint16) (string, error) {
	e, err := cp.Get(idx)
	if err != nil {
		return "", err
	}
	c, ok := e.(ClassInfo)
	if !ok {
		return "", fmt.Errorf("classfile: constant pool index %d is not Class", idx)
	}
	return cp.Utf8(c.NameIndex)
}

// NameAndType resolves idx as a CONSTANT_NameAndType_info and returns the
// referenced name and descriptor strings.
func (cp *ConstantPool) NameAndType(idx uint16) (name, desc string, err error) {
	e, err := cp.Get(idx)
	if err != nil {
		return "", "", err
	}
	nt, ok := e.(NameAndTypeInfo)
	if !ok {
		return "", "", fmt.Errorf("classfile: constant pool index %d is not NameAndType", idx)
	}
	name, err = cp.Utf8(nt.NameIndex)
	if err != nil {
		return "", "", err
	}
	desc, err = cp.Utf8(nt.DescriptorIndex)
	return name, desc, err
}

// RefOwnerNameDesc resolves a Fieldref/Methodref/InterfaceMethodref entry
// into its owner's internal class name, member name, and descriptor.
func (cp *ConstantPool) RefOwnerNameDesc(idx uint16) (owner, name, desc string, err error) {
	e, err := cp.Get(idx)
	if err != nil {
		return "", "", "", err
	}
	var classIndex, natIndex uint16
	switch r := e.(type) {
	case FieldrefInfo:
		classIndex, natIndex = r.ClassIndex, r.NameAndTypeIndex
	case MethodrefInfo:
		classIndex, natIndex = r.ClassIndex, r.NameAndTypeIndex
	case InterfaceMethodrefInfo:
		classIndex, natIndex = r.ClassIndex, r.NameAndTypeIndex
	default:
		return "", "", "", fmt.Errorf("classfile: constant pool index %d is not a ref", idx)
	}
	owner, err = cp.ClassName(classIndex)
	if err != nil {
		return "", "", "", err
	}
	name, desc, err = cp.NameAndType(natIndex)
	return owner, name, desc, err
}

// Add appends an entry, returning its index; if e is a Long or Double it
// also appends the unusable placeholder slot the JVM spec requires and
// returns the index of the first (usable) slot.
func (cp *ConstantPool) Add(e Entry) uint16 {
	idx := uint16(len(cp.entries))
	cp.entries = append(cp.entries, e)
	if e.Tag() == TagLong || e.Tag() == TagDouble {
		cp.entries = append(cp.entries, placeholderInfo{})
	}
	return idx
}

// AddUtf8 finds an existing Utf8 entry with this exact value, or adds one.
// Real remappers generally prefer fresh entries to avoid aliasing unrelated
// uses of the same text, but deduplicating Utf8 constants is always safe
// since the entry itself carries no semantic role — only what references it
// does.
func (cp *ConstantPool) AddUtf8(value string) uint16 {
	for i, e := range cp.entries {
		if u, ok := e.(Utf8Info); ok && u.Value == value {
			return uint16(i)
		}
	}
	return cp.Add(Utf8Info{Value: value})
}

// AddClass finds or adds a CONSTANT_Class_info for the given internal name.
func (cp *ConstantPool) AddClass(internalName string) uint16 {
	nameIdx := cp.AddUtf8(internalName)
	for i, e := range cp.entries {
		if c, ok := e.(ClassInfo); ok && c.NameIndex == nameIdx {
			return uint16(i)
		}
	}
	return cp.Add(ClassInfo{NameIndex: nameIdx})
}

// SetEntry overwrites the entry at idx in place, for rewrites that mutate
// an existing slot's referenced indices rather than adding a fresh one
// (e.g. repointing a NameAndType's descriptor index after remapping it).
func (cp *ConstantPool) SetEntry(idx uint16, e Entry) {
	cp.entries[idx] = e
}

// AddNameAndType finds or adds a CONSTANT_NameAndType_info.
func (cp *ConstantPool) AddNameAndType(name, desc string) uint16 {
	nameIdx := cp.AddUtf8(name)
	descIdx := cp.AddUtf8(desc)
	for i, e := range cp.entries {
		if nt, ok := e.(NameAndTypeInfo); ok && nt.NameIndex == nameIdx && nt.DescriptorIndex == descIdx {
			return uint16(i)
		}
	}
	return cp.Add(NameAndTypeInfo{NameIndex: nameIdx, DescriptorIndex: descIdx})
}

func readConstantPool(br *reader) (*ConstantPool, error) {
	var count uint16
	br.read(&count)
	if br.err != nil {
		return nil, br.err
	}

	cp := NewConstantPool()
	for i := 0; i < int(count)-1; i++ {
		var tag uint8
		br.read(&tag)
		if br.err != nil {
			return nil, br.err
		}

		var e Entry
		switch tag {
		case TagUtf8:
			var n uint16
			br.read(&n)
			buf := make([]byte, n)
			if br.err == nil {
				_, br.err = readFull(br.r, buf)
			}
			e = Utf8Info{Value: string(buf)}
		case TagInteger:
			var v int32
			br.read(&v)
			e = IntegerInfo{Value: v}
		case TagFloat:
			var v float32
			br.read(&v)
			e = FloatInfo{Value: v}
		case TagLong:
			var v int64
			br.read(&v)
			e = LongInfo{Value: v}
		case TagDouble:
			var v float64
			br.read(&v)
			e = DoubleInfo{Value: v}
		case TagClass:
			var v ClassInfo
			br.read(&v.NameIndex)
			e = v
		case TagString:
			var v StringInfo
			br.read(&v.StringIndex)
			e = v
		case TagFieldref:
			var v FieldrefInfo
			br.read(&v.ClassIndex)
			br.read(&v.NameAndTypeIndex)
			e = v
		case TagMethodref:
			var v MethodrefInfo
			br.read(&v.ClassIndex)
			br.read(&v.NameAndTypeIndex)
			e = v
		case TagInterfaceMethodref:
			var v InterfaceMethodrefInfo
			br.read(&v.ClassIndex)
			br.read(&v.NameAndTypeIndex)
			e = v
		case TagNameAndType:
			var v NameAndTypeInfo
			br.read(&v.NameIndex)
			br.read(&v.DescriptorIndex)
			e = v
		case TagMethodHandle:
			var v MethodHandleInfo
			br.read(&v.ReferenceKind)
			br.read(&v.ReferenceIndex)
			e = v
		case TagMethodType:
			var v MethodTypeInfo
			br.read(&v.DescriptorIndex)
			e = v
		case TagDynamic:
			var v DynamicInfo
			br.read(&v.BootstrapMethodAttrIndex)
			br.read(&v.NameAndTypeIndex)
			e = v
		case TagInvokeDynamic:
			var v InvokeDynamicInfo
			br.read(&v.BootstrapMethodAttrIndex)
			br.read(&v.NameAndTypeIndex)
			e = v
		case TagModule:
			var v ModuleInfo
			br.read(&v.NameIndex)
			e = v
		case TagPackage:
			var v PackageInfo
			br.read(&v.NameIndex)
			e = v
		default:
			return nil, fmt.Errorf("classfile: unknown constant pool tag %d at index %d", tag, i+1)
		}
		if br.err != nil {
			return nil, br.err
		}

		cp.entries = append(cp.entries, e)
		if tag == TagLong || tag == TagDouble {
			cp.entries = append(cp.entries, placeholderInfo{})
			i++
		}
	}
	return cp, nil
}

func (cp *ConstantPool) write(bw *writer) error {
	bw.write(uint16(len(cp.entries)))
	for i := 1; i < len(cp.entries); i++ {
		e := cp.entries[i]
		if _, ok := e.(placeholderInfo); ok {
			continue
		}
		bw.write(e.Tag())
		switch v := e.(type) {
		case Utf8Info:
			bw.write(uint16(len(v.Value)))
			if bw.err == nil {
				_, bw.err = bw.w.Write([]byte(v.Value))
			}
		case IntegerInfo:
			bw.write(v.Value)
		case FloatInfo:
			bw.write(v.Value)
		case LongInfo:
			bw.write(v.Value)
		case DoubleInfo:
			bw.write(v.Value)
		case ClassInfo:
			bw.write(v.NameIndex)
		case StringInfo:
			bw.write(v.StringIndex)
		case FieldrefInfo:
			bw.write(v.ClassIndex)
			bw.write(v.NameAndTypeIndex)
		case MethodrefInfo:
			bw.write(v.ClassIndex)
			bw.write(v.NameAndTypeIndex)
		case InterfaceMethodrefInfo:
			bw.write(v.ClassIndex)
			bw.write(v.NameAndTypeIndex)
		case NameAndTypeInfo:
			bw.write(v.NameIndex)
			bw.write(v.DescriptorIndex)
		case MethodHandleInfo:
			bw.write(v.ReferenceKind)
			bw.write(v.ReferenceIndex)
		case MethodTypeInfo:
			bw.write(v.DescriptorIndex)
		case DynamicInfo:
			bw.write(v.BootstrapMethodAttrIndex)
			bw.write(v.NameAndTypeIndex)
		case InvokeDynamicInfo:
			bw.write(v.BootstrapMethodAttrIndex)
			bw.write(v.NameAndTypeIndex)
		case ModuleInfo:
			bw.write(v.NameIndex)
		case PackageInfo:
			bw.write(v.NameIndex)
		default:
			return fmt.Errorf("classfile: unknown constant pool entry type %T", e)
		}
		if bw.err != nil {
			return bw.err
		}
	}
	return nil
}

func readFull(r io.Reader, buf []byte) (int, error) {
	return io.ReadFull(r, buf)
}
