package classfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalClass(t *testing.T, thisName, superName string) *ClassFile {
	t.Helper()
	cp := NewConstantPool()
	cf := &ClassFile{
		MajorVersion: DefaultMajor,
		MinorVersion: DefaultMinor,
		ConstantPool: cp,
		AccessFlags:  AccPublic | AccSuper,
		ThisClass:    cp.AddClass(thisName),
		SuperClass:   cp.AddClass(superName),
	}
	return cf
}

func TestClassFileWriteReadRoundTrip(t *testing.T) {
	cf := minimalClass(t, "a/b/Foo", "java/lang/Object")
	data, err := cf.ToBytes()
	require.NoError(t, err)

	out, err := Read(bytes.NewReader(data))
	require.NoError(t, err)

	name, err := out.ThisClassName()
	require.NoError(t, err)
	assert.Equal(t, "a/b/Foo", name)

	super, err := out.SuperClassName()
	require.NoError(t, err)
	assert.Equal(t, "java/lang/Object", super)
}

func TestReadRejectsBadMagic(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{0, 0, 0, 0}))
	assert.Error(t, err)
}

func TestSuperClassNameEmptyWhenZero(t *testing.T) {
	cf := minimalClass(t, "java/lang/Object", "java/lang/Object")
	cf.SuperClass = 0
	name, err := cf.SuperClassName()
	require.NoError(t, err)
	assert.Equal(t, "", name)
}

func TestInterfaceNamesResolvesEachEntry(t *testing.T) {
	cf := minimalClass(t, "a/b/Foo", "java/lang/Object")
	cf.Interfaces = []uint16{
		cf.ConstantPool.AddClass("java/io/Serializable"),
		cf.ConstantPool.AddClass("java/lang/Comparable"),
	}
	names, err := cf.InterfaceNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"java/io/Serializable", "java/lang/Comparable"}, names)
}

func TestMemberNameAndDescriptor(t *testing.T) {
	cf := minimalClass(t, "a/b/Foo", "java/lang/Object")
	m := &MemberInfo{
		AccessFlags:     AccPublic,
		NameIndex:       cf.ConstantPool.AddUtf8("bar"),
		DescriptorIndex: cf.ConstantPool.AddUtf8("()V"),
	}
	name, err := cf.MemberName(m)
	require.NoError(t, err)
	assert.Equal(t, "bar", name)

	desc, err := cf.MemberDescriptor(m)
	require.NoError(t, err)
	assert.Equal(t, "()V", desc)
}

func TestAttributeNamedFindsByName(t *testing.T) {
	cp := NewConstantPool()
	nameIdx := cp.AddUtf8("Deprecated")
	attrs := []*Attribute{{NameIndex: nameIdx, Info: nil}}
	a, ok := AttributeNamed(cp, attrs, "Deprecated")
	require.True(t, ok)
	assert.Same(t, attrs[0], a)

	_, ok = AttributeNamed(cp, attrs, "Signature")
	assert.False(t, ok)
}

func TestWriteReadRoundTripWithMembersAndAttributes(t *testing.T) {
	cf := minimalClass(t, "a/b/Foo", "java/lang/Object")
	methodNameIdx := cf.ConstantPool.AddUtf8("run")
	methodDescIdx := cf.ConstantPool.AddUtf8("()V")
	cf.Methods = []*MemberInfo{
		{AccessFlags: AccPublic, NameIndex: methodNameIdx, DescriptorIndex: methodDescIdx},
	}
	sigNameIdx := cf.ConstantPool.AddUtf8("Signature")
	cf.Attributes = []*Attribute{{NameIndex: sigNameIdx, Info: []byte("()V")}}

	data, err := cf.ToBytes()
	require.NoError(t, err)
	out, err := Read(bytes.NewReader(data))
	require.NoError(t, err)

	require.Len(t, out.Methods, 1)
	name, err := out.MemberName(out.Methods[0])
	require.NoError(t, err)
	assert.Equal(t, "run", name)

	require.Len(t, out.Attributes, 1)
	attrName, err := out.ConstantPool.Utf8(out.Attributes[0].NameIndex)
	require.NoError(t, err)
	assert.Equal(t, "Signature", attrName)
	assert.Equal(t, []byte("()V"), out.Attributes[0].Info)
}
