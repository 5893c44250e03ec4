package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConstantPoolReservesIndexZero(t *testing.T) {
	cp := NewConstantPool()
	assert.Equal(t, 1, cp.Len())
	_, err := cp.Get(0)
	assert.Error(t, err)
}

func TestAddUtf8Dedupes(t *testing.T) {
	cp := NewConstantPool()
	a := cp.AddUtf8("hello")
	b := cp.AddUtf8("hello")
	assert.Equal(t, a, b)

	c := cp.AddUtf8("world")
	assert.NotEqual(t, a, c)
}

func TestAddClassDedupesByName(t *testing.T) {
	cp := NewConstantPool()
	a := cp.AddClass("a/b/Foo")
	b := cp.AddClass("a/b/Foo")
	assert.Equal(t, a, b)

	name, err := cp.ClassName(a)
	require.NoError(t, err)
	assert.Equal(t, "a/b/Foo", name)
}

func TestAddNameAndTypeDedupes(t *testing.T) {
	cp := NewConstantPool()
	a := cp.AddNameAndType("foo", "()V")
	b := cp.AddNameAndType("foo", "()V")
	assert.Equal(t, a, b)

	c := cp.AddNameAndType("foo", "()I")
	assert.NotEqual(t, a, c)
}

func TestLongAndDoubleConsumeTwoSlots(t *testing.T) {
	cp := NewConstantPool()
	before := cp.Len()
	idx := cp.Add(LongInfo{Value: 42})
	assert.Equal(t, uint16(before), idx)
	assert.Equal(t, before+2, cp.Len())

	_, err := cp.Get(idx + 1)
	assert.Error(t, err, "the slot after a long/double constant is an unusable placeholder")
}

func TestRefOwnerNameDescResolvesMethodref(t *testing.T) {
	cp := NewConstantPool()
	classIdx := cp.AddClass("a/b/Foo")
	natIdx := cp.AddNameAndType("bar", "()V")
	refIdx := cp.Add(MethodrefInfo{ClassIndex: classIdx, NameAndTypeIndex: natIdx})

	owner, name, desc, err := cp.RefOwnerNameDesc(refIdx)
	require.NoError(t, err)
	assert.Equal(t, "a/b/Foo", owner)
	assert.Equal(t, "bar", name)
	assert.Equal(t, "()V", desc)
}

func TestGetRejectsOutOfRangeIndex(t *testing.T) {
	cp := NewConstantPool()
	_, err := cp.Get(99)
	assert.Error(t, err)
}

func TestUtf8RejectsWrongEntryType(t *testing.T) {
	cp := NewConstantPool()
	classIdx := cp.AddClass("a/b/Foo")
	_, err := cp.Utf8(classIdx)
	assert.Error(t, err)
}

func TestSetEntryOverwritesInPlace(t *testing.T) {
	cp := NewConstantPool()
	idx := cp.AddClass("a/b/Foo")
	cp.SetEntry(idx, ClassInfo{NameIndex: cp.AddUtf8("a/b/Bar")})
	name, err := cp.ClassName(idx)
	require.NoError(t, err)
	assert.Equal(t, "a/b/Bar", name)
}
