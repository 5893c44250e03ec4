package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapTypeRewritesObjectReference(t *testing.T) {
	lookup := map[string]string{"a/b/Foo": "a/b/Bar"}
	assert.Equal(t, "La/b/Bar;", MapType("La/b/Foo;", lookup))
	assert.Equal(t, "[La/b/Bar;", MapType("[La/b/Foo;", lookup))
}

func TestMapTypeLeavesPrimitivesAndArraysAlone(t *testing.T) {
	lookup := map[string]string{"a/b/Foo": "a/b/Bar"}
	assert.Equal(t, "I", MapType("I", lookup))
	assert.Equal(t, "[I", MapType("[I", lookup))
	assert.Equal(t, "[[I", MapType("[[I", lookup))
}

func TestMapTypeEmptyLookupIsNoop(t *testing.T) {
	assert.Equal(t, "La/b/Foo;", MapType("La/b/Foo;", nil))
}

func TestMapTypeUnknownOwnerIsUnchanged(t *testing.T) {
	lookup := map[string]string{"a/b/Other": "a/b/Renamed"}
	assert.Equal(t, "La/b/Foo;", MapType("La/b/Foo;", lookup))
}

func TestMapMethodDescRewritesArgsAndReturn(t *testing.T) {
	lookup := map[string]string{
		"a/b/Foo": "a/b/Bar",
		"a/b/Ret": "a/b/NewRet",
	}
	in := "(La/b/Foo;I[La/b/Foo;)La/b/Ret;"
	want := "(La/b/Bar;I[La/b/Bar;)La/b/NewRet;"
	assert.Equal(t, want, MapMethodDesc(in, lookup))
}

func TestMapMethodDescNoChangeReturnsSameText(t *testing.T) {
	lookup := map[string]string{"a/b/Other": "a/b/Renamed"}
	in := "(I[Ljava/lang/String;)V"
	assert.Equal(t, in, MapMethodDesc(in, lookup))
}

func TestMapMethodDescRejectsNonMethodDescriptor(t *testing.T) {
	lookup := map[string]string{"a/b/Foo": "a/b/Bar"}
	assert.Equal(t, "La/b/Foo;", MapMethodDesc("La/b/Foo;", lookup))
}

func TestReturnType(t *testing.T) {
	assert.Equal(t, "Ljava/lang/String;", ReturnType("(I)Ljava/lang/String;"))
	assert.Equal(t, "V", ReturnType("()V"))
	assert.Equal(t, "", ReturnType("not-a-descriptor"))
}

func TestReturnTypeInternalName(t *testing.T) {
	assert.Equal(t, "java/lang/String", ReturnTypeInternalName("(I)Ljava/lang/String;"))
	assert.Equal(t, "java/lang/String", ReturnTypeInternalName("(I)[Ljava/lang/String;"))
	assert.Equal(t, "", ReturnTypeInternalName("()I"))
	assert.Equal(t, "", ReturnTypeInternalName("()V"))
}

func TestIsMethodDescriptor(t *testing.T) {
	assert.True(t, IsMethodDescriptor("()V"))
	assert.False(t, IsMethodDescriptor("I"))
	assert.False(t, IsMethodDescriptor(""))
}
