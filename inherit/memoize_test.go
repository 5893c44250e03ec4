package inherit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swind/go-jvmmap/classpath"
	"github.com/swind/go-jvmmap/internal/classfile"
)

func TestMemoizingCallsLoaderOnceAcrossRepeatedDirectParents(t *testing.T) {
	data := buildClassBytes(t, "a/b/Child", "a/b/Parent", nil, nil)
	loaderCalls := 0
	loader := func(name string) ([]byte, bool) {
		loaderCalls++
		d, ok := map[string][]byte{"a/b/Child": data}[name]
		return d, ok
	}
	m := NewMemoizing(NewProvider(loader))

	for i := 0; i < 3; i++ {
		assert.Equal(t, []string{"a/b/Parent"}, m.DirectParents("a/b/Child"))
	}
	assert.Equal(t, 1, loaderCalls)
}

func TestMemoizingCachesDeclaredMethodsSeparatelyByInheritableOnly(t *testing.T) {
	data := buildClassBytes(t, "a/b/Foo", "", nil, []struct {
		Name, Desc string
		Flags      classfile.AccessFlags
	}{
		{"pub", "()V", classfile.AccPublic},
		{"priv", "()V", classfile.AccPrivate},
	})
	loaderCalls := 0
	loader := func(name string) ([]byte, bool) {
		loaderCalls++
		d, ok := map[string][]byte{"a/b/Foo": data}[name]
		return d, ok
	}
	m := NewMemoizing(NewProvider(loader))

	all := m.DeclaredMethods("a/b/Foo", false)
	inheritable := m.DeclaredMethods("a/b/Foo", true)
	all2 := m.DeclaredMethods("a/b/Foo", false)

	assert.ElementsMatch(t, []string{"pub()V", "priv()V"}, all)
	assert.Equal(t, []string{"pub()V"}, inheritable)
	assert.Equal(t, all, all2)
	assert.Equal(t, 2, loaderCalls, "one call per distinct inheritableOnly value, cached thereafter")
}

func TestNewMemoizingReturnsNilParentsForMissingClass(t *testing.T) {
	p := NewProvider(classpath.FromLookup(nil))
	m := NewMemoizing(p)
	require.NotNil(t, m)
	assert.Nil(t, m.DirectParents("a/b/Missing"))
}
