package inherit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swind/go-jvmmap/classpath"
	"github.com/swind/go-jvmmap/internal/classfile"
)

func buildClassBytes(t *testing.T, thisName, superName string, ifaces []string, methods []struct {
	Name, Desc string
	Flags      classfile.AccessFlags
}) []byte {
	t.Helper()
	cp := classfile.NewConstantPool()
	cf := &classfile.ClassFile{
		MajorVersion: classfile.DefaultMajor,
		ConstantPool: cp,
		AccessFlags:  classfile.AccPublic | classfile.AccSuper,
		ThisClass:    cp.AddClass(thisName),
	}
	if superName != "" {
		cf.SuperClass = cp.AddClass(superName)
	}
	for _, i := range ifaces {
		cf.Interfaces = append(cf.Interfaces, cp.AddClass(i))
	}
	for _, m := range methods {
		cf.Methods = append(cf.Methods, &classfile.MemberInfo{
			AccessFlags:     m.Flags,
			NameIndex:       cp.AddUtf8(m.Name),
			DescriptorIndex: cp.AddUtf8(m.Desc),
		})
	}
	data, err := cf.ToBytes()
	require.NoError(t, err)
	return data
}

func TestDirectParentsReturnsSuperThenInterfaces(t *testing.T) {
	data := buildClassBytes(t, "a/b/Child", "a/b/Parent", []string{"a/b/IFace1", "a/b/IFace2"}, nil)
	p := NewProvider(classpath.FromLookup(map[string][]byte{"a/b/Child": data}))

	assert.Equal(t, []string{"a/b/Parent", "a/b/IFace1", "a/b/IFace2"}, p.DirectParents("a/b/Child"))
}

func TestDirectParentsMissingClassReturnsNil(t *testing.T) {
	p := NewProvider(classpath.FromLookup(nil))
	assert.Nil(t, p.DirectParents("a/b/Unknown"))
}

func TestDeclaredMethodsFiltersInheritableOnly(t *testing.T) {
	data := buildClassBytes(t, "a/b/Foo", "", nil, []struct {
		Name, Desc string
		Flags      classfile.AccessFlags
	}{
		{"instanceMethod", "()V", classfile.AccPublic},
		{"staticMethod", "()V", classfile.AccPublic | classfile.AccStatic},
		{"privateMethod", "()V", classfile.AccPrivate},
	})
	p := NewProvider(classpath.FromLookup(map[string][]byte{"a/b/Foo": data}))

	all := p.DeclaredMethods("a/b/Foo", false)
	assert.ElementsMatch(t, []string{"instanceMethod()V", "staticMethod()V", "privateMethod()V"}, all)

	inheritable := p.DeclaredMethods("a/b/Foo", true)
	assert.Equal(t, []string{"instanceMethod()V"}, inheritable)
}
