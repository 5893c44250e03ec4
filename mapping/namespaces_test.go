package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoNamespaceMappings() *Mappings {
	desc := "I"
	return &Mappings{
		Namespaces: []string{"official", "named"},
		Classes: []MappedClass{
			{
				Names: []string{"a/b/Foo", "a/b/Bar"},
				Fields: []MappedField{
					{Names: []string{"x", "y"}, Desc: &desc},
				},
				Methods: []MappedMethod{
					{Names: []string{"m", "n"}, Desc: "(La/b/Foo;)V"},
				},
			},
		},
	}
}

func TestRenameNamespacesKeepsNamesTuplesUnchanged(t *testing.T) {
	m := twoNamespaceMappings()
	out, err := RenameNamespaces(m, []string{"from", "to"})
	require.NoError(t, err)
	assert.Equal(t, []string{"from", "to"}, out.Namespaces)
	assert.Equal(t, m.Classes[0].Names, out.Classes[0].Names)
}

func TestRenameNamespacesRejectsLengthMismatch(t *testing.T) {
	m := twoNamespaceMappings()
	_, err := RenameNamespaces(m, []string{"only-one"})
	assert.Error(t, err)
}

func TestExtractNamespacesSwapsOrderAndRewritesDescriptor(t *testing.T) {
	m := twoNamespaceMappings()
	out, err := ExtractNamespaces(m, "named", "official")
	require.NoError(t, err)
	assert.Equal(t, []string{"named", "official"}, out.Namespaces)
	assert.Equal(t, []string{"a/b/Bar", "a/b/Foo"}, out.Classes[0].Names)
	// method descriptor's owner reference is rewritten to the new first
	// namespace ("named"), i.e. a/b/Foo -> a/b/Bar.
	assert.Equal(t, "(La/b/Bar;)V", out.Classes[0].Methods[0].Desc)
}

func TestReorderNamespacesRejectsUnknownNamespace(t *testing.T) {
	m := twoNamespaceMappings()
	_, err := ReorderNamespaces(m, []string{"official", "nonexistent"})
	assert.Error(t, err)
}

func TestFilterNamespacesProjectsColumns(t *testing.T) {
	m := twoNamespaceMappings()
	out, err := FilterNamespaces(m, map[string]bool{"official": true}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"official"}, out.Namespaces)
	assert.Equal(t, []string{"a/b/Foo"}, out.Classes[0].Names)
}

func TestFilterNamespacesDropsDuplicatesUnlessAllowed(t *testing.T) {
	m := &Mappings{
		Namespaces: []string{"official", "official", "named"},
		Classes:    []MappedClass{{Names: []string{"a/b/Foo", "a/b/Foo", "a/b/Bar"}}},
	}
	out, err := FilterNamespaces(m, map[string]bool{"official": true, "named": true}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"official", "named"}, out.Namespaces)

	outDup, err := FilterNamespaces(m, map[string]bool{"official": true, "named": true}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"official", "official", "named"}, outDup.Namespaces)
}

func TestDeduplicateNamespaces(t *testing.T) {
	m := &Mappings{
		Namespaces: []string{"official", "official", "named"},
		Classes:    []MappedClass{{Names: []string{"a/b/Foo", "a/b/Foo", "a/b/Bar"}}},
	}
	out, err := DeduplicateNamespaces(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"official", "named"}, out.Namespaces)
}

func TestMapClassesDoesNotMutateSource(t *testing.T) {
	m := twoNamespaceMappings()
	out := MapClasses(m, func(c MappedClass) MappedClass {
		c.Names = append([]string(nil), c.Names...)
		c.Names[0] = "changed"
		return c
	})
	assert.Equal(t, "a/b/Foo", m.Classes[0].Names[0])
	assert.Equal(t, "changed", out.Classes[0].Names[0])
}

func TestFilterClassesKeepsOnlyMatching(t *testing.T) {
	m := &Mappings{
		Namespaces: []string{"official"},
		Classes: []MappedClass{
			{Names: []string{"a/b/Keep"}},
			{Names: []string{"a/b/Drop"}},
		},
	}
	out := FilterClasses(m, func(c MappedClass) bool { return c.Names[0] == "a/b/Keep" })
	require.Len(t, out.Classes, 1)
	assert.Equal(t, "a/b/Keep", out.Classes[0].Names[0])
}

func TestRecoverFieldDescriptorsFillsOrDrops(t *testing.T) {
	m := &Mappings{
		Namespaces: []string{"official"},
		Classes: []MappedClass{
			{
				Names: []string{"a/b/Foo"},
				Fields: []MappedField{
					{Names: []string{"known"}},
					{Names: []string{"unknown"}},
				},
			},
		},
	}
	out := RecoverFieldDescriptors(m, func(owner, field string) (string, bool) {
		if field == "known" {
			return "I", true
		}
		return "", false
	})
	require.Len(t, out.Classes[0].Fields, 1)
	assert.Equal(t, "known", out.Classes[0].Fields[0].Names[0])
	assert.Equal(t, "I", *out.Classes[0].Fields[0].Desc)
}

type stubInheritanceProvider struct {
	parents map[string][]string
	methods map[string][]string
}

func (p *stubInheritanceProvider) DirectParents(name string) []string {
	return p.parents[name]
}

func (p *stubInheritanceProvider) DeclaredMethods(name string, inheritableOnly bool) []string {
	return p.methods[name]
}

func TestRemoveRedundancyDropsMethodsPresentOnSuper(t *testing.T) {
	provider := &stubInheritanceProvider{
		parents: map[string][]string{"a/b/Child": {"a/b/Parent"}},
		methods: map[string][]string{"a/b/Parent": {"foo()V"}},
	}
	m := &Mappings{
		Namespaces: []string{"official"},
		Classes: []MappedClass{
			{
				Names: []string{"a/b/Child"},
				Methods: []MappedMethod{
					{Names: []string{"foo"}, Desc: "()V"},
					{Names: []string{"bar"}, Desc: "()V"},
				},
			},
		},
	}
	out := RemoveRedundancy(m, provider)
	require.Len(t, out.Classes[0].Methods, 1)
	assert.Equal(t, "bar", out.Classes[0].Methods[0].Names[0])
}

func TestRemoveRedundancyAlwaysDropsDataMethods(t *testing.T) {
	provider := &stubInheritanceProvider{}
	m := &Mappings{
		Namespaces: []string{"official"},
		Classes: []MappedClass{
			{
				Names: []string{"a/b/Foo"},
				Methods: []MappedMethod{
					{Names: []string{"<init>"}, Desc: "()V"},
					{Names: []string{"equals"}, Desc: "(Ljava/lang/Object;)Z"},
					{Names: []string{"unique"}, Desc: "()V"},
				},
			},
		},
	}
	out := RemoveRedundancy(m, provider)
	require.Len(t, out.Classes[0].Methods, 1)
	assert.Equal(t, "unique", out.Classes[0].Methods[0].Names[0])
}
