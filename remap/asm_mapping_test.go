package remap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swind/go-jvmmap/mapping"
)

func sampleTwoNamespaceMappings() *mapping.Mappings {
	return &mapping.Mappings{
		Namespaces: []string{"official", "named"},
		Classes: []mapping.MappedClass{
			{
				Names: []string{"a/b/C", "a/b/Renamed"},
				Fields: []mapping.MappedField{
					{Names: []string{"f", "field"}},
				},
				Methods: []mapping.MappedMethod{
					{Names: []string{"m", "method"}, Desc: "(La/b/C;)V"},
				},
			},
		},
	}
}

func TestAsAsmMappingEmptyWhenFromEqualsTo(t *testing.T) {
	m := sampleTwoNamespaceMappings()
	out, err := AsAsmMapping(m, "official", "official", true, true)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAsAsmMappingBuildsClassFieldMethodKeys(t *testing.T) {
	m := sampleTwoNamespaceMappings()
	out, err := AsAsmMapping(m, "official", "named", true, true)
	require.NoError(t, err)

	assert.Equal(t, "a/b/Renamed", out["a/b/C"])
	assert.Equal(t, "field", out["a/b/C.f"])
	assert.Equal(t, "method", out["a/b/C.m(La/b/C;)V"])
}

func TestAsAsmMappingOmitsFieldsAndMethodsWhenNotRequested(t *testing.T) {
	m := sampleTwoNamespaceMappings()
	out, err := AsAsmMapping(m, "official", "named", false, false)
	require.NoError(t, err)

	assert.Equal(t, "a/b/Renamed", out["a/b/C"])
	_, hasField := out["a/b/C.f"]
	_, hasMethod := out["a/b/C.m(La/b/C;)V"]
	assert.False(t, hasField)
	assert.False(t, hasMethod)
}

func TestAsAsmMappingNormalizesMethodDescriptorToFromNamespace(t *testing.T) {
	// named is namespaces[0] here, so the method descriptor stored in the
	// mapping (always first-namespace form) must be rewritten into
	// official-namespace form when from == "official".
	m := &mapping.Mappings{
		Namespaces: []string{"named", "official"},
		Classes: []mapping.MappedClass{
			{
				Names: []string{"a/b/Renamed", "a/b/C"},
				Methods: []mapping.MappedMethod{
					{Names: []string{"method", "m"}, Desc: "(La/b/Renamed;)V"},
				},
			},
		},
	}
	out, err := AsAsmMapping(m, "official", "named", true, false)
	require.NoError(t, err)
	assert.Equal(t, "method", out["a/b/C.m(La/b/C;)V"])
}

func TestAsAsmMappingUnknownNamespaceReturnsError(t *testing.T) {
	m := sampleTwoNamespaceMappings()
	_, err := AsAsmMapping(m, "official", "bogus", true, true)
	assert.Error(t, err)

	_, err = AsAsmMapping(m, "bogus", "named", true, true)
	assert.Error(t, err)
}

func TestAsAsmMappingOmitsIdenticalNames(t *testing.T) {
	m := &mapping.Mappings{
		Namespaces: []string{"official", "named"},
		Classes: []mapping.MappedClass{
			{
				Names: []string{"a/b/C", "a/b/C"},
				Fields: []mapping.MappedField{
					{Names: []string{"same", "same"}},
				},
			},
		},
	}
	out, err := AsAsmMapping(m, "official", "named", false, true)
	require.NoError(t, err)
	assert.Empty(t, out)
}
