package inherit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubParentLister struct {
	byName map[string][]string
}

func (s *stubParentLister) DirectParents(name string) []string {
	return s.byName[name]
}

func TestParentsWalksTransitiveHierarchy(t *testing.T) {
	p := &stubParentLister{byName: map[string][]string{
		"a/b/Child":       {"a/b/Parent", "a/b/IFace"},
		"a/b/Parent":      {"a/b/GrandParent"},
		"a/b/IFace":       nil,
		"a/b/GrandParent": nil,
	}}
	order := Parents(p, "a/b/Child")
	assert.ElementsMatch(t, []string{"a/b/Parent", "a/b/IFace", "a/b/GrandParent"}, order)
}

func TestParentsNeverRevisitsSameNode(t *testing.T) {
	p := &stubParentLister{byName: map[string][]string{
		"a/b/Child":  {"a/b/Left", "a/b/Right"},
		"a/b/Left":   {"a/b/Common"},
		"a/b/Right":  {"a/b/Common"},
		"a/b/Common": nil,
	}}
	order := Parents(p, "a/b/Child")
	count := 0
	for _, n := range order {
		if n == "a/b/Common" {
			count++
		}
	}
	assert.Equal(t, 1, count, "a diamond-shaped hierarchy must not visit the shared ancestor twice")
}

func TestParentsExcludesStartEvenIfCyclic(t *testing.T) {
	p := &stubParentLister{byName: map[string][]string{
		"a/b/Foo": {"a/b/Bar"},
		"a/b/Bar": {"a/b/Foo"}, // malformed hierarchy: a cycle back to start
	}}
	order := Parents(p, "a/b/Foo")
	assert.NotContains(t, order, "a/b/Foo")
	assert.Contains(t, order, "a/b/Bar")
}

func TestParentsOfLeafReturnsEmpty(t *testing.T) {
	p := &stubParentLister{byName: map[string][]string{}}
	assert.Empty(t, Parents(p, "a/b/Leaf"))
}
