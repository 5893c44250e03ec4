package inherit

import "sync"

// Memoizing wraps a Provider, caching DirectParents and DeclaredMethods
// (keyed additionally by inheritableOnly) per internal name. Entries are
// populated on first use and never evicted — matching ยง4.5's "populated
// on demand, never evicted" and the teacher's own ClassMethodMap/
// ClassFieldMap "populate once, read many" pattern.
type Memoizing struct {
	base *Provider

	mu              sync.Mutex
	parents         map[string][]string
	declaredAll     map[string][]string
	declaredInherit map[string][]string
}

// NewMemoizing wraps base with the memoizing cache described above.
func NewMemoizing(base *Provider) *Memoizing {
	return &Memoizing{
		base:            base,
		parents:         make(map[string][]string),
		declaredAll:     make(map[string][]string),
		declaredInherit: make(map[string][]string),
	}
}

// DirectParents is Provider.DirectParents, cached.
func (m *Memoizing) DirectParents(internalName string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.parents[internalName]; ok {
		return v
	}
	v := m.base.DirectParents(internalName)
	m.parents[internalName] = v
	return v
}

// DeclaredMethods is Provider.DeclaredMethods, cached separately for
// inheritableOnly true/false since they're different queries over the
// same class.
func (m *Memoizing) DeclaredMethods(internalName string, inheritableOnly bool) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cache := m.declaredAll
	if inheritableOnly {
		cache = m.declaredInherit
	}
	if v, ok := cache[internalName]; ok {
		return v
	}
	v := m.base.DeclaredMethods(internalName, inheritableOnly)
	cache[internalName] = v
	return v
}
