package inherit

import "github.com/emirpasic/gods/sets/hashset"

// ParentLister is the minimal surface Parents walks over; both Provider
// and Memoizing satisfy it.
type ParentLister interface {
	DirectParents(internalName string) []string
}

// Parents performs the depth-first traversal of ยง4.5: starting from
// start's direct parents, push them onto an explicit stack (no
// recursion, per ยง9's guidance) and pop until exhausted, skipping nodes
// already visited or equal to start. Because DirectParents returns
// super-then-interfaces and the stack is LIFO, interfaces pushed
// alongside a super class are popped (and thus visited, and have their
// own parents pushed) before that super class — matching "visits
// interfaces before the super chain when they are pushed together".
//
// seen uses the same hashset the teacher reaches for whenever it needs
// set-membership tracking (FrameRemapper's ClassFieldMap/ClassMethodMap
// value sets), generalized here to a plain "visited node" set rather
// than a set of member-info records.
func Parents(p ParentLister, start string) []string {
	seen := hashset.New()
	var order []string
	stack := append([]string(nil), p.DirectParents(start)...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == start || seen.Contains(n) {
			continue
		}
		seen.Add(n)
		order = append(order, n)
		stack = append(stack, p.DirectParents(n)...)
	}
	return order
}
