package internal

import (
	"github.com/loom-ui/loom/dom"
)

const (
	// bulk positional reuse wants at least this many keyed children
	bulkReuseMinChildren = 10
	// the full renderer fast path only considers large keyed sets
	fastPathMinChildren = 128
	// floor on the move count before the fast path is worth taking
	fastPathMinMoves = 64
)

// tryBulkText handles the lists-of-text case: when every child is a
// primitive, text content is replaced in one pass without allocating
// intermediate element nodes.
func (r *Runtime) tryBulkText(parent *dom.Element, kids []*Node) bool {
	for _, kid := range kids {
		if kid.Kind != KindText {
			return false
		}
	}

	old := parent.Children()

	if len(old) == len(kids) {
		allText := true
		for _, el := range old {
			if !el.IsText() {
				allText = false
				break
			}
		}
		if allText {
			for i, kid := range kids {
				old[i].SetText(kid.Text)
			}
			return true
		}
	}

	fresh := make([]*dom.Element, len(kids))
	for i, kid := range kids {
		fresh[i] = parent.Document().CreateText(kid.Text)
	}
	for _, el := range old {
		r.teardown(el)
	}
	parent.ReplaceChildren(fresh)
	r.rebuildKeyMap(parent, fresh)
	return true
}

// tryBulkPositional handles large keyed lists that barely moved: when at
// least 90% of the children already sit at the index their new vnode
// expects and nothing non-trivial changed, elements are updated in place by
// position, with at most one structural commit if the order shifted. The
// key map is left untouched; membership did not change.
func (r *Runtime) tryBulkPositional(parent *dom.Element, kids []*Node) bool {
	n := len(kids)
	if n < bulkReuseMinChildren {
		return false
	}

	old := parent.Children()
	if len(old) != n {
		return false
	}
	for _, kid := range kids {
		if kid.Kind != KindIntrinsic || kid.Key == "" {
			return false
		}
	}

	keyMap := r.keyMapFor(parent)
	resolved := make([]*dom.Element, n)
	seen := make(map[*dom.Element]bool, n)
	inPlace := 0

	for i, kid := range kids {
		el := keyMap[kid.Key]
		if el == nil || el.Parent() != parent || seen[el] || el.Tag() != kid.Tag {
			return false
		}
		if !trivialDiffOnly(el, kid) {
			return false
		}
		seen[el] = true
		resolved[i] = el
		if old[i] == el {
			inPlace++
		}
	}

	if inPlace*10 < n*9 {
		return false
	}

	for i, kid := range kids {
		r.updateElement(resolved[i], kid)
	}
	parent.ReplaceChildren(resolved)
	return true
}

// tryFragmentFastPath is the full renderer fast path for move-dominated
// updates of large keyed sets.
func (r *Runtime) tryFragmentFastPath(parent *dom.Element, kids []*Node) bool {
	if !r.isReorderEligible(parent, kids) {
		return false
	}
	r.fastReorder(parent, kids)
	return true
}

// isReorderEligible is the classification half of the renderer bridge. It
// checks the cheap heuristic (how many keys left their naive linear
// position, and how long the longest increasing subsequence of old
// positions is under the new order) and declines entirely if any keyed
// vnode carries non-trivial props or any prop mismatches the live element.
// Pure reordering only; never mutates.
func (r *Runtime) isReorderEligible(parent *dom.Element, kids []*Node) bool {
	n := len(kids)
	if n < fastPathMinChildren {
		return false
	}

	seenKeys := make(map[string]bool, n)
	for _, kid := range kids {
		if kid.Kind != KindIntrinsic || kid.Key == "" || seenKeys[kid.Key] {
			return false
		}
		seenKeys[kid.Key] = true
		for name := range kid.Props {
			if name != "key" && !isTrivialProp(name) {
				return false
			}
		}
	}

	keyMap := r.keyMapFor(parent)
	moves, lis := reorderStats(parent, kids, keyMap)
	if moves <= max(fastPathMinMoves, n/10) && lis*2 >= n {
		return false
	}

	for _, kid := range kids {
		el := keyMap[kid.Key]
		if el == nil {
			continue // genuinely new key; created at commit time
		}
		if el.Parent() != parent || el.Tag() != kid.Tag {
			return false
		}
		if !attrsMatch(el, kid) {
			return false
		}
	}

	return true
}

// fastReorder commits a move-dominated update: every key resolves to its
// existing element (creating only for genuinely new keys), the final order
// is assembled off-tree, and one atomic replace lands it. Children are not
// revisited.
func (r *Runtime) fastReorder(parent *dom.Element, kids []*Node) {
	keyMap := r.keyMapFor(parent)

	ordered := make([]*dom.Element, len(kids))
	used := make(map[*dom.Element]bool, len(kids))
	for i, kid := range kids {
		el := keyMap[kid.Key]
		if el == nil {
			el = r.materialize(parent.Document(), kid)
		}
		used[el] = true
		ordered[i] = el
	}

	for _, el := range parent.Children() {
		if !used[el] {
			r.teardown(el)
		}
	}

	parent.ReplaceChildren(ordered)
	r.rebuildKeyMap(parent, ordered)
}

// reorderStats measures how move-dominated an update is: the number of keys
// whose new position differs from their old one, and the LIS length of the
// old positions read in new order. Keys without a live element are skipped.
func reorderStats(parent *dom.Element, kids []*Node, keyMap map[string]*dom.Element) (moves, lis int) {
	pos := make(map[*dom.Element]int)
	for i, el := range parent.Children() {
		pos[el] = i
	}

	seq := make([]int, 0, len(kids))
	for i, kid := range kids {
		el := keyMap[kid.Key]
		if el == nil {
			continue
		}
		oldIdx, ok := pos[el]
		if !ok {
			continue
		}
		if oldIdx != i {
			moves++
		}
		seq = append(seq, oldIdx)
	}

	return moves, lisLength(seq)
}

// wantAttrs is the attribute set a vnode asks for, key included.
func wantAttrs(kid *Node) map[string]string {
	want := make(map[string]string, len(kid.Props)+1)
	for name, v := range kid.Props {
		if name == "key" || isEventProp(name) {
			continue
		}
		want[name] = propValue(v)
	}
	if kid.Key != "" {
		want[dom.KeyAttr] = kid.Key
	}
	return want
}

// attrsMatch reports whether the live element's attributes equal the
// vnode's exactly.
func attrsMatch(el *dom.Element, kid *Node) bool {
	attrs := el.Attrs()
	want := wantAttrs(kid)

	if len(attrs) != len(want) {
		return false
	}
	for name, v := range want {
		if attrs[name] != v {
			return false
		}
	}
	return true
}

// trivialDiffOnly reports whether every difference between the live element
// and the vnode is trivial (event handlers, data-*).
func trivialDiffOnly(el *dom.Element, kid *Node) bool {
	attrs := el.Attrs()

	for name, v := range kid.Props {
		if name == "key" || isTrivialProp(name) {
			continue
		}
		if attrs[name] != propValue(v) {
			return false
		}
	}
	for name := range attrs {
		if name == dom.KeyAttr || isTrivialProp(name) {
			continue
		}
		if _, ok := kid.Props[name]; !ok {
			return false
		}
	}
	return true
}
