package internal

import (
	"strings"

	"github.com/loom-ui/loom/dom"
)

// applyChildren makes parent's live children match the normalized vnode
// list. Fast-path tiers are tried in order; each may decline and fall
// through to the always-correct baseline.
func (r *Runtime) applyChildren(parent *dom.Element, kids []*Node) {
	if r.tryBulkText(parent, kids) {
		return
	}
	if r.tryBulkPositional(parent, kids) {
		return
	}
	if r.tryFragmentFastPath(parent, kids) {
		return
	}
	r.reconcileBaseline(parent, kids)
}

// reconcileBaseline partitions children into keyed and unkeyed, resolves
// keyed children against the key map (with a positional scan fallback for
// keys not yet indexed), reuses unkeyed elements positionally, assembles
// the final order off-tree, and commits with a single replace after tearing
// down whatever is being discarded. Tag identity is part of the keyed-reuse
// contract: a tag mismatch replaces, never mutates in place.
func (r *Runtime) reconcileBaseline(parent *dom.Element, kids []*Node) {
	old := parent.Children()
	keyMap := r.keyMapFor(parent)

	claimed := make(map[*dom.Element]bool)
	ordered := make([]*dom.Element, len(kids))

	// keyed pass: each resolved element is used at most once
	for i, kid := range kids {
		if kid.Key == "" {
			continue
		}

		el := keyMap[kid.Key]
		if el == nil || el.Parent() != parent {
			for _, cand := range old {
				if !claimed[cand] && !cand.IsText() && cand.Key() == kid.Key {
					el = cand
					break
				}
			}
		}
		if el == nil || claimed[el] || el.Tag() != kid.Tag {
			continue
		}

		claimed[el] = true
		r.updateElement(el, kid)
		ordered[i] = el
	}

	// unkeyed/primitive pass: same index first, then any unclaimed unkeyed
	// element, then create
	for i, kid := range kids {
		if ordered[i] != nil {
			continue
		}

		if kid.Key == "" {
			if i < len(old) && reusable(old[i], kid) && !claimed[old[i]] {
				claimed[old[i]] = true
				r.updateExisting(old[i], kid)
				ordered[i] = old[i]
				continue
			}
			for _, cand := range old {
				if !claimed[cand] && reusable(cand, kid) {
					claimed[cand] = true
					r.updateExisting(cand, kid)
					ordered[i] = cand
					break
				}
			}
		}

		if ordered[i] == nil {
			ordered[i] = r.materialize(parent.Document(), kid)
		}
	}

	for _, el := range old {
		if !claimed[el] {
			r.teardown(el)
		}
	}

	parent.ReplaceChildren(ordered)
	r.rebuildKeyMap(parent, ordered)
}

// reusable reports whether an unkeyed live element can back the vnode.
func reusable(el *dom.Element, kid *Node) bool {
	if el.Key() != "" {
		return false
	}
	if kid.Kind == KindText {
		return el.IsText()
	}
	return !el.IsText() && el.Tag() == kid.Tag
}

func (r *Runtime) updateExisting(el *dom.Element, kid *Node) {
	if kid.Kind == KindText {
		el.SetText(kid.Text)
		return
	}
	r.updateElement(el, kid)
}

// materialize builds a fresh detached element for a vnode.
func (r *Runtime) materialize(doc *dom.Document, kid *Node) *dom.Element {
	if kid.Kind == KindText {
		return doc.CreateText(kid.Text)
	}

	el := doc.CreateElement(kid.Tag)
	if kid.Key != "" {
		el.SetAttr(dom.KeyAttr, kid.Key)
	}
	r.applyProps(el, kid)
	for _, child := range kid.Children {
		el.AppendChild(r.materialize(doc, child))
	}
	return el
}

// updateElement reconciles an existing element against its vnode:
// attributes, listeners, then children recursively.
func (r *Runtime) updateElement(el *dom.Element, kid *Node) {
	want := make(map[string]string, len(kid.Props))
	for name, v := range kid.Props {
		if name == "key" || isEventProp(name) {
			continue
		}
		want[name] = propValue(v)
	}
	if kid.Key != "" {
		want[dom.KeyAttr] = kid.Key
	}

	for name := range el.Attrs() {
		if _, ok := want[name]; !ok {
			el.RemoveAttr(name)
		}
	}
	for name, v := range want {
		el.SetAttr(name, v)
	}

	r.applyListeners(el, kid)
	r.applyChildren(el, kid.Children)
}

func (r *Runtime) applyProps(el *dom.Element, kid *Node) {
	for name, v := range kid.Props {
		if name == "key" {
			continue
		}
		if isEventProp(name) {
			continue
		}
		el.SetAttr(name, propValue(v))
	}
	r.applyListeners(el, kid)
}

func (r *Runtime) applyListeners(el *dom.Element, kid *Node) {
	live := make(map[string]bool)
	for name, v := range kid.Props {
		if !isEventProp(name) {
			continue
		}
		event := strings.TrimPrefix(name, "on")
		if fn, ok := v.(func(dom.Event)); ok {
			el.On(event, fn)
			live[event] = true
		}
	}
	for _, event := range el.Document().ListenerEvents(el.Handle()) {
		if !live[event] {
			el.RemoveListener(event)
		}
	}
}

// teardown releases an element being discarded: any component instance
// mounted on it is unmounted, its key map and listener entries disappear
// from the side tables, and the same happens recursively for its subtree.
func (r *Runtime) teardown(el *dom.Element) {
	if inst, ok := r.instances[el.Handle()]; ok {
		r.Unmount(inst)
	}
	delete(r.keyMaps, el.Handle())
	el.Document().Release(el.Handle())

	for _, child := range el.Children() {
		r.teardown(child)
	}
}

// keyMapFor returns the cached key map for a parent, building it with one
// scan of the live children when absent. The cache avoids re-scanning
// data-key attributes every pass; entries are dropped on teardown.
func (r *Runtime) keyMapFor(parent *dom.Element) map[string]*dom.Element {
	if m, ok := r.keyMaps[parent.Handle()]; ok {
		return m
	}

	m := make(map[string]*dom.Element)
	for _, child := range parent.Children() {
		if child.IsText() {
			continue
		}
		if key := child.Key(); key != "" {
			m[key] = child
		}
	}
	r.keyMaps[parent.Handle()] = m
	return m
}

func (r *Runtime) rebuildKeyMap(parent *dom.Element, children []*dom.Element) {
	m := make(map[string]*dom.Element, len(children))
	for _, child := range children {
		if child.IsText() {
			continue
		}
		if key := child.Key(); key != "" {
			m[key] = child
		}
	}
	r.keyMaps[parent.Handle()] = m
}
