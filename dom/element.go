package dom

import "slices"

// KeyAttr carries a child's reconciliation key, when it has one.
const KeyAttr = "data-key"

// Element is a node in the document tree. A text node is an element with an
// empty tag and a text payload; it carries no attributes or children.
type Element struct {
	doc    *Document
	handle Handle

	tag  string
	text string

	attrs    map[string]string
	parent   *Element
	children []*Element
}

func (e *Element) Document() *Document { return e.doc }
func (e *Element) Handle() Handle      { return e.handle }
func (e *Element) Tag() string         { return e.tag }
func (e *Element) Parent() *Element    { return e.parent }

// IsText reports whether this is a text node.
func (e *Element) IsText() bool { return e.tag == "" }

func (e *Element) Text() string { return e.text }

// SetText replaces a text node's payload. Writing the current value is a
// no-op and does not count as a mutation.
func (e *Element) SetText(text string) {
	if e.text == text {
		return
	}
	e.text = text
	e.doc.mutations++
}

func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *Element) SetAttr(name, value string) {
	if cur, ok := e.attrs[name]; ok && cur == value {
		return
	}
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[name] = value
	e.doc.mutations++
}

func (e *Element) RemoveAttr(name string) {
	if _, ok := e.attrs[name]; !ok {
		return
	}
	delete(e.attrs, name)
	e.doc.mutations++
}

// Key returns the element's reconciliation key, if any.
func (e *Element) Key() string {
	return e.attrs[KeyAttr]
}

// Attrs returns a snapshot copy of the attribute map.
func (e *Element) Attrs() map[string]string {
	out := make(map[string]string, len(e.attrs))
	for name, v := range e.attrs {
		out[name] = v
	}
	return out
}

// Children returns a snapshot copy of the child list. Mutating the returned
// slice does not affect the tree, and the snapshot stays valid (by
// reference) across later mutations, which is what rollback restores.
func (e *Element) Children() []*Element {
	return slices.Clone(e.children)
}

func (e *Element) Len() int { return len(e.children) }

func (e *Element) ChildAt(i int) *Element {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

func (e *Element) IndexOf(child *Element) int {
	return slices.Index(e.children, child)
}

func (e *Element) AppendChild(child *Element) {
	child.detach()
	child.parent = e
	e.children = append(e.children, child)
	e.doc.mutations++
}

func (e *Element) RemoveChild(child *Element) {
	i := slices.Index(e.children, child)
	if i < 0 {
		return
	}
	e.children = slices.Delete(e.children, i, i+1)
	child.parent = nil
	e.doc.mutations++
}

// ReplaceChildren swaps the whole child list in one structural commit.
// Children not present in the new list are detached; a list that is
// reference-identical in order is a no-op.
func (e *Element) ReplaceChildren(kids []*Element) {
	if slices.Equal(e.children, kids) {
		return
	}

	old := e.children
	e.children = slices.Clone(kids)

	for _, child := range old {
		if !slices.Contains(e.children, child) {
			child.parent = nil
		}
	}
	for _, child := range e.children {
		if child.parent != e {
			if child.parent != nil {
				child.parent.unlink(child)
			}
			child.parent = e
		}
	}

	e.doc.mutations++
	e.doc.commits++
}

// unlink removes child from the list without counting a mutation; used when
// a commit adopts a node from another parent.
func (e *Element) unlink(child *Element) {
	i := slices.Index(e.children, child)
	if i >= 0 {
		e.children = slices.Delete(e.children, i, i+1)
	}
	child.parent = nil
}

func (e *Element) detach() {
	if e.parent != nil {
		e.parent.unlink(e)
	}
}

// On registers the handler for an event type, replacing any previous one.
func (e *Element) On(event string, fn func(Event)) {
	e.doc.listenersFor(e.handle)[event] = fn
}

func (e *Element) RemoveListener(event string) {
	if m, ok := e.doc.listeners[e.handle]; ok {
		delete(m, event)
	}
}

// Dispatch invokes the element's handler for the event type, routed through
// the document's dispatch wrapper when one is installed.
func (e *Element) Dispatch(event string) {
	m := e.doc.listeners[e.handle]
	fn := m[event]
	if fn == nil {
		return
	}

	ev := Event{Type: event, Target: e}
	if e.doc.wrap != nil {
		e.doc.wrap(func() { fn(ev) })
		return
	}
	fn(ev)
}
