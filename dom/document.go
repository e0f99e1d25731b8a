// Package dom is an in-memory document tree used as the runtime's host.
// It has no platform bindings: elements are plain nodes in an arena, and
// every mutation goes through counted operations so tests can observe
// exactly how much work a commit performed.
package dom

// Handle is the stable identity of an element within its document.
// Handles are assigned on creation and never reused.
type Handle int

// Event is delivered to listeners registered with Element.On.
type Event struct {
	Type   string
	Target *Element
}

// Document owns an arena of elements. Listener registrations live in a
// side table keyed by handle and are removed explicitly on Release; nothing
// relies on garbage collection to reclaim forgotten entries.
type Document struct {
	nextHandle Handle
	listeners  map[Handle]map[string]func(Event)
	wrap       func(func())

	mutations int
	commits   int
}

func NewDocument() *Document {
	return &Document{
		listeners: make(map[Handle]map[string]func(Event)),
	}
}

// CreateElement creates a detached element with the given tag.
func (d *Document) CreateElement(tag string) *Element {
	d.nextHandle++
	return &Element{
		doc:    d,
		handle: d.nextHandle,
		tag:    tag,
	}
}

// CreateText creates a detached text node.
func (d *Document) CreateText(text string) *Element {
	d.nextHandle++
	return &Element{
		doc:    d,
		handle: d.nextHandle,
		text:   text,
	}
}

// SetDispatchWrapper installs a function that brackets every Dispatch call.
// The runtime uses this to defer flushes while a handler is executing.
func (d *Document) SetDispatchWrapper(wrap func(func())) {
	d.wrap = wrap
}

// Release drops the listener entries for a handle. Called when an element
// is torn down; the arena keeps no other per-handle state.
func (d *Document) Release(h Handle) {
	delete(d.listeners, h)
}

// MutationCount reports every applied attribute, text, and structural change
// since the last ResetCounters. Changes that compare equal to the current
// state do not count.
func (d *Document) MutationCount() int { return d.mutations }

// CommitCount reports applied ReplaceChildren commits since ResetCounters.
func (d *Document) CommitCount() int { return d.commits }

func (d *Document) ResetCounters() {
	d.mutations = 0
	d.commits = 0
}

// ListenerEvents returns the event types with a handler registered for the
// handle. Used by the reconciler to drop listeners whose prop disappeared.
func (d *Document) ListenerEvents(h Handle) []string {
	m := d.listeners[h]
	out := make([]string, 0, len(m))
	for event := range m {
		out = append(out, event)
	}
	return out
}

func (d *Document) listenersFor(h Handle) map[string]func(Event) {
	m, ok := d.listeners[h]
	if !ok {
		m = make(map[string]func(Event))
		d.listeners[h] = m
	}
	return m
}
