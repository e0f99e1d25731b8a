package dom

import (
	"html"
	"sort"
	"strings"
)

// String serializes the element and its subtree as HTML-ish text. Attributes
// are sorted by name so the output is deterministic.
func (e *Element) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Element) write(b *strings.Builder) {
	if e.IsText() {
		b.WriteString(html.EscapeString(e.text))
		return
	}

	b.WriteByte('<')
	b.WriteString(e.tag)

	names := make([]string, 0, len(e.attrs))
	for name := range e.attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(e.attrs[name]))
		b.WriteByte('"')
	}
	b.WriteByte('>')

	for _, child := range e.children {
		child.write(b)
	}

	b.WriteString("</")
	b.WriteString(e.tag)
	b.WriteByte('>')
}
