package internal

import (
	"fmt"
	"strings"
)

// Kind is the closed set of node types. Switch on it exhaustively; there are
// no sentinel type values.
type Kind int

const (
	KindText Kind = iota
	KindIntrinsic
	KindComponent
	KindFragment
)

type Props map[string]any

// ComponentFunc produces an element description tree for the given props.
// It must return synchronously; rendering has no asynchronous mode.
type ComponentFunc func(Props) *Node

// Node describes desired UI state for one tree position. Nodes are produced
// fresh on every render and never mutated once handed to the reconciler.
type Node struct {
	Kind     Kind
	Tag      string
	Fn       ComponentFunc
	Props    Props
	Children []*Node
	Text     string
	Key      string
}

func NewText(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

func NewIntrinsic(tag string, props Props, children []*Node) *Node {
	return &Node{
		Kind:     KindIntrinsic,
		Tag:      tag,
		Props:    props,
		Children: children,
		Key:      keyOf(props),
	}
}

func NewFragment(children []*Node) *Node {
	return &Node{Kind: KindFragment, Children: children}
}

func NewComponent(fn ComponentFunc, props Props) *Node {
	return &Node{Kind: KindComponent, Fn: fn, Props: props, Key: keyOf(props)}
}

func keyOf(props Props) string {
	if props == nil {
		return ""
	}
	if k, ok := props["key"]; ok {
		return fmt.Sprint(k)
	}
	return ""
}

// expandNodes flattens fragments and evaluates component nodes inline,
// returning a tree containing only intrinsic and text nodes. Components are
// evaluated recursively and synchronously within the current render, which
// is why instances never form a retained tree.
func (r *Runtime) expandNodes(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))

	for _, n := range nodes {
		if n == nil {
			continue
		}

		switch n.Kind {
		case KindText:
			out = append(out, n)
		case KindFragment:
			out = append(out, r.expandNodes(n.Children)...)
		case KindComponent:
			out = append(out, r.expandNodes([]*Node{n.Fn(n.Props)})...)
		case KindIntrinsic:
			out = append(out, &Node{
				Kind:     KindIntrinsic,
				Tag:      n.Tag,
				Props:    n.Props,
				Key:      n.Key,
				Children: r.expandNodes(n.Children),
			})
		}
	}

	return out
}

// isEventProp reports whether a prop names an event handler ("onclick").
func isEventProp(name string) bool {
	return strings.HasPrefix(name, "on") && len(name) > 2
}

// isTrivialProp reports whether a prop difference is ignorable for the bulk
// reuse tiers: event handlers and data-* never gate a fast path.
func isTrivialProp(name string) bool {
	return isEventProp(name) || strings.HasPrefix(name, "data-")
}

func propValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
