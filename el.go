package loom

import (
	"fmt"

	"github.com/loom-ui/loom/internal"
)

// El builds an intrinsic element node. Args may be Props (or a plain
// map[string]any), child nodes, node slices, or values rendered as text.
// Booleans and nils render nothing.
func El(tag string, args ...any) *Node {
	props, children := gather(args)
	return internal.NewIntrinsic(tag, props, children)
}

// Frag groups children without a wrapping element. Fragments are flattened
// into their parent's child list before reconciliation.
func Frag(args ...any) *Node {
	_, children := gather(args)
	return internal.NewFragment(children)
}

// C builds a component node. The function is evaluated inline during the
// enclosing render.
func C(fn Component, props Props) *Node {
	return internal.NewComponent(fn, props)
}

// Text builds a text node.
func Text(s string) *Node {
	return internal.NewText(s)
}

func gather(args []any) (Props, []*Node) {
	var props Props
	var children []*Node

	for _, a := range args {
		switch v := a.(type) {
		case nil:
		case Props:
			props = merge(props, v)
		case map[string]any:
			props = merge(props, v)
		case *Node:
			if v != nil {
				children = append(children, v)
			}
		case []*Node:
			for _, n := range v {
				if n != nil {
					children = append(children, n)
				}
			}
		case string:
			children = append(children, internal.NewText(v))
		case bool:
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			children = append(children, internal.NewText(fmt.Sprint(v)))
		default:
			children = append(children, internal.NewText(fmt.Sprint(v)))
		}
	}

	return props, children
}

func merge(dst, src Props) Props {
	if dst == nil {
		dst = make(Props, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
