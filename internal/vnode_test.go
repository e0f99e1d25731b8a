package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandNodes(t *testing.T) {
	r := GetRuntime()

	t.Run("fragments flatten", func(t *testing.T) {
		out := r.expandNodes([]*Node{
			NewText("a"),
			NewFragment([]*Node{
				NewText("b"),
				NewFragment([]*Node{NewText("c")}),
			}),
			NewText("d"),
		})

		require.Len(t, out, 4)
		for i, want := range []string{"a", "b", "c", "d"} {
			assert.Equal(t, KindText, out[i].Kind)
			assert.Equal(t, want, out[i].Text)
		}
	})

	t.Run("components evaluate inline", func(t *testing.T) {
		item := func(props Props) *Node {
			return NewIntrinsic("li", nil, []*Node{NewText(props["label"].(string))})
		}
		list := func(props Props) *Node {
			return NewFragment([]*Node{
				NewComponent(item, Props{"label": "one"}),
				NewComponent(item, Props{"label": "two"}),
			})
		}

		out := r.expandNodes([]*Node{NewComponent(list, nil)})

		require.Len(t, out, 2)
		assert.Equal(t, KindIntrinsic, out[0].Kind)
		assert.Equal(t, "li", out[0].Tag)
		assert.Equal(t, "one", out[0].Children[0].Text)
		assert.Equal(t, "two", out[1].Children[0].Text)
	})

	t.Run("intrinsic children expand recursively", func(t *testing.T) {
		inner := func(Props) *Node { return NewText("deep") }
		out := r.expandNodes([]*Node{
			NewIntrinsic("div", nil, []*Node{NewComponent(inner, nil)}),
		})

		require.Len(t, out, 1)
		require.Len(t, out[0].Children, 1)
		assert.Equal(t, "deep", out[0].Children[0].Text)
	})

	t.Run("nil nodes are dropped", func(t *testing.T) {
		out := r.expandNodes([]*Node{nil, NewText("x"), nil})
		require.Len(t, out, 1)
	})
}

func TestKeyOf(t *testing.T) {
	assert.Equal(t, "", NewIntrinsic("li", nil, nil).Key)
	assert.Equal(t, "a", NewIntrinsic("li", Props{"key": "a"}, nil).Key)
	assert.Equal(t, "42", NewIntrinsic("li", Props{"key": 42}, nil).Key)
}

func TestPropClassification(t *testing.T) {
	assert.True(t, isEventProp("onclick"))
	assert.True(t, isEventProp("onkeydown"))
	assert.False(t, isEventProp("on"))
	assert.False(t, isEventProp("class"))

	assert.True(t, isTrivialProp("onclick"))
	assert.True(t, isTrivialProp("data-row"))
	assert.False(t, isTrivialProp("class"))
}
