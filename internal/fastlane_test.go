package internal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderedRows(order []int) []*Node {
	kids := make([]*Node, len(order))
	for i, id := range order {
		kids[i] = keyedItem(fmt.Sprintf("row-%d", id), fmt.Sprintf("Row %d", id))
	}
	return kids
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func reversed(order []int) []int {
	out := make([]int, len(order))
	for i, v := range order {
		out[len(order)-1-i] = v
	}
	return out
}

// mountRowList renders a single <ul> whose keyed children follow the order
// held in a state cell; a reorder-only write is exactly the shape the bulk
// commit lane exists for.
func mountRowList(n int) (*Cell, *Runtime, *Instance) {
	var cell *Cell
	fn := func(Props) *Node {
		cell = GetRuntime().CreateState(seq(n))
		return el("ul", nil, orderedRows(cell.Read().([]int))...)
	}
	r := GetRuntime()
	_, _, _, inst := mountOn(fn)
	return cell, r, inst
}

func TestClassifyReorderOnly(t *testing.T) {
	t.Run("pure reorder of a large keyed list qualifies", func(t *testing.T) {
		_, r, inst := mountRowList(150)

		root := el("ul", nil, orderedRows(reversed(seq(150)))...)
		assert.True(t, r.classifyReorderOnly(inst, root))
	})

	t.Run("non-intrinsic child disqualifies", func(t *testing.T) {
		_, r, inst := mountRowList(150)

		kids := orderedRows(reversed(seq(150)))
		kids[0] = NewComponent(func(Props) *Node { return keyedItem("row-149", "Row 149") }, Props{"key": "row-149"})
		root := el("ul", nil, kids...)
		assert.False(t, r.classifyReorderOnly(inst, root))
	})

	t.Run("root tag change disqualifies", func(t *testing.T) {
		_, r, inst := mountRowList(150)
		root := el("ol", nil, orderedRows(reversed(seq(150)))...)
		assert.False(t, r.classifyReorderOnly(inst, root))
	})

	t.Run("pending mount effects disqualify", func(t *testing.T) {
		_, r, inst := mountRowList(150)
		inst.mountOps = append(inst.mountOps, func() func() { return nil })
		defer func() { inst.mountOps = nil }()

		root := el("ul", nil, orderedRows(reversed(seq(150)))...)
		assert.False(t, r.classifyReorderOnly(inst, root))
	})

	t.Run("first render never qualifies", func(t *testing.T) {
		r := GetRuntime()
		inst := newTestInstance(r)
		root := el("ul", nil, orderedRows(reversed(seq(150)))...)
		assert.False(t, r.classifyReorderOnly(inst, root))
	})
}

func TestBulkCommitLane(t *testing.T) {
	cell, r, inst := mountRowList(150)
	doc := inst.Target().Document()
	ul := inst.Target().ChildAt(0)
	require.Equal(t, 150, ul.Len())
	before := ul.Children()

	doc.ResetCounters()
	epochBefore := r.Epoch()

	cell.Write(reversed(seq(150)))

	assert.Equal(t, 1, doc.CommitCount(), "the bulk lane lands exactly one commit")
	assert.Equal(t, 1, doc.MutationCount())
	for i := range before {
		assert.Same(t, before[i], ul.ChildAt(len(before)-1-i))
	}
	assert.Equal(t, bulkIdle, r.bulk, "the window always closes")
	assert.Equal(t, 0, r.scheduler.Len())
	assert.Greater(t, r.Epoch(), epochBefore)
	assert.Equal(t, "row-149", ul.ChildAt(0).Key())
}

func TestBulkCommitKeepsSubscriptionsLive(t *testing.T) {
	cell, _, inst := mountRowList(150)
	ul := inst.Target().ChildAt(0)

	cell.Write(reversed(seq(150)))
	require.Equal(t, "row-149", ul.ChildAt(0).Key())

	// a second write must still wake the component: the reorder render is
	// the live subscription source
	cell.Write(seq(150))
	assert.Equal(t, "row-0", ul.ChildAt(0).Key())
}

func TestBulkCommitRendersComponentDescendants(t *testing.T) {
	detail := func(Props) *Node { return text("DETAIL") }

	var cell *Cell
	_, doc, body, _ := mountOn(func(Props) *Node {
		cell = GetRuntime().CreateState(seq(150))
		ids := cell.Read().([]int)
		kids := make([]*Node, len(ids))
		for i, id := range ids {
			kids[i] = el("li", Props{"key": fmt.Sprintf("row-%d", id)},
				NewComponent(detail, nil))
		}
		return el("ul", nil, kids...)
	})

	ul := body.ChildAt(0)
	require.Equal(t, 150, ul.Len())
	require.Equal(t, "DETAIL", ul.ChildAt(0).ChildAt(0).Text())

	// reorder plus one genuinely new row: the new row's nested component
	// output must survive the reorder commit
	doc.ResetCounters()
	cell.Write(append(reversed(seq(150)), 999))

	require.Equal(t, 151, ul.Len())
	assert.Equal(t, 1, doc.CommitCount())

	fresh := ul.ChildAt(150)
	assert.Equal(t, "row-999", fresh.Key())
	require.Equal(t, 1, fresh.Len())
	assert.Equal(t, "DETAIL", fresh.ChildAt(0).Text())
	assert.Equal(t, "row-149", ul.ChildAt(0).Key())
}

func TestBulkWindowForbidsEffectRegistration(t *testing.T) {
	r := GetRuntime()
	inst := newTestInstance(r)
	r.rendering = inst
	defer func() { r.rendering = nil }()

	r.bulk = bulkCommitActive
	defer func() { r.bulk = bulkIdle }()

	err := catchPanic(func() { r.OnMount(func() func() { return nil }) })

	var pre *PreconditionError
	require.ErrorAs(t, err, &pre)
	assert.Empty(t, inst.mountOps)
}

func TestBulkCommitReentryIsFatal(t *testing.T) {
	_, r, inst := mountRowList(150)
	r.bulk = bulkCommitActive
	defer func() { r.bulk = bulkIdle }()

	root := el("ul", nil, orderedRows(reversed(seq(150)))...)
	err := catchPanic(func() { r.commitBulk(inst, root) })

	var inv *InvariantError
	require.ErrorAs(t, err, &inv)
}
