package internal

import "fmt"

// The bulk-commit fast lane spans the scheduler and the reconciler: a
// reorder-only top-level update skips the normal per-task commit pipeline
// and lands as exactly one document commit inside a window where scheduling
// is forbidden and state writes apply silently.

// classifyReorderOnly decides whether a whole top-level update may take the
// fast lane: a single expanded intrinsic root matching the live root's tag
// and attributes, every child a keyed intrinsic, no pending mount effects,
// and the renderer's move heuristic agreeing. The root must come from the
// expanded render result so nested fragments and components have already
// been resolved into the intrinsic nodes the reorder will commit.
func (r *Runtime) classifyReorderOnly(inst *Instance, root *Node) bool {
	if !inst.mounted || len(inst.mountOps) != 0 {
		return false
	}
	if root == nil || root.Kind != KindIntrinsic {
		return false
	}
	if inst.target.Len() != 1 {
		return false
	}

	live := inst.target.ChildAt(0)
	if live.IsText() || live.Tag() != root.Tag || !attrsMatch(live, root) {
		return false
	}

	if len(root.Children) == 0 {
		return false
	}
	for _, kid := range root.Children {
		if kid.Kind != KindIntrinsic || kid.Key == "" {
			return false
		}
	}

	return r.isReorderEligible(live, root.Children)
}

// commitBulk runs the fast-lane window: Idle → BulkCommitActive → Idle,
// entered only from Idle and always exited even if the body panics. The
// body runs under the scheduler's sync-progress escape hatch, so its own
// tightly-scoped scheduling flushes before the window closes. A post-exit
// invariant failure means the reorder-only classification was unsound;
// that is a fatal programming error in strict and lenient runtimes alike.
func (r *Runtime) commitBulk(inst *Instance, root *Node) {
	if r.bulk != bulkIdle {
		panic(&InvariantError{Reason: "bulk commit entered while one is active"})
	}

	doc := inst.target.Document()
	queueBefore := r.scheduler.Len()
	commitsBefore := doc.CommitCount()
	cleanupsBefore := len(inst.cleanups)

	func() {
		r.bulk = bulkCommitActive
		r.scheduler.setBulk(true)
		defer func() {
			r.bulk = bulkIdle
			r.scheduler.setBulk(false)
		}()

		r.scheduler.RunWithSyncProgress(func() {
			r.fastReorder(inst.target.ChildAt(0), root.Children)
		})
	}()

	if got := doc.CommitCount() - commitsBefore; got != 1 {
		panic(&InvariantError{Reason: fmt.Sprintf(
			"bulk commit performed %d document commits, want exactly 1", got)})
	}
	if len(inst.mountOps) != 0 {
		panic(&InvariantError{Reason: "bulk commit registered mount operations"})
	}
	if len(inst.cleanups) != cleanupsBefore {
		panic(&InvariantError{Reason: "bulk commit registered cleanup functions"})
	}
	if r.scheduler.Len() != queueBefore {
		panic(&InvariantError{Reason: "bulk commit left tasks on the scheduler queue"})
	}
}
