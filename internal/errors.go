package internal

import (
	"errors"
	"fmt"
)

// PreconditionError reports an operation attempted in the wrong call context:
// enqueueing a nil task, writing state mid-render, scheduling during a bulk
// commit. Strict runtimes panic with it; lenient runtimes log and drop the
// operation where dropping is safe.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("loom: %s: %s", e.Op, e.Reason)
}

// InvariantError reports a violation of the runtime's own correctness
// assumptions: state index regression, ownership changes, re-entrant flush,
// unsound fast-lane classification. Never silently recovered.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return "loom: invariant violated: " + e.Reason
}

// RenderError wraps a panic raised by a component's render function or by an
// invariant check during execution. The attempt is rolled back before the
// error propagates.
type RenderError struct {
	ComponentID string
	Cause       any
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("loom: render of component %s failed: %v", e.ComponentID, e.Cause)
}

func (e *RenderError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// CommitError wraps a panic raised while applying a tree to the document.
// The pre-commit child list is restored before the error propagates.
type CommitError struct {
	ComponentID string
	Cause       any
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("loom: commit of component %s failed: %v", e.ComponentID, e.Cause)
}

func (e *CommitError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// CleanupError aggregates teardown failures so one failing effect does not
// prevent the others from running. Surfaced once all teardowns have run.
type CleanupError struct {
	Errs []error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("loom: %d cleanup(s) failed: %v", len(e.Errs), errors.Join(e.Errs...))
}

func (e *CleanupError) Unwrap() []error {
	return e.Errs
}
