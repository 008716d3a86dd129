// internal/provision/workflow.go
//
// Applied-side-effect stack with reverse-order compensation.
//
// Context
// -------
// Instead of nesting try/rollback error handling per operation, each
// workflow records every externally visible change it makes as an undo
// step.  On any later failure the stack unwinds newest-first, which is
// exactly the inverse of the apply order, so a half-finished create or
// update converges back to its starting state.
//
// A compensation step that itself fails is logged at WARN with the
// workflow ID and counted, never raised: the caller must see the root
// cause, and the orphaned record or file is an operator problem, not a
// client one.  Undo closures receive no context on purpose; a workflow
// that has touched DNS always runs to a terminal state even when the
// request that started it was cancelled.
package provision

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sriox/platform/internal/metrics"
)

type undoStep struct {
	desc string
	fn   func() error
}

// workflow is the per-request state machine instance.  Not safe for
// concurrent use; each request owns exactly one.
type workflow struct {
	id   string
	kind string // "website", "redirect", "github_mapping"
	op   string // "create", "update", "delete"
	log  *zap.SugaredLogger
	undo []undoStep
}

// begin opens a workflow and binds its correlation ID into the logger.
func (s *Service) begin(kind, op string) *workflow {
	id := uuid.NewString()
	return &workflow{
		id:   id,
		kind: kind,
		op:   op,
		log:  s.log.With("workflow", id, "kind", kind, "op", op),
	}
}

// applied records a successfully performed side effect and the action
// that reverses it.
func (w *workflow) applied(desc string, fn func() error) {
	w.undo = append(w.undo, undoStep{desc: desc, fn: fn})
}

// fail unwinds the applied stack in reverse order and returns err
// unchanged, so callers can `return nil, wf.fail(err)`.
func (w *workflow) fail(err error) error {
	for i := len(w.undo) - 1; i >= 0; i-- {
		step := w.undo[i]
		if uerr := step.fn(); uerr != nil {
			metrics.CompensationFailureTotal.Inc()
			metrics.InconsistentStateTotal.Inc()
			w.log.Warnw("compensation failed; manual cleanup required",
				"step", step.desc, "err", uerr)
			continue
		}
		w.log.Infow("compensated", "step", step.desc)
	}
	w.undo = nil
	metrics.WorkflowTotal.WithLabelValues(w.kind, w.op, "rejected").Inc()
	w.log.Infow("workflow rejected", "err", err)
	return err
}

// commit drops the undo stack; the workflow's effects are now permanent.
func (w *workflow) commit() {
	w.undo = nil
	metrics.WorkflowTotal.WithLabelValues(w.kind, w.op, "committed").Inc()
}

// orphan records a best-effort cleanup failure during delete: the row
// will still be removed, so the external leftover is logged for manual
// cleanup and counted as a detectable inconsistency.
func (w *workflow) orphan(what string, err error) {
	metrics.InconsistentStateTotal.Inc()
	w.log.Warnw("cleanup failed; external state orphaned",
		"what", what, "err", err)
}
