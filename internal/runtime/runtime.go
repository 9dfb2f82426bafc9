package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/pixelpilot/autocore/internal/condition"
	"github.com/pixelpilot/autocore/internal/domain"
	"github.com/pixelpilot/autocore/internal/domainerr"
	"github.com/pixelpilot/autocore/internal/obslog"
)

// maxSteps bounds a single Goto call's edge-execution loop, guarding
// against a pathological routine graph turning a navigation request into
// an infinite loop (§5: single-threaded cooperative execution, no
// parallel runtime instances).
const maxSteps = 10_000

// Runtime is the single-threaded cooperative navigation stack machine of
// §4.5. One Runtime drives exactly one routine instance; it is not safe
// for concurrent use from multiple goroutines (§5 Non-goals).
type Runtime struct {
	routine    domain.Routine
	controller Controller
	frames     ReferenceFrames
	evaluator  *condition.Evaluator
	observers  *ObserverManager
	rng        backoffRNG
	now        func() time.Time

	ctx       domain.RuntimeContext
	execInfo  map[string]domain.ExecutionInfo
	pending   []string // queue_edge backlog, consumed before ranking
}

// Option configures a Runtime at construction time.
type Option func(*Runtime)

func WithObservers(m *ObserverManager) Option { return func(r *Runtime) { r.observers = m } }
func WithClock(now func() time.Time) Option   { return func(r *Runtime) { r.now = now } }
func WithRNG(rng backoffRNG) Option           { return func(r *Runtime) { r.rng = rng } }

// New constructs a Runtime positioned at the routine's start node with a
// fresh call stack holding only the sentinel bottom frame.
func New(r domain.Routine, controller Controller, frames ReferenceFrames, evaluator *condition.Evaluator, opts ...Option) *Runtime {
	rt := &Runtime{
		routine:    r,
		controller: controller,
		frames:     frames,
		evaluator:  evaluator,
		rng:        defaultBackoffRNG(),
		now:        time.Now,
		execInfo:   make(map[string]domain.ExecutionInfo),
		ctx: domain.RuntimeContext{
			Curr:      "start",
			CallStack: []domain.Call{{}}, // sentinel bottom frame
		},
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// GetContext returns a deep copy of the current navigation state (§4.5).
func (rt *Runtime) GetContext() domain.RuntimeContext { return rt.ctx.Clone() }

// RestoreContext installs c as the current navigation state, but only if
// every node id it references actually exists in the loaded routine; it is
// a no-op (returns false) otherwise, rather than leaving the runtime in a
// half-restored state (§4.5).
func (rt *Runtime) RestoreContext(c domain.RuntimeContext) bool {
	if _, ok := rt.routine.Node(c.Curr); !ok {
		return false
	}
	if c.TargetNode != "" {
		if _, ok := rt.routine.Node(c.TargetNode); !ok {
			return false
		}
	}
	if len(c.CallStack) == 0 {
		return false
	}
	for _, call := range c.CallStack[1:] {
		if _, ok := rt.routine.Node(call.ReturnTo); call.ReturnTo != "" && !ok {
			return false
		}
	}
	rt.ctx = c.Clone()
	return true
}

// SetCurr forcibly relocates curr without navigating there, used for
// external resynchronization (e.g. the editor). It does not touch the
// call stack.
func (rt *Runtime) SetCurr(nodeID string) error {
	if _, ok := rt.routine.Node(nodeID); !ok {
		return fmt.Errorf("runtime.SetCurr: unknown node %q", nodeID)
	}
	rt.ctx.Curr = nodeID
	rt.observers.notifyCurr(nodeID)
	return nil
}

// QueueEdge requests that edgeID be attempted at the next opportunity,
// ahead of ranking — used for interrupt-style external triggers and editor
// "force this edge" commands (§4.5).
func (rt *Runtime) QueueEdge(edgeID string) {
	rt.pending = append(rt.pending, edgeID)
}

// ExecutionInfo reports the current execution statistics for edgeID.
func (rt *Runtime) ExecutionInfo(edgeID string) domain.ExecutionInfo {
	return rt.execInfo[edgeID]
}

// Goto drives the stack machine toward target, executing edges one at a
// time until curr == target, a structural problem is found, or no viable
// edge remains. Calling Goto with target == curr is a no-op (§8 idempotence
// property).
func (rt *Runtime) Goto(ctx context.Context, target string) error {
	ctx, span := obslog.StartSpan(ctx, "runtime.Goto")
	defer span.End()

	if _, ok := rt.routine.Node(target); !ok {
		return domainerr.NewStructuralError(rt.routine.ID, fmt.Sprintf("goto target %q does not exist", target))
	}
	rt.ctx.TargetNode = target

	for step := 0; ; step++ {
		if rt.ctx.Curr == target {
			rt.ctx.TargetNode = ""
			return nil
		}
		if step >= maxSteps {
			return domainerr.NewStructuralError(rt.routine.ID, "goto exceeded maximum step count")
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		node, ok := rt.routine.Node(rt.ctx.Curr)
		if !ok {
			return domainerr.NewStructuralError(rt.routine.ID, fmt.Sprintf("curr %q does not exist", rt.ctx.Curr))
		}

		if node.Kind() == domain.NodeReturn {
			if err := rt.popReturn(); err != nil {
				return err
			}
			continue
		}

		edge, err := rt.selectEdge(target)
		if err != nil {
			return err
		}

		result, execErr := rt.executeEdge(ctx, edge)
		rt.recordResult(edge, result, execErr)
		if execErr != nil {
			if domainerr.IsTimeout(execErr) {
				continue // try the next-ranked candidate, or fail on the next loop's NoPath
			}
			return execErr
		}

		rt.advance(edge)
	}
}

// popReturn pops the innermost call frame and resumes at its return site.
// Returning past the sentinel bottom frame is structural: it means a
// RETURN node was passed through with no enclosing call. (A RETURN node
// that is Goto's own target is never popped: Goto stops on arrival.)
func (rt *Runtime) popReturn() error {
	if len(rt.ctx.CallStack) <= 1 {
		return domainerr.NewStructuralError(rt.routine.ID, "return reached with no enclosing subroutine call")
	}
	top := rt.ctx.CallStack[len(rt.ctx.CallStack)-1]
	rt.ctx.CallStack = rt.ctx.CallStack[:len(rt.ctx.CallStack)-1]
	rt.ctx.Curr = top.ReturnTo
	rt.observers.notifyReturn(top)
	rt.observers.notifyCurr(rt.ctx.Curr)
	return nil
}

// selectEdge picks the next edge to attempt: a pending queue_edge request
// if one is outstanding, otherwise the best-ranked, backoff-ready outgoing
// edge of curr. Returns NoPathError when nothing is viable.
func (rt *Runtime) selectEdge(target string) (domain.Edge, error) {
	if len(rt.pending) > 0 {
		id := rt.pending[0]
		rt.pending = rt.pending[1:]
		if e, ok := rt.routine.Edge(id); ok {
			return e, nil
		}
	}

	ranked := Rank(rt.routine, rt.ctx.Curr, target, rt.ctx.CallStack)
	ranked = FilterReady(ranked, rt.execInfo, rt.now())
	if len(ranked) == 0 {
		return domain.Edge{}, domainerr.NewNoPathError(rt.routine.ID, rt.ctx.Curr, target)
	}
	return ranked[0].Edge, nil
}

// advance commits a successfully executed edge's effect on curr and the
// call stack.
func (rt *Runtime) advance(e domain.Edge) {
	rt.observers.notifyEdge(e.ID())
	if e.Action().Kind == domain.ActionSubroutine {
		rt.ctx.CallStack = append(rt.ctx.CallStack, domain.Call{Edge: e.ID(), ReturnTo: e.To()})
		rt.ctx.Curr = e.Action().SubroutineEntry
	} else {
		rt.ctx.Curr = e.To()
	}
	rt.observers.notifyCurr(rt.ctx.Curr)
}

// recordResult updates the edge's execution statistics and, on a timeout
// failure, its retry backoff (§4.7). NoPath and interrupt outcomes never
// touch stats — only timeouts do.
func (rt *Runtime) recordResult(e domain.Edge, result domain.ExecResult, err error) {
	now := rt.now()
	info := rt.execInfo[e.ID()]
	switch {
	case err == nil:
		rt.execInfo[e.ID()] = info.RecordSuccess(now, result)
	case domainerr.IsTimeout(err):
		next := nextRetryTime(now, info.ConsecutiveFails+1, rt.rng)
		rt.execInfo[e.ID()] = info.RecordFailure(now, next)
	default:
		// NoPath, interrupt and structural errors leave stats untouched.
	}
}
