package runtime

import (
	"context"
	"time"

	"github.com/pixelpilot/autocore/internal/condition"
	"github.com/pixelpilot/autocore/internal/domain"
	"github.com/pixelpilot/autocore/internal/domainerr"
)

// executeEdge runs one edge's full action sequence (§4.5): precondition
// check with its full timeout, a repeat loop over the action, and a
// critical final postcondition check that the edge cannot be considered
// successful without.
func (rt *Runtime) executeEdge(ctx context.Context, e domain.Edge) (domain.ExecResult, error) {
	fromDefault, toDefault := rt.defaults(e)
	vars := rt.conditionVars(e)

	pre := condition.Resolve(e.Precondition(), fromDefault, toDefault, true)
	ok, err := rt.evaluator.Check(ctx, rt.frameSource(), pre, vars, false)
	if err != nil {
		return domain.ResultFailure, err
	}
	if !ok {
		return domain.ResultFailure, domainerr.NewPreconditionTimeoutError(rt.routine.ID, e.ID())
	}

	result := domain.ResultAttempted

	post := condition.Resolve(e.Postcondition(), fromDefault, toDefault, false)

	lower := e.RepeatLower()
	upper := e.EffectiveRepeatUpper()
	loopCount := lower
	if upper > loopCount {
		loopCount = upper
	}

	for i := 0; i < loopCount; i++ {
		if i >= lower {
			passed, err := rt.evaluator.Check(ctx, rt.frameSource(), post, vars, false)
			if err != nil {
				return result, err
			}
			if passed {
				break
			}
		}
		if err := rt.runAction(ctx, e); err != nil {
			if e.Action().Kind == domain.ActionSubroutine {
				return result, domainerr.NewSubroutineExecutionError(rt.routine.ID, e.Action().SubroutineEntry, err)
			}
			return result, err
		}
	}
	result = domain.ResultExecuted

	ok, err = rt.evaluator.Check(ctx, rt.frameSource(), post, vars, false)
	if err != nil {
		return result, err
	}
	if !ok {
		if e.Action().Kind == domain.ActionSubroutine {
			return result, domainerr.NewSubroutinePostconditionTimeoutError(rt.routine.ID, e.ID())
		}
		return result, domainerr.NewPostconditionTimeoutError(rt.routine.ID, e.ID())
	}

	return domain.ResultCompleted, nil
}

// runAction performs one iteration of the edge's action. Subroutine actions
// recurse into a nested Goto that drives the subroutine's own graph until
// it returns to this edge's To() node; none completes immediately, and
// replay issues each event once its TimestampMS offset has elapsed.
func (rt *Runtime) runAction(ctx context.Context, e domain.Edge) error {
	switch e.Action().Kind {
	case domain.ActionNone:
		return nil
	case domain.ActionReplay:
		return rt.playReplay(ctx, e, e.Action().Replay)
	case domain.ActionSubroutine:
		return rt.callSubroutine(ctx, e)
	default:
		return domainerr.NewStructuralError(rt.routine.ID, "edge has an unknown action kind")
	}
}

func (rt *Runtime) playReplay(ctx context.Context, e domain.Edge, replay *domain.InputReplay) error {
	if replay == nil {
		return nil
	}
	x, y, err := rt.controller.CursorPosition(ctx)
	if err != nil {
		return err
	}
	start := time.Now()
	for _, ev := range replay.Resolve(x, y) {
		if wait := time.Until(start.Add(time.Duration(ev.TimestampMS) * time.Millisecond)); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		switch ev.Kind {
		case domain.InputMove:
			if err := rt.controller.MouseMove(ctx, ev.X, ev.Y); err != nil {
				return err
			}
		case domain.InputMouseDown:
			if err := rt.controller.MouseDown(ctx); err != nil {
				return err
			}
		case domain.InputMouseUp:
			if err := rt.controller.MouseUp(ctx); err != nil {
				return err
			}
		case domain.InputKeyDown, domain.InputKeyUp:
			// reserved (§3): keyboard replay is not yet acted on.
		}
	}
	rt.observers.notifyInputReplayed(e.ID())
	return nil
}

// callSubroutine pushes a call frame and drives a nested Goto down to the
// subroutine's RETURN, which pops the frame back onto this edge's To()
// node (see popReturn). The nested Goto's target is the edge's own To(),
// since that is where the runtime must end up for this action to be
// considered complete.
func (rt *Runtime) callSubroutine(ctx context.Context, e domain.Edge) error {
	rt.ctx.CallStack = append(rt.ctx.CallStack, domain.Call{Edge: e.ID(), ReturnTo: e.To()})
	rt.ctx.Curr = e.Action().SubroutineEntry
	rt.observers.notifyCurr(rt.ctx.Curr)
	return rt.Goto(ctx, e.To())
}

func (rt *Runtime) defaults(e domain.Edge) (from, to domain.Condition) {
	fromNode, _ := rt.routine.Node(e.From())
	toNode, _ := rt.routine.Node(e.To())
	return fromNode.DefaultCondition(), toNode.DefaultCondition()
}

func (rt *Runtime) conditionVars(e domain.Edge) map[string]any {
	info := rt.execInfo[e.ID()]
	return map[string]any{
		"attempts":          info.Attempts,
		"failures":          info.Failures,
		"consecutive_fails": info.ConsecutiveFails,
	}
}

func (rt *Runtime) frameSource() condition.FrameSource {
	return frameSourceAdapter{rt: rt}
}

// frameSourceAdapter bridges Runtime's Controller/ReferenceFrames pair to
// condition.FrameSource without exposing them as a public combined type.
type frameSourceAdapter struct{ rt *Runtime }

func (a frameSourceAdapter) ReferenceFrame(frameID string) (*domain.Bitmap, error) {
	return a.rt.frames.ReferenceFrame(frameID)
}

func (a frameSourceAdapter) Capture(ctx context.Context) (*domain.Bitmap, error) {
	frame, err := a.rt.controller.Capture(ctx)
	if err != nil {
		return nil, err
	}
	a.rt.observers.notifyFrame(frame)
	return frame, nil
}
