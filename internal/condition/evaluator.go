// Package condition resolves a domain.Condition — none, image, text, auto
// or target — against a capture source and a routine's node defaults,
// mirroring the teacher's centralized, caching ConditionEvaluator but
// re-grounded on image template matching and expr-lang boolean expressions
// instead of boolean edge gating (see SPEC_FULL.md §B).
package condition

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/pixelpilot/autocore/internal/domain"
	"github.com/pixelpilot/autocore/internal/imaging"
)

// FrameSource supplies the pixels a reference frame id names, and the
// current observed frame. Implementations live in internal/cache
// (reference frames) and internal/controller (live capture).
type FrameSource interface {
	ReferenceFrame(frameID string) (*domain.Bitmap, error)
	Capture(ctx context.Context) (*domain.Bitmap, error)
}

// Evaluator resolves conditions with compiled-expression caching, mirroring
// the teacher's ConditionEvaluator.
type Evaluator struct {
	mu            sync.RWMutex
	compiledCache map[string]*vm.Program
	enableCache   bool
}

// NewEvaluator constructs an Evaluator. enableCache matches the teacher's
// constructor toggle, defaulting on in production wiring.
func NewEvaluator(enableCache bool) *Evaluator {
	return &Evaluator{compiledCache: make(map[string]*vm.Program), enableCache: enableCache}
}

// Resolve turns a (possibly indirect) Condition into the concrete
// condition to evaluate, given the source node's and destination node's
// defaults (§9: auto/target are resolved afresh per call, never cached).
func Resolve(cond domain.Condition, sourceDefault, destDefault domain.Condition, forPrecondition bool) domain.Condition {
	switch cond.Kind {
	case domain.ConditionAuto:
		if forPrecondition {
			return sourceDefault
		}
		return destDefault
	case domain.ConditionTarget:
		return destDefault
	default:
		return cond
	}
}

// CheckOnce evaluates cond exactly once against the current frame, with no
// polling (§4.2 check_once).
func (e *Evaluator) CheckOnce(ctx context.Context, src FrameSource, cond domain.Condition, vars map[string]any) (bool, error) {
	switch cond.Kind {
	case domain.ConditionNone:
		return true, nil
	case domain.ConditionImage:
		return e.checkImage(ctx, src, cond.Image)
	case domain.ConditionText:
		return e.checkText(cond.Text, vars)
	case domain.ConditionAuto, domain.ConditionTarget:
		return false, fmt.Errorf("condition.CheckOnce: %s condition was not resolved before evaluation", cond.Kind)
	default:
		return false, fmt.Errorf("condition.CheckOnce: unknown condition kind %q", cond.Kind)
	}
}

// Check polls cond up to cond.EffectiveTimeout(), sleeping cond.Delay
// first unless noDelay is set, and sampling every cond.Interval (falling
// back to a sane default when zero) until it passes or the timeout elapses
// (§4.2).
func (e *Evaluator) Check(ctx context.Context, src FrameSource, cond domain.Condition, vars map[string]any, noDelay bool) (bool, error) {
	if cond.Kind == domain.ConditionNone {
		return true, nil
	}
	if !noDelay && cond.Delay > 0 {
		if err := sleep(ctx, cond.Delay); err != nil {
			return false, err
		}
	}

	interval := cond.Interval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	deadline := time.Now().Add(cond.EffectiveTimeout())

	for {
		ok, err := e.CheckOnce(ctx, src, cond, vars)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if !time.Now().Before(deadline) {
			return false, nil
		}
		if err := sleep(ctx, interval); err != nil {
			return false, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (e *Evaluator) checkImage(ctx context.Context, src FrameSource, img *domain.ImageCondition) (bool, error) {
	if img == nil {
		return false, fmt.Errorf("condition.checkImage: nil image condition")
	}
	ref, err := src.ReferenceFrame(img.FrameID)
	if err != nil {
		return false, fmt.Errorf("condition.checkImage: loading reference frame %q: %w", img.FrameID, err)
	}
	observed, err := src.Capture(ctx)
	if err != nil {
		return false, fmt.Errorf("condition.checkImage: capturing observed frame: %w", err)
	}
	return imaging.Passes(ref, observed, *img), nil
}

func (e *Evaluator) checkText(txt *domain.TextCondition, vars map[string]any) (bool, error) {
	if txt == nil {
		return false, fmt.Errorf("condition.checkText: nil text condition")
	}
	program, err := e.compiled(txt.Expression)
	if err != nil {
		return false, err
	}
	result, err := expr.Run(program, vars)
	if err != nil {
		return false, fmt.Errorf("condition.checkText: evaluating %q: %w", txt.Expression, err)
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("condition.checkText: expression %q did not return a boolean, got %T", txt.Expression, result)
	}
	return b, nil
}

func (e *Evaluator) compiled(expression string) (*vm.Program, error) {
	if e.enableCache {
		e.mu.RLock()
		p, ok := e.compiledCache[expression]
		e.mu.RUnlock()
		if ok {
			return p, nil
		}
	}
	program, err := expr.Compile(expression, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("condition: compiling %q: %w", expression, err)
	}
	if e.enableCache {
		e.mu.Lock()
		e.compiledCache[expression] = program
		e.mu.Unlock()
	}
	return program, nil
}
