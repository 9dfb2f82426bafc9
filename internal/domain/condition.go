package domain

import "time"

// ImageCondition is a masked multi-region template-matching check (§3, §4.1).
type ImageCondition struct {
	// FrameID names the reference frame this condition matches against.
	FrameID string
	// Regions are rectangles inside the reference frame that define the
	// template (and its mask).
	Regions []Rect
	// AllowRegions are rectangles inside the observed frame where a match
	// may be located. Defaults to Regions when empty.
	AllowRegions []Rect
	Method       ImageMethod
	Threshold    float64
	// Padding is the NMS exclusion radius in pixels.
	Padding int
	// MatchLimit caps the number of accepted matches.
	MatchLimit int
}

// TextCondition is the reserved textual/expression condition variant. We
// give it a concrete, minimal treatment: a boolean expr-lang expression
// evaluated against a caller-supplied variable set (see SPEC_FULL §B).
type TextCondition struct {
	Expression string
}

// Condition is a tagged variant: none / image / text / auto / target.
// Auto/target are indirections resolved against a node's default
// condition, never stored conditions themselves (§9 design notes) — so
// Condition carries at most one concrete payload alongside its Kind tag.
type Condition struct {
	Kind  ConditionKind
	Image *ImageCondition
	Text  *TextCondition

	// Delay is how long check() sleeps before the first observation,
	// unless no_delay was requested by the caller.
	Delay time.Duration
	// Timeout bounds the polling loop; zero means the default (30s, §4.2).
	Timeout time.Duration
	// Interval is the polling period between observations.
	Interval time.Duration
}

// DefaultTimeout is applied when a Condition.Timeout is zero (§4.2).
const DefaultTimeout = 30 * time.Second

// EffectiveTimeout returns c.Timeout, or DefaultTimeout when unset.
func (c Condition) EffectiveTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// NoneCondition builds the always-true condition.
func NoneCondition() Condition { return Condition{Kind: ConditionNone} }

// AutoCondition builds the "use node default" indirection.
func AutoCondition() Condition { return Condition{Kind: ConditionAuto} }

// TargetCondition builds the "use destination node default" indirection.
func TargetCondition() Condition { return Condition{Kind: ConditionTarget} }
