package domain

// Call is one frame of the navigation call stack — recorded when a
// subroutine action is taken so that a RETURN node knows where to resume
// (§3, §4.5).
type Call struct {
	// Edge is the id of the subroutine-action edge that pushed this frame.
	Edge string
	// ReturnTo is the node id execution resumes at once the subroutine's
	// RETURN node is reached.
	ReturnTo string
	// FinishCount is a completion counter carried through
	// get_context/restore_context as-is; internal/runtime never updates it.
	FinishCount int
}

// RuntimeContext is the mutable navigation state for a single routine
// instance — the "curr / call_stack / target_node" triple of §3. It is the
// payload get_context/restore_context round-trip (§4.5).
type RuntimeContext struct {
	Curr string
	// CallStack is ordered outermost-first; a fresh context has a single
	// sentinel bottom frame, never empty, so passing through a RETURN node
	// at top level is a structural error rather than an out-of-bounds pop.
	CallStack []Call
	// TargetNode is the node goto() is currently navigating toward; empty
	// when idle.
	TargetNode string
}

// Clone returns a deep copy safe to mutate independently of c.
func (c RuntimeContext) Clone() RuntimeContext {
	return RuntimeContext{
		Curr:       c.Curr,
		CallStack:  append([]Call(nil), c.CallStack...),
		TargetNode: c.TargetNode,
	}
}

// Depth returns the current subroutine nesting depth, excluding the
// sentinel bottom frame.
func (c RuntimeContext) Depth() int {
	if len(c.CallStack) == 0 {
		return 0
	}
	return len(c.CallStack) - 1
}
