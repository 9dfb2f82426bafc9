package runtime

import "time"

// WakeTimer is an external power-management primitive capable of waking the
// host before a deadline, so the runtime can cooperatively sleep between
// dispatches instead of polling (SPEC_FULL §C.4). Production wiring may
// back this with an OS wake-alarm; DefaultWakeTimer below is the
// cooperative-sleep fallback used when no such primitive is available.
type WakeTimer interface {
	// ArmAfter schedules a wake and returns a channel that receives once
	// when it fires. Calling ArmAfter again replaces any pending wake.
	ArmAfter(d time.Duration) <-chan time.Time
	// Cancel releases a pending wake, if any.
	Cancel()
}

// DefaultWakeTimer wraps time.Timer — a plain cooperative sleep, used
// whenever no OS-level wake primitive is wired in.
type DefaultWakeTimer struct {
	timer *time.Timer
}

func NewDefaultWakeTimer() *DefaultWakeTimer { return &DefaultWakeTimer{} }

func (w *DefaultWakeTimer) ArmAfter(d time.Duration) <-chan time.Time {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.NewTimer(d)
	return w.timer.C
}

func (w *DefaultWakeTimer) Cancel() {
	if w.timer != nil {
		w.timer.Stop()
	}
}
