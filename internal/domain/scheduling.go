package domain

import "time"

// SchedulingGroup describes a recurring dispatch pattern that one or more
// edges can be bound to (§3, §4.6). Period and PeriodPreset are mutually
// exclusive — exactly one must be set; internal/graph rejects groups that
// violate this during routine load.
type SchedulingGroup struct {
	ID string

	// Period is an arbitrary recurrence length. Zero means "unset" — use
	// PeriodPreset instead.
	Period time.Duration
	// PeriodPreset selects a calendar-aligned recurrence instead of an
	// arbitrary Period.
	PeriodPreset PeriodPreset

	// DispatchTimes are offsets from the start of the period (the
	// epoch-aligned Period boundary, or the day, week, fortnight or month
	// start of a PeriodPreset) at which a dispatch is due, sorted ascending
	// and deduplicated. An empty slice is treated as []time.Duration{0}
	// (§4.6).
	DispatchTimes []time.Duration
}

// HasPreset reports whether this group uses a calendar-aligned preset
// rather than an arbitrary period.
func (g SchedulingGroup) HasPreset() bool { return g.PeriodPreset != PeriodNone }

// EffectiveDispatchTimes returns DispatchTimes, or []time.Duration{0} when
// empty (§4.6 "empty dispatch_times treated as [0]").
func (g SchedulingGroup) EffectiveDispatchTimes() []time.Duration {
	if len(g.DispatchTimes) == 0 {
		return []time.Duration{0}
	}
	return g.DispatchTimes
}
