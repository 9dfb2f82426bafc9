// Package cron computes the next dispatch time for a domain.SchedulingGroup
// (§4.6): either an arbitrary period measured from the Unix epoch, or one
// of the calendar-aligned presets (daily/weekly/biweekly/monthly). No
// library in the example corpus implements calendar-preset cron math —
// this is hand-rolled date arithmetic against time.Time only, justified in
// DESIGN.md.
package cron

import (
	"sort"
	"time"

	"github.com/pixelpilot/autocore/internal/domain"
)

// NextTime returns the first dispatch instant strictly after now for group,
// per §4.6. It never returns a time <= now.
func NextTime(now time.Time, group domain.SchedulingGroup) time.Time {
	now = now.UTC()
	offsets := sortedOffsets(group.EffectiveDispatchTimes())

	start := periodStart(now, group)
	for _, off := range offsets {
		candidate := start.Add(off)
		if candidate.After(now) {
			return candidate
		}
	}
	next := periodNext(start, group)
	for !next.Add(offsets[0]).After(now) {
		next = periodNext(next, group)
	}
	return next.Add(offsets[0])
}

func sortedOffsets(in []time.Duration) []time.Duration {
	out := append([]time.Duration(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// periodStart returns the start of the period containing now.
func periodStart(now time.Time, group domain.SchedulingGroup) time.Time {
	if !group.HasPreset() {
		return arbitraryPeriodStart(now, group.Period)
	}
	switch group.PeriodPreset {
	case domain.PeriodDaily:
		return midnightUTC(now)
	case domain.PeriodWeekly:
		return mostRecentSunday(now)
	case domain.PeriodBiweekly:
		return biweeklyStart(now)
	case domain.PeriodMonthly:
		return firstOfMonthUTC(now)
	default:
		return midnightUTC(now)
	}
}

// periodNext returns the start of the period immediately following the one
// that begins at start.
func periodNext(start time.Time, group domain.SchedulingGroup) time.Time {
	if !group.HasPreset() {
		if group.Period <= 0 {
			return start.Add(24 * time.Hour)
		}
		return start.Add(group.Period)
	}
	switch group.PeriodPreset {
	case domain.PeriodDaily:
		return start.AddDate(0, 0, 1)
	case domain.PeriodWeekly:
		return start.AddDate(0, 0, 7)
	case domain.PeriodBiweekly:
		return start.AddDate(0, 0, 14)
	case domain.PeriodMonthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mostRecentSunday(t time.Time) time.Time {
	mid := midnightUTC(t)
	return mid.AddDate(0, 0, -int(mid.Weekday()))
}

// biweeklyStart resolves the current 14-day window's start: anchor on the
// first Sunday of t's month, then shift that anchor 14 days later once t
// has moved past the first fortnight (day-of-month distance from the
// anchor reaches 14), giving a second, third-Sunday-ish anchor for the
// rest of the month.
func biweeklyStart(t time.Time) time.Time {
	monthStart := firstOfMonthUTC(t)
	anchor := monthStart.AddDate(0, 0, (7-int(monthStart.Weekday()))%7)
	if t.Day()-anchor.Day() >= 14 {
		anchor = anchor.AddDate(0, 0, 14)
	}
	return anchor
}

func firstOfMonthUTC(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// arbitraryPeriodStart aligns period boundaries to the Unix epoch so that
// two groups sharing the same Period also share phase.
func arbitraryPeriodStart(t time.Time, period time.Duration) time.Time {
	if period <= 0 {
		period = 24 * time.Hour
	}
	elapsed := t.Sub(time.Unix(0, 0).UTC())
	n := elapsed / period
	return time.Unix(0, 0).UTC().Add(n * period)
}
