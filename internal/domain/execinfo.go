package domain

import "time"

// ExecutionInfo is the per-edge execution history the scheduler and runtime
// consult for retry gating and backoff (§4.5, §4.7, §7).
type ExecutionInfo struct {
	Attempts          int
	Failures          int
	ConsecutiveFails  int
	LastAttempt       time.Time
	NextRetryTime     time.Time
	LastResult        ExecResult
	CompletionCount   int
}

// ExecResult is the outcome level an edge execution reports to the
// scheduler's dependency bookkeeping, totally ordered worst-to-best (§7):
// a failure satisfies no requirement level, success satisfies up through
// completion.
type ExecResult int

const (
	ResultFailure ExecResult = iota
	ResultAttempted
	ResultChecked
	ResultExecuted
	ResultCompleted
)

// Satisfies reports whether this result meets the given dependency
// requirement level.
func (r ExecResult) Satisfies(req Requirement) bool {
	if r == ResultFailure {
		return false
	}
	return int(r)-1 >= int(req)
}

// RecordSuccess returns a copy of info updated for a successful execution at
// the given level and time.
func (info ExecutionInfo) RecordSuccess(at time.Time, result ExecResult) ExecutionInfo {
	info.Attempts++
	info.ConsecutiveFails = 0
	info.LastAttempt = at
	info.LastResult = result
	if result == ResultCompleted {
		info.CompletionCount++
	}
	return info
}

// RecordFailure returns a copy of info updated for a failed execution,
// advancing NextRetryTime per the exponential-backoff-with-jitter policy
// computed by the caller (internal/runtime) and passed in as nextRetry.
func (info ExecutionInfo) RecordFailure(at, nextRetry time.Time) ExecutionInfo {
	info.Attempts++
	info.Failures++
	info.ConsecutiveFails++
	info.LastAttempt = at
	info.NextRetryTime = nextRetry
	info.LastResult = ResultFailure
	return info
}

// Ready reports whether an edge gated by backoff may be attempted at `now`.
func (info ExecutionInfo) Ready(now time.Time) bool {
	return info.NextRetryTime.IsZero() || !now.Before(info.NextRetryTime)
}
