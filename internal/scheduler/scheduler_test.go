package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpilot/autocore/internal/domain"
	"github.com/pixelpilot/autocore/internal/scheduler"
)

type fakeDispatcher struct {
	calls   []string
	results map[string]domain.ExecResult
	errs    map[string]error
}

func (f *fakeDispatcher) Execute(ctx context.Context, edgeID string) (domain.ExecResult, error) {
	f.calls = append(f.calls, edgeID)
	if err, ok := f.errs[edgeID]; ok {
		return domain.ResultFailure, err
	}
	return f.results[edgeID], nil
}

func TestNextDispatchesInDeadlineOrder(t *testing.T) {
	s := scheduler.New(nil)
	base := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	s.Schedule("b", base.Add(2*time.Second), 1, domain.RequireAttempt)
	s.Schedule("a", base.Add(1*time.Second), 1, domain.RequireAttempt)

	disp := &fakeDispatcher{results: map[string]domain.ExecResult{"a": domain.ResultCompleted, "b": domain.ResultCompleted}}

	r1 := s.Next(context.Background(), disp)
	require.Equal(t, scheduler.OutcomeExecuted, r1.Outcome)
	assert.Equal(t, "a", r1.EdgeID)

	r2 := s.Next(context.Background(), disp)
	require.Equal(t, scheduler.OutcomeExecuted, r2.Outcome)
	assert.Equal(t, "b", r2.EdgeID)
}

func TestNextDropsWhenPendingDrained(t *testing.T) {
	s := scheduler.New(nil)
	base := time.Now()
	s.Schedule("a", base, 1, domain.RequireAttempt)
	s.Schedule("a", base.Add(time.Millisecond), 0, domain.RequireAttempt) // stale duplicate, no pending bump

	disp := &fakeDispatcher{results: map[string]domain.ExecResult{"a": domain.ResultCompleted}}
	r1 := s.Next(context.Background(), disp)
	require.Equal(t, scheduler.OutcomeExecuted, r1.Outcome)

	r2 := s.Next(context.Background(), disp)
	assert.Equal(t, scheduler.OutcomeDropped, r2.Outcome)
}

func TestNextDefersUnmetDependency(t *testing.T) {
	deps := map[string][]domain.Dependency{
		"child": {{ID: "d1", Requires: "parent", Requirement: domain.RequireCompletion, Count: 1}},
	}
	s := scheduler.New(deps)
	base := time.Now()
	s.Schedule("child", base, 1, domain.RequireCompletion)
	s.Schedule("parent", base, 1, domain.RequireAttempt)

	disp := &fakeDispatcher{results: map[string]domain.ExecResult{
		"parent": domain.ResultCompleted,
		"child":  domain.ResultCompleted,
	}}

	r1 := s.Next(context.Background(), disp) // child popped first (same deadline, earlier seq) but deferred
	assert.Equal(t, scheduler.OutcomeDeferred, r1.Outcome)

	r2 := s.Next(context.Background(), disp) // parent runs, satisfies the dependency
	assert.Equal(t, scheduler.OutcomeExecuted, r2.Outcome)
	assert.Equal(t, "parent", r2.EdgeID)

	r3 := s.Next(context.Background(), disp) // child now runs
	assert.Equal(t, scheduler.OutcomeExecuted, r3.Outcome)
	assert.Equal(t, "child", r3.EdgeID)

	assert.Equal(t, []string{"parent", "child"}, disp.calls)
}

func TestNextEnqueuesUnscheduledPrerequisites(t *testing.T) {
	// Star graph: "n" depends on "a", "b", "c", none of which are ever
	// scheduled directly. Only "n" is scheduled; Next must pull its
	// prerequisites in on its own (§4.7 step 2) rather than deferring "n"
	// forever with nothing else in the queue to make progress.
	deps := map[string][]domain.Dependency{
		"n": {
			{ID: "d1", Requires: "a", Requirement: domain.RequireCompletion, Count: 1},
			{ID: "d2", Requires: "b", Requirement: domain.RequireCompletion, Count: 1},
			{ID: "d3", Requires: "c", Requirement: domain.RequireCompletion, Count: 1},
		},
	}
	s := scheduler.New(deps)
	s.Schedule("n", time.Now(), 1, domain.RequireCompletion)

	disp := &fakeDispatcher{results: map[string]domain.ExecResult{
		"a": domain.ResultCompleted,
		"b": domain.ResultCompleted,
		"c": domain.ResultCompleted,
		"n": domain.ResultCompleted,
	}}

	var outcomes []scheduler.Outcome
	for i := 0; i < 10 && len(disp.calls) < 4; i++ {
		r := s.Next(context.Background(), disp)
		outcomes = append(outcomes, r.Outcome)
		if r.Outcome == scheduler.OutcomeEmpty {
			break
		}
	}

	assert.Contains(t, disp.calls, "a")
	assert.Contains(t, disp.calls, "b")
	assert.Contains(t, disp.calls, "c")
	assert.Equal(t, "n", disp.calls[len(disp.calls)-1], "n must run only after all three prerequisites have")
}

func TestNextRequeuesFailedDispatchInsteadOfDropping(t *testing.T) {
	s := scheduler.New(nil)
	disp := &fakeDispatcher{errs: map[string]error{"a": assert.AnError}}
	s.Schedule("a", time.Now(), 1, domain.RequireAttempt)

	r1 := s.Next(context.Background(), disp)
	require.Equal(t, scheduler.OutcomeExecuted, r1.Outcome)
	require.Error(t, r1.Err)

	assert.Equal(t, 1, s.Len())
	snap := s.Snapshot()
	assert.Equal(t, 1, snap["a"])
}
