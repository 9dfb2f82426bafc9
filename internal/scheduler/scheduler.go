package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/pixelpilot/autocore/internal/domain"
)

// Dispatcher drives a single edge's execution to completion and reports
// its result level — the navigation runtime satisfies this in production
// (Runtime.Goto to the edge's arrival node), wrapped so the scheduler never
// depends on internal/runtime directly.
type Dispatcher interface {
	Execute(ctx context.Context, edgeID string) (domain.ExecResult, error)
}

// EdgeInfo is the scheduler's bookkeeping for one edge: how many runs are
// currently expected (Pending), and how far its own dependencies have been
// satisfied. The edges waiting on this one are listed in
// Scheduler.subscribersOf, not here.
type EdgeInfo struct {
	Pending int
	// satisfiedCounts[requiredEdgeID] is how many times that required edge
	// has produced a result meeting this edge's dependency level.
	satisfiedCounts map[string]int
}

// subscriber records that dependentEdge's dependency on requiresEdge needs
// `count` satisfying results at `requirement` level before it may run.
type subscriber struct {
	dependentEdge string
	requirement   domain.Requirement
	count         int
}

// Scheduler is the deadline-ordered, dependency-gated edge dispatcher of
// §4.7. It holds no knowledge of the routine graph beyond each edge's
// declared Dependencies — callers (internal/cron, the navigation runtime)
// decide when and why to Schedule an edge.
type Scheduler struct {
	mu   sync.Mutex
	h    entryHeap
	seq  int64
	now  func() time.Time
	info map[string]*EdgeInfo
	// subscribersOf[requiresEdge] lists dependents waiting on it.
	subscribersOf map[string][]subscriber
	dependencies  map[string][]domain.Dependency
}

// New constructs an empty Scheduler. dependencies maps each edge id to the
// Dependency list it must satisfy before Next will execute it (typically
// domain.Edge.Dependencies() for every edge in the routine).
func New(dependencies map[string][]domain.Dependency) *Scheduler {
	s := &Scheduler{
		now:           time.Now,
		info:          make(map[string]*EdgeInfo),
		subscribersOf: make(map[string][]subscriber),
		dependencies:  dependencies,
	}
	heap.Init(&s.h)
	for edgeID, deps := range dependencies {
		for _, d := range deps {
			s.subscribersOf[d.Requires] = append(s.subscribersOf[d.Requires], subscriber{
				dependentEdge: edgeID, requirement: d.Requirement, count: d.Count,
			})
		}
	}
	return s
}

// WithClock overrides the scheduler's time source, for deterministic tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

func (s *Scheduler) edgeInfo(edgeID string) *EdgeInfo {
	info, ok := s.info[edgeID]
	if !ok {
		info = &EdgeInfo{satisfiedCounts: make(map[string]int)}
		s.info[edgeID] = info
	}
	return info
}

// Schedule enqueues edgeID to run at deadline, bumping its pending-run
// count by bumpPending (typically 1 per dispatch) (§4.7).
func (s *Scheduler) Schedule(edgeID string, deadline time.Time, bumpPending int, requirement domain.Requirement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked(edgeID, deadline, bumpPending, requirement)
}

func (s *Scheduler) scheduleLocked(edgeID string, deadline time.Time, bumpPending int, requirement domain.Requirement) {
	s.edgeInfo(edgeID).Pending += bumpPending
	s.seq++
	heap.Push(&s.h, entry{
		edgeID: edgeID, deadlineNanos: deadline.UnixNano(), seq: s.seq,
		bumpPending: bumpPending, requirement: requirement,
	})
}

// Outcome reports what Next did with the edge it popped.
type Outcome int

const (
	// OutcomeEmpty: the heap had nothing to pop.
	OutcomeEmpty Outcome = iota
	// OutcomeDropped: the popped entry's edge has no pending runs left
	// (already satisfied by an earlier dispatch of the same edge).
	OutcomeDropped
	// OutcomeDeferred: dependencies were unmet; the entry was requeued.
	OutcomeDeferred
	// OutcomeExecuted: the edge ran to completion (successfully or not).
	OutcomeExecuted
)

// NextResult is what Next returns for one heap pop.
type NextResult struct {
	Outcome Outcome
	EdgeID  string
	Result  domain.ExecResult
	Err     error
}

// Next pops and processes exactly one entry (§4.7):
//   - if the edge's pending count has already been drained, drop it
//   - if its dependencies aren't yet satisfied, requeue it one nanosecond
//     later and report OutcomeDeferred
//   - otherwise dispatch it, broadcast its result to subscribers, and — on
//     a failed dispatch that made no progress — requeue it at a
//     lower (later) priority rather than dropping it silently
func (s *Scheduler) Next(ctx context.Context, dispatch Dispatcher) NextResult {
	s.mu.Lock()
	if s.h.Len() == 0 {
		s.mu.Unlock()
		return NextResult{Outcome: OutcomeEmpty}
	}
	e := heap.Pop(&s.h).(entry)
	info := s.edgeInfo(e.edgeID)

	if info.Pending <= 0 {
		s.mu.Unlock()
		return NextResult{Outcome: OutcomeDropped, EdgeID: e.edgeID}
	}

	if !s.dependenciesMetLocked(e.edgeID) {
		s.enqueuePrerequisitesLocked(e.edgeID, e.deadlineNanos+1)
		s.scheduleLocked(e.edgeID, time.Unix(0, e.deadlineNanos+1), 0, e.requirement)
		s.mu.Unlock()
		return NextResult{Outcome: OutcomeDeferred, EdgeID: e.edgeID}
	}

	info.Pending--
	s.mu.Unlock()

	result, err := dispatch.Execute(ctx, e.edgeID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// No progress was made; keep the edge in play at a lower priority
		// (pushed a full second back) instead of letting it vanish.
		s.scheduleLocked(e.edgeID, s.now().Add(time.Second), 1, e.requirement)
	} else {
		s.broadcastLocked(e.edgeID, result)
	}
	return NextResult{Outcome: OutcomeExecuted, EdgeID: e.edgeID, Result: result, Err: err}
}

// enqueuePrerequisitesLocked subscribes edgeID to each not-yet-satisfied
// dependency it declares (already true structurally — subscribersOf is
// built once in New from the same dependency lists) and, for any required
// edge with fewer pending runs than the dependency still needs, schedules
// enough additional runs to cover the gap, at deadlineNanos and the dep's
// own requirement level (§4.7 step 2).
func (s *Scheduler) enqueuePrerequisitesLocked(edgeID string, deadlineNanos int64) {
	info := s.edgeInfo(edgeID)
	for _, dep := range s.dependencies[edgeID] {
		if info.satisfiedCounts[dep.Requires] >= dep.Count {
			continue
		}
		reqInfo := s.edgeInfo(dep.Requires)
		for need := dep.Count - reqInfo.Pending; need > 0; need-- {
			s.scheduleLocked(dep.Requires, time.Unix(0, deadlineNanos), 1, dep.Requirement)
		}
	}
}

func (s *Scheduler) dependenciesMetLocked(edgeID string) bool {
	for _, dep := range s.dependencies[edgeID] {
		info := s.edgeInfo(edgeID)
		if info.satisfiedCounts[dep.Requires] < dep.Count {
			return false
		}
	}
	return true
}

func (s *Scheduler) broadcastLocked(edgeID string, result domain.ExecResult) {
	for _, sub := range s.subscribersOf[edgeID] {
		if !result.Satisfies(sub.requirement) {
			continue
		}
		depInfo := s.edgeInfo(sub.dependentEdge)
		depInfo.satisfiedCounts[edgeID]++
	}
}

// Snapshot reports the current pending-run count for every known edge,
// for the editor's execution-stats panel (SPEC_FULL §C.3).
func (s *Scheduler) Snapshot() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.info))
	for id, info := range s.info {
		out[id] = info.Pending
	}
	return out
}

// Len reports how many entries are currently queued, including deferred
// and dropped-but-not-yet-popped ones.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Len()
}
