package runtime

import (
	"math"
	"sort"
	"time"

	"github.com/pixelpilot/autocore/internal/domain"
)

// Ranked is one candidate outgoing edge, scored for preference (§4.5).
type Ranked struct {
	Edge     domain.Edge
	Distance int // hop count to target over H; math.MaxInt32 if unreachable
}

// Rank orders curr's outgoing edges (both triggers) by the cost tuple
// (is_not_interrupt, estimated_distance): interrupts always sort first,
// then by ascending estimated distance to target over the augmented graph
// H, with edge id as a final deterministic tiebreak.
func Rank(r domain.Routine, curr, target string, callStack []domain.Call) []Ranked {
	adj := augmented(r, callStack)
	rev := reverse(adj)
	distToTarget := distances(rev, target)

	n, ok := r.Node(curr)
	if !ok {
		return nil
	}
	out := make([]Ranked, 0, len(n.Edges()))
	for _, eid := range n.Edges() {
		e, ok := r.Edge(eid)
		if !ok {
			continue
		}
		d, reachable := distToTarget[e.To()]
		if !reachable {
			d = math.MaxInt32
		}
		out = append(out, Ranked{Edge: e, Distance: d})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ii, jj := isNotInterrupt(out[i].Edge), isNotInterrupt(out[j].Edge)
		if ii != jj {
			return ii < jj
		}
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Edge.ID() < out[j].Edge.ID()
	})
	return out
}

func isNotInterrupt(e domain.Edge) int {
	if e.IsInterrupt() {
		return 0
	}
	return 1
}

func reverse(adj map[string][]hop) map[string][]hop {
	rev := make(map[string][]hop, len(adj))
	for from, hops := range adj {
		for _, h := range hops {
			rev[h.to] = append(rev[h.to], hop{edgeID: h.edgeID, to: from})
		}
	}
	return rev
}

// FilterReady strips edges still gated by backoff (§4.7), preserving the
// relative order of the survivors — the retry-gating filter applied to an
// already-ranked candidate list.
func FilterReady(ranked []Ranked, info map[string]domain.ExecutionInfo, now time.Time) []Ranked {
	out := make([]Ranked, 0, len(ranked))
	for _, cand := range ranked {
		if ei, ok := info[cand.Edge.ID()]; ok && !ei.Ready(now) {
			continue
		}
		out = append(out, cand)
	}
	return out
}
