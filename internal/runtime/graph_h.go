package runtime

import (
	"github.com/pixelpilot/autocore/internal/domain"
)

// hop is one traversable step of the augmented graph H (§4.5): either a
// real edge, or a synthetic RETURN-to-call-site step that lets distance
// estimation see past a subroutine boundary.
type hop struct {
	edgeID string
	to     string
}

// augmented builds H's adjacency for the given routine and call stack.
// Every edge contributes a hop from From() to To() (subroutines are
// treated as a black box that eventually lands on To()); subroutine edges
// additionally contribute a hop straight to their entry node, so distance
// estimation can see into the subroutine when the target lives there.
// Every RETURN node contributes a synthetic hop to the innermost call
// frame's return site, standing in for the node successor §4.5 says is
// synthesized dynamically rather than stored.
func augmented(r domain.Routine, callStack []domain.Call) map[string][]hop {
	adj := make(map[string][]hop)
	for _, e := range r.Edges {
		adj[e.From()] = append(adj[e.From()], hop{edgeID: e.ID(), to: e.To()})
		if e.Action().Kind == domain.ActionSubroutine {
			adj[e.From()] = append(adj[e.From()], hop{edgeID: e.ID(), to: e.Action().SubroutineEntry})
		}
	}
	if len(callStack) > 0 {
		top := callStack[len(callStack)-1]
		for id, n := range r.Nodes {
			if n.Kind() == domain.NodeReturn {
				adj[id] = append(adj[id], hop{edgeID: "", to: top.ReturnTo})
			}
		}
	}
	return adj
}

// distances runs a breadth-first search over H from source, returning the
// hop-count to every reachable node. Unreachable nodes are absent.
func distances(adj map[string][]hop, source string) map[string]int {
	dist := map[string]int{source: 0}
	queue := []string{source}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, h := range adj[n] {
			if _, seen := dist[h.to]; seen {
				continue
			}
			dist[h.to] = dist[n] + 1
			queue = append(queue, h.to)
		}
	}
	return dist
}
