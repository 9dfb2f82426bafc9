// Package graph builds a validated domain.Routine from author-supplied
// nodes and edges, populating cross-references (Edge.From) and rejecting
// structurally inconsistent input in a single aggregated error (§4.4).
//
// The navigation runtime (internal/runtime) never constructs a
// domain.Routine directly — it only ever receives one that has already
// passed Load, so it can assume every id referenced from a node or edge
// resolves.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pixelpilot/autocore/internal/domain"
)

// NodeSpec is the author-facing payload for one node, mirroring
// domain.NewNode's arguments before edge ids are known to resolve.
type NodeSpec struct {
	ID               string
	Kind             domain.NodeKind
	DefaultCondition domain.Condition
	Edges            []string
}

// Input is everything Load needs to assemble and validate a domain.Routine.
type Input struct {
	ID               string
	Name             string
	WindowName       string
	StartCommand     string
	Nodes            []NodeSpec
	Edges            []domain.EdgeSpec
	Frames           map[string]string
	SchedulingGroups []domain.SchedulingGroup
}

// Error aggregates every structural problem Load found, so a caller (or an
// editor client) can surface them all at once instead of fixing one at a
// time.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("routine validation failed: %s", strings.Join(e.Problems, "; "))
}

// Load builds a domain.Routine from in, validating:
//   - every edge's To (and every node's edges) resolves to a known id
//   - RETURN nodes carry no stored outgoing edges (§3)
//   - scheduling groups referenced by an edge exist, and are themselves
//     internally consistent (period xor preset, §4.6)
//   - dispatch_times are non-negative (they are not checked against the
//     period length)
//   - directly runnable routines (StartCommand set) have a "start" node
func Load(in Input) (domain.Routine, error) {
	var problems []string

	nodeIDs := make(map[string]domain.NodeKind, len(in.Nodes))
	for _, n := range in.Nodes {
		if _, dup := nodeIDs[n.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate node id %q", n.ID))
			continue
		}
		nodeIDs[n.ID] = n.Kind
	}

	edgeByID := make(map[string]domain.EdgeSpec, len(in.Edges))
	for _, e := range in.Edges {
		if _, dup := edgeByID[e.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate edge id %q", e.ID))
			continue
		}
		edgeByID[e.ID] = e
	}

	groupByID := make(map[string]domain.SchedulingGroup, len(in.SchedulingGroups))
	for _, g := range in.SchedulingGroups {
		if g.Period > 0 && g.HasPreset() {
			problems = append(problems, fmt.Sprintf("scheduling group %q sets both period and period_preset", g.ID))
		}
		if g.Period <= 0 && !g.HasPreset() {
			problems = append(problems, fmt.Sprintf("scheduling group %q sets neither period nor period_preset", g.ID))
		}
		for _, dt := range g.DispatchTimes {
			if dt < 0 {
				problems = append(problems, fmt.Sprintf("scheduling group %q has a negative dispatch time", g.ID))
			}
		}
		groupByID[g.ID] = g
	}

	// Resolve From for every edge reachable from a node, and validate To.
	from := make(map[string]string, len(in.Edges))
	nodes := make(map[string]domain.Node, len(in.Nodes))
	for _, n := range in.Nodes {
		if n.Kind == domain.NodeReturn && len(n.Edges) != 0 {
			problems = append(problems, fmt.Sprintf("return node %q must not declare outgoing edges", n.ID))
		}
		for _, eid := range n.Edges {
			e, ok := edgeByID[eid]
			if !ok {
				problems = append(problems, fmt.Sprintf("node %q references unknown edge %q", n.ID, eid))
				continue
			}
			if prior, seen := from[eid]; seen && prior != n.ID {
				problems = append(problems, fmt.Sprintf("edge %q is attached to multiple nodes (%q and %q)", eid, prior, n.ID))
				continue
			}
			from[eid] = n.ID
			if _, ok := nodeIDs[e.To]; !ok {
				problems = append(problems, fmt.Sprintf("edge %q targets unknown node %q", eid, e.To))
			}
		}
		nodes[n.ID] = domain.NewNode(n.ID, n.Kind, n.DefaultCondition, n.Edges)
	}

	edges := make(map[string]domain.Edge, len(in.Edges))
	for id, spec := range edgeByID {
		f, ok := from[id]
		if !ok {
			problems = append(problems, fmt.Sprintf("edge %q is not attached to any node", id))
		}
		if spec.Action.Kind == domain.ActionSubroutine {
			if target, ok := nodeIDs[spec.Action.SubroutineEntry]; !ok || target != domain.NodeInit {
				problems = append(problems, fmt.Sprintf("edge %q subroutine action does not target an INIT node", id))
			}
		}
		for _, sg := range spec.Schedules {
			if _, ok := groupByID[sg]; !ok {
				problems = append(problems, fmt.Sprintf("edge %q references unknown scheduling group %q", id, sg))
			}
		}
		for _, dep := range spec.Dependencies {
			if _, ok := edgeByID[dep.Requires]; !ok {
				problems = append(problems, fmt.Sprintf("edge %q dependency references unknown edge %q", id, dep.Requires))
			}
		}
		edges[id] = domain.NewEdge(spec).WithFrom(f)
	}

	if in.StartCommand != "" {
		if _, ok := nodeIDs["start"]; !ok {
			problems = append(problems, `routine has a start_command but no "start" node`)
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return domain.Routine{}, &Error{Problems: problems}
	}

	return domain.Routine{
		ID:               in.ID,
		Name:             in.Name,
		WindowName:       in.WindowName,
		StartCommand:     in.StartCommand,
		Nodes:            nodes,
		Edges:            edges,
		Frames:           in.Frames,
		SchedulingGroups: groupByID,
	}, nil
}
