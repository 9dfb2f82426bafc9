// Package serialize implements the on-disk binary encoding for a loaded
// domain.Routine and its execution-info table (the rt.pb/runtimedata.pb
// contracts of §6), using msgpack instead of protobuf since no protoc step
// is available in this build (see SPEC_FULL.md §B). Every encoded blob
// carries a trailing 32-byte SHA-256 checksum so a corrupted file is detected on load
// rather than silently misinterpreted.
package serialize

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/tmthrgd/go-hex"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pixelpilot/autocore/internal/domain"
)

// wireRoutine is the msgpack-level shape of a domain.Routine — a plain
// struct mirror since domain.Routine's Node/Edge accessors are the API
// surface, not the wire format.
type wireRoutine struct {
	ID               string
	Name             string
	WindowName       string
	StartCommand     string
	Nodes            map[string]wireNode
	Edges            map[string]wireEdge
	Frames           map[string]string
	SchedulingGroups map[string]domain.SchedulingGroup
}

type wireNode struct {
	Kind             domain.NodeKind
	DefaultCondition domain.Condition
	Edges            []string
}

// wireEdge mirrors domain.Edge's unexported fields through its accessors —
// msgpack reflects only exported fields, and Edge keeps its fields
// unexported to stay an immutable value type.
type wireEdge struct {
	ID            string
	From          string
	To            string
	Trigger       domain.EdgeTrigger
	Precondition  domain.Condition
	Postcondition domain.Condition
	Action        domain.Action
	RepeatLower   int
	RepeatUpper   int
	Schedules     []string
	Dependencies  []domain.Dependency
}

func toWireEdge(e domain.Edge) wireEdge {
	return wireEdge{
		ID: e.ID(), From: e.From(), To: e.To(), Trigger: e.Trigger(),
		Precondition: e.Precondition(), Postcondition: e.Postcondition(), Action: e.Action(),
		RepeatLower: e.RepeatLower(), RepeatUpper: e.RepeatUpper(),
		Schedules: e.Schedules(), Dependencies: e.Dependencies(),
	}
}

func fromWireEdge(w wireEdge) domain.Edge {
	return domain.NewEdge(domain.EdgeSpec{
		ID: w.ID, To: w.To, Trigger: w.Trigger,
		Precondition: w.Precondition, Postcondition: w.Postcondition, Action: w.Action,
		RepeatLower: w.RepeatLower, RepeatUpper: w.RepeatUpper,
		Schedules: w.Schedules, Dependencies: w.Dependencies,
	}).WithFrom(w.From)
}

// EncodeRoutine serializes r to its binary wire form, appending a SHA-256
// checksum so DecodeRoutine can detect truncation or corruption.
func EncodeRoutine(r domain.Routine) ([]byte, error) {
	wr := wireRoutine{
		ID: r.ID, Name: r.Name, WindowName: r.WindowName, StartCommand: r.StartCommand,
		Nodes: make(map[string]wireNode, len(r.Nodes)), Edges: make(map[string]wireEdge, len(r.Edges)),
		Frames: r.Frames, SchedulingGroups: r.SchedulingGroups,
	}
	for id, n := range r.Nodes {
		wr.Nodes[id] = wireNode{Kind: n.Kind(), DefaultCondition: n.DefaultCondition(), Edges: n.Edges()}
	}
	for id, e := range r.Edges {
		wr.Edges[id] = toWireEdge(e)
	}

	body, err := marshalDeterministic(wr)
	if err != nil {
		return nil, fmt.Errorf("serialize.EncodeRoutine: %w", err)
	}
	sum := sha256.Sum256(body)
	out := make([]byte, 0, len(body)+len(sum))
	out = append(out, body...)
	out = append(out, sum[:]...)
	return out, nil
}

// DecodeRoutine reverses EncodeRoutine, verifying the trailing checksum
// before attempting to unmarshal the body.
func DecodeRoutine(blob []byte) (domain.Routine, error) {
	if len(blob) < sha256.Size {
		return domain.Routine{}, fmt.Errorf("serialize.DecodeRoutine: blob too short to carry a checksum")
	}
	split := len(blob) - sha256.Size
	body, wantSum := blob[:split], blob[split:]
	gotSum := sha256.Sum256(body)
	if !bytes.Equal(gotSum[:], wantSum) {
		return domain.Routine{}, fmt.Errorf("serialize.DecodeRoutine: checksum mismatch (got %s, want %s)",
			hex.EncodeToString(gotSum[:]), hex.EncodeToString(wantSum))
	}

	var wr wireRoutine
	if err := msgpack.Unmarshal(body, &wr); err != nil {
		return domain.Routine{}, fmt.Errorf("serialize.DecodeRoutine: %w", err)
	}

	nodes := make(map[string]domain.Node, len(wr.Nodes))
	for id, n := range wr.Nodes {
		nodes[id] = domain.NewNode(id, n.Kind, n.DefaultCondition, n.Edges)
	}
	edges := make(map[string]domain.Edge, len(wr.Edges))
	for id, e := range wr.Edges {
		edges[id] = fromWireEdge(e)
	}

	return domain.Routine{
		ID: wr.ID, Name: wr.Name, WindowName: wr.WindowName, StartCommand: wr.StartCommand,
		Nodes: nodes, Edges: edges, Frames: wr.Frames, SchedulingGroups: wr.SchedulingGroups,
	}, nil
}
