package editorproto

import (
	"github.com/pixelpilot/autocore/internal/domain"
	"github.com/pixelpilot/autocore/internal/runtime"
)

var _ runtime.Observer = (*SocketObserver)(nil)

// SocketObserver implements runtime.Observer and broadcasts navigation
// transitions to subscribed editor clients, grounded on the teacher's
// SocketObserver (same Broadcaster-wrapping shape, collapsed from nine
// execution-lifecycle callbacks to the runtime's three navigation
// callbacks plus OnFrame and OnInputReplayed).
type SocketObserver struct {
	routineID string
	hub       Broadcaster
}

func NewSocketObserver(routineID string, hub Broadcaster) *SocketObserver {
	return &SocketObserver{routineID: routineID, hub: hub}
}

func (so *SocketObserver) OnChangeCurr(node string) {
	event := NewEvent(EventCurrChanged, so.routineID)
	event.NodeID = node
	so.hub.Broadcast(so.routineID, event)
}

func (so *SocketObserver) OnChangeEdge(edge string) {
	event := NewEvent(EventEdgeQueued, so.routineID)
	event.EdgeID = edge
	so.hub.Broadcast(so.routineID, event)
}

func (so *SocketObserver) OnChangeReturn(call domain.Call) {
	event := NewEvent(EventCurrChanged, so.routineID)
	event.EdgeID = call.Edge
	event.NodeID = call.ReturnTo
	so.hub.Broadcast(so.routineID, event)
}

// OnFrame pushes a just-captured live frame to editor clients. The frame
// bitmap itself travels out-of-band (§6); the push only carries the
// routine id so a subscribed client knows to re-fetch it.
func (so *SocketObserver) OnFrame(_ *domain.Bitmap) {
	so.hub.Broadcast(so.routineID, NewEvent(EventFramePushed, so.routineID))
}

func (so *SocketObserver) OnInputReplayed(edgeID string) {
	event := NewEvent(EventInputReplayed, so.routineID)
	event.EdgeID = edgeID
	so.hub.Broadcast(so.routineID, event)
}
