package runtime

import "github.com/pixelpilot/autocore/internal/domain"

// Observer is notified of navigation state transitions, mirroring the
// editor's live-view needs (SPEC_FULL §C.1) without coupling the runtime
// to any particular transport.
type Observer interface {
	OnChangeCurr(node string)
	OnChangeEdge(edge string)
	OnChangeReturn(call domain.Call)
	// OnFrame fires whenever the runtime captures a live frame off the
	// controller, so an editor session can mirror the view (§6 "push frame
	// updates").
	OnFrame(frame *domain.Bitmap)
	// OnInputReplayed fires once a replay action finishes playing its
	// events, so an editor session can mirror the input (§6 "push input
	// updates").
	OnInputReplayed(edgeID string)
}

// ObserverManager fans a navigation event out to every registered
// Observer. A nil ObserverManager is valid and simply drops events.
type ObserverManager struct {
	observers []Observer
}

func NewObserverManager() *ObserverManager { return &ObserverManager{} }

func (m *ObserverManager) Register(o Observer) {
	if m == nil || o == nil {
		return
	}
	m.observers = append(m.observers, o)
}

func (m *ObserverManager) notifyCurr(node string) {
	if m == nil {
		return
	}
	for _, o := range m.observers {
		o.OnChangeCurr(node)
	}
}

func (m *ObserverManager) notifyEdge(edge string) {
	if m == nil {
		return
	}
	for _, o := range m.observers {
		o.OnChangeEdge(edge)
	}
}

func (m *ObserverManager) notifyReturn(call domain.Call) {
	if m == nil {
		return
	}
	for _, o := range m.observers {
		o.OnChangeReturn(call)
	}
}

func (m *ObserverManager) notifyFrame(frame *domain.Bitmap) {
	if m == nil {
		return
	}
	for _, o := range m.observers {
		o.OnFrame(frame)
	}
}

func (m *ObserverManager) notifyInputReplayed(edgeID string) {
	if m == nil {
		return
	}
	for _, o := range m.observers {
		o.OnInputReplayed(edgeID)
	}
}
