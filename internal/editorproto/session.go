package editorproto

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pixelpilot/autocore/internal/condition"
	"github.com/pixelpilot/autocore/internal/domain"
	"github.com/pixelpilot/autocore/internal/graph"
	"github.com/pixelpilot/autocore/internal/runtime"
)

// RuntimeFactory builds a fresh runtime.Runtime for a just-loaded
// routine. The session package leaves controller/frame wiring to the
// caller since those depend on the host's screen-capture backend.
type RuntimeFactory func(r domain.Routine, observers *runtime.ObserverManager) (*runtime.Runtime, error)

// FrameListerFactory resolves the condition.FrameLister backing
// sample_condition requests for a given routine id.
type FrameListerFactory func(routineID string) (condition.FrameLister, bool)

// Session is the RequestHandler backing one editor server: it loads
// routines on demand, keeps one live runtime.Runtime per routine id, and
// dispatches each Request action to the corresponding runtime/condition
// operation. Grounded on the teacher's Handler/observer wiring, adapted
// from HTTP-upgrade-only concerns to full request dispatch since the
// editor protocol is a request/response RPC layer, not just a push feed.
type Session struct {
	mu           sync.Mutex
	runtimes     map[string]*runtime.Runtime
	frameListers FrameListerFactory
	factory      RuntimeFactory
	hub          Broadcaster
	logger       *slog.Logger
}

func NewSession(frameListers FrameListerFactory, factory RuntimeFactory, hub Broadcaster, logger *slog.Logger) *Session {
	return &Session{
		runtimes:     make(map[string]*runtime.Runtime),
		frameListers: frameListers,
		factory:      factory,
		hub:          hub,
		logger:       logger,
	}
}

var _ RequestHandler = (*Session)(nil)

func (s *Session) Handle(c *Client, req *Request) *Response {
	switch req.Action {
	case ActionCreateRoutine, ActionLoadRoutine:
		return s.handleLoad(c, req)
	case ActionGetRoutine:
		return s.handleGetRoutine(req)
	case ActionSetCurr:
		return s.handleSetCurr(req)
	case ActionGetCurr:
		return s.handleGetCurr(req)
	case ActionGoto:
		return s.handleGoto(req)
	case ActionQueueEdge:
		return s.handleQueueEdge(req)
	case ActionSampleCondition:
		return s.handleSampleCondition(req)
	default:
		return NewErrorResponse(req.RequestID, req.Action, "unknown action: "+req.Action)
	}
}

func (s *Session) handleLoad(c *Client, req *Request) *Response {
	raw, err := json.Marshal(req.Definition)
	if err != nil {
		return NewErrorResponse(req.RequestID, req.Action, "invalid definition: "+err.Error())
	}
	var in graph.Input
	if err := json.Unmarshal(raw, &in); err != nil {
		return NewErrorResponse(req.RequestID, req.Action, "invalid definition: "+err.Error())
	}

	r, err := graph.Load(in)
	if err != nil {
		return NewErrorResponse(req.RequestID, req.Action, err.Error())
	}

	observers := runtime.NewObserverManager()
	observers.Register(NewSocketObserver(r.ID, s.hub))

	rt, err := s.factory(r, observers)
	if err != nil {
		return NewErrorResponse(req.RequestID, req.Action, "starting runtime: "+err.Error())
	}

	s.mu.Lock()
	s.runtimes[r.ID] = rt
	s.mu.Unlock()

	s.hub.Broadcast(r.ID, NewEvent(EventCurrChanged, r.ID))
	if c != nil {
		s.logger.Info("routine loaded", "routine_id", r.ID, "client_id", c.id)
	}
	return NewSuccessResponse(req.RequestID, req.Action, map[string]string{"routine_id": r.ID})
}

func (s *Session) runtimeFor(routineID string) (*runtime.Runtime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.runtimes[routineID]
	if !ok {
		return nil, fmt.Errorf("editorproto: no loaded routine %q", routineID)
	}
	return rt, nil
}

func (s *Session) handleGetRoutine(req *Request) *Response {
	rt, err := s.runtimeFor(req.RoutineID)
	if err != nil {
		return NewErrorResponse(req.RequestID, req.Action, err.Error())
	}
	return NewSuccessResponse(req.RequestID, req.Action, rt.GetContext())
}

func (s *Session) handleSetCurr(req *Request) *Response {
	rt, err := s.runtimeFor(req.RoutineID)
	if err != nil {
		return NewErrorResponse(req.RequestID, req.Action, err.Error())
	}
	if err := rt.SetCurr(req.NodeID); err != nil {
		return NewErrorResponse(req.RequestID, req.Action, err.Error())
	}
	return NewSuccessResponse(req.RequestID, req.Action, nil)
}

func (s *Session) handleGetCurr(req *Request) *Response {
	rt, err := s.runtimeFor(req.RoutineID)
	if err != nil {
		return NewErrorResponse(req.RequestID, req.Action, err.Error())
	}
	return NewSuccessResponse(req.RequestID, req.Action, map[string]string{"curr": rt.GetContext().Curr})
}

func (s *Session) handleGoto(req *Request) *Response {
	rt, err := s.runtimeFor(req.RoutineID)
	if err != nil {
		return NewErrorResponse(req.RequestID, req.Action, err.Error())
	}
	if err := rt.Goto(context.Background(), req.NodeID); err != nil {
		return NewErrorResponse(req.RequestID, req.Action, err.Error())
	}
	return NewSuccessResponse(req.RequestID, req.Action, nil)
}

func (s *Session) handleQueueEdge(req *Request) *Response {
	rt, err := s.runtimeFor(req.RoutineID)
	if err != nil {
		return NewErrorResponse(req.RequestID, req.Action, err.Error())
	}
	rt.QueueEdge(req.EdgeID)
	return NewSuccessResponse(req.RequestID, req.Action, nil)
}

func (s *Session) handleSampleCondition(req *Request) *Response {
	raw, err := json.Marshal(req.Condition)
	if err != nil {
		return NewErrorResponse(req.RequestID, req.Action, "invalid condition: "+err.Error())
	}
	var img domain.ImageCondition
	if err := json.Unmarshal(raw, &img); err != nil {
		return NewErrorResponse(req.RequestID, req.Action, "invalid condition: "+err.Error())
	}

	lister, ok := s.frameListers(req.RoutineID)
	if !ok {
		return NewErrorResponse(req.RequestID, req.Action, fmt.Sprintf("editorproto: no frame source for routine %q", req.RoutineID))
	}

	results, err := condition.SampleAcrossFrames(context.Background(), lister, img)
	if err != nil {
		return NewErrorResponse(req.RequestID, req.Action, err.Error())
	}
	return NewSuccessResponse(req.RequestID, req.Action, results)
}
