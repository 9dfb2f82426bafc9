package editorproto_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpilot/autocore/internal/condition"
	"github.com/pixelpilot/autocore/internal/domain"
	"github.com/pixelpilot/autocore/internal/editorproto"
	"github.com/pixelpilot/autocore/internal/runtime"
)

type fakeController struct{}

func (fakeController) Capture(context.Context) (*domain.Bitmap, error) { return domain.NewBitmap(1, 1), nil }
func (fakeController) MouseMove(context.Context, int, int) error      { return nil }
func (fakeController) MouseDown(context.Context) error                { return nil }
func (fakeController) MouseUp(context.Context) error                  { return nil }
func (fakeController) CursorPosition(context.Context) (int, int, error) {
	return 0, 0, nil
}

type noFrames struct{}

func (noFrames) ReferenceFrame(string) (*domain.Bitmap, error) { return domain.NewBitmap(1, 1), nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func linearDefinition(routineID string) map[string]any {
	return map[string]any{
		"ID":           routineID,
		"StartCommand": "x",
		"Nodes": []map[string]any{
			{"ID": "start", "Kind": domain.NodeStandard, "Edges": []string{"e1"}},
			{"ID": "end", "Kind": domain.NodeStandard},
		},
		"Edges": []map[string]any{
			{
				"ID": "e1", "To": "end", "Trigger": domain.TriggerStandard,
				"Precondition": domain.NoneCondition(), "Postcondition": domain.NoneCondition(),
			},
		},
	}
}

func newTestSession() *editorproto.Session {
	factory := func(r domain.Routine, observers *runtime.ObserverManager) (*runtime.Runtime, error) {
		return runtime.New(r, fakeController{}, noFrames{}, condition.NewEvaluator(true), runtime.WithObservers(observers)), nil
	}
	noFrameListers := func(string) (condition.FrameLister, bool) { return nil, false }
	hub := editorproto.NewHub(discardLogger())
	return editorproto.NewSession(noFrameListers, factory, hub, discardLogger())
}

func TestSessionLoadThenGoto(t *testing.T) {
	s := newTestSession()

	loadResp := s.Handle(nil, &editorproto.Request{
		Action:     editorproto.ActionLoadRoutine,
		RequestID:  "req-1",
		Definition: linearDefinition("r1"),
	})
	require.True(t, loadResp.Success, loadResp.Error)

	gotoResp := s.Handle(nil, &editorproto.Request{
		Action:    editorproto.ActionGoto,
		RequestID: "req-2",
		RoutineID: "r1",
		NodeID:    "end",
	})
	require.True(t, gotoResp.Success, gotoResp.Error)

	currResp := s.Handle(nil, &editorproto.Request{
		Action:    editorproto.ActionGetCurr,
		RequestID: "req-3",
		RoutineID: "r1",
	})
	require.True(t, currResp.Success)
	assert.Equal(t, map[string]string{"curr": "end"}, currResp.Result)
}

func TestSessionUnknownRoutineErrors(t *testing.T) {
	s := newTestSession()

	resp := s.Handle(nil, &editorproto.Request{
		Action:    editorproto.ActionGoto,
		RoutineID: "missing",
		NodeID:    "end",
	})
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestSessionUnknownActionErrors(t *testing.T) {
	s := newTestSession()

	resp := s.Handle(nil, &editorproto.Request{Action: "not_a_real_action"})
	assert.False(t, resp.Success)
}
