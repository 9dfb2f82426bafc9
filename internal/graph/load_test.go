package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpilot/autocore/internal/domain"
	"github.com/pixelpilot/autocore/internal/graph"
)

func linearRoutine() graph.Input {
	return graph.Input{
		ID:           "r1",
		StartCommand: "launcher.exe",
		Nodes: []graph.NodeSpec{
			{ID: "start", Kind: domain.NodeStandard, Edges: []string{"e1"}},
			{ID: "mid", Kind: domain.NodeStandard, Edges: []string{"e2"}},
			{ID: "end", Kind: domain.NodeStandard},
		},
		Edges: []domain.EdgeSpec{
			{ID: "e1", To: "mid", Trigger: domain.TriggerStandard},
			{ID: "e2", To: "end", Trigger: domain.TriggerStandard},
		},
	}
}

func TestLoadAcceptsLinearRoutine(t *testing.T) {
	r, err := graph.Load(linearRoutine())
	require.NoError(t, err)
	assert.True(t, r.HasStart())
	e1, ok := r.Edge("e1")
	require.True(t, ok)
	assert.Equal(t, "start", e1.From())
}

func TestLoadRejectsUnknownEdgeTarget(t *testing.T) {
	in := linearRoutine()
	in.Edges[1].To = "nowhere"
	_, err := graph.Load(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node")
}

func TestLoadRejectsReturnNodeWithEdges(t *testing.T) {
	in := linearRoutine()
	in.Nodes[2].Kind = domain.NodeReturn
	in.Nodes[2].Edges = []string{"e1"}
	_, err := graph.Load(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not declare outgoing edges")
}

func TestLoadRequiresStartNodeWhenRunnable(t *testing.T) {
	in := linearRoutine()
	in.Nodes[0].ID = "begin"
	in.Edges[0].To = in.Nodes[0].ID // keep edges resolvable is irrelevant here
	_, err := graph.Load(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no "start" node`)
}

func TestLoadRejectsSchedulingGroupWithBothPeriodKinds(t *testing.T) {
	in := linearRoutine()
	in.SchedulingGroups = []domain.SchedulingGroup{
		{ID: "g1", Period: 1000, PeriodPreset: domain.PeriodDaily},
	}
	in.Edges[0].Schedules = []string{"g1"}
	_, err := graph.Load(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sets both period and period_preset")
}

func TestLoadRejectsSubroutineActionNotTargetingInit(t *testing.T) {
	in := linearRoutine()
	in.Edges[0].Action = domain.Action{Kind: domain.ActionSubroutine, SubroutineEntry: "mid"}
	_, err := graph.Load(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not target an INIT node")
}
