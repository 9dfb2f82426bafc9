package serialize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpilot/autocore/internal/domain"
	"github.com/pixelpilot/autocore/internal/graph"
	"github.com/pixelpilot/autocore/internal/serialize"
)

func TestRoutineRoundTrip(t *testing.T) {
	r, err := graph.Load(graph.Input{
		ID:           "r1",
		Name:         "demo",
		StartCommand: "x.exe",
		Nodes: []graph.NodeSpec{
			{ID: "start", Kind: domain.NodeStandard, Edges: []string{"e1"}},
			{ID: "end", Kind: domain.NodeStandard},
		},
		Edges: []domain.EdgeSpec{
			{
				ID: "e1", To: "end", Trigger: domain.TriggerStandard,
				Precondition: domain.Condition{
					Kind:  domain.ConditionImage,
					Image: &domain.ImageCondition{FrameID: "f1", Regions: []domain.Rect{{X: 1, Y: 2, W: 3, H: 4}}, Method: domain.MethodCCORRNormed, Threshold: 0.9},
				},
				Postcondition: domain.NoneCondition(),
				RepeatLower:   1, RepeatUpper: 3,
			},
		},
		Frames: map[string]string{"f1": "/frames/f1.png"},
	})
	require.NoError(t, err)

	blob, err := serialize.EncodeRoutine(r)
	require.NoError(t, err)

	blob2, err := serialize.EncodeRoutine(r)
	require.NoError(t, err)
	assert.Equal(t, blob, blob2, "encoding the same routine twice must be byte-identical")

	decoded, err := serialize.DecodeRoutine(blob)
	require.NoError(t, err)
	assert.Equal(t, r.ID, decoded.ID)
	e, ok := decoded.Edge("e1")
	require.True(t, ok)
	assert.Equal(t, "start", e.From())
	assert.Equal(t, "end", e.To())
	assert.Equal(t, domain.MethodCCORRNormed, e.Precondition().Image.Method)
}

func TestDecodeRoutineRejectsCorruption(t *testing.T) {
	r, err := graph.Load(graph.Input{
		ID: "r1",
		Nodes: []graph.NodeSpec{
			{ID: "start", Kind: domain.NodeStandard},
		},
	})
	require.NoError(t, err)
	blob, err := serialize.EncodeRoutine(r)
	require.NoError(t, err)
	blob[0] ^= 0xFF

	_, err = serialize.DecodeRoutine(blob)
	require.Error(t, err)
}

func TestExecutionInfoTableRoundTrip(t *testing.T) {
	table := map[string]domain.ExecutionInfo{
		"e1": {Attempts: 3, Failures: 1, ConsecutiveFails: 1, NextRetryTime: time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)},
	}
	blob, err := serialize.EncodeExecutionInfoTable(table)
	require.NoError(t, err)
	decoded, err := serialize.DecodeExecutionInfoTable(blob)
	require.NoError(t, err)
	assert.Equal(t, table, decoded)
}
