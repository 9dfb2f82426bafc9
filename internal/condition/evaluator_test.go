package condition_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpilot/autocore/internal/condition"
	"github.com/pixelpilot/autocore/internal/domain"
)

type fakeSource struct {
	frames   map[string]*domain.Bitmap
	observed *domain.Bitmap
}

func (f *fakeSource) ReferenceFrame(id string) (*domain.Bitmap, error) {
	bm, ok := f.frames[id]
	if !ok {
		return nil, fmt.Errorf("no such frame %q", id)
	}
	return bm, nil
}

func (f *fakeSource) Capture(context.Context) (*domain.Bitmap, error) { return f.observed, nil }

func (f *fakeSource) FrameIDs() []string {
	ids := make([]string, 0, len(f.frames))
	for id := range f.frames {
		ids = append(ids, id)
	}
	return ids
}

func TestCheckOnceNoneAlwaysPasses(t *testing.T) {
	e := condition.NewEvaluator(true)
	ok, err := e.CheckOnce(context.Background(), &fakeSource{}, domain.NoneCondition(), nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckOnceTextExpression(t *testing.T) {
	e := condition.NewEvaluator(true)
	cond := domain.Condition{Kind: domain.ConditionText, Text: &domain.TextCondition{Expression: "score >= 10"}}

	ok, err := e.CheckOnce(context.Background(), &fakeSource{}, cond, map[string]any{"score": 12})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.CheckOnce(context.Background(), &fakeSource{}, cond, map[string]any{"score": 3})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckOnceTextNonBooleanErrors(t *testing.T) {
	e := condition.NewEvaluator(true)
	cond := domain.Condition{Kind: domain.ConditionText, Text: &domain.TextCondition{Expression: "score"}}
	_, err := e.CheckOnce(context.Background(), &fakeSource{}, cond, map[string]any{"score": 3})
	require.Error(t, err)
}

func TestResolveAutoUsesSourceForPrecondition(t *testing.T) {
	src := domain.NoneCondition()
	dst := domain.AutoCondition() // sentinel distinguishable value
	got := condition.Resolve(domain.AutoCondition(), src, dst, true)
	assert.Equal(t, domain.ConditionNone, got.Kind)
}

func TestResolveTargetAlwaysUsesDestination(t *testing.T) {
	src := domain.AutoCondition()
	dst := domain.NoneCondition()
	got := condition.Resolve(domain.TargetCondition(), src, dst, false)
	assert.Equal(t, domain.ConditionNone, got.Kind)
}
