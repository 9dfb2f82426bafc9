package imaging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpilot/autocore/internal/domain"
	"github.com/pixelpilot/autocore/internal/imaging"
)

func solidFrame(w, h int, b, g, r byte) *domain.Bitmap {
	bm := domain.NewBitmap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bm.Set(x, y, b, g, r)
		}
	}
	return bm
}

func TestEvaluateFindsExactMatch(t *testing.T) {
	ref := solidFrame(20, 20, 10, 20, 30)
	for y := 5; y < 10; y++ {
		for x := 5; x < 10; x++ {
			ref.Set(x, y, 200, 150, 100)
		}
	}
	observed := solidFrame(20, 20, 10, 20, 30)
	for y := 8; y < 13; y++ {
		for x := 12; x < 17; x++ {
			observed.Set(x, y, 200, 150, 100)
		}
	}

	cond := domain.ImageCondition{
		Regions:    []domain.Rect{{X: 5, Y: 5, W: 5, H: 5}},
		Method:     domain.MethodCCORRNormed,
		Threshold:  0.95,
		MatchLimit: 1,
	}
	matches := imaging.Evaluate(ref, observed, cond)
	require.Len(t, matches, 1)
	assert.Equal(t, 12, matches[0].X)
	assert.Equal(t, 8, matches[0].Y)
}

func TestEvaluateRejectsBelowThreshold(t *testing.T) {
	ref := solidFrame(10, 10, 0, 0, 0)
	for y := 2; y < 6; y++ {
		for x := 2; x < 6; x++ {
			ref.Set(x, y, 255, 255, 255)
		}
	}
	observed := solidFrame(10, 10, 128, 128, 128)

	cond := domain.ImageCondition{
		Regions:   []domain.Rect{{X: 2, Y: 2, W: 4, H: 4}},
		Method:    domain.MethodCCOEFFNormed,
		Threshold: 0.9,
	}
	assert.False(t, imaging.Passes(ref, observed, cond))
}

func TestSuppressCollapsesOverlappingDiagonalCluster(t *testing.T) {
	candidates := []imaging.Match{
		{X: 0, Y: 0, Score: 0.99},
		{X: 1, Y: 1, Score: 0.97},
		{X: 40, Y: 40, Score: 0.98},
		{X: 41, Y: 39, Score: 0.96},
	}
	kept := imaging.Suppress(candidates, 8, 8, 4, 0, domain.MethodCCORRNormed)
	require.Len(t, kept, 2)
	assert.Equal(t, 0, kept[0].X)
	assert.Equal(t, 40, kept[1].X)
}

func TestSuppressRespectsMatchLimit(t *testing.T) {
	candidates := []imaging.Match{
		{X: 0, Y: 0, Score: 0.99},
		{X: 100, Y: 100, Score: 0.98},
		{X: 200, Y: 200, Score: 0.97},
	}
	kept := imaging.Suppress(candidates, 4, 4, 1, 2, domain.MethodCCORRNormed)
	assert.Len(t, kept, 2)
}
