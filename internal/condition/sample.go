package condition

import (
	"context"
	"fmt"

	"github.com/pixelpilot/autocore/internal/domain"
	"github.com/pixelpilot/autocore/internal/imaging"
)

// FrameLister supplements FrameSource with the ability to enumerate every
// reference frame a routine declares, for sample_condition (SPEC_FULL §C).
type FrameLister interface {
	FrameSource
	FrameIDs() []string
}

// SampleResult is one frame's outcome from SampleAcrossFrames.
type SampleResult struct {
	FrameID string
	Matches []imaging.Match
	Err     error
}

// SampleAcrossFrames runs an image condition against every reference frame
// a routine declares instead of a single named one — the editor's
// sample_condition diagnostic (SPEC_FULL §C.2), letting an author see which
// frames an ImageCondition matches without wiring it to a live edge.
func SampleAcrossFrames(ctx context.Context, src FrameLister, img domain.ImageCondition) ([]SampleResult, error) {
	observed, err := src.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("condition.SampleAcrossFrames: capturing observed frame: %w", err)
	}

	ids := src.FrameIDs()
	results := make([]SampleResult, 0, len(ids))
	for _, id := range ids {
		ref, err := src.ReferenceFrame(id)
		if err != nil {
			results = append(results, SampleResult{FrameID: id, Err: err})
			continue
		}
		results = append(results, SampleResult{FrameID: id, Matches: imaging.Evaluate(ref, observed, img)})
	}
	return results, nil
}
