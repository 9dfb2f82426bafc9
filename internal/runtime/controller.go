// Package runtime implements the single-threaded cooperative navigation
// stack machine of §4.5: goto/queue_edge, the augmented graph H, edge
// ranking, action sequences, and backoff-gated retries. It is grounded on
// the teacher's engine.Executor (frame capture, node execution, wrapped
// retry/backoff), re-targeted to the navigation domain instead of workflow
// node execution (see SPEC_FULL.md).
package runtime

import (
	"context"

	"github.com/pixelpilot/autocore/internal/domain"
)

// Controller is the narrow external input/capture collaborator (§6) — the
// only seam between the runtime and the OS-level screen/input layer.
type Controller interface {
	// Capture returns the current observed frame.
	Capture(ctx context.Context) (*domain.Bitmap, error)
	MouseMove(ctx context.Context, x, y int) error
	MouseDown(ctx context.Context) error
	MouseUp(ctx context.Context) error
	// CursorPosition reports the last known cursor location, used to
	// resolve relative input replays (§3).
	CursorPosition(ctx context.Context) (x, y int, err error)
}

// ReferenceFrames supplies reference-frame pixels by id, backing a
// routine's Frames map (internal/cache is the production implementation).
type ReferenceFrames interface {
	ReferenceFrame(frameID string) (*domain.Bitmap, error)
}
