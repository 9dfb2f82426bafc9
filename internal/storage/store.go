// Package storage persists per-edge execution info and scheduling-group
// dispatch cursors (§4.6, §4.7), grounded on the teacher's storage.BunStore
// (Postgres via uptrace/bun) and storage.MemoryStore pairing (see
// SPEC_FULL.md §B).
package storage

import (
	"context"
	"time"

	"github.com/pixelpilot/autocore/internal/domain"
)

// Store is the persistence boundary the scheduler and runtime checkpoint
// through, so an interrupted process can resume without replaying already
// completed work.
type Store interface {
	LoadExecutionInfo(ctx context.Context, routineID string) (map[string]domain.ExecutionInfo, error)
	SaveExecutionInfo(ctx context.Context, routineID string, table map[string]domain.ExecutionInfo) error

	LoadNextDispatch(ctx context.Context, routineID, groupID string) (time.Time, bool, error)
	SaveNextDispatch(ctx context.Context, routineID, groupID string, next time.Time) error
}
