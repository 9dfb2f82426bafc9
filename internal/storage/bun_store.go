package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/pixelpilot/autocore/internal/domain"
)

// BunStore is the Postgres-backed Store, grounded on the teacher's
// BunStore: a bun.DB over pgdriver, upsert-on-conflict writes wrapped in a
// transaction.
type BunStore struct {
	db *bun.DB
}

// NewBunStore opens a connection pool against dsn. Callers own calling
// InitSchema once before first use.
func NewBunStore(dsn string) *BunStore {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &BunStore{db: bun.NewDB(sqldb, pgdialect.New())}
}

// ExecutionInfoModel is one routine/edge's persisted execution stats.
type ExecutionInfoModel struct {
	bun.BaseModel `bun:"table:execution_info,alias:ei"`

	RoutineID        string    `bun:"routine_id,pk"`
	EdgeID           string    `bun:"edge_id,pk"`
	Attempts         int       `bun:"attempts"`
	Failures         int       `bun:"failures"`
	ConsecutiveFails int       `bun:"consecutive_fails"`
	LastAttempt      time.Time `bun:"last_attempt"`
	NextRetryTime    time.Time `bun:"next_retry_time"`
	LastResult       int       `bun:"last_result"`
	CompletionCount  int       `bun:"completion_count"`
}

// DispatchCursorModel is one routine/scheduling-group's next-due dispatch.
type DispatchCursorModel struct {
	bun.BaseModel `bun:"table:dispatch_cursors,alias:dc"`

	RoutineID string    `bun:"routine_id,pk"`
	GroupID   string    `bun:"group_id,pk"`
	NextTime  time.Time `bun:"next_time"`
}

// InitSchema creates the tables BunStore needs, if they don't already
// exist.
func (s *BunStore) InitSchema(ctx context.Context) error {
	for _, model := range []any{(*ExecutionInfoModel)(nil), (*DispatchCursorModel)(nil)} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: creating table for %T: %w", model, err)
		}
	}
	return nil
}

func (s *BunStore) LoadExecutionInfo(ctx context.Context, routineID string) (map[string]domain.ExecutionInfo, error) {
	var rows []ExecutionInfoModel
	if err := s.db.NewSelect().Model(&rows).Where("routine_id = ?", routineID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("storage: loading execution info for %q: %w", routineID, err)
	}
	out := make(map[string]domain.ExecutionInfo, len(rows))
	for _, r := range rows {
		out[r.EdgeID] = domain.ExecutionInfo{
			Attempts: r.Attempts, Failures: r.Failures, ConsecutiveFails: r.ConsecutiveFails,
			LastAttempt: r.LastAttempt, NextRetryTime: r.NextRetryTime,
			LastResult: domain.ExecResult(r.LastResult), CompletionCount: r.CompletionCount,
		}
	}
	return out, nil
}

func (s *BunStore) SaveExecutionInfo(ctx context.Context, routineID string, table map[string]domain.ExecutionInfo) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for edgeID, info := range table {
			model := &ExecutionInfoModel{
				RoutineID: routineID, EdgeID: edgeID,
				Attempts: info.Attempts, Failures: info.Failures, ConsecutiveFails: info.ConsecutiveFails,
				LastAttempt: info.LastAttempt, NextRetryTime: info.NextRetryTime,
				LastResult: int(info.LastResult), CompletionCount: info.CompletionCount,
			}
			if _, err := tx.NewInsert().Model(model).
				On("CONFLICT (routine_id, edge_id) DO UPDATE").
				Exec(ctx); err != nil {
				return fmt.Errorf("storage: upserting execution info for edge %q: %w", edgeID, err)
			}
		}
		return nil
	})
}

func (s *BunStore) LoadNextDispatch(ctx context.Context, routineID, groupID string) (time.Time, bool, error) {
	var row DispatchCursorModel
	err := s.db.NewSelect().Model(&row).
		Where("routine_id = ? AND group_id = ?", routineID, groupID).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("storage: loading dispatch cursor for %q/%q: %w", routineID, groupID, err)
	}
	return row.NextTime, true, nil
}

func (s *BunStore) SaveNextDispatch(ctx context.Context, routineID, groupID string, next time.Time) error {
	model := &DispatchCursorModel{RoutineID: routineID, GroupID: groupID, NextTime: next}
	_, err := s.db.NewInsert().Model(model).
		On("CONFLICT (routine_id, group_id) DO UPDATE").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storage: upserting dispatch cursor for %q/%q: %w", routineID, groupID, err)
	}
	return nil
}

var _ Store = (*BunStore)(nil)
