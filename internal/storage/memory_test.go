package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpilot/autocore/internal/domain"
	"github.com/pixelpilot/autocore/internal/storage"
)

func TestMemoryStoreExecutionInfoRoundTrip(t *testing.T) {
	s := storage.NewMemoryStore()
	ctx := context.Background()

	table := map[string]domain.ExecutionInfo{"e1": {Attempts: 2}}
	require.NoError(t, s.SaveExecutionInfo(ctx, "r1", table))

	got, err := s.LoadExecutionInfo(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, table, got)
}

func TestMemoryStoreNextDispatchMissingIsFalse(t *testing.T) {
	s := storage.NewMemoryStore()
	_, ok, err := s.LoadNextDispatch(context.Background(), "r1", "g1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreNextDispatchRoundTrip(t *testing.T) {
	s := storage.NewMemoryStore()
	ctx := context.Background()
	want := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveNextDispatch(ctx, "r1", "g1", want))
	got, ok, err := s.LoadNextDispatch(ctx, "r1", "g1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}
