package storage

import (
	"context"
	"sync"
	"time"

	"github.com/pixelpilot/autocore/internal/domain"
)

// MemoryStore is the default, dependency-free Store — suitable for tests
// and for single-process deployments that accept losing dispatch cursors
// across a restart, mirroring the teacher's in-memory storage fallback.
type MemoryStore struct {
	mu       sync.RWMutex
	execInfo map[string]map[string]domain.ExecutionInfo
	next     map[string]map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		execInfo: make(map[string]map[string]domain.ExecutionInfo),
		next:     make(map[string]map[string]time.Time),
	}
}

func (m *MemoryStore) LoadExecutionInfo(_ context.Context, routineID string) (map[string]domain.ExecutionInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]domain.ExecutionInfo, len(m.execInfo[routineID]))
	for k, v := range m.execInfo[routineID] {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) SaveExecutionInfo(_ context.Context, routineID string, table map[string]domain.ExecutionInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]domain.ExecutionInfo, len(table))
	for k, v := range table {
		cp[k] = v
	}
	m.execInfo[routineID] = cp
	return nil
}

func (m *MemoryStore) LoadNextDispatch(_ context.Context, routineID, groupID string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.next[routineID][groupID]
	return t, ok, nil
}

func (m *MemoryStore) SaveNextDispatch(_ context.Context, routineID, groupID string, next time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.next[routineID] == nil {
		m.next[routineID] = make(map[string]time.Time)
	}
	m.next[routineID][groupID] = next
	return nil
}

var _ Store = (*MemoryStore)(nil)
