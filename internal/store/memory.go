package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/slatefield/deckgen-api/internal/domain"
)

// interruptedMessage is stored on runs that were pending or running when
// the process restarted.
const interruptedMessage = "run interrupted by service restart"

// MemoryRunStore is an in-memory RunStore backed by a map. It is the
// default store when no database is configured; records do not survive
// a restart. Safe for concurrent use.
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*RunRecord
}

// NewMemoryRunStore creates an empty in-memory run store.
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{
		runs: make(map[uuid.UUID]*RunRecord),
	}
}

// Ensure MemoryRunStore implements the RunStore interface.
var _ RunStore = (*MemoryRunStore)(nil)

// Create implements RunStore.Create.
func (s *MemoryRunStore) Create(ctx context.Context, run *RunRecord) error {
	if err := run.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("%w: run %s", ErrDuplicate, run.ID)
	}
	s.runs[run.ID] = cloneRun(run)
	return nil
}

// GetByID implements RunStore.GetByID.
func (s *MemoryRunStore) GetByID(ctx context.Context, id uuid.UUID) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return cloneRun(run), nil
}

// UpdateStatus implements RunStore.UpdateStatus.
func (s *MemoryRunStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status RunStatus,
	errorMessage string,
) error {
	if !IsValidRunStatus(status) {
		return fmt.Errorf("%w: %s", ErrInvalidRunStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return ErrRunNotFound
	}
	run.Status = status
	if status == RunStatusFailed {
		run.ErrorMessage = errorMessage
	}
	run.UpdatedAt = time.Now().UTC()
	return nil
}

// RecordResult implements RunStore.RecordResult.
func (s *MemoryRunStore) RecordResult(
	ctx context.Context,
	id uuid.UUID,
	result *domain.StageResult,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return ErrRunNotFound
	}
	run.ApplyResult(result)
	return nil
}

// MarkInterruptedRuns implements RunStore.MarkInterruptedRuns.
func (s *MemoryRunStore) MarkInterruptedRuns(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	now := time.Now().UTC()
	for _, run := range s.runs {
		if run.Status == RunStatusPending || run.Status == RunStatusRunning {
			run.Status = RunStatusFailed
			run.ErrorMessage = interruptedMessage
			run.UpdatedAt = now
			count++
		}
	}
	return count, nil
}

// WithTx implements RunStore.WithTx. The in-memory store has no
// transactional isolation, so the same store is returned.
func (s *MemoryRunStore) WithTx(tx *sql.Tx) RunStore {
	return s
}

// cloneRun copies a record so callers never share memory with the store.
func cloneRun(run *RunRecord) *RunRecord {
	clone := *run
	return &clone
}
