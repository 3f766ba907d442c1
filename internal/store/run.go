package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/slatefield/deckgen-api/internal/domain"
)

// RunStatus represents the lifecycle state of a generation run.
type RunStatus string

// Run lifecycle states.
const (
	// RunStatusPending indicates the run has been accepted but not started.
	RunStatusPending RunStatus = "pending"

	// RunStatusRunning indicates the stage is currently executing.
	RunStatusRunning RunStatus = "running"

	// RunStatusCompleted indicates the stage finished and produced a result.
	// Individual slides may still have failed; the counters say how many.
	RunStatusCompleted RunStatus = "completed"

	// RunStatusFailed indicates the run could not produce a result at all,
	// for example when the strawman was malformed or the process was
	// interrupted mid-run.
	RunStatusFailed RunStatus = "failed"
)

// Run record errors.
var (
	// ErrEmptyRunID indicates a run record with a nil ID.
	ErrEmptyRunID = errors.New("run ID cannot be empty")

	// ErrInvalidRunStatus indicates a status outside the known lifecycle.
	ErrInvalidRunStatus = errors.New("invalid run status")
)

// IsValidRunStatus checks if the given status is one of the valid
// run lifecycle states.
func IsValidRunStatus(status RunStatus) bool {
	switch status {
	case RunStatusPending, RunStatusRunning, RunStatusCompleted, RunStatusFailed:
		return true
	default:
		return false
	}
}

// RunRecord tracks the state of one asynchronous generation run. It holds
// lifecycle status and outcome counters only; the generated slide content
// itself is never persisted.
type RunRecord struct {
	// ID uniquely identifies the run.
	ID uuid.UUID

	// Status is the current lifecycle state.
	Status RunStatus

	// TotalSlides is the number of slides in the submitted presentation.
	// Zero until the stage has parsed the strawman.
	TotalSlides int

	// SuccessfulSlides counts slides that received generated content.
	SuccessfulSlides int

	// FailedSlides counts slides that were marked failed.
	FailedSlides int

	// ContentGenerated records whether the stage produced content under
	// its success policy.
	ContentGenerated bool

	// ErrorMessage describes why the run failed, empty otherwise.
	ErrorMessage string

	// CreatedAt is when the run was accepted.
	CreatedAt time.Time

	// UpdatedAt is when the record last changed.
	UpdatedAt time.Time
}

// NewRunRecord creates a pending run record with a fresh ID.
func NewRunRecord() *RunRecord {
	now := time.Now().UTC()
	return &RunRecord{
		ID:        uuid.New(),
		Status:    RunStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks that the run record is structurally sound.
func (r *RunRecord) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRunID
	}
	if !IsValidRunStatus(r.Status) {
		return ErrInvalidRunStatus
	}
	return nil
}

// ApplyResult folds a stage result into the record and marks it completed.
func (r *RunRecord) ApplyResult(result *domain.StageResult) {
	r.Status = RunStatusCompleted
	r.TotalSlides = result.TotalSlides
	r.SuccessfulSlides = result.SuccessfulSlides
	r.FailedSlides = result.FailedSlides
	r.ContentGenerated = result.ContentGenerated
	r.UpdatedAt = time.Now().UTC()
}

// RunStore defines the interface for run record persistence.
type RunStore interface {
	// Create saves a new run record.
	// Returns validation errors from RunRecord.Validate, or ErrDuplicate
	// if a run with the same ID already exists.
	Create(ctx context.Context, run *RunRecord) error

	// GetByID retrieves a run record by its unique ID.
	// Returns ErrRunNotFound if the run does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*RunRecord, error)

	// UpdateStatus transitions a run to the given status. The error
	// message is stored alongside failed transitions and ignored for
	// the others. Returns ErrRunNotFound if the run does not exist,
	// or ErrInvalidRunStatus for a status outside the lifecycle.
	UpdateStatus(ctx context.Context, id uuid.UUID, status RunStatus, errorMessage string) error

	// RecordResult folds the stage result counters into the run and
	// marks it completed. Returns ErrRunNotFound if the run does not
	// exist.
	RecordResult(ctx context.Context, id uuid.UUID, result *domain.StageResult) error

	// MarkInterruptedRuns transitions every pending or running run to
	// failed. Called once at startup so runs orphaned by an unclean
	// shutdown do not appear in-flight forever. Returns the number of
	// runs transitioned.
	MarkInterruptedRuns(ctx context.Context) (int64, error)

	// WithTx returns a store whose operations run within the given
	// transaction, so run updates can commit atomically with other work.
	WithTx(tx *sql.Tx) RunStore
}
