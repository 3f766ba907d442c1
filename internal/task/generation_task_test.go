package task

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slatefield/deckgen-api/internal/domain"
)

// mockExecutor implements StageExecutor with a configurable function.
type mockExecutor struct {
	ExecuteRunFn func(ctx context.Context, runID uuid.UUID, p *domain.Presentation) error
	calls        int
}

func (m *mockExecutor) ExecuteRun(
	ctx context.Context,
	runID uuid.UUID,
	p *domain.Presentation,
) error {
	m.calls++
	if m.ExecuteRunFn != nil {
		return m.ExecuteRunFn(ctx, runID, p)
	}
	return nil
}

func testPresentation(t *testing.T) *domain.Presentation {
	t.Helper()

	slides := []*domain.Slide{
		domain.NewSlide(domain.SlideTypeTitle, "hero", "L-1", "opening slide", ""),
		domain.NewSlide(domain.SlideTypeBulletList, "content", "L-4", "three key points", ""),
	}
	p, err := domain.NewPresentation("Quarterly Review", "Acme Corp", slides)
	require.NoError(t, err)
	return p
}

func TestNewGenerationTask_Validation(t *testing.T) {
	t.Parallel()

	executor := &mockExecutor{}
	logger := discardLogger()
	presentation := testPresentation(t)
	runID := uuid.New()

	tests := []struct {
		name    string
		build   func() (*GenerationTask, error)
		wantErr error
	}{
		{
			name: "nil executor",
			build: func() (*GenerationTask, error) {
				return NewGenerationTask(runID, presentation, nil, logger)
			},
			wantErr: ErrNilExecutor,
		},
		{
			name: "nil logger",
			build: func() (*GenerationTask, error) {
				return NewGenerationTask(runID, presentation, executor, nil)
			},
			wantErr: ErrNilLogger,
		},
		{
			name: "empty run ID",
			build: func() (*GenerationTask, error) {
				return NewGenerationTask(uuid.Nil, presentation, executor, logger)
			},
			wantErr: ErrEmptyRunID,
		},
		{
			name: "nil presentation",
			build: func() (*GenerationTask, error) {
				return NewGenerationTask(runID, nil, executor, logger)
			},
			wantErr: ErrNilPresentation,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			task, err := tc.build()
			assert.Nil(t, task)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestGenerationTask_Execute(t *testing.T) {
	t.Parallel()

	presentation := testPresentation(t)
	runID := uuid.New()

	t.Run("delegates to the executor", func(t *testing.T) {
		t.Parallel()

		var gotRunID uuid.UUID
		var gotPresentation *domain.Presentation
		executor := &mockExecutor{
			ExecuteRunFn: func(ctx context.Context, id uuid.UUID, p *domain.Presentation) error {
				gotRunID = id
				gotPresentation = p
				return nil
			},
		}

		task, err := NewGenerationTask(runID, presentation, executor, discardLogger())
		require.NoError(t, err)
		assert.Equal(t, TaskStatusPending, task.Status())

		require.NoError(t, task.Execute(context.Background()))
		assert.Equal(t, TaskStatusCompleted, task.Status())
		assert.Equal(t, runID, gotRunID)
		assert.Same(t, presentation, gotPresentation)
	})

	t.Run("reports executor failure", func(t *testing.T) {
		t.Parallel()

		executor := &mockExecutor{
			ExecuteRunFn: func(ctx context.Context, id uuid.UUID, p *domain.Presentation) error {
				return errors.New("stage blew up")
			},
		}

		task, err := NewGenerationTask(runID, presentation, executor, discardLogger())
		require.NoError(t, err)

		err = task.Execute(context.Background())
		assert.ErrorContains(t, err, "stage blew up")
		assert.Equal(t, TaskStatusFailed, task.Status())
	})

	t.Run("fails fast when context already cancelled", func(t *testing.T) {
		t.Parallel()

		executor := &mockExecutor{}
		task, err := NewGenerationTask(runID, presentation, executor, discardLogger())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err = task.Execute(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, TaskStatusFailed, task.Status())
		assert.Zero(t, executor.calls, "executor should not run for a cancelled task")
	})
}

func TestGenerationTask_Payload(t *testing.T) {
	t.Parallel()

	presentation := testPresentation(t)
	runID := uuid.New()

	task, err := NewGenerationTask(runID, presentation, &mockExecutor{}, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, TaskTypeGenerationRun, task.Type())
	assert.NotEqual(t, uuid.Nil, task.ID())

	var payload generationRunPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, runID, payload.RunID)
	assert.Equal(t, presentation.ID, payload.PresentationID)
	assert.Equal(t, 2, payload.SlideCount)
}
