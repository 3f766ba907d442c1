package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/slatefield/deckgen-api/internal/domain"
)

// defaultRegistryCapacity bounds how many completed runs keep their full
// results in memory for the deck and preview endpoints.
const defaultRegistryCapacity = 256

// runArtifact holds everything a completed run produced: the enriched
// presentation and the aggregated stage result.
type runArtifact struct {
	presentation *domain.Presentation
	result       domain.StageResult
}

// resultRegistry is a bounded in-memory map of run artifacts. Generated
// slide content is never persisted, so this registry is the only place
// full results live after a run completes; the oldest entries are
// evicted first once the capacity is reached.
type resultRegistry struct {
	mu       sync.RWMutex
	capacity int
	order    []uuid.UUID
	items    map[uuid.UUID]runArtifact
}

func newResultRegistry(capacity int) *resultRegistry {
	if capacity <= 0 {
		capacity = defaultRegistryCapacity
	}
	return &resultRegistry{
		capacity: capacity,
		items:    make(map[uuid.UUID]runArtifact),
	}
}

// put stores the artifact for a run, evicting the oldest entry when full.
func (r *resultRegistry) put(id uuid.UUID, artifact runArtifact) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		if len(r.order) >= r.capacity {
			oldest := r.order[0]
			r.order = r.order[1:]
			delete(r.items, oldest)
		}
		r.order = append(r.order, id)
	}
	r.items[id] = artifact
}

// get returns the artifact for a run, if it is still held.
func (r *resultRegistry) get(id uuid.UUID) (runArtifact, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	artifact, ok := r.items[id]
	return artifact, ok
}
