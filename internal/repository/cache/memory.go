package cache

import (
	"context"
	"sync"

	"github.com/carpark-aggregator/internal/domain"
	"github.com/carpark-aggregator/internal/domain/repository"
)

// memorySnapshotRepository - единственный слот с последним снапшотом.
// Снапшот после создания неизменяем, поэтому отдается по указателю.
type memorySnapshotRepository struct {
	mu      sync.RWMutex
	current *domain.Snapshot
}

func NewMemorySnapshotRepository() repository.SnapshotRepository {
	return &memorySnapshotRepository{}
}

func (r *memorySnapshotRepository) Latest(_ context.Context) (*domain.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, nil
}

func (r *memorySnapshotRepository) Save(_ context.Context, snapshot *domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Держим только самый свежий по времени захвата.
	if r.current != nil && snapshot.CapturedAt.Before(r.current.CapturedAt) {
		return nil
	}
	r.current = snapshot
	return nil
}
