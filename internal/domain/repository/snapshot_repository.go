package repository

import (
	"context"

	"github.com/carpark-aggregator/internal/domain"
)

// SnapshotRepository хранит единственный актуальный снапшот.
// Latest returns (nil, nil) when nothing has ever been written.
type SnapshotRepository interface {
	Latest(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, snapshot *domain.Snapshot) error
}
