package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/carpark-aggregator/internal/domain"
	"github.com/carpark-aggregator/internal/domain/repository"
)

// snapshotRepository архивирует снапшоты в carpark_snapshots;
// читается всегда последняя по captured_at строка.
// Schema: migrations/0001_carpark_snapshots.sql
type snapshotRepository struct {
	db     *DB
	logger *zap.Logger
}

func NewSnapshotRepository(db *DB) repository.SnapshotRepository {
	return &snapshotRepository{
		db:     db,
		logger: db.logger,
	}
}

type snapshotRow struct {
	ID          string    `db:"id"`
	Version     int       `db:"version"`
	CapturedAt  time.Time `db:"captured_at"`
	RecordCount int       `db:"record_count"`
	Records     []byte    `db:"records"`
}

func (r *snapshotRepository) Latest(ctx context.Context) (*domain.Snapshot, error) {
	var row snapshotRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, version, captured_at, record_count, records
		FROM carpark_snapshots
		ORDER BY captured_at DESC
		LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to load latest snapshot", zap.Error(err))
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	}

	snapshot := domain.Snapshot{
		ID:         row.ID,
		Version:    row.Version,
		CapturedAt: row.CapturedAt,
		Count:      row.RecordCount,
	}
	if err := json.Unmarshal(row.Records, &snapshot.Records); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot records: %w", err)
	}

	return &snapshot, nil
}

func (r *snapshotRepository) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	records, err := json.Marshal(snapshot.Records)
	if err != nil {
		return fmt.Errorf("marshal snapshot records: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO carpark_snapshots (id, version, captured_at, record_count, records)
		VALUES ($1, $2, $3, $4, $5)`,
		snapshot.ID, snapshot.Version, snapshot.CapturedAt, snapshot.Count, records)
	if err != nil {
		r.logger.Error("Failed to insert snapshot", zap.Error(err))
		return fmt.Errorf("insert snapshot: %w", err)
	}

	// Предыдущие снапшоты вытеснены; держим короткий хвост для разбора
	// инцидентов.
	_, err = r.db.ExecContext(ctx, `
		DELETE FROM carpark_snapshots
		WHERE id NOT IN (
			SELECT id FROM carpark_snapshots
			ORDER BY captured_at DESC
			LIMIT 5
		)`)
	if err != nil {
		r.logger.Warn("Failed to prune old snapshots", zap.Error(err))
	}

	return nil
}
