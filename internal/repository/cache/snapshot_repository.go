package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/carpark-aggregator/internal/domain"
	"github.com/carpark-aggregator/internal/domain/repository"
)

// Снапшот хранится без TTL: падение конвейера обслуживается из
// прошлого снапшота любого возраста, окно свежести решает читатель.
const snapshotKey = "carparks:snapshot:current"

type redisSnapshotRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisSnapshotRepository(r *Redis) repository.SnapshotRepository {
	return &redisSnapshotRepository{
		client: r.Client(),
		logger: r.logger,
	}
}

func (r *redisSnapshotRepository) Latest(ctx context.Context) (*domain.Snapshot, error) {
	data, err := r.client.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, nil // никогда не писали
	}
	if err != nil {
		r.logger.Error("Failed to get snapshot from redis", zap.Error(err))
		return nil, fmt.Errorf("snapshot get error: %w", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		r.logger.Error("Failed to unmarshal cached snapshot", zap.Error(err))
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	r.logger.Debug("Snapshot cache hit", zap.String("snapshot_id", snapshot.ID))
	return &snapshot, nil
}

func (r *redisSnapshotRepository) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, snapshotKey, data, 0).Err(); err != nil {
		r.logger.Error("Failed to set snapshot in redis", zap.Error(err))
		return fmt.Errorf("snapshot set error: %w", err)
	}

	r.logger.Debug("Snapshot cached",
		zap.String("snapshot_id", snapshot.ID),
		zap.Int("records", snapshot.Count))
	return nil
}
