package domain

import (
	"time"

	"github.com/google/uuid"
)

// SnapshotVersion tags the persisted snapshot layout so the redis and
// postgres forms can evolve without guessing.
const SnapshotVersion = 1

// Snapshot - иммутабельная партия валидированных парковок.
// Создается только успешным прогоном пайплайна целиком.
type Snapshot struct {
	ID         string    `json:"id" db:"id"`
	Version    int       `json:"version" db:"version"`
	Records    []CarPark `json:"records" db:"-"`
	CapturedAt time.Time `json:"captured_at" db:"captured_at"`
	Count      int       `json:"count" db:"record_count"`
}

// NewSnapshot builds a snapshot over an already-validated, ordered batch.
// Never call it with an empty batch; that case is a pipeline failure.
func NewSnapshot(records []CarPark) *Snapshot {
	return &Snapshot{
		ID:         uuid.NewString(),
		Version:    SnapshotVersion,
		Records:    records,
		CapturedAt: time.Now().UTC(),
		Count:      len(records),
	}
}

// Age returns how old the snapshot is at the given moment.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.CapturedAt)
}

// IsFresh reports whether the snapshot is still inside the freshness
// window. The boundary itself counts as stale.
func (s *Snapshot) IsFresh(now time.Time, ttl time.Duration) bool {
	return s.Age(now) < ttl
}
