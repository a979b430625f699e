package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carpark-aggregator/internal/domain"
)

func TestNewSnapshot(t *testing.T) {
	records := []domain.CarPark{
		{Name: "Garage A", Lat: 22.3, Lng: 114.1},
		{Name: "Garage B", Lat: 22.4, Lng: 114.2},
	}

	snap := domain.NewSnapshot(records)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, domain.SnapshotVersion, snap.Version)
	assert.Equal(t, 2, snap.Count)
	assert.Len(t, snap.Records, 2)
	assert.WithinDuration(t, time.Now().UTC(), snap.CapturedAt, 5*time.Second)

	other := domain.NewSnapshot(records)
	assert.NotEqual(t, snap.ID, other.ID)
}

func TestSnapshotFreshness(t *testing.T) {
	captured := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := &domain.Snapshot{CapturedAt: captured}
	ttl := time.Hour

	t.Run("fresh just inside the window", func(t *testing.T) {
		now := captured.Add(59 * time.Minute)
		assert.True(t, snap.IsFresh(now, ttl))
		assert.Equal(t, 59*time.Minute, snap.Age(now))
	})

	t.Run("boundary itself counts as stale", func(t *testing.T) {
		now := captured.Add(time.Hour)
		assert.False(t, snap.IsFresh(now, ttl))
	})

	t.Run("stale past the window", func(t *testing.T) {
		now := captured.Add(61 * time.Minute)
		assert.False(t, snap.IsFresh(now, ttl))
	})
}
