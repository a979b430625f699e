package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/carpark-aggregator/internal/config"
	"github.com/carpark-aggregator/internal/domain"
	"github.com/carpark-aggregator/internal/parser"
	"github.com/carpark-aggregator/internal/usecase"
)

// MockSourceRepository is a mock of SourceRepository
type MockSourceRepository struct {
	mock.Mock
}

func (m *MockSourceRepository) Fetch(ctx context.Context, src domain.Source) ([]byte, error) {
	args := m.Called(ctx, src)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockSnapshotRepository is a mock of SnapshotRepository
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Latest(ctx context.Context) (*domain.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepository) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

const ingestCarParkHTML = `
<html><body>
  <div class="carpark-item" data-lat="22.30" data-lng="114.17">
    <span class="carpark-name">Garage X</span>
    <span class="carpark-capacity">50</span>
  </div>
  <div class="street-zone-item" data-lat="22.31" data-lng="114.18">
    <span class="zone-name">Zone Y</span>
    <span class="zone-total">20</span>
    <span class="zone-fee">$2/hr</span>
  </div>
</body></html>`

const ingestChargerHTML = `
<html><body>
  <div class="charger-location">
    <span class="location-name">Garage X</span>
    <span class="charger-count">4</span>
    <span class="provider-name">ProviderA</span>
    <span class="connector-type">TypeB</span>
  </div>
</body></html>`

func sourceNamed(name string) interface{} {
	return mock.MatchedBy(func(src domain.Source) bool {
		return src.Name == name
	})
}

func newIngestUseCase(sourceRepo *MockSourceRepository, snapshotRepo *MockSnapshotRepository) *usecase.IngestUseCase {
	logger := zap.NewNop()
	cfg := &config.Config{
		Source: config.SourceConfig{
			CarParkURL: "http://example.test/carparks",
			ChargerURL: "http://example.test/chargers",
		},
		Cache: config.CacheConfig{SnapshotTTL: time.Hour},
	}

	return usecase.NewIngestUseCase(
		sourceRepo,
		snapshotRepo,
		parser.NewCarParkParser(logger),
		parser.NewChargerParser(logger),
		cfg,
		logger,
	)
}

func TestIngestUseCase_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("full pipeline run over both sources", func(t *testing.T) {
		sourceRepo := &MockSourceRepository{}
		snapshotRepo := &MockSnapshotRepository{}

		snapshotRepo.On("Latest", mock.Anything).Return(nil, nil)
		snapshotRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		sourceRepo.On("Fetch", mock.Anything, sourceNamed("carpark-listing")).Return([]byte(ingestCarParkHTML), nil)
		sourceRepo.On("Fetch", mock.Anything, sourceNamed("charger-listing")).Return([]byte(ingestChargerHTML), nil)

		uc := newIngestUseCase(sourceRepo, snapshotRepo)
		snap, err := uc.Ingest(ctx)

		assert.NoError(t, err)
		assert.NotNil(t, snap)
		assert.Equal(t, 2, snap.Count)

		garage := snap.Records[0]
		assert.Equal(t, "Garage X", garage.Name)
		assert.Equal(t, 50, garage.Capacity)
		assert.True(t, garage.Charging.HasCharging)
		assert.Equal(t, 4, garage.Charging.StationCount)
		assert.Equal(t, "ProviderA", garage.Charging.Provider)
		assert.Equal(t, "TypeB", garage.Charging.Type)
		assert.Equal(t, "Parking units: 50 | Charging stations: 4 | Hours: 24-hour", garage.DisplayInfo)

		zone := snap.Records[1]
		assert.Equal(t, "Street Parking Zone - Zone Y", zone.Name)
		assert.True(t, zone.IsStreetParking)
		assert.Equal(t, 20, zone.StreetParking.Total)
		assert.Equal(t, 20, zone.StreetParking.Available)
		assert.False(t, zone.Charging.HasCharging)
		assert.Equal(t, "Street parking: 20 units | Fee: $2/hr | Hours: 24-hour", zone.DisplayInfo)

		assert.False(t, garage.LastUpdated.IsZero())
		snapshotRepo.AssertCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("fresh cached snapshot short-circuits the pipeline", func(t *testing.T) {
		sourceRepo := &MockSourceRepository{}
		snapshotRepo := &MockSnapshotRepository{}

		cached := &domain.Snapshot{
			ID:         "cached",
			Version:    domain.SnapshotVersion,
			Records:    []domain.CarPark{{Name: "Cached Garage", Lat: 22.3, Lng: 114.1}},
			CapturedAt: time.Now().UTC().Add(-10 * time.Minute),
			Count:      1,
		}
		snapshotRepo.On("Latest", mock.Anything).Return(cached, nil)

		uc := newIngestUseCase(sourceRepo, snapshotRepo)
		snap, err := uc.Ingest(ctx)

		assert.NoError(t, err)
		assert.Equal(t, "cached", snap.ID)
		sourceRepo.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	})

	t.Run("failed run falls back to stale snapshot", func(t *testing.T) {
		sourceRepo := &MockSourceRepository{}
		snapshotRepo := &MockSnapshotRepository{}

		stale := &domain.Snapshot{
			ID:         "stale",
			Version:    domain.SnapshotVersion,
			Records:    make([]domain.CarPark, 10),
			CapturedAt: time.Now().UTC().Add(-3 * time.Hour),
			Count:      10,
		}
		snapshotRepo.On("Latest", mock.Anything).Return(stale, nil)
		sourceRepo.On("Fetch", mock.Anything, mock.Anything).Return(nil, errors.New("source down"))

		uc := newIngestUseCase(sourceRepo, snapshotRepo)
		snap, err := uc.Ingest(ctx)

		assert.NoError(t, err)
		assert.Equal(t, "stale", snap.ID)
		assert.Equal(t, 10, snap.Count)
	})

	t.Run("failure with no prior snapshot surfaces the error", func(t *testing.T) {
		sourceRepo := &MockSourceRepository{}
		snapshotRepo := &MockSnapshotRepository{}

		snapshotRepo.On("Latest", mock.Anything).Return(nil, nil)
		sourceRepo.On("Fetch", mock.Anything, mock.Anything).Return(nil, errors.New("source down"))

		uc := newIngestUseCase(sourceRepo, snapshotRepo)
		snap, err := uc.Ingest(ctx)

		assert.Error(t, err)
		assert.Nil(t, snap)
	})

	t.Run("charger source failure fails the whole run", func(t *testing.T) {
		sourceRepo := &MockSourceRepository{}
		snapshotRepo := &MockSnapshotRepository{}

		snapshotRepo.On("Latest", mock.Anything).Return(nil, nil)
		sourceRepo.On("Fetch", mock.Anything, sourceNamed("carpark-listing")).Return([]byte(ingestCarParkHTML), nil)
		sourceRepo.On("Fetch", mock.Anything, sourceNamed("charger-listing")).Return(nil, errors.New("charger source down"))

		uc := newIngestUseCase(sourceRepo, snapshotRepo)
		snap, err := uc.Ingest(ctx)

		assert.Error(t, err)
		assert.Nil(t, snap)
	})

	t.Run("pipeline output survives a failed save", func(t *testing.T) {
		sourceRepo := &MockSourceRepository{}
		snapshotRepo := &MockSnapshotRepository{}

		snapshotRepo.On("Latest", mock.Anything).Return(nil, nil)
		snapshotRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("store down"))
		sourceRepo.On("Fetch", mock.Anything, sourceNamed("carpark-listing")).Return([]byte(ingestCarParkHTML), nil)
		sourceRepo.On("Fetch", mock.Anything, sourceNamed("charger-listing")).Return([]byte(ingestChargerHTML), nil)

		uc := newIngestUseCase(sourceRepo, snapshotRepo)
		snap, err := uc.Ingest(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 2, snap.Count)
	})
}

func TestIngestUseCase_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("refresh ignores the freshness window", func(t *testing.T) {
		sourceRepo := &MockSourceRepository{}
		snapshotRepo := &MockSnapshotRepository{}

		snapshotRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		sourceRepo.On("Fetch", mock.Anything, sourceNamed("carpark-listing")).Return([]byte(ingestCarParkHTML), nil)
		sourceRepo.On("Fetch", mock.Anything, sourceNamed("charger-listing")).Return([]byte(ingestChargerHTML), nil)

		uc := newIngestUseCase(sourceRepo, snapshotRepo)
		snap, err := uc.Refresh(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 2, snap.Count)
		// Кеш не читается: прогон безусловный
		snapshotRepo.AssertNotCalled(t, "Latest", mock.Anything)
		sourceRepo.AssertNumberOfCalls(t, "Fetch", 2)
	})
}
