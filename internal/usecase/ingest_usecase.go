package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/carpark-aggregator/internal/config"
	"github.com/carpark-aggregator/internal/domain"
	"github.com/carpark-aggregator/internal/domain/repository"
	"github.com/carpark-aggregator/internal/parser"
)

// IngestUseCase - полный конвейер: два параллельных источника, разбор,
// соединение зарядок, валидация, запись снапшота. Единственная точка
// входа для читателей - Ingest.
type IngestUseCase struct {
	sourceRepo   repository.SourceRepository
	snapshotRepo repository.SnapshotRepository
	carparkP     *parser.CarParkParser
	chargerP     *parser.ChargerParser
	logger       *zap.Logger

	carparkSource domain.Source
	chargerSource domain.Source
	snapshotTTL   time.Duration

	// Одновременные вызовы делят один прогон конвейера.
	group singleflight.Group
}

// NewIngestUseCase - сборка конвейера из конфигурации источников
func NewIngestUseCase(
	sourceRepo repository.SourceRepository,
	snapshotRepo repository.SnapshotRepository,
	carparkP *parser.CarParkParser,
	chargerP *parser.ChargerParser,
	cfg *config.Config,
	logger *zap.Logger,
) *IngestUseCase {
	return &IngestUseCase{
		sourceRepo:    sourceRepo,
		snapshotRepo:  snapshotRepo,
		carparkP:      carparkP,
		chargerP:      chargerP,
		logger:        logger,
		carparkSource: domain.Source{Name: "carpark-listing", URL: cfg.Source.CarParkURL},
		chargerSource: domain.Source{Name: "charger-listing", URL: cfg.Source.ChargerURL},
		snapshotTTL:   cfg.Cache.SnapshotTTL,
	}
}

// Ingest возвращает свежий снапшот из кеша либо гоняет конвейер.
// При полном провале прогона отдается прошлый снапшот любого возраста;
// ошибка всплывает только когда отдавать нечего.
func (uc *IngestUseCase) Ingest(ctx context.Context) (*domain.Snapshot, error) {
	v, err, shared := uc.group.Do("ingest", func() (interface{}, error) {
		return uc.ingest(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		uc.logger.Debug("Ingest shared an in-flight pipeline run")
	}
	return v.(*domain.Snapshot), nil
}

// Refresh гоняет конвейер безусловно, минуя окно свежести.
// Используется фоновым планировщиком для прогрева кеша.
func (uc *IngestUseCase) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	v, err, _ := uc.group.Do("ingest", func() (interface{}, error) {
		snap, err := uc.runPipeline(ctx)
		if err != nil {
			return nil, err
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Snapshot), nil
}

func (uc *IngestUseCase) ingest(ctx context.Context) (*domain.Snapshot, error) {
	prior, err := uc.snapshotRepo.Latest(ctx)
	if err != nil {
		uc.logger.Error("Failed to read cached snapshot", zap.Error(err))
		prior = nil
	}

	if prior != nil && prior.IsFresh(time.Now(), uc.snapshotTTL) {
		uc.logger.Debug("Serving fresh cached snapshot",
			zap.String("snapshot_id", prior.ID),
			zap.Duration("age", prior.Age(time.Now())))
		return prior, nil
	}

	snapshot, err := uc.runPipeline(ctx)
	if err != nil {
		if prior != nil {
			// Черствые данные лучше, чем никакие.
			uc.logger.Warn("Pipeline failed, serving stale snapshot",
				zap.String("snapshot_id", prior.ID),
				zap.Duration("age", prior.Age(time.Now())),
				zap.Error(err))
			return prior, nil
		}
		return nil, err
	}

	return snapshot, nil
}

// runPipeline - один сквозной прогон: fetch -> parse -> merge ->
// validate -> write. Слияние не стартует раньше обоих источников,
// запись - раньше непустой валидации.
func (uc *IngestUseCase) runPipeline(ctx context.Context) (*domain.Snapshot, error) {
	var (
		wg         sync.WaitGroup
		carparkDoc []byte
		chargerDoc []byte
		carparkErr error
		chargerErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		carparkDoc, carparkErr = uc.sourceRepo.Fetch(ctx, uc.carparkSource)
	}()
	go func() {
		defer wg.Done()
		chargerDoc, chargerErr = uc.sourceRepo.Fetch(ctx, uc.chargerSource)
	}()
	wg.Wait()

	// Частичный результат бесполезен: гаражи и зоны идут из A,
	// данные соединения - из B.
	if carparkErr != nil {
		return nil, carparkErr
	}
	if chargerErr != nil {
		return nil, chargerErr
	}

	garages, err := uc.carparkP.ParseCarParks(carparkDoc)
	if err != nil {
		return nil, err
	}
	zones, err := uc.carparkP.ParseStreetZones(carparkDoc)
	if err != nil {
		return nil, err
	}
	aggregates, err := uc.chargerP.ParseAggregates(chargerDoc)
	if err != nil {
		return nil, err
	}

	facilities := append(garages, zones...)
	uc.logger.Info("Sources parsed",
		zap.Int("garages", len(garages)),
		zap.Int("street_zones", len(zones)),
		zap.Int("charger_aggregates", len(aggregates)))

	merged := MergeCharging(facilities, BuildChargerIndex(aggregates), uc.logger)

	now := time.Now().UTC()
	for i := range merged {
		merged[i].LastUpdated = now
	}

	valid, err := SanitizeBatch(merged, uc.logger)
	if err != nil {
		return nil, err
	}

	snapshot := domain.NewSnapshot(valid)
	if err := uc.snapshotRepo.Save(ctx, snapshot); err != nil {
		// Снапшот уже собран; отдаем его, даже если запись не удалась.
		uc.logger.Error("Failed to persist snapshot", zap.Error(err))
	} else {
		uc.logger.Info("Snapshot persisted",
			zap.String("snapshot_id", snapshot.ID),
			zap.Int("records", snapshot.Count))
	}

	return snapshot, nil
}
