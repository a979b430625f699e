package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/carpark-aggregator/internal/usecase"
)

// Scheduler - периодическое обновление снапшота в фоне
type Scheduler struct {
	cron     *gocron.Scheduler
	ingestUC *usecase.IngestUseCase
	logger   *zap.Logger
	interval time.Duration
}

// NewScheduler - создание нового планировщика
func NewScheduler(ingestUC *usecase.IngestUseCase, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     gocron.NewScheduler(time.UTC),
		ingestUC: ingestUC,
		logger:   logger,
		interval: interval,
	}
}

// Start - запуск фоновых задач
func (s *Scheduler) Start() error {
	_, err := s.cron.Every(s.interval).Do(s.refresh)
	if err != nil {
		return err
	}

	s.cron.StartAsync()
	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop - остановка планировщика
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	snap, err := s.ingestUC.Refresh(ctx)
	if err != nil {
		s.logger.Error("Scheduled refresh failed", zap.Error(err))
		return
	}

	s.logger.Info("Scheduled refresh completed",
		zap.String("snapshot_id", snap.ID),
		zap.Int("records", snap.Count),
	)
}
