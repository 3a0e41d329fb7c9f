// Package scheduler runs the periodic low-stock sweep.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Youskoofx/chrono24/internal/service"
	"github.com/Youskoofx/chrono24/pkg/config"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	tires  *service.TireService
	cfg    *config.Config
	logger *zap.Logger
}

// New creates a scheduler instance.
func New(cfg *config.Config, tires *service.TireService, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(),
		tires:  tires,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the low-stock sweep and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Stock.LowStockCron, s.sweepLowStock); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.String("low_stock_cron", s.cfg.Stock.LowStockCron))
	return nil
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// sweepLowStock refreshes the low-stock gauge and logs every line at or
// below the threshold so shortages show up in the morning logs.
func (s *Scheduler) sweepLowStock() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tires, err := s.tires.LowStock(ctx, s.cfg.Stock.LowStockThreshold)
	if err != nil {
		s.logger.Error("Low stock sweep failed", zap.Error(err))
		return
	}

	if len(tires) == 0 {
		s.logger.Info("Low stock sweep: no shortages")
		return
	}

	for _, tire := range tires {
		s.logger.Warn("Low stock",
			zap.String("tire_id", tire.ID),
			zap.String("brand", tire.Brand),
			zap.String("dimensions", tire.Dimensions()),
			zap.Int("quantity", tire.Quantity))
	}
	s.logger.Info("Low stock sweep finished", zap.Int("count", len(tires)))
}
