// Package scheduler runs the nightly synchronization jobs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"psx_backend/internal/feature/marketdata/domain/entity"
	"psx_backend/internal/feature/marketdata/usecase"
)

// FullSyncRunner runs the staged synchronization.
type FullSyncRunner interface {
	Run(ctx context.Context, date time.Time, progress usecase.ProgressFunc) entity.SyncSummary
}

// TransactionSyncRunner ingests off-market transactions for a date.
type TransactionSyncRunner interface {
	Sync(ctx context.Context, date time.Time) entity.PartialSummary
}

// Scheduler manages the scheduled jobs.
type Scheduler struct {
	cron *gocron.Scheduler
	full FullSyncRunner
	txs  TransactionSyncRunner
	log  *slog.Logger
}

// NewScheduler creates a scheduler in Pakistan local time so jobs track
// the exchange calendar.
func NewScheduler(full FullSyncRunner, txs TransactionSyncRunner, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	loc, err := time.LoadLocation("Asia/Karachi")
	if err != nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: gocron.NewScheduler(loc),
		full: full,
		txs:  txs,
		log:  log,
	}
}

// Start registers and starts all scheduled jobs.
func (s *Scheduler) Start() {
	// Full sync after market close
	_, _ = s.cron.Every(1).Day().At("17:30").Do(func() {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		s.log.Info("scheduled full sync starting", "date", today.Format("2006-01-02"))
		summary := s.full.Run(context.Background(), today, nil)
		s.log.Info("scheduled full sync finished",
			"effective_date", summary.EffectiveDate.Format("2006-01-02"),
			"constituents_ok", summary.Constituents.Success,
			"market_watch_ok", summary.MarketWatch.Success)
	})

	// Off-market transactions are published separately
	_, _ = s.cron.Every(1).Day().At("18:00").Do(func() {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		summary := s.txs.Sync(context.Background(), today)
		s.log.Info("scheduled transaction sync finished",
			"date", today.Format("2006-01-02"),
			"records_added", summary.RecordsAdded,
			"errors", len(summary.Errors))
	})

	s.cron.StartAsync()
	s.log.Info("scheduler started")
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}
