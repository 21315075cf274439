package main

import (
	"go.uber.org/zap"

	reportapp "github.com/wms/backend/internal/application/report"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/scheduler"
	"github.com/wms/backend/internal/interfaces/http/handler"
)

// newScheduler registers and starts the nightly jobs.
// It returns nil when scheduling is switched off.
func newScheduler(cfg config.SchedulerConfig, ledger scheduler.LedgerReconciler, reports scheduler.ReportArchiver, log *zap.Logger) (*scheduler.Scheduler, error) {
	if !cfg.Enabled {
		log.Info("Scheduler disabled")
		return nil, nil
	}
	sched := scheduler.New(scheduler.DefaultConfig(), log.Named("scheduler"))
	if err := sched.Register(cfg.ReconcileCron, scheduler.NewReconcileJob(ledger, log)); err != nil {
		return nil, err
	}
	if err := sched.Register(cfg.DailyReportCron, scheduler.NewDailyReportJob(reports)); err != nil {
		return nil, err
	}
	sched.Start()
	log.Info("Scheduler started",
		zap.String("reconcile", cfg.ReconcileCron),
		zap.String("daily_report", cfg.DailyReportCron),
	)
	return sched, nil
}

// newReportHandler exposes job status and manual runs only when a scheduler is running
func newReportHandler(reports *reportapp.DailyReportService, sched *scheduler.Scheduler) *handler.ReportHandler {
	h := handler.NewReportHandler(reports)
	if sched != nil {
		h.SetJobRunner(sched)
	}
	return h
}
