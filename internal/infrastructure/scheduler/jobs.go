package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	JobLedgerReconcile    = "ledger-reconcile"
	JobDailyReportArchive = "daily-report-archive"
)

// LedgerReconciler recalculates every branch's running debt
type LedgerReconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
}

// ReportArchiver builds the report for a day and archives it
type ReportArchiver interface {
	ArchiveDay(ctx context.Context, day time.Time) error
}

// ReconcileJob walks each branch ledger from its earliest record
type ReconcileJob struct {
	reconciler LedgerReconciler
	logger     *zap.Logger
}

func NewReconcileJob(reconciler LedgerReconciler, logger *zap.Logger) *ReconcileJob {
	return &ReconcileJob{reconciler: reconciler, logger: logger}
}

func (j *ReconcileJob) Name() string { return JobLedgerReconcile }

func (j *ReconcileJob) Run(ctx context.Context) error {
	updated, err := j.reconciler.ReconcileAll(ctx)
	if err != nil {
		return fmt.Errorf("reconcile ledgers: %w", err)
	}
	j.logger.Info("Branch ledgers reconciled", zap.Int("rows_updated", updated))
	return nil
}

// DailyReportJob archives the report of the day the job fires in (UTC)
type DailyReportJob struct {
	archiver ReportArchiver
	now      func() time.Time
}

func NewDailyReportJob(archiver ReportArchiver) *DailyReportJob {
	return &DailyReportJob{archiver: archiver, now: time.Now}
}

func (j *DailyReportJob) Name() string { return JobDailyReportArchive }

func (j *DailyReportJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := j.archiver.ArchiveDay(ctx, day); err != nil {
		return fmt.Errorf("archive report for %s: %w", day.Format(time.DateOnly), err)
	}
	return nil
}
