package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/report"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

// Cache keeps built reports for a short time, keyed by day
type Cache interface {
	Get(ctx context.Context, day time.Time) (*report.DailyReport, bool, error)
	Set(ctx context.Context, r report.DailyReport) error
	Invalidate(ctx context.Context, day time.Time) error
}

// DailyReportResponse is a daily report with its derived net cash
type DailyReportResponse struct {
	report.DailyReport
	NetCash decimal.Decimal `json:"net_cash"`
	Cached  bool            `json:"cached"`
}

// DailyReportService builds end-of-day reports from the operational tables
type DailyReportService struct {
	parcelRepo   shipping.ParcelRepository
	dispatchRepo shipping.DispatchRepository
	codRepo      finance.CODCollectionRepository
	reportRepo   report.Repository
	cache        Cache
	archive      report.Archive
	logger       *zap.Logger
	now          func() time.Time
}

// NewDailyReportService creates a new DailyReportService. cache and archive may be nil.
func NewDailyReportService(
	parcelRepo shipping.ParcelRepository,
	dispatchRepo shipping.DispatchRepository,
	codRepo finance.CODCollectionRepository,
	reportRepo report.Repository,
	cache Cache,
	archive report.Archive,
	logger *zap.Logger,
) *DailyReportService {
	return &DailyReportService{
		parcelRepo:   parcelRepo,
		dispatchRepo: dispatchRepo,
		codRepo:      codRepo,
		reportRepo:   reportRepo,
		cache:        cache,
		archive:      archive,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Daily returns the report for a day, today when date is nil
func (s *DailyReportService) Daily(ctx context.Context, date *time.Time) (*DailyReportResponse, error) {
	day := s.now()
	if date != nil {
		day = *date
	}
	day = shared.StartOfDay(day)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, day)
		if err != nil {
			s.logger.Warn("Report cache read failed", zap.Time("date", day), zap.Error(err))
		} else if ok {
			return toResponse(*cached, true), nil
		}
	}

	r, err := s.Build(ctx, day)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, *r); err != nil {
			s.logger.Warn("Report cache write failed", zap.Time("date", day), zap.Error(err))
		}
	}
	return toResponse(*r, false), nil
}

// Build computes a day's report without the cache
func (s *DailyReportService) Build(ctx context.Context, day time.Time) (*report.DailyReport, error) {
	from, to := shared.DayRange(day)

	registered, err := s.parcelRepo.CountCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("count parcels: %w", err)
	}
	sales, err := s.parcelRepo.SalesBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("parcel sales: %w", err)
	}
	dispatches, err := s.dispatchRepo.CountCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("count dispatches: %w", err)
	}
	cod, err := s.codRepo.Summarize(ctx, &from, &from)
	if err != nil {
		return nil, fmt.Errorf("cod summary: %w", err)
	}
	figures, err := s.reportRepo.DayFigures(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("day figures: %w", err)
	}

	return &report.DailyReport{
		Date:                  from,
		ParcelsRegistered:     registered,
		ParcelSales:           sales.TotalAmount,
		ParcelPaid:            sales.TotalPaid,
		Dispatches:            dispatches,
		CODCollected:          cod.TotalCollected,
		DepositsBanked:        figures.DepositsBanked,
		ApprovedExpenses:      figures.ApprovedExpenses,
		OutstandingBranchDebt: figures.OutstandingBranchDebt,
		GeneratedAt:           s.now(),
	}, nil
}

// ArchiveDay builds a fresh report for day and hands it to the archive
func (s *DailyReportService) ArchiveDay(ctx context.Context, day time.Time) error {
	if s.archive == nil {
		return nil
	}
	r, err := s.Build(ctx, shared.StartOfDay(day))
	if err != nil {
		return err
	}
	if err := s.archive.Save(ctx, *r); err != nil {
		return fmt.Errorf("archive report: %w", err)
	}
	s.logger.Info("Daily report archived",
		zap.Time("date", r.Date),
		zap.Int64("parcels", r.ParcelsRegistered),
		zap.String("net_cash", r.NetCash().String()))
	return nil
}

// Invalidate drops the cached report of a day
func (s *DailyReportService) Invalidate(ctx context.Context, day time.Time) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, shared.StartOfDay(day))
}

func toResponse(r report.DailyReport, cached bool) *DailyReportResponse {
	return &DailyReportResponse{DailyReport: r, NetCash: r.NetCash(), Cached: cached}
}
