package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/report"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
	"github.com/wms/backend/internal/infrastructure/cache"
)

var (
	fixedNow = time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)
	dayStart = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	dayEnd   = time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
)

type reportMocks struct {
	parcels    *MockParcelRepository
	dispatches *MockDispatchRepository
	cod        *MockCODCollectionRepository
	figures    *MockReportRepository
	archive    *MockArchive
}

func setupReportService(c Cache, withArchive bool) (*DailyReportService, reportMocks) {
	m := reportMocks{
		parcels:    new(MockParcelRepository),
		dispatches: new(MockDispatchRepository),
		cod:        new(MockCODCollectionRepository),
		figures:    new(MockReportRepository),
		archive:    new(MockArchive),
	}
	var archive report.Archive
	if withArchive {
		archive = m.archive
	}
	svc := NewDailyReportService(m.parcels, m.dispatches, m.cod, m.figures, c, archive, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, m
}

func (m reportMocks) expectDay(ctx context.Context) {
	m.parcels.On("CountCreatedBetween", ctx, dayStart, dayEnd).Return(int64(12), nil)
	m.parcels.On("SalesBetween", ctx, dayStart, dayEnd).Return(&shipping.ParcelSales{
		ParcelCount: 12,
		TotalAmount: decimal.NewFromInt(18000),
		TotalPaid:   decimal.NewFromInt(15000),
	}, nil)
	m.dispatches.On("CountCreatedBetween", ctx, dayStart, dayEnd).Return(int64(2), nil)
	m.cod.On("Summarize", ctx, &dayStart, &dayStart).Return(&finance.CODSummary{
		TotalCollected: decimal.NewFromInt(4000),
		TotalDeposited: decimal.NewFromInt(3000),
		TotalShortfall: decimal.NewFromInt(1000),
		Count:          1,
	}, nil)
	m.figures.On("DayFigures", ctx, dayStart, dayEnd).Return(&report.DayFigures{
		DepositsBanked:        decimal.NewFromInt(9000),
		ApprovedExpenses:      decimal.NewFromInt(2500),
		OutstandingBranchDebt: decimal.NewFromInt(41000),
	}, nil)
}

func TestDailyReportService_Daily(t *testing.T) {
	ctx := context.Background()

	t.Run("builds and caches", func(t *testing.T) {
		store := cache.NewInMemoryReportCache(time.Minute)
		svc, m := setupReportService(store, false)
		m.expectDay(ctx)

		first, err := svc.Daily(ctx, nil)
		require.NoError(t, err)
		assert.False(t, first.Cached)
		assert.Equal(t, dayStart, first.Date)
		assert.Equal(t, int64(12), first.ParcelsRegistered)
		assert.Equal(t, int64(2), first.Dispatches)
		assert.Equal(t, "4000", first.CODCollected.String())
		assert.Equal(t, "41000", first.OutstandingBranchDebt.String())
		assert.Equal(t, "16500", first.NetCash.String())

		evening := dayStart.Add(21 * time.Hour)
		second, err := svc.Daily(ctx, &evening)
		require.NoError(t, err)
		assert.True(t, second.Cached)
		assert.Equal(t, first.ParcelSales.String(), second.ParcelSales.String())
		m.parcels.AssertNumberOfCalls(t, "CountCreatedBetween", 1)
		m.figures.AssertNumberOfCalls(t, "DayFigures", 1)
	})

	t.Run("invalidation forces a rebuild", func(t *testing.T) {
		store := cache.NewInMemoryReportCache(time.Minute)
		svc, m := setupReportService(store, false)
		m.expectDay(ctx)

		_, err := svc.Daily(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, svc.Invalidate(ctx, fixedNow))
		again, err := svc.Daily(ctx, nil)

		require.NoError(t, err)
		assert.False(t, again.Cached)
		m.figures.AssertNumberOfCalls(t, "DayFigures", 2)
	})

	t.Run("repository failure", func(t *testing.T) {
		svc, m := setupReportService(nil, false)
		m.parcels.On("CountCreatedBetween", ctx, dayStart, dayEnd).Return(int64(0), errors.New("connection reset"))

		_, err := svc.Daily(ctx, nil)

		assert.ErrorContains(t, err, "count parcels")
	})
}

func TestDailyReportService_ArchiveDay(t *testing.T) {
	ctx := context.Background()

	t.Run("saves a fresh report", func(t *testing.T) {
		svc, m := setupReportService(nil, true)
		m.expectDay(ctx)
		m.archive.On("Save", ctx, mock.MatchedBy(func(r report.DailyReport) bool {
			return r.Date.Equal(dayStart) && r.DepositsBanked.Equal(decimal.NewFromInt(9000))
		})).Return(nil).Once()

		require.NoError(t, svc.ArchiveDay(ctx, dayStart.Add(23*time.Hour)))
		m.archive.AssertExpectations(t)
	})

	t.Run("archive error is returned", func(t *testing.T) {
		svc, m := setupReportService(nil, true)
		m.expectDay(ctx)
		m.archive.On("Save", ctx, mock.Anything).Return(errors.New("sheets quota"))

		err := svc.ArchiveDay(ctx, dayStart)

		assert.ErrorContains(t, err, "sheets quota")
	})

	t.Run("no archive configured", func(t *testing.T) {
		svc, m := setupReportService(nil, false)

		require.NoError(t, svc.ArchiveDay(ctx, dayStart))
		m.parcels.AssertNotCalled(t, "CountCreatedBetween", mock.Anything, mock.Anything, mock.Anything)
	})
}

type recordingInvalidator struct {
	days []time.Time
}

func (r *recordingInvalidator) Invalidate(_ context.Context, day time.Time) error {
	r.days = append(r.days, day)
	return nil
}

func TestCacheInvalidationHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("expense decision clears its day", func(t *testing.T) {
		rec := &recordingInvalidator{}
		h := NewCacheInvalidationHandler(rec, zap.NewNop())
		e, err := finance.NewDailyExpense(finance.ExpenseDetails{
			Category:    finance.ExpenseCategoryFuel,
			Description: "Diesel",
			Amount:      decimal.NewFromInt(100),
			Date:        dayStart.AddDate(0, 0, -1),
		}, finance.Actor{ID: uuid.New()})
		require.NoError(t, err)
		require.NoError(t, e.Approve(finance.Actor{ID: uuid.New()}, ""))

		require.NoError(t, h.Handle(ctx, finance.NewExpenseDecidedEvent(e)))

		assert.Equal(t, []time.Time{dayStart.AddDate(0, 0, -1)}, rec.days)
	})

	t.Run("ledger change clears through today", func(t *testing.T) {
		rec := &recordingInvalidator{}
		h := NewCacheInvalidationHandler(rec, zap.NewNop())
		h.now = func() time.Time { return fixedNow }

		event := finance.NewLedgerChangedEvent(uuid.New(), "Mombasa", dayStart.AddDate(0, 0, -2), decimal.NewFromInt(10), 3)
		require.NoError(t, h.Handle(ctx, event))

		assert.Equal(t, []time.Time{
			dayStart.AddDate(0, 0, -2),
			dayStart.AddDate(0, 0, -1),
			dayStart,
		}, rec.days)
	})

	t.Run("old ledger change is bounded", func(t *testing.T) {
		rec := &recordingInvalidator{}
		h := NewCacheInvalidationHandler(rec, zap.NewNop())
		h.now = func() time.Time { return fixedNow }

		event := finance.NewLedgerChangedEvent(uuid.New(), "Mombasa", dayStart.AddDate(-1, 0, 0), decimal.Zero, 1)
		require.NoError(t, h.Handle(ctx, event))

		assert.Len(t, rec.days, maxInvalidatedDays+1)
	})

	t.Run("other events are rejected", func(t *testing.T) {
		h := NewCacheInvalidationHandler(&recordingInvalidator{}, zap.NewNop())
		other := shared.NewBaseDomainEvent("ParcelRegistered", "Parcel", uuid.New())

		assert.Error(t, h.Handle(ctx, &other))
		assert.ElementsMatch(t, []string{finance.EventTypeLedgerChanged, finance.EventTypeExpenseDecided}, h.EventTypes())
	})
}
