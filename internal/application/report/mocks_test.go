package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/report"
	"github.com/wms/backend/internal/domain/shipping"
)

// MockParcelRepository is a mock implementation of shipping.ParcelRepository
type MockParcelRepository struct {
	mock.Mock
}

func (m *MockParcelRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Parcel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Parcel), args.Error(1)
}

func (m *MockParcelRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]shipping.Parcel, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.Parcel), args.Error(1)
}

func (m *MockParcelRepository) FindByWaybill(ctx context.Context, waybill string) (*shipping.Parcel, error) {
	args := m.Called(ctx, waybill)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Parcel), args.Error(1)
}

func (m *MockParcelRepository) FindAll(ctx context.Context, filter shipping.ParcelFilter) ([]shipping.Parcel, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]shipping.Parcel), args.Get(1).(int64), args.Error(2)
}

func (m *MockParcelRepository) ExistsByWaybill(ctx context.Context, waybill string) (bool, error) {
	args := m.Called(ctx, waybill)
	return args.Bool(0), args.Error(1)
}

func (m *MockParcelRepository) CountCreatedBetween(ctx context.Context, from time.Time, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockParcelRepository) SalesBetween(ctx context.Context, from time.Time, to time.Time) (*shipping.ParcelSales, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.ParcelSales), args.Error(1)
}

func (m *MockParcelRepository) Save(ctx context.Context, parcel *shipping.Parcel) error {
	return m.Called(ctx, parcel).Error(0)
}

func (m *MockParcelRepository) SaveWithLock(ctx context.Context, parcel *shipping.Parcel) error {
	return m.Called(ctx, parcel).Error(0)
}

func (m *MockParcelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockDispatchRepository is a mock implementation of shipping.DispatchRepository
type MockDispatchRepository struct {
	mock.Mock
}

func (m *MockDispatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Dispatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Dispatch), args.Error(1)
}

func (m *MockDispatchRepository) FindAll(ctx context.Context, filter shipping.DispatchFilter) ([]shipping.Dispatch, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]shipping.Dispatch), args.Get(1).(int64), args.Error(2)
}

func (m *MockDispatchRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockDispatchRepository) CountCreatedBetween(ctx context.Context, from time.Time, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDispatchRepository) Save(ctx context.Context, dispatch *shipping.Dispatch) error {
	return m.Called(ctx, dispatch).Error(0)
}

func (m *MockDispatchRepository) SaveWithLock(ctx context.Context, dispatch *shipping.Dispatch) error {
	return m.Called(ctx, dispatch).Error(0)
}

// MockCODCollectionRepository is a mock implementation of finance.CODCollectionRepository
type MockCODCollectionRepository struct {
	mock.Mock
}

func (m *MockCODCollectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CODCollection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CODCollection), args.Error(1)
}

func (m *MockCODCollectionRepository) FindAll(ctx context.Context, filter finance.CODCollectionFilter) ([]finance.CODCollection, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]finance.CODCollection), args.Get(1).(int64), args.Error(2)
}

func (m *MockCODCollectionRepository) ExistsForDispatch(ctx context.Context, dispatchID uuid.UUID) (bool, error) {
	args := m.Called(ctx, dispatchID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCODCollectionRepository) Summarize(ctx context.Context, from *time.Time, to *time.Time) (*finance.CODSummary, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CODSummary), args.Error(1)
}

func (m *MockCODCollectionRepository) Save(ctx context.Context, collection *finance.CODCollection) error {
	return m.Called(ctx, collection).Error(0)
}

// MockReportRepository is a mock implementation of report.Repository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) DayFigures(ctx context.Context, from time.Time, to time.Time) (*report.DayFigures, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.DayFigures), args.Error(1)
}

// MockArchive is a mock implementation of report.Archive
type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Save(ctx context.Context, r report.DailyReport) error {
	return m.Called(ctx, r).Error(0)
}
