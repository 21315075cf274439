package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
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

func (m *MockParcelRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockParcelRepository) SalesBetween(ctx context.Context, from, to time.Time) (*shipping.ParcelSales, error) {
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

func (m *MockDispatchRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDispatchRepository) Save(ctx context.Context, d *shipping.Dispatch) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDispatchRepository) SaveWithLock(ctx context.Context, d *shipping.Dispatch) error {
	return m.Called(ctx, d).Error(0)
}

// MockBranchRepository is a mock implementation of identity.BranchRepository
type MockBranchRepository struct {
	mock.Mock
}

func (m *MockBranchRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindByName(ctx context.Context, name string) (*identity.Branch, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Branch, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.Branch), args.Get(1).(int64), args.Error(2)
}

func (m *MockBranchRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBranchRepository) Save(ctx context.Context, b *identity.Branch) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBranchRepository) SaveWithLock(ctx context.Context, b *identity.Branch) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBranchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

// inlineTransactor runs fn directly on the caller's context
type inlineTransactor struct {
	calls int
}

func (t *inlineTransactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}
