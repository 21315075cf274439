package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/shipping"
)

// MockContractCustomerRepository is a mock implementation of billing.ContractCustomerRepository
type MockContractCustomerRepository struct {
	mock.Mock
}

func (m *MockContractCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.ContractCustomer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ContractCustomer), args.Error(1)
}

func (m *MockContractCustomerRepository) FindAll(ctx context.Context, filter billing.ContractCustomerFilter) ([]billing.ContractCustomer, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.ContractCustomer), args.Get(1).(int64), args.Error(2)
}

func (m *MockContractCustomerRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockContractCustomerRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockContractCustomerRepository) FindContractNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockContractCustomerRepository) Save(ctx context.Context, c *billing.ContractCustomer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockContractCustomerRepository) SaveWithLock(ctx context.Context, c *billing.ContractCustomer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockContractCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) BilledParcelIDs(ctx context.Context, parcelIDs []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, parcelIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, inv *billing.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

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

// inlineTransactor runs fn directly on the caller's context
type inlineTransactor struct {
	calls int
}

func (t *inlineTransactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}
