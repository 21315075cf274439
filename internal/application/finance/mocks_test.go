package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

// MockBranchDepositRepository is a mock implementation of finance.BranchDepositRepository
type MockBranchDepositRepository struct {
	mock.Mock
}

func (m *MockBranchDepositRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.BranchDeposit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.BranchDeposit), args.Error(1)
}

func (m *MockBranchDepositRepository) FindAll(ctx context.Context, filter finance.BranchDepositFilter) ([]finance.BranchDeposit, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]finance.BranchDeposit), args.Get(1).(int64), args.Error(2)
}

func (m *MockBranchDepositRepository) ExistsForBranchDate(ctx context.Context, branch string, date time.Time) (bool, error) {
	args := m.Called(ctx, branch, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockBranchDepositRepository) FindLatestBefore(ctx context.Context, branch string, date time.Time) (*finance.BranchDeposit, error) {
	args := m.Called(ctx, branch, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.BranchDeposit), args.Error(1)
}

func (m *MockBranchDepositRepository) FindFrom(ctx context.Context, branch string, date time.Time) ([]*finance.BranchDeposit, error) {
	args := m.Called(ctx, branch, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*finance.BranchDeposit), args.Error(1)
}

func (m *MockBranchDepositRepository) FindEarliestDate(ctx context.Context, branch string) (*time.Time, error) {
	args := m.Called(ctx, branch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockBranchDepositRepository) ListBranches(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBranchDepositRepository) Summarize(ctx context.Context, filter finance.BranchDepositFilter) ([]finance.BranchDepositSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.BranchDepositSummary), args.Error(1)
}

func (m *MockBranchDepositRepository) LockBranch(ctx context.Context, branch string) error {
	return m.Called(ctx, branch).Error(0)
}

func (m *MockBranchDepositRepository) Save(ctx context.Context, deposit *finance.BranchDeposit) error {
	return m.Called(ctx, deposit).Error(0)
}

func (m *MockBranchDepositRepository) UpdateRunningDebts(ctx context.Context, deposits []*finance.BranchDeposit) error {
	return m.Called(ctx, deposits).Error(0)
}

func (m *MockBranchDepositRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockParcelDepositRepository is a mock implementation of finance.ParcelDepositRepository
type MockParcelDepositRepository struct {
	mock.Mock
}

func (m *MockParcelDepositRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.ParcelDepositView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.ParcelDepositView), args.Error(1)
}

func (m *MockParcelDepositRepository) FindByParcelID(ctx context.Context, parcelID uuid.UUID) (*finance.ParcelDepositView, error) {
	args := m.Called(ctx, parcelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.ParcelDepositView), args.Error(1)
}

func (m *MockParcelDepositRepository) FindAll(ctx context.Context, filter finance.ParcelDepositFilter) ([]finance.ParcelDepositView, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]finance.ParcelDepositView), args.Get(1).(int64), args.Error(2)
}

func (m *MockParcelDepositRepository) ExistsForParcel(ctx context.Context, parcelID uuid.UUID) (bool, error) {
	args := m.Called(ctx, parcelID)
	return args.Bool(0), args.Error(1)
}

func (m *MockParcelDepositRepository) ClerkSummaries(ctx context.Context, filter finance.ClerkSummaryFilter) ([]finance.ClerkSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.ClerkSummary), args.Error(1)
}

func (m *MockParcelDepositRepository) Save(ctx context.Context, deposit *finance.ParcelDeposit) error {
	return m.Called(ctx, deposit).Error(0)
}

func (m *MockParcelDepositRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
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

// MockChequeDepositRepository is a mock implementation of finance.ChequeDepositRepository
type MockChequeDepositRepository struct {
	mock.Mock
}

func (m *MockChequeDepositRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.ChequeDeposit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.ChequeDeposit), args.Error(1)
}

func (m *MockChequeDepositRepository) FindAll(ctx context.Context, filter finance.ChequeDepositFilter) ([]finance.ChequeDeposit, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]finance.ChequeDeposit), args.Get(1).(int64), args.Error(2)
}

func (m *MockChequeDepositRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockChequeDepositRepository) Summarize(ctx context.Context, from *time.Time, to *time.Time) (*finance.ChequeSummary, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.ChequeSummary), args.Error(1)
}

func (m *MockChequeDepositRepository) Save(ctx context.Context, cheque *finance.ChequeDeposit) error {
	return m.Called(ctx, cheque).Error(0)
}

// MockDailyExpenseRepository is a mock implementation of finance.DailyExpenseRepository
type MockDailyExpenseRepository struct {
	mock.Mock
}

func (m *MockDailyExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.DailyExpense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.DailyExpense), args.Error(1)
}

func (m *MockDailyExpenseRepository) FindAll(ctx context.Context, filter finance.DailyExpenseFilter) ([]finance.DailyExpense, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]finance.DailyExpense), args.Get(1).(int64), args.Error(2)
}

func (m *MockDailyExpenseRepository) Summarize(ctx context.Context, start *time.Time, end *time.Time, monthOf time.Time) (*finance.ExpenseSummary, error) {
	args := m.Called(ctx, start, end, monthOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.ExpenseSummary), args.Error(1)
}

func (m *MockDailyExpenseRepository) Save(ctx context.Context, expense *finance.DailyExpense) error {
	return m.Called(ctx, expense).Error(0)
}

func (m *MockDailyExpenseRepository) SaveWithLock(ctx context.Context, expense *finance.DailyExpense) error {
	return m.Called(ctx, expense).Error(0)
}

func (m *MockDailyExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
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

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]identity.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, username, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) HasAuthoredRecords(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CountByBranch(ctx context.Context, branchID uuid.UUID) (int64, error) {
	args := m.Called(ctx, branchID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) SaveWithLock(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
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

func (m *MockBranchRepository) Save(ctx context.Context, branch *identity.Branch) error {
	return m.Called(ctx, branch).Error(0)
}

func (m *MockBranchRepository) SaveWithLock(ctx context.Context, branch *identity.Branch) error {
	return m.Called(ctx, branch).Error(0)
}

func (m *MockBranchRepository) Delete(ctx context.Context, id uuid.UUID) error {
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

func (m *MockInvoiceRepository) CountCreatedBetween(ctx context.Context, from time.Time, to time.Time) (int64, error) {
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

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
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
