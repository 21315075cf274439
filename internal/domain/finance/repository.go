package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// BranchDepositFilter defines filtering options for branch deposit queries
type BranchDepositFilter struct {
	shared.Filter
	Branch    string
	StartDate *time.Time // date >= StartDate
	EndDate   *time.Time // date <= EndDate
}

// BranchDepositRepository defines persistence for the branch ledger
type BranchDepositRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BranchDeposit, error)
	FindAll(ctx context.Context, filter BranchDepositFilter) ([]BranchDeposit, int64, error)
	ExistsForBranchDate(ctx context.Context, branch string, date time.Time) (bool, error)
	// FindLatestBefore returns the branch's newest record dated strictly before date, or nil
	FindLatestBefore(ctx context.Context, branch string, date time.Time) (*BranchDeposit, error)
	// FindFrom returns the branch's records dated on or after date, ascending by date
	FindFrom(ctx context.Context, branch string, date time.Time) ([]*BranchDeposit, error)
	// FindEarliestDate returns the branch's first record date, or nil when it has none
	FindEarliestDate(ctx context.Context, branch string) (*time.Time, error)
	ListBranches(ctx context.Context) ([]string, error)
	Summarize(ctx context.Context, filter BranchDepositFilter) ([]BranchDepositSummary, error)
	// LockBranch serialises ledger writers for one branch until the transaction ends
	LockBranch(ctx context.Context, branch string) error
	Save(ctx context.Context, deposit *BranchDeposit) error
	UpdateRunningDebts(ctx context.Context, deposits []*BranchDeposit) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ParcelDepositFilter defines filtering options for parcel deposit queries
type ParcelDepositFilter struct {
	shared.Filter
	Date        *time.Time // parcel created on this day
	ClerkID     *uuid.UUID // parcel creator
	Destination string
}

// ParcelDepositView joins a deposit with the parcel fields shown alongside it
type ParcelDepositView struct {
	ParcelDeposit
	WaybillNumber   string
	Destination     string
	ParcelTotal     decimal.Decimal
	ParcelCreatedAt time.Time
	ClerkName       string
}

// RemainingDebt is the parcel total less what was deposited and spent
func (v ParcelDepositView) RemainingDebt() decimal.Decimal {
	return v.ParcelDeposit.RemainingDebt(v.ParcelTotal)
}

// ClerkSummaryFilter selects which paid parcels a clerk summary covers
type ClerkSummaryFilter struct {
	From        time.Time
	To          time.Time
	ClerkID     *uuid.UUID
	Destination string
}

// ParcelDepositRepository defines persistence for parcel deposits
type ParcelDepositRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ParcelDepositView, error)
	FindByParcelID(ctx context.Context, parcelID uuid.UUID) (*ParcelDepositView, error)
	FindAll(ctx context.Context, filter ParcelDepositFilter) ([]ParcelDepositView, int64, error)
	ExistsForParcel(ctx context.Context, parcelID uuid.UUID) (bool, error)
	ClerkSummaries(ctx context.Context, filter ClerkSummaryFilter) ([]ClerkSummary, error)
	Save(ctx context.Context, deposit *ParcelDeposit) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CODCollectionFilter defines filtering options for COD collection queries
type CODCollectionFilter struct {
	shared.Filter
	Status   *CODStatus
	BranchID *uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
}

// CODCollectionRepository defines persistence for COD collections
type CODCollectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CODCollection, error)
	FindAll(ctx context.Context, filter CODCollectionFilter) ([]CODCollection, int64, error)
	ExistsForDispatch(ctx context.Context, dispatchID uuid.UUID) (bool, error)
	Summarize(ctx context.Context, from, to *time.Time) (*CODSummary, error)
	Save(ctx context.Context, collection *CODCollection) error
}

// ChequeDepositFilter defines filtering options for cheque queries
type ChequeDepositFilter struct {
	shared.Filter
	Status             *ChequeStatus
	ContractCustomerID *uuid.UUID
	DateFrom           *time.Time
	DateTo             *time.Time
}

// ChequeDepositRepository defines persistence for cheque deposits
type ChequeDepositRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ChequeDeposit, error)
	FindAll(ctx context.Context, filter ChequeDepositFilter) ([]ChequeDeposit, int64, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	Summarize(ctx context.Context, from, to *time.Time) (*ChequeSummary, error)
	Save(ctx context.Context, cheque *ChequeDeposit) error
}

// DailyExpenseFilter defines filtering options for expense queries
type DailyExpenseFilter struct {
	shared.Filter
	Status    *ExpenseStatus
	Category  *ExpenseCategory
	BranchID  *uuid.UUID
	ClerkID   *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// DailyExpenseRepository defines persistence for daily expenses
type DailyExpenseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DailyExpense, error)
	FindAll(ctx context.Context, filter DailyExpenseFilter) ([]DailyExpense, int64, error)
	// Summarize totals by status over the inclusive days start..end plus the month containing monthOf
	Summarize(ctx context.Context, start, end *time.Time, monthOf time.Time) (*ExpenseSummary, error)
	Save(ctx context.Context, expense *DailyExpense) error
	SaveWithLock(ctx context.Context, expense *DailyExpense) error
	Delete(ctx context.Context, id uuid.UUID) error
}
