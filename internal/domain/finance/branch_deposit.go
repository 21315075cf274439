package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// BranchDeposit is one branch's COD takings and banked cash for a single day
type BranchDeposit struct {
	shared.BaseAggregateRoot
	shared.Audited
	Branch        string
	Date          time.Time
	CodTotal      decimal.Decimal
	DepositAmount decimal.Decimal
	RunningDebt   decimal.Decimal
}

// NewBranchDeposit creates the day's record. RunningDebt is filled in by the ledger walk.
func NewBranchDeposit(branch string, date time.Time, codTotal, depositAmount decimal.Decimal, createdBy uuid.UUID) (*BranchDeposit, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return nil, shared.Invalid("Branch is required")
	}
	if len(branch) > 100 {
		return nil, shared.Invalid("Branch cannot exceed 100 characters")
	}
	if date.IsZero() {
		return nil, shared.Invalid("Date is required")
	}
	if err := validateAmounts(codTotal, depositAmount); err != nil {
		return nil, err
	}
	d := &BranchDeposit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Branch:            branch,
		Date:              shared.StartOfDay(date),
		CodTotal:          codTotal,
		DepositAmount:     depositAmount,
		RunningDebt:       decimal.Zero,
	}
	d.SetCreatedBy(createdBy)
	return d, nil
}

// UpdateAmounts changes the day's figures. The caller re-walks the ledger afterwards.
func (d *BranchDeposit) UpdateAmounts(codTotal, depositAmount decimal.Decimal, updatedBy uuid.UUID) error {
	if err := validateAmounts(codTotal, depositAmount); err != nil {
		return err
	}
	d.CodTotal = codTotal
	d.DepositAmount = depositAmount
	d.SetUpdatedBy(updatedBy)
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// Net is what the day adds to the branch's debt
func (d *BranchDeposit) Net() decimal.Decimal {
	return d.CodTotal.Sub(d.DepositAmount)
}

func validateAmounts(codTotal, depositAmount decimal.Decimal) error {
	if codTotal.IsNegative() {
		return shared.Invalid("COD total cannot be negative")
	}
	if depositAmount.IsNegative() {
		return shared.Invalid("Deposit amount cannot be negative")
	}
	return nil
}

// BranchDepositSummary aggregates one branch's records
type BranchDepositSummary struct {
	Branch          string
	TotalCod        decimal.Decimal
	TotalDeposits   decimal.Decimal
	TotalDebt       decimal.Decimal
	RecordCount     int64
	LastDepositDate *time.Time
}
