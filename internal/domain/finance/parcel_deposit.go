package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// ParcelDeposit records the cash a clerk banked against one parcel
type ParcelDeposit struct {
	shared.BaseAggregateRoot
	shared.Audited
	ParcelID        uuid.UUID
	DepositedAmount decimal.Decimal
	Expenses        decimal.Decimal
	Notes           string
}

// NewParcelDeposit creates the deposit for a parcel
func NewParcelDeposit(parcelID uuid.UUID, deposited, expenses decimal.Decimal, notes string, createdBy uuid.UUID) (*ParcelDeposit, error) {
	if parcelID == uuid.Nil {
		return nil, shared.Invalid("Parcel is required")
	}
	d := &ParcelDeposit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ParcelID:          parcelID,
	}
	if err := d.apply(deposited, expenses, notes); err != nil {
		return nil, err
	}
	d.SetCreatedBy(createdBy)
	return d, nil
}

// Update replaces the amounts. CreatedBy stays with the original creator.
func (d *ParcelDeposit) Update(deposited, expenses decimal.Decimal, notes string, updatedBy uuid.UUID) error {
	if err := d.apply(deposited, expenses, notes); err != nil {
		return err
	}
	d.SetUpdatedBy(updatedBy)
	d.UpdatedAt = time.Now().UTC()
	return nil
}

func (d *ParcelDeposit) apply(deposited, expenses decimal.Decimal, notes string) error {
	if deposited.IsNegative() {
		return shared.Invalid("Deposited amount cannot be negative")
	}
	if expenses.IsNegative() {
		return shared.Invalid("Expenses cannot be negative")
	}
	if len(notes) > 500 {
		return shared.Invalid("Notes cannot exceed 500 characters")
	}
	d.DepositedAmount = deposited
	d.Expenses = expenses
	d.Notes = notes
	return nil
}

// RemainingDebt is what is still owed on a parcel of the given total
func (d *ParcelDeposit) RemainingDebt(parcelTotal decimal.Decimal) decimal.Decimal {
	return RemainingDebt(parcelTotal, d.DepositedAmount, d.Expenses)
}

// RemainingDebt is total − deposited − expenses
func RemainingDebt(total, deposited, expenses decimal.Decimal) decimal.Decimal {
	return total.Sub(deposited).Sub(expenses)
}

// ClerkSummary totals one clerk's paid parcels and deposits
type ClerkSummary struct {
	ClerkID        uuid.UUID
	ClerkName      string
	ClerkUsername  string
	ParcelCount    int64
	TotalAmount    decimal.Decimal
	TotalDeposited decimal.Decimal
	TotalExpenses  decimal.Decimal
	LastUpdate     *time.Time
}

// RemainingDebt is the clerk's outstanding balance
func (s ClerkSummary) RemainingDebt() decimal.Decimal {
	return RemainingDebt(s.TotalAmount, s.TotalDeposited, s.TotalExpenses)
}

// GraceDay is the last day of a month on which the previous month is still open
const GraceDay = 7

// ClerkWindow returns the half-open range [from, to) a clerk's summary covers
// on the given date. From the 8th the window is the current month; before
// that the previous month stays open until the end of the 7th.
func ClerkWindow(date time.Time) (time.Time, time.Time) {
	monthStart, nextMonth := shared.MonthRange(date)
	graceEnd := monthStart.AddDate(0, 0, GraceDay)
	if !date.Before(graceEnd) {
		return monthStart, nextMonth
	}
	return monthStart.AddDate(0, -1, 0), graceEnd
}
