package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DailyReport is the end-of-day snapshot of operations and cash
type DailyReport struct {
	Date                  time.Time       `json:"date"`
	ParcelsRegistered     int64           `json:"parcels_registered"`
	ParcelSales           decimal.Decimal `json:"parcel_sales"`
	ParcelPaid            decimal.Decimal `json:"parcel_paid"`
	Dispatches            int64           `json:"dispatches"`
	CODCollected          decimal.Decimal `json:"cod_collected"`
	DepositsBanked        decimal.Decimal `json:"deposits_banked"`
	ApprovedExpenses      decimal.Decimal `json:"approved_expenses"`
	OutstandingBranchDebt decimal.Decimal `json:"outstanding_branch_debt"`
	GeneratedAt           time.Time       `json:"generated_at"`
}

// NetCash is what the day brought in after approved expenses
func (r DailyReport) NetCash() decimal.Decimal {
	return r.ParcelPaid.Add(r.CODCollected).Sub(r.ApprovedExpenses)
}

// DayFigures carries the figures that come straight from SQL aggregates
type DayFigures struct {
	DepositsBanked        decimal.Decimal
	ApprovedExpenses      decimal.Decimal
	OutstandingBranchDebt decimal.Decimal
}

// Repository computes report figures that span several tables
type Repository interface {
	// DayFigures returns the day's banked deposits and approved expenses, and the
	// sum of each branch's latest running debt as of the end of day
	DayFigures(ctx context.Context, from, to time.Time) (*DayFigures, error)
}

// Archive stores generated reports outside the database
type Archive interface {
	Save(ctx context.Context, report DailyReport) error
}
