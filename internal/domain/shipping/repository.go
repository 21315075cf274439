package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// ParcelFilter defines filtering options for parcel queries
type ParcelFilter struct {
	shared.Filter
	Statuses           []ParcelStatus
	Destination        string
	CreatedBy          *uuid.UUID
	ContractCustomerID *uuid.UUID
	DateFrom           *time.Time // created_at >= DateFrom
	DateTo             *time.Time // created_at < DateTo
	Unbilled           bool       // not referenced by any invoice item
}

// ParcelSales summarises one day's intake
type ParcelSales struct {
	ParcelCount int64
	TotalAmount decimal.Decimal
	TotalPaid   decimal.Decimal
}

// ParcelRepository defines persistence for parcels
type ParcelRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Parcel, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Parcel, error)
	FindByWaybill(ctx context.Context, waybill string) (*Parcel, error)
	FindAll(ctx context.Context, filter ParcelFilter) ([]Parcel, int64, error)
	ExistsByWaybill(ctx context.Context, waybill string) (bool, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	SalesBetween(ctx context.Context, from, to time.Time) (*ParcelSales, error)
	Save(ctx context.Context, parcel *Parcel) error
	SaveWithLock(ctx context.Context, parcel *Parcel) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DispatchFilter defines filtering options for dispatch queries
type DispatchFilter struct {
	shared.Filter
	Status       *DispatchStatus
	Destination  string
	SourceBranch string
	DateFrom     *time.Time
	DateTo       *time.Time
}

// DispatchRepository defines persistence for dispatches
type DispatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Dispatch, error)
	FindAll(ctx context.Context, filter DispatchFilter) ([]Dispatch, int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	Save(ctx context.Context, dispatch *Dispatch) error
	SaveWithLock(ctx context.Context, dispatch *Dispatch) error
}
