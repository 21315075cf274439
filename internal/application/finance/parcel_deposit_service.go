package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

// ===================== Parcel Deposit DTOs =====================

// ParcelDepositResponse is a deposit shown with its parcel
type ParcelDepositResponse struct {
	ID              uuid.UUID       `json:"id"`
	ParcelID        uuid.UUID       `json:"parcel_id"`
	WaybillNumber   string          `json:"waybill_number"`
	Destination     string          `json:"destination"`
	ParcelTotal     decimal.Decimal `json:"parcel_total"`
	ParcelCreatedAt time.Time       `json:"parcel_created_at"`
	ClerkName       string          `json:"clerk_name"`
	DepositedAmount decimal.Decimal `json:"deposited_amount"`
	Expenses        decimal.Decimal `json:"expenses"`
	RemainingDebt   decimal.Decimal `json:"remaining_debt"`
	Notes           string          `json:"notes"`
	CreatedBy       *uuid.UUID      `json:"created_by,omitempty"`
	UpdatedBy       *uuid.UUID      `json:"updated_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToParcelDepositResponse converts a deposit view to its API form
func ToParcelDepositResponse(v *finance.ParcelDepositView) ParcelDepositResponse {
	return ParcelDepositResponse{
		ID:              v.ID,
		ParcelID:        v.ParcelID,
		WaybillNumber:   v.WaybillNumber,
		Destination:     v.Destination,
		ParcelTotal:     v.ParcelTotal,
		ParcelCreatedAt: v.ParcelCreatedAt,
		ClerkName:       v.ClerkName,
		DepositedAmount: v.DepositedAmount,
		Expenses:        v.Expenses,
		RemainingDebt:   v.RemainingDebt(),
		Notes:           v.Notes,
		CreatedBy:       v.CreatedBy,
		UpdatedBy:       v.UpdatedBy,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

// ParcelDepositRequest carries what a clerk banked against a parcel
type ParcelDepositRequest struct {
	ParcelID        uuid.UUID       `json:"parcel_id"`
	DepositedAmount decimal.Decimal `json:"deposited_amount"`
	Expenses        decimal.Decimal `json:"expenses"`
	Notes           string          `json:"notes" binding:"max=500"`
}

// ParcelDepositListFilter contains the query options for listing deposits
type ParcelDepositListFilter struct {
	shared.Filter
	Date        *time.Time
	ClerkID     *uuid.UUID
	Destination string
}

// ClerkSummaryResponse totals one clerk's paid parcels
type ClerkSummaryResponse struct {
	ClerkID        uuid.UUID       `json:"clerk_id"`
	ClerkName      string          `json:"clerk_name"`
	ClerkUsername  string          `json:"clerk_username"`
	ParcelCount    int64           `json:"parcel_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalDeposited decimal.Decimal `json:"total_deposited"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	RemainingDebt  decimal.Decimal `json:"remaining_debt"`
	LastUpdate     *time.Time      `json:"last_update,omitempty"`
}

func toClerkSummaryResponse(s finance.ClerkSummary) ClerkSummaryResponse {
	return ClerkSummaryResponse{
		ClerkID:        s.ClerkID,
		ClerkName:      s.ClerkName,
		ClerkUsername:  s.ClerkUsername,
		ParcelCount:    s.ParcelCount,
		TotalAmount:    s.TotalAmount,
		TotalDeposited: s.TotalDeposited,
		TotalExpenses:  s.TotalExpenses,
		RemainingDebt:  s.RemainingDebt(),
		LastUpdate:     s.LastUpdate,
	}
}

// ClerkWindowResponse is one clerk's totals over the open settlement window
type ClerkWindowResponse struct {
	ClerkSummaryResponse
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

// ===================== Parcel Deposit Service =====================

// ParcelDepositService tracks cash banked per parcel and per clerk
type ParcelDepositService struct {
	depositRepo finance.ParcelDepositRepository
	parcelRepo  shipping.ParcelRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewParcelDepositService creates a new ParcelDepositService
func NewParcelDepositService(
	depositRepo finance.ParcelDepositRepository,
	parcelRepo shipping.ParcelRepository,
	logger *zap.Logger,
) *ParcelDepositService {
	return &ParcelDepositService{
		depositRepo: depositRepo,
		parcelRepo:  parcelRepo,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// List returns deposits matching the filter
func (s *ParcelDepositService) List(ctx context.Context, filter ParcelDepositListFilter) (*shared.Paginated[ParcelDepositResponse], error) {
	f := finance.ParcelDepositFilter{
		Filter:      filter.Filter.Normalize(),
		Date:        dayPtr(filter.Date),
		ClerkID:     filter.ClerkID,
		Destination: filter.Destination,
	}
	views, total, err := s.depositRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]ParcelDepositResponse, len(views))
	for i := range views {
		items[i] = ToParcelDepositResponse(&views[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// GetByID returns one deposit
func (s *ParcelDepositService) GetByID(ctx context.Context, id uuid.UUID) (*ParcelDepositResponse, error) {
	v, err := s.depositRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToParcelDepositResponse(v)
	return &resp, nil
}

// GetByParcel returns the deposit of a parcel
func (s *ParcelDepositService) GetByParcel(ctx context.Context, parcelID uuid.UUID) (*ParcelDepositResponse, error) {
	v, err := s.depositRepo.FindByParcelID(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	resp := ToParcelDepositResponse(v)
	return &resp, nil
}

// Create records the first deposit of a parcel. It is attributed to the parcel's clerk.
func (s *ParcelDepositService) Create(ctx context.Context, actorID uuid.UUID, req ParcelDepositRequest) (*ParcelDepositResponse, error) {
	parcel, err := s.parcelRepo.FindByID(ctx, req.ParcelID)
	if err != nil {
		return nil, err
	}
	exists, err := s.depositRepo.ExistsForParcel(ctx, parcel.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.Conflict("A deposit already exists for parcel " + parcel.WaybillNumber)
	}

	owner := actorID
	if parcel.CreatedBy != nil {
		owner = *parcel.CreatedBy
	}
	d, err := finance.NewParcelDeposit(parcel.ID, req.DepositedAmount, req.Expenses, req.Notes, owner)
	if err != nil {
		return nil, err
	}
	if owner != actorID {
		d.SetUpdatedBy(actorID)
	}
	if err := s.depositRepo.Save(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("Parcel deposit recorded",
		zap.String("waybill", parcel.WaybillNumber),
		zap.String("deposited", d.DepositedAmount.String()))
	return s.GetByID(ctx, d.ID)
}

// Update replaces the amounts of a deposit
func (s *ParcelDepositService) Update(ctx context.Context, actorID, id uuid.UUID, req ParcelDepositRequest) (*ParcelDepositResponse, error) {
	v, err := s.depositRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, actorID, &v.ParcelDeposit, req)
}

// Upsert creates or updates the deposit of a parcel
func (s *ParcelDepositService) Upsert(ctx context.Context, actorID, parcelID uuid.UUID, req ParcelDepositRequest) (*ParcelDepositResponse, error) {
	req.ParcelID = parcelID
	v, err := s.depositRepo.FindByParcelID(ctx, parcelID)
	if err != nil {
		if shared.IsNotFound(err) {
			return s.Create(ctx, actorID, req)
		}
		return nil, err
	}
	return s.update(ctx, actorID, &v.ParcelDeposit, req)
}

// Delete removes a deposit
func (s *ParcelDepositService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.depositRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.depositRepo.Delete(ctx, id)
}

// ClerkSummaries totals paid parcels created on one day, per clerk
func (s *ParcelDepositService) ClerkSummaries(ctx context.Context, date *time.Time, destination string) ([]ClerkSummaryResponse, error) {
	day := s.now()
	if date != nil {
		day = *date
	}
	from, to := shared.DayRange(day)
	rows, err := s.depositRepo.ClerkSummaries(ctx, finance.ClerkSummaryFilter{
		From:        from,
		To:          to,
		Destination: destination,
	})
	if err != nil {
		return nil, err
	}
	out := make([]ClerkSummaryResponse, len(rows))
	for i, r := range rows {
		out[i] = toClerkSummaryResponse(r)
	}
	return out, nil
}

// ClerkWindow totals one clerk's paid parcels over the settlement window containing date
func (s *ParcelDepositService) ClerkWindow(ctx context.Context, clerkID uuid.UUID, date *time.Time) (*ClerkWindowResponse, error) {
	day := s.now()
	if date != nil {
		day = *date
	}
	from, to := finance.ClerkWindow(day)
	rows, err := s.depositRepo.ClerkSummaries(ctx, finance.ClerkSummaryFilter{
		From:    from,
		To:      to,
		ClerkID: &clerkID,
	})
	if err != nil {
		return nil, err
	}

	summary := finance.ClerkSummary{
		ClerkID:        clerkID,
		TotalAmount:    decimal.Zero,
		TotalDeposited: decimal.Zero,
		TotalExpenses:  decimal.Zero,
	}
	for _, r := range rows {
		if r.ClerkID == clerkID {
			summary = r
			break
		}
	}
	return &ClerkWindowResponse{
		ClerkSummaryResponse: toClerkSummaryResponse(summary),
		WindowStart:          from,
		WindowEnd:            to,
	}, nil
}

func (s *ParcelDepositService) update(ctx context.Context, actorID uuid.UUID, d *finance.ParcelDeposit, req ParcelDepositRequest) (*ParcelDepositResponse, error) {
	if err := d.Update(req.DepositedAmount, req.Expenses, req.Notes, actorID); err != nil {
		return nil, err
	}
	if err := s.depositRepo.Save(ctx, d); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, d.ID)
}
