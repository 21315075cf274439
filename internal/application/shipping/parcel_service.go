package shipping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/event"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

const (
	maxWaybillAttempts = 20
	// used when the clerk has no home branch
	headOfficeCode = "HQX"
)

// ParcelService handles parcel intake and lifecycle
type ParcelService struct {
	parcelRepo shipping.ParcelRepository
	branchRepo identity.BranchRepository
	publisher  shared.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewParcelService creates a new ParcelService
func NewParcelService(
	parcelRepo shipping.ParcelRepository,
	branchRepo identity.BranchRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ParcelService {
	return &ParcelService{
		parcelRepo: parcelRepo,
		branchRepo: branchRepo,
		publisher:  publisher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// List returns parcels matching the filter
func (s *ParcelService) List(ctx context.Context, filter ParcelListFilter) (*shared.Paginated[ParcelResponse], error) {
	f := shipping.ParcelFilter{
		Filter:             filter.Filter.Normalize(),
		Statuses:           filter.Statuses,
		Destination:        filter.Destination,
		CreatedBy:          filter.CreatedBy,
		ContractCustomerID: filter.ContractCustomerID,
		DateFrom:           filter.DateFrom,
		DateTo:             endOfDay(filter.DateTo),
	}
	parcels, total, err := s.parcelRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(toParcelResponses(parcels), total, f.Page, f.PageSize)
	return &page, nil
}

// GetByID returns a single parcel
func (s *ParcelService) GetByID(ctx context.Context, id uuid.UUID) (*ParcelResponse, error) {
	parcel, err := s.parcelRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToParcelResponse(parcel)
	return &resp, nil
}

// GetByWaybill looks a parcel up by its waybill number
func (s *ParcelService) GetByWaybill(ctx context.Context, waybill string) (*ParcelResponse, error) {
	parcel, err := s.parcelRepo.FindByWaybill(ctx, waybill)
	if err != nil {
		return nil, err
	}
	resp := ToParcelResponse(parcel)
	return &resp, nil
}

// Create registers a parcel under a freshly generated waybill number
func (s *ParcelService) Create(ctx context.Context, actor Actor, req ParcelRequest) (*ParcelResponse, error) {
	code, err := s.branchCode(ctx, actor.BranchID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	from, to := shared.DayRange(today)
	count, err := s.parcelRepo.CountCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	seq := int(count) + 1
	for attempt := 0; attempt < maxWaybillAttempts; attempt, seq = attempt+1, seq+1 {
		waybill := shipping.FormatWaybill(today, code, seq)
		exists, err := s.parcelRepo.ExistsByWaybill(ctx, waybill)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		parcel, err := shipping.NewParcel(waybill, req.details(), actor.UserID)
		if err != nil {
			return nil, err
		}
		if err := s.parcelRepo.Save(ctx, parcel); err != nil {
			// another clerk took the number between the check and the insert
			if errors.Is(err, shared.ErrAlreadyExists) {
				continue
			}
			return nil, err
		}

		s.logger.Info("Parcel registered",
			zap.String("waybill", waybill),
			zap.String("destination", parcel.Destination))
		event.PublishPending(ctx, s.publisher, s.logger, parcel)

		resp := ToParcelResponse(parcel)
		return &resp, nil
	}
	return nil, shared.Conflict(fmt.Sprintf("Could not allocate a waybill number after %d attempts", maxWaybillAttempts))
}

// Update edits a pending parcel
func (s *ParcelService) Update(ctx context.Context, actor Actor, id uuid.UUID, req ParcelRequest) (*ParcelResponse, error) {
	return s.mutate(ctx, id, func(p *shipping.Parcel) error {
		return p.UpdateDetails(req.details(), actor.UserID)
	})
}

// Delete removes a pending parcel
func (s *ParcelService) Delete(ctx context.Context, id uuid.UUID) error {
	parcel, err := s.parcelRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := parcel.CanDelete(); err != nil {
		return err
	}
	if err := s.parcelRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Parcel deleted", zap.String("waybill", parcel.WaybillNumber))
	return nil
}

// ChangeStatus moves a parcel along the status graph
func (s *ParcelService) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*ParcelResponse, error) {
	next, err := shipping.ParseParcelStatus(status)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(p *shipping.Parcel) error {
		return p.ChangeStatus(next)
	})
}

// RecordPayment stores payment metadata on a parcel
func (s *ParcelService) RecordPayment(ctx context.Context, actor Actor, id uuid.UUID, req ParcelPaymentRequest) (*ParcelResponse, error) {
	return s.mutate(ctx, id, func(p *shipping.Parcel) error {
		return p.RecordPayment(req.AmountPaid, req.PaymentMethods, req.TransactionCode, actor.UserID)
	})
}

// Confirm finalizes pending parcels in bulk. Parcels that are not pending are skipped.
func (s *ParcelService) Confirm(ctx context.Context, ids []uuid.UUID) (*ConfirmResult, error) {
	if len(ids) == 0 {
		return nil, shared.Invalid("At least one parcel is required")
	}
	parcels, err := s.parcelRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := &ConfirmResult{}
	for i := range parcels {
		p := &parcels[i]
		if p.Status != shipping.ParcelStatusPending {
			result.Skipped = append(result.Skipped, p.WaybillNumber)
			continue
		}
		if err := p.Confirm(); err != nil {
			return nil, err
		}
		if err := s.parcelRepo.SaveWithLock(ctx, p); err != nil {
			return nil, err
		}
		result.Confirmed++
	}

	s.logger.Info("Parcels confirmed",
		zap.Int("requested", len(ids)),
		zap.Int("confirmed", result.Confirmed))
	return result, nil
}

// CountForDay returns the number of parcels created on day
func (s *ParcelService) CountForDay(ctx context.Context, day time.Time) (*ParcelCountResponse, error) {
	from, to := shared.DayRange(day)
	count, err := s.parcelRepo.CountCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &ParcelCountResponse{Date: from.Format(time.DateOnly), Count: count}, nil
}

// SalesForDay sums the amounts of parcels created on day
func (s *ParcelService) SalesForDay(ctx context.Context, day time.Time) (*ParcelSalesResponse, error) {
	from, to := shared.DayRange(day)
	sales, err := s.parcelRepo.SalesBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &ParcelSalesResponse{
		Date:        from.Format(time.DateOnly),
		ParcelCount: sales.ParcelCount,
		TotalAmount: sales.TotalAmount,
		TotalPaid:   sales.TotalPaid,
	}, nil
}

// ForDispatch lists parcels that can be loaded, finalized ones by default
func (s *ParcelService) ForDispatch(ctx context.Context, destination string, statuses []shipping.ParcelStatus) ([]ParcelResponse, error) {
	if len(statuses) == 0 {
		statuses = []shipping.ParcelStatus{shipping.ParcelStatusFinalized}
	}
	for _, st := range statuses {
		if st != shipping.ParcelStatusPending && st != shipping.ParcelStatusFinalized {
			return nil, shared.Invalid("Only pending and finalized parcels can be listed for dispatch")
		}
	}
	filter := shared.DefaultFilter()
	filter.PageSize = shared.MaxPageSize
	filter.OrderBy = "created_at"
	filter.OrderDir = "asc"

	parcels, _, err := s.parcelRepo.FindAll(ctx, shipping.ParcelFilter{
		Filter:      filter,
		Statuses:    statuses,
		Destination: destination,
	})
	if err != nil {
		return nil, err
	}
	return toParcelResponses(parcels), nil
}

func (s *ParcelService) mutate(ctx context.Context, id uuid.UUID, fn func(*shipping.Parcel) error) (*ParcelResponse, error) {
	parcel, err := s.parcelRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(parcel); err != nil {
		return nil, err
	}
	if err := s.parcelRepo.SaveWithLock(ctx, parcel); err != nil {
		return nil, err
	}
	resp := ToParcelResponse(parcel)
	return &resp, nil
}

func (s *ParcelService) branchCode(ctx context.Context, branchID *uuid.UUID) (string, error) {
	if branchID == nil {
		return headOfficeCode, nil
	}
	branch, err := s.branchRepo.FindByID(ctx, *branchID)
	if err != nil {
		if shared.IsNotFound(err) {
			return headOfficeCode, nil
		}
		return "", err
	}
	return branch.Code(), nil
}

// endOfDay turns an inclusive calendar day into an exclusive upper bound
func endOfDay(day *time.Time) *time.Time {
	if day == nil {
		return nil
	}
	end := shared.StartOfDay(*day).AddDate(0, 0, 1)
	return &end
}
