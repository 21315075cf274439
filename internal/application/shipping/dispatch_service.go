package shipping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/event"
	"github.com/wms/backend/internal/application/printing"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

const maxDispatchCodeAttempts = 20

// DispatchService groups finalized parcels onto vehicles
type DispatchService struct {
	dispatchRepo shipping.DispatchRepository
	parcelRepo   shipping.ParcelRepository
	tx           shared.Transactor
	documents    *printing.DocumentService
	publisher    shared.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(
	dispatchRepo shipping.DispatchRepository,
	parcelRepo shipping.ParcelRepository,
	tx shared.Transactor,
	documents *printing.DocumentService,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *DispatchService {
	return &DispatchService{
		dispatchRepo: dispatchRepo,
		parcelRepo:   parcelRepo,
		tx:           tx,
		documents:    documents,
		publisher:    publisher,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// List returns dispatches matching the filter
func (s *DispatchService) List(ctx context.Context, filter DispatchListFilter) (*shared.Paginated[DispatchResponse], error) {
	f := shipping.DispatchFilter{
		Filter:       filter.Filter.Normalize(),
		Destination:  filter.Destination,
		SourceBranch: filter.SourceBranch,
		DateFrom:     filter.DateFrom,
		DateTo:       endOfDay(filter.DateTo),
	}
	if filter.Status != "" {
		status := shipping.DispatchStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.Invalid("Unknown dispatch status: " + filter.Status)
		}
		f.Status = &status
	}

	dispatches, total, err := s.dispatchRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]DispatchResponse, len(dispatches))
	for i := range dispatches {
		items[i] = ToDispatchResponse(&dispatches[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// GetByID returns a dispatch with its parcels
func (s *DispatchService) GetByID(ctx context.Context, id uuid.UUID) (*DispatchResponse, error) {
	d, err := s.dispatchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	parcels, err := s.parcelRepo.FindByIDs(ctx, d.ParcelIDs)
	if err != nil {
		return nil, err
	}
	resp := ToDispatchResponse(d)
	resp.Parcels = toParcelResponses(parcels)
	return &resp, nil
}

// Create loads finalized parcels onto a new dispatch in one transaction
func (s *DispatchService) Create(ctx context.Context, actor Actor, req CreateDispatchRequest) (*DispatchResponse, error) {
	var (
		dispatch *shipping.Dispatch
		parcels  []shipping.Parcel
	)

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		parcels, err = s.loadParcels(ctx, req.ParcelIDs)
		if err != nil {
			return err
		}
		for i := range parcels {
			if parcels[i].Status != shipping.ParcelStatusFinalized {
				return shared.Invalid(fmt.Sprintf("Parcel %s is %s, only finalized parcels can be dispatched",
					parcels[i].WaybillNumber, parcels[i].Status))
			}
		}

		code, err := s.nextCode(ctx)
		if err != nil {
			return err
		}
		dispatch, err = shipping.NewDispatch(code, req.SourceBranch, req.Destination, req.VehicleNumber, req.Driver, req.ParcelIDs, actor.UserID)
		if err != nil {
			return err
		}

		for i := range parcels {
			if err := parcels[i].MarkDispatched(code, dispatch.DispatchTime); err != nil {
				return err
			}
			if err := s.parcelRepo.SaveWithLock(ctx, &parcels[i]); err != nil {
				return err
			}
		}
		return s.dispatchRepo.Save(ctx, dispatch)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Dispatch created",
		zap.String("dispatch_code", dispatch.DispatchCode),
		zap.String("vehicle", dispatch.VehicleNumber),
		zap.Int("parcels", len(parcels)))
	event.PublishPending(ctx, s.publisher, s.logger, dispatch)

	resp := ToDispatchResponse(dispatch)
	resp.Parcels = toParcelResponses(parcels)
	return &resp, nil
}

// ChangeStatus closes a dispatch as arrived or cancelled and moves its parcels accordingly
func (s *DispatchService) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*DispatchResponse, error) {
	next := shipping.DispatchStatus(status)
	var dispatch *shipping.Dispatch

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		dispatch, err = s.dispatchRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := dispatch.ChangeStatus(next); err != nil {
			return err
		}

		parcels, err := s.parcelRepo.FindByIDs(ctx, dispatch.ParcelIDs)
		if err != nil {
			return err
		}
		for i := range parcels {
			p := &parcels[i]
			// parcels moved on by hand since loading are left alone
			if p.Status != shipping.ParcelStatusInTransit || p.DispatchTrackingCode != dispatch.DispatchCode {
				continue
			}
			if next == shipping.DispatchStatusArrived {
				if err := p.MarkDelivered(); err != nil {
					return err
				}
			} else {
				p.RevertDispatch()
			}
			if err := s.parcelRepo.SaveWithLock(ctx, p); err != nil {
				return err
			}
		}
		return s.dispatchRepo.SaveWithLock(ctx, dispatch)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Dispatch status changed",
		zap.String("dispatch_code", dispatch.DispatchCode),
		zap.String("status", string(dispatch.Status)))
	resp := ToDispatchResponse(dispatch)
	return &resp, nil
}

// Note renders the dispatch note listing every parcel on the vehicle
func (s *DispatchService) Note(ctx context.Context, id uuid.UUID) (*printing.Document, error) {
	d, err := s.dispatchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	parcels, err := s.parcelRepo.FindByIDs(ctx, d.ParcelIDs)
	if err != nil {
		return nil, err
	}
	ptrs := make([]*shipping.Parcel, len(parcels))
	for i := range parcels {
		ptrs[i] = &parcels[i]
	}
	return s.documents.DispatchNote(ctx, d, ptrs)
}

// loadParcels returns the parcels in request order, failing on any missing ID
func (s *DispatchService) loadParcels(ctx context.Context, ids []uuid.UUID) ([]shipping.Parcel, error) {
	if len(ids) == 0 {
		return nil, shared.Invalid("A dispatch needs at least one parcel")
	}
	found, err := s.parcelRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]shipping.Parcel, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]shipping.Parcel, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, shared.Invalid(fmt.Sprintf("Parcel %s does not exist", id))
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *DispatchService) nextCode(ctx context.Context) (string, error) {
	today := s.now()
	from, to := shared.DayRange(today)
	count, err := s.dispatchRepo.CountCreatedBetween(ctx, from, to)
	if err != nil {
		return "", err
	}
	for seq := int(count) + 1; seq <= int(count)+maxDispatchCodeAttempts; seq++ {
		code := shipping.FormatDispatchCode(today, seq)
		exists, err := s.dispatchRepo.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a dispatch code")
}
