package billing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/printing"
	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
	"github.com/wms/backend/internal/infrastructure/storage"
)

const maxInvoiceNumberAttempts = 50

// InvoiceService builds and tracks contract customer invoices
type InvoiceService struct {
	invoiceRepo  billing.InvoiceRepository
	customerRepo billing.ContractCustomerRepository
	parcelRepo   shipping.ParcelRepository
	tx           shared.Transactor
	documents    *printing.DocumentService
	storage      storage.ObjectStorage
	presignTTL   time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewInvoiceService creates a new InvoiceService; objects may be nil when storage is disabled
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	customerRepo billing.ContractCustomerRepository,
	parcelRepo shipping.ParcelRepository,
	tx shared.Transactor,
	documents *printing.DocumentService,
	objects storage.ObjectStorage,
	presignTTL time.Duration,
	logger *zap.Logger,
) *InvoiceService {
	if presignTTL <= 0 {
		presignTTL = 15 * time.Minute
	}
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		parcelRepo:   parcelRepo,
		tx:           tx,
		documents:    documents,
		storage:      objects,
		presignTTL:   presignTTL,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// StorageEnabled reports whether rendered invoices are uploaded
func (s *InvoiceService) StorageEnabled() bool {
	return s.storage != nil
}

// List returns invoices matching the filter
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) (*shared.Paginated[InvoiceResponse], error) {
	f := billing.InvoiceFilter{
		Filter:             filter.Filter.Normalize(),
		ContractCustomerID: filter.ContractCustomerID,
		DateFrom:           filter.DateFrom,
		DateTo:             nextDay(filter.DateTo),
	}
	if filter.Status != "" {
		status := billing.InvoiceStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.Invalid("Unknown invoice status: " + filter.Status)
		}
		f.Status = &status
	}

	invoices, total, err := s.invoiceRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(toInvoiceResponses(invoices), total, f.Page, f.PageSize)
	return &page, nil
}

// GetByID returns an invoice with its items
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// ByCustomer returns every invoice of a customer
func (s *InvoiceService) ByCustomer(ctx context.Context, customerID uuid.UUID) ([]InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponses(invoices), nil
}

// Create opens a draft invoice, optionally billing parcels straight away
func (s *InvoiceService) Create(ctx context.Context, actorID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	var inv *billing.Invoice

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		customer, err := s.customerRepo.FindByID(ctx, req.ContractCustomerID)
		if err != nil {
			if shared.IsNotFound(err) {
				return shared.Invalid("Contract customer does not exist")
			}
			return err
		}

		number, err := s.nextNumber(ctx)
		if err != nil {
			return err
		}
		inv, err = billing.NewInvoice(number, customer.ID, billing.InvoiceDates{
			IssueDate:          req.IssueDate,
			DueDate:            req.DueDate,
			BillingPeriodStart: req.BillingPeriodStart,
			BillingPeriodEnd:   req.BillingPeriodEnd,
		}, req.Notes, actorID)
		if err != nil {
			return err
		}

		if len(req.ParcelIDs) > 0 {
			items, err := s.billableItems(ctx, req.ParcelIDs)
			if err != nil {
				return err
			}
			if err := inv.AddItems(items, customer.TaxRate); err != nil {
				return err
			}
		}
		return s.invoiceRepo.Save(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("customer_id", inv.ContractCustomerID.String()),
		zap.Int("items", len(inv.Items)))
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Update edits the dates and notes of a draft
func (s *InvoiceService) Update(ctx context.Context, actorID, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dates := inv.Dates()
	if req.IssueDate != nil {
		dates.IssueDate = *req.IssueDate
	}
	if req.DueDate != nil {
		dates.DueDate = *req.DueDate
	}
	if req.BillingPeriodStart != nil {
		dates.BillingPeriodStart = *req.BillingPeriodStart
	}
	if req.BillingPeriodEnd != nil {
		dates.BillingPeriodEnd = *req.BillingPeriodEnd
	}
	notes := inv.Notes
	if req.Notes != nil {
		notes = *req.Notes
	}

	if err := inv.UpdateDraft(dates, notes); err != nil {
		return nil, err
	}
	inv.SetUpdatedBy(actorID)
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// AddItems bills more parcels on a draft
func (s *InvoiceService) AddItems(ctx context.Context, id uuid.UUID, parcelIDs []uuid.UUID) (*InvoiceResponse, error) {
	if len(parcelIDs) == 0 {
		return nil, shared.Invalid("parcel_ids cannot be empty")
	}
	var inv *billing.Invoice

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoiceRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		customer, err := s.customerRepo.FindByID(ctx, inv.ContractCustomerID)
		if err != nil {
			return err
		}
		items, err := s.billableItems(ctx, parcelIDs)
		if err != nil {
			return err
		}
		if err := inv.AddItems(items, customer.TaxRate); err != nil {
			return err
		}
		return s.invoiceRepo.SaveWithLock(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// RemoveItem drops one line from a draft
func (s *InvoiceService) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (*InvoiceResponse, error) {
	var inv *billing.Invoice

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoiceRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		customer, err := s.customerRepo.FindByID(ctx, inv.ContractCustomerID)
		if err != nil {
			return err
		}
		if err := inv.RemoveItem(itemID, customer.TaxRate); err != nil {
			return err
		}
		return s.invoiceRepo.SaveWithLock(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Send issues a draft
func (s *InvoiceService) Send(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, id, func(inv *billing.Invoice) error { return inv.Send() })
}

// RecordPayment adds a customer payment
func (s *InvoiceService) RecordPayment(ctx context.Context, id uuid.UUID, req InvoicePaymentRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, id, func(inv *billing.Invoice) error { return inv.RecordPayment(req.Amount) })
}

// Cancel voids an invoice that is not yet paid
func (s *InvoiceService) Cancel(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, id, func(inv *billing.Invoice) error { return inv.Cancel() })
}

// Delete removes a draft invoice
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := inv.CanDelete(); err != nil {
		return err
	}
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Invoice deleted", zap.String("invoice_number", inv.InvoiceNumber))
	return nil
}

// UnbilledParcels lists contract parcels not yet on any invoice
func (s *InvoiceService) UnbilledParcels(ctx context.Context, filter UnbilledParcelsFilter) ([]UnbilledParcel, error) {
	f := shared.DefaultFilter()
	f.PageSize = shared.MaxPageSize
	f.OrderDir = "asc"

	parcels, _, err := s.parcelRepo.FindAll(ctx, shipping.ParcelFilter{
		Filter:             f,
		ContractCustomerID: filter.ContractCustomerID,
		DateFrom:           filter.DateFrom,
		DateTo:             nextDay(filter.DateTo),
		Unbilled:           true,
	})
	if err != nil {
		return nil, err
	}
	out := make([]UnbilledParcel, 0, len(parcels))
	for _, p := range parcels {
		if p.ContractCustomerID == nil {
			continue
		}
		out = append(out, UnbilledParcel{
			ID:                 p.ID,
			WaybillNumber:      p.WaybillNumber,
			Destination:        p.Destination,
			Description:        p.Description,
			TotalAmount:        p.TotalAmount,
			ContractCustomerID: p.ContractCustomerID,
			CreatedAt:          p.CreatedAt,
		})
	}
	return out, nil
}

// PDF renders an invoice; with storage enabled the file is also uploaded and a presigned link returned
func (s *InvoiceService) PDF(ctx context.Context, id uuid.UUID) (*InvoicePDF, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.FindByID(ctx, inv.ContractCustomerID)
	if err != nil {
		return nil, err
	}
	doc, err := s.documents.Invoice(ctx, inv, customer)
	if err != nil {
		return nil, err
	}
	out := &InvoicePDF{
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Content:     doc.Content,
	}
	if s.storage == nil || !doc.IsPDF() {
		return out, nil
	}

	key := storage.InvoiceKey(inv.InvoiceNumber)
	if err := s.storage.Put(ctx, key, bytes.NewReader(doc.Content), int64(len(doc.Content)), doc.ContentType); err != nil {
		return nil, fmt.Errorf("upload invoice %s: %w", inv.InvoiceNumber, err)
	}
	url, expires, err := s.storage.PresignGet(ctx, key, s.presignTTL)
	if err != nil {
		return nil, fmt.Errorf("presign invoice %s: %w", inv.InvoiceNumber, err)
	}
	out.StorageKey = key
	out.URL = url
	out.ExpiresAt = expires
	return out, nil
}

func (s *InvoiceService) mutate(ctx context.Context, id uuid.UUID, fn func(*billing.Invoice) error) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(inv); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info("Invoice updated",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("status", string(inv.Status)))
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// billableItems turns parcels into invoice lines, refusing any parcel already billed elsewhere
func (s *InvoiceService) billableItems(ctx context.Context, parcelIDs []uuid.UUID) ([]billing.InvoiceItem, error) {
	billed, err := s.invoiceRepo.BilledParcelIDs(ctx, parcelIDs)
	if err != nil {
		return nil, err
	}
	parcels, err := s.parcelRepo.FindByIDs(ctx, parcelIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]shipping.Parcel, len(parcels))
	for _, p := range parcels {
		byID[p.ID] = p
	}
	if len(billed) > 0 {
		waybill := billed[0].String()
		if p, ok := byID[billed[0]]; ok {
			waybill = p.WaybillNumber
		}
		return nil, shared.Conflict(fmt.Sprintf("Parcel %s is already billed on another invoice", waybill))
	}

	items := make([]billing.InvoiceItem, 0, len(parcelIDs))
	for _, id := range parcelIDs {
		p, ok := byID[id]
		if !ok {
			return nil, shared.Invalid(fmt.Sprintf("Parcel %s does not exist", id))
		}
		items = append(items, billing.NewParcelItem(p.ID, p.WaybillNumber, p.Description, p.Destination, p.CreatedAt, p.TotalAmount))
	}
	return items, nil
}

func (s *InvoiceService) nextNumber(ctx context.Context) (string, error) {
	now := s.now()
	from, to := shared.MonthRange(now)
	count, err := s.invoiceRepo.CountCreatedBetween(ctx, from, to)
	if err != nil {
		return "", err
	}
	for seq := int(count) + 1; seq <= int(count)+maxInvoiceNumberAttempts; seq++ {
		number := billing.FormatInvoiceNumber(now, seq)
		exists, err := s.invoiceRepo.ExistsByNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", errors.New("could not allocate an invoice number")
}

// nextDay turns an inclusive calendar day into an exclusive upper bound
func nextDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	end := shared.StartOfDay(*t).AddDate(0, 0, 1)
	return &end
}
