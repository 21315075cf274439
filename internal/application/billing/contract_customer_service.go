package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/shared"
)

// ContractCustomerService manages customers billed on contract
type ContractCustomerService struct {
	customerRepo billing.ContractCustomerRepository
	invoiceRepo  billing.InvoiceRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewContractCustomerService creates a new ContractCustomerService
func NewContractCustomerService(
	customerRepo billing.ContractCustomerRepository,
	invoiceRepo billing.InvoiceRepository,
	logger *zap.Logger,
) *ContractCustomerService {
	return &ContractCustomerService{
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// List returns customers ordered by name
func (s *ContractCustomerService) List(ctx context.Context, filter CustomerListFilter) (*shared.Paginated[CustomerResponse], error) {
	f := filter.Filter
	if f.OrderBy == "" {
		f.OrderBy = "name"
		f.OrderDir = "asc"
	}
	f = f.Normalize()

	customers, total, err := s.customerRepo.FindAll(ctx, billing.ContractCustomerFilter{
		Filter:          f,
		IncludeInactive: filter.IncludeInactive,
	})
	if err != nil {
		return nil, err
	}
	items := make([]CustomerResponse, len(customers))
	for i := range customers {
		items[i] = ToCustomerResponse(&customers[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// GetByID returns one customer
func (s *ContractCustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// Create registers a customer under the next contract number of the year
func (s *ContractCustomerService) Create(ctx context.Context, actorID uuid.UUID, req CustomerRequest) (*CustomerResponse, error) {
	if err := s.ensureUnique(ctx, req, nil); err != nil {
		return nil, err
	}

	year := s.now().Year()
	existing, err := s.customerRepo.FindContractNumbersWithPrefix(ctx, billing.ContractNumberPrefix(year))
	if err != nil {
		return nil, err
	}
	number := billing.FormatContractNumber(year, billing.NextContractSequence(existing))

	c, err := billing.NewContractCustomer(number, req.details(), actorID)
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Contract customer created",
		zap.String("customer_id", c.ID.String()),
		zap.String("contract_number", c.ContractNumber))
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// Update replaces the editable fields of a customer
func (s *ContractCustomerService) Update(ctx context.Context, actorID, id uuid.UUID, req CustomerRequest) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, req, &id); err != nil {
		return nil, err
	}
	if err := c.Update(req.details(), actorID); err != nil {
		return nil, err
	}
	if err := s.customerRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// Delete removes a customer, or deactivates it when invoices reference it
func (s *ContractCustomerService) Delete(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.invoiceRepo.CountByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if count > 0 {
		c.Deactivate()
		if err := s.customerRepo.SaveWithLock(ctx, c); err != nil {
			return nil, err
		}
		s.logger.Info("Contract customer deactivated",
			zap.String("customer_id", id.String()),
			zap.Int64("invoices", count))
		return &DeleteResult{Deactivated: true}, nil
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info("Contract customer deleted", zap.String("customer_id", id.String()))
	return &DeleteResult{}, nil
}

// Invoices returns every invoice of a customer
func (s *ContractCustomerService) Invoices(ctx context.Context, id uuid.UUID) ([]InvoiceResponse, error) {
	if _, err := s.customerRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.FindByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponses(invoices), nil
}

func (s *ContractCustomerService) ensureUnique(ctx context.Context, req CustomerRequest, excludeID *uuid.UUID) error {
	exists, err := s.customerRepo.ExistsByName(ctx, strings.TrimSpace(req.Name), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.Conflict("A contract customer with this name already exists")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil
	}
	exists, err = s.customerRepo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.Conflict("A contract customer with this email already exists")
	}
	return nil
}
