package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// ContractCustomerFilter defines filtering options for customer queries
type ContractCustomerFilter struct {
	shared.Filter
	IncludeInactive bool
}

// ContractCustomerRepository defines persistence for contract customers
type ContractCustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ContractCustomer, error)
	FindAll(ctx context.Context, filter ContractCustomerFilter) ([]ContractCustomer, int64, error)
	// ExistsByName and ExistsByEmail compare case-insensitively
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
	FindContractNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
	Save(ctx context.Context, customer *ContractCustomer) error
	SaveWithLock(ctx context.Context, customer *ContractCustomer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	Status             *InvoiceStatus
	ContractCustomerID *uuid.UUID
	DateFrom           *time.Time // issue_date >= DateFrom
	DateTo             *time.Time // issue_date < DateTo
}

// InvoiceRepository defines persistence for invoices and their items
type InvoiceRepository interface {
	// FindByID loads the invoice with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, int64, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]Invoice, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	// BilledParcelIDs returns the subset of parcelIDs already on any invoice
	BilledParcelIDs(ctx context.Context, parcelIDs []uuid.UUID) ([]uuid.UUID, error)
	// Save upserts the invoice and replaces its items
	Save(ctx context.Context, invoice *Invoice) error
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}
