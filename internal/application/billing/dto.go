package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/shared"
)

// CustomerRequest carries the editable contract customer fields
type CustomerRequest struct {
	Name          string          `json:"name" binding:"required,max=200"`
	CompanyName   string          `json:"company_name" binding:"max=200"`
	Email         string          `json:"email" binding:"omitempty,email,max=200"`
	Phone         string          `json:"phone" binding:"max=50"`
	Address       string          `json:"address" binding:"max=500"`
	ContactPerson string          `json:"contact_person" binding:"max=100"`
	PaymentTerms  string          `json:"payment_terms" binding:"max=50"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
}

func (r CustomerRequest) details() billing.CustomerDetails {
	return billing.CustomerDetails{
		Name:          r.Name,
		CompanyName:   r.CompanyName,
		Email:         r.Email,
		Phone:         r.Phone,
		Address:       r.Address,
		ContactPerson: r.ContactPerson,
		PaymentTerms:  r.PaymentTerms,
		TaxRate:       r.TaxRate,
	}
}

// CustomerResponse is the API view of a contract customer
type CustomerResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	CompanyName    string          `json:"company_name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	ContactPerson  string          `json:"contact_person"`
	ContractNumber string          `json:"contract_number"`
	PaymentTerms   string          `json:"payment_terms"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ToCustomerResponse converts a domain customer to its API view
func ToCustomerResponse(c *billing.ContractCustomer) CustomerResponse {
	return CustomerResponse{
		ID:             c.ID,
		Name:           c.Name,
		CompanyName:    c.CompanyName,
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		ContactPerson:  c.ContactPerson,
		ContractNumber: c.ContractNumber,
		PaymentTerms:   c.PaymentTerms,
		TaxRate:        c.TaxRate,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
}

// CustomerListFilter contains the query options for listing customers
type CustomerListFilter struct {
	shared.Filter
	IncludeInactive bool
}

// DeleteResult reports whether a delete removed the row or only deactivated it
type DeleteResult struct {
	Deactivated bool `json:"deactivated"`
}

// CreateInvoiceRequest contains the input for creating an invoice
type CreateInvoiceRequest struct {
	ContractCustomerID uuid.UUID   `json:"contract_customer_id" binding:"required"`
	IssueDate          time.Time   `json:"issue_date" binding:"required"`
	DueDate            time.Time   `json:"due_date" binding:"required"`
	BillingPeriodStart time.Time   `json:"billing_period_start" binding:"required"`
	BillingPeriodEnd   time.Time   `json:"billing_period_end" binding:"required"`
	Notes              string      `json:"notes" binding:"max=1000"`
	ParcelIDs          []uuid.UUID `json:"parcel_ids"`
}

// UpdateInvoiceRequest edits a draft; nil fields keep their value
type UpdateInvoiceRequest struct {
	IssueDate          *time.Time `json:"issue_date"`
	DueDate            *time.Time `json:"due_date"`
	BillingPeriodStart *time.Time `json:"billing_period_start"`
	BillingPeriodEnd   *time.Time `json:"billing_period_end"`
	Notes              *string    `json:"notes" binding:"omitempty,max=1000"`
}

// InvoiceListFilter contains the query options for listing invoices
type InvoiceListFilter struct {
	shared.Filter
	Status             string
	ContractCustomerID *uuid.UUID
	DateFrom           *time.Time
	DateTo             *time.Time // inclusive calendar day
}

// UnbilledParcelsFilter selects contract parcels not yet on an invoice
type UnbilledParcelsFilter struct {
	ContractCustomerID *uuid.UUID
	DateFrom           *time.Time
	DateTo             *time.Time // inclusive calendar day
}

// InvoiceItemResponse is the API view of an invoice line
type InvoiceItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	ParcelID        *uuid.UUID      `json:"parcel_id,omitempty"`
	WaybillNumber   string          `json:"waybill_number"`
	Description     string          `json:"description"`
	Destination     string          `json:"destination"`
	ParcelCreatedAt *time.Time      `json:"parcel_created_at,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
}

// InvoiceResponse is the API view of an invoice
type InvoiceResponse struct {
	ID                 uuid.UUID             `json:"id"`
	InvoiceNumber      string                `json:"invoice_number"`
	ContractCustomerID uuid.UUID             `json:"contract_customer_id"`
	IssueDate          time.Time             `json:"issue_date"`
	DueDate            time.Time             `json:"due_date"`
	BillingPeriodStart time.Time             `json:"billing_period_start"`
	BillingPeriodEnd   time.Time             `json:"billing_period_end"`
	Status             string                `json:"status"`
	Subtotal           decimal.Decimal       `json:"subtotal"`
	TaxAmount          decimal.Decimal       `json:"tax_amount"`
	TotalAmount        decimal.Decimal       `json:"total_amount"`
	PaidAmount         decimal.Decimal       `json:"paid_amount"`
	Outstanding        decimal.Decimal       `json:"outstanding"`
	Notes              string                `json:"notes"`
	Items              []InvoiceItemResponse `json:"items"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
	Version            int                   `json:"version"`
}

// ToInvoiceResponse converts a domain invoice to its API view
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = InvoiceItemResponse{
			ID:              it.ID,
			ParcelID:        it.ParcelID,
			WaybillNumber:   it.WaybillNumber,
			Description:     it.Description,
			Destination:     it.Destination,
			ParcelCreatedAt: it.ParcelCreatedAt,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			TotalPrice:      it.TotalPrice,
		}
	}
	return InvoiceResponse{
		ID:                 inv.ID,
		InvoiceNumber:      inv.InvoiceNumber,
		ContractCustomerID: inv.ContractCustomerID,
		IssueDate:          inv.IssueDate,
		DueDate:            inv.DueDate,
		BillingPeriodStart: inv.BillingPeriodStart,
		BillingPeriodEnd:   inv.BillingPeriodEnd,
		Status:             string(inv.Status),
		Subtotal:           inv.Subtotal,
		TaxAmount:          inv.TaxAmount,
		TotalAmount:        inv.TotalAmount,
		PaidAmount:         inv.PaidAmount,
		Outstanding:        inv.Outstanding(),
		Notes:              inv.Notes,
		Items:              items,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
		Version:            inv.Version,
	}
}

func toInvoiceResponses(invoices []billing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out
}

// UnbilledParcel is a contract parcel that can still be invoiced
type UnbilledParcel struct {
	ID                 uuid.UUID       `json:"id"`
	WaybillNumber      string          `json:"waybill_number"`
	Destination        string          `json:"destination"`
	Description        string          `json:"description"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	ContractCustomerID *uuid.UUID      `json:"contract_customer_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// InvoicePDF is a rendered invoice, plus a download link when it was stored
type InvoicePDF struct {
	Filename    string
	ContentType string
	Content     []byte
	StorageKey  string
	URL         string
	ExpiresAt   time.Time
}

// InvoicePaymentRequest records money received against an invoice
type InvoicePaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// InvoiceItemsRequest lists the parcels to bill on a draft
type InvoiceItemsRequest struct {
	ParcelIDs []uuid.UUID `json:"parcel_ids" binding:"required,min=1"`
}
