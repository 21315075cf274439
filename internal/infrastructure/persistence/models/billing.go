package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/billing"
)

// ContractCustomerModel is the persistence model for the ContractCustomer domain entity.
type ContractCustomerModel struct {
	AggregateModel
	AuditModel
	Name           string          `gorm:"type:varchar(200);not null"`
	CompanyName    string          `gorm:"type:varchar(200)"`
	Email          string          `gorm:"type:varchar(200)"`
	Phone          string          `gorm:"type:varchar(50)"`
	Address        string          `gorm:"type:varchar(500)"`
	ContactPerson  string          `gorm:"type:varchar(200)"`
	ContractNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	PaymentTerms   string          `gorm:"type:varchar(50);not null;default:'Net 30'"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	IsActive       bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ContractCustomerModel) TableName() string {
	return "contract_customers"
}

// ToDomain converts the persistence model to a domain ContractCustomer entity.
func (m *ContractCustomerModel) ToDomain() *billing.ContractCustomer {
	return &billing.ContractCustomer{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Audited:           m.ToAudited(),
		Name:              m.Name,
		CompanyName:       m.CompanyName,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		ContactPerson:     m.ContactPerson,
		ContractNumber:    m.ContractNumber,
		PaymentTerms:      m.PaymentTerms,
		TaxRate:           m.TaxRate,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain ContractCustomer entity.
func (m *ContractCustomerModel) FromDomain(c *billing.ContractCustomer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.FromDomainAudited(c.Audited)
	m.Name = c.Name
	m.CompanyName = c.CompanyName
	m.Email = c.Email
	m.Phone = c.Phone
	m.Address = c.Address
	m.ContactPerson = c.ContactPerson
	m.ContractNumber = c.ContractNumber
	m.PaymentTerms = c.PaymentTerms
	m.TaxRate = c.TaxRate
	m.IsActive = c.IsActive
}

// ContractCustomerModelFromDomain creates a new persistence model from a domain entity.
func ContractCustomerModelFromDomain(c *billing.ContractCustomer) *ContractCustomerModel {
	m := &ContractCustomerModel{}
	m.FromDomain(c)
	return m
}

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	AuditModel
	InvoiceNumber      string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	ContractCustomerID uuid.UUID             `gorm:"type:uuid;not null;index"`
	IssueDate          time.Time             `gorm:"not null;index"`
	DueDate            time.Time             `gorm:"not null"`
	BillingPeriodStart time.Time             `gorm:"not null"`
	BillingPeriodEnd   time.Time             `gorm:"not null"`
	Status             billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Subtotal           decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount          decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount        decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	PaidAmount         decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Notes              string                `gorm:"type:text"`
	Items              []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice aggregate.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	items := make([]billing.InvoiceItem, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].ToDomain()
	}
	return &billing.Invoice{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		Audited:            m.ToAudited(),
		InvoiceNumber:      m.InvoiceNumber,
		ContractCustomerID: m.ContractCustomerID,
		IssueDate:          m.IssueDate,
		DueDate:            m.DueDate,
		BillingPeriodStart: m.BillingPeriodStart,
		BillingPeriodEnd:   m.BillingPeriodEnd,
		Status:             m.Status,
		Subtotal:           m.Subtotal,
		TaxAmount:          m.TaxAmount,
		TotalAmount:        m.TotalAmount,
		PaidAmount:         m.PaidAmount,
		Notes:              m.Notes,
		Items:              items,
	}
}

// FromDomain populates the persistence model from a domain Invoice aggregate.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.FromDomainAudited(inv.Audited)
	m.InvoiceNumber = inv.InvoiceNumber
	m.ContractCustomerID = inv.ContractCustomerID
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.BillingPeriodStart = inv.BillingPeriodStart
	m.BillingPeriodEnd = inv.BillingPeriodEnd
	m.Status = inv.Status
	m.Subtotal = inv.Subtotal
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.Notes = inv.Notes
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i].FromDomain(inv.Items[i])
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for an invoice line.
type InvoiceItemModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	InvoiceID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_items_invoice_parcel"`
	ParcelID        *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_invoice_items_invoice_parcel;index"`
	WaybillNumber   string     `gorm:"type:varchar(50)"`
	Description     string     `gorm:"type:varchar(500);not null"`
	Destination     string     `gorm:"type:varchar(100)"`
	ParcelCreatedAt *time.Time
	Quantity        int             `gorm:"not null;default:1"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem.
func (m *InvoiceItemModel) ToDomain() billing.InvoiceItem {
	return billing.InvoiceItem{
		ID:              m.ID,
		InvoiceID:       m.InvoiceID,
		ParcelID:        m.ParcelID,
		WaybillNumber:   m.WaybillNumber,
		Description:     m.Description,
		Destination:     m.Destination,
		ParcelCreatedAt: m.ParcelCreatedAt,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		TotalPrice:      m.TotalPrice,
	}
}

// FromDomain populates the persistence model from a domain InvoiceItem.
func (m *InvoiceItemModel) FromDomain(it billing.InvoiceItem) {
	m.ID = it.ID
	m.InvoiceID = it.InvoiceID
	m.ParcelID = it.ParcelID
	m.WaybillNumber = it.WaybillNumber
	m.Description = it.Description
	m.Destination = it.Destination
	m.ParcelCreatedAt = it.ParcelCreatedAt
	m.Quantity = it.Quantity
	m.UnitPrice = it.UnitPrice
	m.TotalPrice = it.TotalPrice
}
