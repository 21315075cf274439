package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/finance"
)

// BranchDepositModel is one dated row of a branch's running-debt ledger.
type BranchDepositModel struct {
	AggregateModel
	AuditModel
	Branch        string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_branch_deposits_branch_date"`
	Date          time.Time       `gorm:"not null;uniqueIndex:idx_branch_deposits_branch_date"`
	CodTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DepositAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	RunningDebt   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (BranchDepositModel) TableName() string {
	return "branch_deposits"
}

// ToDomain converts the persistence model to a domain BranchDeposit.
func (m *BranchDepositModel) ToDomain() *finance.BranchDeposit {
	return &finance.BranchDeposit{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Audited:           m.ToAudited(),
		Branch:            m.Branch,
		Date:              m.Date,
		CodTotal:          m.CodTotal,
		DepositAmount:     m.DepositAmount,
		RunningDebt:       m.RunningDebt,
	}
}

// FromDomain populates the persistence model from a domain BranchDeposit.
func (m *BranchDepositModel) FromDomain(d *finance.BranchDeposit) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.FromDomainAudited(d.Audited)
	m.Branch = d.Branch
	m.Date = d.Date
	m.CodTotal = d.CodTotal
	m.DepositAmount = d.DepositAmount
	m.RunningDebt = d.RunningDebt
}

// BranchDepositModelFromDomain creates a new persistence model from a domain entity.
func BranchDepositModelFromDomain(d *finance.BranchDeposit) *BranchDepositModel {
	m := &BranchDepositModel{}
	m.FromDomain(d)
	return m
}

// ParcelDepositModel records what a clerk banked against one parcel.
type ParcelDepositModel struct {
	AggregateModel
	AuditModel
	ParcelID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	DepositedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Expenses        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Notes           string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ParcelDepositModel) TableName() string {
	return "parcel_deposits"
}

// ToDomain converts the persistence model to a domain ParcelDeposit.
func (m *ParcelDepositModel) ToDomain() *finance.ParcelDeposit {
	return &finance.ParcelDeposit{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Audited:           m.ToAudited(),
		ParcelID:          m.ParcelID,
		DepositedAmount:   m.DepositedAmount,
		Expenses:          m.Expenses,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain ParcelDeposit.
func (m *ParcelDepositModel) FromDomain(d *finance.ParcelDeposit) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.FromDomainAudited(d.Audited)
	m.ParcelID = d.ParcelID
	m.DepositedAmount = d.DepositedAmount
	m.Expenses = d.Expenses
	m.Notes = d.Notes
}

// CODCollectionModel is the persistence model for a dispatch's COD collection.
type CODCollectionModel struct {
	AggregateModel
	AuditModel
	DispatchID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	DispatchCode    string          `gorm:"type:varchar(50);not null"`
	DriverName      string          `gorm:"type:varchar(200)"`
	VehicleNumber   string          `gorm:"type:varchar(50)"`
	BranchID        *uuid.UUID      `gorm:"type:uuid;index"`
	BranchName      string          `gorm:"type:varchar(100)"`
	TotalCODAmount  decimal.Decimal `gorm:"column:total_cod_amount;type:decimal(18,2);not null"`
	DepositedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Shortfall       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CollectionDate  time.Time       `gorm:"not null;index"`
	DepositDate     *time.Time
	Status          finance.CODStatus `gorm:"type:varchar(20);not null;default:'collected';index"`
	Notes           string            `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CODCollectionModel) TableName() string {
	return "cod_collections"
}

// ToDomain converts the persistence model to a domain CODCollection.
func (m *CODCollectionModel) ToDomain() *finance.CODCollection {
	return &finance.CODCollection{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Audited:           m.ToAudited(),
		DispatchID:        m.DispatchID,
		DispatchCode:      m.DispatchCode,
		DriverName:        m.DriverName,
		VehicleNumber:     m.VehicleNumber,
		BranchID:          m.BranchID,
		BranchName:        m.BranchName,
		TotalCODAmount:    m.TotalCODAmount,
		DepositedAmount:   m.DepositedAmount,
		Shortfall:         m.Shortfall,
		CollectionDate:    m.CollectionDate,
		DepositDate:       m.DepositDate,
		Status:            m.Status,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain CODCollection.
func (m *CODCollectionModel) FromDomain(c *finance.CODCollection) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.FromDomainAudited(c.Audited)
	m.DispatchID = c.DispatchID
	m.DispatchCode = c.DispatchCode
	m.DriverName = c.DriverName
	m.VehicleNumber = c.VehicleNumber
	m.BranchID = c.BranchID
	m.BranchName = c.BranchName
	m.TotalCODAmount = c.TotalCODAmount
	m.DepositedAmount = c.DepositedAmount
	m.Shortfall = c.Shortfall
	m.CollectionDate = c.CollectionDate
	m.DepositDate = c.DepositDate
	m.Status = c.Status
	m.Notes = c.Notes
}

// ChequeDepositModel is the persistence model for a banked customer cheque.
type ChequeDepositModel struct {
	AggregateModel
	AuditModel
	ChequeNumber         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	DrawerName           string          `gorm:"type:varchar(200);not null"`
	BankName             string          `gorm:"type:varchar(200);not null"`
	Amount               decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DepositDate          time.Time       `gorm:"not null;index"`
	ClearanceDate        *time.Time
	Status               finance.ChequeStatus `gorm:"type:varchar(20);not null;default:'deposited';index"`
	RelatedInvoiceNumber string               `gorm:"type:varchar(50)"`
	RelatedInvoiceID     *uuid.UUID           `gorm:"type:uuid"`
	ContractCustomerID   *uuid.UUID           `gorm:"type:uuid;index"`
	CustomerName         string               `gorm:"type:varchar(200)"`
	BranchID             *uuid.UUID           `gorm:"type:uuid"`
	BranchName           string               `gorm:"type:varchar(100)"`
	Notes                string               `gorm:"type:text"`
	BounceReason         string               `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ChequeDepositModel) TableName() string {
	return "cheque_deposits"
}

// ToDomain converts the persistence model to a domain ChequeDeposit.
func (m *ChequeDepositModel) ToDomain() *finance.ChequeDeposit {
	return &finance.ChequeDeposit{
		BaseAggregateRoot:    m.ToAggregateRoot(),
		Audited:              m.ToAudited(),
		ChequeNumber:         m.ChequeNumber,
		DrawerName:           m.DrawerName,
		BankName:             m.BankName,
		Amount:               m.Amount,
		DepositDate:          m.DepositDate,
		ClearanceDate:        m.ClearanceDate,
		Status:               m.Status,
		RelatedInvoiceNumber: m.RelatedInvoiceNumber,
		RelatedInvoiceID:     m.RelatedInvoiceID,
		ContractCustomerID:   m.ContractCustomerID,
		CustomerName:         m.CustomerName,
		BranchID:             m.BranchID,
		BranchName:           m.BranchName,
		Notes:                m.Notes,
		BounceReason:         m.BounceReason,
	}
}

// FromDomain populates the persistence model from a domain ChequeDeposit.
func (m *ChequeDepositModel) FromDomain(c *finance.ChequeDeposit) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.FromDomainAudited(c.Audited)
	m.ChequeNumber = c.ChequeNumber
	m.DrawerName = c.DrawerName
	m.BankName = c.BankName
	m.Amount = c.Amount
	m.DepositDate = c.DepositDate
	m.ClearanceDate = c.ClearanceDate
	m.Status = c.Status
	m.RelatedInvoiceNumber = c.RelatedInvoiceNumber
	m.RelatedInvoiceID = c.RelatedInvoiceID
	m.ContractCustomerID = c.ContractCustomerID
	m.CustomerName = c.CustomerName
	m.BranchID = c.BranchID
	m.BranchName = c.BranchName
	m.Notes = c.Notes
	m.BounceReason = c.BounceReason
}

// DailyExpenseModel is the persistence model for a branch expense claim.
type DailyExpenseModel struct {
	AggregateModel
	Category        finance.ExpenseCategory `gorm:"type:varchar(50);not null;index"`
	Description     string                  `gorm:"type:varchar(500);not null"`
	Amount          decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	Date            time.Time               `gorm:"not null;index"`
	Vendor          string                  `gorm:"type:varchar(200)"`
	ReceiptNumber   string                  `gorm:"type:varchar(100)"`
	ReceiptKey      string                  `gorm:"type:varchar(500)"`
	Status          finance.ExpenseStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	ApprovalNotes   string                  `gorm:"type:text"`
	RejectionReason string                  `gorm:"type:text"`
	BranchID        *uuid.UUID              `gorm:"type:uuid;index"`
	BranchName      string                  `gorm:"type:varchar(100)"`
	ClerkID         *uuid.UUID              `gorm:"type:uuid;index"`
	ClerkName       string                  `gorm:"type:varchar(200)"`
	CreatedBy       *uuid.UUID              `gorm:"type:uuid"`
	CreatedByName   string                  `gorm:"type:varchar(200)"`
	ApprovedBy      *uuid.UUID              `gorm:"type:uuid"`
	ApprovedByName  string                  `gorm:"type:varchar(200)"`
	ApprovedAt      *time.Time
}

// TableName returns the table name for GORM
func (DailyExpenseModel) TableName() string {
	return "daily_expenses"
}

// ToDomain converts the persistence model to a domain DailyExpense.
func (m *DailyExpenseModel) ToDomain() *finance.DailyExpense {
	return &finance.DailyExpense{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Category:          m.Category,
		Description:       m.Description,
		Amount:            m.Amount,
		Date:              m.Date,
		Vendor:            m.Vendor,
		ReceiptNumber:     m.ReceiptNumber,
		ReceiptKey:        m.ReceiptKey,
		Status:            m.Status,
		ApprovalNotes:     m.ApprovalNotes,
		RejectionReason:   m.RejectionReason,
		BranchID:          m.BranchID,
		BranchName:        m.BranchName,
		ClerkID:           m.ClerkID,
		ClerkName:         m.ClerkName,
		CreatedBy:         m.CreatedBy,
		CreatedByName:     m.CreatedByName,
		ApprovedBy:        m.ApprovedBy,
		ApprovedByName:    m.ApprovedByName,
		ApprovedAt:        m.ApprovedAt,
	}
}

// FromDomain populates the persistence model from a domain DailyExpense.
func (m *DailyExpenseModel) FromDomain(e *finance.DailyExpense) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.Category = e.Category
	m.Description = e.Description
	m.Amount = e.Amount
	m.Date = e.Date
	m.Vendor = e.Vendor
	m.ReceiptNumber = e.ReceiptNumber
	m.ReceiptKey = e.ReceiptKey
	m.Status = e.Status
	m.ApprovalNotes = e.ApprovalNotes
	m.RejectionReason = e.RejectionReason
	m.BranchID = e.BranchID
	m.BranchName = e.BranchName
	m.ClerkID = e.ClerkID
	m.ClerkName = e.ClerkName
	m.CreatedBy = e.CreatedBy
	m.CreatedByName = e.CreatedByName
	m.ApprovedBy = e.ApprovedBy
	m.ApprovedByName = e.ApprovedByName
	m.ApprovedAt = e.ApprovedAt
}
