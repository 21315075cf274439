package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// ChequeStatus represents the clearing state of a cheque
type ChequeStatus string

const (
	ChequeStatusDeposited ChequeStatus = "deposited"
	ChequeStatusCleared   ChequeStatus = "cleared"
	ChequeStatusBounced   ChequeStatus = "bounced"
	ChequeStatusCancelled ChequeStatus = "cancelled"
)

// IsValid checks if the status is known
func (s ChequeStatus) IsValid() bool {
	switch s {
	case ChequeStatusDeposited, ChequeStatusCleared, ChequeStatusBounced, ChequeStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ChequeStatus
func (s ChequeStatus) String() string {
	return string(s)
}

// ChequeDetails is the data captured when a cheque is banked
type ChequeDetails struct {
	ChequeNumber         string
	DrawerName           string
	BankName             string
	Amount               decimal.Decimal
	DepositDate          time.Time
	RelatedInvoiceID     *uuid.UUID
	RelatedInvoiceNumber string
	ContractCustomerID   *uuid.UUID
	CustomerName         string
	BranchID             *uuid.UUID
	BranchName           string
	Notes                string
}

// ChequeDeposit is a customer cheque banked by the company
type ChequeDeposit struct {
	shared.BaseAggregateRoot
	shared.Audited
	ChequeNumber         string
	DrawerName           string
	BankName             string
	Amount               decimal.Decimal
	DepositDate          time.Time
	ClearanceDate        *time.Time
	Status               ChequeStatus
	RelatedInvoiceNumber string
	RelatedInvoiceID     *uuid.UUID
	ContractCustomerID   *uuid.UUID
	CustomerName         string
	BranchID             *uuid.UUID
	BranchName           string
	Notes                string
	BounceReason         string
}

// NewChequeDeposit records a banked cheque
func NewChequeDeposit(d ChequeDetails, createdBy uuid.UUID) (*ChequeDeposit, error) {
	number := strings.TrimSpace(d.ChequeNumber)
	if number == "" {
		return nil, shared.Invalid("Cheque number is required")
	}
	if len(number) > 50 {
		return nil, shared.Invalid("Cheque number cannot exceed 50 characters")
	}
	if strings.TrimSpace(d.DrawerName) == "" || strings.TrimSpace(d.BankName) == "" {
		return nil, shared.Invalid("Drawer and bank are required")
	}
	if !d.Amount.IsPositive() {
		return nil, shared.Invalid("Cheque amount must be positive")
	}
	if d.DepositDate.IsZero() {
		d.DepositDate = time.Now().UTC()
	}
	c := &ChequeDeposit{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		ChequeNumber:         number,
		DrawerName:           strings.TrimSpace(d.DrawerName),
		BankName:             strings.TrimSpace(d.BankName),
		Amount:               d.Amount,
		DepositDate:          d.DepositDate,
		Status:               ChequeStatusDeposited,
		RelatedInvoiceNumber: d.RelatedInvoiceNumber,
		RelatedInvoiceID:     d.RelatedInvoiceID,
		ContractCustomerID:   d.ContractCustomerID,
		CustomerName:         strings.TrimSpace(d.CustomerName),
		BranchID:             d.BranchID,
		BranchName:           strings.TrimSpace(d.BranchName),
		Notes:                strings.TrimSpace(d.Notes),
	}
	c.SetCreatedBy(createdBy)
	return c, nil
}

// UpdateStatus moves a banked cheque to its outcome. A bounce needs a reason.
func (c *ChequeDeposit) UpdateStatus(status ChequeStatus, clearanceDate *time.Time, bounceReason string, updatedBy uuid.UUID) error {
	if !status.IsValid() {
		return shared.Invalid(fmt.Sprintf("Unknown cheque status: %s", status))
	}
	if c.Status != ChequeStatusDeposited && status != c.Status {
		return shared.InvalidState(fmt.Sprintf("Cheque is already %s", c.Status))
	}
	bounceReason = strings.TrimSpace(bounceReason)
	if status == ChequeStatusBounced && bounceReason == "" {
		return shared.Invalid("Bounce reason is required")
	}
	if clearanceDate == nil && status == ChequeStatusCleared && c.ClearanceDate == nil {
		now := time.Now().UTC()
		clearanceDate = &now
	}
	if clearanceDate != nil {
		c.ClearanceDate = clearanceDate
	}
	c.Status = status
	c.BounceReason = bounceReason
	c.SetUpdatedBy(updatedBy)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// ChequeSummary totals cheque deposits by outcome
type ChequeSummary struct {
	TotalAmount   decimal.Decimal
	ClearedAmount decimal.Decimal
	PendingAmount decimal.Decimal
	BouncedAmount decimal.Decimal
	Count         int64
}
