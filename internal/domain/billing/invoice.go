package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid checks if the status is known
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// AcceptsPayment reports whether payments may be recorded. Drafts and cancelled invoices do not.
func (s InvoiceStatus) AcceptsPayment() bool {
	return s.IsValid() && s != InvoiceStatusDraft && s != InvoiceStatusCancelled
}

// InvoiceItem is one billed parcel
type InvoiceItem struct {
	ID              uuid.UUID
	InvoiceID       uuid.UUID
	ParcelID        *uuid.UUID
	WaybillNumber   string
	Description     string
	Destination     string
	ParcelCreatedAt *time.Time
	Quantity        int
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
}

// NewParcelItem bills one parcel at its total amount
func NewParcelItem(parcelID uuid.UUID, waybill, description, destination string, parcelCreatedAt time.Time, price decimal.Decimal) InvoiceItem {
	if strings.TrimSpace(description) == "" {
		description = "Parcel " + waybill
	}
	return InvoiceItem{
		ID:              uuid.New(),
		ParcelID:        &parcelID,
		WaybillNumber:   waybill,
		Description:     description,
		Destination:     destination,
		ParcelCreatedAt: &parcelCreatedAt,
		Quantity:        1,
		UnitPrice:       price,
		TotalPrice:      price,
	}
}

// Invoice bills a contract customer for a period
type Invoice struct {
	shared.BaseAggregateRoot
	shared.Audited
	InvoiceNumber      string
	ContractCustomerID uuid.UUID
	IssueDate          time.Time
	DueDate            time.Time
	BillingPeriodStart time.Time
	BillingPeriodEnd   time.Time
	Status             InvoiceStatus
	Subtotal           decimal.Decimal
	TaxAmount          decimal.Decimal
	TotalAmount        decimal.Decimal
	PaidAmount         decimal.Decimal
	Notes              string
	Items              []InvoiceItem
}

// InvoiceDates groups the dates that can be edited on a draft
type InvoiceDates struct {
	IssueDate          time.Time
	DueDate            time.Time
	BillingPeriodStart time.Time
	BillingPeriodEnd   time.Time
}

func (d InvoiceDates) validate() error {
	if d.IssueDate.IsZero() || d.DueDate.IsZero() {
		return shared.Invalid("Issue date and due date are required")
	}
	if d.DueDate.Before(d.IssueDate) {
		return shared.Invalid("Due date cannot be before issue date")
	}
	if d.BillingPeriodStart.IsZero() || d.BillingPeriodEnd.IsZero() {
		return shared.Invalid("Billing period is required")
	}
	if d.BillingPeriodEnd.Before(d.BillingPeriodStart) {
		return shared.Invalid("Billing period end cannot be before its start")
	}
	return nil
}

// NewInvoice creates a draft invoice with zero totals
func NewInvoice(number string, customerID uuid.UUID, dates InvoiceDates, notes string, createdBy uuid.UUID) (*Invoice, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.Invalid("Invoice number is required")
	}
	if customerID == uuid.Nil {
		return nil, shared.Invalid("Contract customer is required")
	}
	if err := dates.validate(); err != nil {
		return nil, err
	}
	if len(notes) > 1000 {
		return nil, shared.Invalid("Notes cannot exceed 1000 characters")
	}
	inv := &Invoice{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		InvoiceNumber:      number,
		ContractCustomerID: customerID,
		IssueDate:          dates.IssueDate,
		DueDate:            dates.DueDate,
		BillingPeriodStart: dates.BillingPeriodStart,
		BillingPeriodEnd:   dates.BillingPeriodEnd,
		Status:             InvoiceStatusDraft,
		Subtotal:           decimal.Zero,
		TaxAmount:          decimal.Zero,
		TotalAmount:        decimal.Zero,
		PaidAmount:         decimal.Zero,
		Notes:              notes,
		Items:              make([]InvoiceItem, 0),
	}
	inv.SetCreatedBy(createdBy)
	return inv, nil
}

func (i *Invoice) requireDraft(action string) error {
	if i.Status != InvoiceStatusDraft {
		return shared.InvalidState(fmt.Sprintf("Only draft invoices can be %s", action))
	}
	return nil
}

// UpdateDraft edits dates and notes of a draft invoice
func (i *Invoice) UpdateDraft(dates InvoiceDates, notes string) error {
	if err := i.requireDraft("edited"); err != nil {
		return err
	}
	if err := dates.validate(); err != nil {
		return err
	}
	if len(notes) > 1000 {
		return shared.Invalid("Notes cannot exceed 1000 characters")
	}
	i.IssueDate = dates.IssueDate
	i.DueDate = dates.DueDate
	i.BillingPeriodStart = dates.BillingPeriodStart
	i.BillingPeriodEnd = dates.BillingPeriodEnd
	i.Notes = notes
	i.touch()
	return nil
}

// Dates returns the editable dates
func (i *Invoice) Dates() InvoiceDates {
	return InvoiceDates{
		IssueDate:          i.IssueDate,
		DueDate:            i.DueDate,
		BillingPeriodStart: i.BillingPeriodStart,
		BillingPeriodEnd:   i.BillingPeriodEnd,
	}
}

// AddItems appends items to a draft and recomputes totals
func (i *Invoice) AddItems(items []InvoiceItem, taxRate decimal.Decimal) error {
	if err := i.requireDraft("changed"); err != nil {
		return err
	}
	for _, item := range items {
		if item.ParcelID != nil && i.hasParcel(*item.ParcelID) {
			return shared.Conflict(fmt.Sprintf("Parcel %s is already on this invoice", item.WaybillNumber))
		}
		item.InvoiceID = i.ID
		i.Items = append(i.Items, item)
	}
	i.RecalculateTotals(taxRate)
	return nil
}

// RemoveItem drops one item from a draft and recomputes totals
func (i *Invoice) RemoveItem(itemID uuid.UUID, taxRate decimal.Decimal) error {
	if err := i.requireDraft("changed"); err != nil {
		return err
	}
	for idx, item := range i.Items {
		if item.ID == itemID {
			i.Items = append(i.Items[:idx], i.Items[idx+1:]...)
			i.RecalculateTotals(taxRate)
			return nil
		}
	}
	return shared.NotFound("Invoice item not found")
}

func (i *Invoice) hasParcel(parcelID uuid.UUID) bool {
	for _, item := range i.Items {
		if item.ParcelID != nil && *item.ParcelID == parcelID {
			return true
		}
	}
	return false
}

// RecalculateTotals sets subtotal, tax (rate is a percentage) and total from the items
func (i *Invoice) RecalculateTotals(taxRate decimal.Decimal) {
	subtotal := decimal.Zero
	for _, item := range i.Items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	i.Subtotal = subtotal.Round(2)
	i.TaxAmount = subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
	i.TotalAmount = i.Subtotal.Add(i.TaxAmount)
	i.touch()
}

// Send issues a draft to the customer
func (i *Invoice) Send() error {
	if err := i.requireDraft("sent"); err != nil {
		return err
	}
	i.Status = InvoiceStatusSent
	i.touch()
	return nil
}

// RecordPayment adds to the paid amount and moves the status to partial or paid
func (i *Invoice) RecordPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.Invalid("Payment amount must be positive")
	}
	if !i.Status.AcceptsPayment() {
		return shared.InvalidState(fmt.Sprintf("Cannot record payment on a %s invoice", i.Status))
	}
	i.PaidAmount = i.PaidAmount.Add(amount)
	if i.PaidAmount.GreaterThanOrEqual(i.TotalAmount) {
		i.Status = InvoiceStatusPaid
	} else if i.PaidAmount.IsPositive() {
		i.Status = InvoiceStatusPartial
	}
	i.touch()
	return nil
}

// Cancel voids an invoice that has not been fully paid
func (i *Invoice) Cancel() error {
	switch i.Status {
	case InvoiceStatusPaid:
		return shared.InvalidState("Paid invoices cannot be cancelled")
	case InvoiceStatusCancelled:
		return shared.InvalidState("Invoice is already cancelled")
	}
	i.Status = InvoiceStatusCancelled
	i.touch()
	return nil
}

// CanDelete only allows removing drafts
func (i *Invoice) CanDelete() error {
	return i.requireDraft("deleted")
}

// Outstanding returns total minus paid, never below zero
func (i *Invoice) Outstanding() decimal.Decimal {
	out := i.TotalAmount.Sub(i.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

func (i *Invoice) touch() {
	i.UpdatedAt = time.Now().UTC()
}

// FormatInvoiceNumber builds INV-{YYYYMM}-{seq:04d}
func FormatInvoiceNumber(month time.Time, seq int) string {
	return fmt.Sprintf("INV-%04d%02d-%04d", month.Year(), int(month.Month()), seq)
}
