package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// ExpenseCategory classifies branch running costs
type ExpenseCategory string

const (
	ExpenseCategoryFuel           ExpenseCategory = "fuel"
	ExpenseCategoryCasualLabor    ExpenseCategory = "casual_labor"
	ExpenseCategoryHiredCars      ExpenseCategory = "hired_cars"
	ExpenseCategoryMaintenance    ExpenseCategory = "maintenance"
	ExpenseCategoryOfficeSupplies ExpenseCategory = "office_supplies"
	ExpenseCategoryUtilities      ExpenseCategory = "utilities"
	ExpenseCategoryTransport      ExpenseCategory = "transport"
	ExpenseCategoryOther          ExpenseCategory = "other"
)

// IsValid checks if the category is known
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryFuel, ExpenseCategoryCasualLabor, ExpenseCategoryHiredCars,
		ExpenseCategoryMaintenance, ExpenseCategoryOfficeSupplies, ExpenseCategoryUtilities,
		ExpenseCategoryTransport, ExpenseCategoryOther:
		return true
	}
	return false
}

// String returns the string representation of ExpenseCategory
func (c ExpenseCategory) String() string {
	return string(c)
}

// ExpenseStatus represents the approval state of an expense
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "pending"
	ExpenseStatusApproved ExpenseStatus = "approved"
	ExpenseStatusRejected ExpenseStatus = "rejected"
)

// IsValid checks if the status is known
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseStatusPending, ExpenseStatusApproved, ExpenseStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of ExpenseStatus
func (s ExpenseStatus) String() string {
	return string(s)
}

// Actor identifies who performed an action, with the display name kept for reports
type Actor struct {
	ID   uuid.UUID
	Name string
}

// ExpenseDetails is the editable part of an expense
type ExpenseDetails struct {
	Category      ExpenseCategory
	Description   string
	Amount        decimal.Decimal
	Date          time.Time
	Vendor        string
	ReceiptNumber string
	BranchID      *uuid.UUID
	BranchName    string
	ClerkID       *uuid.UUID
	ClerkName     string
}

// DailyExpense is a branch cost awaiting or past approval
type DailyExpense struct {
	shared.BaseAggregateRoot
	Category        ExpenseCategory
	Description     string
	Amount          decimal.Decimal
	Date            time.Time
	Vendor          string
	ReceiptNumber   string
	ReceiptKey      string
	Status          ExpenseStatus
	ApprovalNotes   string
	RejectionReason string
	BranchID        *uuid.UUID
	BranchName      string
	ClerkID         *uuid.UUID
	ClerkName       string
	CreatedBy       *uuid.UUID
	CreatedByName   string
	ApprovedBy      *uuid.UUID
	ApprovedByName  string
	ApprovedAt      *time.Time
}

// NewDailyExpense creates a pending expense
func NewDailyExpense(details ExpenseDetails, creator Actor) (*DailyExpense, error) {
	e := &DailyExpense{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            ExpenseStatusPending,
		CreatedByName:     creator.Name,
	}
	if creator.ID != uuid.Nil {
		id := creator.ID
		e.CreatedBy = &id
	}
	if err := e.apply(details); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *DailyExpense) apply(d ExpenseDetails) error {
	if !d.Category.IsValid() {
		return shared.Invalid(fmt.Sprintf("Unknown expense category: %s", d.Category))
	}
	desc := strings.TrimSpace(d.Description)
	if desc == "" {
		return shared.Invalid("Description is required")
	}
	if len(desc) > 500 {
		return shared.Invalid("Description cannot exceed 500 characters")
	}
	if !d.Amount.IsPositive() {
		return shared.Invalid("Amount must be positive")
	}
	if d.Date.IsZero() {
		d.Date = time.Now().UTC()
	}
	e.Category = d.Category
	e.Description = desc
	e.Amount = d.Amount
	e.Date = shared.StartOfDay(d.Date)
	e.Vendor = strings.TrimSpace(d.Vendor)
	e.ReceiptNumber = strings.TrimSpace(d.ReceiptNumber)
	e.BranchID = d.BranchID
	e.BranchName = strings.TrimSpace(d.BranchName)
	e.ClerkID = d.ClerkID
	e.ClerkName = strings.TrimSpace(d.ClerkName)
	return nil
}

// Details returns the editable fields as currently recorded
func (e *DailyExpense) Details() ExpenseDetails {
	return ExpenseDetails{
		Category:      e.Category,
		Description:   e.Description,
		Amount:        e.Amount,
		Date:          e.Date,
		Vendor:        e.Vendor,
		ReceiptNumber: e.ReceiptNumber,
		BranchID:      e.BranchID,
		BranchName:    e.BranchName,
		ClerkID:       e.ClerkID,
		ClerkName:     e.ClerkName,
	}
}

func (e *DailyExpense) requirePending(action string) error {
	if e.Status != ExpenseStatusPending {
		return shared.InvalidState(fmt.Sprintf("Only pending expenses can be %s", action))
	}
	return nil
}

// Update edits a pending expense
func (e *DailyExpense) Update(details ExpenseDetails) error {
	if err := e.requirePending("edited"); err != nil {
		return err
	}
	if err := e.apply(details); err != nil {
		return err
	}
	e.touch()
	return nil
}

// Approve accepts a pending expense
func (e *DailyExpense) Approve(approver Actor, notes string) error {
	if err := e.requirePending("approved"); err != nil {
		return err
	}
	e.decide(ExpenseStatusApproved, approver)
	e.ApprovalNotes = strings.TrimSpace(notes)
	return nil
}

// Reject declines a pending expense. A reason is required.
func (e *DailyExpense) Reject(approver Actor, reason string) error {
	if err := e.requirePending("rejected"); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.Invalid("Rejection reason is required")
	}
	e.decide(ExpenseStatusRejected, approver)
	e.RejectionReason = reason
	return nil
}

func (e *DailyExpense) decide(status ExpenseStatus, approver Actor) {
	now := time.Now().UTC()
	e.Status = status
	if approver.ID != uuid.Nil {
		id := approver.ID
		e.ApprovedBy = &id
	}
	e.ApprovedByName = approver.Name
	e.ApprovedAt = &now
	e.touch()
	e.AddDomainEvent(NewExpenseDecidedEvent(e))
}

// CanDelete only allows removing pending expenses
func (e *DailyExpense) CanDelete() error {
	return e.requirePending("deleted")
}

// AttachReceipt stores the object key of an uploaded receipt
func (e *DailyExpense) AttachReceipt(key string) {
	e.ReceiptKey = key
	e.touch()
}

func (e *DailyExpense) touch() {
	e.UpdatedAt = time.Now().UTC()
}

// CategoryTotal is one line of the approved-expense breakdown
type CategoryTotal struct {
	Category ExpenseCategory
	Amount   decimal.Decimal
	Count    int64
}

// ExpenseSummary totals expenses by status
type ExpenseSummary struct {
	TotalExpenses     decimal.Decimal
	PendingExpenses   decimal.Decimal
	ApprovedExpenses  decimal.Decimal
	RejectedExpenses  decimal.Decimal
	MonthlyTotal      decimal.Decimal
	CategoryBreakdown []CategoryTotal
}
