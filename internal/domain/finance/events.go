package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

const (
	EventTypeLedgerChanged  = "LedgerChanged"
	EventTypeExpenseDecided = "ExpenseDecided"
)

// LedgerChangedEvent is raised after a branch's running debt was re-walked
type LedgerChangedEvent struct {
	shared.BaseDomainEvent
	Branch         string          `json:"branch"`
	FromDate       time.Time       `json:"from_date"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Updated        int             `json:"updated"`
}

// NewLedgerChangedEvent creates a new LedgerChangedEvent
func NewLedgerChangedEvent(recordID uuid.UUID, branch string, from time.Time, closing decimal.Decimal, updated int) *LedgerChangedEvent {
	return &LedgerChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerChanged, "BranchDeposit", recordID),
		Branch:          branch,
		FromDate:        from,
		ClosingBalance:  closing,
		Updated:         updated,
	}
}

// ExpenseDecidedEvent is raised when an expense is approved or rejected
type ExpenseDecidedEvent struct {
	shared.BaseDomainEvent
	ExpenseID uuid.UUID       `json:"expense_id"`
	Decision  ExpenseStatus   `json:"decision"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
}

// NewExpenseDecidedEvent creates a new ExpenseDecidedEvent
func NewExpenseDecidedEvent(e *DailyExpense) *ExpenseDecidedEvent {
	return &ExpenseDecidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseDecided, "DailyExpense", e.ID),
		ExpenseID:       e.ID,
		Decision:        e.Status,
		Amount:          e.Amount,
		Date:            e.Date,
	}
}
