package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// CODStatus represents where collected cash is in the banking process
type CODStatus string

const (
	CODStatusCollected  CODStatus = "collected"
	CODStatusDeposited  CODStatus = "deposited"
	CODStatusReconciled CODStatus = "reconciled"
)

// IsValid checks if the status is known
func (s CODStatus) IsValid() bool {
	switch s {
	case CODStatusCollected, CODStatusDeposited, CODStatusReconciled:
		return true
	}
	return false
}

// String returns the string representation of CODStatus
func (s CODStatus) String() string {
	return string(s)
}

// DispatchRef is the dispatch data copied onto a collection
type DispatchRef struct {
	ID            uuid.UUID
	Code          string
	DriverName    string
	VehicleNumber string
	BranchID      *uuid.UUID
	BranchName    string
}

// CODCollection is the cash a driver collected on one dispatch
type CODCollection struct {
	shared.BaseAggregateRoot
	shared.Audited
	DispatchID      uuid.UUID
	DispatchCode    string
	DriverName      string
	VehicleNumber   string
	BranchID        *uuid.UUID
	BranchName      string
	TotalCODAmount  decimal.Decimal
	DepositedAmount decimal.Decimal
	Shortfall       decimal.Decimal
	CollectionDate  time.Time
	DepositDate     *time.Time
	Status          CODStatus
	Notes           string
}

// NewCODCollection records the cash collected on a dispatch
func NewCODCollection(dispatch DispatchRef, total decimal.Decimal, collectionDate time.Time, notes string, createdBy uuid.UUID) (*CODCollection, error) {
	if dispatch.ID == uuid.Nil {
		return nil, shared.Invalid("Dispatch is required")
	}
	if total.IsNegative() {
		return nil, shared.Invalid("Total COD amount cannot be negative")
	}
	if collectionDate.IsZero() {
		collectionDate = time.Now().UTC()
	}
	c := &CODCollection{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DispatchID:        dispatch.ID,
		DispatchCode:      dispatch.Code,
		DriverName:        dispatch.DriverName,
		VehicleNumber:     dispatch.VehicleNumber,
		BranchID:          dispatch.BranchID,
		BranchName:        dispatch.BranchName,
		TotalCODAmount:    total,
		DepositedAmount:   decimal.Zero,
		Shortfall:         total,
		CollectionDate:    collectionDate,
		Status:            CODStatusCollected,
		Notes:             strings.TrimSpace(notes),
	}
	c.SetCreatedBy(createdBy)
	return c, nil
}

// RecordDeposit updates what was banked and recomputes the shortfall. Nil notes keep the current ones.
func (c *CODCollection) RecordDeposit(deposited decimal.Decimal, depositDate *time.Time, status CODStatus, notes *string, updatedBy uuid.UUID) error {
	if deposited.IsNegative() {
		return shared.Invalid("Deposited amount cannot be negative")
	}
	if status == "" {
		status = c.Status
	}
	if !status.IsValid() {
		return shared.Invalid(fmt.Sprintf("Unknown COD status: %s", status))
	}
	c.DepositedAmount = deposited
	c.Shortfall = c.TotalCODAmount.Sub(deposited)
	c.Status = status
	if depositDate != nil {
		c.DepositDate = depositDate
	} else if status != CODStatusCollected && c.DepositDate == nil {
		now := time.Now().UTC()
		c.DepositDate = &now
	}
	if notes != nil {
		c.Notes = strings.TrimSpace(*notes)
	}
	c.SetUpdatedBy(updatedBy)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// CODSummary totals COD collections
type CODSummary struct {
	TotalCollected decimal.Decimal
	TotalDeposited decimal.Decimal
	TotalShortfall decimal.Decimal
	Count          int64
}
