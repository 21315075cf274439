package shipping

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// ParcelStatus is stored as an integer column
type ParcelStatus int

const (
	ParcelStatusPending   ParcelStatus = 0
	ParcelStatusFinalized ParcelStatus = 1
	ParcelStatusInTransit ParcelStatus = 2
	ParcelStatusDelivered ParcelStatus = 3
	ParcelStatusCancelled ParcelStatus = 4
)

var parcelStatusNames = map[ParcelStatus]string{
	ParcelStatusPending:   "pending",
	ParcelStatusFinalized: "finalized",
	ParcelStatusInTransit: "in_transit",
	ParcelStatusDelivered: "delivered",
	ParcelStatusCancelled: "cancelled",
}

// allowed parcel status transitions
var parcelTransitions = map[ParcelStatus][]ParcelStatus{
	ParcelStatusPending:   {ParcelStatusFinalized, ParcelStatusCancelled},
	ParcelStatusFinalized: {ParcelStatusInTransit, ParcelStatusPending, ParcelStatusCancelled},
	ParcelStatusInTransit: {ParcelStatusDelivered},
}

// IsValid checks if the status is known
func (s ParcelStatus) IsValid() bool {
	_, ok := parcelStatusNames[s]
	return ok
}

// String returns the lower-case status name
func (s ParcelStatus) String() string {
	if name, ok := parcelStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// CanTransitionTo reports whether next is reachable from s
func (s ParcelStatus) CanTransitionTo(next ParcelStatus) bool {
	for _, allowed := range parcelTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseParcelStatus accepts either the numeric code or the name ("confirmed" is an alias of finalized)
func ParseParcelStatus(s string) (ParcelStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		status := ParcelStatus(n)
		if status.IsValid() {
			return status, nil
		}
		return 0, shared.Invalid(fmt.Sprintf("Unknown parcel status: %s", s))
	}
	if s == "confirmed" {
		return ParcelStatusFinalized, nil
	}
	for status, name := range parcelStatusNames {
		if name == s {
			return status, nil
		}
	}
	return 0, shared.Invalid(fmt.Sprintf("Unknown parcel status: %s", s))
}

// ParcelDetails is the clerk-entered part of a parcel
type ParcelDetails struct {
	Sender             string
	SenderTelephone    string
	Receiver           string
	ReceiverTelephone  string
	Destination        string
	Quantity           *int
	Description        string
	Amount             *decimal.Decimal
	Rate               *decimal.Decimal
	TotalAmount        *decimal.Decimal
	TotalRate          *decimal.Decimal
	PaymentMethods     string
	ContractCustomerID *uuid.UUID
}

// Parcel is a single consignment received at a branch
type Parcel struct {
	shared.BaseAggregateRoot
	shared.Audited
	WaybillNumber        string
	QRCode               string
	Sender               string
	SenderTelephone      string
	Receiver             string
	ReceiverTelephone    string
	Destination          string
	Quantity             *int
	Description          string
	Amount               *decimal.Decimal
	Rate                 *decimal.Decimal
	PaymentMethods       string
	TotalAmount          decimal.Decimal
	TotalRate            decimal.Decimal
	AmountPaid           *decimal.Decimal
	TransactionCode      string
	PaymentUpdatedAt     *time.Time
	PaymentUpdatedBy     *uuid.UUID
	Status               ParcelStatus
	DispatchedAt         *time.Time
	DispatchTrackingCode string
	ContractCustomerID   *uuid.UUID
}

// NewParcel registers a pending parcel under the given waybill number
func NewParcel(waybill string, details ParcelDetails, createdBy uuid.UUID) (*Parcel, error) {
	if strings.TrimSpace(waybill) == "" {
		return nil, shared.Invalid("Waybill number is required")
	}
	p := &Parcel{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WaybillNumber:     waybill,
		QRCode:            waybill,
		Status:            ParcelStatusPending,
	}
	p.SetCreatedBy(createdBy)
	if err := p.applyDetails(details); err != nil {
		return nil, err
	}
	p.AddDomainEvent(NewParcelRegisteredEvent(p))
	return p, nil
}

// UpdateDetails edits a parcel that has not been confirmed yet
func (p *Parcel) UpdateDetails(details ParcelDetails, updatedBy uuid.UUID) error {
	if p.Status != ParcelStatusPending {
		return shared.InvalidState("Only pending parcels can be edited")
	}
	if err := p.applyDetails(details); err != nil {
		return err
	}
	p.SetUpdatedBy(updatedBy)
	p.touch()
	return nil
}

func (p *Parcel) applyDetails(d ParcelDetails) error {
	required := []struct{ field, value string }{
		{"Sender", d.Sender},
		{"Sender telephone", d.SenderTelephone},
		{"Receiver", d.Receiver},
		{"Receiver telephone", d.ReceiverTelephone},
		{"Destination", d.Destination},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return shared.Invalid(r.field + " is required")
		}
	}
	if d.Quantity != nil && *d.Quantity <= 0 {
		return shared.Invalid("Quantity must be positive")
	}
	for _, v := range []*decimal.Decimal{d.Amount, d.Rate, d.TotalAmount, d.TotalRate} {
		if v != nil && v.IsNegative() {
			return shared.Invalid("Amounts cannot be negative")
		}
	}

	p.Sender = strings.TrimSpace(d.Sender)
	p.SenderTelephone = strings.TrimSpace(d.SenderTelephone)
	p.Receiver = strings.TrimSpace(d.Receiver)
	p.ReceiverTelephone = strings.TrimSpace(d.ReceiverTelephone)
	p.Destination = strings.TrimSpace(d.Destination)
	p.Quantity = d.Quantity
	p.Description = strings.TrimSpace(d.Description)
	p.Amount = d.Amount
	p.Rate = d.Rate
	p.PaymentMethods = strings.TrimSpace(d.PaymentMethods)
	p.ContractCustomerID = d.ContractCustomerID
	p.TotalAmount = lineTotal(d.TotalAmount, d.Amount, d.Quantity)
	p.TotalRate = lineTotal(d.TotalRate, d.Rate, d.Quantity)
	return nil
}

// lineTotal prefers an explicit total, otherwise unit × quantity
func lineTotal(total, unit *decimal.Decimal, qty *int) decimal.Decimal {
	if total != nil {
		return *total
	}
	if unit == nil {
		return decimal.Zero
	}
	q := 1
	if qty != nil {
		q = *qty
	}
	return unit.Mul(decimal.NewFromInt(int64(q)))
}

// ChangeStatus moves the parcel along the status graph
func (p *Parcel) ChangeStatus(next ParcelStatus) error {
	if !next.IsValid() {
		return shared.Invalid("Unknown parcel status")
	}
	if !p.Status.CanTransitionTo(next) {
		return shared.InvalidState(fmt.Sprintf("Cannot change parcel status from %s to %s", p.Status, next))
	}
	if p.Status == ParcelStatusFinalized && next == ParcelStatusPending {
		p.DispatchedAt = nil
		p.DispatchTrackingCode = ""
	}
	p.Status = next
	p.touch()
	return nil
}

// Confirm finalizes a pending parcel
func (p *Parcel) Confirm() error {
	return p.ChangeStatus(ParcelStatusFinalized)
}

// MarkDispatched puts a finalized parcel on a vehicle
func (p *Parcel) MarkDispatched(dispatchCode string, at time.Time) error {
	if p.Status != ParcelStatusFinalized {
		return shared.InvalidState(fmt.Sprintf("Parcel %s is %s, only finalized parcels can be dispatched", p.WaybillNumber, p.Status))
	}
	p.Status = ParcelStatusInTransit
	p.DispatchedAt = &at
	p.DispatchTrackingCode = dispatchCode
	p.touch()
	return nil
}

// RevertDispatch returns an in-transit parcel to the confirmed pool
func (p *Parcel) RevertDispatch() {
	p.Status = ParcelStatusFinalized
	p.DispatchedAt = nil
	p.DispatchTrackingCode = ""
	p.touch()
}

// MarkDelivered completes an in-transit parcel
func (p *Parcel) MarkDelivered() error {
	return p.ChangeStatus(ParcelStatusDelivered)
}

// RecordPayment stores what the sender paid and how
func (p *Parcel) RecordPayment(amountPaid decimal.Decimal, methods, transactionCode string, by uuid.UUID) error {
	if amountPaid.IsNegative() {
		return shared.Invalid("Amount paid cannot be negative")
	}
	if p.Status == ParcelStatusCancelled {
		return shared.InvalidState("Cannot record payment on a cancelled parcel")
	}
	now := time.Now().UTC()
	p.AmountPaid = &amountPaid
	if methods = strings.TrimSpace(methods); methods != "" {
		p.PaymentMethods = methods
	}
	p.TransactionCode = strings.TrimSpace(transactionCode)
	p.PaymentUpdatedAt = &now
	if by != uuid.Nil {
		p.PaymentUpdatedBy = &by
	}
	p.touch()
	return nil
}

// CanDelete only allows removing parcels that never left intake
func (p *Parcel) CanDelete() error {
	if p.Status != ParcelStatusPending {
		return shared.InvalidState("Only pending parcels can be deleted")
	}
	return nil
}

// IsPaid reports whether money was taken or the payment methods mark the parcel as paid.
// The parcel deposit query applies the same rule in SQL.
func (p *Parcel) IsPaid() bool {
	if p.AmountPaid != nil && p.AmountPaid.IsPositive() {
		return true
	}
	return strings.Contains(strings.ToLower(p.PaymentMethods), "paid")
}

func (p *Parcel) touch() {
	p.UpdatedAt = time.Now().UTC()
}

// FormatWaybill builds WB{YYMMDD}{branchCode}{seq:04d}
func FormatWaybill(day time.Time, branchCode string, seq int) string {
	return fmt.Sprintf("WB%s%s%04d", day.Format("060102"), strings.ToUpper(branchCode), seq)
}
