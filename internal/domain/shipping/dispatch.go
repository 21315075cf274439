package shipping

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// DispatchStatus represents the state of a dispatch
type DispatchStatus string

const (
	DispatchStatusDispatched DispatchStatus = "dispatched"
	DispatchStatusArrived    DispatchStatus = "arrived"
	DispatchStatusCancelled  DispatchStatus = "cancelled"
)

// IsValid checks if the status is known
func (s DispatchStatus) IsValid() bool {
	switch s {
	case DispatchStatusDispatched, DispatchStatusArrived, DispatchStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of DispatchStatus
func (s DispatchStatus) String() string {
	return string(s)
}

// Dispatch groups parcels travelling on one vehicle
type Dispatch struct {
	shared.BaseAggregateRoot
	shared.Audited
	DispatchCode  string
	SourceBranch  string
	Destination   string
	VehicleNumber string
	Driver        string
	ParcelIDs     []uuid.UUID
	DispatchTime  time.Time
	Status        DispatchStatus
}

// NewDispatch creates a dispatch in the dispatched state
func NewDispatch(code, sourceBranch, destination, vehicleNumber, driver string, parcelIDs []uuid.UUID, createdBy uuid.UUID) (*Dispatch, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.Invalid("Dispatch code is required")
	}
	if strings.TrimSpace(sourceBranch) == "" {
		return nil, shared.Invalid("Source branch is required")
	}
	if strings.TrimSpace(vehicleNumber) == "" {
		return nil, shared.Invalid("Vehicle number is required")
	}
	if strings.TrimSpace(driver) == "" {
		return nil, shared.Invalid("Driver is required")
	}
	if len(parcelIDs) == 0 {
		return nil, shared.Invalid("A dispatch needs at least one parcel")
	}
	seen := make(map[uuid.UUID]struct{}, len(parcelIDs))
	for _, id := range parcelIDs {
		if _, dup := seen[id]; dup {
			return nil, shared.Invalid(fmt.Sprintf("Parcel %s is listed twice", id))
		}
		seen[id] = struct{}{}
	}

	d := &Dispatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DispatchCode:      code,
		SourceBranch:      strings.TrimSpace(sourceBranch),
		Destination:       strings.TrimSpace(destination),
		VehicleNumber:     strings.ToUpper(strings.TrimSpace(vehicleNumber)),
		Driver:            strings.TrimSpace(driver),
		ParcelIDs:         append([]uuid.UUID(nil), parcelIDs...),
		Status:            DispatchStatusDispatched,
	}
	d.DispatchTime = d.CreatedAt
	d.SetCreatedBy(createdBy)
	d.AddDomainEvent(NewDispatchCreatedEvent(d))
	return d, nil
}

// MarkArrived closes a dispatch whose vehicle reached its destination
func (d *Dispatch) MarkArrived() error {
	return d.changeStatus(DispatchStatusArrived)
}

// Cancel aborts a dispatch that has not arrived
func (d *Dispatch) Cancel() error {
	return d.changeStatus(DispatchStatusCancelled)
}

// ChangeStatus applies a status by name
func (d *Dispatch) ChangeStatus(next DispatchStatus) error {
	switch next {
	case DispatchStatusArrived:
		return d.MarkArrived()
	case DispatchStatusCancelled:
		return d.Cancel()
	default:
		return shared.Invalid(fmt.Sprintf("Cannot set dispatch status to %q", next))
	}
}

func (d *Dispatch) changeStatus(next DispatchStatus) error {
	if d.Status != DispatchStatusDispatched {
		return shared.InvalidState(fmt.Sprintf("Dispatch is already %s", d.Status))
	}
	d.Status = next
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// FormatDispatchCode builds DSP-{YYYYMMDD}-{seq:03d}
func FormatDispatchCode(day time.Time, seq int) string {
	return fmt.Sprintf("DSP-%s-%03d", day.Format("20060102"), seq)
}
