package shipping

import (
	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

const (
	EventTypeParcelRegistered = "ParcelRegistered"
	EventTypeDispatchCreated  = "DispatchCreated"

	aggregateTypeParcel   = "Parcel"
	aggregateTypeDispatch = "Dispatch"
)

// ParcelRegisteredEvent is raised when a clerk registers a parcel
type ParcelRegisteredEvent struct {
	shared.BaseDomainEvent
	ParcelID          uuid.UUID `json:"parcel_id"`
	WaybillNumber     string    `json:"waybill_number"`
	Receiver          string    `json:"receiver"`
	ReceiverTelephone string    `json:"receiver_telephone"`
	Destination       string    `json:"destination"`
}

// NewParcelRegisteredEvent creates a new ParcelRegisteredEvent
func NewParcelRegisteredEvent(p *Parcel) *ParcelRegisteredEvent {
	return &ParcelRegisteredEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeParcelRegistered, aggregateTypeParcel, p.ID),
		ParcelID:          p.ID,
		WaybillNumber:     p.WaybillNumber,
		Receiver:          p.Receiver,
		ReceiverTelephone: p.ReceiverTelephone,
		Destination:       p.Destination,
	}
}

// DispatchCreatedEvent is raised when parcels leave on a vehicle
type DispatchCreatedEvent struct {
	shared.BaseDomainEvent
	DispatchID    uuid.UUID   `json:"dispatch_id"`
	DispatchCode  string      `json:"dispatch_code"`
	VehicleNumber string      `json:"vehicle_number"`
	Destination   string      `json:"destination"`
	ParcelIDs     []uuid.UUID `json:"parcel_ids"`
}

// NewDispatchCreatedEvent creates a new DispatchCreatedEvent
func NewDispatchCreatedEvent(d *Dispatch) *DispatchCreatedEvent {
	return &DispatchCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDispatchCreated, aggregateTypeDispatch, d.ID),
		DispatchID:      d.ID,
		DispatchCode:    d.DispatchCode,
		VehicleNumber:   d.VehicleNumber,
		Destination:     d.Destination,
		ParcelIDs:       append([]uuid.UUID(nil), d.ParcelIDs...),
	}
}
