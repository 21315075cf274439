package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

// ParcelLookup loads the parcels of a dispatch
type ParcelLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]shipping.Parcel, error)
}

// ParcelNotificationHandler texts receivers when their parcel is registered
// and when it leaves on a vehicle. Wrap it in an idempotent handler so a
// redelivered event does not text twice.
type ParcelNotificationHandler struct {
	sender  SMSSender
	parcels ParcelLookup
	logger  *zap.Logger
}

func NewParcelNotificationHandler(sender SMSSender, parcels ParcelLookup, logger *zap.Logger) *ParcelNotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParcelNotificationHandler{sender: sender, parcels: parcels, logger: logger}
}

func (h *ParcelNotificationHandler) EventTypes() []string {
	return []string{shipping.EventTypeParcelRegistered, shipping.EventTypeDispatchCreated}
}

func (h *ParcelNotificationHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	switch ev := e.(type) {
	case *shipping.ParcelRegisteredEvent:
		return h.send(ctx, ev.ReceiverTelephone, RegisteredMessage(ev.WaybillNumber, ev.Destination))
	case *shipping.DispatchCreatedEvent:
		return h.dispatched(ctx, ev)
	default:
		return nil
	}
}

func (h *ParcelNotificationHandler) dispatched(ctx context.Context, ev *shipping.DispatchCreatedEvent) error {
	parcels, err := h.parcels.FindByIDs(ctx, ev.ParcelIDs)
	if err != nil {
		return fmt.Errorf("load parcels of dispatch %s: %w", ev.DispatchCode, err)
	}
	var errs []error
	for _, p := range parcels {
		if err := h.send(ctx, p.ReceiverTelephone, DispatchedMessage(p.WaybillNumber, ev.VehicleNumber)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.WaybillNumber, err))
		}
	}
	return errors.Join(errs...)
}

func (h *ParcelNotificationHandler) send(ctx context.Context, to, message string) error {
	if strings.TrimSpace(to) == "" {
		return nil
	}
	if err := h.sender.Send(ctx, to, message); err != nil {
		if errors.Is(err, ErrInvalidRecipient) {
			h.logger.Warn("skipping sms to invalid number", zap.String("to", to))
			return nil
		}
		return err
	}
	return nil
}

// RegisteredMessage is the text sent when a parcel is registered
func RegisteredMessage(waybill, destination string) string {
	return fmt.Sprintf("Parcel %s registered for %s", waybill, destination)
}

// DispatchedMessage is the text sent when a parcel leaves on a vehicle
func DispatchedMessage(waybill, vehicle string) string {
	return fmt.Sprintf("Parcel %s is on the way, vehicle %s", waybill, vehicle)
}

var _ shared.EventHandler = (*ParcelNotificationHandler)(nil)
