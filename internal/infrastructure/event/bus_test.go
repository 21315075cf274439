package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Parcel", uuid.New()),
		Data:            "test data",
	}
}

type testHandler struct {
	eventTypes []string
	mu         sync.Mutex
	handled    []shared.DomainEvent
	err        error
	panics     bool
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, e)
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_PublishBeforeStartIsSynchronous(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("ParcelRegistered")
	bus.Subscribe(handler)

	e := newTestEvent("ParcelRegistered")
	require.NoError(t, bus.Publish(context.Background(), e, newTestEvent("ParcelRegistered")))

	assert.Equal(t, 2, handler.count())
	assert.Equal(t, e, handler.handled[0])
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	parcels := newTestHandler("ParcelRegistered")
	dispatches := newTestHandler("DispatchCreated")
	all := newTestHandler()
	bus.Subscribe(parcels)
	bus.Subscribe(dispatches)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("ParcelRegistered")))

	assert.Equal(t, 1, parcels.count())
	assert.Equal(t, 0, dispatches.count())
	assert.Equal(t, 1, all.count())
}

func TestInMemoryEventBus_FailingHandlersDoNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := newTestHandler("X")
	failing.err = errors.New("handler error")
	panicking := newTestHandler("X")
	panicking.panics = true
	healthy := newTestHandler("X")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("X"))

	require.NoError(t, err)
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, panicking.count())
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("X")
	bus.Subscribe(handler)

	_ = bus.Publish(context.Background(), newTestEvent("X"))
	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent("X"))

	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_StopDrainsQueue(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithWorkers(2))
	handler := newTestHandler("X")
	bus.Subscribe(handler)
	require.NoError(t, bus.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 50; i++ {
		require.NoError(t, bus.Publish(ctx, newTestEvent("X")))
	}
	// deliveries survive the publishing request being cancelled
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, bus.Stop(stopCtx))

	assert.Equal(t, 50, handler.count())
	assert.ErrorIs(t, bus.Publish(context.Background(), newTestEvent("X")), ErrBusStopped)
	assert.NoError(t, bus.Stop(stopCtx), "second stop is a no-op")
}

func TestInMemoryEventBus_StartIsIdempotent(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))
	assert.ErrorIs(t, bus.Start(context.Background()), ErrBusStopped)
}
