// Package testutil provides helpers shared by the integration suites: fakes
// for the outbound edges of the server and polling assertions for work done
// on the event bus.
package testutil

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/domain/shared"
)

// SMS is one message handed to a RecordingSMS
type SMS struct {
	To      string
	Message string
}

// RecordingSMS is an SMS sender that keeps every message in memory
type RecordingSMS struct {
	mu       sync.Mutex
	messages []SMS
	err      error
}

// NewRecordingSMS creates an empty recorder
func NewRecordingSMS() *RecordingSMS {
	return &RecordingSMS{}
}

func (s *RecordingSMS) Send(_ context.Context, to, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, SMS{To: to, Message: message})
	return nil
}

// Fail makes every following Send return err
func (s *RecordingSMS) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Messages returns a copy of the recorded messages
func (s *RecordingSMS) Messages() []SMS {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SMS, len(s.messages))
	copy(out, s.messages)
	return out
}

// Containing returns the recorded messages whose text contains substr
func (s *RecordingSMS) Containing(substr string) []SMS {
	var out []SMS
	for _, m := range s.Messages() {
		if strings.Contains(m.Message, substr) {
			out = append(out, m)
		}
	}
	return out
}

// RecordingHandler is an event handler that keeps what it was given
type RecordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
}

// NewRecordingHandler subscribes to eventTypes
func NewRecordingHandler(eventTypes ...string) *RecordingHandler {
	return &RecordingHandler{eventTypes: eventTypes}
}

func (h *RecordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *RecordingHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, e)
	return nil
}

// Handled returns a copy of the handled events
func (h *RecordingHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.handled))
	copy(out, h.handled)
	return out
}

// Count returns how many events of eventType were handled; an empty type counts all
func (h *RecordingHandler) Count(eventType string) int {
	n := 0
	for _, e := range h.Handled() {
		if eventType == "" || e.EventType() == eventType {
			n++
		}
	}
	return n
}

// RequireEventually polls condition until it holds or timeout passes
func RequireEventually(t *testing.T, condition func() bool, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Fail(t, "condition not met within "+timeout.String(), msgAndArgs...)
}

// NewTestUUID derives a stable UUID from seed
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("wms-test/"+seed))
}
