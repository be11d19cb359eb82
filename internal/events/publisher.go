package events

import (
	"context"
	"sync"
	"time"

	"insurance-voice-agent/internal/observability"

	"github.com/google/uuid"
)

// EventTypeEscalationVerdict is published when the background escalation
// analysis completes and a follow-up message is ready for the caller.
const EventTypeEscalationVerdict = "escalation.verdict"

// AgentEvent is a message for the frontend driving a live voice session.
type AgentEvent struct {
	ID        string                 `json:"id"`
	SessionID string                 `json:"session_id"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// Publisher fans agent events out to per-session subscribers. Publishing
// never blocks: a subscriber that cannot keep up has the event dropped.
type Publisher struct {
	logger *observability.Logger

	mu          sync.RWMutex
	subscribers map[string]map[chan AgentEvent]struct{}
}

// NewPublisher creates an event publisher.
func NewPublisher(logger *observability.Logger) *Publisher {
	return &Publisher{
		logger:      logger,
		subscribers: make(map[string]map[chan AgentEvent]struct{}),
	}
}

// Subscribe registers a subscriber for one session's events. The returned
// cancel function must be called to release the subscription.
func (p *Publisher) Subscribe(sessionID string) (<-chan AgentEvent, func()) {
	ch := make(chan AgentEvent, 16)

	p.mu.Lock()
	if p.subscribers[sessionID] == nil {
		p.subscribers[sessionID] = make(map[chan AgentEvent]struct{})
	}
	p.subscribers[sessionID][ch] = struct{}{}
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		if subs, ok := p.subscribers[sessionID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(p.subscribers, sessionID)
			}
		}
		p.mu.Unlock()
	}

	return ch, cancel
}

// Publish delivers the event to every subscriber of its session. The event
// ID and timestamp are assigned here.
func (p *Publisher) Publish(ctx context.Context, event AgentEvent) {
	event.ID = uuid.New().String()
	event.Timestamp = time.Now().UTC().Format(time.RFC3339)

	p.mu.RLock()
	defer p.mu.RUnlock()

	subs := p.subscribers[event.SessionID]
	if len(subs) == 0 {
		p.logger.Info(observability.WithFields(ctx,
			observability.Field{Key: "session_id", Value: event.SessionID},
			observability.Field{Key: "event_type", Value: event.Type},
		), "no subscriber for session event")
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
			p.logger.Warn(observability.WithFields(ctx,
				observability.Field{Key: "session_id", Value: event.SessionID},
			), "subscriber queue full, dropping event")
		}
	}
}
