package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ChannelHandler forwards events to a buffered channel so a presentation
// layer can consume them on its own goroutine. It never blocks the emitter:
// when the buffer is full the event is dropped and counted.
type ChannelHandler struct {
	ch      chan *Event
	dropped atomic.Int64
	mu      sync.RWMutex
	closed  bool
	logger  *slog.Logger
}

var _ EventHandler = (*ChannelHandler)(nil)

// NewChannelHandler creates a handler with a buffer of size events.
func NewChannelHandler(size int, logger *slog.Logger) *ChannelHandler {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelHandler{
		ch:     make(chan *Event, size),
		logger: logger.With("component", "event_channel"),
	}
}

// Events returns the receive side of the subscription.
func (h *ChannelHandler) Events() <-chan *Event {
	return h.ch
}

// Dropped returns how many events were discarded because the buffer was full.
func (h *ChannelHandler) Dropped() int64 {
	return h.dropped.Load()
}

// HandleEvent implements EventHandler.
func (h *ChannelHandler) HandleEvent(_ context.Context, event *Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil
	}
	select {
	case h.ch <- event:
	default:
		h.dropped.Add(1)
		h.logger.Warn("event buffer full, dropping event",
			"event_id", event.ID,
			"event_type", event.Type)
	}
	return nil
}

// Close stops delivery and closes the channel. Later events are ignored.
func (h *ChannelHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.closed {
		h.closed = true
		close(h.ch)
	}
}
