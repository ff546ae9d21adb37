package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event, err := NewEvent(TypeErrorCountChanged, ErrorCountPayload{Count: 1})
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event, err := NewEvent(TypeErrorCountChanged, ErrorCountPayload{Count: 2})
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Equal(t, event, handler1.LastEvent)
		assert.Equal(t, event, handler2.LastEvent)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)

		successHandler := &MockEventHandler{}
		failingHandler := &MockEventHandler{HandlerError: errors.New("handler error")}
		emitter.RegisterHandler(failingHandler)
		emitter.RegisterHandler(successHandler)

		event, err := NewEvent(TypeErrorCountChanged, ErrorCountPayload{Count: 3})
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.EqualError(t, err, "handler error")

		assert.Equal(t, 1, successHandler.HandledCount)
		assert.Equal(t, 1, failingHandler.HandledCount)
	})

	t.Run("failures from several handlers are joined", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		first := errors.New("first")
		second := errors.New("second")
		emitter.RegisterHandler(&MockEventHandler{HandlerError: first})
		emitter.RegisterHandler(&MockEventHandler{HandlerError: second})

		event, err := NewEvent(TypeErrorCountChanged, ErrorCountPayload{Count: 1})
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.ErrorIs(t, err, first)
		assert.ErrorIs(t, err, second)
	})

	t.Run("handlers only see subscribed types", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		clearedOnly := &MockEventHandler{}
		everything := &MockEventHandler{}
		emitter.RegisterHandler(clearedOnly, TypeErrorQueueCleared)
		emitter.RegisterHandler(everything)

		counted, err := NewEvent(TypeErrorCountChanged, ErrorCountPayload{Count: 1})
		require.NoError(t, err)
		cleared, err := NewEvent(TypeErrorQueueCleared, ErrorCountPayload{})
		require.NoError(t, err)

		require.NoError(t, emitter.EmitEvent(context.Background(), counted))
		require.NoError(t, emitter.EmitEvent(context.Background(), cleared))

		assert.Equal(t, 1, clearedOnly.HandledCount)
		assert.Same(t, cleared, clearedOnly.LastEvent)
		assert.Equal(t, 2, everything.HandledCount)
	})
}

func TestChannelHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("delivers in order", func(t *testing.T) {
		h := NewChannelHandler(4, logger)
		emitter := NewInMemoryEventEmitter(logger)
		emitter.RegisterHandler(h)

		first, _ := NewEvent(TypeErrorCountChanged, ErrorCountPayload{Count: 1})
		second, _ := NewEvent(TypeErrorQueueCleared, ErrorCountPayload{})
		require.NoError(t, emitter.EmitEvent(ctx, first))
		require.NoError(t, emitter.EmitEvent(ctx, second))

		assert.Same(t, first, <-h.Events())
		assert.Same(t, second, <-h.Events())
		assert.Zero(t, h.Dropped())
	})

	t.Run("drops when full", func(t *testing.T) {
		h := NewChannelHandler(1, logger)
		event, _ := NewEvent(TypeErrorCountChanged, ErrorCountPayload{Count: 1})

		require.NoError(t, h.HandleEvent(ctx, event))
		require.NoError(t, h.HandleEvent(ctx, event))

		assert.Equal(t, int64(1), h.Dropped())
		assert.Len(t, h.Events(), 1)
	})

	t.Run("close is idempotent and stops delivery", func(t *testing.T) {
		h := NewChannelHandler(1, logger)
		h.Close()
		h.Close()

		event, _ := NewEvent(TypeErrorCountChanged, ErrorCountPayload{Count: 1})
		assert.NoError(t, h.HandleEvent(ctx, event))

		_, open := <-h.Events()
		assert.False(t, open)
	})
}
