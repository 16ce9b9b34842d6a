package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/types"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus(zap.NewNop(), 16)

	var completed, failed atomic.Int32
	bus.SubscribeFunc(SwapCompleted, func(ctx context.Context, e Event) error {
		completed.Add(1)
		return nil
	})
	sub := bus.SubscribeFunc(SwapFailed, func(ctx context.Context, e Event) error {
		failed.Add(1)
		return nil
	})
	assert.Equal(t, 1, bus.HandlerCount(SwapFailed))

	require.NoError(t, bus.Publish(NewSwapFinished(time.Now(), types.NewResult(types.StatusSuccess, "ok"))))
	require.NoError(t, bus.Publish(NewSwapFinished(time.Now(), types.NewResult(types.StatusFailed, "vm error"))))

	require.Eventually(t, func() bool {
		return completed.Load() == 1 && failed.Load() == 1
	}, time.Second, 5*time.Millisecond)

	sub.Unsubscribe()
	assert.Equal(t, 0, bus.HandlerCount(SwapFailed))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Shutdown(ctx))

	assert.ErrorIs(t, bus.Publish(NewSwapFinished(time.Now(), types.NewResult(types.StatusSuccess, ""))), ErrBusClosed)
}

func TestPublishSyncCollectsHandlerErrors(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)
	defer bus.Shutdown(context.Background())

	boom := errors.New("boom")
	bus.SubscribeFunc(SwapStarted, func(ctx context.Context, e Event) error { return boom })

	err := bus.PublishSync(context.Background(), &SwapStartedEvent{BaseEvent: BaseEvent{EventType: SwapStarted}})
	assert.ErrorIs(t, err, boom)
}

func TestNewSwapFinishedType(t *testing.T) {
	tests := []struct {
		status types.ExecutionStatus
		want   EventType
	}{
		{types.StatusSuccess, SwapCompleted},
		{types.StatusSent, SwapCompleted},
		{types.StatusTestMode, SwapCompleted},
		{types.StatusFailed, SwapFailed},
		{types.StatusError, SwapFailed},
		{types.StatusTimeOut, SwapFailed},
	}
	for _, tt := range tests {
		e := NewSwapFinished(time.Now(), types.NewResult(tt.status, "x"))
		assert.Equal(t, tt.want, e.Type(), tt.status.String())
	}
}

func TestBusDeliversInPublishOrder(t *testing.T) {
	bus := NewBus(zap.NewNop(), 64)

	var got []EventType
	record := func(ctx context.Context, e Event) error {
		got = append(got, e.Type())
		return nil
	}
	for _, typ := range []EventType{SwapStarted, SwapLegSubmitted, SwapCompleted} {
		bus.SubscribeFunc(typ, record)
	}

	want := []EventType{SwapStarted, SwapLegSubmitted, SwapLegSubmitted, SwapCompleted}
	for _, typ := range want {
		require.NoError(t, bus.Publish(&BaseEvent{EventType: typ, EventTime: time.Now()}))
	}

	// Shutdown drains the queue before returning
	require.NoError(t, bus.Shutdown(context.Background()))
	assert.Equal(t, want, got)
	assert.Zero(t, bus.Pending())
}

func TestOnFiltersByConcreteType(t *testing.T) {
	var names []string
	h := On(func(ctx context.Context, e *SwapStartedEvent) error {
		names = append(names, e.TaskName)
		return nil
	})

	require.NoError(t, h.Handle(context.Background(), &SwapStartedEvent{TaskName: "a"}))
	require.NoError(t, h.Handle(context.Background(), NewSwapFinished(time.Now(), types.NewResult(types.StatusSent, ""))))
	assert.Equal(t, []string{"a"}, names)
}

func TestShutdownIsIdempotent(t *testing.T) {
	bus := NewBus(zap.NewNop(), 0)
	require.NoError(t, bus.Shutdown(context.Background()))
	require.NoError(t, bus.Shutdown(context.Background()))
	assert.ErrorIs(t, bus.Publish(&BaseEvent{EventType: SwapStarted}), ErrBusClosed)
}
