package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/events"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/storage/models"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/types"
)

func TestMemoryListExecutions(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for _, addr := range []string{"0xa", "0xb", "0xa"} {
		require.NoError(t, m.SaveExecution(ctx, &models.Execution{WalletAddress: addr}))
	}

	all, err := m.ListExecutions(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint(3), all[0].ID, "newest first")

	onlyA, err := m.ListExecutions(ctx, "0xa", 1)
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, uint(3), onlyA[0].ID)
}

func TestRecorderWritesEvents(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	bus := events.NewBus(zap.NewNop(), 16)
	r := NewRecorder("run-1", zap.NewNop(), m)
	require.Len(t, r.Subscribe(bus), 3)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, bus.PublishSync(ctx, &events.LegSubmittedEvent{
		BaseEvent:  events.BaseEvent{EventType: events.SwapLegSubmitted, EventTime: now},
		TaskName:   "apt-usdc",
		WalletName: "main",
		Direction:  events.DirectionForward,
		Status:     types.StatusSuccess,
		TxHash:     "0x1",
		AmountIn:   decimal.RequireFromString("1.5"),
		AmountOut:  decimal.RequireFromString("12.34"),
	}))

	fin := events.NewSwapFinished(now, &types.ExecutionResult{Status: types.StatusSuccess, Info: "ok", TxHash: "0x1"})
	fin.TaskName = "apt-usdc"
	fin.WalletAddress = "0xa"
	fin.Duration = 90 * time.Second
	require.NoError(t, bus.PublishSync(ctx, fin))

	legs := m.Legs()
	require.Len(t, legs, 1)
	assert.Equal(t, "forward", legs[0].Direction)
	assert.True(t, legs[0].AmountOut.Equal(decimal.RequireFromString("12.34")))

	execs, err := m.ListExecutions(ctx, "0xa", 10)
	require.NoError(t, err)
	require.Len(t, execs, 1)
	e := execs[0]
	assert.Equal(t, "run-1", e.RunID)
	assert.Equal(t, "success", e.Status)
	assert.Equal(t, int64(90_000), e.DurationMs)
	assert.Equal(t, now.Add(-90*time.Second), e.StartedAt)

	require.NoError(t, bus.Shutdown(ctx))
}
