package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/task"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/wallet"
)

func TestNewWritesConsoleAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	var console bytes.Buffer

	cfg := DefaultConfig()
	cfg.LogFile = path
	cfg.Compress = false

	l, err := newLogger(cfg, zapcore.AddSync(&console))
	require.NoError(t, err)

	w, err := wallet.NewWallet("main", "9bf49a6a0755f953811fce125f2683d50429c3bb49e074147e0089a52eae155f")
	require.NoError(t, err)

	child := l.WithWallet(w).WithTask(&task.SwapTask{
		Name:        "roundtrip",
		Module:      task.ModulePancake,
		InputToken:  "aptos",
		OutputToken: "usdc",
		Slippage:    0.5,
		Amount:      task.AmountSpec{MinAmount: decimal.NewFromInt(1)},
	})
	child.Info("Swap started")
	l.Debug("hidden at info level")
	// children never own the file
	require.NoError(t, child.Close())
	require.NoError(t, l.Close())

	assert.Contains(t, console.String(), "Swap started")
	assert.NotContains(t, console.String(), "hidden at info level")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "Swap started", entry["msg"])
	assert.Equal(t, "roundtrip", entry["task_name"])
	assert.Equal(t, "usdc", entry["output_token"])
	assert.Equal(t, "main", entry["wallet"])
	assert.Equal(t, w.ShortAddress(), entry["address"])
	assert.Contains(t, entry, "timestamp")
}

func TestTrackPerformanceUsesOneCorrelationID(t *testing.T) {
	var console bytes.Buffer
	cfg := &Config{Development: true}
	l, err := newLogger(cfg, zapcore.AddSync(&console))
	require.NoError(t, err)

	l.TrackPerformance("run_tasks")()
	l.TrackPerformance("run_tasks")()

	lines := strings.Split(strings.TrimSpace(console.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Starting operation")
	assert.Contains(t, lines[1], "Operation completed")

	uuidRe := regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	id := func(line string) string {
		require.Contains(t, line, "correlation_id")
		return uuidRe.FindString(line)
	}
	assert.NotEmpty(t, id(lines[0]))
	assert.Equal(t, id(lines[0]), id(lines[1]))
	assert.NotEqual(t, id(lines[0]), id(lines[2]))
}
