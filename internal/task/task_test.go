package task

import (
	"math/big"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validTask() *SwapTask {
	return &SwapTask{
		Name:        "apt-usdc",
		Module:      ModulePancake,
		WalletName:  "main",
		InputToken:  "aptos",
		OutputToken: "usdc",
		Slippage:    1,
		MinDelaySec: 1,
		MaxDelaySec: 5,
		Amount: AmountSpec{
			MinAmount: decimal.RequireFromString("0.1"),
			MaxAmount: decimal.RequireFromString("0.2"),
		},
	}
}

func TestSwapTaskValidate(t *testing.T) {
	require.NoError(t, validTask().Validate())

	tests := []struct {
		name   string
		mutate func(*SwapTask)
	}{
		{"empty name", func(t *SwapTask) { t.Name = "" }},
		{"no wallet", func(t *SwapTask) { t.WalletName = "" }},
		{"unknown module", func(t *SwapTask) { t.Module = "liquid_swap" }},
		{"same tokens", func(t *SwapTask) { t.OutputToken = "APTOS" }},
		{"slippage above 100", func(t *SwapTask) { t.Slippage = 101 }},
		{"negative slippage", func(t *SwapTask) { t.Slippage = -1 }},
		{"min delay above max", func(t *SwapTask) { t.MinDelaySec = 10 }},
		{"negative delay", func(t *SwapTask) { t.MinDelaySec = -1 }},
		{"zero amount", func(t *SwapTask) { t.Amount.MinAmount = decimal.Zero }},
		{"max below min", func(t *SwapTask) { t.Amount.MaxAmount = decimal.RequireFromString("0.01") }},
		{"percent above 100", func(t *SwapTask) {
			t.Amount.SendPercentBalance = true
			t.Amount.MaxAmount = decimal.NewFromInt(150)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := validTask()
			tt.mutate(task)
			assert.ErrorIs(t, task.Validate(), ErrInvalidTask)
		})
	}
}

func TestCalculateAmount(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	balance := big.NewInt(1_000_000_000) // 10 APT at 8 decimals

	t.Run("zero balance", func(t *testing.T) {
		_, err := validTask().Amount.CalculateAmount(big.NewInt(0), 8, rng)
		assert.ErrorIs(t, err, ErrZeroBalance)
		_, err = validTask().Amount.CalculateAmount(nil, 8, rng)
		assert.ErrorIs(t, err, ErrZeroBalance)
	})

	t.Run("use all balance", func(t *testing.T) {
		amt := AmountSpec{UseAllBalance: true}
		got, err := amt.CalculateAmount(balance, 8, rng)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Cmp(balance))
	})

	t.Run("fixed range", func(t *testing.T) {
		amt := validTask().Amount
		for i := 0; i < 100; i++ {
			got, err := amt.CalculateAmount(balance, 8, rng)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got.Int64(), int64(10_000_000))
			assert.LessOrEqual(t, got.Int64(), int64(20_000_000))
		}
	})

	t.Run("fixed exact", func(t *testing.T) {
		amt := AmountSpec{MinAmount: decimal.RequireFromString("1.5"), MaxAmount: decimal.RequireFromString("1.5")}
		got, err := amt.CalculateAmount(balance, 8, rng)
		require.NoError(t, err)
		assert.Equal(t, int64(150_000_000), got.Int64())
	})

	t.Run("insufficient", func(t *testing.T) {
		amt := AmountSpec{MinAmount: decimal.NewFromInt(11), MaxAmount: decimal.NewFromInt(11)}
		_, err := amt.CalculateAmount(balance, 8, rng)
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("percent of balance", func(t *testing.T) {
		amt := AmountSpec{
			MinAmount:          decimal.NewFromInt(50),
			MaxAmount:          decimal.NewFromInt(50),
			SendPercentBalance: true,
		}
		got, err := amt.CalculateAmount(balance, 8, rng)
		require.NoError(t, err)
		assert.Equal(t, int64(500_000_000), got.Int64())
	})

	t.Run("rounds to zero", func(t *testing.T) {
		amt := AmountSpec{MinAmount: decimal.RequireFromString("0.0000001"), MaxAmount: decimal.RequireFromString("0.0000001")}
		_, err := amt.CalculateAmount(balance, 6, rng)
		assert.ErrorIs(t, err, ErrZeroAmount)
	})
}

func TestToDecimal(t *testing.T) {
	assert.Equal(t, "1.2345", ToDecimal(big.NewInt(123_450_000), 8).String())
	assert.True(t, ToDecimal(nil, 8).IsZero())
}

func TestManagerLoadTasks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	content := `tasks:
  - name: roundtrip
    module: pancake
    wallet: main
    input_token: APTOS
    output_token: usdc
    slippage: 0.5
    reverse_action: true
    min_delay_sec: 10
    max_delay_sec: 20
    min_amount: "0.1"
    max_amount: "0.3"
  - name: broken
    wallet: main
    input_token: aptos
    output_token: aptos
    min_amount: "1"
  - name: all-in
    wallet: second
    input_token: usdt
    output_token: aptos
    use_all_balance: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	tasks, err := NewManager(zap.NewNop()).LoadTasks(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	first := tasks[0]
	assert.Equal(t, "roundtrip", first.Name)
	assert.Equal(t, ModulePancake, first.Module)
	assert.Equal(t, "aptos", first.InputToken)
	assert.True(t, first.ReverseAction)
	assert.Equal(t, 0.5, first.Slippage)
	assert.True(t, first.Amount.MaxAmount.Equal(decimal.RequireFromString("0.3")))

	second := tasks[1]
	assert.Equal(t, ModulePancake, second.Module, "module defaults to pancake")
	assert.True(t, second.Amount.UseAllBalance)
}

func TestManagerLoadTasksErrors(t *testing.T) {
	m := NewManager(zap.NewNop())

	_, err := m.LoadTasks(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("tasks: []\n"), 0o600))
	_, err = m.LoadTasks(empty)
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tasks:\n  - name: x\n    min_amount: abc\n"), 0o600))
	_, err = m.LoadTasks(bad)
	assert.Error(t, err)
}
