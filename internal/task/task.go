// =============================================
// File: internal/task/task.go
// =============================================
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ModuleName identifies the protocol a task runs against.
type ModuleName string

const (
	ModulePancake ModuleName = "pancake"
)

var (
	ErrInvalidTask         = errors.New("invalid task")
	ErrZeroBalance         = errors.New("token balance is zero")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrZeroAmount          = errors.New("calculated amount is zero")
)

// SwapTask describes one swap (and optional round trip) for one wallet.
// It is not modified once execution starts.
type SwapTask struct {
	ID            int
	Name          string
	Module        ModuleName
	WalletName    string
	InputToken    string
	OutputToken   string
	Slippage      float64 // percent, 0-100
	ReverseAction bool
	MinDelaySec   float64
	MaxDelaySec   float64
	Amount        AmountSpec
	CreatedAt     time.Time
}

// Validate checks the task is executable.
func (t *SwapTask) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: task name cannot be empty", ErrInvalidTask)
	}
	if t.WalletName == "" {
		return fmt.Errorf("%w: wallet name cannot be empty", ErrInvalidTask)
	}

	switch t.Module {
	case ModulePancake:
	default:
		return fmt.Errorf("%w: unsupported module %q", ErrInvalidTask, t.Module)
	}

	if t.InputToken == "" || t.OutputToken == "" {
		return fmt.Errorf("%w: input and output tokens are required", ErrInvalidTask)
	}
	if strings.EqualFold(t.InputToken, t.OutputToken) {
		return fmt.Errorf("%w: input and output tokens must differ", ErrInvalidTask)
	}

	if t.Slippage < 0 || t.Slippage > 100 {
		return fmt.Errorf("%w: slippage must be between 0 and 100", ErrInvalidTask)
	}

	if t.MinDelaySec < 0 || t.MaxDelaySec < 0 {
		return fmt.Errorf("%w: delays cannot be negative", ErrInvalidTask)
	}
	if t.MinDelaySec > t.MaxDelaySec {
		return fmt.Errorf("%w: min_delay_sec must not exceed max_delay_sec", ErrInvalidTask)
	}

	if err := t.Amount.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	return nil
}

func (t *SwapTask) String() string {
	return fmt.Sprintf("%s [%s %s->%s]", t.Name, t.Module, strings.ToUpper(t.InputToken), strings.ToUpper(t.OutputToken))
}
