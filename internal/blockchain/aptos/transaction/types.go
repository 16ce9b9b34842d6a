// internal/blockchain/aptos/transaction/types.go
package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/blockchain/aptos"
)

var (
	ErrEmptyPayload = errors.New("empty transaction payload")
	ErrNoWallet     = errors.New("wallet is required")
)

// Node is the part of the Aptos client the submitter needs.
type Node interface {
	GetSequenceNumber(ctx context.Context, address string) (uint64, error)
	EncodeSubmission(ctx context.Context, req *aptos.TransactionRequest) (string, error)
	SubmitTransaction(ctx context.Context, req *aptos.TransactionRequest) (string, error)
	WaitForTransaction(ctx context.Context, hash string, poll time.Duration) (*aptos.Transaction, error)
}

// Config controls gas, expiry and confirmation behaviour.
type Config struct {
	MaxGasAmount        uint64
	GasUnitPrice        uint64
	Expiration          time.Duration
	ConfirmTimeout      time.Duration
	PollInterval        time.Duration
	WaitForConfirmation bool
	TestMode            bool
}

// DefaultConfig returns settings suitable for mainnet swaps.
func DefaultConfig() Config {
	return Config{
		MaxGasAmount:        10_000,
		GasUnitPrice:        100,
		Expiration:          10 * time.Minute,
		ConfirmTimeout:      30 * time.Second,
		PollInterval:        time.Second,
		WaitForConfirmation: true,
	}
}
