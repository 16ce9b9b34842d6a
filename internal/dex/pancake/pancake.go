// Package pancake quotes and executes swaps on PancakeSwap for Aptos.
package pancake

import (
	"context"
	"errors"
	"math/big"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/blockchain/aptos"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/types"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/wallet"
)

// DefaultRouterAddress is the PancakeSwap router account on Aptos mainnet.
const DefaultRouterAddress = "0xc7efb4076dbe143cbcd98cfaaa929ecfc8f299203dfff63b95ccb6bfe19850fa"

var (
	// ErrDataUnavailable means reserves or balances could not be read.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInvalidQuote means the requested trade is infeasible for the pool.
	ErrInvalidQuote = errors.New("invalid quote")
	// ErrInsufficientChange means the forward leg left nothing to swap back.
	ErrInsufficientChange = errors.New("insufficient change")
	// ErrTokenMetadata means a token's address or decimals are unknown.
	ErrTokenMetadata = errors.New("token metadata unavailable")
)

// ChainReader is the read side of the node the swap needs.
type ChainReader interface {
	GetAccountResource(ctx context.Context, address, resourceType string) (*aptos.Resource, error)
	GetCoinBalance(ctx context.Context, address, coinType string) (*big.Int, error)
	GetCoinDecimals(ctx context.Context, coinType string) (uint8, error)
}

// Submitter signs and sends a payload, reporting SUCCESS, SENT, FAILED,
// TIME_OUT or TEST_MODE.
type Submitter interface {
	Submit(ctx context.Context, w *wallet.Wallet, payload *aptos.EntryFunctionPayload) *types.ExecutionResult
}
