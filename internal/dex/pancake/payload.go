package pancake

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/blockchain/aptos"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/task"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/token"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/types"
)

// PayloadData is one leg ready for submission.
type PayloadData struct {
	Payload *aptos.EntryFunctionPayload

	// AmountXDecimals is the amount sold, in units of the sold token.
	AmountXDecimals decimal.Decimal
	// AmountYDecimals is the pool quote, in units of the bought token.
	AmountYDecimals decimal.Decimal

	AmountIn     *big.Int // raw amount sold
	Quote        *big.Int // raw pool quote before slippage
	MinAmountOut *big.Int // raw quote after slippage
}

// Builder turns balances and pool state into swap payloads.
type Builder struct {
	chain  ChainReader
	router string
	rng    *rand.Rand
	logger *zap.Logger
}

// NewBuilder creates a payload builder for the given router account.
func NewBuilder(chain ChainReader, router string, rng *rand.Rand, logger *zap.Logger) *Builder {
	if router == "" {
		router = DefaultRouterAddress
	}
	return &Builder{
		chain:  chain,
		router: router,
		rng:    rng,
		logger: logger.Named("payload"),
	}
}

// BuildForward sells part of owner's sell balance, sized per the amount settings, for buy.
func (b *Builder) BuildForward(ctx context.Context, owner string, sell, buy token.Token, sizing task.AmountSpec, slippage float64) (*PayloadData, error) {
	balance, err := b.chain.GetCoinBalance(ctx, owner, sell.ContractAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %s balance: %w", ErrDataUnavailable, sell.Symbol, err)
	}

	amount, err := sizing.CalculateAmount(balance, sell.Decimals, b.rng)
	if err != nil {
		b.logger.Error("Cannot size forward swap",
			zap.String("token", sell.Symbol),
			zap.String("balance", task.ToDecimal(balance, sell.Decimals).String()),
			zap.Error(err))
		return nil, err
	}

	return b.build(ctx, sell, buy, amount, slippage)
}

// BuildReverse swaps back what the forward leg delivered: the current sell
// balance minus initial, the balance recorded before the forward leg.
func (b *Builder) BuildReverse(ctx context.Context, owner string, sell, buy token.Token, initial *big.Int, slippage float64) (*PayloadData, error) {
	current, err := b.chain.GetCoinBalance(ctx, owner, sell.ContractAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %s balance: %w", ErrDataUnavailable, sell.Symbol, err)
	}

	if current.Sign() == 0 {
		b.logger.Error("Wallet balance is zero", zap.String("token", sell.Symbol))
		return nil, fmt.Errorf("%w: %s balance is zero", ErrInsufficientChange, sell.Symbol)
	}
	if initial == nil {
		b.logger.Error("Initial balance unknown", zap.String("token", sell.Symbol))
		return nil, fmt.Errorf("%w: initial %s balance was not recorded", ErrDataUnavailable, sell.Symbol)
	}

	received := new(big.Int).Sub(current, initial)
	if received.Sign() <= 0 {
		b.logger.Error("Balance did not grow after forward swap",
			zap.String("token", sell.Symbol),
			zap.String("initial", initial.String()),
			zap.String("current", current.String()))
		return nil, fmt.Errorf("%w: %s balance %s is not above initial %s",
			ErrInsufficientChange, sell.Symbol, current, initial)
	}

	return b.build(ctx, sell, buy, received, slippage)
}

// build quotes amount against the pool and encodes swap_exact_input<sell, buy>.
func (b *Builder) build(ctx context.Context, sell, buy token.Token, amount *big.Int, slippage float64) (*PayloadData, error) {
	reserves, err := FetchReserves(ctx, b.chain, b.router, sell.ContractAddress, buy.ContractAddress)
	if err != nil {
		b.logger.Error("Error getting token pair reserve",
			zap.String("pair", sell.Symbol+"/"+buy.Symbol),
			zap.Error(err))
		return nil, err
	}

	quote, err := AmountIn(amount, reserves[buy.ContractAddress], reserves[sell.ContractAddress])
	if err != nil {
		return nil, err
	}
	minOut := types.ApplySlippage(quote, slippage)

	payload := aptos.NewEntryFunctionPayload(
		b.router+"::router",
		"swap_exact_input",
		[]string{sell.ContractAddress, buy.ContractAddress},
		amount.String(),
		minOut.String(),
	)

	data := &PayloadData{
		Payload:         payload,
		AmountXDecimals: task.ToDecimal(amount, sell.Decimals),
		AmountYDecimals: task.ToDecimal(quote, buy.Decimals),
		AmountIn:        amount,
		Quote:           quote,
		MinAmountOut:    minOut,
	}

	b.logger.Debug("Swap payload built",
		zap.String("sell", sell.Symbol),
		zap.String("buy", buy.Symbol),
		zap.String("amount", data.AmountXDecimals.String()),
		zap.String("quote", data.AmountYDecimals.String()),
		zap.String("min_out", minOut.String()),
		zap.Float64("slippage", slippage))

	return data, nil
}
