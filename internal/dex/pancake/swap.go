package pancake

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/blockchain/aptos"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/events"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/task"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/token"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/types"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/utils/delay"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/wallet"
)

// State is a step of a swap run.
type State string

const (
	StateStart             State = "START"
	StateValidatingTokens  State = "VALIDATING_TOKENS"
	StateBuildingForward   State = "BUILDING_FORWARD"
	StateSubmittingForward State = "SUBMITTING_FORWARD"
	StateDelaying          State = "DELAYING"
	StateBuildingReverse   State = "BUILDING_REVERSE"
	StateSubmittingReverse State = "SUBMITTING_REVERSE"
	StateDone              State = "DONE"
	StateError             State = "ERROR"
)

// Params are the collaborators of one swap run.
type Params struct {
	Task          *task.SwapTask
	Wallet        *wallet.Wallet
	Chain         ChainReader
	Submitter     Submitter
	Registry      *token.Registry
	RouterAddress string
	Sleeper       delay.Sleeper    // defaults to the wall clock
	Rand          *rand.Rand       // defaults to a time seeded source
	Events        events.Publisher // optional
}

// Swap runs one task for one wallet: forward leg, then optionally a delayed
// reverse leg. A Swap is single use and owns all of its state.
type Swap struct {
	task      *task.SwapTask
	wallet    *wallet.Wallet
	chain     ChainReader
	submitter Submitter
	registry  *token.Registry
	builder   *Builder
	sleeper   delay.Sleeper
	rng       *rand.Rand
	events    events.Publisher
	logger    *zap.Logger
	now       func() time.Time

	state          State
	sell, buy      token.Token
	initialBalance *big.Int // buy token balance before the forward leg
}

// NewSwap validates p and prepares a run.
func NewSwap(p Params, logger *zap.Logger) (*Swap, error) {
	switch {
	case p.Task == nil:
		return nil, errors.New("task is required")
	case p.Wallet == nil:
		return nil, errors.New("wallet is required")
	case p.Chain == nil:
		return nil, errors.New("chain reader is required")
	case p.Submitter == nil:
		return nil, errors.New("submitter is required")
	}
	if p.Registry == nil {
		p.Registry = token.DefaultRegistry()
	}
	if p.Sleeper == nil {
		p.Sleeper = delay.ContextSleeper{}
	}
	if p.Rand == nil {
		p.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	logger = logger.Named("pancake")

	return &Swap{
		task:      p.Task,
		wallet:    p.Wallet,
		chain:     p.Chain,
		submitter: p.Submitter,
		registry:  p.Registry,
		builder:   NewBuilder(p.Chain, p.RouterAddress, p.Rand, logger),
		sleeper:   p.Sleeper,
		rng:       p.Rand,
		events:    p.Events,
		logger:    logger,
		now:       time.Now,
		state:     StateStart,
	}, nil
}

// State returns the step the run is in, or ended in.
func (s *Swap) State() State {
	return s.state
}

// Execute runs the swap and returns exactly one terminal result.
func (s *Swap) Execute(ctx context.Context) *types.ExecutionResult {
	started := s.now()
	s.publish(&events.SwapStartedEvent{
		BaseEvent:     events.BaseEvent{EventType: events.SwapStarted, EventTime: started},
		TaskID:        s.task.ID,
		TaskName:      s.task.Name,
		WalletName:    s.wallet.Name,
		WalletAddress: s.wallet.Address,
		InputToken:    s.task.InputToken,
		OutputToken:   s.task.OutputToken,
		ReverseAction: s.task.ReverseAction,
	})

	result := s.run(ctx)

	finished := events.NewSwapFinished(s.now(), result)
	finished.TaskID = s.task.ID
	finished.TaskName = s.task.Name
	finished.WalletName = s.wallet.Name
	finished.WalletAddress = s.wallet.Address
	finished.InputToken = s.task.InputToken
	finished.OutputToken = s.task.OutputToken
	finished.ReverseAction = s.task.ReverseAction
	finished.Duration = finished.EventTime.Sub(started)
	s.publish(finished)

	s.logger.Info("Swap finished",
		zap.String("state", string(s.state)),
		zap.String("status", result.Status.String()),
		zap.String("info", result.Info),
		zap.String("tx_hash", result.TxHash),
		zap.Duration("duration", finished.Duration))

	return result
}

func (s *Swap) run(ctx context.Context) *types.ExecutionResult {
	s.transition(StateValidatingTokens)
	if err := s.resolveTokens(ctx); err != nil {
		return s.fail(err, "Failed to fetch local tokens data")
	}

	if s.task.ReverseAction {
		s.snapshotBalance(ctx)
	}

	s.transition(StateBuildingForward)
	forward, err := s.builder.BuildForward(ctx, s.wallet.Address, s.sell, s.buy, s.task.Amount, s.task.Slippage)
	if err != nil {
		return s.fail(err, "Error while building transaction payload")
	}

	s.transition(StateSubmittingForward)
	result := s.submit(ctx, events.DirectionForward, s.sell, s.buy, forward)

	switch result.Status {
	case types.StatusSuccess, types.StatusSent:
	case types.StatusTestMode:
		s.transition(StateDone)
		return result
	default:
		s.transition(StateError)
		return result
	}

	if !s.task.ReverseAction {
		s.transition(StateDone)
		return result
	}

	s.transition(StateDelaying)
	wait := delay.Random(s.task.MinDelaySec, s.task.MaxDelaySec, s.rng)
	s.logger.Info("Waiting before reverse action", zap.Duration("delay", wait))
	if err := s.sleeper.Sleep(ctx, wait); err != nil {
		return s.fail(err, "Reverse action cancelled")
	}

	s.transition(StateBuildingReverse)
	reverse, err := s.builder.BuildReverse(ctx, s.wallet.Address, s.buy, s.sell, s.initialBalance, s.task.Slippage)
	if err != nil {
		return s.fail(err, "Error while building reverse transaction payload")
	}

	s.transition(StateSubmittingReverse)
	result = s.submit(ctx, events.DirectionReverse, s.buy, s.sell, reverse)
	if result.Status.IsAccepted() || result.Status == types.StatusTestMode {
		s.transition(StateDone)
	} else {
		s.transition(StateError)
	}
	return result
}

// resolveTokens looks both task tokens up and fills in missing decimals
// from chain.
func (s *Swap) resolveTokens(ctx context.Context) error {
	var err error
	if s.sell, err = s.resolveToken(ctx, s.task.InputToken); err != nil {
		return err
	}
	if s.buy, err = s.resolveToken(ctx, s.task.OutputToken); err != nil {
		return err
	}
	return nil
}

func (s *Swap) resolveToken(ctx context.Context, symbol string) (token.Token, error) {
	t, err := s.registry.Get(symbol)
	if err != nil {
		return token.Token{}, fmt.Errorf("%w: %w", ErrTokenMetadata, err)
	}
	if t.ContractAddress == "" || !strings.Contains(t.ContractAddress, "::") {
		return token.Token{}, fmt.Errorf("%w: %s has no coin type", ErrTokenMetadata, t.Symbol)
	}
	if t.Decimals == 0 {
		dec, err := s.chain.GetCoinDecimals(ctx, t.ContractAddress)
		if err != nil {
			return token.Token{}, fmt.Errorf("%w: %s decimals: %w", ErrTokenMetadata, t.Symbol, err)
		}
		t.Decimals = dec
	}
	return t, nil
}

// snapshotBalance records the buy token balance so the reverse leg can tell
// what the forward leg delivered. A failed read leaves it nil, which the
// reverse builder rejects.
func (s *Swap) snapshotBalance(ctx context.Context) {
	balance, err := s.chain.GetCoinBalance(ctx, s.wallet.Address, s.buy.ContractAddress)
	if err != nil {
		s.logger.Warn("Error while getting initial balance",
			zap.String("token", s.buy.Symbol),
			zap.Error(err))
		return
	}
	s.initialBalance = balance
}

func (s *Swap) submit(ctx context.Context, dir events.Direction, sell, buy token.Token, data *PayloadData) *types.ExecutionResult {
	s.logger.Info("Submitting swap",
		zap.String("direction", string(dir)),
		zap.String("sell", fmt.Sprintf("%s %s", data.AmountXDecimals, strings.ToUpper(sell.Symbol))),
		zap.String("buy", fmt.Sprintf("%s %s", data.AmountYDecimals, strings.ToUpper(buy.Symbol))),
		zap.String("min_amount_out", data.MinAmountOut.String()))

	result := s.submitter.Submit(ctx, s.wallet, data.Payload)
	if result == nil {
		result = types.NewResult(types.StatusError, "submitter returned no result")
	}

	s.publish(&events.LegSubmittedEvent{
		BaseEvent:  events.BaseEvent{EventType: events.SwapLegSubmitted, EventTime: s.now()},
		TaskID:     s.task.ID,
		TaskName:   s.task.Name,
		WalletName: s.wallet.Name,
		Direction:  dir,
		Status:     result.Status,
		TxHash:     result.TxHash,
		AmountIn:   data.AmountXDecimals,
		AmountOut:  data.AmountYDecimals,
	})

	return result
}

// fail converts err into the terminal result: deadlines become TIME_OUT,
// everything else ERROR.
func (s *Swap) fail(err error, info string) *types.ExecutionResult {
	failedIn := s.state
	s.transition(StateError)
	s.logger.Error(info, zap.String("failed_in", string(failedIn)), zap.Error(err))

	result := &types.ExecutionResult{}
	if errors.Is(err, aptos.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return result.SetTimeout("%s: %v", info, err)
	}
	return result.SetError("%s: %v", info, err)
}

func (s *Swap) transition(next State) {
	s.logger.Debug("State transition",
		zap.String("from", string(s.state)),
		zap.String("to", string(next)))
	s.state = next
}

func (s *Swap) publish(e events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(e); err != nil {
		s.logger.Debug("Event not published", zap.String("event_type", string(e.Type())), zap.Error(err))
	}
}
