package pancake

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/blockchain/aptos"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/events"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/types"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/wallet"
)

const (
	testRouter = "0xrouter"
	coinAPT    = "0x1::aptos_coin::AptosCoin"
	coinUSDC   = "0xf22bede237a07e121b56d91a491eb7bcdfd1f5907926a9e58338f964a01b17fa::asset::USDC"
)

// fakeChain serves reserves, balances and decimals from memory.
type fakeChain struct {
	mu sync.Mutex

	resources   map[string]string // resource type -> data JSON
	resourceErr error

	// balances[coin] is consumed one value per call; the last value repeats.
	balances   map[string][]*big.Int
	balanceErr map[string]error
	decimals   map[string]uint8

	reserveReads int
	balanceReads map[string]int
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		resources:    make(map[string]string),
		balances:     make(map[string][]*big.Int),
		balanceErr:   make(map[string]error),
		decimals:     make(map[string]uint8),
		balanceReads: make(map[string]int),
	}
}

func (f *fakeChain) setPool(coinX, coinY string, reserveX, reserveY int64) {
	f.resources[ReserveType(testRouter, coinX, coinY)] =
		fmt.Sprintf(`{"reserve_x":"%d","reserve_y":"%d","block_timestamp_last":"0"}`, reserveX, reserveY)
}

func (f *fakeChain) setBalances(coin string, values ...int64) {
	f.balances[coin] = nil
	for _, v := range values {
		f.balances[coin] = append(f.balances[coin], big.NewInt(v))
	}
}

func (f *fakeChain) GetAccountResource(ctx context.Context, address, resourceType string) (*aptos.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if strings.Contains(resourceType, "TokenPairReserve") {
		f.reserveReads++
	}
	if f.resourceErr != nil {
		return nil, f.resourceErr
	}
	data, ok := f.resources[resourceType]
	if !ok {
		return nil, &aptos.APIError{StatusCode: 404, ErrorCode: "resource_not_found", Message: "missing " + resourceType}
	}
	return &aptos.Resource{Type: resourceType, Data: json.RawMessage(data)}, nil
}

func (f *fakeChain) GetCoinBalance(ctx context.Context, address, coinType string) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.balanceErr[coinType]; err != nil {
		return nil, err
	}
	values := f.balances[coinType]
	if len(values) == 0 {
		return new(big.Int), nil
	}
	n := f.balanceReads[coinType]
	f.balanceReads[coinType] = n + 1
	if n >= len(values) {
		n = len(values) - 1
	}
	return new(big.Int).Set(values[n]), nil
}

func (f *fakeChain) GetCoinDecimals(ctx context.Context, coinType string) (uint8, error) {
	d, ok := f.decimals[coinType]
	if !ok {
		return 0, fmt.Errorf("coin info: %w", aptos.ErrResourceNotFound)
	}
	return d, nil
}

// fakeSubmitter returns queued results and records payloads.
type fakeSubmitter struct {
	results  []*types.ExecutionResult
	payloads []*aptos.EntryFunctionPayload
}

func (f *fakeSubmitter) Submit(ctx context.Context, w *wallet.Wallet, payload *aptos.EntryFunctionPayload) *types.ExecutionResult {
	f.payloads = append(f.payloads, payload)
	if len(f.results) == 0 {
		return types.NewResult(types.StatusSuccess, "confirmed")
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r
}

// fakeSleeper records waits instead of sleeping.
type fakeSleeper struct {
	slept []time.Duration
	err   error
}

func (f *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.slept = append(f.slept, d)
	if f.err != nil {
		return f.err
	}
	return ctx.Err()
}

// recordingPublisher keeps published events in order.
type recordingPublisher struct {
	events []events.Event
}

func (r *recordingPublisher) Publish(e events.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) types() []events.EventType {
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type())
	}
	return out
}
