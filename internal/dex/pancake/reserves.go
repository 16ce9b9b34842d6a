package pancake

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/blockchain/aptos"
)

// ReservePair maps a coin type to its pool reserve. It always has exactly
// the two entries the caller asked for and is never cached.
type ReservePair map[string]*big.Int

type tokenPairReserve struct {
	ReserveX aptos.U64 `json:"reserve_x"`
	ReserveY aptos.U64 `json:"reserve_y"`
}

// ReserveType is the router resource holding the reserves of pair <X, Y>.
func ReserveType(router, coinX, coinY string) string {
	return fmt.Sprintf("%s::swap::TokenPairReserve<%s, %s>", router, coinX, coinY)
}

// FetchReserves reads the pool reserves for coinX and coinY. The pool is
// stored under one ordering only, so a missing <X, Y> resource is retried as
// <Y, X>; either way the result is keyed by the caller's coin types.
func FetchReserves(ctx context.Context, chain ChainReader, router, coinX, coinY string) (ReservePair, error) {
	rx, ry, err := readReserve(ctx, chain, router, coinX, coinY)
	if errors.Is(err, aptos.ErrResourceNotFound) {
		// stored as <Y, X>
		ry, rx, err = readReserve(ctx, chain, router, coinY, coinX)
	}
	if err != nil {
		if errors.Is(err, aptos.ErrResourceNotFound) {
			return nil, fmt.Errorf("%w: no pool for %s and %s", ErrDataUnavailable, coinX, coinY)
		}
		return nil, fmt.Errorf("%w: reserves: %w", ErrDataUnavailable, err)
	}

	if rx.Sign() <= 0 || ry.Sign() <= 0 {
		return nil, fmt.Errorf("%w: empty pool reserves %s/%s", ErrDataUnavailable, rx, ry)
	}

	return ReservePair{coinX: rx, coinY: ry}, nil
}

func readReserve(ctx context.Context, chain ChainReader, router, coinX, coinY string) (*big.Int, *big.Int, error) {
	res, err := chain.GetAccountResource(ctx, router, ReserveType(router, coinX, coinY))
	if err != nil {
		return nil, nil, err
	}

	var data tokenPairReserve
	if err := res.Decode(&data); err != nil {
		return nil, nil, err
	}

	rx, err := data.ReserveX.Big()
	if err != nil {
		return nil, nil, err
	}
	ry, err := data.ReserveY.Big()
	if err != nil {
		return nil, nil, err
	}
	return rx, ry, nil
}
