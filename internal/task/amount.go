// internal/task/amount.go
package task

import (
	"errors"
	"fmt"
	"math/big"
	"math/rand"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AmountSpec says how much of the input token a task spends.
//
// With UseAllBalance the whole balance is used. With SendPercentBalance
// Min/Max are percentages of the balance. Otherwise Min/Max are token
// amounts in human units.
type AmountSpec struct {
	MinAmount          decimal.Decimal
	MaxAmount          decimal.Decimal
	UseAllBalance      bool
	SendPercentBalance bool
}

// Validate checks the amount bounds.
func (a AmountSpec) Validate() error {
	if a.UseAllBalance {
		return nil
	}
	if !a.MinAmount.IsPositive() {
		return errors.New("min_amount must be positive")
	}
	if a.MaxAmount.LessThan(a.MinAmount) {
		return errors.New("max_amount must not be less than min_amount")
	}
	if a.SendPercentBalance && a.MaxAmount.GreaterThan(hundred) {
		return errors.New("percent of balance cannot exceed 100")
	}
	return nil
}

// CalculateAmount picks the raw (minor unit) amount to spend from balance.
func (a AmountSpec) CalculateAmount(balance *big.Int, decimals uint8, rng *rand.Rand) (*big.Int, error) {
	if balance == nil || balance.Sign() <= 0 {
		return nil, ErrZeroBalance
	}

	if a.UseAllBalance {
		return new(big.Int).Set(balance), nil
	}

	picked := randomBetween(a.MinAmount, a.MaxAmount, rng)

	var raw *big.Int
	if a.SendPercentBalance {
		share := decimal.NewFromBigInt(balance, 0).Mul(picked.Truncate(2)).Div(hundred)
		raw = share.Floor().BigInt()
	} else {
		raw = picked.Truncate(int32(decimals)).Shift(int32(decimals)).Floor().BigInt()
		if raw.Cmp(balance) > 0 {
			return nil, fmt.Errorf("%w: need %s, have %s", ErrInsufficientBalance, raw, balance)
		}
	}

	if raw.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	return raw, nil
}

func randomBetween(lo, hi decimal.Decimal, rng *rand.Rand) decimal.Decimal {
	if !hi.GreaterThan(lo) {
		return lo
	}
	var f float64
	if rng != nil {
		f = rng.Float64()
	} else {
		f = rand.Float64()
	}
	return lo.Add(hi.Sub(lo).Mul(decimal.NewFromFloat(f)))
}

// ToDecimal converts a raw amount to human units.
func ToDecimal(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}
