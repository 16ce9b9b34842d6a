package pancake

import (
	"fmt"
	"math/big"
)

// PancakeSwap charges 25 bps on the input side.
const (
	FeeNumerator   = 9975
	FeeDenominator = 10000
)

var (
	feeNumerator   = big.NewInt(FeeNumerator)
	feeDenominator = big.NewInt(FeeDenominator)
	one            = big.NewInt(1)
)

// AmountIn returns the input needed to take amountOut out of a pool holding
// reserveIn and reserveOut:
//
//	reserveIn * amountOut * FeeDenominator / ((reserveOut - amountOut) * FeeNumerator) + 1
//
// The trailing +1 rounds in the pool's favour.
func AmountIn(amountOut, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if amountOut == nil || reserveIn == nil || reserveOut == nil {
		return nil, fmt.Errorf("%w: missing operand", ErrInvalidQuote)
	}
	if amountOut.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount out must be positive", ErrInvalidQuote)
	}
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, fmt.Errorf("%w: reserves must be positive", ErrInvalidQuote)
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, fmt.Errorf("%w: amount out %s exceeds reserve %s", ErrInvalidQuote, amountOut, reserveOut)
	}

	numerator := new(big.Int).Mul(reserveIn, amountOut)
	numerator.Mul(numerator, feeDenominator)

	denominator := new(big.Int).Sub(reserveOut, amountOut)
	denominator.Mul(denominator, feeNumerator)

	result := numerator.Quo(numerator, denominator)
	return result.Add(result, one), nil
}
