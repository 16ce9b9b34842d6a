// internal/types/slippage.go
package types

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

var bigHundred = big.NewInt(100)

// ApplySlippage returns floor(amount * (1 - percent/100)), exact for the
// shortest decimal form of percent. percent is clamped to [0, 100]; a nil
// amount yields zero.
func ApplySlippage(amount *big.Int, percent float64) *big.Int {
	if amount == nil || amount.Sign() <= 0 {
		return new(big.Int)
	}
	if percent <= 0 || math.IsNaN(percent) {
		return new(big.Int).Set(amount)
	}
	if percent >= 100 {
		return new(big.Int)
	}

	// percent = coef * 10^exp
	p := decimal.NewFromFloat(percent)
	coef := p.Coefficient()
	exp := p.Exponent()

	denom := new(big.Int).Set(bigHundred)
	if exp >= 0 {
		coef.Mul(coef, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
	} else {
		denom.Mul(denom, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-exp)), nil))
	}
	keep := new(big.Int).Sub(denom, coef)

	result := new(big.Int).Mul(amount, keep)
	// Quo truncates toward zero, which is floor for non-negative values.
	return result.Quo(result, denom)
}
