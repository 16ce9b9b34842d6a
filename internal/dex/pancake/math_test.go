package pancake

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountInScenario(t *testing.T) {
	// reserves X=1_000_000, Y=2_000_000, take 10_000 Y out.
	// 1e6 * 1e4 * 10000 / ((2e6 - 1e4) * 9975) = 5037.7..., +1
	got, err := AmountIn(big.NewInt(10_000), big.NewInt(1_000_000), big.NewInt(2_000_000))
	require.NoError(t, err)
	assert.Equal(t, int64(5038), got.Int64())

	num := new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(10_000))
	num.Mul(num, big.NewInt(FeeDenominator))
	den := big.NewInt((2_000_000 - 10_000) * FeeNumerator)
	want := new(big.Int).Add(new(big.Int).Quo(num, den), big.NewInt(1))
	assert.Equal(t, 0, want.Cmp(got))
}

func TestAmountInInvalid(t *testing.T) {
	tests := []struct {
		name                       string
		out, reserveIn, reserveOut *big.Int
	}{
		{"out equals reserve", big.NewInt(100), big.NewInt(1), big.NewInt(100)},
		{"out above reserve", big.NewInt(101), big.NewInt(1_000), big.NewInt(100)},
		{"zero out", big.NewInt(0), big.NewInt(1_000), big.NewInt(100)},
		{"zero reserve in", big.NewInt(1), big.NewInt(0), big.NewInt(100)},
		{"negative reserve out", big.NewInt(1), big.NewInt(10), big.NewInt(-100)},
		{"nil", nil, big.NewInt(10), big.NewInt(100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AmountIn(tt.out, tt.reserveIn, tt.reserveOut)
			assert.ErrorIs(t, err, ErrInvalidQuote)
			assert.Nil(t, got)
		})
	}
}

func TestAmountInProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		rx := big.NewInt(rng.Int63n(1e12) + 1)
		ry := big.NewInt(rng.Int63n(1e12) + 2)

		a := new(big.Int).Rand(rng, new(big.Int).Sub(ry, big.NewInt(1)))
		a.Add(a, big.NewInt(1)) // 1 <= a < ry
		b := new(big.Int).Add(a, new(big.Int).Rand(rng, new(big.Int).Sub(ry, a)))
		// a <= b < ry

		inA, err := AmountIn(a, rx, ry)
		require.NoError(t, err)
		inB, err := AmountIn(b, rx, ry)
		require.NoError(t, err)

		assert.Positive(t, inA.Sign())
		assert.LessOrEqual(t, inA.Cmp(inB), 0, "amount in must not decrease as amount out grows")

		_, err = AmountIn(ry, rx, ry)
		assert.ErrorIs(t, err, ErrInvalidQuote)
	}
}

func TestAmountInBeyondUint64(t *testing.T) {
	huge, _ := new(big.Int).SetString("340282366920938463463374607431768211455", 10) // u128 max
	out := new(big.Int).Rsh(huge, 1)

	got, err := AmountIn(out, huge, huge)
	require.NoError(t, err)
	assert.True(t, got.BitLen() > 64)
}
