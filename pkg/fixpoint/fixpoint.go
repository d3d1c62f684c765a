package fixpoint

import (
	"github.com/holiman/uint256"
)

// Scale constants shared by the settlement engines. All amounts are
// unsigned integers; every division floors, so rounding always favors the
// pool over the user.
var (
	// FloatMultiplier is the 1e18 scale used for high-precision factors
	// such as the interest multiplier.
	FloatMultiplier = uint256.NewInt(1_000_000_000_000_000_000)
	// BasisPoints is the 1/10000 unit for risk parameters and rates.
	BasisPoints = uint256.NewInt(10_000)
	// PriceMultiplier is the 1e6 scale of oracle prices.
	PriceMultiplier = uint256.NewInt(1_000_000)
	// ExchangeRateMultiplier is the 1e8 scale of the pool share exchange
	// rate; the initial rate is exactly one.
	ExchangeRateMultiplier = uint256.NewInt(100_000_000)
	// BlocksPerYear at four blocks per minute.
	BlocksPerYear = uint256.NewInt(4 * 60 * 24 * 365)
)

// Zero returns a fresh zero value.
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// MulDiv computes x*y/d with floor division. d must be non-zero.
func MulDiv(x, y, d *uint256.Int) *uint256.Int {
	z := new(uint256.Int).Mul(x, y)
	return z.Div(z, d)
}

// Min returns the smaller of a and b, as a fresh value.
func Min(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return a.Clone()
	}

	return b.Clone()
}

// Add returns a+b as a fresh value.
func Add(a, b *uint256.Int) *uint256.Int {
	return new(uint256.Int).Add(a, b)
}

// Sub returns a-b and whether the subtraction stayed non-negative. The
// quantities here never legitimately go negative; callers treat ok=false
// as an assertion failure.
func Sub(a, b *uint256.Int) (*uint256.Int, bool) {
	if b.Gt(a) {
		return nil, false
	}

	return new(uint256.Int).Sub(a, b), true
}
