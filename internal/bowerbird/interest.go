package bowerbird

import (
	"bowerbird/pkg/fixpoint"

	"github.com/holiman/uint256"
)

// InitialInterestMultiplier is the stored multiplier before any accrual.
var InitialInterestMultiplier = fixpoint.FloatMultiplier

// InterestAccrued interest accrued over elapsed blocks at annualRateBps
// accrued = FLOAT_MULTIPLIER * elapsed * rate / (BLOCKS_PER_YEAR * BASIS_POINTS)
func InterestAccrued(elapsed uint64, annualRateBps uint64) *uint256.Int {
	z := new(uint256.Int).Mul(fixpoint.FloatMultiplier, uint256.NewInt(elapsed))
	z.Mul(z, uint256.NewInt(annualRateBps))
	d := new(uint256.Int).Mul(fixpoint.BlocksPerYear, fixpoint.BasisPoints)
	return z.Div(z, d)
}

// CompoundMultiplier the stored multiplier compounded once over elapsed blocks
// multiplier' = (FLOAT_MULTIPLIER + accrued) * multiplier / FLOAT_MULTIPLIER
func CompoundMultiplier(multiplier *uint256.Int, elapsed uint64, annualRateBps uint64) *uint256.Int {
	f := fixpoint.Add(fixpoint.FloatMultiplier, InterestAccrued(elapsed, annualRateBps))
	return fixpoint.MulDiv(f, multiplier, fixpoint.FloatMultiplier)
}

// ScaledQuantity externally visible quantity of an unscaled ledger amount
// scaled = unscaled * multiplier / FLOAT_MULTIPLIER^2
// The unscaled ledger quantity carries one extra FLOAT_MULTIPLIER factor
// from UnscaledQuantity; the squared divisor cancels it.
func ScaledQuantity(unscaled, multiplier *uint256.Int) *uint256.Int {
	z := new(uint256.Int).Mul(unscaled, multiplier)
	d := new(uint256.Int).Mul(fixpoint.FloatMultiplier, fixpoint.FloatMultiplier)
	return z.Div(z, d)
}

// UnscaledQuantity multiplier-independent ledger amount of a scaled quantity
// unscaled = scaled * FLOAT_MULTIPLIER^2 / multiplier
func UnscaledQuantity(scaled, multiplier *uint256.Int) *uint256.Int {
	z := new(uint256.Int).Mul(scaled, fixpoint.FloatMultiplier)
	z.Mul(z, fixpoint.FloatMultiplier)
	return z.Div(z, multiplier)
}

// ExchangeRate share/underlying rate from the pool composition
// rate = EXCHANGE_RATE_MULT * (underlying + loaned_scaled) / total_supply
func ExchangeRate(totalSupply, underlyingSupply, loanedSupplyScaled *uint256.Int) *uint256.Int {
	if totalSupply.IsZero() {
		return fixpoint.ExchangeRateMultiplier.Clone()
	}

	z := fixpoint.Add(underlyingSupply, loanedSupplyScaled)
	z.Mul(fixpoint.ExchangeRateMultiplier, z)
	return z.Div(z, totalSupply)
}

// MintQuantity shares minted for an underlying deposit
// minted = EXCHANGE_RATE_MULT * deposit / rate
func MintQuantity(depositQuantity, exchangeRate *uint256.Int) *uint256.Int {
	return fixpoint.MulDiv(fixpoint.ExchangeRateMultiplier, depositQuantity, exchangeRate)
}

// RedeemQuantity underlying paid out for a share redemption
// redeemed = shares * rate / EXCHANGE_RATE_MULT
func RedeemQuantity(shareQuantity, exchangeRate *uint256.Int) *uint256.Int {
	return fixpoint.MulDiv(shareQuantity, exchangeRate, fixpoint.ExchangeRateMultiplier)
}
