package bowerbird

import (
	"testing"

	"bowerbird/pkg/fixpoint"
	"bowerbird/core"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestCompoundMultiplier(t *testing.T) {
	m0 := InitialInterestMultiplier.Clone()

	m1 := CompoundMultiplier(m0, 1, core.AnnualRateBps)
	assert.Equal(t, "1000000475646879756", m1.Dec())

	m2 := CompoundMultiplier(m1, 240, core.AnnualRateBps)
	assert.Equal(t, "1000114630952318897", m2.Dec())

	// zero elapsed blocks leave the multiplier untouched
	assert.Equal(t, m1.Dec(), CompoundMultiplier(m1, 0, core.AnnualRateBps).Dec())
}

func TestScaleRoundTrip(t *testing.T) {
	m1 := CompoundMultiplier(InitialInterestMultiplier, 1, core.AnnualRateBps)

	loan := uint256.NewInt(70_000_000_000)
	unscaled := UnscaledQuantity(loan, m1)

	// flooring loses at most one unit on the way back
	assert.Equal(t, "69999999999", ScaledQuantity(unscaled, m1).Dec())

	// the same unscaled ledger entry grows with the multiplier
	m2 := CompoundMultiplier(m1, 240, core.AnnualRateBps)
	assert.Equal(t, "70007990867", ScaledQuantity(unscaled, m2).Dec())
}

func TestInterestMonotone(t *testing.T) {
	m := InitialInterestMultiplier.Clone()
	for _, elapsed := range []uint64{0, 1, 7, 240, 100_000} {
		next := CompoundMultiplier(m, elapsed, core.AnnualRateBps)
		assert.False(t, next.Lt(m), "multiplier must not decrease")
		m = next
	}
}

func TestExchangeRate(t *testing.T) {
	// no shares yet: the fixed initial rate
	rate := ExchangeRate(fixpoint.Zero(), fixpoint.Zero(), fixpoint.Zero())
	assert.Equal(t, fixpoint.ExchangeRateMultiplier.Dec(), rate.Dec())

	// 1000e8 shares against 300e8 underlying + accrued loans
	rate = ExchangeRate(
		uint256.NewInt(100_000_000_000),
		uint256.NewInt(30_000_000_000),
		uint256.NewInt(70_007_990_867),
	)
	assert.Equal(t, "100007990", rate.Dec())
}

func TestDepositRedeemRoundTrip(t *testing.T) {
	rates := []*uint256.Int{
		fixpoint.ExchangeRateMultiplier,
		uint256.NewInt(100_007_990),
		uint256.NewInt(173_205_080),
	}

	for _, rate := range rates {
		q := uint256.NewInt(123_456_789)
		minted := MintQuantity(q, rate)
		back := RedeemQuantity(minted, rate)
		assert.False(t, back.Gt(q), "round trip must never pay out more than deposited")
	}
}
