package bowerbird

import (
	"testing"

	"bowerbird/pkg/fixpoint"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestCollateralValue(t *testing.T) {
	// 10 bNEO at 12.345678 with 75% LTV
	v := CollateralValue(uint256.NewInt(1_000_000_000), uint256.NewInt(12_345_678), 7500)
	assert.Equal(t, "9259258500000000", v.Dec())

	// zero LTV means no borrowing capacity
	v = CollateralValue(uint256.NewInt(1_000_000_000), uint256.NewInt(12_345_678), 0)
	assert.True(t, v.IsZero())
}

func TestLiquidationQuantities(t *testing.T) {
	usdlPrice := uint256.NewInt(1_000_000)
	collateralPrice := uint256.NewInt(10_000_000)

	// 100 USDL buys 10 collateral units at spot
	desired := DesiredLiquidation(uint256.NewInt(100_000_000), usdlPrice, collateralPrice)
	assert.Equal(t, "10000000", desired.Dec())

	// cap at half the position
	max := MaxLiquidation(uint256.NewInt(15_000_000), 5000)
	assert.Equal(t, "7500000", max.Dec())

	clipped := fixpoint.Min(desired, max)
	assert.Equal(t, max.Dec(), clipped.Dec())

	// 5% penalty on the clipped amount
	payout := LiquidationPayout(clipped, 500)
	assert.Equal(t, "7875000", payout.Dec())

	// the stablecoin consumed covers only the unpenalized portion
	consumed := ConsumedStable(clipped, collateralPrice, usdlPrice)
	assert.Equal(t, "75000000", consumed.Dec())
	assert.True(t, consumed.Lt(uint256.NewInt(100_000_000)))
}

func TestConsumedStableNeverExceedsEscrow(t *testing.T) {
	usdlPrice := uint256.NewInt(999_983)
	collateralPrice := uint256.NewInt(11_731_291)

	escrow := uint256.NewInt(987_654_321)
	desired := DesiredLiquidation(escrow, usdlPrice, collateralPrice)

	// with no cap, the consumed escrow round-trips to at most the escrow
	consumed := ConsumedStable(desired, collateralPrice, usdlPrice)
	assert.False(t, consumed.Gt(escrow))
}
