package bowerbird

import (
	"bowerbird/pkg/fixpoint"

	"github.com/holiman/uint256"
)

// CollateralValue risk-adjusted value of one collateral position
// value = quantity * price * ltv / BASIS_POINTS
func CollateralValue(quantity, price *uint256.Int, loanToValueBps uint64) *uint256.Int {
	z := new(uint256.Int).Mul(quantity, price)
	z.Mul(z, uint256.NewInt(loanToValueBps))
	return z.Div(z, fixpoint.BasisPoints)
}

// LoanValue price-weighted debt, at the same scale as CollateralValue
// value = quantity * price
func LoanValue(loanQuantity, price *uint256.Int) *uint256.Int {
	return new(uint256.Int).Mul(loanQuantity, price)
}

// DesiredLiquidation collateral the escrowed stablecoin buys at spot
// desired = stable * stable_price / collateral_price
func DesiredLiquidation(stableQuantity, stablePrice, collateralPrice *uint256.Int) *uint256.Int {
	return fixpoint.MulDiv(stableQuantity, stablePrice, collateralPrice)
}

// MaxLiquidation single-call liquidation cap on a position
// max = collateral * ratio / BASIS_POINTS
func MaxLiquidation(collateralQuantity *uint256.Int, maxRatioBps uint64) *uint256.Int {
	return fixpoint.MulDiv(collateralQuantity, uint256.NewInt(maxRatioBps), fixpoint.BasisPoints)
}

// LiquidationPayout premium-inflated collateral paid to the liquidator
// payout = (BASIS_POINTS + penalty) * clipped / BASIS_POINTS
func LiquidationPayout(clippedQuantity *uint256.Int, penaltyBps uint64) *uint256.Int {
	f := fixpoint.Add(fixpoint.BasisPoints, uint256.NewInt(penaltyBps))
	return fixpoint.MulDiv(f, clippedQuantity, fixpoint.BasisPoints)
}

// ConsumedStable stablecoin consumed for the unpenalized portion
// consumed = clipped * collateral_price / stable_price
func ConsumedStable(clippedQuantity, collateralPrice, stablePrice *uint256.Int) *uint256.Int {
	return fixpoint.MulDiv(clippedQuantity, collateralPrice, stablePrice)
}
