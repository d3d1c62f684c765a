package core

import (
	"context"

	"bowerbird/pkg/kv"

	"github.com/holiman/uint256"
)

// Default risk parameters applied when an asset enters the registry, all
// in basis points.
const (
	DefaultLoanToValue         = 7500
	DefaultMaxLiquidationRatio = 5000
	DefaultLiquidationPenalty  = 500
)

// CollateralPosition is one (account, asset) holding.
type CollateralPosition struct {
	Account  Address      `json:"account"`
	Asset    Address      `json:"asset"`
	Quantity *uint256.Int `json:"quantity"`
}

// CollateralStore keeps the collateral registry, the per-asset risk
// parameters and the per-account positions. Removing an asset from the
// registry leaves its parameters and balances in place.
type CollateralStore interface {
	IsSupported(ctx context.Context, h kv.Handle, asset Address) (bool, error)
	Support(ctx context.Context, h kv.Handle, asset Address) error
	Invalidate(ctx context.Context, h kv.Handle, asset Address) error

	LoanToValue(ctx context.Context, h kv.Handle, asset Address) (uint64, error)
	SetLoanToValue(ctx context.Context, h kv.Handle, asset Address, bps uint64) error
	MaxLiquidationRatio(ctx context.Context, h kv.Handle, asset Address) (uint64, error)
	SetMaxLiquidationRatio(ctx context.Context, h kv.Handle, asset Address, bps uint64) error
	LiquidationPenalty(ctx context.Context, h kv.Handle, asset Address) (uint64, error)
	SetLiquidationPenalty(ctx context.Context, h kv.Handle, asset Address, bps uint64) error

	Balance(ctx context.Context, h kv.Handle, asset, account Address) (*uint256.Int, error)
	SetBalance(ctx context.Context, h kv.Handle, asset, account Address, quantity *uint256.Int) error
	// Positions lists every asset the account has ever deposited, with
	// the current quantity. The index keeps the scan bounded per account.
	Positions(ctx context.Context, h kv.Handle, account Address) ([]*CollateralPosition, error)

	TotalCollateral(ctx context.Context, h kv.Handle, asset Address) (*uint256.Int, error)
	SetTotalCollateral(ctx context.Context, h kv.Handle, asset Address, quantity *uint256.Int) error
}

// VaultService is the collateral, borrowing and liquidation engine. The
// price-gated operations are two-phase: the entry point registers an
// oracle request, the callback settles against state current at callback
// time.
type VaultService interface {
	PaymentReceiver

	Address() Address

	Loan(ctx context.Context, h kv.Handle, account, loanToken Address, quantity *uint256.Int) error
	LoanCallback(ctx context.Context, h kv.Handle, resp *OracleResponse) error
	WithdrawCollateral(ctx context.Context, h kv.Handle, account, asset Address, quantity *uint256.Int) error
	WithdrawCollateralCallback(ctx context.Context, h kv.Handle, resp *OracleResponse) error
	LiquidateCallback(ctx context.Context, h kv.Handle, resp *OracleResponse) error

	// ComputeCollateralLTV sums quantity*price*ltv/10000 over the
	// account's positive positions at the supplied prices.
	ComputeCollateralLTV(ctx context.Context, h kv.Handle, account Address, prices PriceMap) (*uint256.Int, error)

	// Registry administration, owner-witness gated.
	SupportCollateral(ctx context.Context, h kv.Handle, asset Address) error
	InvalidateCollateral(ctx context.Context, h kv.Handle, asset Address) error
	SetLoanToValue(ctx context.Context, h kv.Handle, asset Address, bps uint64) error
	SetMaxLiquidationRatio(ctx context.Context, h kv.Handle, asset Address, bps uint64) error
	SetLiquidationPenalty(ctx context.Context, h kv.Handle, asset Address, bps uint64) error
}
