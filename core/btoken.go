package core

import (
	"context"

	"bowerbird/pkg/kv"

	"github.com/holiman/uint256"
)

// BToken token settings.
const (
	BTokenSymbol   = "bUSDL"
	BTokenDecimals = 8

	// AnnualRateBps is R0, the flat annual interest rate in basis points.
	AnnualRateBps = 10_000
)

// AccountBalance is one page entry of the balance listing.
type AccountBalance struct {
	Account Address      `json:"account"`
	Balance *uint256.Int `json:"balance"`
}

// BTokenStore is the pool token's ledger state: share balances, unscaled
// loan balances, the interest multiplier and the supply counters. Loaned
// quantities are stored unscaled (multiplier-independent); scaling happens
// in the service.
type BTokenStore interface {
	TotalSupply(ctx context.Context, h kv.Handle) (*uint256.Int, error)
	SetTotalSupply(ctx context.Context, h kv.Handle, v *uint256.Int) error
	TotalMinted(ctx context.Context, h kv.Handle) (*uint256.Int, error)
	SetTotalMinted(ctx context.Context, h kv.Handle, v *uint256.Int) error
	TotalBurned(ctx context.Context, h kv.Handle) (*uint256.Int, error)
	SetTotalBurned(ctx context.Context, h kv.Handle, v *uint256.Int) error
	NumAccounts(ctx context.Context, h kv.Handle) (int64, error)
	SetNumAccounts(ctx context.Context, h kv.Handle, n int64) error

	Balance(ctx context.Context, h kv.Handle, account Address) (*uint256.Int, error)
	SetBalance(ctx context.Context, h kv.Handle, account Address, v *uint256.Int) error
	DeleteBalance(ctx context.Context, h kv.Handle, account Address) error
	// Balances lists non-zero balances, paginated; pageSize is 1..512.
	Balances(ctx context.Context, h kv.Handle, pageNum, pageSize int) ([]*AccountBalance, error)

	LoanedBalance(ctx context.Context, h kv.Handle, account Address) (*uint256.Int, error)
	SetLoanedBalance(ctx context.Context, h kv.Handle, account Address, v *uint256.Int) error

	UnderlyingSupply(ctx context.Context, h kv.Handle) (*uint256.Int, error)
	SetUnderlyingSupply(ctx context.Context, h kv.Handle, v *uint256.Int) error
	LoanedSupply(ctx context.Context, h kv.Handle) (*uint256.Int, error)
	SetLoanedSupply(ctx context.Context, h kv.Handle, v *uint256.Int) error

	InterestMultiplier(ctx context.Context, h kv.Handle) (*uint256.Int, error)
	SetInterestMultiplier(ctx context.Context, h kv.Handle, v *uint256.Int) error
	LastHeight(ctx context.Context, h kv.Handle) (uint64, error)
	SetLastHeight(ctx context.Context, h kv.Handle, height uint64) error
}

// BTokenService is the interest-accruing pool token engine. It is itself
// a conforming fungible token and a payment receiver.
type BTokenService interface {
	Token
	PaymentReceiver

	// Loan pays out quantity underlying to account against future
	// repayment. Only the vault may call; insufficient supply is a fatal
	// abort.
	Loan(ctx context.Context, h kv.Handle, account Address, quantity *uint256.Int) error

	// LoanedBalanceOf returns the scaled, externally visible debt.
	LoanedBalanceOf(ctx context.Context, h kv.Handle, account Address) (*uint256.Int, error)
	// LoanedSupply returns the scaled aggregate debt.
	LoanedSupply(ctx context.Context, h kv.Handle) (*uint256.Int, error)
	UnderlyingSupply(ctx context.Context, h kv.Handle) (*uint256.Int, error)
	// ExchangeRate derives the share/underlying rate from the pool
	// composition.
	ExchangeRate(ctx context.Context, h kv.Handle) (*uint256.Int, error)
	// InterestMultiplier returns the multiplier projected to the current
	// height, without persisting the accrual.
	InterestMultiplier(ctx context.Context, h kv.Handle) (*uint256.Int, error)
	LastHeight(ctx context.Context, h kv.Handle) (uint64, error)
	UnderlyingAddress(ctx context.Context, h kv.Handle) (Address, error)
	Balances(ctx context.Context, h kv.Handle, pageNum, pageSize int) ([]*AccountBalance, error)
}
